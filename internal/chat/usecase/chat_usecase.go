package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trialfinder-backend/pkg/ai"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyConversation = errors.New("at least one user or assistant message is required")
	ErrInvalidRole       = errors.New("message role must be user, assistant or system")
	ErrChatFailed        = errors.New("chat provider failed")
)

const defaultSystemPrompt = `You are a friendly assistant on a clinical trial discovery site.
Explain clinical trials, eligibility and medical terms in plain language.
You do not give medical advice or diagnoses; encourage users to discuss decisions with their care team.`

const maxTurns = 40

// ChatUsecase forwards a conversation to the chat provider
type ChatUsecase interface {
	Reply(ctx context.Context, messages []ai.Message) (string, error)
}

type chatUsecase struct {
	llm ai.Completer
	log logrus.FieldLogger
}

// NewChatUsecase creates a new instance of chatUsecase
func NewChatUsecase(llm ai.Completer, log logrus.FieldLogger) ChatUsecase {
	return &chatUsecase{llm: llm, log: log.WithField("component", "chat")}
}

// Reply folds system messages into the system prompt and keeps the most
// recent turns.
func (u *chatUsecase) Reply(ctx context.Context, messages []ai.Message) (string, error) {
	system := []string{defaultSystemPrompt}
	turns := make([]ai.Message, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		switch ai.Role(strings.ToLower(string(m.Role))) {
		case ai.RoleSystem:
			if content != "" {
				system = append(system, content)
			}
		case ai.RoleUser:
			if content != "" {
				turns = append(turns, ai.Message{Role: ai.RoleUser, Content: content})
			}
		case ai.RoleAssistant:
			if content != "" {
				turns = append(turns, ai.Message{Role: ai.RoleAssistant, Content: content})
			}
		default:
			return "", ErrInvalidRole
		}
	}
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	for len(turns) > 0 && turns[0].Role != ai.RoleUser {
		turns = turns[1:]
	}
	if len(turns) == 0 {
		return "", ErrEmptyConversation
	}

	content, err := u.llm.Complete(ctx, ai.CompletionRequest{
		System:      strings.Join(system, "\n\n"),
		Messages:    turns,
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		u.log.WithError(err).Error("chat completion failed")
		return "", fmt.Errorf("%w: %v", ErrChatFailed, err)
	}
	return content, nil
}
