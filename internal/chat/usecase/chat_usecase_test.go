package usecase

import (
	"context"
	"errors"
	"testing"

	"trialfinder-backend/pkg/ai"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	req ai.CompletionRequest
	err error
}

func (r *recordingLLM) Name() string { return "rec" }

func (r *recordingLLM) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	r.req = req
	return "Hello!", r.err
}

func TestReply(t *testing.T) {
	log, _ := test.NewNullLogger()
	llm := &recordingLLM{}
	uc := NewChatUsecase(llm, log)

	out, err := uc.Reply(context.Background(), []ai.Message{
		{Role: "system", Content: "Be brief."},
		{Role: "assistant", Content: "Hi, how can I help?"},
		{Role: "User", Content: "What is a phase 2 trial?"},
		{Role: "assistant", Content: "  "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello!", out)
	assert.Contains(t, llm.req.System, "Be brief.")
	require.Len(t, llm.req.Messages, 1, "leading assistant turn and blank turns are dropped")
	assert.Equal(t, ai.RoleUser, llm.req.Messages[0].Role)
}

func TestReply_Errors(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := NewChatUsecase(&recordingLLM{}, log).Reply(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyConversation)

	_, err = NewChatUsecase(&recordingLLM{}, log).Reply(context.Background(), []ai.Message{{Role: "tool", Content: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewChatUsecase(&recordingLLM{err: errors.New("overloaded")}, log).Reply(context.Background(), []ai.Message{{Role: "user", Content: "x"}})
	assert.ErrorIs(t, err, ErrChatFailed)
}

func TestReply_KeepsRecentTurns(t *testing.T) {
	log, _ := test.NewNullLogger()
	llm := &recordingLLM{}
	msgs := make([]ai.Message, 0, 100)
	for i := 0; i < 50; i++ {
		msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: "q"}, ai.Message{Role: ai.RoleAssistant, Content: "a"})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: "last"})

	_, err := NewChatUsecase(llm, log).Reply(context.Background(), msgs)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(llm.req.Messages), maxTurns)
	assert.Equal(t, "last", llm.req.Messages[len(llm.req.Messages)-1].Content)
	assert.Equal(t, ai.RoleUser, llm.req.Messages[0].Role)
}
