package delivery

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"trialfinder-backend/internal/chat/usecase"
	"trialfinder-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// ChatHandler proxies chat conversations to the AI provider
type ChatHandler struct {
	chatUsecase usecase.ChatUsecase
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUsecase usecase.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// Chat replies to a conversation. The body is either a bare message array or
// {"messages": [...]}.
// POST /api/chatai
func (h *ChatHandler) Chat(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	messages, err := decodeMessages(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.chatUsecase.Reply(c.Request.Context(), messages)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyConversation), errors.Is(err, usecase.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get a reply"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": content})
}

func decodeMessages(body []byte) ([]ai.Message, error) {
	body = bytes.TrimSpace(body)
	var messages []ai.Message
	if bytes.HasPrefix(body, []byte("[")) {
		if err := json.Unmarshal(body, &messages); err != nil {
			return nil, errors.New("invalid message list")
		}
		return messages, nil
	}

	var wrapped struct {
		Messages []ai.Message `json:"messages"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, errors.New("invalid message list")
	}
	return wrapped.Messages, nil
}
