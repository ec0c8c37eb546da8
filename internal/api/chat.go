package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkcast/backend/internal/service"
	"github.com/forkcast/backend/internal/types"
)

// ChatHandler serves the recipe chat assistant route
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler creates a new ChatHandler instance
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// RegisterRoutes registers the chat route
func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/chat", h.Chat)
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing message"})
		return
	}

	reply, err := h.chat.RecipeReply(c.Request.Context(), req.Recipe, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrChatNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chat is not configured"})
			return
		}
		log.Printf("[ChatHandler] Chat request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chatbot request failed."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
