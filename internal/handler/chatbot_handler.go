package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// ChatbotHandler handles chat recommendation endpoints.
type ChatbotHandler struct {
	chatbotService *service.ChatbotService
}

func NewChatbotHandler(chatbotService *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// Chat handles POST /api/chatbot/chat
func (h *ChatbotHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
		UserID  string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Message is required")
		return
	}

	result, err := h.chatbotService.Chat(c.Request.Context(), req.Message, req.UserID)
	if err != nil {
		utils.ErrorFrom(c, err, service.ChatErrorMessage)
		return
	}
	utils.Success(c, 200, "Chat processed", result)
}

// GetHistory handles GET /api/chatbot/history/:userId
func (h *ChatbotHandler) GetHistory(c *gin.Context) {
	history, err := h.chatbotService.History(c.Param("userId"))
	if err != nil {
		utils.ErrorFrom(c, err, "Failed to get conversation history")
		return
	}
	utils.Success(c, 200, "History retrieved", gin.H{"history": history})
}

// ClearHistory handles DELETE /api/chatbot/history[/:userId]. Without a user
// id every conversation is cleared.
func (h *ChatbotHandler) ClearHistory(c *gin.Context) {
	h.chatbotService.ClearHistory(c.Param("userId"))
	utils.Success(c, 200, "Conversation history cleared", nil)
}

// GetSuggestions handles GET /api/chatbot/suggestions
func (h *ChatbotHandler) GetSuggestions(c *gin.Context) {
	utils.Success(c, 200, "Suggestions retrieved", gin.H{"suggestions": h.chatbotService.Suggestions()})
}
