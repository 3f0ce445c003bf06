package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invois/internal/service"
)

// AssistantHandler handles LLM assistant endpoints.
type AssistantHandler struct {
	assistantService service.AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistantService service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// Chat handles POST /api/v1/assistant/chat
// @Summary Chat with the invoicing assistant
// @Description Send a message (plus optional prior turns) to the assistant; it can draft terms, answer billing questions, and create documents on request
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body service.ChatRequest true "Chat message and history"
// @Success 200 {object} Response{data=service.ChatResult} "Assistant reply"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 503 {object} ErrorResponseBody "Assistant not configured"
// @Security BearerAuth
// @Router /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	var input service.ChatRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "message is required")
		return
	}

	result, err := h.assistantService.Chat(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}
