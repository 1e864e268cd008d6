package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/chat"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/logger"
	"github.com/bizmatters/agent-builder/catalog-chatbot/internal/models"
)

// User-facing error messages. Internal errors are only logged.
const (
	msgMissingPrompt = "Missing 'prompt'"
	msgInternalError = "An error occurred while processing your request"
)

// Submitter answers one prompt
type Submitter interface {
	Submit(ctx context.Context, prompt string) (chat.Result, error)
}

// Handler handles the chat HTTP endpoint
type Handler struct {
	chat   Submitter
	logger *zap.Logger
}

// NewHandler creates a new chat handler
func NewHandler(s Submitter, log *zap.Logger) *Handler {
	return &Handler{
		chat:   s,
		logger: logger.OrNop(log).Named("gateway"),
	}
}

// Respond godoc
// @Summary Ask the catalog assistant
// @Description Answers a free-text customer question, grounded in catalog data when the model requests a catalog operation
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Customer prompt"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /v1/response [post]
func (h *Handler) Respond(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingPrompt})
		return
	}

	status, body := h.answer(c.Request.Context(), req.Prompt)
	c.JSON(status, body)
}

// answer runs the pipeline and maps its result to an HTTP status and body.
// The WebSocket endpoint shares it so both surfaces answer identically.
func (h *Handler) answer(ctx context.Context, prompt string) (int, any) {
	res, err := h.chat.Submit(ctx, prompt)
	switch {
	case err == nil:
		return http.StatusOK, models.ChatResponse{
			Response:  res.Text,
			Redirect:  res.Redirect,
			ProductID: res.ProductID,
		}
	case errors.Is(err, chat.ErrEmptyPrompt):
		return http.StatusBadRequest, models.ErrorResponse{Error: msgMissingPrompt}
	default:
		h.logger.Error("error processing chat request", zap.Error(err))
		return http.StatusInternalServerError, models.ErrorResponse{Error: msgInternalError}
	}
}
