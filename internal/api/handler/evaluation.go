package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

// Evaluator grades a single evaluation request.
type Evaluator interface {
	Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResult, error)
}

type EvaluationHandler struct {
	evaluator Evaluator
	logger    *slog.Logger
}

func NewEvaluationHandler(evaluator Evaluator, logger *slog.Logger) *EvaluationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationHandler{evaluator: evaluator, logger: logger}
}

// Evaluate handles POST /evaluate/. Validation failures are 422, every
// evaluation failure is 500 with the cause's message as detail.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req domain.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{Detail: err.Error()})
		return
	}

	result, err := h.evaluator.Evaluate(c.Request.Context(), &req)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "evaluation failed",
			"request_id", c.GetString(RequestIDKey),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Detail: detail(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

func detail(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "evaluation failed"
}
