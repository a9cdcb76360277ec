package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
	"github.com/vudayani/spring-ai-llm-demo/internal/improvement"
)

type PromptTuner interface {
	Ask(ctx context.Context, model string, req domain.PromptRequest) (string, error)
	Tune(ctx context.Context, model string, req domain.PromptTuningRequest) (*domain.PromptTuningResult, error)
}

type PromptHandler struct {
	tuner  PromptTuner
	logger *slog.Logger
}

func NewPromptHandler(tuner PromptTuner, logger *slog.Logger) *PromptHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptHandler{tuner: tuner, logger: logger}
}

// AskLLM handles POST /api/askLlm?model=. The body is optional.
func (h *PromptHandler) AskLLM(c *gin.Context) {
	var req domain.PromptRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{Detail: err.Error()})
		return
	}

	answer, err := h.tuner.Ask(c.Request.Context(), c.DefaultQuery("model", "openai"), req)
	if err != nil {
		h.fail(c, "ask llm failed", err)
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(answer))
}

// PromptTuning handles POST /api/promptTuning?model=. The body is optional.
func (h *PromptHandler) PromptTuning(c *gin.Context) {
	var req domain.PromptTuningRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, domain.ErrorResponse{Detail: err.Error()})
		return
	}

	result, err := h.tuner.Tune(c.Request.Context(), c.DefaultQuery("model", "openai"), req)
	if err != nil {
		h.fail(c, "prompt tuning failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PromptHandler) fail(c *gin.Context, msg string, err error) {
	var unsupported *improvement.UnsupportedModelError
	if errors.As(err, &unsupported) {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{Detail: unsupported.Error()})
		return
	}

	h.logger.ErrorContext(c.Request.Context(), msg,
		"request_id", c.GetString(RequestIDKey),
		"model", c.Query("model"),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, domain.ErrorResponse{Detail: detail(err)})
}

// bindOptionalJSON decodes the body when there is one and leaves obj untouched otherwise.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
