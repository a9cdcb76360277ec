package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type OpenRouterProvider struct {
	client          *openai.Client
	model           string
	enableReasoning bool
	maxRetries      uint
	retryDelay      time.Duration
}

func NewOpenRouterProvider(apiKey, model string, enableReasoning bool) *OpenRouterProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	return newOpenRouterProviderWithConfig(cfg, model, enableReasoning)
}

func newOpenRouterProviderWithConfig(cfg openai.ClientConfig, model string, enableReasoning bool) *OpenRouterProvider {
	if model == "" {
		model = "nvidia/nemotron-3-nano-30b-a3b:free"
	}
	return &OpenRouterProvider{
		client:          openai.NewClientWithConfig(cfg),
		model:           model,
		enableReasoning: enableReasoning,
		maxRetries:      3,
		retryDelay:      time.Second,
	}
}

func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := modelOrDefault(req.Model, p.model)

	chatReq := buildChatRequest(model, req)
	if p.enableReasoning {
		chatReq.ReasoningEffort = "medium"
	}

	// Only rate limits are retried: 1s, 2s, 4s.
	resp, err := retry.DoWithData(
		func() (openai.ChatCompletionResponse, error) {
			return p.client.CreateChatCompletion(ctx, chatReq)
		},
		retry.Context(ctx),
		retry.Attempts(p.maxRetries+1),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRateLimitError),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}

	return chatResponse(resp, model, start)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}
