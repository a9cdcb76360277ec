package improvement

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
	"github.com/vudayani/spring-ai-llm-demo/internal/llm"
)

//go:embed prompts/spring-prompt.st
var DefaultSystemPrompt string

const DefaultUserPrompt = "add jpa functionality"

const DefaultScoreThreshold = 0.7

const improvementSystemPrompt = "Use prompt engineering techniques to deliver improved prompts that guide the LLM to produce high-quality and relevant results that meet the evaluation criteria. Ensure the system prompt provides clear role guidance."

// UnsupportedModelError is returned when the requested model has no configured provider.
type UnsupportedModelError struct {
	Model     string
	Supported []string
}

func (e *UnsupportedModelError) Error() string {
	return "Invalid modelType. Supported models are: " + strings.Join(e.Supported, ", ")
}

// ChatClient is the part of llm.Client the tuner needs.
type ChatClient interface {
	CompleteWithProvider(ctx context.Context, providerName string, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
	Has(providerName string) bool
	Providers() []string
}

type Evaluator interface {
	Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResult, error)
}

// Tuner generates a model response for a prompt pair, grades it and, when the
// score is too low, asks the same model how to improve the prompts.
type Tuner struct {
	client    ChatClient
	evaluator Evaluator
	threshold float64
	logger    *slog.Logger
}

func NewTuner(client ChatClient, evaluator Evaluator, threshold float64, logger *slog.Logger) *Tuner {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tuner{
		client:    client,
		evaluator: evaluator,
		threshold: threshold,
		logger:    logger,
	}
}

// SupportedModels lists the provider names Ask and Tune accept.
func (t *Tuner) SupportedModels() []string {
	return t.client.Providers()
}

// Ask sends the prompt pair to the model and returns its answer. Empty prompts
// are replaced by the defaults.
func (t *Tuner) Ask(ctx context.Context, model string, req domain.PromptRequest) (string, error) {
	provider, err := t.provider(model)
	if err != nil {
		return "", err
	}

	if req.UserPrompt == "" && req.SystemPrompt == "" {
		req = domain.PromptRequest{UserPrompt: DefaultUserPrompt, SystemPrompt: DefaultSystemPrompt}
	}

	return t.complete(ctx, provider, req)
}

func (t *Tuner) Tune(ctx context.Context, model string, req domain.PromptTuningRequest) (*domain.PromptTuningResult, error) {
	provider, err := t.provider(model)
	if err != nil {
		return nil, err
	}

	if req.UserPrompt == "" && req.SystemPrompt == "" {
		req.UserPrompt = DefaultUserPrompt
		req.SystemPrompt = DefaultSystemPrompt
	}

	response, err := t.complete(ctx, provider, domain.PromptRequest{
		UserPrompt:   req.UserPrompt,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		return nil, err
	}

	eval, err := t.evaluator.Evaluate(ctx, buildEvalRequest(req, response))
	if err != nil {
		t.logger.ErrorContext(ctx, "evaluation service error", "model", provider, "error", err)
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	result := &domain.PromptTuningResult{
		LLMResponse:  response,
		EvalResponse: eval,
	}

	if eval.Score >= t.threshold {
		return result, nil
	}

	t.logger.InfoContext(ctx, "score below tuning threshold, requesting prompt improvements",
		"model", provider,
		"score", eval.Score,
		"threshold", t.threshold,
	)

	suggestion, err := t.complete(ctx, provider, domain.PromptRequest{
		UserPrompt:   buildImprovementPrompt(req),
		SystemPrompt: improvementSystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("improvement suggestion: %w", err)
	}
	result.ImprovementSuggestion = &suggestion

	return result, nil
}

func (t *Tuner) provider(model string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(model))
	if name == "" {
		name = "openai"
	}
	if !t.client.Has(name) {
		return "", &UnsupportedModelError{Model: model, Supported: t.SupportedModels()}
	}
	return name, nil
}

func (t *Tuner) complete(ctx context.Context, provider string, req domain.PromptRequest) (string, error) {
	var messages []llm.Message
	if req.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, llm.Message{Role: "user", Content: req.UserPrompt})

	resp, err := t.client.CompleteWithProvider(ctx, provider, &llm.CompletionRequest{
		Messages:    messages,
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	return resp.Content, nil
}

func buildEvalRequest(req domain.PromptTuningRequest, response string) *domain.EvaluationRequest {
	return &domain.EvaluationRequest{
		Input:              domain.StringPtr("User Prompt: " + req.UserPrompt + "\n System Prompt: " + req.SystemPrompt),
		ActualOutput:       domain.StringPtr(response),
		EvaluationCriteria: req.EvaluationCriteria,
	}
}

func buildImprovementPrompt(req domain.PromptTuningRequest) string {
	var sb strings.Builder

	sb.WriteString("The following prompt did not meet the evaluation criteria:\n")
	sb.WriteString(fmt.Sprintf("User Prompt: %s\n\n", req.UserPrompt))
	sb.WriteString(fmt.Sprintf("System Prompt: %s\n\n", req.SystemPrompt))
	sb.WriteString("Evaluation Criteria:\n")
	sb.WriteString(strings.Join(req.EvaluationCriteria, "\n"))
	sb.WriteString("\n\n")
	sb.WriteString("Please suggest improvements to both the **user prompt** and the **system prompt** to better satisfy the evaluation criteria. ")
	sb.WriteString("Ensure the refined prompts are detailed, structured, and specific enough to guide the LLM in producing high-quality responses.")

	return sb.String()
}
