package llm

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o"
	defaultMaxTokens   = 2048
)

// OpenAIProvider serves chat completions from the OpenAI API. OpenRouter
// reuses its request and response mapping.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return newOpenAIProviderWithConfig(openai.DefaultConfig(apiKey), model)
}

func newOpenAIProviderWithConfig(cfg openai.ClientConfig, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  modelOrDefault(model, defaultOpenAIModel),
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	model := modelOrDefault(req.Model, p.model)

	resp, err := p.client.CreateChatCompletion(ctx, buildChatRequest(model, req))
	if err != nil {
		return nil, fmt.Errorf("create completion: %w", err)
	}

	return chatResponse(resp, model, start)
}

func buildChatRequest(model string, req *CompletionRequest) openai.ChatCompletionRequest {
	chat := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: chatTemperature(req.Temperature),
	}
	if chat.MaxTokens <= 0 {
		chat.MaxTokens = defaultMaxTokens
	}

	for _, m := range req.Messages {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	if req.JSONMode {
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return chat
}

// chatTemperature maps 0 to the smallest positive float32. go-openai omits a
// zero temperature, which would leave the API default of 1 in place.
func chatTemperature(t float64) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func chatResponse(resp openai.ChatCompletionResponse, model string, start time.Time) (*CompletionResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	choice := resp.Choices[0]

	return &CompletionResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		ModelName:    model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Latency: time.Since(start),
	}, nil
}
