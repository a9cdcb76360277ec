package llm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vudayani/spring-ai-llm-demo/internal/config"
)

type Provider interface {
	Name() string
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

type Message struct {
	Role    string
	Content string
}

type CompletionResponse struct {
	Content      string
	FinishReason string
	ModelName    string
	Usage        Usage
	Latency      time.Duration
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client routes completions to named providers. Every call is bounded by the
// configured timeout.
type Client struct {
	providers       map[string]Provider
	defaultProvider string
	timeout         time.Duration
}

func NewClient(cfg *config.LLMConfig) (*Client, error) {
	var providers []Provider

	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}

	if cfg.AnthropicAPIKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}

	if cfg.OllamaBaseURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel))
	}

	if cfg.OpenRouterAPIKey != "" {
		providers = append(providers, NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterReasoning))
	}

	return NewClientWithProviders(cfg.DefaultProvider, cfg.Timeout, providers...)
}

// NewClientWithProviders builds a client from already constructed providers.
// If defaultProvider is not among them, the first provider in name order is used.
func NewClientWithProviders(defaultProvider string, timeout time.Duration, providers ...Provider) (*Client, error) {
	c := &Client{
		providers:       make(map[string]Provider, len(providers)),
		defaultProvider: defaultProvider,
		timeout:         timeout,
	}

	for _, p := range providers {
		c.providers[p.Name()] = p
	}

	if len(c.providers) == 0 {
		return nil, fmt.Errorf("no LLM providers configured")
	}

	if _, ok := c.providers[c.defaultProvider]; !ok {
		c.defaultProvider = c.Providers()[0]
	}

	return c, nil
}

func (c *Client) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	return c.CompleteWithProvider(ctx, c.defaultProvider, req)
}

func (c *Client) CompleteWithProvider(ctx context.Context, providerName string, req *CompletionRequest) (*CompletionResponse, error) {
	provider, ok := c.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", providerName)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	return provider.Complete(ctx, req)
}

// Has reports whether a provider with the given name is configured.
func (c *Client) Has(providerName string) bool {
	_, ok := c.providers[providerName]
	return ok
}

// Providers returns the configured provider names in sorted order.
func (c *Client) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Client) DefaultProvider() string {
	return c.defaultProvider
}

// modelOrDefault lets a request override the provider's configured model.
func modelOrDefault(requested, configured string) string {
	if requested != "" {
		return requested
	}
	return configured
}
