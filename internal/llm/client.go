package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/models"
)

// Default chat models per provider.
const (
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultOpenAIModel    = "gpt-4o"
)

// Config holds what is needed to construct a provider.
type Config struct {
	Provider models.ProviderType
	Model    string
	APIKey   string
}

// NewProvider is the factory for generation backends, keyed on the provider
// type. Exactly two variants exist.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, &errs.ConfigError{Message: fmt.Sprintf("%s provider selected but API key is missing", cfg.Provider)}
	}
	switch cfg.Provider {
	case models.ProviderAnthropic:
		m := cfg.Model
		if m == "" {
			m = DefaultAnthropicModel
		}
		return &anthropicProvider{apiKey: cfg.APIKey, model: m}, nil
	case models.ProviderOpenAI:
		m := cfg.Model
		if m == "" {
			m = DefaultOpenAIModel
		}
		return &openaiProvider{apiKey: cfg.APIKey, model: m}, nil
	default:
		return nil, &errs.ConfigError{Message: fmt.Sprintf("unsupported LLM provider: %s", cfg.Provider)}
	}
}

// anthropicProvider drives Anthropic models through the Eino claude
// component.
type anthropicProvider struct {
	apiKey string
	model  string
}

func (p *anthropicProvider) Name() models.ProviderType { return models.ProviderAnthropic }

func (p *anthropicProvider) chatModel(ctx context.Context, opts Options) (model.BaseChatModel, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	cm, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    p.apiKey,
		Model:     p.model,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create anthropic chat model: %w", err)
	}
	return cm, nil
}

func (p *anthropicProvider) Generate(ctx context.Context, messages []*schema.Message, opts Options) (string, error) {
	cm, err := p.chatModel(ctx, opts)
	if err != nil {
		return "", err
	}
	resp, err := cm.Generate(ctx, messages, callOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	return resp.Content, nil
}

func (p *anthropicProvider) Stream(ctx context.Context, messages []*schema.Message, opts Options) (*schema.StreamReader[*schema.Message], error) {
	cm, err := p.chatModel(ctx, opts)
	if err != nil {
		return nil, err
	}
	stream, err := cm.Stream(ctx, messages, callOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("anthropic stream: %w", err)
	}
	return stream, nil
}

// openaiProvider drives OpenAI models through the Eino openai component.
type openaiProvider struct {
	apiKey string
	model  string
}

func (p *openaiProvider) Name() models.ProviderType { return models.ProviderOpenAI }

func (p *openaiProvider) chatModel(ctx context.Context) (model.BaseChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:  p.model,
		APIKey: p.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return cm, nil
}

func (p *openaiProvider) Generate(ctx context.Context, messages []*schema.Message, opts Options) (string, error) {
	cm, err := p.chatModel(ctx)
	if err != nil {
		return "", err
	}
	resp, err := cm.Generate(ctx, messages, callOptions(opts)...)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	return resp.Content, nil
}

func (p *openaiProvider) Stream(ctx context.Context, messages []*schema.Message, opts Options) (*schema.StreamReader[*schema.Message], error) {
	cm, err := p.chatModel(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := cm.Stream(ctx, messages, callOptions(opts)...)
	if err != nil {
		return nil, fmt.Errorf("openai stream: %w", err)
	}
	return stream, nil
}

func callOptions(opts Options) []model.Option {
	var out []model.Option
	if opts.Temperature > 0 {
		out = append(out, model.WithTemperature(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		out = append(out, model.WithMaxTokens(opts.MaxTokens))
	}
	return out
}
