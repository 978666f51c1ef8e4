// Package credential resolves the model-service credential and builds the
// shared llm.Client exactly once per Provider.
package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"heritage/internal/config"
	"heritage/internal/llm"
	"heritage/internal/llm/gemini"
	"heritage/internal/llm/mock"
	"heritage/internal/llm/openai"
)

// Credential keys looked up in the secret store.
const (
	OpenAIKey = "OPENAI_API_KEY"
	GeminiKey = "GOOGLE_API_KEY"
)

const openAIKeyPrefix = "sk-"

// Store is a source of named secrets.
type Store interface {
	Secret(key string) (string, bool)
}

// ConfigurationError reports a missing or unusable credential. Its message is
// meant to be shown to the operator as is.
type ConfigurationError struct {
	Provider string
	Key      string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s credential %s %s", e.Provider, e.Key, e.Reason)
}

// Options select and tune the client a Provider builds.
type Options struct {
	Provider string // openai, gemini or mock
	Model    string
	BaseURL  string
	Retry    llm.RetryConfig
}

// OptionsFromConfig maps a loaded config onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
		Retry: llm.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	}
}

// Provider lazily builds the model client. The first call to Client decides
// the outcome; later calls return the same client or the same error.
type Provider struct {
	store Store
	opts  Options

	once   sync.Once
	client llm.Client
	err    error
}

func NewProvider(store Store, opts Options) *Provider {
	return &Provider{store: store, opts: opts}
}

// Client returns the cached client, building it on first use.
func (p *Provider) Client(ctx context.Context) (llm.Client, error) {
	p.once.Do(func() {
		p.client, p.err = p.build(ctx)
	})
	return p.client, p.err
}

func (p *Provider) build(ctx context.Context) (llm.Client, error) {
	switch p.opts.Provider {
	case config.ProviderMock:
		return mock.NewDemo(), nil
	case config.ProviderOpenAI, "":
		key, err := p.secret("OpenAI", OpenAIKey)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(key, openAIKeyPrefix) {
			return nil, &ConfigurationError{Provider: "OpenAI", Key: OpenAIKey, Reason: fmt.Sprintf("must start with %q", openAIKeyPrefix)}
		}
		model := p.opts.Model
		if model == "" {
			model = config.DefaultOpenAIModel
		}
		var base []string
		if p.opts.BaseURL != "" {
			base = append(base, p.opts.BaseURL)
		}
		return llm.WithRetry(openai.NewClient(key, model, base...), p.opts.Retry), nil
	case config.ProviderGemini:
		key, err := p.secret("Gemini", GeminiKey)
		if err != nil {
			return nil, err
		}
		model := p.opts.Model
		if model == "" {
			model = config.DefaultGeminiModel
		}
		client, err := gemini.NewClient(ctx, key, model)
		if err != nil {
			return nil, &ConfigurationError{Provider: "Gemini", Key: GeminiKey, Reason: fmt.Sprintf("could not initialise client: %v", err)}
		}
		return llm.WithRetry(client, p.opts.Retry), nil
	default:
		return nil, &ConfigurationError{Provider: p.opts.Provider, Key: "provider", Reason: "is not supported"}
	}
}

func (p *Provider) secret(provider, key string) (string, error) {
	if p.store == nil {
		return "", &ConfigurationError{Provider: provider, Key: key, Reason: "is not set (no secret store)"}
	}
	v, ok := p.store.Secret(key)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &ConfigurationError{Provider: provider, Key: key, Reason: "is not set; add it to the secrets section or the environment"}
	}
	return v, nil
}
