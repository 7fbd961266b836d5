package ai

import (
	"fmt"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Default endpoints for OpenAI-compatible providers
const ollamaBaseURL = "http://localhost:11434/v1"

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return NewLocalEmbedding(settings.Dimensions), nil
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL, settings.Dimensions)
	case domain.AIProviderGemini:
		model := settings.Model
		if model == "" {
			model = "text-embedding-004"
		}
		return NewOpenAIEmbedding(settings.APIKey, model, orDefault(settings.BaseURL, domain.GeminiOpenAIBaseURL), settings.Dimensions)
	case domain.AIProviderOllama:
		model := settings.Model
		if model == "" {
			model = "nomic-embed-text"
		}
		return NewOpenAIEmbedding("ollama", model, orDefault(settings.BaseURL, ollamaBaseURL), settings.Dimensions)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// CreateLLMService creates an LLM service from settings
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderLocal {
		return nil, fmt.Errorf("%w: local provider cannot generate SQL", domain.ErrInvalidProvider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAILLM(settings.APIKey, orDefault(settings.Model, domain.DefaultOpenAIChatModel), settings.BaseURL)
	case domain.AIProviderGemini:
		return NewOpenAILLM(settings.APIKey, orDefault(settings.Model, domain.DefaultGeminiChatModel), orDefault(settings.BaseURL, domain.GeminiOpenAIBaseURL))
	case domain.AIProviderOllama:
		return NewOpenAILLM("ollama", orDefault(settings.Model, "llama3.1"), orDefault(settings.BaseURL, ollamaBaseURL))
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// SupportedProviders lists the providers the factory can build
func (f *Factory) SupportedProviders() []domain.AIProvider {
	return []domain.AIProvider{
		domain.AIProviderOpenAI,
		domain.AIProviderGemini,
		domain.AIProviderOllama,
		domain.AIProviderLocal,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
