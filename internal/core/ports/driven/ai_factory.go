package driven

import (
	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// AIServiceFactory builds embedding and LLM adapters from settings
type AIServiceFactory interface {
	// CreateEmbeddingService returns nil, nil when settings are not configured
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateLLMService returns nil, nil when settings are not configured.
	// The local provider has no generation model and is rejected.
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)

	// SupportedProviders lists the providers the factory can build
	SupportedProviders() []domain.AIProvider
}
