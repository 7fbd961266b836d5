package driving

import (
	"context"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
)

// SettingsService manages the AI provider configuration of a running engine
type SettingsService interface {
	// GetAISettings retrieves the current AI configuration
	GetAISettings(ctx context.Context) (*domain.AISettings, error)

	// UpdateAISettings updates AI configuration and hot-reloads services.
	// Returns whether each service is now available.
	UpdateAISettings(ctx context.Context, req UpdateAISettingsRequest) (*AISettingsStatus, error)

	// GetAIStatus returns the current status of AI services
	GetAIStatus(ctx context.Context) (*AISettingsStatus, error)

	// TestConnection checks the configured providers are reachable
	TestConnection(ctx context.Context) error
}

// UpdateAISettingsRequest represents a request to update AI settings.
// A nil section is left unchanged.
type UpdateAISettingsRequest struct {
	Embedding *EmbeddingSettingsInput `json:"embedding,omitempty"`
	LLM       *LLMSettingsInput       `json:"llm,omitempty"`
}

// EmbeddingSettingsInput is the input for embedding configuration
type EmbeddingSettingsInput struct {
	Provider   domain.AIProvider `json:"provider"`
	Model      string            `json:"model"`
	APIKey     string            `json:"api_key"`
	BaseURL    string            `json:"base_url,omitempty"`
	Dimensions int               `json:"dimensions,omitempty"`
}

// LLMSettingsInput is the input for LLM configuration
type LLMSettingsInput struct {
	Provider domain.AIProvider `json:"provider"`
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key"`
	BaseURL  string            `json:"base_url,omitempty"`
}

// AISettingsStatus represents the status of AI services
type AISettingsStatus struct {
	Embedding AIServiceStatus `json:"embedding"`
	LLM       AIServiceStatus `json:"llm"`

	// Query types the engine can currently answer
	SupportedTypes []domain.QueryType `json:"supported_types"`
}

// AIServiceStatus represents the status of a single AI service
type AIServiceStatus struct {
	Available    bool              `json:"available"`
	Provider     domain.AIProvider `json:"provider,omitempty"`
	Model        string            `json:"model,omitempty"`
	EmbeddingDim int               `json:"embedding_dim,omitempty"` // Only for embedding service
	Error        string            `json:"error,omitempty"`
}
