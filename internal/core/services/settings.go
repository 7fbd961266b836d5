package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
	"github.com/custodia-labs/nlq-engine/internal/runtime"
)

// Ensure settingsService implements SettingsService
var _ driving.SettingsService = (*settingsService)(nil)

// settingsService implements the SettingsService interface.
// Settings live in memory for the life of the process.
type settingsService struct {
	aiFactory driven.AIServiceFactory
	services  *runtime.Services
	logger    *slog.Logger

	mu       sync.RWMutex
	settings domain.AISettings
}

// NewSettingsService creates a new SettingsService. initial describes the
// services already installed in the runtime.
func NewSettingsService(
	aiFactory driven.AIServiceFactory,
	services *runtime.Services,
	initial domain.AISettings,
	logger *slog.Logger,
) driving.SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &settingsService{
		aiFactory: aiFactory,
		services:  services,
		settings:  initial,
		logger:    logger,
	}
}

// GetAISettings retrieves the current AI configuration
func (s *settingsService) GetAISettings(ctx context.Context) (*domain.AISettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings := s.settings
	return &settings, nil
}

// UpdateAISettings updates AI configuration and hot-reloads services
func (s *settingsService) UpdateAISettings(ctx context.Context, req driving.UpdateAISettingsRequest) (*driving.AISettingsStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aiSettings := s.settings
	if req.Embedding != nil {
		aiSettings.Embedding = domain.EmbeddingSettings{
			Provider:   req.Embedding.Provider,
			Model:      req.Embedding.Model,
			APIKey:     req.Embedding.APIKey,
			BaseURL:    req.Embedding.BaseURL,
			Dimensions: req.Embedding.Dimensions,
		}
	}
	if req.LLM != nil {
		aiSettings.LLM = domain.LLMSettings{
			Provider: req.LLM.Provider,
			Model:    req.LLM.Model,
			APIKey:   req.LLM.APIKey,
			BaseURL:  req.LLM.BaseURL,
		}
	}

	if err := aiSettings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	s.settings = aiSettings

	status := &driving.AISettingsStatus{}

	if req.Embedding != nil {
		status.Embedding = s.reloadEmbedding(ctx, &aiSettings.Embedding)
	} else {
		status.Embedding = s.embeddingStatus()
	}

	if req.LLM != nil {
		status.LLM = s.reloadLLM(ctx, &aiSettings.LLM)
	} else {
		status.LLM = s.llmStatus()
	}

	status.SupportedTypes = s.supportedTypes()
	return status, nil
}

// reloadEmbedding builds, validates and installs a new embedding service.
// A failure leaves embedding unavailable.
func (s *settingsService) reloadEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) driving.AIServiceStatus {
	if !settings.IsConfigured() {
		s.services.SetEmbeddingService(nil)
		return driving.AIServiceStatus{Available: false}
	}

	svc, err := s.aiFactory.CreateEmbeddingService(settings)
	if err == nil {
		err = s.services.ValidateAndSetEmbedding(ctx, svc)
	}
	if err != nil {
		s.logger.Warn("embedding service unavailable", "provider", settings.Provider, "error", err)
		s.services.SetEmbeddingService(nil)
		return driving.AIServiceStatus{Available: false, Provider: settings.Provider, Error: err.Error()}
	}

	s.logger.Info("embedding service reloaded", "provider", settings.Provider, "model", svc.Model())
	return s.embeddingStatus()
}

// reloadLLM builds, validates and installs a new LLM service
func (s *settingsService) reloadLLM(ctx context.Context, settings *domain.LLMSettings) driving.AIServiceStatus {
	if !settings.IsConfigured() {
		s.services.SetLLMService(nil)
		return driving.AIServiceStatus{Available: false}
	}

	svc, err := s.aiFactory.CreateLLMService(settings)
	if err == nil {
		err = s.services.ValidateAndSetLLM(ctx, svc)
	}
	if err != nil {
		s.logger.Warn("llm service unavailable", "provider", settings.Provider, "error", err)
		s.services.SetLLMService(nil)
		return driving.AIServiceStatus{Available: false, Provider: settings.Provider, Error: err.Error()}
	}

	s.logger.Info("llm service reloaded", "provider", settings.Provider, "model", svc.Model())
	return s.llmStatus()
}

// GetAIStatus returns the current status of AI services
func (s *settingsService) GetAIStatus(ctx context.Context) (*driving.AISettingsStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &driving.AISettingsStatus{
		Embedding:      s.embeddingStatus(),
		LLM:            s.llmStatus(),
		SupportedTypes: s.supportedTypes(),
	}, nil
}

// embeddingStatus describes the installed embedding service. Callers hold mu.
func (s *settingsService) embeddingStatus() driving.AIServiceStatus {
	svc := s.services.EmbeddingService()
	if svc == nil {
		return driving.AIServiceStatus{Available: false}
	}
	return driving.AIServiceStatus{
		Available:    true,
		Provider:     s.settings.Embedding.Provider,
		Model:        svc.Model(),
		EmbeddingDim: svc.Dimensions(),
	}
}

// llmStatus describes the installed LLM service. Callers hold mu.
func (s *settingsService) llmStatus() driving.AIServiceStatus {
	svc := s.services.LLMService()
	if svc == nil {
		return driving.AIServiceStatus{Available: false}
	}
	return driving.AIServiceStatus{
		Available: true,
		Provider:  s.settings.LLM.Provider,
		Model:     svc.Model(),
	}
}

func (s *settingsService) supportedTypes() []domain.QueryType {
	cfg := s.services.Config()
	types := []domain.QueryType{}
	for _, t := range []domain.QueryType{domain.QueryTypeSQL, domain.QueryTypeDocument, domain.QueryTypeHybrid} {
		if cfg.Supports(t) {
			types = append(types, t)
		}
	}
	return types
}

// TestConnection tests the AI provider connection
func (s *settingsService) TestConnection(ctx context.Context) error {
	if embSvc := s.services.EmbeddingService(); embSvc != nil {
		if err := embSvc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding: %w", err)
		}
	}

	if llmSvc := s.services.LLMService(); llmSvc != nil {
		if err := llmSvc.Ping(ctx); err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	}

	return nil
}
