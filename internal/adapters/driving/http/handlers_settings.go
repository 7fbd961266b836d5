package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
)

type aiSettingsResponse struct {
	Embedding aiProviderInfo `json:"embedding"`
	LLM       aiProviderInfo `json:"llm"`
}

type aiProviderInfo struct {
	Provider     domain.AIProvider `json:"provider"`
	Model        string            `json:"model"`
	BaseURL      string            `json:"base_url,omitempty"`
	HasAPIKey    bool              `json:"has_api_key"`
	IsConfigured bool              `json:"is_configured"`
}

// handleGetAISettings godoc
// @Summary      Get AI settings
// @Description  Get AI provider configuration. API keys are masked.
// @Tags         AI Settings
// @Produce      json
// @Success      200  {object}  aiSettingsResponse
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Failure      503  {object}  ErrorResponse  "Settings not available"
// @Router       /api/settings/ai [get]
func (s *Server) handleGetAISettings(w http.ResponseWriter, r *http.Request) {
	if s.settingsService == nil {
		writeError(w, http.StatusServiceUnavailable, "settings not available")
		return
	}

	aiSettings, err := s.settingsService.GetAISettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get AI settings")
		return
	}

	writeJSON(w, http.StatusOK, aiSettingsResponse{
		Embedding: aiProviderInfo{
			Provider:     aiSettings.Embedding.Provider,
			Model:        aiSettings.Embedding.Model,
			BaseURL:      aiSettings.Embedding.BaseURL,
			HasAPIKey:    aiSettings.Embedding.APIKey != "",
			IsConfigured: aiSettings.Embedding.IsConfigured(),
		},
		LLM: aiProviderInfo{
			Provider:     aiSettings.LLM.Provider,
			Model:        aiSettings.LLM.Model,
			BaseURL:      aiSettings.LLM.BaseURL,
			HasAPIKey:    aiSettings.LLM.APIKey != "",
			IsConfigured: aiSettings.LLM.IsConfigured(),
		},
	})
}

// handleUpdateAISettings godoc
// @Summary      Update AI settings
// @Description  Update AI provider configuration. This triggers hot-reload of AI services.
// @Tags         AI Settings
// @Accept       json
// @Produce      json
// @Param        request  body      driving.UpdateAISettingsRequest  true  "AI settings to update"
// @Success      200      {object}  driving.AISettingsStatus
// @Failure      400      {object}  ErrorResponse  "Invalid configuration or unsupported provider"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /api/settings/ai [put]
func (s *Server) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	if s.settingsService == nil {
		writeError(w, http.StatusServiceUnavailable, "settings not available")
		return
	}

	var req driving.UpdateAISettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := s.settingsService.UpdateAISettings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidProvider):
			writeError(w, http.StatusBadRequest, "unsupported AI provider")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid AI configuration")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleGetAIStatus godoc
// @Summary      Get AI status
// @Description  Get the current status of the embedding and LLM services and the query types they allow
// @Tags         AI Settings
// @Produce      json
// @Success      200  {object}  driving.AISettingsStatus
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /api/settings/ai/status [get]
func (s *Server) handleGetAIStatus(w http.ResponseWriter, r *http.Request) {
	if s.settingsService == nil {
		writeError(w, http.StatusServiceUnavailable, "settings not available")
		return
	}

	status, err := s.settingsService.GetAIStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get AI status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handleTestConnection godoc
// @Summary      Test AI connection
// @Description  Checks that the configured embedding and LLM providers are reachable
// @Tags         AI Settings
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      502  {object}  ErrorResponse  "Provider unreachable"
// @Router       /api/settings/ai/test [post]
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if s.settingsService == nil {
		writeError(w, http.StatusServiceUnavailable, "settings not available")
		return
	}

	if err := s.settingsService.TestConnection(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
