package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driven"
)

// Services holds the swappable collaborators of the engine: the AI
// services, replaced by the settings service, and the database session,
// replaced on every reconnection. Safe for concurrent use.
type Services struct {
	config *domain.RuntimeConfig

	mu        sync.RWMutex
	embedding driven.EmbeddingService // nil when unavailable
	llm       driven.LLMService       // nil when unavailable

	session atomic.Pointer[Session]
}

// NewServices creates an empty registry reporting into config
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{config: config}
}

// Config returns the capability flags kept in step with the registry
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedding
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llm
}

// SetEmbeddingService installs svc, closing the service it replaces
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	install(&s.embedding, svc)
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService installs svc, closing the service it replaces
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	install(&s.llm, svc)
	s.config.SetLLMAvailable(svc != nil)
}

// install stores next in slot and closes the previous occupant unless it
// is next itself. Callers hold mu.
func install[T interface {
	comparable
	Close() error
}](slot *T, next T) {
	var none T
	if prev := *slot; prev != none && prev != next {
		_ = prev.Close()
	}
	*slot = next
}

// ValidateAndSetEmbedding health-checks svc before installing it. A
// service that fails the check is closed and the current one kept.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc != nil {
		if err := svc.HealthCheck(ctx); err != nil {
			_ = svc.Close()
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM pings svc before installing it. A service that fails
// the ping is closed and the current one kept.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc != nil {
		if err := svc.Ping(ctx); err != nil {
			_ = svc.Close()
			return fmt.Errorf("llm ping: %w", err)
		}
	}
	s.SetLLMService(svc)
	return nil
}

// Session returns the current database session (may be nil)
func (s *Services) Session() *Session {
	return s.session.Load()
}

// SwapSession installs a new session and returns the previous one.
// The caller owns the previous session's store and must close it.
func (s *Services) SwapSession(next *Session) *Session {
	prev := s.session.Swap(next)
	s.config.SetDatabaseConnected(next.Connected())
	return prev
}

// Close releases the AI services and the current session's store. Every
// resource is closed even when an earlier one fails.
func (s *Services) Close() error {
	s.mu.Lock()
	var errs []error
	if s.embedding != nil {
		errs = append(errs, s.embedding.Close())
		s.embedding = nil
	}
	if s.llm != nil {
		errs = append(errs, s.llm.Close())
		s.llm = nil
	}
	s.mu.Unlock()

	if prev := s.session.Swap(nil); prev != nil && prev.Store != nil {
		errs = append(errs, prev.Store.Close())
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)
	s.config.SetDatabaseConnected(false)
	return errors.Join(errs...)
}
