package driven

import (
	"context"
)

// LLMService is a hosted language model used to translate questions into SQL
type LLMService interface {
	// Complete sends a single prompt and returns the raw reply text.
	// Implementations must not retry; the caller's context bounds the call.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
