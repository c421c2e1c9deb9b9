package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Backend is the contract every LLM provider satisfies. Implementations
// enforce their own request timeouts and convert deadline overruns into
// *TimeoutError so callers can tell a slow model from a weak draft.
type Backend interface {
	// Complete generates text for a single prompt.
	Complete(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Chat generates text for a multi-turn exchange.
	Chat(ctx context.Context, messages []Message, systemPrompt string) (string, error)

	// CheckHealth probes the backend before any generation work starts.
	CheckHealth(ctx context.Context) error

	// ModelName identifies the backing model for provenance records.
	ModelName() string
}

// ErrUnavailable indicates the backend cannot be reached at all.
var ErrUnavailable = errors.New("llm backend unavailable")

// TimeoutError indicates a generation call exceeded its deadline. This is
// distinct from a content-quality failure; the regeneration loop must not
// burn an attempt on it.
type TimeoutError struct {
	Backend string
	Limit   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s call exceeded %s timeout", e.Backend, e.Limit)
}

// wrapCallError classifies transport errors, converting context deadline
// overruns into *TimeoutError.
func wrapCallError(backend string, limit time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Backend: backend, Limit: limit}
	}
	return fmt.Errorf("%s call failed: %w", backend, err)
}
