// Package llm provides the text-generation boundary for specrunner, backed
// by CloudWeGo Eino chat models.
package llm

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/specrunner/specrunner/internal/models"
)

// Options are the sampling parameters for one generation call.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Provider is the generation capability. Implementations send role-tagged
// messages to a backend and return the generated text, or a stream of text
// fragments.
type Provider interface {
	// Name identifies the backend.
	Name() models.ProviderType

	// Generate runs a blocking completion over the message exchange.
	Generate(ctx context.Context, messages []*schema.Message, opts Options) (string, error)

	// Stream returns a lazy, finite, non-restartable sequence of message
	// chunks. The caller owns the reader and must Close it.
	Stream(ctx context.Context, messages []*schema.Message, opts Options) (*schema.StreamReader[*schema.Message], error)
}
