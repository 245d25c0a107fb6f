package interfaces

import "context"

// GeminiClient is the external suggestion engine. Injected so tests can stub
// responses deterministically.
type GeminiClient interface {
	// GenerateContent generates AI content from a prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Close() error
}
