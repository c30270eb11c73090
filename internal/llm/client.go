package llm

import (
	"context"
)

// Client is the transport boundary to the external analysis model. The
// verification pipeline depends on nothing below this interface.
type Client interface {
	Generate(ctx context.Context, system string, prompt string) (string, error)
}
