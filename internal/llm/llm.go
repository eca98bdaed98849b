// Package llm talks to hosted language models.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the upstream answered without any text.
var ErrEmptyCompletion = errors.New("model returned no text")

// Provider completes a single prompt.
type Provider interface {
	// Complete sends system instructions and a user prompt and returns the model text.
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}
