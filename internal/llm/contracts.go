package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse means the provider answered but produced no text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Completer sends one prompt to a text-generation provider and returns its raw reply.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
