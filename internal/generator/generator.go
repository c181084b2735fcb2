// Package generator holds the external text-generation capability.
package generator

import (
	"context"
	"errors"
)

// Generator turns a resolved prompt into text. Implementations must honour
// ctx cancellation and deadlines.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SystemPrompt frames every request sent to a chat model.
const SystemPrompt = "You are a professional content writer. Create high-quality, engaging content based on the user's request. Be creative, informative, and maintain a professional tone unless otherwise specified."

var (
	// ErrInvalidCredentials means the provider rejected the configured API key.
	ErrInvalidCredentials = errors.New("generator: invalid provider credentials")
	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("generator: empty response")
)

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }
