package generator

import (
	"context"
	"fmt"
	"time"
)

// Echo is a deterministic offline generator for development and demos. It
// never calls out and returns a short document built from the prompt.
type Echo struct {
	Delay time.Duration // simulated latency
}

// Generate implements Generator.
func (e Echo) Generate(ctx context.Context, prompt string) (string, error) {
	if e.Delay > 0 {
		t := time.NewTimer(e.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("# Draft\n\n%s\n\n(generated offline)", prompt), nil
}
