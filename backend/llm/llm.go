// Package llm talks to the external generative-text service.
package llm

import "context"

// Client turns a single composed prompt into the model's raw text answer.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
