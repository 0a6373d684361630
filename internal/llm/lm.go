// Package llm provides the language-model boundary: a small completion
// interface, an OpenAI-compatible HTTP client, and an on-disk response
// cache.
package llm

import (
	"context"
	"errors"
)

// ErrCompletion is returned when the model fails to produce a completion.
var ErrCompletion = errors.New("completion failed")

// Options contains options for a completion call.
type Options struct {
	// Temperature is forwarded to the endpoint. Generation is greedy
	// regardless (no sampling, single beam); the serving side treats a
	// near-zero temperature accordingly.
	Temperature float64
	// MaxTokens bounds the number of newly generated tokens.
	MaxTokens int
	// Echo asks the endpoint to prepend the prompt to the returned text,
	// so Result.Text is the full decoded output.
	Echo bool
	Stop []string
}

// Usage represents token usage statistics for one call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Result is the outcome of a completion call. With Options.Echo set, Text
// holds the prompt echo followed by the generated continuation.
type Result struct {
	Text         string
	FinishReason string
	Usage        Usage
}

// LM is a text-completion model. Given a prompt string and a token budget
// it returns a generated continuation deterministically under greedy
// decoding.
type LM interface {
	Complete(ctx context.Context, prompt string, options *Options) (*Result, error)
	Name() string
}

// DefaultOptions returns the generation options used for classification:
// a handful of new tokens, prompt echo on, effectively-greedy temperature.
func DefaultOptions() *Options {
	return &Options{
		Temperature: 0.1,
		MaxTokens:   10,
		Echo:        true,
	}
}
