package classify

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"biaseval/internal/llm"
)

// MaxNewTokens bounds the generated continuation; a classification label
// needs only a handful of tokens.
const MaxNewTokens = 10

// Runner owns the language model handle for the lifetime of one run and
// converts prompts into labels. It is an explicitly passed handle rather
// than process-global state so the pipeline can run against a stub model
// in tests.
type Runner struct {
	lm  llm.LM
	log *zap.SugaredLogger

	mu    sync.Mutex
	usage llm.Usage
}

// NewRunner wraps an LM for classification.
func NewRunner(lm llm.LM, log *zap.SugaredLogger) *Runner {
	return &Runner{lm: lm, log: log}
}

// Predict generates a completion for prompt and parses it into a binary
// label. The error return reports what went wrong but the label and raw
// output are always usable: on any failure the label defaults to 0 and the
// raw output carries the error text, so a caller can record the outcome and
// move on.
func (r *Runner) Predict(ctx context.Context, prompt string) (int, string, error) {
	options := llm.DefaultOptions()
	options.MaxTokens = MaxNewTokens

	result, err := r.lm.Complete(ctx, prompt, options)
	if err != nil {
		r.log.Errorf("Error in prediction: %v", err)
		return 0, "ERROR: " + err.Error(), err
	}

	r.mu.Lock()
	r.usage.Add(result.Usage)
	r.mu.Unlock()

	fullOutput := result.Text

	// Isolate the generated continuation by stripping the echoed prompt.
	// Tokenization round-trips can perturb the echo; when the prefix is
	// not found verbatim, the last 50 characters of the full output serve
	// as the continuation signal instead.
	var continuation string
	if strings.HasPrefix(fullOutput, prompt) {
		continuation = strings.TrimSpace(fullOutput[len(prompt):])
	} else {
		continuation = strings.TrimSpace(tail(fullOutput, lastWindow))
	}

	label, ok := ParseLabel(continuation, fullOutput)
	if !ok {
		r.log.Warnf("Unclear classification from response: %s", strings.ToLower(tail(fullOutput, lastWindow)))
	}
	return label, fullOutput, nil
}

// Usage returns the accumulated token usage across all calls.
func (r *Runner) Usage() llm.Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

// ModelName reports the underlying model identifier.
func (r *Runner) ModelName() string {
	return r.lm.Name()
}
