// Package batch drives the sequential evaluation loop over the test set.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"biaseval/internal/classify"
	"biaseval/internal/dataset"
	"biaseval/internal/prompt"
)

// maxStoredOutput bounds persisted raw model outputs.
const maxStoredOutput = 500

// Outcome is the tagged result of one test record: either a parsed
// prediction or a contained failure. Err is informational; Predicted and
// RawOutput are always populated.
type Outcome struct {
	Predicted int
	RawOutput string
	Err       error
}

// Driver iterates the test set one record at a time, building prompts,
// invoking the runner and persisting checkpoints. No record is processed
// concurrently and no failed generation is retried.
type Driver struct {
	Runner             *classify.Runner
	Examples           []dataset.Record
	Seed               int64
	MaxLength          int
	CheckpointInterval int
	OutputDir          string
	ModelShort         string
	Log                *zap.SugaredLogger
}

// Run processes every test record and returns one outcome per record,
// order-aligned with tests. Per-record failures are contained: the record
// scores as prediction 0 with the error text as raw output and the loop
// continues. Only checkpoint-directory setup can fail the run.
func (d *Driver) Run(ctx context.Context, tests []dataset.Record) ([]Outcome, error) {
	checkpointDir := filepath.Join(d.OutputDir, "checkpoints")
	if err := os.MkdirAll(checkpointDir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}

	interval := d.CheckpointInterval
	if interval <= 0 {
		interval = 10
	}

	outcomes := make([]Outcome, 0, len(tests))
	for i, rec := range tests {
		p := prompt.FewShot(d.Examples, rec.CleanedComment, d.Seed)

		// All-or-nothing fallback: when the full few-shot prompt would
		// blow the token budget, drop the examples entirely.
		if n := prompt.EstimateTokens(p); n > d.MaxLength {
			d.Log.Warnf("Prompt too long (%d tokens). Using simplified version.", n)
			p = prompt.Simplified(rec.CleanedComment)
		}

		predicted, raw, err := d.Runner.Predict(ctx, p)
		if err != nil {
			d.Log.Errorf("Error processing comment %d: %v", i+1, err)
		}
		outcomes = append(outcomes, Outcome{Predicted: predicted, RawOutput: raw, Err: err})

		if (i+1)%10 == 0 || i == 0 {
			d.Log.Infof("Processed example %d/%d", i+1, len(tests))
			d.Log.Infof("Decision: %d (0=non-regional, 1=regional)", predicted)
		}

		if (i+1)%interval == 0 || i == len(tests)-1 {
			path := filepath.Join(checkpointDir, fmt.Sprintf("%s_checkpoint_%d.csv", d.ModelShort, i+1))
			if err := writeResultsCSV(path, tests[:i+1], outcomes); err != nil {
				d.Log.Errorf("Failed to save checkpoint: %v", err)
			} else {
				d.Log.Infof("Saved checkpoint at %s", path)
			}
		}
	}

	usage := d.Runner.Usage()
	d.Log.Infof("Token usage: prompt=%d completion=%d total=%d",
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)

	return outcomes, nil
}

// writeResultsCSV persists processed records with their predictions. Raw
// model outputs are truncated to keep files bounded. Shared by checkpoints
// and the final predictions artifact.
func writeResultsCSV(path string, tests []dataset.Record, outcomes []Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Comment", "Cleaned_Comment", "True_Label", "Predicted", "Model_Output"}); err != nil {
		return err
	}
	for i, rec := range tests {
		row := []string{
			rec.Comment,
			rec.CleanedComment,
			strconv.Itoa(rec.Label),
			strconv.Itoa(outcomes[i].Predicted),
			Truncate(outcomes[i].RawOutput, maxStoredOutput),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Truncate bounds s to n bytes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// WriteResults writes the final predictions CSV in the same layout as the
// checkpoints.
func WriteResults(path string, tests []dataset.Record, outcomes []Outcome) error {
	return writeResultsCSV(path, tests, outcomes)
}
