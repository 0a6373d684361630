package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biaseval/internal/classify"
	"biaseval/internal/dataset"
	"biaseval/internal/llm"
)

// scriptedLM answers each call with the prompt echo plus the scripted
// continuation, or fails when the script says so.
type scriptedLM struct {
	calls        int
	continuation func(call int) (string, error)
}

func (s *scriptedLM) Complete(_ context.Context, prompt string, _ *llm.Options) (*llm.Result, error) {
	call := s.calls
	s.calls++
	cont, err := s.continuation(call)
	if err != nil {
		return nil, err
	}
	return &llm.Result{Text: prompt + cont, Usage: llm.Usage{TotalTokens: 10}}, nil
}

func (s *scriptedLM) Name() string { return "scripted-lm" }

func alwaysOne() *scriptedLM {
	return &scriptedLM{continuation: func(int) (string, error) { return " 1", nil }}
}

func exampleSet() []dataset.Record {
	return []dataset.Record{
		{Comment: "bias example", CleanedComment: "bias example", Level: 2, Label: 1},
		{Comment: "clean example", CleanedComment: "clean example", Level: 0, Label: 0},
	}
}

func testSet(n int) []dataset.Record {
	records := make([]dataset.Record, n)
	for i := range records {
		label := i % 2
		records[i] = dataset.Record{
			Comment:        fmt.Sprintf("test comment %d", i),
			CleanedComment: fmt.Sprintf("test comment %d", i),
			Level:          label,
			Label:          label,
		}
	}
	return records
}

func newDriver(t *testing.T, lm llm.LM, interval int) *Driver {
	t.Helper()
	return &Driver{
		Runner:             classify.NewRunner(lm, zap.NewNop().Sugar()),
		Examples:           exampleSet(),
		Seed:               42,
		MaxLength:          4096,
		CheckpointInterval: interval,
		OutputDir:          t.TempDir(),
		ModelShort:         "test_model",
		Log:                zap.NewNop().Sugar(),
	}
}

func readCheckpoint(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestDriverCheckpoints(t *testing.T) {
	d := newDriver(t, alwaysOne(), 10)
	tests := testSet(25)

	_, err := d.Run(context.Background(), tests)
	require.NoError(t, err)

	checkpointDir := filepath.Join(d.OutputDir, "checkpoints")
	// Interval checkpoints plus the unconditional final one.
	for _, n := range []int{10, 20, 25} {
		path := filepath.Join(checkpointDir, fmt.Sprintf("test_model_checkpoint_%d.csv", n))
		rows := readCheckpoint(t, path)
		assert.Len(t, rows, n+1, "checkpoint %d should hold header plus %d rows", n, n)
		assert.Equal(t, []string{"Comment", "Cleaned_Comment", "True_Label", "Predicted", "Model_Output"}, rows[0])
	}

	entries, err := os.ReadDir(checkpointDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no extra checkpoints expected")
}

func TestDriverFinalCheckpointOnIntervalBoundary(t *testing.T) {
	d := newDriver(t, alwaysOne(), 10)

	_, err := d.Run(context.Background(), testSet(20))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(d.OutputDir, "checkpoints"))
	require.NoError(t, err)
	// Record 20 is both an interval checkpoint and the final record; it is
	// written once.
	assert.Len(t, entries, 2)
}

func TestDriverContainsPerRecordFailures(t *testing.T) {
	lm := &scriptedLM{continuation: func(call int) (string, error) {
		if call == 1 {
			return "", errors.New("backend exploded")
		}
		return " 1", nil
	}}
	d := newDriver(t, lm, 10)
	tests := testSet(4)

	outcomes, err := d.Run(context.Background(), tests)
	require.NoError(t, err, "one failing record must not abort the run")
	require.Len(t, outcomes, 4)

	assert.Equal(t, 0, outcomes[1].Predicted)
	assert.True(t, strings.HasPrefix(outcomes[1].RawOutput, "ERROR: "))
	assert.Error(t, outcomes[1].Err)

	for _, i := range []int{0, 2, 3} {
		assert.Equal(t, 1, outcomes[i].Predicted, "record %d must still be processed", i)
		assert.NoError(t, outcomes[i].Err)
	}
}

func TestDriverTruncatesStoredOutputs(t *testing.T) {
	long := strings.Repeat("x", 900)
	lm := &scriptedLM{continuation: func(int) (string, error) { return " 1 " + long, nil }}
	d := newDriver(t, lm, 1)

	_, err := d.Run(context.Background(), testSet(1))
	require.NoError(t, err)

	rows := readCheckpoint(t, filepath.Join(d.OutputDir, "checkpoints", "test_model_checkpoint_1.csv"))
	require.Len(t, rows, 2)
	assert.LessOrEqual(t, len(rows[1][4]), 500)
}

func TestDriverSimplifiedPromptFallback(t *testing.T) {
	var prompts []string
	lm := &scriptedLM{continuation: func(int) (string, error) { return " 1", nil }}
	capture := &promptCapturingLM{inner: lm, prompts: &prompts}

	d := newDriver(t, capture, 10)
	d.MaxLength = 20 // far below the full few-shot prompt

	_, err := d.Run(context.Background(), testSet(1))
	require.NoError(t, err)

	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Examples are provided separately.")
	assert.NotContains(t, prompts[0], "Comment: \"bias example\"")
}

type promptCapturingLM struct {
	inner   llm.LM
	prompts *[]string
}

func (p *promptCapturingLM) Complete(ctx context.Context, prompt string, options *llm.Options) (*llm.Result, error) {
	*p.prompts = append(*p.prompts, prompt)
	return p.inner.Complete(ctx, prompt, options)
}

func (p *promptCapturingLM) Name() string { return p.inner.Name() }
