package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases",
			input: "People From THAT State",
			want:  "people from that state",
		},
		{
			name:  "strips urls",
			input: "look at this http://example.com/x?y=1 now",
			want:  "look at this now",
		},
		{
			name:  "strips punctuation",
			input: "what?! a comment, with: symbols...",
			want:  "what a comment with symbols",
		},
		{
			name:  "collapses whitespace",
			input: "too   many\t\tspaces\n\nhere",
			want:  "too many spaces here",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			if got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"People From THAT State!!",
		"visit http://spam.example NOW",
		"  already   messy\ttext  ",
		"plain text",
	}
	for _, in := range inputs {
		once := CleanText(in)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv", "Comment,Level-1\nhello,0\n")

	if _, _, err := Load(examples, filepath.Join(dir, "missing.csv"), 0, nopLogger()); err == nil {
		t.Fatal("expected error for missing test file")
	}
	if _, _, err := Load(filepath.Join(dir, "missing.csv"), examples, 0, nopLogger()); err == nil {
		t.Fatal("expected error for missing examples file")
	}
}

func TestLoadOverlapRemoval(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv",
		"Comment,Level-1\nshared comment,1\nexample only,0\n")
	testSet := writeCSV(t, dir, "test.csv",
		"Comment,Level-1\nshared comment ,2\nunique one,0\nunique two,1\n")

	_, tests, err := Load(examples, testSet, 0, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(tests) != 2 {
		t.Fatalf("got %d test records, want 2", len(tests))
	}
	for _, r := range tests {
		if r.Comment == "shared comment " {
			t.Errorf("overlapping comment %q was not removed", r.Comment)
		}
	}
}

func TestLoadBinarizesAndCleans(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv",
		"Comment,Level-1\nMild Comment!,0\nSevere Comment?,3\n")
	testSet := writeCSV(t, dir, "test.csv",
		"Comment,Level-1\nSome OTHER text.,1\n")

	exs, tests, err := Load(examples, testSet, 0, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if exs[0].Label != 0 || exs[1].Label != 1 {
		t.Errorf("labels = %d,%d, want 0,1", exs[0].Label, exs[1].Label)
	}
	if exs[1].CleanedComment != "severe comment" {
		t.Errorf("CleanedComment = %q", exs[1].CleanedComment)
	}
	if tests[0].CleanedComment != "some other text" {
		t.Errorf("test CleanedComment = %q", tests[0].CleanedComment)
	}
	if tests[0].Label != 1 {
		t.Errorf("test label = %d, want 1", tests[0].Label)
	}
}

func TestLoadTestLimit(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv", "Comment,Level-1\nex,0\n")
	testSet := writeCSV(t, dir, "test.csv",
		"Comment,Level-1\na,0\nb,1\nc,0\nd,1\n")

	_, tests, err := Load(examples, testSet, 2, nopLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(tests) != 2 {
		t.Fatalf("got %d test records, want 2", len(tests))
	}
	if tests[0].Comment != "a" || tests[1].Comment != "b" {
		t.Errorf("limit must keep the head of the test set, got %q,%q", tests[0].Comment, tests[1].Comment)
	}
}

func TestLoadWarnsOnImbalance(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv",
		"Comment,Level-1\nbias one,1\nclean one,0\n")
	testSet := writeCSV(t, dir, "test.csv", "Comment,Level-1\nother,0\n")

	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core).Sugar()

	if _, _, err := Load(examples, testSet, 0, log); err != nil {
		t.Fatal(err)
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() == 0 {
		t.Error("expected an imbalance warning for a 1/1 example split")
	}
}

func TestLoadMissingColumns(t *testing.T) {
	dir := t.TempDir()
	examples := writeCSV(t, dir, "examples.csv", "Text,Score\nhello,0\n")
	testSet := writeCSV(t, dir, "test.csv", "Comment,Level-1\nother,0\n")

	if _, _, err := Load(examples, testSet, 0, nopLogger()); err == nil {
		t.Fatal("expected error for missing required columns")
	}
}
