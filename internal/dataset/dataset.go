// Package dataset loads and normalizes the few-shot example set and the
// test set from CSV files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ExpectedPerClass is the expected number of examples per class in the
// few-shot set. A deviation is advisory, not fatal.
const ExpectedPerClass = 75

// Required CSV columns, resolved by header name.
const (
	commentColumn = "Comment"
	levelColumn   = "Level-1"
)

// Record is one labeled comment. Level is the raw annotation severity;
// Label is its binarization (1 if Level >= 1, else 0).
type Record struct {
	Comment        string
	CleanedComment string
	Level          int
	Label          int
}

var (
	urlRe        = regexp.MustCompile(`http\S+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText normalizes comment text for model input: lowercase, strip URLs,
// strip non-alphanumeric characters, collapse whitespace. Idempotent.
func CleanText(text string) string {
	text = strings.ToLower(text)
	text = urlRe.ReplaceAllString(text, "")
	text = nonAlnumRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Load reads the example and test datasets, verifies the example class
// balance, removes test rows that overlap the example set, cleans comment
// text on both sets and optionally truncates the test set to testLimit rows.
func Load(examplesPath, testPath string, testLimit int, log *zap.SugaredLogger) (examples, tests []Record, err error) {
	if _, err := os.Stat(examplesPath); err != nil {
		log.Errorf("Examples file not found: %s", examplesPath)
		return nil, nil, fmt.Errorf("examples file not found: %s", examplesPath)
	}
	if _, err := os.Stat(testPath); err != nil {
		log.Errorf("Test dataset file not found: %s", testPath)
		return nil, nil, fmt.Errorf("test dataset file not found: %s", testPath)
	}

	log.Infof("Loading examples from %s", examplesPath)
	examples, err = readCSV(examplesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read examples: %w", err)
	}

	log.Infof("Loading test dataset from %s", testPath)
	tests, err = readCSV(testPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read test dataset: %w", err)
	}

	log.Infof("Loaded %d examples and %d test comments", len(examples), len(tests))

	biasCount := 0
	for _, r := range examples {
		if r.Label == 1 {
			biasCount++
		}
	}
	nonBiasCount := len(examples) - biasCount
	log.Infof("Found %d regional bias examples and %d non-regional bias examples", biasCount, nonBiasCount)
	if biasCount != ExpectedPerClass || nonBiasCount != ExpectedPerClass {
		log.Warnf("Expected %d examples of each class, but found %d bias and %d non-bias examples",
			ExpectedPerClass, biasCount, nonBiasCount)
	}

	// The example and test sets must be disjoint by comment text.
	seen := make(map[string]struct{}, len(examples))
	for _, r := range examples {
		seen[strings.TrimSpace(r.Comment)] = struct{}{}
	}
	kept := tests[:0]
	for _, r := range tests {
		if _, overlap := seen[strings.TrimSpace(r.Comment)]; !overlap {
			kept = append(kept, r)
		}
	}
	tests = kept
	log.Infof("After removing overlapping comments, %d test comments remain", len(tests))

	log.Info("Cleaning comment text...")
	for i := range examples {
		examples[i].CleanedComment = CleanText(examples[i].Comment)
	}
	for i := range tests {
		tests[i].CleanedComment = CleanText(tests[i].Comment)
	}

	if testLimit > 0 && testLimit < len(tests) {
		log.Infof("Limiting test set to %d examples", testLimit)
		tests = tests[:testLimit]
	}

	return examples, tests, nil
}

// readCSV parses one dataset file, resolving the Comment and Level-1
// columns by header name.
func readCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	commentIdx, levelIdx := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case commentColumn:
			commentIdx = i
		case levelColumn:
			levelIdx = i
		}
	}
	if commentIdx < 0 || levelIdx < 0 {
		return nil, fmt.Errorf("%s: missing required columns %q and %q", path, commentColumn, levelColumn)
	}

	records := make([]Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if len(row) <= commentIdx || len(row) <= levelIdx {
			return nil, fmt.Errorf("%s: row %d has %d fields", path, n+2, len(row))
		}
		level, err := parseLevel(row[levelIdx])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, n+2, err)
		}
		rec := Record{
			Comment: row[commentIdx],
			Level:   level,
		}
		if rec.Level >= 1 {
			rec.Label = 1
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseLevel accepts integer or float formatting for the severity column.
func parseLevel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", levelColumn, s)
	}
	return int(f), nil
}
