// Package config holds the run configuration for a single evaluation run.
package config

import "strings"

// Defaults matching the evaluation setup this tool was built for.
const (
	DefaultModelName          = "deepseek-ai/DeepSeek-R1-Distill-Qwen-7B"
	DefaultAPIBase            = "http://localhost:8000/v1"
	DefaultGPUID              = 1
	DefaultRandomSeed         = 42
	DefaultMaxLength          = 4096
	DefaultCheckpointInterval = 10
)

// Config is the immutable set of parameters for one evaluation run.
// It is populated once from CLI flags / environment variables and never
// mutated afterwards.
type Config struct {
	ExamplesPath string
	TestPath     string
	OutputDir    string
	CacheDir     string
	LogDir       string

	ModelName string
	APIBase   string
	// GPUID is advisory only: device placement happens on the serving
	// side of the completion endpoint. It is logged for traceability.
	GPUID   int
	HFToken string

	RandomSeed         int64
	TestLimit          int
	CheckpointInterval int
	MaxLength          int
}

// ModelShortName returns a filesystem-safe short name for the configured
// model, used in log, checkpoint and artifact file names.
func (c *Config) ModelShortName() string {
	name := strings.ToLower(c.ModelName)
	replacer := strings.NewReplacer("/", "_", ":", "_", " ", "_", ".", "_")
	return replacer.Replace(name)
}
