package main

import (
	"github.com/urfave/cli/v2"

	"biaseval/internal/config"
)

// newApp creates the CLI application. The tool has a single action: run
// one evaluation end to end.
func newApp() *cli.App {
	return &cli.App{
		Name:    "biaseval",
		Usage:   "Few-shot regional bias evaluation against a hosted completion endpoint",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "examples-path",
				Value:   "data/150_examples_few_shot_classification_dataset.csv",
				Usage:   "Path to CSV file with few-shot examples",
				EnvVars: []string{"EXAMPLES_PATH"},
			},
			&cli.StringFlag{
				Name:    "test-path",
				Value:   "data/annotated_dataset.csv",
				Usage:   "Path to CSV file with test dataset",
				EnvVars: []string{"TEST_PATH"},
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Value:   "results/few_shot_150",
				Usage:   "Directory to save results",
				EnvVars: []string{"OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Value:   "model_cache",
				Usage:   "Directory for the completion response cache (empty disables caching)",
				EnvVars: []string{"CACHE_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-dir",
				Value:   "logs",
				Usage:   "Directory for log files",
				EnvVars: []string{"LOG_DIR"},
			},
			&cli.StringFlag{
				Name:    "model-name",
				Value:   config.DefaultModelName,
				Usage:   "Model identifier on the completion endpoint",
				EnvVars: []string{"MODEL_NAME"},
			},
			&cli.StringFlag{
				Name:    "api-base",
				Value:   config.DefaultAPIBase,
				Usage:   "Base URL of the OpenAI-compatible completion endpoint",
				EnvVars: []string{"API_BASE"},
			},
			&cli.IntFlag{
				Name:    "gpu-id",
				Value:   config.DefaultGPUID,
				Usage:   "GPU the serving side is expected to use (logged only)",
				EnvVars: []string{"GPU_ID"},
			},
			&cli.StringFlag{
				Name:    "hf-token",
				Value:   "",
				Usage:   "Access token for the endpoint (prefer the env var)",
				EnvVars: []string{"HF_TOKEN"},
			},
			&cli.Int64Flag{
				Name:    "random-seed",
				Value:   config.DefaultRandomSeed,
				Usage:   "Random seed for the example ordering",
				EnvVars: []string{"RANDOM_SEED"},
			},
			&cli.IntFlag{
				Name:  "test-limit",
				Value: 0,
				Usage: "Limit number of test examples (0 = no limit)",
			},
			&cli.IntFlag{
				Name:  "checkpoint-interval",
				Value: config.DefaultCheckpointInterval,
				Usage: "Interval for saving checkpoints",
			},
			&cli.IntFlag{
				Name:    "max-length",
				Value:   config.DefaultMaxLength,
				Usage:   "Maximum context length in tokens",
				EnvVars: []string{"MAX_LENGTH"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := &config.Config{
				ExamplesPath:       c.String("examples-path"),
				TestPath:           c.String("test-path"),
				OutputDir:          c.String("output-dir"),
				CacheDir:           c.String("cache-dir"),
				LogDir:             c.String("log-dir"),
				ModelName:          c.String("model-name"),
				APIBase:            c.String("api-base"),
				GPUID:              c.Int("gpu-id"),
				HFToken:            c.String("hf-token"),
				RandomSeed:         c.Int64("random-seed"),
				TestLimit:          c.Int("test-limit"),
				CheckpointInterval: c.Int("checkpoint-interval"),
				MaxLength:          c.Int("max-length"),
			}
			return runEvaluation(c.Context, cfg)
		},
	}
}
