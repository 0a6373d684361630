package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"biaseval/internal/batch"
	"biaseval/internal/classify"
	"biaseval/internal/config"
	"biaseval/internal/dataset"
	"biaseval/internal/llm"
	"biaseval/internal/logging"
	"biaseval/internal/report"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// Optional .env; missing file is fine.
	_ = godotenv.Load()

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runEvaluation executes one full evaluation run. Setup and load errors are
// fatal; everything after the batch loop starts is contained per record.
func runEvaluation(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, dir := range []string{cfg.OutputDir, cfg.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	modelShort := cfg.ModelShortName()
	log, logFile, err := logging.Setup(cfg.LogDir, modelShort)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Infof("Logging to %s", logFile)

	logArguments(log, cfg)
	log.Infof("Random seed set to %d", cfg.RandomSeed)

	startTime := time.Now()

	if err := run(ctx, cfg, modelShort, log); err != nil {
		log.Errorf("Error in main execution: %v", err)
		_ = log.Sync()
		os.Exit(1)
	}

	elapsedHours := time.Since(startTime).Hours()
	log.Infof("Total execution time: %.2f hours", elapsedHours)
	return nil
}

func run(ctx context.Context, cfg *config.Config, modelShort string, log *zap.SugaredLogger) error {
	examples, tests, err := dataset.Load(cfg.ExamplesPath, cfg.TestPath, cfg.TestLimit, log)
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg.ModelName, cfg.APIBase, cfg.HFToken)
	if cfg.CacheDir != "" {
		cache, err := llm.NewDiskCache(cfg.CacheDir)
		if err != nil {
			return err
		}
		client.Cache = cache
		log.Infof("Using cache directory: %s", cfg.CacheDir)
		defer func() {
			stats := cache.Stats()
			log.Infof("Response cache: %d hits, %d misses", stats.Hits, stats.Misses)
		}()
	}

	log.Infof("Connecting to completion endpoint: %s", cfg.APIBase)
	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("model endpoint setup failed: %w", err)
	}

	runner := classify.NewRunner(client, log)

	log.Infof("Processing %d comments with %d few-shot examples...", len(tests), len(examples))

	driver := &batch.Driver{
		Runner:             runner,
		Examples:           examples,
		Seed:               cfg.RandomSeed,
		MaxLength:          cfg.MaxLength,
		CheckpointInterval: cfg.CheckpointInterval,
		OutputDir:          cfg.OutputDir,
		ModelShort:         modelShort,
		Log:                log,
	}
	outcomes, err := driver.Run(ctx, tests)
	if err != nil {
		return err
	}

	accuracy, f1, err := report.Save(cfg.OutputDir, modelShort, tests, outcomes, log)
	if err != nil {
		return err
	}

	log.Info("===== Final Summary =====")
	log.Infof("Model: %s", cfg.ModelName)
	log.Infof("Test set size: %d", len(tests))
	log.Infof("Few-shot examples: %d", len(examples))
	log.Infof("Accuracy: %.4f", accuracy)
	log.Infof("F1 Score: %.4f", f1)
	return nil
}

// logArguments logs the run configuration, masking the access token.
func logArguments(log *zap.SugaredLogger, cfg *config.Config) {
	log.Info("Arguments:")
	log.Infof("  examples_path: %s", cfg.ExamplesPath)
	log.Infof("  test_path: %s", cfg.TestPath)
	log.Infof("  output_dir: %s", cfg.OutputDir)
	log.Infof("  cache_dir: %s", cfg.CacheDir)
	log.Infof("  log_dir: %s", cfg.LogDir)
	log.Infof("  model_name: %s", cfg.ModelName)
	log.Infof("  api_base: %s", cfg.APIBase)
	log.Infof("  gpu_id: %d", cfg.GPUID)
	if cfg.HFToken != "" {
		log.Infof("  hf_token: %s", "********")
	} else {
		log.Infof("  hf_token: %s", "Not provided")
	}
	log.Infof("  random_seed: %d", cfg.RandomSeed)
	log.Infof("  test_limit: %d", cfg.TestLimit)
	log.Infof("  checkpoint_interval: %d", cfg.CheckpointInterval)
	log.Infof("  max_length: %d", cfg.MaxLength)
}
