// Package config resolves the analyzer settings from defaults, an optional
// YAML file and SUITEA_* environment variables, in that order. Command-line
// flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"

	"suitea/utils"

	"gopkg.in/yaml.v3"
)

// Defaults match the layout produced by the benchmark shell loops.
const (
	DefaultLogDir     = "logs"
	DefaultRunsCSV    = "logs/results_suiteA.csv"
	DefaultSpeedupCSV = "logs/suiteA_speedup_eficiencia.csv"
)

// Config holds the analyzer settings.
//
// Env vars:
//
//	SUITEA_LOGS         (default: "logs")
//	SUITEA_CSV          (default: "logs/results_suiteA.csv")
//	SUITEA_SPEEDUP_CSV  (default: "logs/suiteA_speedup_eficiencia.csv")
//	SUITEA_THREADS      (default: 0 -> no backfill)
//	SUITEA_WORKERS      (default: 0 -> GOMAXPROCS)
//	SUITEA_VERBOSE      (default: false)
type Config struct {
	LogDir         string `yaml:"logs"`
	RunsCSV        string `yaml:"csv"`
	SpeedupCSV     string `yaml:"speedup_csv"`
	DefaultThreads int    `yaml:"threads"`
	Workers        int    `yaml:"workers"`
	Verbose        bool   `yaml:"verbose"`
}

func Default() Config {
	return Config{
		LogDir:     DefaultLogDir,
		RunsCSV:    DefaultRunsCSV,
		SpeedupCSV: DefaultSpeedupCSV,
	}
}

// Load builds a Config. path may be empty, in which case no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.LogDir = utils.GetEnvWithDefault("SUITEA_LOGS", cfg.LogDir)
	cfg.RunsCSV = utils.GetEnvWithDefault("SUITEA_CSV", cfg.RunsCSV)
	cfg.SpeedupCSV = utils.GetEnvWithDefault("SUITEA_SPEEDUP_CSV", cfg.SpeedupCSV)
	cfg.DefaultThreads = utils.MustEnvIntWithDefault("SUITEA_THREADS", cfg.DefaultThreads)
	cfg.Workers = utils.MustEnvIntWithDefault("SUITEA_WORKERS", cfg.Workers)
	cfg.Verbose = utils.GetEnvBool("SUITEA_VERBOSE", cfg.Verbose)

	return cfg, cfg.Validate()
}

// Validate rejects settings the pipeline cannot use.
func (c Config) Validate() error {
	if c.LogDir == "" {
		return fmt.Errorf("config: logs directory is empty")
	}
	if c.RunsCSV == "" || c.SpeedupCSV == "" {
		return fmt.Errorf("config: output paths must not be empty")
	}
	if c.DefaultThreads < 0 {
		return fmt.Errorf("config: threads must be a positive integer, got %d", c.DefaultThreads)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}
