package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"suitea/config"
	"suitea/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func testConfig(t *testing.T, logDir string) config.Config {
	t.Helper()
	out := t.TempDir()
	cfg := config.Default()
	cfg.LogDir = logDir
	cfg.RunsCSV = filepath.Join(out, "nested", "results_suiteA.csv")
	cfg.SpeedupCSV = filepath.Join(out, "nested", "suiteA_speedup_eficiencia.csv")
	return cfg
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"not found", fmt.Errorf("collect: %w", suite.ErrSourceNotFound), 2},
		{"not a dir", fmt.Errorf("collect: %w", suite.ErrSourceNotDir), 2},
		{"no logs", fmt.Errorf("%w in logs", suite.ErrNoLogs), 3},
		{"usage", fmt.Errorf("%w: unknown module: x", errUsage), 1},
		{"other", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "nope")

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown module", []string{"bogus"}, errUsage},
		{"default analyze", []string{"--logs", missing}, suite.ErrSourceNotFound},
		{"explicit analyze", []string{"analyze", "--logs", missing}, suite.ErrSourceNotFound},
		{"bad flag", []string{"analyze", "--nope"}, errUsage},
		{"stray argument", []string{"analyze", "extra"}, errUsage},
		{"store without action", []string{"postgres"}, errUsage},
		{"store unknown action", []string{"mongodb", "benchmark"}, errUsage},
		{"store drop with args", []string{"clickhouse", "drop", "x"}, errUsage},
		{"store load bad flag", []string{"scylladb", "load", "--nope"}, errUsage},
		{"store load missing logs", []string{"elasticsearch", "load", "--logs", missing}, suite.ErrSourceNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dispatch(ctx, tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestModulesRegisterStores(t *testing.T) {
	for _, name := range []string{"analyze", "postgres", "cockroachdb", "clickhouse", "mongodb", "elasticsearch", "scylladb"} {
		assert.Contains(t, modules, name)
	}
}

func TestParseFlagsLayering(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "suitea.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logs: from-file\nthreads: 4\nworkers: 2\n"), 0o644))

	cfg, err := parseFlags("analyze", []string{"--config", cfgPath, "--threads", "8", "--csv", "out/runs.csv"})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.LogDir)
	assert.Equal(t, 8, cfg.DefaultThreads)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "out/runs.csv", cfg.RunsCSV)
	assert.Equal(t, config.DefaultSpeedupCSV, cfg.SpeedupCSV)
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags("analyze", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParseFlagsRejectsNegativeThreads(t *testing.T) {
	_, err := parseFlags("analyze", []string{"--threads", "-1"})
	require.Error(t, err)
}

func TestAnalyzeWritesBothTables(t *testing.T) {
	logs := t.TempDir()
	writeFiles(t, logs, map[string]string{
		"seq_W1024_H768_N16_run01.log":  "sim=10.0 shade+present=1.0 FPS: 50",
		"seq_W1024_H768_N16_run02.log":  "sim=12.0 shade+present=1.0 FPS: 50",
		"omp8_W1024_H768_N16_run01.log": "sim=3.0 shade+present=1.0 FPS: 60",
		"notes.log":                     "sim=1",
	})
	cfg := testConfig(t, logs)

	var out bytes.Buffer
	res, err := analyze(context.Background(), cfg, &out)
	require.NoError(t, err)
	require.Len(t, res.Records, 3)

	runs, err := os.ReadFile(cfg.RunsCSV)
	require.NoError(t, err)
	assert.Contains(t, string(runs), "suite,N,W,H,mode,p,run,mean_sim_ms,mean_shade_ms,mean_FPS\n")

	speedup, err := os.ReadFile(cfg.SpeedupCSV)
	require.NoError(t, err)
	assert.Contains(t, string(speedup), "N,p,Tseq_ms,Tpar_ms,Speedup,Eficiencia,FPS_seq,FPS_omp\n")
	assert.Contains(t, string(speedup), "16,8,11,3,")

	assert.Contains(t, out.String(), "(3 rows)")
	assert.Contains(t, out.String(), "| 16 | 8 | 11.000 | 3.000 | 3.667 | 0.458 |")
}

func TestAnalyzeWithoutParallelRuns(t *testing.T) {
	logs := t.TempDir()
	writeFiles(t, logs, map[string]string{
		"seq_W1024_H768_N16_run01.log": "sim=10.0",
	})
	cfg := testConfig(t, logs)

	var out bytes.Buffer
	res, err := analyze(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.True(t, res.Speedup.NoParallel)

	assert.FileExists(t, cfg.RunsCSV)
	assert.NoFileExists(t, cfg.SpeedupCSV)
	assert.NotContains(t, out.String(), "Speedup")
}

func TestAnalyzeNoLogs(t *testing.T) {
	logs := t.TempDir()
	writeFiles(t, logs, map[string]string{"README.md": "sim=1"})
	cfg := testConfig(t, logs)

	_, err := analyze(context.Background(), cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, suite.ErrNoLogs)
	assert.Equal(t, 3, exitCode(err))
	assert.NoFileExists(t, cfg.RunsCSV)
}

func TestAnalyzeWithoutBaseline(t *testing.T) {
	logs := t.TempDir()
	writeFiles(t, logs, map[string]string{
		"seq_W1024_H768_N8_run01.log":   "sim=10.0",
		"omp8_W1024_H768_N16_run01.log": "sim=3.0",
	})
	cfg := testConfig(t, logs)

	var out bytes.Buffer
	res, err := analyze(context.Background(), cfg, &out)
	require.NoError(t, err)
	assert.False(t, res.Speedup.NoParallel)
	assert.Empty(t, res.Speedup.Rows)

	assert.FileExists(t, cfg.RunsCSV)
	assert.NoFileExists(t, cfg.SpeedupCSV)
	assert.NotContains(t, out.String(), "Eficiencia")
}
