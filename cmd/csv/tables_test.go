package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"suitea/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results_suiteA.csv")
	records := []suite.LogRecord{
		{
			LogFileKey:  suite.LogFileKey{Mode: suite.Parallel, Threads: suite.UnknownThreads, Width: 1024, Height: 768, N: 16, Run: 1},
			MeanSimMs:   suite.Defined(3),
			MeanShadeMs: suite.Undefined,
			MeanFPS:     suite.Defined(59.5),
		},
		{
			LogFileKey:  suite.LogFileKey{Mode: suite.Sequential, Threads: suite.KnownThreads(1), Width: 1024, Height: 768, N: 16, Run: 2},
			MeanSimMs:   suite.Defined(12.25),
			MeanShadeMs: suite.Defined(4),
			MeanFPS:     suite.Undefined,
		},
	}

	require.NoError(t, WriteRuns(path, records))

	assert.Equal(t, [][]string{
		{"suite", "N", "W", "H", "mode", "p", "run", "mean_sim_ms", "mean_shade_ms", "mean_FPS"},
		{"A", "16", "1024", "768", "omp", "0", "1", "3", "", "59.5"},
		{"A", "16", "1024", "768", "seq", "1", "2", "12.25", "4", ""},
	}, readAll(t, path))
}

func TestWriteSpeedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speedup.csv")
	rows := []suite.SpeedupRow{
		{
			N:          16,
			Threads:    suite.KnownThreads(8),
			SeqTimeMs:  suite.Defined(11),
			ParTimeMs:  suite.Defined(2),
			Speedup:    suite.Defined(5.5),
			Efficiency: suite.Defined(0.6875),
			SeqFPS:     suite.Undefined,
			ParFPS:     suite.Defined(60),
		},
	}

	require.NoError(t, WriteSpeedup(path, rows))

	assert.Equal(t, [][]string{
		{"N", "p", "Tseq_ms", "Tpar_ms", "Speedup", "Eficiencia", "FPS_seq", "FPS_omp"},
		{"16", "8", "11", "2", "5.5", "0.6875", "", "60"},
	}, readAll(t, path))
}

func TestWriteRunsBadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := WriteRuns(filepath.Join(blocker, "out.csv"), nil)
	require.Error(t, err)
}
