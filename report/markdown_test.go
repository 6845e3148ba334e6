package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"suitea/suite"

	"github.com/stretchr/testify/assert"
)

func TestRunsPreviewLimit(t *testing.T) {
	var records []suite.LogRecord
	for i := 1; i <= PreviewRows+3; i++ {
		records = append(records, suite.LogRecord{
			LogFileKey: suite.LogFileKey{Mode: suite.Sequential, Threads: suite.KnownThreads(1), Width: 8, Height: 8, N: 4, Run: i},
			MeanSimMs:  suite.Defined(12.5),
		})
	}

	var buf bytes.Buffer
	Runs(&buf, records)
	out := buf.String()

	assert.Contains(t, out, "| A | 4 | 8 | 8 | seq | 1 | 1 | 12.50 | NaN | NaN |")
	assert.Contains(t, out, fmt.Sprintf("| A | 4 | 8 | 8 | seq | 1 | %d |", PreviewRows))
	assert.NotContains(t, out, fmt.Sprintf("| seq | 1 | %d |", PreviewRows+1))
	assert.Contains(t, out, "(3 more rows)")
}

func TestSpeedup(t *testing.T) {
	var buf bytes.Buffer
	Speedup(&buf, []suite.SpeedupRow{{
		N:          16,
		Threads:    suite.KnownThreads(8),
		SeqTimeMs:  suite.Defined(11),
		ParTimeMs:  suite.Defined(3),
		Speedup:    suite.Defined(11.0 / 3.0),
		Efficiency: suite.Defined(11.0 / 24.0),
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "| 16 | 8 | 11.000 | 3.000 | 3.667 | 0.458 | NaN | NaN |", lines[2])
}

func TestGroups(t *testing.T) {
	var buf bytes.Buffer
	Groups(&buf, []suite.GroupSummary{{
		GroupKey:  suite.GroupKey{N: 4, Mode: suite.Parallel, Threads: suite.UnknownThreads},
		Runs:      2,
		MeanSimMs: suite.Defined(0.05),
		MeanFPS:   suite.Defined(5),
	}})

	assert.Contains(t, buf.String(), "| 4 | omp | 0 | 2 | 0.050000 | NaN | NaN | 5.0000 |")
}
