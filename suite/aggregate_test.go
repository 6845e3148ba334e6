package suite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(mode Mode, p, n, run int, sim, fps Value) LogRecord {
	threads := KnownThreads(p)
	if mode == Sequential {
		threads = KnownThreads(1)
	}
	return LogRecord{
		LogFileKey: LogFileKey{Mode: mode, Threads: threads, Width: 1024, Height: 768, N: n, Run: run},
		MeanSimMs:  sim,
		MeanFPS:    fps,
	}
}

func TestBackfillThreads(t *testing.T) {
	records := []LogRecord{
		rec(Sequential, 1, 16, 1, Defined(10), Undefined),
		rec(Parallel, 0, 16, 1, Defined(3), Undefined),
		rec(Parallel, 4, 16, 1, Defined(5), Undefined),
	}

	assert.Equal(t, 1, BackfillThreads(records, 8))
	assert.Equal(t, KnownThreads(1), records[0].Threads)
	assert.Equal(t, KnownThreads(8), records[1].Threads)
	assert.Equal(t, KnownThreads(4), records[2].Threads)
}

func TestBackfillThreadsWithoutDefaultKeepsUnknown(t *testing.T) {
	records := []LogRecord{
		rec(Parallel, 0, 16, 1, Defined(3), Undefined),
		rec(Parallel, 1, 16, 1, Defined(9), Undefined),
	}

	assert.Equal(t, 0, BackfillThreads(records, 0))
	assert.False(t, records[0].Threads.Known())

	groups := Aggregate(records)
	require.Len(t, groups, 2)
	assert.Equal(t, UnknownThreads, groups[0].Threads)
	assert.Equal(t, KnownThreads(1), groups[1].Threads)
}

func TestAggregate(t *testing.T) {
	records := []LogRecord{
		rec(Parallel, 8, 16, 1, Defined(3), Defined(30)),
		rec(Sequential, 1, 16, 1, Defined(10), Defined(10)),
		rec(Sequential, 1, 16, 2, Defined(12), Undefined),
		rec(Sequential, 1, 4, 1, Defined(2), Defined(100)),
		rec(Parallel, 8, 16, 2, Undefined, Defined(34)),
	}

	groups := Aggregate(records)
	require.Len(t, groups, 3)

	assert.Equal(t, GroupKey{N: 4, Mode: Sequential, Threads: KnownThreads(1)}, groups[0].GroupKey)

	seq := groups[1]
	assert.Equal(t, GroupKey{N: 16, Mode: Sequential, Threads: KnownThreads(1)}, seq.GroupKey)
	assert.Equal(t, 2, seq.Runs)
	assertValue(t, 11.0, seq.MeanSimMs)
	assertValue(t, 10.0, seq.MeanFPS)

	par := groups[2]
	assert.Equal(t, GroupKey{N: 16, Mode: Parallel, Threads: KnownThreads(8)}, par.GroupKey)
	assertValue(t, 3.0, par.MeanSimMs)
	assertValue(t, 32.0, par.MeanFPS)
	assert.False(t, par.MeanShadeMs.IsDefined())
}

func TestAggregateIdenticalSamples(t *testing.T) {
	var records []LogRecord
	for i := 1; i <= 7; i++ {
		records = append(records, rec(Parallel, 4, 32, i, Defined(16.667), Defined(0.1)))
	}

	groups := Aggregate(records)
	require.Len(t, groups, 1)
	assert.Equal(t, 16.667, groups[0].MeanSimMs.Float64())
	assert.Equal(t, 0.1, groups[0].MeanFPS.Float64())
	assertValue(t, 0, groups[0].StdSimMs)
}

func TestAggregateAllUndefinedStaysUndefined(t *testing.T) {
	groups := Aggregate([]LogRecord{
		rec(Sequential, 1, 8, 1, Undefined, Undefined),
		rec(Sequential, 1, 8, 2, Undefined, Undefined),
	})

	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Runs)
	assert.False(t, groups[0].MeanSimMs.IsDefined())
	assert.False(t, groups[0].MeanFPS.IsDefined())
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
