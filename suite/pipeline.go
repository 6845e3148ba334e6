package suite

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
)

// ErrNoLogs means the directory held no log with a recognised name.
var ErrNoLogs = errors.New("no valid logs found (expected names: seq_W... or ompP_W...)")

// Options configures Run.
type Options struct {
	LogDir string
	// DefaultThreads backfills parallel runs whose names lack a thread
	// count; 0 leaves them unknown.
	DefaultThreads int
	Workers        int
}

// Result is everything the pipeline derives from one log directory.
type Result struct {
	// Records are ordered by mode tag, N, thread count and run index.
	Records []LogRecord
	Groups  []GroupSummary
	Speedup SpeedupResult
}

// Run collects, backfills, aggregates and computes speedup for opts.LogDir.
func Run(ctx context.Context, opts Options) (*Result, error) {
	records, err := Collect(ctx, opts.LogDir, CollectOptions{Workers: opts.Workers})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoLogs, opts.LogDir)
	}

	if n := BackfillThreads(records, opts.DefaultThreads); n > 0 {
		log.Printf("[pipeline] backfilled thread count %d on %d parallel runs", opts.DefaultThreads, n)
	}
	SortRecords(records)

	groups := Aggregate(records)
	speedup := ComputeSpeedup(groups)
	if speedup.NoParallel {
		log.Warn("[pipeline] no parallel runs (mode=omp) found")
	}

	return &Result{
		Records: records,
		Groups:  groups,
		Speedup: speedup,
	}, nil
}

// SortRecords orders records by mode tag, N, thread count and run index.
func SortRecords(records []LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if ma, mb := a.Mode.String(), b.Mode.String(); ma != mb {
			return ma < mb
		}
		if a.N != b.N {
			return a.N < b.N
		}
		if a.Threads.Count() != b.Threads.Count() {
			return a.Threads.Count() < b.Threads.Count()
		}
		return a.Run < b.Run
	})
}
