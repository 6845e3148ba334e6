// Package suite turns the logs of the rain-ripples benchmark (suite A) into
// per-run records and per-configuration speedup/efficiency rows.
//
// Log file names carry the configuration:
//
//	seq_W1024_H768_N16_run01.log
//	omp_8_W1024_H768_N16_run01.log
//	omp8_W1024_H768_N16_run01.log
//	omp_W1024_H768_N16_run01.log   (thread count unknown)
//
// Log contents carry the measurements (sim, sim+ink, shade+present, FPS).
package suite

import (
	"fmt"
	"regexp"
	"strconv"
)

// Mode is the execution flavour of a run.
type Mode int

const (
	Sequential Mode = iota
	Parallel
)

// String returns the tag used in file names and tables.
func (m Mode) String() string {
	switch m {
	case Sequential:
		return "seq"
	case Parallel:
		return "omp"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Threads is a thread count that may not be known yet.
// The zero Threads is unknown.
type Threads struct {
	n int
}

// UnknownThreads marks a parallel run whose thread count was not in its name.
var UnknownThreads = Threads{}

// KnownThreads returns a known thread count. n <= 0 yields UnknownThreads.
func KnownThreads(n int) Threads {
	if n <= 0 {
		return UnknownThreads
	}
	return Threads{n: n}
}

func (t Threads) Known() bool { return t.n > 0 }

// Count returns the thread count, 0 when unknown.
func (t Threads) Count() int { return t.n }

// Or returns t when known and KnownThreads(d) otherwise.
func (t Threads) Or(d int) Threads {
	if t.Known() {
		return t
	}
	return KnownThreads(d)
}

func (t Threads) String() string { return strconv.Itoa(t.n) }

// LogFileKey is the configuration parsed from a log file name.
type LogFileKey struct {
	Mode    Mode
	Threads Threads
	Width   int
	Height  int
	N       int
	Run     int
}

// reLogName accepts "seq_", "omp_", "omp<p>_" and "omp_<p>_" prefixes.
var reLogName = regexp.MustCompile(`^(?:(seq)|omp(?:_?(\d+))?)_W(\d+)_H(\d+)_N(\d+)_run(\d+)\.log$`)

// ParseFileName classifies a log file name. It reports false for names that
// follow neither naming convention; it never panics.
func ParseFileName(name string) (LogFileKey, bool) {
	m := reLogName.FindStringSubmatch(name)
	if m == nil {
		return LogFileKey{}, false
	}

	var nums [4]int
	for i, s := range m[3:7] {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return LogFileKey{}, false
		}
		nums[i] = n
	}

	key := LogFileKey{
		Width:  nums[0],
		Height: nums[1],
		N:      nums[2],
		Run:    nums[3],
	}

	if m[1] != "" {
		key.Mode = Sequential
		key.Threads = KnownThreads(1)
		return key, true
	}

	key.Mode = Parallel
	if m[2] != "" {
		p, err := strconv.Atoi(m[2])
		if err != nil {
			return LogFileKey{}, false
		}
		key.Threads = KnownThreads(p)
	}
	return key, true
}
