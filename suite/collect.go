package suite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LogSuffix is the extension of benchmark logs.
const LogSuffix = ".log"

var (
	// ErrSourceNotFound means the log directory does not exist.
	ErrSourceNotFound = errors.New("log directory not found")
	// ErrSourceNotDir means the log path exists but is not a directory.
	ErrSourceNotDir = errors.New("log path is not a directory")
)

// LogRecord is one recognised log file and its per-file means.
type LogRecord struct {
	LogFileKey
	File string

	MeanSimMs   Value
	MeanShadeMs Value
	MeanFPS     Value
}

// CollectOptions tunes Collect.
type CollectOptions struct {
	// Workers bounds concurrent file reads; <= 0 means GOMAXPROCS.
	Workers int
}

// Collect reads every recognised log in dir and returns one record per file,
// ordered by file name. Files whose names do not classify are skipped, as is
// anything that is not a regular file or a symlink to one.
func Collect(ctx context.Context, dir string, opts CollectOptions) ([]LogRecord, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	type job struct {
		name string
		key  LogFileKey
	}
	var jobs []job
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, LogSuffix) || !isRegularFile(dir, e) {
			continue
		}
		key, ok := ParseFileName(name)
		if !ok {
			log.WithField("file", name).Debug("[collect] skipping unrecognised log")
			continue
		}
		jobs = append(jobs, job{name: name, key: key})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].name < jobs[j].name })

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	records := make([]LogRecord, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := readLossy(filepath.Join(dir, j.name))
			if err != nil {
				return err
			}
			m := Extract(text)
			records[i] = LogRecord{
				LogFileKey:  j.key,
				File:        j.name,
				MeanSimMs:   m.SimMs,
				MeanShadeMs: m.ShadeMs,
				MeanFPS:     m.FPS,
			}
			log.WithFields(log.Fields{
				"file": j.name,
				"sim":  m.SimMs.String(),
				"fps":  m.FPS.String(),
			}).Debug("[collect] parsed log")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

// isRegularFile reports whether e is a regular file, following symlinks.
// Dangling links are skipped.
func isRegularFile(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	if err != nil {
		log.WithField("file", e.Name()).WithError(err).Debug("[collect] skipping unreadable link")
		return false
	}
	return info.Mode().IsRegular()
}

// readLossy reads a file as text, replacing invalid UTF-8 with U+FFFD.
func readLossy(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(b), "\uFFFD"), nil
}
