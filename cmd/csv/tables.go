package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"suitea/suite"

	log "github.com/sirupsen/logrus"
)

// Suite is the value of the "suite" column of the per-run table.
const Suite = "A"

var (
	runsHeader    = []string{"suite", "N", "W", "H", "mode", "p", "run", "mean_sim_ms", "mean_shade_ms", "mean_FPS"}
	speedupHeader = []string{"N", "p", "Tseq_ms", "Tpar_ms", "Speedup", "Eficiencia", "FPS_seq", "FPS_omp"}
)

type csvSink struct {
	path string
	file *os.File
	w    *csv.Writer
}

func newCsvSink(path string) (*csvSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[csv] create dir %q: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("[csv] create %s: %w", path, err)
	}
	return &csvSink{path: path, file: f, w: csv.NewWriter(f)}, nil
}

func (s *csvSink) writeRow(fields ...string) error {
	if err := s.w.Write(fields); err != nil {
		return fmt.Errorf("[csv] write row to %s: %w", s.path, err)
	}
	return nil
}

func (s *csvSink) close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("[csv] flush %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("[csv] close %s: %w", s.path, err)
	}
	return nil
}

// WriteRuns writes one row per record, in the order given.
func WriteRuns(path string, records []suite.LogRecord) error {
	s, err := newCsvSink(path)
	if err != nil {
		return err
	}
	if err := writeRuns(s, records); err != nil {
		s.close()
		return err
	}
	if err := s.close(); err != nil {
		return err
	}
	log.Printf("[csv] wrote %s with %d rows", path, len(records))
	return nil
}

func writeRuns(s *csvSink, records []suite.LogRecord) error {
	if err := s.writeRow(runsHeader...); err != nil {
		return err
	}
	for _, r := range records {
		err := s.writeRow(
			Suite,
			strconv.Itoa(r.N),
			strconv.Itoa(r.Width),
			strconv.Itoa(r.Height),
			r.Mode.String(),
			r.Threads.String(),
			strconv.Itoa(r.Run),
			r.MeanSimMs.String(),
			r.MeanShadeMs.String(),
			r.MeanFPS.String(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteSpeedup writes the speedup/efficiency table.
func WriteSpeedup(path string, rows []suite.SpeedupRow) error {
	s, err := newCsvSink(path)
	if err != nil {
		return err
	}
	if err := writeSpeedup(s, rows); err != nil {
		s.close()
		return err
	}
	if err := s.close(); err != nil {
		return err
	}
	log.Printf("[csv] wrote %s with %d rows", path, len(rows))
	return nil
}

func writeSpeedup(s *csvSink, rows []suite.SpeedupRow) error {
	if err := s.writeRow(speedupHeader...); err != nil {
		return err
	}
	for _, r := range rows {
		err := s.writeRow(
			strconv.Itoa(r.N),
			r.Threads.String(),
			r.SeqTimeMs.String(),
			r.ParTimeMs.String(),
			r.Speedup.String(),
			r.Efficiency.String(),
			r.SeqFPS.String(),
			r.ParFPS.String(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
