package store

import (
	"strconv"

	"suitea/suite"

	"github.com/cespare/xxhash/v2"
)

// RunDoc is the storage form of a suite.LogRecord. Undefined measurements
// are nil.
type RunDoc struct {
	ID          string   `json:"id" bson:"_id"`
	Suite       string   `json:"suite" bson:"suite"`
	File        string   `json:"file" bson:"file"`
	N           int      `json:"n" bson:"n"`
	W           int      `json:"w" bson:"w"`
	H           int      `json:"h" bson:"h"`
	Mode        string   `json:"mode" bson:"mode"`
	P           int      `json:"p" bson:"p"`
	Run         int      `json:"run" bson:"run"`
	MeanSimMs   *float64 `json:"mean_sim_ms,omitempty" bson:"mean_sim_ms,omitempty"`
	MeanShadeMs *float64 `json:"mean_shade_ms,omitempty" bson:"mean_shade_ms,omitempty"`
	MeanFPS     *float64 `json:"mean_fps,omitempty" bson:"mean_fps,omitempty"`
}

// SpeedupDoc is the storage form of a suite.SpeedupRow.
type SpeedupDoc struct {
	ID         string   `json:"id" bson:"_id"`
	N          int      `json:"n" bson:"n"`
	P          int      `json:"p" bson:"p"`
	TSeqMs     *float64 `json:"tseq_ms,omitempty" bson:"tseq_ms,omitempty"`
	TParMs     *float64 `json:"tpar_ms,omitempty" bson:"tpar_ms,omitempty"`
	Speedup    *float64 `json:"speedup,omitempty" bson:"speedup,omitempty"`
	Efficiency *float64 `json:"efficiency,omitempty" bson:"efficiency,omitempty"`
	FPSSeq     *float64 `json:"fps_seq,omitempty" bson:"fps_seq,omitempty"`
	FPSOmp     *float64 `json:"fps_omp,omitempty" bson:"fps_omp,omitempty"`
}

// RunID is a stable identifier for a record: the hash of its configuration
// key and run index, so the same run from a re-scan maps to the same row.
func RunID(r suite.LogRecord) string {
	key := "A|" + r.Mode.String() +
		"|p" + r.Threads.String() +
		"|W" + strconv.Itoa(r.Width) +
		"|H" + strconv.Itoa(r.Height) +
		"|N" + strconv.Itoa(r.N) +
		"|run" + strconv.Itoa(r.Run)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// SpeedupID identifies a speedup row by N and thread count.
func SpeedupID(r suite.SpeedupRow) string {
	return "N" + strconv.Itoa(r.N) + "_p" + r.Threads.String()
}

func ptr(v suite.Value) *float64 {
	x, ok := v.Get()
	if !ok {
		return nil
	}
	return &x
}

func toRunDoc(r suite.LogRecord) RunDoc {
	return RunDoc{
		ID:          RunID(r),
		Suite:       "A",
		File:        r.File,
		N:           r.N,
		W:           r.Width,
		H:           r.Height,
		Mode:        r.Mode.String(),
		P:           r.Threads.Count(),
		Run:         r.Run,
		MeanSimMs:   ptr(r.MeanSimMs),
		MeanShadeMs: ptr(r.MeanShadeMs),
		MeanFPS:     ptr(r.MeanFPS),
	}
}

func toSpeedupDoc(r suite.SpeedupRow) SpeedupDoc {
	return SpeedupDoc{
		ID:         SpeedupID(r),
		N:          r.N,
		P:          r.Threads.Count(),
		TSeqMs:     ptr(r.SeqTimeMs),
		TParMs:     ptr(r.ParTimeMs),
		Speedup:    ptr(r.Speedup),
		Efficiency: ptr(r.Efficiency),
		FPSSeq:     ptr(r.SeqFPS),
		FPSOmp:     ptr(r.ParFPS),
	}
}

// args returns the column values in runColumns order.
func (d RunDoc) args() []any {
	return []any{d.ID, d.Suite, d.File, d.N, d.W, d.H, d.Mode, d.P, d.Run, d.MeanSimMs, d.MeanShadeMs, d.MeanFPS}
}

// args returns the column values in speedupColumns order.
func (d SpeedupDoc) args() []any {
	return []any{d.ID, d.N, d.P, d.TSeqMs, d.TParMs, d.Speedup, d.Efficiency, d.FPSSeq, d.FPSOmp}
}

var (
	runColumns     = []string{"id", "suite", "file", "n", "w", "h", "mode", "p", "run", "mean_sim_ms", "mean_shade_ms", "mean_fps"}
	speedupColumns = []string{"id", "n", "p", "tseq_ms", "tpar_ms", "speedup", "efficiency", "fps_seq", "fps_omp"}
)
