// Package report prints pipeline results as markdown tables.
package report

import (
	"fmt"
	"io"

	"suitea/suite"
)

// PreviewRows is how many run rows Runs prints.
const PreviewRows = 10

// Runs prints the first PreviewRows records.
func Runs(w io.Writer, records []suite.LogRecord) {
	fmt.Fprintln(w, "| suite | N | W | H | mode | p | run | mean_sim_ms | mean_shade_ms | mean_FPS |")
	fmt.Fprintln(w, "|-------|---|---|---|------|---|-----|-------------|---------------|----------|")
	for i, r := range records {
		if i == PreviewRows {
			break
		}
		fmt.Fprintf(w, "| A | %d | %d | %d | %s | %d | %d | %s | %s | %s |\n",
			r.N, r.Width, r.Height, r.Mode, r.Threads.Count(), r.Run,
			fmtMs(r.MeanSimMs), fmtMs(r.MeanShadeMs), fmtMs(r.MeanFPS))
	}
	if len(records) > PreviewRows {
		fmt.Fprintf(w, "\n(%d more rows)\n", len(records)-PreviewRows)
	}
}

// Groups prints one line per configuration.
func Groups(w io.Writer, groups []suite.GroupSummary) {
	fmt.Fprintln(w, "| N | mode | p | runs | sim mean (ms) | sim sd (ms) | shade mean (ms) | FPS mean |")
	fmt.Fprintln(w, "|---|------|---|------|---------------|-------------|-----------------|----------|")
	for _, g := range groups {
		fmt.Fprintf(w, "| %d | %s | %d | %d | %s | %s | %s | %s |\n",
			g.N, g.Mode, g.Threads.Count(), g.Runs,
			fmtMs(g.MeanSimMs), fmtMs(g.StdSimMs), fmtMs(g.MeanShadeMs), fmtMs(g.MeanFPS))
	}
}

// Speedup prints the speedup table with three decimals.
func Speedup(w io.Writer, rows []suite.SpeedupRow) {
	fmt.Fprintln(w, "| N | p | Tseq_ms | Tpar_ms | Speedup | Eficiencia | FPS_seq | FPS_omp |")
	fmt.Fprintln(w, "|---|---|---------|---------|---------|------------|---------|---------|")
	for _, r := range rows {
		fmt.Fprintf(w, "| %d | %d | %s | %s | %s | %s | %s | %s |\n",
			r.N, r.Threads.Count(),
			r.SeqTimeMs.Format(3), r.ParTimeMs.Format(3),
			r.Speedup.Format(3), r.Efficiency.Format(3),
			r.SeqFPS.Format(3), r.ParFPS.Format(3))
	}
}

func fmtMs(v suite.Value) string {
	x, ok := v.Get()
	if !ok {
		return "NaN"
	}
	if x < 0.1 {
		return fmt.Sprintf("%.6f", x)
	}
	if x < 10 {
		return fmt.Sprintf("%.4f", x)
	}
	return fmt.Sprintf("%.2f", x)
}
