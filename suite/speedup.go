package suite

import "sort"

// SpeedupRow compares one parallel configuration to its sequential baseline.
type SpeedupRow struct {
	N       int
	Threads Threads

	SeqTimeMs  Value
	ParTimeMs  Value
	Speedup    Value
	Efficiency Value
	SeqFPS     Value
	ParFPS     Value
}

// SpeedupResult is the output of ComputeSpeedup. NoParallel is set when the
// input had no parallel group at all, as opposed to parallel groups that all
// lacked a baseline.
type SpeedupResult struct {
	Rows       []SpeedupRow
	NoParallel bool
}

// ComputeSpeedup joins every parallel group to the sequential group with the
// same N. Parallel groups without a baseline produce no row.
// Rows are ordered by N, then thread count.
func ComputeSpeedup(groups []GroupSummary) SpeedupResult {
	baseline := make(map[int]GroupSummary)
	var parallel []GroupSummary
	for _, g := range groups {
		switch g.Mode {
		case Sequential:
			baseline[g.N] = g
		case Parallel:
			parallel = append(parallel, g)
		}
	}
	if len(parallel) == 0 {
		return SpeedupResult{NoParallel: true}
	}

	rows := make([]SpeedupRow, 0, len(parallel))
	for _, g := range parallel {
		base, ok := baseline[g.N]
		if !ok {
			continue
		}
		speedup := base.MeanSimMs.Div(g.MeanSimMs)
		efficiency := Undefined
		if g.Threads.Known() {
			efficiency = speedup.Div(Defined(float64(g.Threads.Count())))
		}
		rows = append(rows, SpeedupRow{
			N:          g.N,
			Threads:    g.Threads,
			SeqTimeMs:  base.MeanSimMs,
			ParTimeMs:  g.MeanSimMs,
			Speedup:    speedup,
			Efficiency: efficiency,
			SeqFPS:     base.MeanFPS,
			ParFPS:     g.MeanFPS,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].N != rows[j].N {
			return rows[i].N < rows[j].N
		}
		return rows[i].Threads.Count() < rows[j].Threads.Count()
	})

	return SpeedupResult{Rows: rows}
}
