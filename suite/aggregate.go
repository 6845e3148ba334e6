package suite

import "sort"

// BackfillThreads gives parallel records with an unknown thread count the
// default d. With d <= 0 they stay unknown and aggregate as their own group.
// It returns how many records were changed.
func BackfillThreads(records []LogRecord, d int) int {
	if d <= 0 {
		return 0
	}
	changed := 0
	for i := range records {
		r := &records[i]
		if r.Mode == Parallel && !r.Threads.Known() {
			r.Threads = KnownThreads(d)
			changed++
		}
	}
	return changed
}

// GroupKey identifies one benchmark configuration.
type GroupKey struct {
	N       int
	Mode    Mode
	Threads Threads
}

func (k GroupKey) less(o GroupKey) bool {
	if k.N != o.N {
		return k.N < o.N
	}
	if k.Mode != o.Mode {
		return k.Mode < o.Mode
	}
	return k.Threads.Count() < o.Threads.Count()
}

// GroupSummary holds the means of every run sharing a GroupKey.
type GroupSummary struct {
	GroupKey
	Runs int

	MeanSimMs   Value
	StdSimMs    Value
	MeanShadeMs Value
	MeanFPS     Value
}

// Aggregate groups records by (N, mode, threads). Each mean skips undefined
// samples; a field with no defined samples stays undefined.
// Groups are ordered by N, then mode, then thread count.
func Aggregate(records []LogRecord) []GroupSummary {
	type acc struct {
		sim, shade, fps []Value
	}
	groups := make(map[GroupKey]*acc)
	var keys []GroupKey
	for _, r := range records {
		k := GroupKey{N: r.N, Mode: r.Mode, Threads: r.Threads}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
			keys = append(keys, k)
		}
		a.sim = append(a.sim, r.MeanSimMs)
		a.shade = append(a.shade, r.MeanShadeMs)
		a.fps = append(a.fps, r.MeanFPS)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	out := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		out = append(out, GroupSummary{
			GroupKey:    k,
			Runs:        len(a.sim),
			MeanSimMs:   MeanOf(a.sim),
			StdSimMs:    StdDevOf(a.sim),
			MeanShadeMs: MeanOf(a.shade),
			MeanFPS:     MeanOf(a.fps),
		})
	}
	return out
}
