package suite

import (
	"fmt"
	"regexp"
	"strconv"
)

// MetricKind identifies one family of measurements found in a log.
type MetricKind int

const (
	SimTime   MetricKind = iota // sim= or sim+ink=, milliseconds
	ShadeTime                   // shade+present=, milliseconds
	FPS                         // FPS: or FPS=
)

// MetricKinds lists every kind in extraction order.
var MetricKinds = []MetricKind{SimTime, ShadeTime, FPS}

func (k MetricKind) String() string {
	switch k {
	case SimTime:
		return "sim"
	case ShadeTime:
		return "shade+present"
	case FPS:
		return "FPS"
	default:
		return fmt.Sprintf("MetricKind(%d)", int(k))
	}
}

// The qualifier is an optional parenthesised annotation such as "(ms)".
// Each pattern has exactly one capture group: the number.
var metricPatterns = map[MetricKind]*regexp.Regexp{
	SimTime:   regexp.MustCompile(`\bsim(?:\+ink)?(?:\([^()\n]*\))?=\s*([0-9]*\.?[0-9]+)`),
	ShadeTime: regexp.MustCompile(`\bshade\+present(?:\([^()\n]*\))?=\s*([0-9]*\.?[0-9]+)`),
	FPS:       regexp.MustCompile(`FPS[ \t]*[:=][ \t]*([0-9]*\.?[0-9]+)`),
}

// Metrics holds the per-file mean of each family.
type Metrics struct {
	SimMs   Value
	ShadeMs Value
	FPS     Value
}

// Get returns the mean for kind.
func (m Metrics) Get(kind MetricKind) Value {
	switch kind {
	case SimTime:
		return m.SimMs
	case ShadeTime:
		return m.ShadeMs
	case FPS:
		return m.FPS
	default:
		return Undefined
	}
}

// Samples returns every number captured for kind, in text order.
func Samples(kind MetricKind, text string) []float64 {
	re, ok := metricPatterns[kind]
	if !ok {
		return nil
	}

	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ExtractKind returns the mean of kind's samples, undefined when there are none.
func ExtractKind(kind MetricKind, text string) Value {
	return Mean(Samples(kind, text))
}

// Extract scans text once per metric family.
func Extract(text string) Metrics {
	return Metrics{
		SimMs:   ExtractKind(SimTime, text),
		ShadeMs: ExtractKind(ShadeTime, text),
		FPS:     ExtractKind(FPS, text),
	}
}
