package suite

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Value is a measurement that may be undefined. The zero Value is undefined.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the missing measurement.
var Undefined = Value{}

// Defined wraps x. NaN and infinities are treated as undefined.
func Defined(x float64) Value {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Undefined
	}
	return Value{v: x, ok: true}
}

func (v Value) IsDefined() bool { return v.ok }

// Get returns the number and whether it is defined.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// Float64 returns the number, or NaN when undefined.
func (v Value) Float64() float64 {
	if !v.ok {
		return math.NaN()
	}
	return v.v
}

// Div returns v/d, undefined when either side is undefined or d <= 0.
func (v Value) Div(d Value) Value {
	if !v.ok || !d.ok || d.v <= 0 {
		return Undefined
	}
	return Defined(v.v / d.v)
}

// String formats the value for tabular output; undefined is empty.
func (v Value) String() string {
	if !v.ok {
		return ""
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// Format renders with a fixed number of decimals, "NaN" when undefined.
func (v Value) Format(decimals int) string {
	if !v.ok {
		return "NaN"
	}
	return strconv.FormatFloat(v.v, 'f', decimals, 64)
}

// Mean averages xs with a running mean, so k copies of x average to exactly
// x. An empty input yields Undefined.
func Mean(xs []float64) Value {
	if len(xs) == 0 {
		return Undefined
	}
	var m float64
	for i, x := range xs {
		m += (x - m) / float64(i+1)
	}
	return Defined(m)
}

// StdDev is the sample standard deviation of xs, undefined below two samples.
func StdDev(xs []float64) Value {
	if len(xs) < 2 {
		return Undefined
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return Undefined
	}
	return Defined(sd)
}

// MeanOf averages the defined values and ignores undefined ones.
func MeanOf(vs []Value) Value {
	return Mean(definedOnly(vs))
}

// StdDevOf is StdDev over the defined values.
func StdDevOf(vs []Value) Value {
	return StdDev(definedOnly(vs))
}

func definedOnly(vs []Value) []float64 {
	xs := make([]float64, 0, len(vs))
	for _, v := range vs {
		if x, ok := v.Get(); ok {
			xs = append(xs, x)
		}
	}
	return xs
}
