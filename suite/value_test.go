package suite

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	assert.False(t, Undefined.IsDefined())
	assert.False(t, Defined(math.NaN()).IsDefined())
	assert.False(t, Defined(math.Inf(1)).IsDefined())
	assert.True(t, math.IsNaN(Undefined.Float64()))
	assert.Equal(t, "", Undefined.String())
	assert.Equal(t, "NaN", Undefined.Format(3))

	v := Defined(3.5)
	assert.Equal(t, 3.5, v.Float64())
	assert.Equal(t, "3.5", v.String())
	assert.Equal(t, "3.500", v.Format(3))
}

func TestValueDiv(t *testing.T) {
	assertValue(t, 2.5, Defined(5).Div(Defined(2)))
	assert.False(t, Defined(5).Div(Defined(0)).IsDefined())
	assert.False(t, Defined(5).Div(Defined(-1)).IsDefined())
	assert.False(t, Defined(5).Div(Undefined).IsDefined())
	assert.False(t, Undefined.Div(Defined(2)).IsDefined())
}

func TestMeanOfIdenticalSamplesIsExact(t *testing.T) {
	for _, x := range []float64{0.1, 1.0 / 3.0, 16.667, 1e-9, 12345.6789} {
		for k := 1; k <= 25; k++ {
			xs := make([]float64, k)
			for i := range xs {
				xs[i] = x
			}
			got, ok := Mean(xs).Get()
			assert.True(t, ok)
			assert.Equal(t, x, got, "k=%d", k)
		}
	}
}

func TestMeanOf(t *testing.T) {
	assert.False(t, Mean(nil).IsDefined())
	assert.False(t, MeanOf([]Value{Undefined, Undefined}).IsDefined())
	assertValue(t, 4.0, MeanOf([]Value{Defined(2), Undefined, Defined(6)}))
}

func TestStdDevOf(t *testing.T) {
	assert.False(t, StdDevOf([]Value{Defined(1)}).IsDefined())
	assert.False(t, StdDevOf([]Value{Defined(1), Undefined}).IsDefined())
	assertValue(t, math.Sqrt(2), StdDevOf([]Value{Defined(10), Defined(12)}))
}
