package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {
	N := 3
	v1 := NewVector(N).Set(1)
	require.Equal(t, 1., v1.Data()[N-1])
	v1.Set(2)
	require.Equal(t, 2., v1.Data()[N-1])

	// Chainable arithmetic
	v2 := NewVector(N).Set(3)
	v2.Add(v1).Scale(0.5)
	assert.Equal(t, []float64{2.5, 2.5, 2.5}, v2.Data())
	v2.Subtract(v1).AddScalar(1.5)
	assert.Equal(t, []float64{2, 2, 2}, v2.Data())
	v2.ElMul(v2)
	assert.Equal(t, []float64{4, 4, 4}, v2.Data())
	v2.ElDiv(v1).POW(2)
	assert.Equal(t, []float64{4, 4, 4}, v2.Data())
	v2.Apply(math.Sqrt)
	assert.Equal(t, []float64{2, 2, 2}, v2.Data())

	// Linspace
	{
		req := NewVector(2).Linspace(-1, 1)
		assert.Equal(t, -1., req.AtVec(0))
		assert.Equal(t, 1., req.AtVec(1))
		req = NewVector(3).Linspace(-1, 1)
		assert.Equal(t, -1., req.AtVec(0))
		assert.Equal(t, 0., req.AtVec(1))
		assert.Equal(t, 1., req.AtVec(2))
	}

	// Reductions
	{
		v := NewVector(4, []float64{-2, 5, 1, 0})
		assert.Equal(t, -2., v.Min())
		assert.Equal(t, 5., v.Max())
		assert.Equal(t, 4., v.Sum())
	}

	// Copies do not alias
	{
		v := NewVectorConst(3, 7)
		w := v.Copy()
		w.Set(0)
		assert.Equal(t, 7., v.AtVec(0))
		assert.Equal(t, 0., w.AtVec(0))
	}

	// Read only protection
	{
		v := NewVector(2)
		v.SetReadOnly("guarded")
		assert.Panics(t, func() { v.Set(1) })
		v.SetWritable()
		assert.NotPanics(t, func() { v.Set(1) })
	}
}

func TestRMS(t *testing.T) {
	assert.Equal(t, 0., RMS(nil))
	assert.Equal(t, 2., RMS([]float64{2, -2, 2, -2}))
	assert.InDelta(t, math.Sqrt(5./2.), RMS([]float64{1, 2}), 1.e-12)
	min, max := MinMax([]float64{3, -1, 4})
	assert.Equal(t, -1., min)
	assert.Equal(t, 4., max)
}
