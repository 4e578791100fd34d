package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Vector wraps a gonum VecDense to provide chainable methods for the
// per-cell field arrays used throughout the solver.
type Vector struct {
	V        *mat.VecDense
	readOnly bool
	name     string
}

func NewVector(n int, dataO ...[]float64) (R Vector) {
	var (
		data []float64
	)
	if len(dataO) != 0 {
		data = dataO[0]
	} else {
		data = make([]float64, n)
	}
	R = Vector{
		V:    mat.NewVecDense(n, data),
		name: "unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func NewVectorConst(n int, val float64) (R Vector) {
	R = NewVector(n, ConstArray(n, val))
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)         { return v.V.Dims() }
func (v Vector) At(i, j int) float64      { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix            { return v.V.T() }
func (v Vector) AtVec(i int) float64      { return v.V.AtVec(i) }
func (v Vector) RawVector() blas64.Vector { return v.V.RawVector() }
func (v Vector) Len() int                 { return v.V.Len() }

// Data returns the underlying slice for fast-path loops.
func (v Vector) Data() []float64 { return v.V.RawVector().Data }

func (v Vector) Copy() (R Vector) {
	var (
		n    = v.Len()
		data = make([]float64, n)
	)
	copy(data, v.Data())
	R = Vector{V: mat.NewVecDense(n, data), name: v.name + " (copy)"}
	return
}

func (v *Vector) SetReadOnly(name ...string) Vector {
	if len(name) != 0 {
		v.name = name[0]
	}
	v.readOnly = true
	return *v
}

func (v *Vector) SetWritable() Vector {
	v.readOnly = false
	return *v
}

func (v Vector) IsReadOnly() bool { return v.readOnly }

func (v Vector) checkWritable() {
	if v.readOnly {
		panic(fmt.Errorf("attempt to write to a read only vector named: \"%v\"", v.name))
	}
}

// Chainable methods, all mutate the receiver's backing store.

func (v Vector) Set(val float64) Vector {
	var (
		data = v.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] = val
	}
	return v
}

func (v Vector) Zero() Vector {
	return v.Set(0)
}

func (v Vector) Linspace(begin, end float64) Vector {
	var (
		data = v.Data()
		n    = v.Len()
	)
	v.checkWritable()
	h := (end - begin) / float64(n-1)
	for i := range data {
		data[i] = begin + float64(i)*h
	}
	return v
}

func (v Vector) Add(a Vector) Vector {
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] += dataA[i]
	}
	return v
}

func (v Vector) Subtract(a Vector) Vector {
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] -= dataA[i]
	}
	return v
}

func (v Vector) AddScalar(a float64) Vector {
	var (
		data = v.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] += a
	}
	return v
}

func (v Vector) Scale(a float64) Vector {
	var (
		data = v.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] *= a
	}
	return v
}

func (v Vector) ElMul(a Vector) Vector {
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] *= dataA[i]
	}
	return v
}

func (v Vector) ElDiv(a Vector) Vector {
	var (
		data  = v.Data()
		dataA = a.Data()
	)
	v.checkWritable()
	for i := range data {
		data[i] /= dataA[i]
	}
	return v
}

func (v Vector) Apply(f func(float64) float64) Vector {
	var (
		data = v.Data()
	)
	v.checkWritable()
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}

func (v Vector) POW(p int) Vector {
	var (
		data = v.Data()
	)
	v.checkWritable()
	for i, val := range data {
		data[i] = POW(val, p)
	}
	return v
}

// Non-mutating reductions.

func (v Vector) Min() (min float64) {
	var (
		data = v.Data()
	)
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	var (
		data = v.Data()
	)
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

func (v Vector) Sum() (sum float64) {
	for _, val := range v.Data() {
		sum += val
	}
	return
}
