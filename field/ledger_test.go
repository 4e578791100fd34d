package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func near(a, b float64, tolI ...float64) (l bool) {
	var (
		tol float64
	)
	if len(tolI) == 0 {
		tol = 1.e-08
	} else {
		tol = tolI[0]
	}
	bound := math.Max(tol, tol*math.Abs(a))
	if math.Abs(a-b) <= bound {
		l = true
	}
	return
}

func TestLedgerStorage(t *testing.T) {
	l := NewLedger("flow", []string{"rho", "rhoU", "Et"}, 8, 0)
	assert.Equal(t, 3, l.Size())
	assert.Equal(t, 8, l.Cells())

	// Accumulators zero after reset regardless of prior content
	for i := 0; i < l.Size(); i++ {
		l.R[i].Set(5)
		l.B[i].Set(7)
	}
	l.ResetRhs()
	l.ResetBody()
	for i := 0; i < l.Size(); i++ {
		assert.Equal(t, 0., l.RHS(i).Max())
		assert.Equal(t, 0., l.RHS(i).Min())
		assert.Equal(t, 0., l.BodySource(i).Max())
	}

	// Store round trip: previous state equals the state captured before
	for i := 0; i < l.Size(); i++ {
		l.U[i].Linspace(float64(i), float64(i+1))
	}
	before := make([][]float64, l.Size())
	for i := range before {
		before[i] = append([]float64{}, l.U[i].Data()...)
	}
	l.Store()
	for i := 0; i < l.Size(); i++ {
		for c := 0; c < l.Cells(); c++ {
			assert.Equal(t, before[i][c], l.ConservativeO(i).AtVec(c))
		}
	}

	// Contract accessors are read only views over live storage
	assert.Panics(t, func() { l.Conservative(0).Set(1) })
	l.U[0].Set(42)
	assert.Equal(t, 42., l.Conservative(0).AtVec(0))
}

func TestLedgerDTS(t *testing.T) {
	l := NewLedger("scalar", []string{"q"}, 1, 1)

	// First physical step: no previous rate, fresh rate 2.0
	assert.Equal(t, DTSIdle, l.Phase())
	l.BuildDTS(1)
	assert.Equal(t, DTSFirstHalf, l.Phase())
	assert.Equal(t, 0., l.DTSSource(0).AtVec(0))
	l.U[0].Set(0)
	l.Uo[0].Set(2)
	l.BuildDTS(2)
	assert.Equal(t, DTSIdle, l.Phase())
	assert.True(t, near(1.0, l.DTSSource(0).AtVec(0)))

	// Second physical step: halves 2.0 and 3.0 blend to their mean
	l.BuildDTS(1)
	assert.True(t, near(1.0, l.DTSSource(0).AtVec(0)))
	l.Uo[0].Set(3)
	l.BuildDTS(2)
	assert.True(t, near(2.5, l.DTSSource(0).AtVec(0)))
	assert.True(t, near(3.0, l.DRate[0].AtVec(0)))
}

func TestLedgerDTSContract(t *testing.T) {
	l := NewLedger("scalar", []string{"q"}, 1, 1)

	assert.Panics(t, func() { l.BuildDTS(0) })
	assert.Panics(t, func() { l.BuildDTS(3) })
	assert.Panics(t, func() { l.BuildDTS(2) }) // no first half yet

	l.BuildDTS(1)
	assert.Panics(t, func() { l.BuildDTS(1) }) // first half twice

	bad := NewLedger("scalar", []string{"q"}, 1, 0)
	bad.BuildDTS(1)
	assert.Panics(t, func() { bad.BuildDTS(2) }) // no physical timestep set
}

func TestResiduals(t *testing.T) {
	r := NewResiduals(2)

	// Undefined until the first update
	assert.Equal(t, ResidualUndefined, r.Value(0))
	assert.Equal(t, ResidualUndefined, r.Residual())

	// First update establishes the reference, later updates reuse it
	r.Update(0, 10, "Initial")
	assert.True(t, near(1.0, r.Value(0)))
	r.Update(0, 1, "Initial")
	assert.True(t, near(0.1, r.Value(0)))
	r.Update(0, 500, "Initial") // a different magnitude history
	assert.True(t, near(50, r.Value(0)))
	assert.True(t, near(10, r.Refs[0]))

	// Absolute normalization
	r.Update(1, 0.25, "One")
	assert.True(t, near(0.25, r.Value(1)))

	// Combined is the worst equation
	assert.True(t, near(50, r.Residual()))

	// Reset clears values, never references
	r.ResetResidual()
	assert.Equal(t, ResidualUndefined, r.Value(0))
	assert.True(t, r.Established(0))
	r.Update(0, 5, "Initial")
	assert.True(t, near(0.5, r.Value(0)))

	// Zero initial residual floors the reference instead of dividing by zero
	z := NewResiduals(1)
	z.Update(0, 0, "Initial")
	assert.Equal(t, 0., z.Value(0))
	assert.Equal(t, RefFloor, z.Refs[0])

	// Unknown modes are caller bugs
	assert.Panics(t, func() { NewResiduals(1).Update(0, 1, "bogus") })
}
