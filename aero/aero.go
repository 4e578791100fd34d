// Package aero defines the aeroelastic coupling surface. The solver hands
// the aggregated wall force and moment over once per physical timestep and
// reads back the generalized displacement and velocity of the structure.
package aero

type Coupler interface {
	Exchange(force, moment float64) (displacement, velocity float64)
}

// Rigid is the no-op coupler for structures that never move.
type Rigid struct{}

func (Rigid) Exchange(force, moment float64) (displacement, velocity float64) {
	return
}
