package field

import "github.com/notargets/gorans/utils"

// Operator is the discretization contract shared by the flow solver and
// every turbulence closure, which is what lets the time integrator and the
// closure selector drive them uniformly. An operator owns one Ledger and
// one Residuals and is the only writer of both.
//
// Calling order within one pseudo-time sub-iteration is fixed: ResetRhs and
// ResetBody, then Advection, Diffusion, Source and Body accumulation, then
// Solve (which smooths the rhs internally before the update), then Update
// and CorrectBoundaryConditions, then UpdateResidual. Store commits the
// physical timestep boundary and runs exactly once per physical step.
type Operator interface {
	Advection()
	Diffusion()
	Source(unsteady bool)
	Body(unsteady bool)

	ResetRhs()
	ResetBody()
	SmoothRhs(iterations int, epsilon float64)
	Solve(alpha float64, iterations int, epsilon float64)
	Store()
	Update()
	CorrectBoundaryConditions()

	Residual() float64
	ResetResidual()
	UpdateResidual(normalization string)

	BuildDTS(half int)

	// Opaque per-equation accessors. Indexing outside [0, Size()) is the
	// caller's bug; the selector, not the accessor, guarantees the bound.
	Size() int
	Conservative(i int) utils.Vector
	ConservativeO(i int) utils.Vector
	BodySource(i int) utils.Vector
	RHS(i int) utils.Vector
}
