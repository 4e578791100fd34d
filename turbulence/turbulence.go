package turbulence

import (
	"strings"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/field"
	"github.com/notargets/gorans/flow"
	"github.com/notargets/gorans/utils"
)

type ModelType uint

const (
	TURB_None ModelType = iota
	TURB_SA
	TURB_KW
)

var (
	ModelNames = map[string]ModelType{
		"spalartallmaras": TURB_SA,
		"sa":              TURB_SA,
		"kappaomega":      TURB_KW,
		"kw":              TURB_KW,
	}
	ModelPrintNames = []string{"Off", "SpalartAllmaras", "KappaOmega"}
)

func (mt ModelType) Print() (txt string) {
	txt = ModelPrintNames[mt]
	return
}

// NewModelType resolves a closure tag. Unknown and empty tags select no
// closure rather than failing, so a run without one configured is inert.
func NewModelType(label string) (mt ModelType) {
	var ok bool
	if mt, ok = ModelNames[strings.ToLower(label)]; !ok {
		mt = TURB_None
	}
	return
}

// BodyForce injects external forcing into closure equation eq at cell c.
type BodyForce func(eq, c int, x float64, unsteady bool) (f float64)

// Closure is what a concrete turbulence model implements beyond the shared
// operator contract.
type Closure interface {
	field.Operator
	WallFunctions()
	SetBodyForce(bf BodyForce)
}

// Turbulence forwards the operator contract to the one concrete closure it
// owns, or absorbs every call when no closure is selected. The off state is
// fixed at construction: zero equations, no-op operations, the undefined
// residual sentinel and a single shared dummy vector behind every accessor,
// so callers never branch on the active model.
type Turbulence struct {
	Model ModelType
	op    Closure
	dummy utils.Vector
}

// New builds the closure selected by the configuration tag, coupled to the
// flow operator on the same mesh level. Coarse levels drop the closure
// unless TurbulenceOnCoarse asks for it.
func New(ip *InputParameters.Parameters, level int, ns *flow.NavierStokes) (tb *Turbulence) {
	tb = &Turbulence{
		Model: NewModelType(ip.Turbulence),
		dummy: utils.NewVector(ns.Cells()),
	}
	if level > 0 && !ip.TurbulenceOnCoarse {
		tb.Model = TURB_None
	}
	switch tb.Model {
	case TURB_SA:
		tb.op = NewSpalartAllmaras(ip, ns)
	case TURB_KW:
		tb.op = NewKappaOmega(ip, ns)
	}
	return
}

// Active reports whether a concrete closure is attached.
func (tb *Turbulence) Active() bool { return tb.op != nil }

func (tb *Turbulence) Advection() {
	if tb.op == nil {
		return
	}
	tb.op.Advection()
}

func (tb *Turbulence) Diffusion() {
	if tb.op == nil {
		return
	}
	tb.op.Diffusion()
}

func (tb *Turbulence) Source(unsteady bool) {
	if tb.op == nil {
		return
	}
	tb.op.Source(unsteady)
}

func (tb *Turbulence) Body(unsteady bool) {
	if tb.op == nil {
		return
	}
	tb.op.Body(unsteady)
}

func (tb *Turbulence) ResetRhs() {
	if tb.op == nil {
		return
	}
	tb.op.ResetRhs()
}

func (tb *Turbulence) ResetBody() {
	if tb.op == nil {
		return
	}
	tb.op.ResetBody()
}

func (tb *Turbulence) SmoothRhs(iterations int, epsilon float64) {
	if tb.op == nil {
		return
	}
	tb.op.SmoothRhs(iterations, epsilon)
}

func (tb *Turbulence) Solve(alpha float64, iterations int, epsilon float64) {
	if tb.op == nil {
		return
	}
	tb.op.Solve(alpha, iterations, epsilon)
}

func (tb *Turbulence) Store() {
	if tb.op == nil {
		return
	}
	tb.op.Store()
}

func (tb *Turbulence) Update() {
	if tb.op == nil {
		return
	}
	tb.op.Update()
}

func (tb *Turbulence) CorrectBoundaryConditions() {
	if tb.op == nil {
		return
	}
	tb.op.CorrectBoundaryConditions()
}

func (tb *Turbulence) WallFunctions() {
	if tb.op == nil {
		return
	}
	tb.op.WallFunctions()
}

func (tb *Turbulence) SetBodyForce(bf BodyForce) {
	if tb.op == nil {
		return
	}
	tb.op.SetBodyForce(bf)
}

func (tb *Turbulence) Residual() (res float64) {
	if tb.op == nil {
		return field.ResidualUndefined
	}
	return tb.op.Residual()
}

func (tb *Turbulence) ResetResidual() {
	if tb.op == nil {
		return
	}
	tb.op.ResetResidual()
}

func (tb *Turbulence) UpdateResidual(normalization string) {
	if tb.op == nil {
		return
	}
	tb.op.UpdateResidual(normalization)
}

func (tb *Turbulence) BuildDTS(half int) {
	if tb.op == nil {
		return
	}
	tb.op.BuildDTS(half)
}

func (tb *Turbulence) Size() (n int) {
	if tb.op == nil {
		return
	}
	return tb.op.Size()
}

func (tb *Turbulence) Conservative(i int) utils.Vector {
	if tb.op == nil {
		return tb.dummy
	}
	return tb.op.Conservative(i)
}

func (tb *Turbulence) ConservativeO(i int) utils.Vector {
	if tb.op == nil {
		return tb.dummy
	}
	return tb.op.ConservativeO(i)
}

func (tb *Turbulence) BodySource(i int) utils.Vector {
	if tb.op == nil {
		return tb.dummy
	}
	return tb.op.BodySource(i)
}

func (tb *Turbulence) RHS(i int) utils.Vector {
	if tb.op == nil {
		return tb.dummy
	}
	return tb.op.RHS(i)
}
