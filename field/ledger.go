package field

import (
	"fmt"

	"github.com/notargets/gorans/utils"
)

// DTSPhase tracks the two-half protocol that assembles the dual time
// stepping source once per physical timestep.
type DTSPhase uint8

const (
	DTSIdle DTSPhase = iota
	DTSFirstHalf
)

// Ledger owns the conservative storage of one equation set: the current
// state U, the previous timestep state Uo, and the per-equation rhs, body
// and dual-time source accumulators. Each discretization operator embeds
// exactly one Ledger and is its only writer.
type Ledger struct {
	Name  string
	Eqs   []string
	U     []utils.Vector // conservative state, one vector per equation
	Uo    []utils.Vector // previous physical timestep state
	R     []utils.Vector // rhs accumulators
	B     []utils.Vector // body source accumulators
	D     []utils.Vector // blended dual-time sources
	DRate []utils.Vector // previous physical step time derivative rates
	Dt    float64        // physical timestep, used only by BuildDTS
	phase DTSPhase
}

func NewLedger(name string, eqs []string, cells int, dt float64) (l *Ledger) {
	var (
		n = len(eqs)
	)
	l = &Ledger{
		Name:  name,
		Eqs:   eqs,
		U:     make([]utils.Vector, n),
		Uo:    make([]utils.Vector, n),
		R:     make([]utils.Vector, n),
		B:     make([]utils.Vector, n),
		D:     make([]utils.Vector, n),
		DRate: make([]utils.Vector, n),
		Dt:    dt,
	}
	for i := 0; i < n; i++ {
		l.U[i] = utils.NewVector(cells)
		l.Uo[i] = utils.NewVector(cells)
		l.R[i] = utils.NewVector(cells)
		l.B[i] = utils.NewVector(cells)
		l.D[i] = utils.NewVector(cells)
		l.DRate[i] = utils.NewVector(cells)
	}
	return
}

func (l *Ledger) Size() int  { return len(l.Eqs) }
func (l *Ledger) Cells() int { return l.U[0].Len() }

// Contract accessors return read only views; the backing store stays
// writable through the exported fields for the owning operator.

func (l *Ledger) Conservative(i int) utils.Vector {
	v := l.U[i]
	return v.SetReadOnly(l.Name + "." + l.Eqs[i])
}

func (l *Ledger) ConservativeO(i int) utils.Vector {
	v := l.Uo[i]
	return v.SetReadOnly(l.Name + "." + l.Eqs[i] + "_o")
}

func (l *Ledger) RHS(i int) utils.Vector {
	v := l.R[i]
	return v.SetReadOnly(l.Name + ".rhs." + l.Eqs[i])
}

func (l *Ledger) BodySource(i int) utils.Vector {
	v := l.B[i]
	return v.SetReadOnly(l.Name + ".body." + l.Eqs[i])
}

func (l *Ledger) DTSSource(i int) utils.Vector {
	v := l.D[i]
	return v.SetReadOnly(l.Name + ".dts." + l.Eqs[i])
}

func (l *Ledger) ResetRhs() {
	for i := range l.R {
		l.R[i].Zero()
	}
}

func (l *Ledger) ResetBody() {
	for i := range l.B {
		l.B[i].Zero()
	}
}

// Store commits the current state as the previous timestep state. Called
// exactly once per physical timestep boundary, never mid iteration.
func (l *Ledger) Store() {
	for i := range l.U {
		copy(l.Uo[i].Data(), l.U[i].Data())
	}
}

// BuildDTS assembles the blended dual-time source over two calls per
// physical timestep. Half 1 freezes half of the previous step's time
// derivative rate; half 2 adds half of the fresh rate (Uo-U)/Dt and records
// it for the next step. The blended source is therefore the mean of two
// consecutive rates. Any other half value, or calling the halves out of
// order, is a caller bug and panics.
func (l *Ledger) BuildDTS(half int) {
	switch half {
	case 1:
		if l.phase != DTSIdle {
			panic(fmt.Errorf("%s: BuildDTS(1) called twice without BuildDTS(2)", l.Name))
		}
		for i := range l.D {
			dts, rate := l.D[i].Data(), l.DRate[i].Data()
			for c := range dts {
				dts[c] = 0.5 * rate[c]
			}
		}
		l.phase = DTSFirstHalf
	case 2:
		if l.phase != DTSFirstHalf {
			panic(fmt.Errorf("%s: BuildDTS(2) called without BuildDTS(1)", l.Name))
		}
		if l.Dt <= 0. {
			panic(fmt.Errorf("%s: dual time stepping requires a positive physical timestep", l.Name))
		}
		for i := range l.D {
			var (
				dts  = l.D[i].Data()
				rate = l.DRate[i].Data()
				u    = l.U[i].Data()
				uo   = l.Uo[i].Data()
			)
			for c := range dts {
				r := (uo[c] - u[c]) / l.Dt
				dts[c] += 0.5 * r
				rate[c] = r
			}
		}
		l.phase = DTSIdle
	default:
		panic(fmt.Errorf("%s: invalid dual time half %d", l.Name, half))
	}
}

func (l *Ledger) Phase() DTSPhase { return l.phase }
