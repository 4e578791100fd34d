package field

import "fmt"

const (
	// ResidualUndefined is reported until the first update establishes a value.
	ResidualUndefined = -1.0
	// RefFloor keeps the normalization reference away from zero for a run
	// whose initial residual vanishes.
	RefFloor = 1.0e-16
)

// Residuals tracks per-equation convergence for one equation set. The
// normalization reference is established lazily on the first update and held
// fixed for the rest of the run, so the reported history stays monotone
// comparable.
type Residuals struct {
	Values []float64
	Refs   []float64
}

func NewResiduals(n int) (r *Residuals) {
	r = &Residuals{
		Values: make([]float64, n),
		Refs:   make([]float64, n),
	}
	r.ResetResidual()
	return
}

// Update normalizes the raw rms for equation i. Recognized normalization
// modes: "Initial" (or empty) locks the reference to the first rms seen,
// "One" reports absolute residuals.
func (r *Residuals) Update(i int, rms float64, normalization string) {
	if r.Refs[i] == 0. {
		switch normalization {
		case "", "Initial":
			r.Refs[i] = rms
			if r.Refs[i] < RefFloor {
				r.Refs[i] = RefFloor
			}
		case "One":
			r.Refs[i] = 1.
		default:
			panic(fmt.Errorf("unknown residual normalization %q", normalization))
		}
	}
	r.Values[i] = rms / r.Refs[i]
}

func (r *Residuals) Value(i int) float64 { return r.Values[i] }

// Residual is the maximum across equations, biasing convergence decisions
// toward the slowest converging field.
func (r *Residuals) Residual() (res float64) {
	res = ResidualUndefined
	for _, v := range r.Values {
		if v > res {
			res = v
		}
	}
	return
}

// ResetResidual clears the values to the undefined sentinel. References
// survive.
func (r *Residuals) ResetResidual() {
	for i := range r.Values {
		r.Values[i] = ResidualUndefined
	}
}

func (r *Residuals) Established(i int) bool { return r.Refs[i] != 0. }
