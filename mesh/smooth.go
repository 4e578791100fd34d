package mesh

import (
	"github.com/james-bowman/sparse"
)

// Smoother applies implicit residual smoothing over the cell adjacency,
//
//	(1 + eps*deg(i)) * rBar(i) - eps * sum_nb rBar(nb) = r(i)
//
// relaxed with Gauss-Seidel sweeps. Smoothing couples each cell to its face
// neighbours only, so the adjacency is assembled once into a CSR matrix and
// shared by every equation that smooths.
type Smoother struct {
	n       int
	adj     *sparse.CSR
	deg     []float64
	scratch []float64
}

func NewSmoother(m Provider) (sm *Smoother) {
	var (
		n   = m.NumCells()
		dok = sparse.NewDOK(n, n)
	)
	sm = &Smoother{
		n:       n,
		deg:     make([]float64, n),
		scratch: make([]float64, n),
	}
	for f := 0; f < m.NumFaces(); f++ {
		o, nb := m.Owner(f), m.Neighbour(f)
		dok.Set(o, nb, 1)
		dok.Set(nb, o, 1)
		sm.deg[o]++
		sm.deg[nb]++
	}
	sm.adj = dok.ToCSR()
	return
}

// Apply smooths r in place. iterations == 0 leaves r untouched.
func (sm *Smoother) Apply(r []float64, iterations int, epsilon float64) {
	if iterations == 0 || epsilon == 0. {
		return
	}
	var (
		rBar = sm.scratch
	)
	copy(rBar, r)
	for it := 0; it < iterations; it++ {
		for i := 0; i < sm.n; i++ {
			sum := 0.
			sm.adj.DoRowNonZero(i, func(_, j int, v float64) {
				sum += v * rBar[j]
			})
			rBar[i] = (r[i] + epsilon*sum) / (1. + epsilon*sm.deg[i])
		}
	}
	copy(r, rBar)
}
