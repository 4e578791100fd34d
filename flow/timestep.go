package flow

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/notargets/gorans/utils"
)

// charLength is the convective length scale of cell c, the cell volume
// over the largest adjacent face area.
func (ns *NavierStokes) charLength(c int) (L float64) {
	var (
		m    = ns.Mesh
		aMax float64
	)
	if c > 0 {
		aMax = m.Area(c - 1)
	}
	if c < m.NumFaces() && m.Area(c) > aMax {
		aMax = m.Area(c)
	}
	L = m.Volume(c) / aMax
	return
}

// UpdateTimestep recomputes the local pseudo-timestep at the configured
// Courant number, then bounds the cell to cell variation. Global mode caps
// every cell at bound times the smallest timestep in the field; Local mode
// caps each cell against bound times its face neighbours' unbounded
// values. During dual time stepping the implicit ratio dt/(dtau + dt) is
// refreshed alongside.
func (ns *NavierStokes) UpdateTimestep(mode string, cfl, bound float64) {
	var (
		vel, c = ns.Vel.Data(), ns.C.Data()
		dtau   = ns.Dtau.Data()
		wg     sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				dtau[i] = cfl * ns.charLength(i) / (math.Abs(vel[i]) + c[i])
			}
		}(np)
	}
	wg.Wait()
	switch strings.ToLower(mode) {
	case "", "global":
		dtMin, _ := utils.MinMax(dtau)
		dtCap := bound * dtMin
		for i := range dtau {
			if dtau[i] > dtCap {
				dtau[i] = dtCap
			}
		}
	case "local":
		var (
			m    = ns.Mesh
			orig = make([]float64, len(dtau))
		)
		copy(orig, dtau)
		for f := 0; f < m.NumFaces(); f++ {
			o, nb := m.Owner(f), m.Neighbour(f)
			if dtCap := bound * orig[nb]; dtau[o] > dtCap {
				dtau[o] = dtCap
			}
			if dtCap := bound * orig[o]; dtau[nb] > dtCap {
				dtau[nb] = dtCap
			}
		}
	default:
		panic(fmt.Errorf("unable to use time stepping mode named %s", mode))
	}
	if ns.Unsteady {
		dtsI := ns.DtsImplicit.Data()
		for i := range dtsI {
			dtsI[i] = ns.Dt / (dtau[i] + ns.Dt)
		}
	}
}

// UpdateCourant refreshes the cell Courant numbers for the iteration
// report. In dual time stepping the physical timestep is the reference,
// otherwise the local pseudo-timestep is.
func (ns *NavierStokes) UpdateCourant() {
	var (
		vel, c = ns.Vel.Data(), ns.C.Data()
		dtau   = ns.Dtau.Data()
		co     = ns.Co.Data()
		wg     sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				dtRef := dtau[i]
				if ns.Unsteady {
					dtRef = ns.Dt
				}
				co[i] = (math.Abs(vel[i]) + c[i]) * dtRef / ns.charLength(i)
			}
		}(np)
	}
	wg.Wait()
}

// FieldStats summarizes a cell field for the iteration report.
type FieldStats struct {
	Min, Max, Avg, Std float64
}

func NewFieldStats(v []float64) (fs FieldStats) {
	fs.Min, fs.Max = utils.MinMax(v)
	fs.Avg = stat.Mean(v, nil)
	fs.Std = stat.StdDev(v, nil)
	return
}

func (fs FieldStats) String() string {
	return fmt.Sprintf("min %9.3e, max %9.3e, avg %9.3e, std %9.3e",
		fs.Min, fs.Max, fs.Avg, fs.Std)
}

func (ns *NavierStokes) CourantStats() FieldStats  { return NewFieldStats(ns.Co.Data()) }
func (ns *NavierStokes) TimestepStats() FieldStats { return NewFieldStats(ns.Dtau.Data()) }
