package solver

import (
	"fmt"
	"strings"
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/aero"
	"github.com/notargets/gorans/flow"
	"github.com/notargets/gorans/mesh"
	"github.com/notargets/gorans/thermo"
	"github.com/notargets/gorans/turbulence"
)

// Strategy drives the coupled flow and closure operators through outer
// iterations. Iterate runs one outer iteration (one relaxation sweep when
// steady, one physical timestep with its sub-iterations when unsteady) and
// reports convergence, Statistics prints the iteration line, Advance is the
// two combined, and Run marches to completion.
type Strategy interface {
	Iterate() (converged bool)
	Statistics()
	Advance() (converged bool)
	Run(showGraph bool, graphDelay ...time.Duration)
}

// New resolves a solver strategy tag. TimeStepping is the default and the
// fallback for unknown tags. The Implicit and MultiGrid tags are reserved
// and panic until their strategies exist.
func New(tag string, ip *InputParameters.Parameters, msh mesh.Provider, th thermo.Model) (s Strategy) {
	switch strings.ToLower(tag) {
	case "implicit", "i":
		panic("solver strategy Implicit is not implemented")
	case "multigrid", "mg":
		panic("solver strategy MultiGrid is not implemented")
	}
	s = NewTimeStepping(ip, msh, th)
	return
}

// TimeStepping is the pseudo-time marching strategy: local-CFL relaxation
// toward steady state, or dual time stepping when Unsteady, with the
// turbulence closure advanced after the flow inside every sub-iteration.
type TimeStepping struct {
	IP      *InputParameters.Parameters
	Mesh    mesh.Provider
	Flow    *flow.NavierStokes
	Turb    *turbulence.Turbulence
	Coupler aero.Coupler

	Iteration int
	Time      float64
}

func NewTimeStepping(ip *InputParameters.Parameters, msh mesh.Provider, th thermo.Model) (ts *TimeStepping) {
	ts = &TimeStepping{
		IP:      ip,
		Mesh:    msh,
		Coupler: aero.Rigid{},
	}
	ts.Flow = flow.NewNavierStokes(ip, msh, th)
	ts.Turb = turbulence.New(ip, 0, ts.Flow)
	return
}

// SetCoupler registers the aeroelastic consumer of the aggregated wall
// force and moment.
func (ts *TimeStepping) SetCoupler(cp aero.Coupler) { ts.Coupler = cp }

// Iterate advances one outer iteration. Steady runs take a single
// relaxation sweep; unsteady runs assemble the dual time source over the
// two-half protocol and sub-iterate until the budget or the residual
// target. The aggregated wall force reaches the coupler once per call.
func (ts *TimeStepping) Iterate() (converged bool) {
	var (
		ip  = ts.IP
		ns  = ts.Flow
		tb  = ts.Turb
		sub = 1
	)
	if ip.Unsteady {
		sub = ip.SubIterations
	}
	ns.UpdateCourant()
	ns.UpdateTimestep(ip.TimeStepping, ip.CFL, ip.CourantBound)
	if ip.Unsteady {
		ns.BuildDTS(1)
		tb.BuildDTS(1)
	}
	for it := 0; it < sub; it++ {
		ts.subIterate()
		if ip.Unsteady && it == 0 {
			ns.BuildDTS(2)
			tb.BuildDTS(2)
		}
		if ts.residual() < ip.ResidualTarget {
			break
		}
	}
	ns.Store()
	tb.Store()
	force, moment := ns.WallForce()
	ts.Coupler.Exchange(force, moment)
	ts.Iteration++
	if ip.Unsteady {
		ts.Time += ip.DeltaT
	}
	res := ts.residual()
	converged = res >= 0 && res < ip.ResidualTarget
	return
}

// subIterate runs one pseudo-time sub-iteration in the operator calling
// order, flow first and the closure after the flow update.
func (ts *TimeStepping) subIterate() {
	var (
		ip = ts.IP
		ns = ts.Flow
		tb = ts.Turb
	)
	ns.ResetRhs()
	ns.ResetBody()
	ns.Advection()
	ns.Diffusion()
	ns.Source(ip.Unsteady)
	ns.Body(ip.Unsteady)
	ns.Solve(ip.Alpha, ip.SmoothingIterations, ip.SmoothingEpsilon)
	ns.Update()
	ns.CorrectBoundaryConditions()
	ns.UpdateResidual(ip.ResidualNorm)

	tb.ResetRhs()
	tb.ResetBody()
	tb.Advection()
	tb.Diffusion()
	tb.Source(ip.Unsteady)
	tb.Body(ip.Unsteady)
	tb.Solve(ip.Alpha, ip.SmoothingIterations, ip.SmoothingEpsilon)
	tb.Update()
	tb.CorrectBoundaryConditions()
	tb.UpdateResidual(ip.ResidualNorm)
}

// residual is the combined convergence measure, the worst of the flow and
// closure residuals. The off-state closure sentinel never dominates.
func (ts *TimeStepping) residual() (res float64) {
	res = ts.Flow.Residual()
	if tr := ts.Turb.Residual(); tr > res {
		res = tr
	}
	return
}

func (ts *TimeStepping) PrintInitialization() {
	var (
		ip = ts.IP
		fs = ts.Flow.FS
	)
	fmt.Printf("Using %s flux, %s physics, %s turbulence closure\n",
		ts.Flow.Flux.Print(), ts.Flow.Physics.Print(), ts.Turb.Model.Print())
	fmt.Printf("Freestream: Minf = %8.5f, Pinf = %10.1f, Tinf = %8.3f\n",
		fs.Minf, fs.Pinf, fs.Tinf)
	if ip.Unsteady {
		fmt.Printf("Solving until finaltime = %8.5f, deltaT = %8.5f\n", ip.FinalTime, ip.DeltaT)
		fmt.Printf("    iter    time")
	} else {
		fmt.Printf("Solving until max iterations = %d or residual < %8.1e\n",
			ip.MaxIterations, ip.ResidualTarget)
		fmt.Printf("    iter")
	}
	fmt.Printf("        Rho       RhoU         Et       Turb  Courant\n")
}

// Statistics prints the iteration line: per-equation flow residuals, the
// closure residual and the Courant field summary.
func (ts *TimeStepping) Statistics() {
	var (
		format = "%11.4e"
		ns     = ts.Flow
	)
	if ts.IP.Unsteady {
		fmt.Printf("%8d%8.4f", ts.Iteration, ts.Time)
	} else {
		fmt.Printf("%8d", ts.Iteration)
	}
	for n := 0; n < ns.Size(); n++ {
		fmt.Printf(format, ns.Value(n))
	}
	if ts.Turb.Active() {
		fmt.Printf(format, ts.Turb.Residual())
	} else {
		fmt.Printf("        off")
	}
	fmt.Printf("  %s\n", ns.CourantStats().String())
}

// Advance is one Iterate followed by its Statistics line.
func (ts *TimeStepping) Advance() (converged bool) {
	converged = ts.Iterate()
	ts.Statistics()
	return
}

// CheckIfFinished applies the outer termination criteria: the iteration
// budget always, the final time when unsteady, the residual target when
// steady.
func (ts *TimeStepping) CheckIfFinished(converged bool) (finished bool) {
	var (
		ip = ts.IP
	)
	switch {
	case ts.Iteration >= ip.MaxIterations:
		finished = true
	case ip.Unsteady && ts.Time >= ip.FinalTime-1.e-12:
		finished = true
	case !ip.Unsteady && converged:
		finished = true
	}
	return
}

// Run marches to completion, optionally feeding a live chart of the
// normalized density profile.
func (ts *TimeStepping) Run(showGraph bool, graphDelay ...time.Duration) {
	var (
		chart     *chart2d.Chart2D
		colorMap  *utils2.ColorMap
		chartName = "density"
		x, y      []float64
		finished  bool
		logEvery  = 50
		elapsed   = time.Duration(0)
	)
	ts.PrintInitialization()
	if showGraph {
		var (
			m     = ts.Mesh
			cells = m.NumCells()
			xmax  = m.Centre(cells-1) + 0.5*m.Volume(cells-1)
		)
		x, y = make([]float64, cells), make([]float64, cells)
		for i := range x {
			x[i] = m.Centre(i)
		}
		chart = chart2d.NewChart2D(1024, 768, 0, float32(xmax), 0, 2)
		colorMap = utils2.NewColorMap(-1, 1, 1)
		go chart.Plot()
	}
	var start time.Time
	for !finished {
		start = time.Now()
		converged := ts.Iterate()
		elapsed += time.Now().Sub(start)
		finished = ts.CheckIfFinished(converged)
		if finished || ts.Iteration%logEvery == 0 || ts.Iteration == 1 {
			ts.Statistics()
		}
		if showGraph {
			rho := ts.Flow.U[flow.EqRho].Data()
			for i := range y {
				y[i] = rho[i] / ts.Flow.FS.Rhoinf
			}
			if err := chart.AddSeries(chartName, x, y,
				chart2d.CrossGlyph, chart2d.Dashed, colorMap.GetRGB(0)); err != nil {
				panic("unable to add graph series")
			}
			if len(graphDelay) != 0 {
				time.Sleep(graphDelay[0])
			}
		}
	}
	ts.PrintFinal(elapsed)
}

func (ts *TimeStepping) PrintFinal(elapsed time.Duration) {
	if ts.Iteration == 0 {
		return
	}
	rate := float64(elapsed.Microseconds()) / float64(ts.Mesh.NumCells()*ts.Iteration)
	fmt.Printf("\nRate of execution = %8.5f us/(cell*iteration) over %d iterations\n",
		rate, ts.Iteration)
}
