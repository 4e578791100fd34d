package turbulence

import (
	"math"
	"sync"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/field"
	"github.com/notargets/gorans/flow"
	"github.com/notargets/gorans/mesh"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// SpalartAllmaras is the one equation eddy viscosity closure transporting
// the working variable nuTilde. Advection is first order upwind in the face
// relative frame, diffusion carries the (nu + nuTilde)/sigma diffusivity,
// and Source assembles production, destruction and the Cb2 cross term.
// Update pushes muTur = rho*nuTilde*fv1 into the flow operator, the only
// cross operator write. The closure shares the flow operator's local
// timestep, implicit ratio and rhs smoother rather than owning its own.
type SpalartAllmaras struct {
	*field.Ledger
	*field.Residuals

	C    SAConstants
	Flow *flow.NavierStokes
	Mesh mesh.Provider

	NuTildeInf float64
	wallFns    bool

	// BValues caches the end face values of nuTilde after each boundary
	// correction, index 0 left and 1 right.
	BValues [2]float64

	diag          utils.Vector
	gradU, gradNu []float64

	bodyForce    BodyForce
	rmsPending   []float64
	pendingValid bool
}

func NewSpalartAllmaras(ip *InputParameters.Parameters, ns *flow.NavierStokes) (sa *SpalartAllmaras) {
	var (
		cells = ns.Cells()
		dt    float64
	)
	if ip.Unsteady {
		dt = ip.DeltaT
	}
	sa = &SpalartAllmaras{
		Ledger:     field.NewLedger("spalartAllmaras", []string{"nuTilde"}, cells, dt),
		Residuals:  field.NewResiduals(1),
		C:          NewSAConstants(ip.Constants),
		Flow:       ns,
		Mesh:       ns.Mesh,
		NuTildeInf: ip.NuTildeInf,
		wallFns:    ip.WallFunctions,
		diag:       utils.NewVector(cells),
		gradU:      make([]float64, cells),
		gradNu:     make([]float64, cells),
		rmsPending: make([]float64, 1),
	}
	if sa.NuTildeInf <= 0 {
		// Standard freestream level, three times the laminar viscosity
		sa.NuTildeInf = 3. * ns.Thermo.Viscosity(ns.FS.Tinf) / ns.FS.Rhoinf
	}
	sa.U[0].Set(sa.NuTildeInf)
	sa.Store()
	sa.Update()
	sa.CorrectBoundaryConditions()
	return
}

// boundary returns the advection velocity and the ghost value of nuTilde at
// a domain end, 0 left and 1 right. Inflow and farfield carry the
// freestream level in, outflow extrapolates, and a wall mirrors so the face
// value vanishes.
func (sa *SpalartAllmaras) boundary(end int) (ub, ghost float64) {
	var (
		i    = 0
		flag = sa.Flow.BCLeft
	)
	if end == 1 {
		i = sa.Cells() - 1
		flag = sa.Flow.BCRight
	}
	switch flag {
	case types.BC_In, types.BC_Far:
		ub, ghost = sa.Flow.FS.Uinf, sa.NuTildeInf
	case types.BC_Out:
		ub, ghost = sa.Flow.Vel.AtVec(i), sa.U[0].AtVec(i)
	case types.BC_Wall:
		ghost = -sa.U[0].AtVec(i)
	}
	return
}

// Advection accumulates the upwind advective flux of nuTilde in the face
// relative frame.
func (sa *SpalartAllmaras) Advection() {
	var (
		m   = sa.Mesh
		vel = sa.Flow.Vel.Data()
		nu  = sa.U[0].Data()
		rhs = sa.R[0].Data()
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			o, nb = m.Owner(f), m.Neighbour(f)
			w     = m.Weight(f)
			uf    = w*vel[o] + (1.-w)*vel[nb] - m.FaceVelocity(f)
			phi   = nu[o]
		)
		if uf < 0 {
			phi = nu[nb]
		}
		flux := uf * phi * m.Area(f)
		rhs[o] -= flux / m.Volume(o)
		rhs[nb] += flux / m.Volume(nb)
	}
	sa.boundaryAdvection(rhs)
}

func (sa *SpalartAllmaras) boundaryAdvection(rhs []float64) {
	var (
		m    = sa.Mesh
		last = sa.Cells() - 1
	)
	ub, ghost := sa.boundary(0)
	phi := ghost
	if ub < 0 {
		phi = sa.U[0].AtVec(0)
	}
	rhs[0] += ub * phi * m.Area(0) / m.Volume(0)

	ub, ghost = sa.boundary(1)
	phi = sa.U[0].AtVec(last)
	if ub < 0 {
		phi = ghost
	}
	rhs[last] -= ub * phi * m.Area(m.NumFaces()-1) / m.Volume(last)
}

// Diffusion accumulates the conservative diffusion term with the working
// diffusivity (nu + nuTilde)/sigma.
func (sa *SpalartAllmaras) Diffusion() {
	var (
		m   = sa.Mesh
		mu  = sa.Flow.Mu.Data()
		rho = sa.Flow.U[flow.EqRho].Data()
		nu  = sa.U[0].Data()
		rhs = sa.R[0].Data()
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			o, nb = m.Owner(f), m.Neighbour(f)
			w     = 0.5
		)
		if sa.Flow.DistanceWeighted {
			w = m.Weight(f)
		}
		var (
			nuLam  = w*mu[o]/rho[o] + (1.-w)*mu[nb]/rho[nb]
			nuFace = w*nu[o] + (1.-w)*nu[nb]
			g      = (nuLam + nuFace) / sa.C.Sigma * (nu[nb] - nu[o]) / m.Delta(f)
			flux   = g * m.Area(f)
		)
		rhs[o] += flux / m.Volume(o)
		rhs[nb] -= flux / m.Volume(nb)
	}
	if sa.Flow.BCLeft == types.BC_Wall {
		sa.wallDiffusion(0, m.Area(0))
	}
	if sa.Flow.BCRight == types.BC_Wall {
		sa.wallDiffusion(sa.Cells()-1, m.Area(m.NumFaces()-1))
	}
}

// wallDiffusion drains nuTilde through a wall end. The face value is zero
// and the gradient spans the half cell.
func (sa *SpalartAllmaras) wallDiffusion(i int, a float64) {
	var (
		nuLam = sa.Flow.Mu.AtVec(i) / sa.Flow.U[flow.EqRho].AtVec(i)
		nuI   = sa.U[0].AtVec(i)
		dw    = 0.5 * sa.Mesh.Volume(i)
	)
	sa.R[0].Data()[i] -= (nuLam + 0.5*nuI) / sa.C.Sigma * nuI / dw * a / sa.Mesh.Volume(i)
}

// Source accumulates production, destruction and the Cb2 diffusion cross
// term, and loads the destruction Jacobian onto the update diagonal. With a
// deforming mesh the unsteady path adds the geometric conservation term.
func (sa *SpalartAllmaras) Source(unsteady bool) {
	var (
		m    = sa.Mesh
		c    = &sa.C
		mu   = sa.Flow.Mu.Data()
		rho  = sa.Flow.U[flow.EqRho].Data()
		nu   = sa.U[0].Data()
		rhs  = sa.R[0].Data()
		diag = sa.diag.Data()
		cv13 = utils.POW(c.Cv1, 3)
		cw36 = utils.POW(c.Cw3, 6)
	)
	mesh.Gradient(m, sa.Flow.Vel.Data(), sa.gradU)
	mesh.Gradient(m, nu, sa.gradNu)
	for i := range nu {
		var (
			nuLam = mu[i] / rho[i]
			d     = m.WallDistance(i)
			kd2   = c.Kappa * c.Kappa * d * d
			chi   = nu[i] / nuLam
			chi3  = chi * chi * chi
			fv1   = chi3 / (chi3 + cv13)
			fv2   = 1. - chi/(1.+chi*fv1)
			sTil  = math.Abs(sa.gradU[i]) + nu[i]*fv2/kd2
		)
		if sTil < c.Small {
			sTil = c.Small
		}
		r := nu[i] / (sTil * kd2)
		if r > 10. {
			r = 10.
		}
		var (
			g  = r + c.Cw2*(utils.POW(r, 6)-r)
			fw = g * math.Pow((1.+cw36)/(utils.POW(g, 6)+cw36), 1./6.)
		)
		rhs[i] += c.Cb1*sTil*nu[i] - c.Cw1*fw*nu[i]*nu[i]/(d*d) +
			c.Cb2/c.Sigma*sa.gradNu[i]*sa.gradNu[i]
		diag[i] = 2.*c.Cw1*fw*nu[i]/(d*d) - c.Cb1*sTil
		if diag[i] < 0 {
			diag[i] = 0
		}
	}
	if unsteady && m.Moving() && sa.Dt > 0 {
		for i := range nu {
			rhs[i] -= nu[i] * (m.Volume(i) - m.VolumeO(i)) / (sa.Dt * m.Volume(i))
		}
	}
}

func (sa *SpalartAllmaras) Body(unsteady bool) {
	if sa.bodyForce == nil {
		return
	}
	var (
		m = sa.Mesh
		b = sa.B[0].Data()
	)
	for i := range b {
		b[i] += sa.bodyForce(0, i, m.Centre(i), unsteady)
	}
}

func (sa *SpalartAllmaras) SetBodyForce(bf BodyForce) {
	sa.bodyForce = bf
}

func (sa *SpalartAllmaras) SmoothRhs(iterations int, epsilon float64) {
	sa.Flow.Smoother.Apply(sa.R[0].Data(), iterations, epsilon)
}

// Solve advances nuTilde one pseudo-time sub-iteration on the flow
// operator's local timestep. The destruction Jacobian sits on the update
// diagonal, the change per sub-iteration is clamped at the LinFix fraction
// of the current level, and the working variable is floored at zero.
func (sa *SpalartAllmaras) Solve(alpha float64, iterations int, epsilon float64) {
	sa.rmsPending[0] = utils.RMS(sa.R[0].Data())
	sa.pendingValid = true
	sa.SmoothRhs(iterations, epsilon)
	var (
		c    = &sa.C
		u    = sa.U[0].Data()
		r    = sa.R[0].Data()
		b    = sa.B[0].Data()
		d    = sa.D[0].Data()
		diag = sa.diag.Data()
		dtau = sa.Flow.Dtau.Data()
		dtsI = sa.Flow.DtsImplicit.Data()
		wg   sync.WaitGroup
	)
	for np := 0; np < sa.Flow.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := sa.Flow.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				var (
					dtEff = dtau[i] * dtsI[i]
					dU    = alpha * dtEff * (r[i] + b[i] + d[i]) / (1. + dtEff*diag[i])
					limit = c.LinFix * math.Max(math.Abs(u[i]), c.Small)
				)
				if dU > limit {
					dU = limit
				} else if dU < -limit {
					dU = -limit
				}
				u[i] += dU
				if u[i] < 0 {
					u[i] = 0
				}
			}
		}(np)
	}
	wg.Wait()
}

// Update refreshes the eddy viscosity muTur = rho*nuTilde*fv1, the one
// field the closure writes back into the flow operator.
func (sa *SpalartAllmaras) Update() {
	var (
		rho   = sa.Flow.U[flow.EqRho].Data()
		mu    = sa.Flow.Mu.Data()
		nu    = sa.U[0].Data()
		muTur = sa.Flow.MuTur.Data()
		cv13  = utils.POW(sa.C.Cv1, 3)
	)
	for i := range nu {
		var (
			chi  = nu[i] * rho[i] / mu[i]
			chi3 = chi * chi * chi
		)
		muTur[i] = rho[i] * nu[i] * chi3 / (chi3 + cv13)
	}
}

// CorrectBoundaryConditions refreshes the cached end face values and, with
// wall functions enabled, pins wall adjacent cells to the log-law
// equilibrium level first.
func (sa *SpalartAllmaras) CorrectBoundaryConditions() {
	if sa.wallFns {
		sa.WallFunctions()
	}
	for end := 0; end < 2; end++ {
		var (
			i        = end * (sa.Cells() - 1)
			_, ghost = sa.boundary(end)
		)
		sa.BValues[end] = 0.5 * (ghost + sa.U[0].AtVec(i))
	}
}

// WallFunctions pins nuTilde in wall adjacent cells to kappa*d*uTau, the
// log-layer equilibrium profile of the model.
func (sa *SpalartAllmaras) WallFunctions() {
	if sa.Flow.BCLeft == types.BC_Wall {
		sa.wallCell(0)
	}
	if sa.Flow.BCRight == types.BC_Wall {
		sa.wallCell(sa.Cells() - 1)
	}
}

// wallCell solves u/uTau = ln(E*yPlus)/kappa for the friction velocity by
// Newton iteration from the laminar sublayer estimate.
func (sa *SpalartAllmaras) wallCell(i int) {
	var (
		c     = &sa.C
		nuLam = sa.Flow.Mu.AtVec(i) / sa.Flow.U[flow.EqRho].AtVec(i)
		d     = sa.Mesh.WallDistance(i)
		uMag  = math.Abs(sa.Flow.Vel.AtVec(i))
	)
	if uMag < c.Small {
		sa.U[0].Data()[i] = 0.
		return
	}
	uTau := math.Sqrt(nuLam * uMag / d)
	for it := 0; it < 10; it++ {
		arg := c.WallE * d * uTau / nuLam
		if arg < 1. {
			arg = 1.
		}
		var (
			f  = uTau*math.Log(arg)/c.Kappa - uMag
			df = (math.Log(arg) + 1.) / c.Kappa
		)
		uTau -= f / df
		if uTau < c.Small {
			uTau = c.Small
		}
	}
	sa.U[0].Data()[i] = c.Kappa * d * uTau
}

// UpdateResidual folds the current rhs magnitude into the residual history,
// using the pre-smoothing snapshot when Solve left one pending.
func (sa *SpalartAllmaras) UpdateResidual(normalization string) {
	rms := sa.rmsPending[0]
	if !sa.pendingValid {
		rms = utils.RMS(sa.R[0].Data())
	}
	sa.Residuals.Update(0, rms, normalization)
	sa.pendingValid = false
}
