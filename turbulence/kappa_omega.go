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

// Equation indices within the closure ledger
const (
	EqKappa = iota
	EqOmega
)

// KappaOmega is the Menter SST two equation closure transporting the
// turbulence kinetic energy kappa and the specific dissipation rate omega,
// both kinematic. The F1 function blends the near-wall and free shear
// constant sets per cell and F2 limits the eddy viscosity under strong
// shear. Update pushes muTur and kTur into the flow operator. Like the one
// equation closure it shares the flow operator's local timestep, implicit
// ratio and rhs smoother.
type KappaOmega struct {
	*field.Ledger
	*field.Residuals

	C    KWConstants
	Flow *flow.NavierStokes
	Mesh mesh.Provider

	KappaInf, OmegaInf float64
	wallFns            bool

	// BValues caches the end face values after each boundary correction,
	// indexed [end][equation].
	BValues [2][2]float64

	F1                  utils.Vector
	diag                [2]utils.Vector
	gradU, gradK, gradW []float64

	bodyForce    BodyForce
	rmsPending   []float64
	pendingValid bool
}

func NewKappaOmega(ip *InputParameters.Parameters, ns *flow.NavierStokes) (kw *KappaOmega) {
	var (
		cells = ns.Cells()
		dt    float64
	)
	if ip.Unsteady {
		dt = ip.DeltaT
	}
	kw = &KappaOmega{
		Ledger:     field.NewLedger("kappaOmega", []string{"kappa", "omega"}, cells, dt),
		Residuals:  field.NewResiduals(2),
		C:          NewKWConstants(ip.Constants),
		Flow:       ns,
		Mesh:       ns.Mesh,
		KappaInf:   ip.KappaInf,
		OmegaInf:   ip.OmegaInf,
		wallFns:    ip.WallFunctions,
		F1:         utils.NewVector(cells),
		diag:       [2]utils.Vector{utils.NewVector(cells), utils.NewVector(cells)},
		gradU:      make([]float64, cells),
		gradK:      make([]float64, cells),
		gradW:      make([]float64, cells),
		rmsPending: make([]float64, 2),
	}
	kw.U[EqKappa].Set(kw.KappaInf)
	kw.U[EqOmega].Set(kw.OmegaInf)
	kw.Store()
	kw.Update()
	kw.CorrectBoundaryConditions()
	return
}

// boundary returns the advection velocity and the ghost values at a domain
// end, 0 left and 1 right. Inflow and farfield carry the freestream levels
// in, outflow extrapolates. A wall mirrors kappa so its face value vanishes
// and copies omega, whose wall level is pinned separately.
func (kw *KappaOmega) boundary(end int) (ub float64, ghost [2]float64) {
	var (
		i    = 0
		flag = kw.Flow.BCLeft
	)
	if end == 1 {
		i = kw.Cells() - 1
		flag = kw.Flow.BCRight
	}
	switch flag {
	case types.BC_In, types.BC_Far:
		ub = kw.Flow.FS.Uinf
		ghost = [2]float64{kw.KappaInf, kw.OmegaInf}
	case types.BC_Out:
		ub = kw.Flow.Vel.AtVec(i)
		ghost = [2]float64{kw.U[EqKappa].AtVec(i), kw.U[EqOmega].AtVec(i)}
	case types.BC_Wall:
		ghost = [2]float64{-kw.U[EqKappa].AtVec(i), kw.U[EqOmega].AtVec(i)}
	}
	return
}

// Advection accumulates the upwind advective fluxes of kappa and omega in
// the face relative frame.
func (kw *KappaOmega) Advection() {
	var (
		m   = kw.Mesh
		vel = kw.Flow.Vel.Data()
		u   = [2][]float64{kw.U[EqKappa].Data(), kw.U[EqOmega].Data()}
		rhs = [2][]float64{kw.R[EqKappa].Data(), kw.R[EqOmega].Data()}
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			o, nb = m.Owner(f), m.Neighbour(f)
			w     = m.Weight(f)
			uf    = w*vel[o] + (1.-w)*vel[nb] - m.FaceVelocity(f)
			up    = o
		)
		if uf < 0 {
			up = nb
		}
		for n := 0; n < 2; n++ {
			flux := uf * u[n][up] * m.Area(f)
			rhs[n][o] -= flux / m.Volume(o)
			rhs[n][nb] += flux / m.Volume(nb)
		}
	}
	kw.boundaryAdvection(u, rhs)
}

func (kw *KappaOmega) boundaryAdvection(u, rhs [2][]float64) {
	var (
		m    = kw.Mesh
		last = kw.Cells() - 1
	)
	ub, ghost := kw.boundary(0)
	for n := 0; n < 2; n++ {
		phi := ghost[n]
		if ub < 0 {
			phi = u[n][0]
		}
		rhs[n][0] += ub * phi * m.Area(0) / m.Volume(0)
	}
	ub, ghost = kw.boundary(1)
	for n := 0; n < 2; n++ {
		phi := u[n][last]
		if ub < 0 {
			phi = ghost[n]
		}
		rhs[n][last] -= ub * phi * m.Area(m.NumFaces()-1) / m.Volume(last)
	}
}

// Diffusion accumulates the conservative diffusion terms with the blended
// diffusivities nu + sigma_k*nuTur and nu + sigma_w*nuTur, interpolating F1
// to the face.
func (kw *KappaOmega) Diffusion() {
	var (
		m     = kw.Mesh
		c     = &kw.C
		mu    = kw.Flow.Mu.Data()
		muTur = kw.Flow.MuTur.Data()
		rho   = kw.Flow.U[flow.EqRho].Data()
		f1    = kw.F1.Data()
		k     = kw.U[EqKappa].Data()
		om    = kw.U[EqOmega].Data()
		rhs   = [2][]float64{kw.R[EqKappa].Data(), kw.R[EqOmega].Data()}
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			o, nb = m.Owner(f), m.Neighbour(f)
			w     = 0.5
		)
		if kw.Flow.DistanceWeighted {
			w = m.Weight(f)
		}
		var (
			f1f    = w*f1[o] + (1.-w)*f1[nb]
			nuLam  = w*mu[o]/rho[o] + (1.-w)*mu[nb]/rho[nb]
			nuTur  = w*muTur[o]/rho[o] + (1.-w)*muTur[nb]/rho[nb]
			sigK   = Blend(f1f, c.SigmaK1, c.SigmaK2)
			sigW   = Blend(f1f, c.SigmaW1, c.SigmaW2)
			dInv   = 1. / m.Delta(f)
			fluxK  = (nuLam + sigK*nuTur) * (k[nb] - k[o]) * dInv * m.Area(f)
			fluxW  = (nuLam + sigW*nuTur) * (om[nb] - om[o]) * dInv * m.Area(f)
			fluxes = [2]float64{fluxK, fluxW}
		)
		for n := 0; n < 2; n++ {
			rhs[n][o] += fluxes[n] / m.Volume(o)
			rhs[n][nb] -= fluxes[n] / m.Volume(nb)
		}
	}
	if kw.Flow.BCLeft == types.BC_Wall {
		kw.wallDiffusion(0, m.Area(0))
	}
	if kw.Flow.BCRight == types.BC_Wall {
		kw.wallDiffusion(kw.Cells()-1, m.Area(m.NumFaces()-1))
	}
}

// wallDiffusion drains kappa through a wall end where its face value is
// zero. Omega carries no wall flux, its near-wall level is pinned instead.
func (kw *KappaOmega) wallDiffusion(i int, a float64) {
	var (
		c     = &kw.C
		nuLam = kw.Flow.Mu.AtVec(i) / kw.Flow.U[flow.EqRho].AtVec(i)
		nuTur = kw.Flow.MuTur.AtVec(i) / kw.Flow.U[flow.EqRho].AtVec(i)
		kI    = kw.U[EqKappa].AtVec(i)
		dw    = 0.5 * kw.Mesh.Volume(i)
	)
	kw.R[EqKappa].Data()[i] -= (nuLam + c.SigmaK1*0.5*nuTur) * kI / dw * a / kw.Mesh.Volume(i)
}

// Source accumulates the limited production, the dissipation and the cross
// diffusion term, and loads the dissipation Jacobians onto the update
// diagonals. With a deforming mesh the unsteady path adds the geometric
// conservation terms.
func (kw *KappaOmega) Source(unsteady bool) {
	var (
		m     = kw.Mesh
		c     = &kw.C
		rho   = kw.Flow.U[flow.EqRho].Data()
		muTur = kw.Flow.MuTur.Data()
		k     = kw.U[EqKappa].Data()
		om    = kw.U[EqOmega].Data()
		f1    = kw.F1.Data()
		rhs   = [2][]float64{kw.R[EqKappa].Data(), kw.R[EqOmega].Data()}
		diag  = [2][]float64{kw.diag[EqKappa].Data(), kw.diag[EqOmega].Data()}
	)
	mesh.Gradient(m, kw.Flow.Vel.Data(), kw.gradU)
	mesh.Gradient(m, k, kw.gradK)
	mesh.Gradient(m, om, kw.gradW)
	for i := range k {
		var (
			omega = om[i]
		)
		if omega < c.Small {
			omega = c.Small
		}
		var (
			nuTur = muTur[i] / rho[i]
			s2    = kw.gradU[i] * kw.gradU[i]
			pk    = nuTur * s2
			beta  = Blend(f1[i], c.Beta1, c.Beta2)
			gamma = Blend(f1[i], c.Gamma1, c.Gamma2)
		)
		if lim := c.C1 * c.BetaStar * k[i] * omega; pk > lim {
			pk = lim
		}
		rhs[EqKappa][i] += pk - c.BetaStar*k[i]*omega
		rhs[EqOmega][i] += gamma*s2 - beta*omega*omega +
			2.*(1.-f1[i])*c.SigmaW2/omega*kw.gradK[i]*kw.gradW[i]
		diag[EqKappa][i] = c.BetaStar * omega
		diag[EqOmega][i] = 2. * beta * omega
	}
	if unsteady && m.Moving() && kw.Dt > 0 {
		for n := 0; n < 2; n++ {
			u := kw.U[n].Data()
			for i := range u {
				rhs[n][i] -= u[i] * (m.Volume(i) - m.VolumeO(i)) / (kw.Dt * m.Volume(i))
			}
		}
	}
}

func (kw *KappaOmega) Body(unsteady bool) {
	if kw.bodyForce == nil {
		return
	}
	var (
		m = kw.Mesh
	)
	for n := 0; n < kw.Size(); n++ {
		b := kw.B[n].Data()
		for i := range b {
			b[i] += kw.bodyForce(n, i, m.Centre(i), unsteady)
		}
	}
}

func (kw *KappaOmega) SetBodyForce(bf BodyForce) {
	kw.bodyForce = bf
}

func (kw *KappaOmega) SmoothRhs(iterations int, epsilon float64) {
	for n := 0; n < kw.Size(); n++ {
		kw.Flow.Smoother.Apply(kw.R[n].Data(), iterations, epsilon)
	}
}

// Solve advances kappa and omega one pseudo-time sub-iteration on the flow
// operator's local timestep, with the dissipation Jacobians on the update
// diagonals and the LinFix relative change clamp. Kappa is floored at zero
// and omega just above it.
func (kw *KappaOmega) Solve(alpha float64, iterations int, epsilon float64) {
	for n := 0; n < kw.Size(); n++ {
		kw.rmsPending[n] = utils.RMS(kw.R[n].Data())
	}
	kw.pendingValid = true
	kw.SmoothRhs(iterations, epsilon)
	var (
		c     = &kw.C
		dtau  = kw.Flow.Dtau.Data()
		dtsI  = kw.Flow.DtsImplicit.Data()
		floor = [2]float64{0., c.Small}
		wg    sync.WaitGroup
	)
	for np := 0; np < kw.Flow.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := kw.Flow.PM.GetBucketRange(np)
			for n := 0; n < kw.Size(); n++ {
				u, r, b, d := kw.U[n].Data(), kw.R[n].Data(), kw.B[n].Data(), kw.D[n].Data()
				diag := kw.diag[n].Data()
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
					if u[i] < floor[n] {
						u[i] = floor[n]
					}
				}
			}
		}(np)
	}
	wg.Wait()
}

// Update refreshes the F1 and F2 functions and the coupling fields, muTur
// from the shear limited eddy viscosity and kTur from kappa.
func (kw *KappaOmega) Update() {
	var (
		m     = kw.Mesh
		c     = &kw.C
		rho   = kw.Flow.U[flow.EqRho].Data()
		mu    = kw.Flow.Mu.Data()
		muTur = kw.Flow.MuTur.Data()
		kTur  = kw.Flow.KTur.Data()
		k     = kw.U[EqKappa].Data()
		om    = kw.U[EqOmega].Data()
		f1    = kw.F1.Data()
	)
	mesh.Gradient(m, kw.Flow.Vel.Data(), kw.gradU)
	mesh.Gradient(m, k, kw.gradK)
	mesh.Gradient(m, om, kw.gradW)
	for i := range k {
		var (
			omega = om[i]
			kI    = k[i]
		)
		if omega < c.Small {
			omega = c.Small
		}
		if kI < 0 {
			kI = 0
		}
		var (
			nuLam = mu[i] / rho[i]
			d     = m.WallDistance(i)
			sqrtK = math.Sqrt(kI)
			cdkw  = 2. * c.SigmaW2 / omega * kw.gradK[i] * kw.gradW[i]
		)
		if cdkw < 1.e-20 {
			cdkw = 1.e-20
		}
		var (
			arg1 = math.Min(
				math.Max(sqrtK/(c.BetaStar*omega*d), 500.*nuLam/(d*d*omega)),
				4.*c.SigmaW2*kI/(cdkw*d*d))
			arg2  = math.Max(2.*sqrtK/(c.BetaStar*omega*d), 500.*nuLam/(d*d*omega))
			f2    = math.Tanh(arg2 * arg2)
			denom = math.Max(c.A1*omega, f2*math.Abs(kw.gradU[i]))
		)
		f1[i] = math.Tanh(utils.POW(arg1, 4))
		muTur[i] = rho[i] * c.A1 * kI / denom
		kTur[i] = kI
	}
}

// CorrectBoundaryConditions refreshes the cached end face values and, with
// wall functions enabled, pins the near-wall omega level first.
func (kw *KappaOmega) CorrectBoundaryConditions() {
	if kw.wallFns {
		kw.WallFunctions()
	}
	for end := 0; end < 2; end++ {
		var (
			i         = end * (kw.Cells() - 1)
			_, ghosts = kw.boundary(end)
		)
		for n := 0; n < 2; n++ {
			kw.BValues[end][n] = 0.5 * (ghosts[n] + kw.U[n].AtVec(i))
		}
	}
}

// WallFunctions pins omega in wall adjacent cells to the viscous sublayer
// asymptote 60*nu/(beta1*d*d).
func (kw *KappaOmega) WallFunctions() {
	if kw.Flow.BCLeft == types.BC_Wall {
		kw.wallCell(0)
	}
	if kw.Flow.BCRight == types.BC_Wall {
		kw.wallCell(kw.Cells() - 1)
	}
}

func (kw *KappaOmega) wallCell(i int) {
	var (
		nuLam = kw.Flow.Mu.AtVec(i) / kw.Flow.U[flow.EqRho].AtVec(i)
		d     = kw.Mesh.WallDistance(i)
	)
	kw.U[EqOmega].Data()[i] = 60. * nuLam / (kw.C.Beta1 * d * d)
}

// UpdateResidual folds the current rhs magnitudes into the residual
// history, using the pre-smoothing snapshots when Solve left them pending.
func (kw *KappaOmega) UpdateResidual(normalization string) {
	for n := 0; n < kw.Size(); n++ {
		rms := kw.rmsPending[n]
		if !kw.pendingValid {
			rms = utils.RMS(kw.R[n].Data())
		}
		kw.Residuals.Update(n, rms, normalization)
	}
	kw.pendingValid = false
}
