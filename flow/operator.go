package flow

import (
	"sync"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// Advection accumulates the convective flux divergence into the rhs. Each
// face contributes to exactly two cells, so the face sweep runs serially to
// avoid write collisions; the per-cell work dominates elsewhere.
func (ns *NavierStokes) Advection() {
	var (
		m   = ns.Mesh
		rhs = [3][]float64{ns.R[EqRho].Data(), ns.R[EqRhoU].Data(), ns.R[EqEt].Data()}
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			O, N   = m.Owner(f), m.Neighbour(f)
			qL, qR = ns.faceStates(f)
			fl     = ns.fluxFunc(qL, qR, m.FaceVelocity(f))
			a      = m.Area(f)
		)
		for n := 0; n < 3; n++ {
			rhs[n][O] -= fl[n] * a / m.Volume(O)
			rhs[n][N] += fl[n] * a / m.Volume(N)
		}
	}
	ns.boundaryAdvection(rhs)
}

// boundaryAdvection closes the flux balance at the two domain ends using
// the ghost states. Boundary faces do not move, so the face velocity is
// zero there.
func (ns *NavierStokes) boundaryAdvection(rhs [3][]float64) {
	var (
		m    = ns.Mesh
		last = ns.Cells() - 1
	)
	q0 := [3]float64{ns.U[EqRho].AtVec(0), ns.U[EqRhoU].AtVec(0), ns.U[EqEt].AtVec(0)}
	fl := ns.fluxFunc(ns.ghostState(0), q0, 0)
	a := m.Area(0)
	for n := 0; n < 3; n++ {
		rhs[n][0] += fl[n] * a / m.Volume(0)
	}
	qN := [3]float64{ns.U[EqRho].AtVec(last), ns.U[EqRhoU].AtVec(last), ns.U[EqEt].AtVec(last)}
	fl = ns.fluxFunc(qN, ns.ghostState(1), 0)
	a = m.Area(m.NumFaces() - 1)
	for n := 0; n < 3; n++ {
		rhs[n][last] -= fl[n] * a / m.Volume(last)
	}
}

// Diffusion accumulates the viscous flux divergence into the rhs. The
// effective viscosity and conductivity blend the laminar transport with the
// closure's eddy viscosity. Euler configurations carry no viscous terms.
func (ns *NavierStokes) Diffusion() {
	if ns.Physics != RANS {
		return
	}
	var (
		m    = ns.Mesh
		th   = ns.Thermo
		vel  = ns.Vel.Data()
		temp = ns.T.Data()
		mu   = ns.Mu.Data()
		muT  = ns.MuTur.Data()
		rhs  = [3][]float64{ns.R[EqRho].Data(), ns.R[EqRhoU].Data(), ns.R[EqEt].Data()}
	)
	for f := 0; f < m.NumFaces(); f++ {
		var (
			O, N = m.Owner(f), m.Neighbour(f)
			w    = 0.5
		)
		if ns.DistanceWeighted {
			w = m.Weight(f)
		}
		var (
			muLam = w*mu[O] + (1-w)*mu[N]
			muTur = w*muT[O] + (1-w)*muT[N]
			uf    = w*vel[O] + (1-w)*vel[N]
			dudx  = (vel[N] - vel[O]) / m.Delta(f)
			dTdx  = (temp[N] - temp[O]) / m.Delta(f)
			tau   = 4. / 3. * (muLam + muTur) * dudx
			keff  = th.Conductivity(muLam) + th.TurbulentConductivity(muTur)
			a     = m.Area(f)
		)
		g := [3]float64{0, tau, tau*uf + keff*dTdx}
		for n := 1; n < 3; n++ {
			rhs[n][O] += g[n] * a / m.Volume(O)
			rhs[n][N] -= g[n] * a / m.Volume(N)
		}
	}
	if ns.BCLeft == types.BC_Wall {
		ns.wallStress(0, m.Area(0))
	}
	if ns.BCRight == types.BC_Wall {
		ns.wallStress(ns.Cells()-1, m.Area(m.NumFaces()-1))
	}
}

// wallStress applies the adiabatic wall shear at end cell i. The stress
// opposes the near-wall velocity at either end, so the sign is uniform.
// The wall is adiabatic: no heat flux, and no work since the wall velocity
// is zero.
func (ns *NavierStokes) wallStress(i int, a float64) {
	var (
		dw  = 0.5 * ns.Mesh.Volume(i)
		tau = 4. / 3. * ns.Mu.AtVec(i) * ns.Vel.AtVec(i) / dw
	)
	ns.R[EqRhoU].Data()[i] -= tau * a / ns.Mesh.Volume(i)
}

// Source accumulates the geometric conservation source that keeps a
// uniform state uniform while the mesh deforms. Static meshes and steady
// runs contribute nothing.
func (ns *NavierStokes) Source(unsteady bool) {
	if !unsteady || !ns.Mesh.Moving() || ns.Dt <= 0. {
		return
	}
	var (
		m   = ns.Mesh
		u   = [3][]float64{ns.U[EqRho].Data(), ns.U[EqRhoU].Data(), ns.U[EqEt].Data()}
		rhs = [3][]float64{ns.R[EqRho].Data(), ns.R[EqRhoU].Data(), ns.R[EqEt].Data()}
		wg  sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				dVdt := (m.Volume(i) - m.VolumeO(i)) / (ns.Dt * m.Volume(i))
				for n := 0; n < 3; n++ {
					rhs[n][i] -= u[n][i] * dVdt
				}
			}
		}(np)
	}
	wg.Wait()
}

// Body accumulates the registered external forcing into the body source
// arrays. The accumulators persist until ResetBody, so repeated calls
// stack.
func (ns *NavierStokes) Body(unsteady bool) {
	if ns.bodyForce == nil {
		return
	}
	var (
		m  = ns.Mesh
		b  = [3][]float64{ns.B[EqRho].Data(), ns.B[EqRhoU].Data(), ns.B[EqEt].Data()}
		wg sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				fRho, fRhoU, fEt := ns.bodyForce(i, m.Centre(i), unsteady)
				b[EqRho][i] += fRho
				b[EqRhoU][i] += fRhoU
				b[EqEt][i] += fEt
			}
		}(np)
	}
	wg.Wait()
}

// SmoothRhs applies implicit residual smoothing to every equation's rhs.
// Zero iterations or zero epsilon leaves the rhs untouched.
func (ns *NavierStokes) SmoothRhs(iterations int, epsilon float64) {
	for n := 0; n < ns.Size(); n++ {
		ns.Smoother.Apply(ns.R[n].Data(), iterations, epsilon)
	}
}

// Solve advances the conservative state one pseudo-time sub-iteration. The
// convergence measure is the rhs before smoothing, so the rms snapshot is
// taken first; the smoothed rhs then drives the point-implicit update
//
//	dU = alpha * dtau * dtsImplicit * (R + B + D)
//
// where dtsImplicit = dt/(dtau + dt) folds the physical timestep into the
// update diagonal during dual time stepping and is one otherwise.
func (ns *NavierStokes) Solve(alpha float64, iterations int, epsilon float64) {
	for n := 0; n < ns.Size(); n++ {
		ns.rmsPending[n] = utils.RMS(ns.R[n].Data())
	}
	ns.pendingValid = true
	ns.SmoothRhs(iterations, epsilon)
	var (
		dtau = ns.Dtau.Data()
		dtsI = ns.DtsImplicit.Data()
		wg   sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for n := 0; n < ns.Size(); n++ {
				u, r, b, d := ns.U[n].Data(), ns.R[n].Data(), ns.B[n].Data(), ns.D[n].Data()
				for i := cMin; i < cMax; i++ {
					u[i] += alpha * dtau[i] * dtsI[i] * (r[i] + b[i] + d[i])
				}
			}
		}(np)
	}
	wg.Wait()
}

// UpdateResidual folds the current rhs magnitude into the residual
// history. Solve snapshots the rms before smoothing; when no snapshot is
// pending the rhs is measured as it stands.
func (ns *NavierStokes) UpdateResidual(normalization string) {
	for n := 0; n < ns.Size(); n++ {
		rms := ns.rmsPending[n]
		if !ns.pendingValid {
			rms = utils.RMS(ns.R[n].Data())
		}
		ns.Residuals.Update(n, rms, normalization)
	}
	ns.pendingValid = false
}
