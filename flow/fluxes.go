package flow

import (
	"fmt"
	"math"
	"strings"
)

type FluxType uint

const (
	FLUX_Centered FluxType = iota
	FLUX_Roe
)

var (
	FluxNames = map[string]FluxType{
		"centered": FLUX_Centered,
		"roe":      FLUX_Roe,
	}
	FluxPrintNames = []string{"Centered", "Roe"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if len(label) == 0 {
		return FLUX_Centered
	}
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
		panic(err)
	}
	return
}

type LimiterType uint

const (
	LIM_None LimiterType = iota
	LIM_MinMod
	LIM_VanAlbada
)

var (
	LimiterNames = map[string]LimiterType{
		"":          LIM_None,
		"none":      LIM_None,
		"minmod":    LIM_MinMod,
		"vanalbada": LIM_VanAlbada,
	}
	LimiterPrintNames = []string{"None", "MinMod", "VanAlbada"}
)

func (lt LimiterType) Print() (txt string) {
	txt = LimiterPrintNames[lt]
	return
}

func NewLimiterType(label string) (lt LimiterType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if lt, ok = LimiterNames[label]; !ok {
		err = fmt.Errorf("unable to use limiter named %s", label)
		panic(err)
	}
	return
}

// eulerFlux is the inviscid flux vector of the conservative state q at
// pressure p.
func eulerFlux(q [3]float64, p float64) (f [3]float64) {
	var (
		u = q[1] / q[0]
	)
	f = [3]float64{q[1], q[1]*u + p, u * (q[2] + p)}
	return
}

// centeredFlux is the central face flux with scalar artificial dissipation
// proportional to the spectral radius. vf is the face velocity for a moving
// mesh, zero otherwise.
func (ns *NavierStokes) centeredFlux(qL, qR [3]float64, vf float64) (f [3]float64) {
	var (
		th     = ns.Thermo
		pL     = th.Pressure(qL[0], qL[1], qL[2])
		pR     = th.Pressure(qR[0], qR[1], qR[2])
		uL, uR = qL[1] / qL[0], qR[1] / qR[0]
		cL     = th.SoundSpeed(qL[0], pL)
		cR     = th.SoundSpeed(qR[0], pR)
		fL     = eulerFlux(qL, pL)
		fR     = eulerFlux(qR, pR)
	)
	lmax := math.Max(math.Abs(uL-vf)+cL, math.Abs(uR-vf)+cR)
	for n := 0; n < 3; n++ {
		f[n] = 0.5*(fL[n]+fR[n]) - vf*0.5*(qL[n]+qR[n]) -
			0.5*ns.Dissipation*lmax*(qR[n]-qL[n])
	}
	return
}

// entropyFix keeps an eigenvalue magnitude away from zero so the flux
// Jacobian never goes singular at sonic or stagnation faces. Below the
// threshold the magnitude follows a parabola through (0, delta/2).
func entropyFix(lam, delta float64) float64 {
	if lam < delta {
		lam = 0.5 * (lam*lam/delta + delta)
	}
	return lam
}

// roeFlux is the flux difference splitting face flux with Roe averaging.
// The entropy fix floors the nonlinear (u-c, u+c) and linear (u) wave
// magnitudes at the configured fractions of the local wave speed.
func (ns *NavierStokes) roeFlux(qL, qR [3]float64, vf float64) (f [3]float64) {
	var (
		th     = ns.Thermo
		Gamma  = th.Gamma()
		GM1    = Gamma - 1
		pL     = th.Pressure(qL[0], qL[1], qL[2])
		pR     = th.Pressure(qR[0], qR[1], qR[2])
		rhoL   = qL[0]
		rhoR   = qR[0]
		uL, uR = qL[1] / rhoL, qR[1] / rhoR
		hL     = (qL[2] + pL) / rhoL
		hR     = (qR[2] + pR) / rhoR
		fL     = eulerFlux(qL, pL)
		fR     = eulerFlux(qR, pR)
	)
	// Roe average variables
	rhoLs, rhoRs := math.Sqrt(rhoL), math.Sqrt(rhoR)
	rhoLsRs := rhoLs + rhoRs

	rho := rhoLs * rhoRs
	u := (rhoLs*uL + rhoRs*uR) / rhoLsRs
	h := (rhoLs*hL + rhoRs*hR) / rhoLsRs
	c2 := GM1 * (h - 0.5*u*u)
	c := math.Sqrt(c2)

	// Wave strengths
	dW1 := -0.5*(rho*(uR-uL))/c + 0.5*(pR-pL)/c2
	dW2 := (rhoR - rhoL) - (pR-pL)/c2
	dW4 := 0.5*(rho*(uR-uL))/c + 0.5*(pR-pL)/c2

	// Wave speeds in the face frame, with the entropy fix applied
	lamRef := math.Abs(u-vf) + c
	l1 := entropyFix(math.Abs(u-vf-c), ns.EFixNonlin*lamRef)
	l2 := entropyFix(math.Abs(u-vf), ns.EFixLin*lamRef)
	l4 := entropyFix(math.Abs(u-vf+c), ns.EFixNonlin*lamRef)

	dW1 *= l1
	dW2 *= l2
	dW4 *= l4

	f[0] = 0.5*(fL[0]+fR[0]) - vf*0.5*(qL[0]+qR[0]) -
		0.5*(dW1+dW2+dW4)
	f[1] = 0.5*(fL[1]+fR[1]) - vf*0.5*(qL[1]+qR[1]) -
		0.5*(dW1*(u-c)+dW2*u+dW4*(u+c))
	f[2] = 0.5*(fL[2]+fR[2]) - vf*0.5*(qL[2]+qR[2]) -
		0.5*(dW1*(h-u*c)+dW2*0.5*u*u+dW4*(h+u*c))
	return
}

func minmod(a, b float64) (m float64) {
	if a*b <= 0. {
		return
	}
	m = a
	if math.Abs(b) < math.Abs(a) {
		m = b
	}
	return
}

const vaEps = 1.e-16

func vanAlbada(a, b float64) (s float64) {
	s = (2*a*b + vaEps) / (a*a + b*b + vaEps)
	if s < 0. {
		s = 0.
	}
	return
}

// faceStates reconstructs the left and right conservative states at
// interior face f. With no limiter configured the states are the first
// order cell values; otherwise a slope limited kappa scheme reconstruction
// of the primitives feeds the Riemann flux.
func (ns *NavierStokes) faceStates(f int) (qL, qR [3]float64) {
	var (
		O, N = ns.Mesh.Owner(f), ns.Mesh.Neighbour(f)
	)
	if ns.Limiter == LIM_None {
		qL = [3]float64{ns.U[EqRho].AtVec(O), ns.U[EqRhoU].AtVec(O), ns.U[EqEt].AtVec(O)}
		qR = [3]float64{ns.U[EqRho].AtVec(N), ns.U[EqRhoU].AtVec(N), ns.U[EqEt].AtVec(N)}
		return
	}
	var (
		LL, RR = ns.Mesh.ExtendedOwner(f), ns.Mesh.ExtendedNeighbour(f)
		rho    = ns.U[EqRho].Data()
		vel    = ns.Vel.Data()
		p      = ns.P.Data()
		wL, wR [3]float64
		kap    = ns.Kappa
	)
	prim := func(c int) [3]float64 { return [3]float64{rho[c], vel[c], p[c]} }
	var (
		wO, wN   = prim(O), prim(N)
		wLL, wRR = prim(LL), prim(RR)
	)
	for n := 0; n < 3; n++ {
		dm := wO[n] - wLL[n]
		dp := wN[n] - wO[n]
		dn := wRR[n] - wN[n]
		switch ns.Limiter {
		case LIM_MinMod:
			wL[n] = wO[n] + 0.5*minmod(dm, dp)
			wR[n] = wN[n] - 0.5*minmod(dp, dn)
		case LIM_VanAlbada:
			s := vanAlbada(dm, dp)
			wL[n] = wO[n] + 0.25*s*((1-kap*s)*dm+(1+kap*s)*dp)
			s = vanAlbada(dp, dn)
			wR[n] = wN[n] - 0.25*s*((1-kap*s)*dn+(1+kap*s)*dp)
		}
	}
	// Fall back to first order on a side that reconstructed out of bounds
	if wL[0] <= 0. || wL[2] <= 0. {
		wL = wO
	}
	if wR[0] <= 0. || wR[2] <= 0. {
		wR = wN
	}
	qL = ns.conservativeOf(wL)
	qR = ns.conservativeOf(wR)
	return
}

func (ns *NavierStokes) conservativeOf(w [3]float64) (q [3]float64) {
	q = [3]float64{w[0], w[0] * w[1], ns.Thermo.TotalEnergy(w[0], w[1], w[2])}
	return
}
