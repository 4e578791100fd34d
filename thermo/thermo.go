package thermo

import "math"

// Model is the thermodynamic closure consumed by the discretization
// operators. All methods are pure functions of their arguments so the
// operators can evaluate them per cell or per face without shared state.
type Model interface {
	Pressure(rho, rhoU, Et float64) (p float64)
	Temperature(rho, p float64) (T float64)
	SoundSpeed(rho, p float64) (c float64)
	TotalEnergy(rho, u, p float64) (Et float64)
	Viscosity(T float64) (mu float64)
	Conductivity(mu float64) (k float64)
	TurbulentConductivity(muTur float64) (k float64)
	Gamma() float64
	GasConstant() float64
}

type PerfectGas struct {
	Gam, Rgas float64
	Pr, PrTur float64
	// Sutherland law reference state
	MuRef, TRef, TSuth float64
}

func NewPerfectGas(gamma, R, prandtl, prandtlTurbulent float64) (pg *PerfectGas) {
	pg = &PerfectGas{
		Gam:   gamma,
		Rgas:  R,
		Pr:    prandtl,
		PrTur: prandtlTurbulent,
		MuRef: 1.716e-5,
		TRef:  273.15,
		TSuth: 110.4,
	}
	return
}

func (pg *PerfectGas) Gamma() float64       { return pg.Gam }
func (pg *PerfectGas) GasConstant() float64 { return pg.Rgas }

func (pg *PerfectGas) Pressure(rho, rhoU, Et float64) (p float64) {
	var (
		GM1 = pg.Gam - 1.
		q   = 0.5 * rhoU * rhoU / rho
	)
	p = GM1 * (Et - q)
	return
}

func (pg *PerfectGas) Temperature(rho, p float64) (T float64) {
	T = p / (rho * pg.Rgas)
	return
}

func (pg *PerfectGas) SoundSpeed(rho, p float64) (c float64) {
	c = math.Sqrt(math.Abs(pg.Gam * p / rho))
	return
}

func (pg *PerfectGas) TotalEnergy(rho, u, p float64) (Et float64) {
	var (
		GM1 = pg.Gam - 1.
	)
	Et = p/GM1 + 0.5*rho*u*u
	return
}

// Viscosity evaluates the Sutherland law at temperature T.
func (pg *PerfectGas) Viscosity(T float64) (mu float64) {
	mu = pg.MuRef * math.Pow(T/pg.TRef, 1.5) * (pg.TRef + pg.TSuth) / (T + pg.TSuth)
	return
}

func (pg *PerfectGas) Conductivity(mu float64) (k float64) {
	var (
		Cp = pg.Gam * pg.Rgas / (pg.Gam - 1.)
	)
	k = mu * Cp / pg.Pr
	return
}

func (pg *PerfectGas) TurbulentConductivity(muTur float64) (k float64) {
	var (
		Cp = pg.Gam * pg.Rgas / (pg.Gam - 1.)
	)
	k = muTur * Cp / pg.PrTur
	return
}
