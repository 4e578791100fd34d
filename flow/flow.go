package flow

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/field"
	"github.com/notargets/gorans/mesh"
	"github.com/notargets/gorans/thermo"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// Equation indices within the flow ledger
const (
	EqRho = iota
	EqRhoU
	EqEt
)

type Physics uint

const (
	EULER Physics = iota
	RANS
)

var (
	PhysicsNames = map[string]Physics{
		"euler":                        EULER,
		"e":                            EULER,
		"reynoldsaveragednavierstokes": RANS,
		"rans":                         RANS,
	}
	PhysicsPrintNames = []string{"Euler", "RANS"}
)

func (p Physics) Print() (txt string) {
	txt = PhysicsPrintNames[p]
	return
}

func NewPhysics(label string) (p Physics) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if len(label) == 0 {
		return EULER
	}
	if p, ok = PhysicsNames[label]; !ok {
		err = fmt.Errorf("unable to use physics named %s", label)
		panic(err)
	}
	return
}

// FreeStream is the reference state used for initialization and inflow
// boundaries.
type FreeStream struct {
	Minf, Pinf, Tinf          float64
	Rhoinf, Uinf, Cinf, Etinf float64
}

func NewFreeStream(minf, pinf, tinf float64, th thermo.Model) (fs *FreeStream) {
	fs = &FreeStream{
		Minf: minf,
		Pinf: pinf,
		Tinf: tinf,
	}
	fs.Rhoinf = pinf / (th.GasConstant() * tinf)
	fs.Cinf = th.SoundSpeed(fs.Rhoinf, pinf)
	fs.Uinf = minf * fs.Cinf
	fs.Etinf = th.TotalEnergy(fs.Rhoinf, fs.Uinf, pinf)
	return
}

func (fs *FreeStream) Conservative() (q [3]float64) {
	q = [3]float64{fs.Rhoinf, fs.Rhoinf * fs.Uinf, fs.Etinf}
	return
}

// BoundaryFace caches the primitive state at a domain end after each update,
// consumed by the force aggregation and by diagnostics.
type BoundaryFace struct {
	Flag    types.BCFLAG
	P, U, T float64
	Tau     float64 // viscous normal stress at a wall end
}

// BodyForce injects external forcing per cell. The returned values
// accumulate into the body source arrays for the mass, momentum and energy
// equations.
type BodyForce func(c int, x float64, unsteady bool) (fRho, fRhoU, fEt float64)

// NavierStokes is the flow discretization operator. It owns the
// conservative ledger for {rho, rhoU, Et}, the derived primitive and
// auxiliary fields, and the local timestep machinery. The turbulence
// closures read its primitives and write only MuTur and KTur, through their
// Update coupling.
type NavierStokes struct {
	*field.Ledger
	*field.Residuals

	Physics     Physics
	Flux        FluxType
	Limiter     LimiterType
	Kappa       float64
	EFixLin     float64
	EFixNonlin  float64
	Dissipation float64

	DistanceWeighted bool
	Unsteady         bool

	Mesh   mesh.Provider
	Thermo thermo.Model
	FS     *FreeStream

	BCLeft, BCRight types.BCFLAG
	BFaces          [2]BoundaryFace

	// Derived fields, one value per cell
	P, T, Vel, C utils.Vector
	Mu           utils.Vector
	MuTur, KTur  utils.Vector

	// Local timestep state
	Co, Dtau, DtsImplicit utils.Vector

	Smoother *mesh.Smoother
	PM       *utils.PartitionMap

	fluxFunc     func(qL, qR [3]float64, vf float64) [3]float64
	bodyForce    BodyForce
	rmsPending   []float64
	pendingValid bool
}

func NewNavierStokes(ip *InputParameters.Parameters, msh mesh.Provider, th thermo.Model) (ns *NavierStokes) {
	var (
		cells = msh.NumCells()
		dt    float64
	)
	if ip.Unsteady {
		dt = ip.DeltaT
	}
	ns = &NavierStokes{
		Ledger:           field.NewLedger("flow", []string{"rho", "rhoU", "Et"}, cells, dt),
		Residuals:        field.NewResiduals(3),
		Physics:          NewPhysics(ip.Physics),
		Flux:             NewFluxType(ip.FluxType),
		Limiter:          NewLimiterType(ip.Limiter),
		Kappa:            ip.Kappa,
		EFixLin:          ip.EntropyFixLinear,
		EFixNonlin:       ip.EntropyFixNonlinear,
		Dissipation:      ip.Dissipation,
		DistanceWeighted: strings.ToLower(ip.FaceAveraging) != "arithmetic",
		Unsteady:         ip.Unsteady,
		Mesh:             msh,
		Thermo:           th,
		FS:               NewFreeStream(ip.Minf, ip.Pinf, ip.Tinf, th),
		BCLeft:           types.NewBCFlag(ip.BCLeft),
		BCRight:          types.NewBCFlag(ip.BCRight),
		P:                utils.NewVector(cells),
		T:                utils.NewVector(cells),
		Vel:              utils.NewVector(cells),
		C:                utils.NewVector(cells),
		Mu:               utils.NewVector(cells),
		MuTur:            utils.NewVector(cells),
		KTur:             utils.NewVector(cells),
		Co:               utils.NewVector(cells),
		Dtau:             utils.NewVector(cells),
		DtsImplicit:      utils.NewVectorConst(cells, 1),
		Smoother:         mesh.NewSmoother(msh),
		rmsPending:       make([]float64, 3),
	}
	if ns.BCLeft == types.BC_None || ns.BCRight == types.BC_None {
		panic("flow operator requires BCLeft and BCRight")
	}
	pd := runtime.NumCPU()
	if pd > cells {
		pd = cells
	}
	ns.PM = utils.NewPartitionMap(pd, cells)
	switch ns.Flux {
	case FLUX_Centered:
		ns.fluxFunc = ns.centeredFlux
	case FLUX_Roe:
		ns.fluxFunc = ns.roeFlux
	}
	ns.InitializeFS()
	return
}

// InitializeFS fills the conservative state with the freestream and brings
// every derived field into agreement with it.
func (ns *NavierStokes) InitializeFS() {
	var (
		q = ns.FS.Conservative()
	)
	for i := 0; i < ns.Size(); i++ {
		ns.U[i].Set(q[i])
	}
	ns.Ledger.Store()
	ns.Update()
	ns.CorrectBoundaryConditions()
}

// Update recomputes the primitive and transport fields from the current
// conservative state. MuTur and KTur belong to the closure and are left
// alone here.
func (ns *NavierStokes) Update() {
	var (
		rho, rhoU, Et = ns.U[EqRho].Data(), ns.U[EqRhoU].Data(), ns.U[EqEt].Data()
		p, T, vel, c  = ns.P.Data(), ns.T.Data(), ns.Vel.Data(), ns.C.Data()
		mu            = ns.Mu.Data()
		th            = ns.Thermo
		wg            sync.WaitGroup
	)
	for np := 0; np < ns.PM.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			cMin, cMax := ns.PM.GetBucketRange(np)
			for i := cMin; i < cMax; i++ {
				vel[i] = rhoU[i] / rho[i]
				p[i] = th.Pressure(rho[i], rhoU[i], Et[i])
				T[i] = th.Temperature(rho[i], p[i])
				c[i] = th.SoundSpeed(rho[i], p[i])
				mu[i] = th.Viscosity(T[i])
			}
		}(np)
	}
	wg.Wait()
}

// CorrectBoundaryConditions refreshes the cached boundary face states from
// the current interior solution and the configured policies.
func (ns *NavierStokes) CorrectBoundaryConditions() {
	ns.BFaces[0] = ns.boundaryFace(ns.BCLeft, 0)
	ns.BFaces[1] = ns.boundaryFace(ns.BCRight, ns.Cells()-1)
}

func (ns *NavierStokes) boundaryFace(flag types.BCFLAG, i int) (bf BoundaryFace) {
	bf.Flag = flag
	switch flag {
	case types.BC_In, types.BC_Far:
		bf.P, bf.U, bf.T = ns.FS.Pinf, ns.FS.Uinf, ns.FS.Tinf
	case types.BC_Out:
		bf.P, bf.U, bf.T = ns.P.AtVec(i), ns.Vel.AtVec(i), ns.T.AtVec(i)
	case types.BC_Wall:
		bf.P, bf.U, bf.T = ns.P.AtVec(i), 0, ns.T.AtVec(i)
		if ns.Physics == RANS {
			dw := 0.5 * ns.Mesh.Volume(i)
			bf.Tau = 4. / 3. * ns.Mu.AtVec(i) * ns.Vel.AtVec(i) / dw
		}
	}
	return
}

// ghostState builds the conservative state just outside a domain end, used
// by the boundary flux evaluation. end is 0 for the left end, 1 for the
// right.
func (ns *NavierStokes) ghostState(end int) (q [3]float64) {
	var (
		i    int
		flag = ns.BCLeft
	)
	if end == 1 {
		i = ns.Cells() - 1
		flag = ns.BCRight
	}
	switch flag {
	case types.BC_In, types.BC_Far:
		q = ns.FS.Conservative()
	case types.BC_Out:
		q = [3]float64{ns.U[EqRho].AtVec(i), ns.U[EqRhoU].AtVec(i), ns.U[EqEt].AtVec(i)}
	case types.BC_Wall:
		// Mirror: reflected momentum cancels the face velocity
		q = [3]float64{ns.U[EqRho].AtVec(i), -ns.U[EqRhoU].AtVec(i), ns.U[EqEt].AtVec(i)}
	}
	return
}

// SetBodyForce registers the external forcing provider consumed by Body.
func (ns *NavierStokes) SetBodyForce(bf BodyForce) { ns.bodyForce = bf }

// WallForce aggregates the pressure and viscous normal loads on wall ends,
// signed outward along the axis. The moment arm vanishes on a line, so the
// moment is always zero.
func (ns *NavierStokes) WallForce() (force, moment float64) {
	if ns.BFaces[0].Flag == types.BC_Wall {
		force -= (ns.BFaces[0].P - ns.BFaces[0].Tau) * ns.Mesh.Area(0)
	}
	if ns.BFaces[1].Flag == types.BC_Wall {
		force += (ns.BFaces[1].P - ns.BFaces[1].Tau) * ns.Mesh.Area(ns.Mesh.NumFaces()-1)
	}
	return
}
