package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file. NewParameters installs every
// documented default, so parsing overwrites only the keys present in the
// file.
type Parameters struct {
	Title               string             `yaml:"Title"`
	Physics             string             `yaml:"Physics"`
	Turbulence          string             `yaml:"Turbulence"`
	Solver              string             `yaml:"Solver"`
	FluxType            string             `yaml:"FluxType"`
	Limiter             string             `yaml:"Limiter"`
	Kappa               float64            `yaml:"Kappa"`
	CFL                 float64            `yaml:"CFL"`
	TimeStepping        string             `yaml:"TimeStepping"`
	CourantBound        float64            `yaml:"CourantBound"`
	Alpha               float64            `yaml:"Alpha"`
	SmoothingIterations int                `yaml:"SmoothingIterations"`
	SmoothingEpsilon    float64            `yaml:"SmoothingEpsilon"`
	SubIterations       int                `yaml:"SubIterations"`
	MaxIterations       int                `yaml:"MaxIterations"`
	ResidualTarget      float64            `yaml:"ResidualTarget"`
	ResidualNorm        string             `yaml:"ResidualNorm"`
	Unsteady            bool               `yaml:"Unsteady"`
	DeltaT              float64            `yaml:"DeltaT"`
	FinalTime           float64            `yaml:"FinalTime"`
	EntropyFixLinear    float64            `yaml:"EntropyFixLinear"`
	EntropyFixNonlinear float64            `yaml:"EntropyFixNonlinear"`
	Dissipation         float64            `yaml:"Dissipation"`
	FaceAveraging       string             `yaml:"FaceAveraging"`
	WallFunctions       bool               `yaml:"WallFunctions"`
	TurbulenceOnCoarse  bool               `yaml:"TurbulenceOnCoarse"`
	BCLeft              string             `yaml:"BCLeft"`
	BCRight             string             `yaml:"BCRight"`
	Gamma               float64            `yaml:"Gamma"`
	R                   float64            `yaml:"R"`
	Prandtl             float64            `yaml:"Prandtl"`
	PrandtlTurbulent    float64            `yaml:"PrandtlTurbulent"`
	Minf                float64            `yaml:"Minf"`
	Pinf                float64            `yaml:"Pinf"`
	Tinf                float64            `yaml:"Tinf"`
	NuTildeInf          float64            `yaml:"NuTildeInf"`
	KappaInf            float64            `yaml:"KappaInf"`
	OmegaInf            float64            `yaml:"OmegaInf"`
	Mesh                MeshParameters     `yaml:"Mesh"`
	Constants           map[string]float64 `yaml:"Constants"` // closure constant overrides
}

type MeshParameters struct {
	Cells   int     `yaml:"Cells"`
	Length  float64 `yaml:"Length"`
	Stretch float64 `yaml:"Stretch"`
}

func NewParameters() (ip *Parameters) {
	ip = &Parameters{
		Physics:             "Euler",
		Solver:              "TimeStepping",
		FluxType:            "Centered",
		Kappa:               1. / 3.,
		CFL:                 1.0,
		TimeStepping:        "Global",
		CourantBound:        2.0,
		Alpha:               0.8,
		SmoothingIterations: 2,
		SmoothingEpsilon:    0.5,
		SubIterations:       20,
		MaxIterations:       1000,
		ResidualTarget:      1.e-08,
		ResidualNorm:        "Initial",
		DeltaT:              0.01,
		FinalTime:           1.0,
		EntropyFixLinear:    0.05,
		EntropyFixNonlinear: 0.05,
		Dissipation:         0.5,
		FaceAveraging:       "Distance",
		BCLeft:              "Inlet",
		BCRight:             "Outlet",
		Gamma:               1.4,
		R:                   287.05,
		Prandtl:             0.72,
		PrandtlTurbulent:    0.9,
		Minf:                0.5,
		Pinf:                101325.,
		Tinf:                288.15,
		KappaInf:            1.e-03,
		OmegaInf:            1.e+03,
		Mesh: MeshParameters{
			Cells:   100,
			Length:  1.0,
			Stretch: 1.0,
		},
	}
	return
}

func (ip *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Physics\n", ip.Physics)
	fmt.Printf("[%s]\t\t\t= Turbulence\n", ip.Turbulence)
	fmt.Printf("[%s]\t\t= Solver\n", ip.Solver)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%s]\t\t\t= Limiter\n", ip.Limiter)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= Alpha\n", ip.Alpha)
	fmt.Printf("[%s]\t\t= TimeStepping\n", ip.TimeStepping)
	fmt.Printf("[%d/%8.5f]\t= Smoothing iterations/epsilon\n",
		ip.SmoothingIterations, ip.SmoothingEpsilon)
	fmt.Printf("[%d/%d]\t\t= Sub/Max iterations\n", ip.SubIterations, ip.MaxIterations)
	fmt.Printf("%8.3e\t\t= ResidualTarget\n", ip.ResidualTarget)
	if ip.Unsteady {
		fmt.Printf("%8.5f\t\t= DeltaT\n", ip.DeltaT)
		fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	}
	fmt.Printf("[%s/%s]\t= BCLeft/BCRight\n", ip.BCLeft, ip.BCRight)
	fmt.Printf("%8.5f\t\t= Minf\n", ip.Minf)
	fmt.Printf("[%d/%8.5f/%8.5f]\t= Mesh Cells/Length/Stretch\n",
		ip.Mesh.Cells, ip.Mesh.Length, ip.Mesh.Stretch)
	keys := make([]string, len(ip.Constants))
	i := 0
	for k := range ip.Constants {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Constants[%s] = %v\n", key, ip.Constants[key])
	}
}
