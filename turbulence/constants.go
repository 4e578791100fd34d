package turbulence

import (
	"fmt"
	"math"
	"strings"
)

// SAConstants are the Spalart-Allmaras closure coefficients. Defaults are
// the published model values; entries of the configuration Constants map
// override the matching coefficient by name. Cw1 derives from Cb1, Kappa,
// Cb2 and Sigma unless overridden explicitly, and WallE derives from Kappa
// and WallC the same way.
type SAConstants struct {
	Sigma  float64
	Kappa  float64
	Cb1    float64
	Cb2    float64
	Cv1    float64
	Cw1    float64
	Cw2    float64
	Cw3    float64
	WallC  float64 // log-law intercept used by the wall function
	WallE  float64 // exp(Kappa * WallC)
	Small  float64
	LinFix float64 // relative change clamp per sub-iteration
}

func NewSAConstants(overrides map[string]float64) (c SAConstants) {
	c = SAConstants{
		Sigma:  2. / 3.,
		Kappa:  0.4187,
		Cb1:    0.1355,
		Cb2:    0.622,
		Cv1:    7.1,
		Cw2:    0.3,
		Cw3:    2.0,
		WallC:  5.5,
		Small:  1.e-10,
		LinFix: 0.10,
	}
	var haveCw1, haveWallE bool
	for key, val := range overrides {
		switch strings.ToLower(key) {
		case "sigma":
			c.Sigma = val
		case "kappa":
			c.Kappa = val
		case "cb1":
			c.Cb1 = val
		case "cb2":
			c.Cb2 = val
		case "cv1":
			c.Cv1 = val
		case "cw1":
			c.Cw1, haveCw1 = val, true
		case "cw2":
			c.Cw2 = val
		case "cw3":
			c.Cw3 = val
		case "wallc":
			c.WallC = val
		case "walle":
			c.WallE, haveWallE = val, true
		case "small":
			c.Small = val
		case "linfix":
			c.LinFix = val
		default:
			err := fmt.Errorf("unknown Spalart-Allmaras constant %s", key)
			panic(err)
		}
	}
	if !haveCw1 {
		c.Cw1 = c.Cb1/(c.Kappa*c.Kappa) + (1.+c.Cb2)/c.Sigma
	}
	if !haveWallE {
		c.WallE = math.Exp(c.Kappa * c.WallC)
	}
	return
}

// KWConstants are the Menter SST coefficients. The set-1 values hold in the
// near-wall region and the set-2 values in free shear; the F1 function
// blends between them per cell.
type KWConstants struct {
	Kappa    float64
	SigmaK1  float64
	SigmaK2  float64
	SigmaW1  float64
	SigmaW2  float64
	Gamma1   float64
	Gamma2   float64
	Beta1    float64
	Beta2    float64
	BetaStar float64
	A1       float64
	C1       float64 // production limiter multiple of the dissipation
	Small    float64
	LinFix   float64
}

func NewKWConstants(overrides map[string]float64) (c KWConstants) {
	c = KWConstants{
		Kappa:    0.41,
		SigmaK1:  0.85034,
		SigmaK2:  1.0,
		SigmaW1:  0.5,
		SigmaW2:  0.85616,
		Gamma1:   0.5532,
		Gamma2:   0.4403,
		Beta1:    0.075,
		Beta2:    0.0828,
		BetaStar: 0.09,
		A1:       0.31,
		C1:       10.0,
		Small:    1.e-10,
		LinFix:   0.10,
	}
	for key, val := range overrides {
		switch strings.ToLower(key) {
		case "kappa":
			c.Kappa = val
		case "sigmak1":
			c.SigmaK1 = val
		case "sigmak2":
			c.SigmaK2 = val
		case "sigmaw1":
			c.SigmaW1 = val
		case "sigmaw2":
			c.SigmaW2 = val
		case "gamma1":
			c.Gamma1 = val
		case "gamma2":
			c.Gamma2 = val
		case "beta1":
			c.Beta1 = val
		case "beta2":
			c.Beta2 = val
		case "betastar":
			c.BetaStar = val
		case "a1":
			c.A1 = val
		case "c1":
			c.C1 = val
		case "small":
			c.Small = val
		case "linfix":
			c.LinFix = val
		default:
			err := fmt.Errorf("unknown Kappa-Omega constant %s", key)
			panic(err)
		}
	}
	return
}

// Blend interpolates a near-wall and free-shear constant pair with F1.
func Blend(f1, c1, c2 float64) float64 {
	return f1*c1 + (1.-f1)*c2
}
