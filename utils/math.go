package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		goto MATHPOW
	}

	if p < 0 {
		p = -pp
		flipped = true
	}
	switch p {
	case 0:
		y = 1
	case 1:
		y = x
	case 2:
		y = x * x
	case 3:
		y = x * x * x
	case 4:
		y = x * x
		y = y * y
	case 5:
		y = x * x
		y = y * y * x
	case 6:
		y = x * x
		y = y * y * y
	case 7:
		y = x * x
		y = y * y * y * x
	case 8:
		y = x * x
		y = y * y * y * y
	}
	if flipped {
		y = 1. / y
	}
	return

MATHPOW:
	y = math.Pow(x, float64(p))
	return
}

// RMS is the root mean square of a slice, the residual aggregation used by
// every equation set.
func RMS(v []float64) (rms float64) {
	var (
		sum float64
	)
	if len(v) == 0 {
		return
	}
	for _, val := range v {
		sum += val * val
	}
	rms = math.Sqrt(sum / float64(len(v)))
	return
}

func MinMax(v []float64) (min, max float64) {
	min, max = v[0], v[0]
	for _, val := range v {
		if val < min {
			min = val
		}
		if val > max {
			max = val
		}
	}
	return
}
