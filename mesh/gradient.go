package mesh

// Gradient fills dst with the Green-Gauss cell gradient of the cell field
// src, using distance weighted face averaging. Boundary faces close the
// balance with the adjacent cell value, so a uniform field has an exactly
// zero gradient everywhere.
func Gradient(m Provider, src, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for f := 0; f < m.NumFaces(); f++ {
		var (
			o, nb = m.Owner(f), m.Neighbour(f)
			w     = m.Weight(f)
			phiF  = w*src[o] + (1-w)*src[nb]
			a     = m.Area(f)
		)
		dst[o] += phiF * a / m.Volume(o)
		dst[nb] -= phiF * a / m.Volume(nb)
	}
	last := m.NumCells() - 1
	dst[0] -= src[0] * m.Area(0) / m.Volume(0)
	dst[last] += src[last] * m.Area(m.NumFaces()-1) / m.Volume(last)
}
