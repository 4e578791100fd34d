package mesh

import (
	"github.com/notargets/gorans/utils"
)

// Line is a one-dimensional cell arrangement spanning [0, Length] with the
// wall at x = 0. A Stretch factor above one contracts cells geometrically
// toward the wall, the usual arrangement for resolving a boundary layer.
type Line struct {
	nc       int
	xf       []float64 // face positions including the two boundary ends
	xc       []float64 // cell centres
	vol      []float64
	volO     []float64
	area     []float64 // interior face areas
	faceVel  []float64
	wallDist []float64
	moving   bool
}

func NewLine(cells int, length, stretch float64) (l *Line) {
	if cells < 2 {
		panic("a line mesh needs at least two cells")
	}
	l = &Line{
		nc:       cells,
		xf:       make([]float64, cells+1),
		xc:       make([]float64, cells),
		vol:      make([]float64, cells),
		volO:     make([]float64, cells),
		area:     make([]float64, cells-1),
		faceVel:  make([]float64, cells-1),
		wallDist: make([]float64, cells),
	}
	if stretch <= 1. {
		h := length / float64(cells)
		for i := range l.xf {
			l.xf[i] = float64(i) * h
		}
	} else {
		// Geometric progression, first cell smallest
		ratio := stretch
		h0 := length * (ratio - 1.) / (utils.POW(ratio, cells) - 1.)
		x := 0.
		l.xf[0] = 0.
		dx := h0
		for i := 1; i <= cells; i++ {
			x += dx
			l.xf[i] = x
			dx *= ratio
		}
		// Scale out accumulated roundoff so the last face lands on length
		scale := length / l.xf[cells]
		for i := range l.xf {
			l.xf[i] *= scale
		}
	}
	for c := 0; c < cells; c++ {
		l.xc[c] = 0.5 * (l.xf[c] + l.xf[c+1])
		l.vol[c] = l.xf[c+1] - l.xf[c]
		l.volO[c] = l.vol[c]
		l.wallDist[c] = l.xc[c]
	}
	for f := range l.area {
		l.area[f] = 1.
	}
	return
}

func (l *Line) NumCells() int { return l.nc }
func (l *Line) NumFaces() int { return l.nc - 1 }

func (l *Line) Owner(f int) int     { return f }
func (l *Line) Neighbour(f int) int { return f + 1 }

func (l *Line) ExtendedOwner(f int) int {
	if f == 0 {
		return 0
	}
	return f - 1
}

func (l *Line) ExtendedNeighbour(f int) int {
	if f == l.nc-2 {
		return l.nc - 1
	}
	return f + 2
}

func (l *Line) Area(f int) float64  { return l.area[f] }
func (l *Line) Delta(f int) float64 { return l.xc[f+1] - l.xc[f] }

func (l *Line) Weight(f int) (w float64) {
	// Owner weight: fraction of the owner-neighbour span on the neighbour
	// side of the face, so a face close to the owner weights the owner high
	var (
		dO = l.xf[f+1] - l.xc[f]
		dN = l.xc[f+1] - l.xf[f+1]
	)
	w = dN / (dO + dN)
	return
}

func (l *Line) FaceVelocity(f int) float64 { return l.faceVel[f] }

func (l *Line) Volume(c int) float64       { return l.vol[c] }
func (l *Line) VolumeO(c int) float64      { return l.volO[c] }
func (l *Line) Centre(c int) float64       { return l.xc[c] }
func (l *Line) WallDistance(c int) float64 { return l.wallDist[c] }

func (l *Line) Moving() bool { return l.moving }

// SetFaceVelocities marks the mesh as moving and installs per-face normal
// velocities, the ALE hook exercised by the unsteady source term.
func (l *Line) SetFaceVelocities(v []float64) {
	if len(v) != len(l.faceVel) {
		panic("face velocity count does not match face count")
	}
	copy(l.faceVel, v)
	l.moving = true
}

// Deform commits the current volumes as previous and scales the current
// ones, standing in for a mesh motion step between physical timesteps.
func (l *Line) Deform(scale float64) {
	copy(l.volO, l.vol)
	for c := range l.vol {
		l.vol[c] *= scale
	}
	l.moving = true
}
