package mesh

// Provider is the mesh collaborator contract consumed by the discretization
// operators. Connectivity is face based: every interior face carries an owner
// cell on its low side and a neighbour cell on its high side, plus the
// extended two-cell stencil used by higher order reconstruction. Metrics for
// a moving mesh (face velocities, previous volumes) are part of the contract
// so the operators never special-case the static configuration.
type Provider interface {
	NumCells() int
	NumFaces() int

	// Face connectivity. ExtendedOwner/ExtendedNeighbour return the cells one
	// further out on either side, clamped at the boundary.
	Owner(f int) int
	Neighbour(f int) int
	ExtendedOwner(f int) int
	ExtendedNeighbour(f int) int

	// Face metrics
	Area(f int) float64
	Delta(f int) float64  // owner to neighbour centre distance
	Weight(f int) float64 // owner side weight for distance weighted averaging
	FaceVelocity(f int) float64

	// Cell metrics
	Volume(c int) float64
	VolumeO(c int) float64
	Centre(c int) float64
	WallDistance(c int) float64

	Moving() bool
}
