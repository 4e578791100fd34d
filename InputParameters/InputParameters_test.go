package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameters(t *testing.T) {
	var (
		yamlInput = `
Title: "Flat plate column"
Physics: RANS
Turbulence: SA
FluxType: Roe
CFL: 2.5
SmoothingIterations: 0
Unsteady: true
DeltaT: 0.005
Mesh:
  Cells: 64
  Length: 2.0
Constants:
  Cb1: 0.14
`
	)
	ip := NewParameters()
	// Defaults before parsing
	assert.Equal(t, "Euler", ip.Physics)
	assert.Equal(t, 1.0, ip.CFL)
	assert.Equal(t, 2, ip.SmoothingIterations)
	assert.Equal(t, 100, ip.Mesh.Cells)

	err := ip.Parse([]byte(yamlInput))
	require.NoError(t, err)

	// Parsed keys override, including explicit zeros
	assert.Equal(t, "RANS", ip.Physics)
	assert.Equal(t, "SA", ip.Turbulence)
	assert.Equal(t, "Roe", ip.FluxType)
	assert.Equal(t, 2.5, ip.CFL)
	assert.Equal(t, 0, ip.SmoothingIterations)
	assert.True(t, ip.Unsteady)
	assert.Equal(t, 0.005, ip.DeltaT)
	assert.Equal(t, 64, ip.Mesh.Cells)
	assert.Equal(t, 2.0, ip.Mesh.Length)
	assert.Equal(t, 0.14, ip.Constants["Cb1"])

	// Untouched keys keep their defaults
	assert.Equal(t, 0.8, ip.Alpha)
	assert.Equal(t, "TimeStepping", ip.Solver)
	assert.Equal(t, 1.0, ip.Mesh.Stretch)

	// Malformed input reports an error
	assert.Error(t, NewParameters().Parse([]byte("CFL: [not, a, number]")))
}
