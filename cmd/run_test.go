package cmd

import (
	"testing"

	"github.com/magiconair/properties/assert"

	"github.com/notargets/gorans/InputParameters"
)

func TestRunInput(t *testing.T) {
	var (
		err error
	)
	// The example printed for a missing -I flag must itself parse
	input := InputParameters.NewParameters()
	if err = input.Parse([]byte(exampleFile)); err != nil {
		panic(err)
	}
	assert.Equal(t, input.Physics, "RANS")
	assert.Equal(t, input.Turbulence, "SA")
	assert.Equal(t, input.FluxType, "Roe")
	assert.Equal(t, input.CFL, 5.)
	assert.Equal(t, input.Mesh.Cells, 200)
	assert.Equal(t, input.Mesh.Stretch, 1.05)
	assert.Equal(t, input.BCRight, "Farfield")
	// Keys absent from the file keep their defaults
	assert.Equal(t, input.SubIterations, 20)
	assert.Equal(t, input.ResidualTarget, 1.e-08)
	input.Print()
}
