package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBCFlag(t *testing.T) {
	assert.Equal(t, BC_In, NewBCFlag("Inlet"))
	assert.Equal(t, BC_In, NewBCFlag("inflow"))
	assert.Equal(t, BC_Out, NewBCFlag("OUTLET"))
	assert.Equal(t, BC_Wall, NewBCFlag("wall"))
	assert.Equal(t, BC_Far, NewBCFlag("farfield"))
	assert.Equal(t, BC_None, NewBCFlag(""))
	assert.Equal(t, "wall", BC_Wall.Print())
	assert.Panics(t, func() { NewBCFlag("bogus") })
}
