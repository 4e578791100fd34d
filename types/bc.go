package types

import (
	"fmt"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Out
	BC_Wall
	BC_Far
)

var BCNameMap = map[string]BCFLAG{
	"inflow":   BC_In,
	"in":       BC_In,
	"inlet":    BC_In,
	"out":      BC_Out,
	"outflow":  BC_Out,
	"outlet":   BC_Out,
	"wall":     BC_Wall,
	"far":      BC_Far,
	"farfield": BC_Far,
}

var bcPrintNames = []string{"none", "inflow", "outflow", "wall", "farfield"}

func (bc BCFLAG) Print() (txt string) {
	txt = bcPrintNames[bc]
	return
}

func NewBCFlag(label string) (bc BCFLAG) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if len(label) == 0 {
		return BC_None
	}
	if bc, ok = BCNameMap[label]; !ok {
		err = fmt.Errorf("unable to use boundary condition named %s", label)
		panic(err)
	}
	return
}
