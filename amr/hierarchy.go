package amr

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
)

// Hierarchy is a stack of levels, coarsest first, with a flux register
// between each pair of neighbouring levels.
type Hierarchy struct {
	Levels    []*grid.Level
	registers []*FluxRegister // registers[l] couples levels l-1 and l
}

func NewHierarchy(levels []*grid.Level, nComp int) (h *Hierarchy, err error) {
	if len(levels) == 0 {
		err = fmt.Errorf("hierarchy needs at least one level")
		return
	}
	h = &Hierarchy{
		Levels:    levels,
		registers: make([]*FluxRegister, len(levels)),
	}
	for l := 1; l < len(levels); l++ {
		if h.registers[l], err = NewFluxRegister(levels[l-1], levels[l], nComp); err != nil {
			return nil, err
		}
	}
	return
}

func (h *Hierarchy) FinestLevel() int { return len(h.Levels) - 1 }

// Register returns the register between lev-1 and lev, nil for level 0.
func (h *Hierarchy) Register(lev int) *FluxRegister {
	if lev <= 0 || lev >= len(h.registers) {
		return nil
	}
	return h.registers[lev]
}

/*
Registers returns the registers a level feeds: crse is shared with the next
finer level and takes this level's fluxes as the coarse side, fine is
shared with the next coarser level. Either is nil when that neighbour does
not exist.
*/
func (h *Hierarchy) Registers(lev int) (crse, fine rf.FluxRegister) {
	if r := h.Register(lev + 1); r != nil {
		crse = r
	}
	if r := h.Register(lev); r != nil {
		fine = r
	}
	return
}

// CheckRegisters verifies that every register received both sides.
func (h *Hierarchy) CheckRegisters() (err error) {
	for l := 1; l < len(h.registers); l++ {
		err = multierr.Append(err, h.registers[l].Complete())
	}
	return
}

// Reflux applies and clears every register, finest interface first.
func (h *Hierarchy) Reflux(get func(p *grid.Patch) *grid.Field) (err error) {
	if err = h.CheckRegisters(); err != nil {
		return
	}
	for l := len(h.registers) - 1; l >= 1; l-- {
		if err = h.registers[l].Reflux(get); err != nil {
			return
		}
		h.registers[l].Reset()
	}
	return
}
