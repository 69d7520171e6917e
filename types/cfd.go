package types

import (
	"fmt"
	"strings"
)

// PhysBC is the physical boundary condition attached to one face of the
// problem domain.
type PhysBC uint8

const (
	BC_Interior PhysBC = iota
	BC_Inflow
	BC_Outflow
	BC_Symmetry
	BC_SlipWall
	BC_NoSlipWall
)

var (
	BCNameMap = map[string]PhysBC{
		"interior":   BC_Interior,
		"periodic":   BC_Interior,
		"inflow":     BC_Inflow,
		"in":         BC_Inflow,
		"outflow":    BC_Outflow,
		"out":        BC_Outflow,
		"symmetry":   BC_Symmetry,
		"slip":       BC_Symmetry,
		"slipwall":   BC_SlipWall,
		"wall":       BC_NoSlipWall,
		"noslipwall": BC_NoSlipWall,
	}
	BCPrintNames = []string{"Interior", "Inflow", "Outflow", "Symmetry", "SlipWall", "NoSlipWall"}
)

func (bc PhysBC) Print() (txt string) {
	if int(bc) >= len(BCPrintNames) {
		return "Unknown"
	}
	return BCPrintNames[bc]
}

func NewPhysBC(label string) (bc PhysBC, err error) {
	var ok bool
	label = strings.ToLower(strings.TrimSpace(label))
	if bc, ok = BCNameMap[label]; !ok {
		err = fmt.Errorf("unknown boundary condition named [%s]", label)
	}
	return
}

// IsWall is true for faces that admit no mass flux.
func (bc PhysBC) IsWall() bool {
	return bc == BC_Symmetry || bc == BC_SlipWall || bc == BC_NoSlipWall
}

// IsCharacteristic is true for faces treated by the characteristic
// (non-reflecting / target state) boundary routines.
func (bc PhysBC) IsCharacteristic() bool {
	return bc == BC_Inflow || bc == BC_Outflow
}

// MaskTag is the first component of the boundary mask.
type MaskTag int32

const (
	Mask_Interior MaskTag = iota
	Mask_Inflow
	Mask_Outflow
	Mask_Symmetry
	Mask_SlipWall
	Mask_NoSlipWall
	Mask_Periodic
)

func (bc PhysBC) MaskTag() MaskTag {
	switch bc {
	case BC_Inflow:
		return Mask_Inflow
	case BC_Outflow:
		return Mask_Outflow
	case BC_Symmetry:
		return Mask_Symmetry
	case BC_SlipWall:
		return Mask_SlipWall
	case BC_NoSlipWall:
		return Mask_NoSlipWall
	}
	return Mask_Interior
}

func (mt MaskTag) IsWall() bool {
	return mt == Mask_Symmetry || mt == Mask_SlipWall || mt == Mask_NoSlipWall
}

// CoordSys is the geometric coordinate system of a level.
type CoordSys uint8

const (
	Cartesian CoordSys = iota
	RZ
	Spherical
)

var CoordNames = map[string]CoordSys{
	"cartesian":   Cartesian,
	"rz":          RZ,
	"cylindrical": RZ,
	"spherical":   Spherical,
}

func (cs CoordSys) Print() (txt string) {
	switch cs {
	case Cartesian:
		txt = "Cartesian"
	case RZ:
		txt = "RZ"
	case Spherical:
		txt = "Spherical"
	}
	return
}
