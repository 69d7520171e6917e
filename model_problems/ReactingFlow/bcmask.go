package ReactingFlow

import (
	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/types"
)

// Boundary mask components
const (
	MaskTag = iota
	MaskNoSlip
	NMask
)

// BCMask holds one integer field per active direction. Entry (i,j,k) of
// direction d describes the low d-face of cell (i,j,k).
type BCMask [3]*grid.IField

/*
SetBCMask tags the domain boundary faces lying in qbx with the physical
condition of that face. All other faces are interior.
*/
func SetBCMask(qbx grid.Box, geom grid.Geometry, bc grid.BCRec) (mask BCMask) {
	dom := geom.Domain
	for d := 0; d < geom.Dim(); d++ {
		m := grid.NewIField(qbx, NMask)
		for side, face := range [2]int{dom.Lo[d], dom.Hi[d] + 1} {
			if face < qbx.Lo[d] || face > qbx.Hi[d] {
				continue
			}
			var (
				tag    = types.Mask_Periodic
				noSlip int32
			)
			if !geom.Periodic[d] {
				phys := bc[d][side]
				tag = phys.MaskTag()
				if phys == types.BC_NoSlipWall {
					noSlip = 1
				}
			}
			fb := qbx
			fb.Lo[d], fb.Hi[d] = face, face
			fb.ForEach(func(i, j, k int) {
				m.Set(i, j, k, MaskTag, int32(tag))
				m.Set(i, j, k, MaskNoSlip, noSlip)
			})
		}
		mask[d] = m
	}
	return
}

func (mask BCMask) Tag(d, i, j, k int) types.MaskTag {
	return types.MaskTag(mask[d].At(i, j, k, MaskTag))
}
