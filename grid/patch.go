package grid

import (
	"fmt"
	"sync"

	"github.com/notargets/reactingflow/types"
)

// BCRec holds the physical condition on the low and high domain faces of
// each direction.
type BCRec [3][2]types.PhysBC

func NewBCRec(lo, hi [3]types.PhysBC) (bc BCRec) {
	for d := 0; d < 3; d++ {
		bc[d] = [2]types.PhysBC{lo[d], hi[d]}
	}
	return
}

// Patch is one rectangular block of a level. State covers the valid box
// grown by the halo width.
type Patch struct {
	ID    int
	Box   Box
	State *Field
}

type Level struct {
	Lev     int
	Geom    Geometry
	Ratio   IntVect // refinement ratio to the next coarser level
	NGrow   int
	Patches []*Patch
}

func NewLevel(lev int, geom Geometry, ratio IntVect, boxes []Box, nComp, nGrow int) (l *Level, err error) {
	l = &Level{
		Lev:   lev,
		Geom:  geom,
		Ratio: ratio,
		NGrow: nGrow,
	}
	for d := geom.Dim(); d < 3; d++ {
		l.Ratio[d] = 1
	}
	for n, b := range boxes {
		if b.Dim != geom.Dim() {
			err = fmt.Errorf("patch %d has dimension %d, level has %d", n, b.Dim, geom.Dim())
			return
		}
		if !geom.Domain.ContainsBox(b) {
			err = fmt.Errorf("patch %d box %v is outside of domain %v", n, b, geom.Domain)
			return
		}
		for m := 0; m < n; m++ {
			if _, overlap := b.Intersect(boxes[m]); overlap {
				err = fmt.Errorf("patches %d and %d overlap", m, n)
				return
			}
		}
		l.Patches = append(l.Patches, &Patch{
			ID:    n,
			Box:   b,
			State: NewField(b.Grow(nGrow), nComp),
		})
	}
	return
}

func (l *Level) Boxes() (bs []Box) {
	for _, p := range l.Patches {
		bs = append(bs, p.Box)
	}
	return
}

// Owner returns the patch whose valid box contains iv, or nil.
func (l *Level) Owner(iv IntVect) *Patch {
	for _, p := range l.Patches {
		if p.Box.Contains(iv) {
			return p
		}
	}
	return nil
}

// Covered reports whether iv lies in the valid region of this level.
func (l *Level) Covered(iv IntVect) bool { return l.Owner(iv) != nil }

/*
FillBoundary fills the halo of every patch field returned by get. Cells
beyond periodic faces wrap, cells beyond walls mirror the interior with the
momentum components in momComps negated (only the normal one for slip and
symmetry faces), and cells beyond other physical faces copy the nearest
interior cell. Halo cells owned by a neighbour patch are copied from it;
anything left over, such as a coarse-fine boundary, copies the nearest
valid cell of the patch itself.
*/
func (l *Level) FillBoundary(get func(p *Patch) *Field, bc BCRec, momComps [3]int) {
	var (
		dom = l.Geom.Domain
		dim = l.Geom.Dim()
	)
	wg := sync.WaitGroup{}
	for _, p := range l.Patches {
		wg.Add(1)
		go func(p *Patch) {
			defer wg.Done()
			f := get(p)
			buf := make([]float64, f.NComp)
			f.Box.ForEach(func(i, j, k int) {
				iv := IntVect{i, j, k}
				if p.Box.Contains(iv) {
					return
				}
				var (
					src    = iv
					negate [3]bool
				)
				for d := 0; d < dim; d++ {
					var (
						side  Side
						out   bool
						lo    = dom.Lo[d]
						hi    = dom.Hi[d]
						width = dom.Length(d)
					)
					switch {
					case src[d] < lo:
						side, out = Lo, true
					case src[d] > hi:
						side, out = Hi, true
					}
					if !out {
						continue
					}
					if l.Geom.Periodic[d] {
						if side == Lo {
							src[d] += width
						} else {
							src[d] -= width
						}
						continue
					}
					phys := bc[d][side]
					if phys.IsWall() {
						if side == Lo {
							src[d] = 2*lo - 1 - src[d]
						} else {
							src[d] = 2*hi + 1 - src[d]
						}
						if phys == types.BC_NoSlipWall {
							negate = [3]bool{true, true, true}
						} else {
							negate[d] = true
						}
					} else {
						if side == Lo {
							src[d] = lo
						} else {
							src[d] = hi
						}
					}
				}
				var from *Field
				if q := l.Owner(src); q != nil {
					from = get(q)
				} else {
					for d := 0; d < dim; d++ {
						src[d] = min(max(src[d], p.Box.Lo[d]), p.Box.Hi[d])
					}
					from = f
				}
				buf = from.Cell(src[0], src[1], src[2], buf)
				for d := 0; d < 3; d++ {
					if negate[d] && momComps[d] >= 0 {
						buf[momComps[d]] = -buf[momComps[d]]
					}
				}
				f.SetCell(i, j, k, buf)
			})
		}(p)
	}
	wg.Wait()
}
