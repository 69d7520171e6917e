package grid

import "fmt"

// IntVect is a cell (or face) index. Unused dimensions stay at 0.
type IntVect [3]int

func (iv IntVect) Add(o IntVect) IntVect {
	return IntVect{iv[0] + o[0], iv[1] + o[1], iv[2] + o[2]}
}

func (iv IntVect) Sub(o IntVect) IntVect {
	return IntVect{iv[0] - o[0], iv[1] - o[1], iv[2] - o[2]}
}

// Unit returns the unit vector in direction d.
func Unit(d int) (iv IntVect) {
	iv[d] = 1
	return
}

type Side uint8

const (
	Lo Side = iota
	Hi
)

/*
Box is an inclusive index range. A box is cell centred unless Nodal[d] is
set, in which case index i in direction d names the face between cells i-1
and i.
*/
type Box struct {
	Lo, Hi IntVect
	Nodal  [3]bool
	Dim    int
}

func NewBox(dim int, lo, hi IntVect) (b Box) {
	if dim < 1 || dim > 3 {
		panic(fmt.Errorf("box dimension must be 1, 2 or 3, have %d", dim))
	}
	b = Box{Lo: lo, Hi: hi, Dim: dim}
	for d := dim; d < 3; d++ {
		b.Lo[d], b.Hi[d] = 0, 0
	}
	return
}

func (b Box) Ok() bool {
	for d := 0; d < 3; d++ {
		if b.Hi[d] < b.Lo[d] {
			return false
		}
	}
	return true
}

func (b Box) Length(d int) int { return b.Hi[d] - b.Lo[d] + 1 }

func (b Box) NumPts() int {
	if !b.Ok() {
		return 0
	}
	return b.Length(0) * b.Length(1) * b.Length(2)
}

func (b Box) Grow(n int) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] -= n
		b.Hi[d] += n
	}
	return b
}

func (b Box) GrowDir(d, n int) Box {
	if d < b.Dim {
		b.Lo[d] -= n
		b.Hi[d] += n
	}
	return b
}

// SurroundingNodes converts a cell box into the box of faces normal to d
// that bound its cells.
func (b Box) SurroundingNodes(d int) Box {
	if !b.Nodal[d] {
		b.Hi[d]++
		b.Nodal[d] = true
	}
	return b
}

// Enclosed converts a face box back into the cell box it bounds.
func (b Box) Enclosed(d int) Box {
	if b.Nodal[d] {
		b.Hi[d]--
		b.Nodal[d] = false
	}
	return b
}

// FaceBox is the single layer of d-normal faces on one side of a cell box.
func (b Box) FaceBox(d int, side Side) Box {
	f := b.SurroundingNodes(d)
	if side == Lo {
		f.Hi[d] = f.Lo[d]
	} else {
		f.Lo[d] = f.Hi[d]
	}
	return f
}

func (b Box) Contains(iv IntVect) bool {
	for d := 0; d < 3; d++ {
		if iv[d] < b.Lo[d] || iv[d] > b.Hi[d] {
			return false
		}
	}
	return true
}

func (b Box) ContainsBox(o Box) bool {
	return b.Contains(o.Lo) && b.Contains(o.Hi)
}

func (b Box) Intersect(o Box) (r Box, ok bool) {
	r = b
	for d := 0; d < 3; d++ {
		r.Lo[d] = max(b.Lo[d], o.Lo[d])
		r.Hi[d] = min(b.Hi[d], o.Hi[d])
	}
	ok = r.Ok()
	return
}

func coarsenIndex(i, r int) int {
	if i < 0 {
		return (i+1)/r - 1
	}
	return i / r
}

func (b Box) Coarsen(ratio IntVect) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] = coarsenIndex(b.Lo[d], ratio[d])
		if b.Nodal[d] {
			b.Hi[d] = coarsenIndex(b.Hi[d]+ratio[d]-1, ratio[d])
		} else {
			b.Hi[d] = coarsenIndex(b.Hi[d], ratio[d])
		}
	}
	return b
}

func (b Box) Refine(ratio IntVect) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] *= ratio[d]
		if b.Nodal[d] {
			b.Hi[d] *= ratio[d]
		} else {
			b.Hi[d] = (b.Hi[d]+1)*ratio[d] - 1
		}
	}
	return b
}

// CoarsenIV maps a fine index onto the coarse index containing it.
func CoarsenIV(iv, ratio IntVect, dim int) (c IntVect) {
	for d := 0; d < dim; d++ {
		c[d] = coarsenIndex(iv[d], ratio[d])
	}
	return
}

// ForEach visits every index with i fastest.
func (b Box) ForEach(fn func(i, j, k int)) {
	for k := b.Lo[2]; k <= b.Hi[2]; k++ {
		for j := b.Lo[1]; j <= b.Hi[1]; j++ {
			for i := b.Lo[0]; i <= b.Hi[0]; i++ {
				fn(i, j, k)
			}
		}
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%v %v %v)", b.Lo, b.Hi, b.Nodal)
}
