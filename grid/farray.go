package grid

import "fmt"

type Number interface {
	~float64 | ~int32 | ~int
}

/*
FArray is a multi-component array over a Box, stored with i fastest and the
component index slowest.
*/
type FArray[T Number] struct {
	Box                      Box
	NComp                    int
	Data                     []T
	jStride, kStride, nStride int
}

type Field = FArray[float64]

type IField = FArray[int32]

func NewFArray[T Number](b Box, nComp int) (a *FArray[T]) {
	if !b.Ok() || nComp < 1 {
		panic(fmt.Errorf("invalid FArray: box %v, ncomp %d", b, nComp))
	}
	a = &FArray[T]{
		Box:     b,
		NComp:   nComp,
		jStride: b.Length(0),
		kStride: b.Length(0) * b.Length(1),
		nStride: b.NumPts(),
	}
	a.Data = make([]T, a.nStride*nComp)
	return
}

func NewField(b Box, nComp int) *Field { return NewFArray[float64](b, nComp) }

func NewIField(b Box, nComp int) *IField { return NewFArray[int32](b, nComp) }

func (a *FArray[T]) Index(i, j, k, n int) int {
	return (i - a.Box.Lo[0]) + (j-a.Box.Lo[1])*a.jStride +
		(k-a.Box.Lo[2])*a.kStride + n*a.nStride
}

func (a *FArray[T]) At(i, j, k, n int) T { return a.Data[a.Index(i, j, k, n)] }

func (a *FArray[T]) AtIV(iv IntVect, n int) T { return a.Data[a.Index(iv[0], iv[1], iv[2], n)] }

func (a *FArray[T]) Set(i, j, k, n int, v T) { a.Data[a.Index(i, j, k, n)] = v }

func (a *FArray[T]) Add(i, j, k, n int, v T) { a.Data[a.Index(i, j, k, n)] += v }

func (a *FArray[T]) SetVal(v T) {
	for i := range a.Data {
		a.Data[i] = v
	}
}

// Comp is the contiguous slice holding component n.
func (a *FArray[T]) Comp(n int) []T {
	return a.Data[n*a.nStride : (n+1)*a.nStride]
}

// Cell gathers all components at one index into dst, allocating if needed.
func (a *FArray[T]) Cell(i, j, k int, dst []T) []T {
	if len(dst) < a.NComp {
		dst = make([]T, a.NComp)
	}
	ind := a.Index(i, j, k, 0)
	for n := 0; n < a.NComp; n++ {
		dst[n] = a.Data[ind+n*a.nStride]
	}
	return dst[:a.NComp]
}

func (a *FArray[T]) SetCell(i, j, k int, src []T) {
	ind := a.Index(i, j, k, 0)
	for n := 0; n < a.NComp; n++ {
		a.Data[ind+n*a.nStride] = src[n]
	}
}

// CopyFrom copies nComp components over the region b, which must lie
// within both arrays.
func (a *FArray[T]) CopyFrom(src *FArray[T], b Box, srcComp, dstComp, nComp int) {
	if !a.Box.ContainsBox(b) || !src.Box.ContainsBox(b) {
		panic(fmt.Errorf("copy region %v outside of arrays %v, %v", b, a.Box, src.Box))
	}
	for n := 0; n < nComp; n++ {
		b.ForEach(func(i, j, k int) {
			a.Set(i, j, k, dstComp+n, src.At(i, j, k, srcComp+n))
		})
	}
}

func (a *FArray[T]) Clone() (c *FArray[T]) {
	c = NewFArray[T](a.Box, a.NComp)
	copy(c.Data, a.Data)
	return
}

// Saxpy computes a += alpha*x over the region b for all components.
func (a *FArray[T]) Saxpy(alpha T, x *FArray[T], b Box) {
	for n := 0; n < a.NComp; n++ {
		b.ForEach(func(i, j, k int) {
			a.Add(i, j, k, n, alpha*x.At(i, j, k, n))
		})
	}
}

// Sum adds component n over the region b.
func (a *FArray[T]) Sum(n int, b Box) (s T) {
	b.ForEach(func(i, j, k int) {
		s += a.At(i, j, k, n)
	})
	return
}
