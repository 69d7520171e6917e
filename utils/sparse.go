package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Restriction is a sparse many-to-one operator summing fine entries onto
// coarse entries. It is assembled in DOK form and applied in CSR form.
type Restriction struct {
	M              *sparse.CSR
	NCoarse, NFine int
}

// NewRestriction builds the operator from a fine-to-coarse index map.
// Fine entries mapped to a negative index are dropped.
func NewRestriction(nCoarse int, fineToCoarse []int, weight float64) (R Restriction, err error) {
	var (
		nFine = len(fineToCoarse)
	)
	if nCoarse == 0 || nFine == 0 {
		err = fmt.Errorf("empty restriction: nCoarse = %d, nFine = %d", nCoarse, nFine)
		return
	}
	dok := sparse.NewDOK(nCoarse, nFine)
	for f, c := range fineToCoarse {
		if c < 0 {
			continue
		}
		if c >= nCoarse {
			err = fmt.Errorf("fine entry %d maps outside of coarse range: %d >= %d", f, c, nCoarse)
			return
		}
		dok.Set(c, f, weight)
	}
	R = Restriction{
		M:       dok.ToCSR(),
		NCoarse: nCoarse,
		NFine:   nFine,
	}
	return
}

// AddTo accumulates coarse += scale * R * fine.
func (R Restriction) AddTo(coarse, fine []float64, scale float64) {
	if len(fine) != R.NFine || len(coarse) != R.NCoarse {
		panic(fmt.Errorf("restriction dimension mismatch: have [%d]x[%d], coarse %d, fine %d",
			R.NCoarse, R.NFine, len(coarse), len(fine)))
	}
	var (
		y mat.VecDense
	)
	y.MulVec(R.M, mat.NewVecDense(R.NFine, fine))
	for i := range coarse {
		coarse[i] += scale * y.AtVec(i)
	}
}
