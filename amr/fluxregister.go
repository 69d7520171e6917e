package amr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/utils"
)

var (
	ErrRegisterMismatch    = errors.New("flux register does not match its levels")
	ErrMissingRegisterSide = errors.New("flux register is missing one side of its fluxes")
)

// regFace is the part of the register along one side of one fine patch in
// one direction, stored on coarse faces.
type regFace struct {
	fine     int
	dir      int
	side     grid.Side
	cbox     grid.Box // coarse faces
	fbox     grid.Box // fine faces
	data     *grid.Field
	active   *grid.IField // 1 where the face separates a fine cell from an uncovered coarse cell
	restrict utils.Restriction
}

// outside is the coarse cell on the far side of a register face.
func (rf *regFace) outside(cf grid.IntVect) grid.IntVect {
	if rf.side == grid.Lo {
		return cf.Sub(grid.Unit(rf.dir))
	}
	return cf
}

/*
FluxRegister holds the flux mismatch at the coarse-fine interface between a
level and the next finer one. Coarse fluxes enter with a negative weight and
fine fluxes, summed over sub-cycles and restricted onto coarse faces, with a
positive one. After a full coarse step the register holds the correction
Reflux applies to the coarse cells next to the interface.
*/
type FluxRegister struct {
	Crse, Fine *grid.Level
	NComp      int
	faces      []*regFace
	mu         sync.Mutex
	crseAdded  bool
	fineAdded  bool
}

func NewFluxRegister(crse, fine *grid.Level, nComp int) (fr *FluxRegister, err error) {
	var (
		dim   = crse.Geom.Dim()
		ratio = fine.Ratio
	)
	if fine.Lev != crse.Lev+1 || fine.Geom.Dim() != dim {
		err = fmt.Errorf("levels %d and %d: %w", crse.Lev, fine.Lev, ErrRegisterMismatch)
		return
	}
	if fine.Geom.Domain != crse.Geom.Domain.Refine(ratio) {
		err = fmt.Errorf("fine domain %v is not coarse domain %v refined by %v: %w",
			fine.Geom.Domain, crse.Geom.Domain, ratio, ErrRegisterMismatch)
		return
	}
	fr = &FluxRegister{Crse: crse, Fine: fine, NComp: nComp}
	for n, p := range fine.Patches {
		for d := 0; d < dim; d++ {
			if p.Box.Lo[d]%ratio[d] != 0 || (p.Box.Hi[d]+1)%ratio[d] != 0 {
				err = fmt.Errorf("fine patch %d box %v is not aligned to ratio %v: %w",
					n, p.Box, ratio, ErrRegisterMismatch)
				return nil, err
			}
			for _, side := range []grid.Side{grid.Lo, grid.Hi} {
				var f *regFace
				if f, err = fr.newRegFace(n, d, side); err != nil {
					return nil, err
				}
				fr.faces = append(fr.faces, f)
			}
		}
	}
	return
}

// linearIndex is the position of iv in the ForEach order of b.
func linearIndex(b grid.Box, iv grid.IntVect) int {
	return (iv[0] - b.Lo[0]) + b.Length(0)*((iv[1]-b.Lo[1])+b.Length(1)*(iv[2]-b.Lo[2]))
}

func (fr *FluxRegister) newRegFace(n, d int, side grid.Side) (f *regFace, err error) {
	var (
		crse  = fr.Crse
		fine  = fr.Fine
		ratio = fine.Ratio
		dim   = crse.Geom.Dim()
	)
	f = &regFace{fine: n, dir: d, side: side}
	f.fbox = fine.Patches[n].Box.FaceBox(d, side)
	f.cbox = f.fbox.Coarsen(ratio)
	f.data = grid.NewField(f.cbox, fr.NComp)
	f.active = grid.NewIField(f.cbox, 1)
	f.cbox.ForEach(func(i, j, k int) {
		oc := f.outside(grid.IntVect{i, j, k})
		if !crse.Geom.Domain.Contains(oc) {
			return
		}
		var corner grid.IntVect
		for dd := 0; dd < dim; dd++ {
			corner[dd] = oc[dd] * ratio[dd]
		}
		if !fine.Covered(corner) {
			f.active.Set(i, j, k, 0, 1)
		}
	})
	var (
		fineToCoarse = make([]int, 0, f.fbox.NumPts())
	)
	f.fbox.ForEach(func(i, j, k int) {
		cf := grid.CoarsenIV(grid.IntVect{i, j, k}, ratio, dim)
		if f.active.At(cf[0], cf[1], cf[2], 0) == 0 {
			fineToCoarse = append(fineToCoarse, -1)
			return
		}
		fineToCoarse = append(fineToCoarse, linearIndex(f.cbox, cf))
	})
	f.restrict, err = utils.NewRestriction(f.cbox.NumPts(), fineToCoarse, 1)
	return
}

// transverseArea is the product of the cell sizes across a d-face.
func transverseArea(dx [3]float64, d, dim int) (a float64) {
	a = 1
	for dd := 0; dd < dim; dd++ {
		if dd != d {
			a *= dx[dd]
		}
	}
	return
}

// CrseAdd adds the coarse patch fluxes on the register faces whose outside
// cell the patch owns.
func (fr *FluxRegister) CrseAdd(p *grid.Patch, fluxes [3]*grid.Field, dt float64) error {
	var (
		dim = fr.Crse.Geom.Dim()
		dx  = fr.Crse.Geom.CellSize()
	)
	if err := fr.checkFluxes(fluxes, dim); err != nil {
		return err
	}
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for _, f := range fr.faces {
		var (
			d    = f.dir
			mult = -dt * transverseArea(dx, d, dim)
		)
		f.cbox.ForEach(func(i, j, k int) {
			if f.active.At(i, j, k, 0) == 0 || !p.Box.Contains(f.outside(grid.IntVect{i, j, k})) {
				return
			}
			for n := 0; n < fr.NComp; n++ {
				f.data.Add(i, j, k, n, mult*fluxes[d].At(i, j, k, n))
			}
		})
	}
	fr.crseAdded = true
	return nil
}

// FineAdd restricts the fine patch fluxes along its boundary onto the
// register.
func (fr *FluxRegister) FineAdd(p *grid.Patch, fluxes [3]*grid.Field, dt float64) error {
	var (
		dim = fr.Fine.Geom.Dim()
		dx  = fr.Fine.Geom.CellSize()
	)
	if p.ID < 0 || p.ID >= len(fr.Fine.Patches) || fr.Fine.Patches[p.ID].Box != p.Box {
		return fmt.Errorf("patch %d %v is not on level %d: %w", p.ID, p.Box, fr.Fine.Lev, ErrRegisterMismatch)
	}
	if err := fr.checkFluxes(fluxes, dim); err != nil {
		return err
	}
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for _, f := range fr.faces {
		if f.fine != p.ID {
			continue
		}
		var (
			mult = dt * transverseArea(dx, f.dir, dim)
			fv   = make([]float64, f.fbox.NumPts())
		)
		for n := 0; n < fr.NComp; n++ {
			m := 0
			f.fbox.ForEach(func(i, j, k int) {
				fv[m] = fluxes[f.dir].At(i, j, k, n)
				m++
			})
			f.restrict.AddTo(f.data.Comp(n), fv, mult)
		}
	}
	fr.fineAdded = true
	return nil
}

func (fr *FluxRegister) checkFluxes(fluxes [3]*grid.Field, dim int) error {
	for d := 0; d < dim; d++ {
		if fluxes[d] == nil || fluxes[d].NComp < fr.NComp {
			return fmt.Errorf("flux field in direction %d: %w", d, ErrRegisterMismatch)
		}
	}
	return nil
}

// Complete reports whether both sides have been added since the last Reset.
func (fr *FluxRegister) Complete() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.crseAdded != fr.fineAdded {
		return fmt.Errorf("levels %d/%d coarse added %v, fine added %v: %w",
			fr.Crse.Lev, fr.Fine.Lev, fr.crseAdded, fr.fineAdded, ErrMissingRegisterSide)
	}
	return nil
}

/*
Reflux applies the register to the coarse cells outside the fine level: a
cell below a fine low face gets -reg/vol, a cell above a fine high face
+reg/vol. get returns the field to correct for a coarse patch.
*/
func (fr *FluxRegister) Reflux(get func(p *grid.Patch) *grid.Field) (err error) {
	if err = fr.Complete(); err != nil {
		return
	}
	geom := fr.Crse.Geom
	for _, f := range fr.faces {
		sign := 1.
		if f.side == grid.Lo {
			sign = -1
		}
		f.cbox.ForEach(func(i, j, k int) {
			if f.active.At(i, j, k, 0) == 0 {
				return
			}
			oc := f.outside(grid.IntVect{i, j, k})
			owner := fr.Crse.Owner(oc)
			if owner == nil {
				return
			}
			var (
				u   = get(owner)
				vol = geom.CellVolume(oc[0], oc[1], oc[2])
			)
			for n := 0; n < fr.NComp; n++ {
				u.Add(oc[0], oc[1], oc[2], n, sign*f.data.At(i, j, k, n)/vol)
			}
		})
	}
	return
}

// Net sums component n over all interface faces.
func (fr *FluxRegister) Net(n int) (sum float64) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for _, f := range fr.faces {
		f.cbox.ForEach(func(i, j, k int) {
			if f.active.At(i, j, k, 0) == 1 {
				sum += f.data.At(i, j, k, n)
			}
		})
	}
	return
}

func (fr *FluxRegister) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	for _, f := range fr.faces {
		f.data.SetVal(0)
	}
	fr.crseAdded, fr.fineAdded = false, false
}
