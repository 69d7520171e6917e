package grid

import (
	"fmt"
	"math"

	"github.com/notargets/reactingflow/types"
)

type Geometry struct {
	Domain         Box
	ProbLo, ProbHi [3]float64
	Periodic       [3]bool
	Coord          types.CoordSys
	dx             [3]float64
}

func NewGeometry(domain Box, probLo, probHi [3]float64, periodic [3]bool,
	coord types.CoordSys) (g Geometry, err error) {
	if !domain.Ok() {
		err = fmt.Errorf("empty domain box %v", domain)
		return
	}
	switch coord {
	case types.Cartesian:
	case types.RZ:
		if domain.Dim == 3 {
			err = fmt.Errorf("RZ coordinates need a 1D or 2D domain, have %dD", domain.Dim)
			return
		}
		if probLo[0] < 0 {
			err = fmt.Errorf("RZ domain must have r >= 0, have %g", probLo[0])
			return
		}
	default:
		err = fmt.Errorf("coordinate system %s is not supported", coord.Print())
		return
	}
	g = Geometry{
		Domain:   domain,
		ProbLo:   probLo,
		ProbHi:   probHi,
		Periodic: periodic,
		Coord:    coord,
	}
	for d := 0; d < 3; d++ {
		if d < domain.Dim {
			g.dx[d] = (probHi[d] - probLo[d]) / float64(domain.Length(d))
			if g.dx[d] <= 0 {
				err = fmt.Errorf("non-positive cell size %g in direction %d", g.dx[d], d)
				return
			}
		} else {
			g.dx[d] = 1
			g.Periodic[d] = false
		}
	}
	return
}

func (g Geometry) Dim() int { return g.Domain.Dim }

func (g Geometry) CellSize() [3]float64 { return g.dx }

func (g Geometry) IsAnyPeriodic() bool {
	return g.Periodic[0] || g.Periodic[1] || g.Periodic[2]
}

func (g Geometry) IsCartesian() bool { return g.Coord == types.Cartesian }

// Refine returns the geometry of the next finer level.
func (g Geometry) Refine(ratio IntVect) (f Geometry) {
	f = g
	f.Domain = g.Domain.Refine(ratio)
	for d := 0; d < g.Dim(); d++ {
		f.dx[d] = g.dx[d] / float64(ratio[d])
	}
	return
}

func (g Geometry) CellCenter(i, j, k int) (x [3]float64) {
	ind := [3]int{i, j, k}
	for d := 0; d < g.Dim(); d++ {
		x[d] = g.ProbLo[d] + (float64(ind[d])+0.5)*g.dx[d]
	}
	return
}

// FaceCenter locates the center of the low d-face of cell (i,j,k).
func (g Geometry) FaceCenter(d, i, j, k int) (x [3]float64) {
	x = g.CellCenter(i, j, k)
	x[d] -= 0.5 * g.dx[d]
	return
}

func (g Geometry) radialEdges(i int) (rlo, rhi float64) {
	rlo = g.ProbLo[0] + float64(i)*g.dx[0]
	rhi = rlo + g.dx[0]
	return
}

// CellVolume is per unit depth in the unused directions; RZ volumes are full revolutions.
func (g Geometry) CellVolume(i, j, k int) (vol float64) {
	vol = 1
	for d := 0; d < g.Dim(); d++ {
		vol *= g.dx[d]
	}
	if g.Coord == types.RZ {
		rlo, rhi := g.radialEdges(i)
		vol = math.Pi * (rhi*rhi - rlo*rlo)
		if g.Dim() == 2 {
			vol *= g.dx[1]
		}
	}
	return
}

// FaceArea is the area of the low d-face of cell (i,j,k).
func (g Geometry) FaceArea(d, i, j, k int) (area float64) {
	area = 1
	for dd := 0; dd < g.Dim(); dd++ {
		if dd != d {
			area *= g.dx[dd]
		}
	}
	if g.Coord == types.RZ {
		rlo, rhi := g.radialEdges(i)
		switch d {
		case 0:
			area = 2 * math.Pi * rlo
			if g.Dim() == 2 {
				area *= g.dx[1]
			}
		case 1:
			area = math.Pi * (rhi*rhi - rlo*rlo)
		}
	}
	return
}

func (g Geometry) Volume(b Box) (vol *Field) {
	vol = NewField(b, 1)
	b.ForEach(func(i, j, k int) {
		vol.Set(i, j, k, 0, g.CellVolume(i, j, k))
	})
	return
}

// Area fills the d-face areas over the faces surrounding the cell box b.
func (g Geometry) Area(b Box, d int) (area *Field) {
	fb := b.SurroundingNodes(d)
	area = NewField(fb, 1)
	fb.ForEach(func(i, j, k int) {
		area.Set(i, j, k, 0, g.FaceArea(d, i, j, k))
	})
	return
}

// DLogArea is d(ln A)/dr at cell centers, zero for Cartesian geometry.
func (g Geometry) DLogArea(b Box) (dla *Field) {
	dla = NewField(b, 1)
	if g.Coord != types.RZ {
		return
	}
	b.ForEach(func(i, j, k int) {
		r := g.CellCenter(i, j, k)[0]
		if r > 0 {
			dla.Set(i, j, k, 0, 1./r)
		}
	})
	return
}
