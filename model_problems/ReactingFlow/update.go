package ReactingFlow

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

// Face states carry the sound speed in place of the temperature.
const qFaceC = QTEMP

/*
UpdateKernel is the conservative finite volume update of one patch: a
MUSCL-Hancock predictor in primitive variables, a Riemann solver on each
face and the flux divergence.
*/
type UpdateKernel struct {
	EOS     thermo.EOS
	Geom    grid.Geometry
	Flux    FluxType
	Limiter LimiterType
}

// PatchUpdate carries the fields of one patch through the kernel. The
// primitive, auxiliary, source and mask arrays cover the valid box grown by
// NGROW. Hydro covers the valid box, Fluxes[d] its d-faces.
type PatchUpdate struct {
	Valid         grid.Box
	Q, QAux, SrcQ *grid.Field
	Mask          BCMask
	Hydro         *grid.Field
	Fluxes        [3]*grid.Field
}

func (pu *PatchUpdate) check(dim, nVar int) (err error) {
	if !pu.Q.Box.ContainsBox(pu.Valid.Grow(2)) {
		return fmt.Errorf("primitive field %v does not cover the stencil of %v", pu.Q.Box, pu.Valid)
	}
	if pu.Hydro.NComp != nVar || !pu.Hydro.Box.ContainsBox(pu.Valid) {
		return fmt.Errorf("hydro field %v with %d components, need %v with %d",
			pu.Hydro.Box, pu.Hydro.NComp, pu.Valid, nVar)
	}
	for d := 0; d < dim; d++ {
		fb := pu.Valid.SurroundingNodes(d)
		if f := pu.Fluxes[d]; f == nil || f.NComp != nVar || !f.Box.ContainsBox(fb) {
			return fmt.Errorf("flux field in direction %d does not cover %v", d, fb)
		}
	}
	return
}

/*
Umdrv computes face fluxes and the flux divergence rate on the valid box and
returns the patch diagnostics. In RZ geometry the face pressure is taken out
of the radial momentum flux and applied as a cell centred gradient.
*/
func (uk *UpdateKernel) Umdrv(pu *PatchUpdate, dt float64) (diag Diagnostics, err error) {
	var (
		ns  = uk.EOS.NumSpecies()
		dim = uk.Geom.Dim()
		pf  [3]*grid.Field
	)
	if err = pu.check(dim, NVar(ns)); err != nil {
		return
	}
	for d := 0; d < dim; d++ {
		qLo, qHi := uk.trace(d, pu, dt)
		pf[d] = uk.faceFluxes(d, pu, qLo, qHi)
	}
	uk.divergence(pu, pf, dt, &diag)
	uk.boundaryLosses(pu, dt, &diag)
	return
}

func physical(q []float64) bool {
	return q[QRHO] > 0 && q[QPRES] > 0
}

/*
trace predicts the half step states at the low and high d-faces of each
cell one beyond the valid box in d. Cells whose predicted states are not
physical drop to first order.
*/
func (uk *UpdateKernel) trace(d int, pu *PatchUpdate, dt float64) (qLo, qHi *grid.Field) {
	var (
		q    = pu.Q
		nq   = q.NComp
		cb   = pu.Valid.GrowDir(d, 1)
		dx   = uk.Geom.CellSize()
		h    = 0.5 * dt / dx[d]
		e    = grid.Unit(d)
		un   = QU + d
		tds  = tangentialDirs(d)
		rz   = d == 0 && uk.Geom.Coord == types.RZ
		dla  = uk.Geom.DLogArea(cb)
		pool = newTracePool(nq)
	)
	qLo, qHi = grid.NewField(cb, nq), grid.NewField(cb, nq)
	grid.ParallelFor(cb, func(i, j, k int) {
		b := pool.Get().(*traceBuf)
		defer pool.Put(b)
		var (
			qc = q.Cell(i, j, k, b.qc)
			ql = q.Cell(i-e[0], j-e[1], k-e[2], b.ql)
			qr = q.Cell(i+e[0], j+e[1], k+e[2], b.qr)
			dq = b.dq
			qh = b.qh
		)
		for n := 0; n < nq; n++ {
			dq[n] = 0
			if n != QTEMP {
				dq[n] = uk.Limiter.Slope(qc[n]-ql[n], qr[n]-qc[n])
			}
		}
		var (
			rho  = qc[QRHO]
			u    = qc[un]
			p    = qc[QPRES]
			rhoe = qc[QREINT]
			c    = pu.QAux.At(i, j, k, QC)
			rc2  = rho * c * c
		)
		copy(qh, qc)
		qh[QRHO] -= h * (u*dq[QRHO] + rho*dq[un])
		qh[un] -= h * (u*dq[un] + dq[QPRES]/rho)
		for _, t := range tds {
			qh[QU+t] -= h * u * dq[QU+t]
		}
		qh[QPRES] -= h * (u*dq[QPRES] + rc2*dq[un])
		qh[QREINT] -= h * (u*dq[QREINT] + (rhoe+p)*dq[un])
		for n := QFS; n < nq; n++ {
			qh[n] -= h * u * dq[n]
		}
		for n := 0; n < nq; n++ {
			if n != QTEMP {
				qh[n] += 0.5 * dt * pu.SrcQ.At(i, j, k, n)
			}
		}
		if rz {
			g := 0.5 * dt * dla.At(i, j, k, 0) * u
			qh[QRHO] -= g * rho
			qh[QPRES] -= g * rc2
			qh[QREINT] -= g * (rhoe + p)
		}
		lo, hi := b.lo, b.hi
		for n := 0; n < nq; n++ {
			lo[n] = qh[n] - 0.5*dq[n]
			hi[n] = qh[n] + 0.5*dq[n]
		}
		if !physical(lo) || !physical(hi) {
			copy(lo, qc)
			copy(hi, qc)
		}
		for _, s := range [][]float64{lo, hi} {
			renormalize(s[QFS:])
			s[qFaceC] = math.Sqrt(rc2 / s[QRHO])
		}
		qLo.SetCell(i, j, k, lo)
		qHi.SetCell(i, j, k, hi)
	})
	return
}

func (s *faceState) load(q []float64, d int, tds [2]int) {
	s.rho, s.un = q[QRHO], q[QU+d]
	s.ut1, s.ut2 = q[QU+tds[0]], q[QU+tds[1]]
	s.p, s.rhoe, s.c = q[QPRES], q[QREINT], q[qFaceC]
	s.Y = q[QFS:]
}

// mirror reflects s through a wall. A no-slip wall reverses the tangential
// velocity as well.
func (s faceState) mirror(noSlip bool) faceState {
	s.un = -s.un
	if noSlip {
		s.ut1, s.ut2 = -s.ut1, -s.ut2
	}
	return s
}

/*
faceFluxes solves the Riemann problem on every d-face of the valid box and
writes the conserved flux. Wall faces see the mirror image of the interior
state and pass only the face pressure. The returned field holds the face
pressure.
*/
func (uk *UpdateKernel) faceFluxes(d int, pu *PatchUpdate, qLo, qHi *grid.Field) (pFace *grid.Field) {
	var (
		nq   = qLo.NComp
		ns   = nq - QFS
		fb   = pu.Valid.SurroundingNodes(d)
		e    = grid.Unit(d)
		tds  = tangentialDirs(d)
		dom  = uk.Geom.Domain
		rz   = d == 0 && uk.Geom.Coord == types.RZ
		flux = pu.Fluxes[d]
		pool = newTracePool(nq)
	)
	pFace = grid.NewField(fb, 1)
	grid.ParallelFor(fb, func(i, j, k int) {
		b := pool.Get().(*traceBuf)
		defer pool.Put(b)
		var (
			L, R faceState
			wall = pu.Mask.Tag(d, i, j, k).IsWall()
		)
		L.load(qHi.Cell(i-e[0], j-e[1], k-e[2], b.ql), d, tds)
		R.load(qLo.Cell(i, j, k, b.qr), d, tds)
		if wall {
			noSlip := pu.Mask[d].At(i, j, k, MaskNoSlip) == 1
			if iv := (grid.IntVect{i, j, k}); iv[d] == dom.Lo[d] {
				L = R.mirror(noSlip)
			} else {
				R = L.mirror(noSlip)
			}
		}
		F, pf := riemann(uk.Flux, &L, &R)
		if wall {
			F = [nFlux]float64{fMN: pf}
		}
		Yup := L.Y
		if F[fRHO] < 0 {
			Yup = R.Y
		}
		flux.Set(i, j, k, URHO, F[fRHO])
		flux.Set(i, j, k, MomComps[d], F[fMN])
		flux.Set(i, j, k, MomComps[tds[0]], F[fMT1])
		flux.Set(i, j, k, MomComps[tds[1]], F[fMT2])
		flux.Set(i, j, k, UEDEN, F[fE])
		flux.Set(i, j, k, UTEMP, 0)
		for n := 0; n < ns; n++ {
			flux.Set(i, j, k, UFS+n, F[fRHO]*Yup[n])
		}
		if rz {
			flux.Add(i, j, k, UMX, -pf)
		}
		pFace.Set(i, j, k, 0, pf)
	})
	return
}

// divergence forms the update rate on the valid box along with the CFL
// number and the integrated update.
func (uk *UpdateKernel) divergence(pu *PatchUpdate, pf [3]*grid.Field, dt float64, diag *Diagnostics) {
	var (
		g     = uk.Geom
		dim   = g.Dim()
		dx    = g.CellSize()
		valid = pu.Valid
		nv    = pu.Hydro.NComp
		rz    = g.Coord == types.RZ
		cfl   = grid.NewField(valid, 1)
		added = grid.NewField(valid, NDiagAdded)
	)
	grid.ParallelFor(valid, func(i, j, k int) {
		var (
			vol    = g.CellVolume(i, j, k)
			cflMax float64
			c      = pu.QAux.At(i, j, k, QC)
		)
		for n := 0; n < nv; n++ {
			var acc float64
			if n != UTEMP {
				for d := 0; d < dim; d++ {
					e := grid.Unit(d)
					ih, jh, kh := i+e[0], j+e[1], k+e[2]
					acc += pu.Fluxes[d].At(i, j, k, n)*g.FaceArea(d, i, j, k) -
						pu.Fluxes[d].At(ih, jh, kh, n)*g.FaceArea(d, ih, jh, kh)
				}
				acc /= vol
			}
			pu.Hydro.Set(i, j, k, n, acc)
		}
		if rz {
			pu.Hydro.Add(i, j, k, UMX, -(pf[0].At(i+1, j, k, 0)-pf[0].At(i, j, k, 0))/dx[0])
		}
		for d := 0; d < dim; d++ {
			cflMax = math.Max(cflMax, (math.Abs(pu.Q.At(i, j, k, QU+d))+c)*dt/dx[d])
		}
		cfl.Set(i, j, k, 0, cflMax)
		for m, n := range [NDiagAdded]int{URHO, UMX, UMY, UMZ, UEDEN} {
			added.Set(i, j, k, m, pu.Hydro.At(i, j, k, n)*vol*dt)
		}
	})
	diag.CFL = floats.Max(cfl.Comp(0))
	for m := 0; m < NDiagAdded; m++ {
		diag.Added[m] = floats.Sum(added.Comp(m))
	}
}

// boundaryLosses integrates the outward flux through the non-periodic
// domain faces bounding the valid box.
func (uk *UpdateKernel) boundaryLosses(pu *PatchUpdate, dt float64, diag *Diagnostics) {
	var (
		g   = uk.Geom
		dom = g.Domain
	)
	for d := 0; d < g.Dim(); d++ {
		if g.Periodic[d] {
			continue
		}
		for _, side := range []grid.Side{grid.Lo, grid.Hi} {
			sign := 1.
			if side == grid.Lo {
				if pu.Valid.Lo[d] != dom.Lo[d] {
					continue
				}
				sign = -1
			} else if pu.Valid.Hi[d] != dom.Hi[d] {
				continue
			}
			f := pu.Fluxes[d]
			pu.Valid.FaceBox(d, side).ForEach(func(i, j, k int) {
				var (
					w  = sign * g.FaceArea(d, i, j, k) * dt
					x  = g.FaceCenter(d, i, j, k)
					fm [3]float64
				)
				diag.Lost[DiagMass] += w * f.At(i, j, k, URHO)
				diag.Lost[DiagEnergy] += w * f.At(i, j, k, UEDEN)
				for c := 0; c < 3; c++ {
					fm[c] = w * f.At(i, j, k, MomComps[c])
					diag.Lost[DiagXMom+c] += fm[c]
				}
				diag.Lost[DiagXAngMom] += x[1]*fm[2] - x[2]*fm[1]
				diag.Lost[DiagYAngMom] += x[2]*fm[0] - x[0]*fm[2]
				diag.Lost[DiagZAngMom] += x[0]*fm[1] - x[1]*fm[0]
			})
		}
	}
}
