package ReactingFlow

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

var ErrNSCBC3D = errors.New("characteristic boundary conditions are not implemented in 3D")

type NSCBCVariant uint8

const (
	NSCBC1D NSCBCVariant = iota
	NSCBC2DPeriodic
	NSCBC2DMixed
	NSCBC3DUnimplemented
)

var NSCBCPrintNames = []string{"1D", "2D Periodic", "2D Mixed", "3D (unimplemented)"}

func (v NSCBCVariant) Print() (txt string) {
	txt = NSCBCPrintNames[v]
	return
}

// SelectNSCBC picks the characteristic boundary routine for a geometry.
func SelectNSCBC(dim int, anyPeriodic bool) NSCBCVariant {
	switch {
	case dim == 1:
		return NSCBC1D
	case dim == 2 && anyPeriodic:
		return NSCBC2DPeriodic
	case dim == 2:
		return NSCBC2DMixed
	default:
		return NSCBC3DUnimplemented
	}
}

// TargetFunc fills the primitive target state q at position x and time t.
type TargetFunc func(x [3]float64, t float64, q []float64)

// ConstantTarget holds a fixed primitive state.
func ConstantTarget(qt []float64) TargetFunc {
	return func(x [3]float64, t float64, q []float64) {
		copy(q, qt)
	}
}

/*
CharBCParams configures the characteristic boundaries. Sigma relaxes the
outflow pressure toward the target, Eta relaxes inflow velocity,
temperature and composition. Beta weights the transverse terms, negative
means the local Mach number. LRef is the relaxation length, zero means the
domain extent normal to the face. A face without a target relaxes toward
its own boundary cell, which makes it purely non-reflecting.
*/
type CharBCParams struct {
	Sigma, Eta, Beta, LRef float64
	Targets                [3][2]TargetFunc
}

func DefaultCharBCParams() CharBCParams {
	return CharBCParams{Sigma: 0.25, Eta: 2, Beta: -1}
}

type nscbcArgs struct {
	eos        thermo.EOS
	geom       grid.Geometry
	valid, qbx grid.Box
	q, qaux    *grid.Field
	mask       BCMask
	bc         grid.BCRec
	params     CharBCParams
	time, dt   float64
}

type nscbcRoutine func(a *nscbcArgs) error

var nscbcRoutines = [...]nscbcRoutine{
	NSCBC1D:              nscbc1D,
	NSCBC2DPeriodic:      nscbc2DPeriodic,
	NSCBC2DMixed:         nscbc2DMixed,
	NSCBC3DUnimplemented: nscbc3D,
}

func (v NSCBCVariant) apply(a *nscbcArgs) error { return nscbcRoutines[v](a) }

func nscbc1D(a *nscbcArgs) (err error) {
	for _, side := range []grid.Side{grid.Lo, grid.Hi} {
		if err = a.characteristicFill(0, side, a.qbx, false); err != nil {
			return
		}
	}
	return
}

func nscbc2DPeriodic(a *nscbcArgs) (err error) {
	for d := 0; d < 2; d++ {
		if a.geom.Periodic[d] {
			continue
		}
		trans := a.qbx.GrowDir(1-d, -1)
		for _, side := range []grid.Side{grid.Lo, grid.Hi} {
			if err = a.characteristicFill(d, side, trans, true); err != nil {
				return
			}
		}
	}
	return
}

func nscbc2DMixed(a *nscbcArgs) (err error) {
	dom := a.geom.Domain
	for d := 0; d < 2; d++ {
		t := 1 - d
		trans := a.qbx.GrowDir(t, -1)
		trans.Lo[t] = max(trans.Lo[t], dom.Lo[t])
		trans.Hi[t] = min(trans.Hi[t], dom.Hi[t])
		for _, side := range []grid.Side{grid.Lo, grid.Hi} {
			if err = a.characteristicFill(d, side, trans, true); err != nil {
				return
			}
		}
	}
	return a.fillCorners()
}

func nscbc3D(a *nscbcArgs) error {
	return ErrNSCBC3D
}

func (a *nscbcArgs) touches(d int, side grid.Side) bool {
	if side == grid.Lo {
		return a.valid.Lo[d] == a.geom.Domain.Lo[d]
	}
	return a.valid.Hi[d] == a.geom.Domain.Hi[d]
}

// finishGhost makes a ghost primitive vector consistent with the closure
// from its density, pressure and composition.
func (a *nscbcArgs) finishGhost(q, qa []float64) (err error) {
	ns := a.eos.NumSpecies()
	Y := q[QFS : QFS+ns]
	renormalize(Y)
	var T float64
	if T, err = a.eos.RPY2T(q[QRHO], q[QPRES], Y); err != nil {
		return
	}
	q[QTEMP] = T
	e := a.eos.TY2E(T, Y)
	q[QREINT] = q[QRHO] * e
	qa[QGAMC], qa[QC], qa[QDPDR], qa[QDPDE] = a.eos.Derivatives(q[QRHO], e, T, Y)
	return
}

/*
characteristicFill rebuilds the ghost cells beyond one domain face from the
characteristic wave amplitudes at the boundary cells. Outgoing amplitudes
come from one sided interior differences, incoming ones from relaxation
toward the face target. The ghost cells are then extrapolated with the
reconstructed normal gradient.
*/
func (a *nscbcArgs) characteristicFill(d int, side grid.Side, trans grid.Box, transverse bool) (err error) {
	phys := a.bc[d][side]
	if !phys.IsCharacteristic() || a.geom.Periodic[d] || !a.touches(d, side) {
		return
	}
	var (
		ns    = a.eos.NumSpecies()
		nq    = a.q.NComp
		dx    = a.geom.CellSize()
		dom   = a.geom.Domain
		s     = 1
		b     = dom.Hi[d]
		e     = grid.Unit(d)
		tds   = tangentialDirs(d)
		lRef  = a.params.LRef
		qb    = make([]float64, nq)
		q1    = make([]float64, nq)
		q2    = make([]float64, nq)
		qt    = make([]float64, nq)
		qg    = make([]float64, nq)
		qa    = make([]float64, NQAUX)
		dq    = make([]float64, nq)
		W     = make([]float64, nq)
		td    *grid.Field
		face  = trans
		inFlw = phys == types.BC_Inflow
	)
	if side == grid.Lo {
		s, b = -1, dom.Lo[d]
	}
	if lRef <= 0 {
		lRef = a.geom.ProbHi[d] - a.geom.ProbLo[d]
	}
	face.Lo[d], face.Hi[d] = b, b
	if transverse {
		fb := face
		if side == grid.Hi {
			fb.Lo[d], fb.Hi[d] = b+1, b+1
		}
		fb.Nodal[d] = true
		td = TangentialVelocityDerivs(a.q, fb, d, dx)
	}
	at := func(iv grid.IntVect, m int, dst []float64) []float64 {
		return a.q.Cell(iv[0]-m*s*e[0], iv[1]-m*s*e[1], iv[2]-m*s*e[2], dst)
	}
	face.ForEach(func(i, j, k int) {
		if err != nil {
			return
		}
		iv := grid.IntVect{i, j, k}
		at(iv, 0, qb)
		at(iv, 1, q1)
		at(iv, 2, q2)
		for n := 0; n < nq; n++ {
			dq[n] = float64(s) * (3*qb[n] - 4*q1[n] + q2[n]) / (2 * dx[d])
		}
		var (
			rho  = qb[QRHO]
			p    = qb[QPRES]
			c    = a.qaux.At(i, j, k, QC)
			un   = qb[QU+d]
			rc   = rho * c
			mach = math.Min(math.Abs(un)/c, 0.99)
			lam  = [3]float64{un - c, un, un + c}
			// outgoing unless the wave travels inward
			incoming = func(l float64) bool { return float64(s)*l <= 0 }
			invLam   = func(l float64) float64 {
				if math.Abs(l) < 1.e-3*c {
					l = -float64(s) * 1.e-3 * c
				}
				return 1. / l
			}
		)
		// Characteristic amplitudes as normal derivatives of the wave
		// variables; W = L/lambda.
		W1 := dq[QPRES] - rc*dq[QU+d]
		W2 := c*c*dq[QRHO] - dq[QPRES]
		W5 := dq[QPRES] + rc*dq[QU+d]
		for _, t := range tds {
			W[QU+t] = dq[QU+t]
		}
		for n := 0; n < ns; n++ {
			W[QFS+n] = dq[QFS+n]
		}

		x := a.geom.FaceCenter(d, i+max(s, 0)*e[0], j+max(s, 0)*e[1], k+max(s, 0)*e[2])
		if tf := a.params.Targets[d][side]; tf != nil {
			tf(x, a.time, qt)
		} else {
			copy(qt, qb)
		}

		var T1, T5 float64
		if transverse {
			for m, t := range tds {
				if t >= dom.Dim {
					continue
				}
				var (
					vt   = qb[QU+t]
					ut   = grid.Unit(t)
					dpdt = (a.q.AtIV(iv.Add(ut), QPRES) - a.q.AtIV(iv.Sub(ut), QPRES)) / (2 * dx[t])
					fi   = iv
				)
				if side == grid.Hi {
					fi = fi.Add(e)
				}
				dundt := td.AtIV(fi, 3*m+d)
				dvtdt := td.AtIV(fi, 3*m+t)
				T1 += vt*(dpdt-rc*dundt) + rc*c*dvtdt
				T5 += vt*(dpdt+rc*dundt) + rc*c*dvtdt
			}
		}
		beta := a.params.Beta
		if beta < 0 {
			beta = mach
		}
		if inFlw {
			var (
				kU = a.params.Eta * rho * c * c * (1 - mach*mach) / lRef
				kT = a.params.Eta * c / lRef
			)
			if side == grid.Lo {
				W5 = kU * (un - qt[QU+d]) * invLam(lam[2])
			} else {
				W1 = -kU * (un - qt[QU+d]) * invLam(lam[0])
			}
			W2 = -kT * rho * c * c / qb[QTEMP] * (qb[QTEMP] - qt[QTEMP]) * invLam(lam[1])
			for _, t := range tds {
				W[QU+t] = kT * (qb[QU+t] - qt[QU+t]) * invLam(lam[1])
			}
			for n := 0; n < ns; n++ {
				W[QFS+n] = kT * (qb[QFS+n] - qt[QFS+n]) * invLam(lam[1])
			}
		} else {
			K := a.params.Sigma * (1 - mach*mach) * c / lRef
			if side == grid.Hi && incoming(lam[0]) {
				W1 = (K*(p-qt[QPRES]) - (1-beta)*T1) * invLam(lam[0])
			}
			if side == grid.Lo && incoming(lam[2]) {
				W5 = (K*(p-qt[QPRES]) - (1-beta)*T5) * invLam(lam[2])
			}
			if incoming(lam[1]) {
				W2 = 0
				for _, t := range tds {
					W[QU+t] = 0
				}
				for n := 0; n < ns; n++ {
					W[QFS+n] = 0
				}
			}
		}

		dpn := 0.5 * (W1 + W5)
		for n := range dq {
			dq[n] = 0
		}
		dq[QPRES] = dpn
		dq[QU+d] = (W5 - W1) / (2 * rc)
		dq[QRHO] = (W2 + dpn) / (c * c)
		for _, t := range tds {
			dq[QU+t] = W[QU+t]
		}
		for n := 0; n < ns; n++ {
			dq[QFS+n] = W[QFS+n]
		}

		for m := 1; m <= NGROW; m++ {
			g := grid.IntVect{i + m*s*e[0], j + m*s*e[1], k + m*s*e[2]}
			if !a.qbx.Contains(g) {
				break
			}
			at(iv, m, qg)
			dist := float64(2*m*s) * dx[d]
			for _, n := range []int{QRHO, QU, QV, QW, QPRES} {
				qg[n] += dist * dq[n]
			}
			for n := 0; n < ns; n++ {
				qg[QFS+n] += dist * dq[QFS+n]
			}
			qg[QRHO] = math.Max(qg[QRHO], 1.e-2*rho)
			qg[QPRES] = math.Max(qg[QPRES], 1.e-2*p)
			if err = a.finishGhost(qg, qa); err != nil {
				err = fmt.Errorf("ghost cell %v: %w", g, err)
				return
			}
			a.q.SetCell(g[0], g[1], g[2], qg)
			a.qaux.SetCell(g[0], g[1], g[2], qa)
		}
		a.mask[d].Set(i+max(s, 0)*e[0], j+max(s, 0)*e[1], k+max(s, 0)*e[2], MaskTag, int32(phys.MaskTag()))
	})
	return
}

// fillCorners averages the two directional extrapolations into ghost cells
// lying outside the domain in both directions next to a characteristic face.
func (a *nscbcArgs) fillCorners() (err error) {
	var (
		dom = a.geom.Domain
		nq  = a.q.NComp
		qA  = make([]float64, nq)
		qB  = make([]float64, nq)
		qa  = make([]float64, NQAUX)
	)
	for sx := grid.Lo; sx <= grid.Hi; sx++ {
		for sy := grid.Lo; sy <= grid.Hi; sy++ {
			if !a.bc[0][sx].IsCharacteristic() && !a.bc[1][sy].IsCharacteristic() {
				continue
			}
			if !a.touches(0, sx) || !a.touches(1, sy) {
				continue
			}
			var (
				corner = a.qbx
				ib, jb = dom.Lo[0], dom.Lo[1]
			)
			if sx == grid.Lo {
				corner.Hi[0] = dom.Lo[0] - 1
			} else {
				corner.Lo[0], ib = dom.Hi[0]+1, dom.Hi[0]
			}
			if sy == grid.Lo {
				corner.Hi[1] = dom.Lo[1] - 1
			} else {
				corner.Lo[1], jb = dom.Hi[1]+1, dom.Hi[1]
			}
			corner.ForEach(func(i, j, k int) {
				if err != nil {
					return
				}
				a.q.Cell(i, jb, k, qA)
				a.q.Cell(ib, j, k, qB)
				for n := 0; n < nq; n++ {
					qA[n] = 0.5 * (qA[n] + qB[n])
				}
				if err = a.finishGhost(qA, qa); err != nil {
					return
				}
				a.q.SetCell(i, j, k, qA)
				a.qaux.SetCell(i, j, k, qa)
			})
			if err != nil {
				return
			}
		}
	}
	return
}
