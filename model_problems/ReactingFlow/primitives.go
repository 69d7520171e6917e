package ReactingFlow

import (
	"fmt"
	"math"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/thermo"
)

/*
BlendSources fills dst over b with the time centred source: the mean of
each old and new source snapshot. When react is non-nil its species rates
are added to the species and its last component to the total energy.
*/
func BlendSources(b grid.Box, dst *grid.Field, old, new []*grid.Field, react *grid.Field, nSpec int) {
	if len(old) != len(new) {
		panic(fmt.Errorf("have %d old and %d new source terms", len(old), len(new)))
	}
	dst.SetVal(0)
	for s := range old {
		for n := 0; n < dst.NComp; n++ {
			b.ForEach(func(i, j, k int) {
				dst.Add(i, j, k, n, 0.5*old[s].At(i, j, k, n)+0.5*new[s].At(i, j, k, n))
			})
		}
	}
	if react == nil {
		return
	}
	b.ForEach(func(i, j, k int) {
		for n := 0; n < nSpec; n++ {
			dst.Add(i, j, k, UFS+n, react.At(i, j, k, n))
		}
		dst.Add(i, j, k, UEDEN, react.At(i, j, k, nSpec))
	})
}

// ConsToPrim converts one conserved cell vector to primitive and auxiliary
// vectors. Y is scratch of length nSpec.
func ConsToPrim(eos thermo.EOS, u, q, qa, Y []float64) (err error) {
	var (
		ns  = eos.NumSpecies()
		rho = u[URHO]
	)
	if !(rho > 0) {
		return fmt.Errorf("rho = %g: %w", rho, thermo.ErrNonPositiveDensity)
	}
	rhoInv := 1. / rho
	q[QRHO] = rho
	q[QU] = u[UMX] * rhoInv
	q[QV] = u[UMY] * rhoInv
	q[QW] = u[UMZ] * rhoInv
	for n := 0; n < ns; n++ {
		Y[n] = u[UFS+n] * rhoInv
		q[QFS+n] = Y[n]
	}
	rhoe := u[UEDEN] - KineticEnergy(u)
	var T float64
	if T, err = eos.EY2T(rhoe*rhoInv, Y, u[UTEMP]); err != nil {
		return
	}
	q[QREINT] = rhoe
	q[QTEMP] = T
	q[QPRES] = eos.RTY2P(rho, T, Y)
	qa[QGAMC], qa[QC], qa[QDPDR], qa[QDPDE] = eos.Derivatives(rho, rhoe*rhoInv, T, Y)
	return
}

// Ctoprim fills the primitive and auxiliary fields over b from the
// conserved state. Any cell failing the closure fails the call.
func Ctoprim(eos thermo.EOS, b grid.Box, u, q, qaux *grid.Field) error {
	var (
		ns   = eos.NumSpecies()
		pool = newBufPool(u.NComp, q.NComp, NQAUX, ns)
	)
	return grid.ParallelForErr(b, func(i, j, k int) (err error) {
		buf := pool.Get().(*cellBuf)
		defer pool.Put(buf)
		u.Cell(i, j, k, buf.u)
		if err = ConsToPrim(eos, buf.u, buf.q, buf.qa, buf.Y); err != nil {
			return fmt.Errorf("cell (%d,%d,%d): %w", i, j, k, err)
		}
		q.SetCell(i, j, k, buf.q)
		qaux.SetCell(i, j, k, buf.qa)
		return
	})
}

// PrimToCons is the inverse of ConsToPrim given a consistent primitive
// vector.
func PrimToCons(q, u []float64, nSpec int) {
	rho := q[QRHO]
	u[URHO] = rho
	u[UMX], u[UMY], u[UMZ] = rho*q[QU], rho*q[QV], rho*q[QW]
	u[UEDEN] = q[QREINT] + 0.5*rho*(q[QU]*q[QU]+q[QV]*q[QV]+q[QW]*q[QW])
	u[UTEMP] = q[QTEMP]
	for n := 0; n < nSpec; n++ {
		u[UFS+n] = rho * q[QFS+n]
	}
}

/*
SrcToPrim projects a conserved source into primitive variables using the
chain rule through the closure derivatives:

	d(rho e) = dE - u.d(rho u) + |u|^2/2 drho
	dp       = dpde*(d(rho e) - e drho)/rho + dpdr drho
*/
func SrcToPrim(b grid.Box, q, qaux, src, srcq *grid.Field, nSpec int) {
	grid.ParallelFor(b, func(i, j, k int) {
		var (
			rho    = q.At(i, j, k, QRHO)
			rhoInv = 1. / rho
			u      = q.At(i, j, k, QU)
			v      = q.At(i, j, k, QV)
			w      = q.At(i, j, k, QW)
			srho   = src.At(i, j, k, URHO)
			smx    = src.At(i, j, k, UMX)
			smy    = src.At(i, j, k, UMY)
			smz    = src.At(i, j, k, UMZ)
			rhoe   = q.At(i, j, k, QREINT)
			dpde   = qaux.At(i, j, k, QDPDE)
			dpdr   = qaux.At(i, j, k, QDPDR)
		)
		srcq.Set(i, j, k, QRHO, srho)
		srcq.Set(i, j, k, QU, (smx-u*srho)*rhoInv)
		srcq.Set(i, j, k, QV, (smy-v*srho)*rhoInv)
		srcq.Set(i, j, k, QW, (smz-w*srho)*rhoInv)
		sre := src.At(i, j, k, UEDEN) - u*smx - v*smy - w*smz + 0.5*(u*u+v*v+w*w)*srho
		srcq.Set(i, j, k, QREINT, sre)
		srcq.Set(i, j, k, QPRES, dpde*(sre-rhoe*srho*rhoInv)*rhoInv+dpdr*srho)
		srcq.Set(i, j, k, QTEMP, 0)
		for n := 0; n < nSpec; n++ {
			srcq.Set(i, j, k, QFS+n, (src.At(i, j, k, UFS+n)-q.At(i, j, k, QFS+n)*srho)*rhoInv)
		}
	})
}

// renormalize clips negative mass fractions and scales them to sum to one.
func renormalize(Y []float64) {
	var sum float64
	for n := range Y {
		Y[n] = math.Max(Y[n], 0)
		sum += Y[n]
	}
	if sum <= 0 {
		return
	}
	for n := range Y {
		Y[n] /= sum
	}
}
