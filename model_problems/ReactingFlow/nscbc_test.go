package ReactingFlow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

// characteristicGhosts runs the characteristic fill on the single patch of
// lev and returns the primitive field with its ghost cells.
func characteristicGhosts(t *testing.T, eos thermo.EOS, lev *grid.Level, bc grid.BCRec,
	cp CharBCParams) *grid.Field {
	var (
		geom = lev.Geom
		p    = lev.Patches[0]
		qbx  = p.Box.Grow(NGROW)
		q    = grid.NewField(qbx, QVar(1))
		qaux = grid.NewField(qbx, NQAUX)
	)
	require.NoError(t, Ctoprim(eos, qbx, p.State, q, qaux))
	err := SelectNSCBC(geom.Dim(), geom.IsAnyPeriodic()).apply(&nscbcArgs{
		eos:    eos,
		geom:   geom,
		valid:  p.Box,
		qbx:    qbx,
		q:      q,
		qaux:   qaux,
		mask:   SetBCMask(qbx, geom, bc),
		bc:     bc,
		params: cp,
		dt:     1.e-6,
	})
	require.NoError(t, err)
	return q
}

func targetState(eos thermo.EOS, rho float64, vel [3]float64, p float64) []float64 {
	qt := make([]float64, QVar(1))
	qt[QRHO], qt[QPRES], qt[QFS] = rho, p, 1
	qt[QU], qt[QV], qt[QW] = vel[0], vel[1], vel[2]
	qt[QTEMP], _ = eos.RPY2T(rho, p, []float64{1})
	return qt
}

func TestCharacteristicRelaxation(t *testing.T) {
	var (
		eos    = air()
		rho, p = 1.2, 1.e5
		vel    = [3]float64{50, 0, 0}
		n      = 16
		T0, _  = eos.RPY2T(rho, p, []float64{1})
	)
	lev1D := func() *grid.Level {
		lev := newTestLevel(t, grid.NewBox(1, grid.IntVect{0}, grid.IntVect{n - 1}),
			[3]float64{1}, [3]bool{}, types.Cartesian)
		fillState(lev, eos, uniform(rho, vel, p))
		return lev
	}
	{ // Outflow toward a lower pressure: ghost pressure falls and the flow accelerates
		drop := func(pt float64) (dp []float64) {
			cp := DefaultCharBCParams()
			cp.Targets[0][grid.Hi] = ConstantTarget(targetState(eos, rho, vel, pt))
			q := characteristicGhosts(t, eos, lev1D(), bc1D(types.BC_Outflow, types.BC_Outflow), cp)
			last := p
			for i := n; i < n+NGROW; i++ {
				assert.Less(t, q.At(i, 0, 0, QPRES), last, "ghost %d", i)
				assert.Greater(t, q.At(i, 0, 0, QU), vel[0], "ghost %d", i)
				last = q.At(i, 0, 0, QPRES)
				dp = append(dp, p-last)
			}
			// the low face has no target and stays non-reflecting
			for i := -NGROW; i < 0; i++ {
				assert.InDelta(t, p, q.At(i, 0, 0, QPRES), 1.e-6)
			}
			return
		}
		full, half := drop(0.5e5), drop(0.75e5)
		for m := range full {
			assert.InDelta(t, full[m], 2*half[m], 1.e-9*full[m], "ghost %d", m)
		}
	}
	{ // Inflow below the target velocity: ghost velocity rises toward it
		cp := DefaultCharBCParams()
		cp.Targets[0][grid.Lo] = ConstantTarget(targetState(eos, rho, [3]float64{60, 0, 0}, p))
		q := characteristicGhosts(t, eos, lev1D(), bc1D(types.BC_Inflow, types.BC_Outflow), cp)
		last := vel[0]
		for i := -1; i >= -NGROW; i-- {
			assert.Greater(t, q.At(i, 0, 0, QU), last, "ghost %d", i)
			last = q.At(i, 0, 0, QU)
		}
	}
	{ // Inflow colder than the target: ghost temperature rises toward it
		cp := DefaultCharBCParams()
		Tt := T0 + 50
		qt := targetState(eos, rho, vel, p)
		qt[QRHO], qt[QTEMP] = p/(Tt*eos.RTY2P(1, 1, []float64{1})), Tt
		cp.Targets[0][grid.Lo] = ConstantTarget(qt)
		q := characteristicGhosts(t, eos, lev1D(), bc1D(types.BC_Inflow, types.BC_Outflow), cp)
		last := T0
		for i := -1; i >= -NGROW; i-- {
			assert.Greater(t, q.At(i, 0, 0, QTEMP), last, "ghost %d", i)
			assert.InDelta(t, vel[0], q.At(i, 0, 0, QU), 1.e-9)
			last = q.At(i, 0, 0, QTEMP)
		}
	}
}

func TestCharacteristicCorners(t *testing.T) {
	var (
		eos    = air()
		rho, p = 1.2, 1.e5
		vel    = [3]float64{30, 20, 0}
		n      = 12
		lev    = newTestLevel(t, grid.NewBox(2, grid.IntVect{0, 0}, grid.IntVect{n - 1, n - 1}),
			[3]float64{1, 1}, [3]bool{}, types.Cartesian)
		out = [3]types.PhysBC{types.BC_Outflow, types.BC_Outflow}
	)
	require.Equal(t, NSCBC2DMixed, SelectNSCBC(2, false))
	fillState(lev, eos, uniform(rho, vel, p))
	cp := DefaultCharBCParams()
	cp.Targets[0][grid.Hi] = ConstantTarget(targetState(eos, rho, vel, 0.5e5))
	q := characteristicGhosts(t, eos, lev, grid.NewBCRec(out, out), cp)

	// the relaxed x face pulls its ghosts down
	assert.Less(t, q.At(n, n/2, 0, QPRES), p-100)
	hb := n - 1
	for i := n; i < n+NGROW; i++ {
		for j := n; j < n+NGROW; j++ {
			var (
				pA = q.At(i, hb, 0, QPRES)
				pB = q.At(hb, j, 0, QPRES)
				pc = q.At(i, j, 0, QPRES)
			)
			assert.InDelta(t, 0.5*(pA+pB), pc, 1.e-9*p, "corner (%d,%d)", i, j)
			assert.InDelta(t, 0.5*(q.At(i, hb, 0, QRHO)+q.At(hb, j, 0, QRHO)), q.At(i, j, 0, QRHO), 1.e-12)
			assert.Less(t, pA, p-100, "ghost (%d,%d)", i, hb)
			assert.False(t, math.IsNaN(q.At(i, j, 0, QTEMP)))
		}
	}
	// corners away from the relaxed face see no target and stay near the interior
	assert.InDelta(t, p, q.At(-1, -1, 0, QPRES), 1.e-6*p)
}
