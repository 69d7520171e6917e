package amr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

var ratio2 = grid.IntVect{2, 2, 1}

func box2(lo0, lo1, hi0, hi1 int) grid.Box {
	return grid.NewBox(2, grid.IntVect{lo0, lo1}, grid.IntVect{hi0, hi1})
}

// twoLevels is an 8x8 coarse level on the unit square under a fine level
// made of the given boxes.
func twoLevels(t *testing.T, nComp, nGrow int, fineBoxes ...grid.Box) (crse, fine *grid.Level) {
	geom, err := grid.NewGeometry(box2(0, 0, 7, 7), [3]float64{}, [3]float64{1, 1}, [3]bool{}, types.Cartesian)
	require.NoError(t, err)
	crse, err = grid.NewLevel(0, geom, grid.IntVect{1, 1, 1}, []grid.Box{geom.Domain}, nComp, nGrow)
	require.NoError(t, err)
	fine, err = grid.NewLevel(1, geom.Refine(ratio2), ratio2, fineBoxes, nComp, nGrow)
	require.NoError(t, err)
	return
}

func constFluxes(b grid.Box, nComp int, val float64) (f [3]*grid.Field) {
	for d := 0; d < 2; d++ {
		f[d] = grid.NewField(b.SurroundingNodes(d), nComp)
		f[d].SetVal(val)
	}
	return
}

func TestRegisterConstruction(t *testing.T) {
	{ // Fine patches must align with coarse cells
		crse, fine := twoLevels(t, 1, 0, box2(3, 4, 8, 11))
		_, err := NewFluxRegister(crse, fine, 1)
		assert.ErrorIs(t, err, ErrRegisterMismatch)
	}
	{ // and sit one level up
		crse, _ := twoLevels(t, 1, 0, box2(4, 4, 11, 11))
		_, err := NewFluxRegister(crse, crse, 1)
		assert.ErrorIs(t, err, ErrRegisterMismatch)
	}
	{ // Faces between fine patches are not part of the interface
		crse, fine := twoLevels(t, 1, 0, box2(4, 4, 7, 11), box2(8, 4, 11, 11))
		fr, err := NewFluxRegister(crse, fine, 1)
		require.NoError(t, err)
		var active int32
		for _, f := range fr.faces {
			f.cbox.ForEach(func(i, j, k int) { active += f.active.At(i, j, k, 0) })
		}
		// 4 coarse faces on each side of the 4x4 coarse region
		assert.Equal(t, int32(16), active)
	}
}

func TestRefluxCorrection(t *testing.T) {
	crse, fine := twoLevels(t, 1, 0, box2(4, 4, 7, 11), box2(8, 4, 11, 11))
	h, err := NewHierarchy([]*grid.Level{crse, fine}, 1)
	require.NoError(t, err)
	cr, fr := h.Registers(0)
	assert.Nil(t, fr)
	require.NotNil(t, cr)
	fcr, ffr := h.Registers(1)
	assert.Nil(t, fcr)
	require.NotNil(t, ffr)

	var (
		dt = 1.
		cp = crse.Patches[0]
	)
	require.NoError(t, cr.CrseAdd(cp, constFluxes(cp.Box, 1, 1), dt))
	require.ErrorIs(t, h.CheckRegisters(), ErrMissingRegisterSide)
	for _, p := range fine.Patches {
		// two fine steps of half the coarse step
		for step := 0; step < 2; step++ {
			require.NoError(t, ffr.FineAdd(p, constFluxes(p.Box, 1, 2), dt/2))
		}
	}
	require.NoError(t, h.CheckRegisters())
	// each of the 16 faces holds dt*dx (2 - 1)
	assert.InDelta(t, 16*0.125, h.Register(1).Net(0), 1.e-14)

	du := grid.NewField(cp.Box, 1)
	require.NoError(t, h.Reflux(func(p *grid.Patch) *grid.Field { return du }))
	assert.InDelta(t, -8, du.At(1, 3, 0, 0), 1.e-12)
	assert.InDelta(t, 8, du.At(6, 3, 0, 0), 1.e-12)
	assert.InDelta(t, -8, du.At(4, 1, 0, 0), 1.e-12)
	assert.InDelta(t, 8, du.At(4, 6, 0, 0), 1.e-12)
	assert.Zero(t, du.At(1, 1, 0, 0))
	assert.Zero(t, du.At(3, 3, 0, 0))
	assert.Zero(t, du.At(0, 3, 0, 0))
	// Reflux leaves the register empty
	assert.Zero(t, h.Register(1).Net(0))
	assert.NoError(t, h.CheckRegisters())
}

// primState fills u for an ideal gas at the given state.
func primState(eos thermo.EOS, rho float64, vel [3]float64, p float64, u []float64) {
	Y := []float64{1}
	T, _ := eos.RPY2T(rho, p, Y)
	q := make([]float64, rf.QVar(1))
	q[rf.QRHO], q[rf.QPRES], q[rf.QTEMP], q[rf.QFS] = rho, p, T, 1
	q[rf.QU], q[rf.QV], q[rf.QW] = vel[0], vel[1], vel[2]
	q[rf.QREINT] = rho * eos.TY2E(T, Y)
	rf.PrimToCons(q, u, 1)
}

// A uniform flow across a two level hierarchy with sub-cycling leaves
// nothing in the register.
func TestTwoLevelConservation(t *testing.T) {
	defer goleak.VerifyNone(t)
	var (
		eos        = thermo.NewCaloricallyPerfectGas(1.4, 0.02897)
		nv         = rf.NVar(1)
		crse, fine = twoLevels(t, nv, rf.NGROW, box2(4, 4, 7, 11), box2(8, 4, 11, 11))
		u          = make([]float64, nv)
		dt         = 1.e-5
		ctx        = context.Background()
	)
	primState(eos, 1.2, [3]float64{50, 20, 0}, 1.e5, u)
	for _, lev := range []*grid.Level{crse, fine} {
		for _, p := range lev.Patches {
			p.State.Box.ForEach(func(i, j, k int) { p.State.SetCell(i, j, k, u) })
		}
	}
	h, err := NewHierarchy([]*grid.Level{crse, fine}, nv)
	require.NoError(t, err)

	params := rf.DefaultParams()
	params.DoReflux = true
	params.BC = grid.NewBCRec([3]types.PhysBC{types.BC_Outflow, types.BC_Outflow},
		[3]types.PhysBC{types.BC_Outflow, types.BC_Outflow})
	hydro := rf.NewHydro(eos, params, nil)

	hc := rf.NewHydroLevel(crse, 1, false)
	hc.Crse, hc.Fine = h.Registers(0)
	_, err = hydro.ConstructHydroSource(ctx, hc, 0, dt, 0, 1)
	require.NoError(t, err)
	require.ErrorIs(t, h.CheckRegisters(), ErrMissingRegisterSide)

	hf := rf.NewHydroLevel(fine, 1, true)
	hf.Crse, hf.Fine = h.Registers(1)
	// two fine steps of half the coarse step, one iteration each
	for step := 0; step < 2; step++ {
		_, err = hydro.ConstructHydroSource(ctx, hf, float64(step)*dt/2, dt/2, 0, 1)
		require.NoError(t, err)
	}
	require.NoError(t, h.CheckRegisters())
	reg := h.Register(1)
	assert.InDelta(t, 0, reg.Net(rf.URHO), 1.e-15)
	assert.InDelta(t, 0, reg.Net(rf.UMX), 1.e-10)
	assert.InDelta(t, 0, reg.Net(rf.UMY), 1.e-10)
	assert.InDelta(t, 0, reg.Net(rf.UEDEN), 1.e-8)
	assert.InDelta(t, 0, reg.Net(rf.UFS), 1.e-15)
}
