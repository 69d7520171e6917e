package Reactions

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
)

func inertGas(t *testing.T) (thermo.EOS, thermo.Kinetics) {
	g := thermo.NewCaloricallyPerfectGas(1.4, 0.02897)
	m, err := thermo.NewArrheniusMechanism(g, nil)
	require.NoError(t, err)
	return g, m
}

// fuelProduct is a one step exothermic F -> P mechanism
func fuelProduct(t *testing.T) (*thermo.IdealGasMixture, thermo.Kinetics) {
	g, err := thermo.NewIdealGasMixture([]thermo.Species{
		{Name: "F", W: 0.029, CvA: 735, Ef: 1.e6},
		{Name: "P", W: 0.029, CvA: 735, Ef: 0},
	})
	require.NoError(t, err)
	m, err := thermo.NewArrheniusMechanism(g, []thermo.Reaction{{
		A:         1.e8,
		Ea:        8.e4,
		Reactants: []thermo.Stoich{{Species: 0, Nu: 1}},
		Products:  []thermo.Stoich{{Species: 1, Nu: 1}},
	}})
	require.NoError(t, err)
	return g, m
}

// restState fills a conserved vector for a gas at rest
func restState(eos thermo.EOS, rho, T float64, Y []float64, u []float64) {
	for n := range u {
		u[n] = 0
	}
	u[rf.URHO] = rho
	u[rf.UTEMP] = T
	u[rf.UEDEN] = rho * eos.TY2E(T, Y)
	for n, y := range Y {
		u[rf.UFS+n] = rho * y
	}
}

func TestAdaptTimestep(t *testing.T) {
	var (
		dtMin, dtMax = 1.e-8, 1.e-6
		tol          = 1.e-6
	)
	for _, dt := range []float64{1.e-8, 3.e-8, 1.e-7, 5.e-7, 1.e-6} {
		for _, e := range []float64{0, 1.e-12, 1.e-8, 5.e-7} {
			next := AdaptTimestep(e, dtMax, dt, dtMin, tol)
			assert.GreaterOrEqual(t, next, dt)
			assert.LessOrEqual(t, next, dtMax)
		}
		for _, e := range []float64{1.e-6, 1.e-5, 1.e3} {
			next := AdaptTimestep(e, dtMax, dt, dtMin, tol)
			assert.LessOrEqual(t, next, dt)
			assert.GreaterOrEqual(t, next, dtMin)
		}
	}
	{ // Growth factor is (tol/err)^(1/4) with the floor on err
		assert.InDelta(t, 2.e-8, AdaptTimestep(tol/16, dtMax, 1.e-8, dtMin, tol), 1.e-20)
		assert.InDelta(t, 1.e-7, AdaptTimestep(0, dtMax, 1.e-8, dtMin, tol), 1.e-20)
		assert.InDelta(t, 1.e-7*math.Pow(1./32, 0.2), AdaptTimestep(32*tol, dtMax, 1.e-7, dtMin, tol), 1.e-20)
	}
}

func TestStepBounds(t *testing.T) {
	eos, kin := inertGas(t)
	_, err := NewIntegrator(eos, kin, StepBounds{NStepsMin: 4, NStepsMax: 2, NStepsGuess: 3, ErrTol: 1}, true, nil)
	assert.ErrorIs(t, err, ErrBadStepBounds)
	_, err = NewIntegrator(eos, kin, StepBounds{NStepsMin: 0, NStepsMax: 2, NStepsGuess: 1, ErrTol: 1}, true, nil)
	assert.ErrorIs(t, err, ErrBadStepBounds)
	_, err = NewIntegrator(eos, kin, StepBounds{NStepsMin: 1, NStepsMax: 2, NStepsGuess: 1}, true, nil)
	assert.ErrorIs(t, err, ErrBadStepBounds)
}

func TestZeroForcingCell(t *testing.T) {
	eos, kin := inertGas(t)
	it, err := NewIntegrator(eos, kin,
		StepBounds{NStepsMin: 4, NStepsMax: 4, NStepsGuess: 4, ErrTol: 1.e-6}, true, nil)
	require.NoError(t, err)
	c := NewCell(1)
	restState(eos, 1, 300, []float64{1}, c.Old)
	copy(c.New, c.Old)
	before := append([]float64{}, c.Old...)
	steps, err := it.Integrate(c, 1.e-6)
	require.NoError(t, err)
	assert.Equal(t, 4, steps)
	assert.True(t, cmp.Equal(before, c.New, cmpopts.EquateApprox(1.e-10, 0)),
		cmp.Diff(before, c.New))
	assert.InDeltaSlice(t, []float64{0, 0}, c.IR, 1.e-6)
	{ // Longer sub-steps leave it unchanged too
		for _, dt := range []float64{1.e-3, 1} {
			copy(c.New, c.Old)
			steps, err = it.Integrate(c, dt)
			require.NoError(t, err)
			assert.Equal(t, 4, steps)
			assert.True(t, cmp.Equal(before, c.New, cmpopts.EquateApprox(1.e-10, 0)))
		}
	}
	{ // An empty or negative interval is rejected before anything is written
		for _, dt := range []float64{0, -1.e-6, math.NaN()} {
			copy(c.New, c.Old)
			c.IR[0], c.IR[1] = 0, 0
			steps, err = it.Integrate(c, dt)
			assert.ErrorIs(t, err, ErrBadReactDt)
			assert.Zero(t, steps)
			assert.Equal(t, []float64{0, 0}, c.IR)
			assert.Equal(t, before, c.New)
		}
	}
}

func TestForcedCell(t *testing.T) {
	eos, kin := inertGas(t)
	it, err := NewIntegrator(eos, kin,
		StepBounds{NStepsMin: 1, NStepsMax: 100, NStepsGuess: 3, ErrTol: 1.e-6}, true, nil)
	require.NoError(t, err)
	var (
		c  = NewCell(1)
		dt = 1.e-4
	)
	restState(eos, 1, 300, []float64{1}, c.Old)
	// advection adds species mass, momentum and energy at constant rates
	c.Forcing[rf.UFS] = 10
	c.Forcing[rf.URHO] = 10
	c.Forcing[rf.UMX] = 5
	c.Forcing[rf.UEDEN] = 1.e3
	copy(c.New, c.Old)
	for _, n := range []int{rf.URHO, rf.UFS, rf.UEDEN} {
		c.New[n] += dt * c.Forcing[n]
	}
	_, err = it.Integrate(c, dt)
	require.NoError(t, err)
	assert.InDelta(t, 1.001, c.New[rf.URHO], 1.e-12)
	assert.InDelta(t, c.New[rf.UFS], c.New[rf.URHO], 1.e-14)
	assert.InDelta(t, dt*5, c.New[rf.UMX], 1.e-15)
	// No chemistry, so nothing is produced beyond the forcing
	assert.InDelta(t, 0, c.IR[0], 1.e-8)
}

func TestReactingCell(t *testing.T) {
	eos, kin := fuelProduct(t)
	it, err := NewIntegrator(eos, kin,
		StepBounds{NStepsMin: 1, NStepsMax: 20000, NStepsGuess: 10, ErrTol: 1.e-4}, true, nil)
	require.NoError(t, err)
	var (
		c  = NewCell(2)
		Y  = []float64{0.6, 0.4}
		T0 = 1500.
	)
	restState(eos, 1, T0, Y, c.Old)
	copy(c.New, c.Old)
	steps, err := it.Integrate(c, 1.e-5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, steps, 1)
	assert.LessOrEqual(t, steps, 20000)
	assert.InDelta(t, c.New[rf.UFS]+c.New[rf.UFS+1], c.New[rf.URHO], 1.e-12)
	assert.Less(t, c.New[rf.UFS], 0.6)
	assert.Greater(t, c.New[rf.UTEMP], T0)
	// total energy is untouched and temperature is consistent with it
	assert.Equal(t, c.Old[rf.UEDEN], c.New[rf.UEDEN])
	Ynew := []float64{c.New[rf.UFS] / c.New[rf.URHO], c.New[rf.UFS+1] / c.New[rf.URHO]}
	Te, err := eos.EY2T(c.New[rf.UEDEN]/c.New[rf.URHO], Ynew, c.New[rf.UTEMP])
	require.NoError(t, err)
	assert.InDelta(t, Te, c.New[rf.UTEMP], 1.e-2*Te)
	assert.InDelta(t, 0, c.IR[0]+c.IR[1], 1.e-8*math.Abs(c.IR[0]))
	assert.Less(t, c.IR[0], 0.)
}

func TestReactLevel(t *testing.T) {
	defer goleak.VerifyNone(t)
	eos, kin := fuelProduct(t)
	it, err := NewIntegrator(eos, kin,
		StepBounds{NStepsMin: 2, NStepsMax: 2, NStepsGuess: 2, ErrTol: 1.e-4}, false, nil)
	require.NoError(t, err)
	g, err := grid.NewGeometry(grid.NewBox(2, grid.IntVect{}, grid.IntVect{7, 7}),
		[3]float64{}, [3]float64{1, 1}, [3]bool{}, types.Cartesian)
	require.NoError(t, err)
	lev, err := grid.NewLevel(0, g, grid.IntVect{1, 1, 1}, []grid.Box{
		grid.NewBox(2, grid.IntVect{0, 0}, grid.IntVect{3, 7}),
		grid.NewBox(2, grid.IntVect{4, 0}, grid.IntVect{7, 7}),
	}, rf.NVar(2), 0)
	require.NoError(t, err)
	fields := make([]PatchFields, len(lev.Patches))
	u := make([]float64, rf.NVar(2))
	restState(eos, 1, 300, []float64{1, 0}, u)
	for n, p := range lev.Patches {
		p.Box.ForEach(func(i, j, k int) { p.State.SetCell(i, j, k, u) })
		fields[n] = PatchFields{
			Old:     p.State,
			New:     p.State.Clone(),
			Forcing: grid.NewField(p.Box, rf.NVar(2)),
			IR:      grid.NewField(p.Box, 3),
			Cost:    grid.NewField(p.Box, 1),
		}
	}
	cost, err := it.ReactLevel(context.Background(), lev, fields, 1.e-6)
	require.NoError(t, err)
	assert.Equal(t, 2.*64, cost)
	// DoUpdate is off, new state is untouched
	assert.Equal(t, fields[0].Old.Data, fields[0].New.Data)
	{ // Every bad patch is reported
		for _, pf := range fields {
			pf.New.SetVal(0)
			pf.Old.SetVal(0)
		}
		_, err = it.ReactLevel(context.Background(), lev, fields, 1.e-6)
		require.Error(t, err)
		assert.ErrorIs(t, err, thermo.ErrNonPositiveDensity)
		assert.Contains(t, err.Error(), "patch 0")
		assert.Contains(t, err.Error(), "patch 1")
	}
	{ // Mismatched inputs
		_, err = it.ReactLevel(context.Background(), lev, fields[:1], 1.e-6)
		assert.Error(t, err)
	}
}
