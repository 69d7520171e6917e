package thermo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoSpecies is a fuel/product pair of equal molecular weight where the
// product has lower formation energy.
func twoSpecies(t *testing.T) *IdealGasMixture {
	g, err := NewIdealGasMixture([]Species{
		{Name: "F", W: 0.029, CvA: 700, CvB: 0.1, Ef: 1.e6},
		{Name: "P", W: 0.029, CvA: 750, CvB: 0.2, Ef: 0},
	})
	require.NoError(t, err)
	return g
}

func TestCaloricallyPerfectGas(t *testing.T) {
	var (
		gamma = 1.4
		W     = 0.02897
		g     = NewCaloricallyPerfectGas(gamma, W)
		Y     = []float64{1}
		R     = Ru / W
	)
	assert.Equal(t, 1, g.NumSpecies())
	assert.InDelta(t, R, g.GasConstant(Y), 1.e-12)
	assert.InDelta(t, gamma, g.TY2Cp(300, Y)/g.TY2Cv(300, Y), 1.e-14)
	{ // Energy and temperature round trip
		e := g.TY2E(300, Y)
		T, err := g.EY2T(e, Y, 1)
		require.NoError(t, err)
		assert.InDelta(t, 300, T, 1.e-10)
	}
	{ // Derivatives agree with the perfect gas relations
		rho, T := 1.2, 300.
		gamc, c, dpdr, dpde := g.Derivatives(rho, g.TY2E(T, Y), T, Y)
		assert.InDelta(t, gamma, gamc, 1.e-12)
		assert.InDelta(t, math.Sqrt(gamma*R*T), c, 1.e-10)
		assert.InDelta(t, c, g.RTY2Cs(rho, T, Y), 1.e-10)
		assert.InDelta(t, R*T, dpdr, 1.e-10)
		assert.InDelta(t, (gamma-1)*rho, dpde, 1.e-12)
	}
	{ // Pressure inversion
		p := g.RTY2P(1.2, 310, Y)
		T, err := g.RPY2T(1.2, p, Y)
		require.NoError(t, err)
		assert.InDelta(t, 310, T, 1.e-10)
		_, err = g.RPY2T(0, p, Y)
		assert.ErrorIs(t, err, ErrNonPositiveDensity)
		_, err = g.RPY2T(1, -p, Y)
		assert.ErrorIs(t, err, ErrNonPositiveTemperature)
	}
}

func TestMixture(t *testing.T) {
	g := twoSpecies(t)
	Y := []float64{0.3, 0.7}
	{ // Newton solve with temperature dependent Cv
		for _, T0 := range []float64{200, 300, 1500, 3000} {
			e := g.TY2E(T0, Y)
			T, err := g.EY2T(e, Y, 800)
			require.NoError(t, err)
			assert.InDelta(t, T0, T, 1.e-8*T0)
		}
	}
	{ // Mixture energy is the mass weighted species energy
		ei := make([]float64, 2)
		g.T2Ei(500, ei)
		assert.InDelta(t, 0.3*ei[0]+0.7*ei[1], g.TY2E(500, Y), 1.e-8)
	}
	{ // Energy below formation energy has no temperature
		_, err := g.EY2T(-1.e5, Y, 300)
		assert.Error(t, err)
	}
	{ // Bad species
		_, err := NewIdealGasMixture([]Species{{Name: "X", W: 0, CvA: 1}})
		assert.Error(t, err)
	}
	{
		rhoY := []float64{0.25, 0.75}
		Yo := make([]float64, 2)
		assert.Equal(t, 1., RhoYToY(rhoY, Yo))
		assert.Equal(t, []float64{0.25, 0.75}, Yo)
	}
}

func TestArrhenius(t *testing.T) {
	g := twoSpecies(t)
	{ // Mass balance is enforced
		_, err := NewArrheniusMechanism(g, []Reaction{{
			A:         1,
			Reactants: []Stoich{{Species: 0, Nu: 1}},
			Products:  []Stoich{{Species: 1, Nu: 2}},
		}})
		assert.ErrorIs(t, err, ErrUnbalancedReaction)
	}
	m, err := NewArrheniusMechanism(g, []Reaction{{
		A:         1.e8,
		Beta:      0,
		Ea:        8.e4,
		Reactants: []Stoich{{Species: 0, Nu: 1}},
		Products:  []Stoich{{Species: 1, Nu: 1}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, m.NumReactions())
	var (
		Y    = []float64{0.6, 0.4}
		wdot = make([]float64, 2)
		rho  = 1.
		T    = 1200.
	)
	m.RTY2WDOT(rho, T, Y, wdot)
	assert.Less(t, wdot[0], 0.)
	assert.InDelta(t, 0, wdot[0]+wdot[1], 1.e-12*math.Abs(wdot[0]))
	expect := -1.e8 * math.Exp(-8.e4/(Ru*T)) * rho * Y[0]
	assert.InDelta(t, expect, wdot[0], 1.e-10*math.Abs(expect))
	{ // No fuel, no reaction
		m.RTY2WDOT(rho, T, []float64{0, 1}, wdot)
		assert.Equal(t, []float64{0, 0}, wdot)
	}
}
