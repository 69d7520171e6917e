package sod_shock_tube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOD(t *testing.T) {
	er := Sod()
	assert.InDelta(t, 0.30313, er.PStar, 1.e-5)
	assert.InDelta(t, 0.92745, er.UStar, 1.e-5)
	x4, ok := er.ShockPosition(0.5, 0.1)
	assert.True(t, ok)
	assert.InDelta(t, 0.6752, x4, 1.e-4)
	x4, _ = er.ShockPosition(0.5, 0.2)
	assert.InDelta(t, 0.8504, x4, 1.e-4)

	X, Rho, P, U, _ := SOD_calc(0.1)
	for i, x := range X {
		switch {
		case x < 0.38:
			assert.Equal(t, 1., Rho[i])
			assert.Equal(t, 0., U[i])
		case x > 0.5 && x < 0.59:
			// contact left
			assert.InDelta(t, 0.42632, Rho[i], 1.e-5)
			assert.InDelta(t, er.PStar, P[i], 1.e-12)
		case x > 0.6 && x < 0.67:
			assert.InDelta(t, 0.26557, Rho[i], 1.e-5)
			assert.InDelta(t, er.UStar, U[i], 1.e-12)
		case x > 0.68:
			assert.Equal(t, 0.125, Rho[i])
			assert.Equal(t, 0.1, P[i])
		}
	}
	{ // Density falls monotonically through the fan
		for i := 1; i < len(X); i++ {
			if X[i] > 0.38 && X[i] < 0.49 {
				assert.Less(t, Rho[i], Rho[i-1])
			}
		}
	}
}

func TestExactRiemannSymmetry(t *testing.T) {
	var (
		L = State{1, 0, 1}
		R = State{0.125, 0, 0.1}
	)
	er, err := NewExactRiemann(L, R, 1.4)
	require.NoError(t, err)
	mirror, err := NewExactRiemann(R, L, 1.4)
	require.NoError(t, err)
	assert.InDelta(t, er.PStar, mirror.PStar, 1.e-12)
	assert.InDelta(t, er.UStar, -mirror.UStar, 1.e-12)
	for _, xi := range []float64{-1.5, -0.7, 0.2, 0.9, 1.2, 2} {
		a, b := er.Sample(xi), mirror.Sample(-xi)
		assert.InDelta(t, a.Rho, b.Rho, 1.e-10)
		assert.InDelta(t, a.P, b.P, 1.e-10)
		assert.InDelta(t, a.U, -b.U, 1.e-10)
	}
	{ // Colliding streams make two shocks
		er, err := NewExactRiemann(State{1, 2, 1}, State{1, -2, 1}, 1.4)
		require.NoError(t, err)
		assert.Greater(t, er.PStar, 1.)
		assert.InDelta(t, 0, er.UStar, 1.e-12)
	}
	{
		_, err := NewExactRiemann(State{1, -20, 1}, State{1, 20, 1}, 1.4)
		assert.Error(t, err)
	}
}
