package isentropic_vortex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIVortex(t *testing.T) {
	{ // Core state
		iv := NewIVortex(5, 5, 0, 1.4)
		rho, u, v, p := iv.GetState(0, 5, 0)
		assert.InDelta(t, 0.361673, rho, 1.e-5)
		assert.InDelta(t, 1., u, 1.e-12)
		assert.InDelta(t, 0., v, 1.e-12)
		assert.InDelta(t, 0.782817, p/0.4+0.5*rho*u*u, 1.e-5)
	}
	{ // Far field is the free stream
		iv := NewIVortex(5, 5, 0, 1.4, 0.5)
		rho, u, v, p := iv.GetState(0, 5, 9)
		assert.InDelta(t, 1., rho, 1.e-12)
		assert.InDelta(t, 0.5, u, 1.e-12)
		assert.InDelta(t, 0., v, 1.e-12)
		assert.InDelta(t, 1., p, 1.e-12)
	}
	{ // Isentropic and convected
		iv := NewIVortex(5, 5, 0, 1.4)
		for _, xy := range [][2]float64{{5.3, 0.2}, {4.1, -0.7}, {6, 1}} {
			rho, _, _, p := iv.GetState(0, xy[0], xy[1])
			assert.InDelta(t, math.Pow(rho, 1.4), p, 1.e-12)
			r0, u0, v0, p0 := iv.GetState(0, xy[0], xy[1])
			r1, u1, v1, p1 := iv.GetState(2, xy[0]+2, xy[1])
			assert.InDeltaSlice(t, []float64{r0, u0, v0, p0}, []float64{r1, u1, v1, p1}, 1.e-12)
		}
	}
	{ // Periodic wrap
		iv := NewIVortex(5, 5, 0, 1.4)
		iv.Lx = 10
		r0, _, _, _ := iv.GetState(0, 5.5, 0.3)
		r1, _, _, _ := iv.GetState(10, 5.5, 0.3)
		assert.InDelta(t, r0, r1, 1.e-12)
	}
}
