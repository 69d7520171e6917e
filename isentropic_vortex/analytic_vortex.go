package isentropic_vortex

import (
	"math"

	"github.com/notargets/reactingflow/utils"
)

/*
IVortex is the isentropic vortex of strength Beta centred at (X0, Y0),
convected by a uniform stream Ufs in x. The state is nondimensional with
unit freestream density and pressure. When Lx is positive the vortex is
periodic in x with that length.
*/
type IVortex struct {
	Beta, X0, Y0, Gamma float64
	Ufs                 float64
	Lx                  float64
}

func NewIVortex(Beta, X0, Y0, Gamma float64, UfsO ...float64) (iv *IVortex) {
	var (
		Ufs = 1.0
	)
	if len(UfsO) > 0 {
		Ufs = UfsO[0]
	}
	iv = &IVortex{
		Beta:  Beta,
		X0:    X0,
		Y0:    Y0,
		Gamma: Gamma,
		Ufs:   Ufs,
	}
	return
}

// GetState is the primitive state at (x, y) and time t.
func (iv *IVortex) GetState(t, x, y float64) (rho, u, v, p float64) {
	var (
		oo2pi = 0.5 * (1. / math.Pi)
		Gamma = iv.Gamma
		GM1   = Gamma - 1
		beta  = iv.Beta
		fac   = 16 * Gamma * math.Pi * math.Pi
	)
	u, v = iv.Ufs, 0.
	dx, dy := x-u*t-iv.X0, y-iv.Y0
	if iv.Lx > 0 {
		// nearest image
		dx -= iv.Lx * math.Round(dx/iv.Lx)
	}
	r2 := utils.POW(dx, 2) + utils.POW(dy, 2)
	ex1r := math.Exp(1 - r2)
	tv1 := 1.0 - (GM1 * beta * beta * math.Exp(2.0*(1.0-r2)) / fac)
	u -= beta * ex1r * dy * oo2pi
	v += beta * ex1r * dx * oo2pi
	rho = math.Pow(tv1, 1/GM1)
	p = math.Pow(rho, Gamma)
	return
}
