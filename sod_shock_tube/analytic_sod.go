package sod_shock_tube

import (
	"fmt"
	"math"
)

// State is a one dimensional perfect gas state.
type State struct {
	Rho, U, P float64
}

func (s State) C(gamma float64) float64 { return math.Sqrt(gamma * s.P / s.Rho) }

/*
ExactRiemann is the self-similar solution of a perfect gas Riemann problem,
found by Newton iteration on the pressure between the two nonlinear waves.
*/
type ExactRiemann struct {
	L, R         State
	Gamma        float64
	PStar, UStar float64
}

func NewExactRiemann(L, R State, gamma float64) (er *ExactRiemann, err error) {
	er = &ExactRiemann{L: L, R: R, Gamma: gamma}
	var (
		cl, cr = L.C(gamma), R.C(gamma)
		g1     = (gamma - 1) / (2 * gamma)
	)
	// pressure positivity
	if 2*(cl+cr)/(gamma-1) <= R.U-L.U {
		err = fmt.Errorf("states %v and %v generate vacuum", L, R)
		return nil, err
	}
	// two-rarefaction guess
	p := math.Pow((cl+cr-0.5*(gamma-1)*(R.U-L.U))/(cl/math.Pow(L.P, g1)+cr/math.Pow(R.P, g1)), 1/g1)
	for iter := 0; iter < 100; iter++ {
		fl, dfl := er.waveFunc(L, p)
		fr, dfr := er.waveFunc(R, p)
		pNew := p - (fl+fr+R.U-L.U)/(dfl+dfr)
		if pNew < 0 {
			pNew = 1.e-8 * p
		}
		change := 2 * math.Abs(pNew-p) / (pNew + p)
		p = pNew
		if change < 1.e-12 {
			fl, _ = er.waveFunc(L, p)
			fr, _ = er.waveFunc(R, p)
			er.PStar = p
			er.UStar = 0.5*(L.U+R.U) + 0.5*(fr-fl)
			return
		}
	}
	err = fmt.Errorf("star pressure did not converge from states %v and %v", L, R)
	return nil, err
}

// waveFunc is the velocity change across a shock or rarefaction connecting s
// to pressure p, and its derivative.
func (er *ExactRiemann) waveFunc(s State, p float64) (f, df float64) {
	var (
		g = er.Gamma
		c = s.C(g)
	)
	if p > s.P {
		var (
			A = 2 / ((g + 1) * s.Rho)
			B = (g - 1) / (g + 1) * s.P
			q = math.Sqrt(A / (p + B))
		)
		f = (p - s.P) * q
		df = q * (1 - 0.5*(p-s.P)/(B+p))
		return
	}
	f = 2 * c / (g - 1) * (math.Pow(p/s.P, (g-1)/(2*g)) - 1)
	df = 1 / (s.Rho * c) * math.Pow(p/s.P, -(g+1)/(2*g))
	return
}

// Sample returns the state on the ray x/t = xi.
func (er *ExactRiemann) Sample(xi float64) (s State) {
	var (
		g  = er.Gamma
		ps = er.PStar
		us = er.UStar
	)
	side, sign := er.L, 1.
	if xi > us {
		side, sign = er.R, -1
	}
	// Mirror the right side onto the left so one set of formulas serves both
	var (
		c  = side.C(g)
		u  = sign * side.U
		x  = sign * xi
		uS = sign * us
	)
	defer func() { s.U *= sign }()
	if ps > side.P {
		pr := ps / side.P
		shock := u - c*math.Sqrt((g+1)/(2*g)*pr+(g-1)/(2*g))
		if x < shock {
			return State{Rho: side.Rho, U: u, P: side.P}
		}
		rho := side.Rho * (pr + (g-1)/(g+1)) / ((g-1)/(g+1)*pr + 1)
		return State{Rho: rho, U: uS, P: ps}
	}
	var (
		head = u - c
		cS   = c * math.Pow(ps/side.P, (g-1)/(2*g))
		tail = uS - cS
	)
	switch {
	case x < head:
		return State{Rho: side.Rho, U: u, P: side.P}
	case x > tail:
		return State{Rho: side.Rho * math.Pow(ps/side.P, 1/g), U: uS, P: ps}
	}
	var (
		cf  = 2/(g+1)*c + (g-1)/(g+1)*(u-x)
		rho = side.Rho * math.Pow(cf/c, 2/(g-1))
	)
	return State{Rho: rho, U: 2 / (g + 1) * (c + (g-1)/2*u + x), P: side.P * math.Pow(rho/side.Rho, g)}
}

// Profile samples the solution at time t for a discontinuity initially at x0.
func (er *ExactRiemann) Profile(X []float64, x0, t float64) (Rho, P, U, E []float64) {
	Rho = make([]float64, len(X))
	P = make([]float64, len(X))
	U = make([]float64, len(X))
	E = make([]float64, len(X))
	for i, x := range X {
		var s State
		if t <= 0 {
			s = er.L
			if x > x0 {
				s = er.R
			}
		} else {
			s = er.Sample((x - x0) / t)
		}
		Rho[i], P[i], U[i] = s.Rho, s.P, s.U
		E[i] = s.P / ((er.Gamma - 1) * s.Rho)
	}
	return
}

// ShockPosition is the location at time t of the right moving shock, if any.
func (er *ExactRiemann) ShockPosition(x0, t float64) (x float64, ok bool) {
	if er.PStar <= er.R.P {
		return
	}
	var (
		g  = er.Gamma
		pr = er.PStar / er.R.P
	)
	return x0 + t*(er.R.U+er.R.C(g)*math.Sqrt((g+1)/(2*g)*pr+(g-1)/(2*g))), true
}

// Sod is the classic shock tube on [0,1] with the diaphragm at 0.5.
func Sod() *ExactRiemann {
	er, err := NewExactRiemann(State{1, 0, 1}, State{0.125, 0, 0.1}, 1.4)
	if err != nil {
		panic(err)
	}
	return er
}

func SOD_calc(t float64) (X, Rho, P, U, E []float64) {
	var (
		nx = 201
	)
	X = make([]float64, nx)
	for i := range X {
		X[i] = float64(i) / float64(nx-1)
	}
	Rho, P, U, E = Sod().Profile(X, 0.5, t)
	return
}
