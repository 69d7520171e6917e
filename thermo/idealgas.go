package thermo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

/*
Species of an ideal gas mixture. The specific heat at constant volume is
linear in temperature, Cv = CvA + CvB*T, and the specific internal energy is
E(T) = Ef + CvA*T + CvB*T^2/2.
*/
type Species struct {
	Name     string
	W        float64 // kg/mol
	CvA, CvB float64 // J/(kg K), J/(kg K^2)
	Ef       float64 // J/kg
}

type IdealGasMixture struct {
	species               []Species
	names                 []string
	w, invW, cvA, cvB, ef []float64
	MaxNewtonIter         int
	NewtonTol             float64
}

func NewIdealGasMixture(species []Species) (g *IdealGasMixture, err error) {
	if len(species) == 0 {
		err = fmt.Errorf("ideal gas mixture needs at least one species")
		return
	}
	ns := len(species)
	g = &IdealGasMixture{
		species:       species,
		names:         make([]string, ns),
		w:             make([]float64, ns),
		invW:          make([]float64, ns),
		cvA:           make([]float64, ns),
		cvB:           make([]float64, ns),
		ef:            make([]float64, ns),
		MaxNewtonIter: 50,
		NewtonTol:     1.e-12,
	}
	for n, s := range species {
		if s.W <= 0 || s.CvA <= 0 || s.CvB < 0 {
			err = fmt.Errorf("species %s: need W > 0, CvA > 0, CvB >= 0, have %g, %g, %g",
				s.Name, s.W, s.CvA, s.CvB)
			return nil, err
		}
		g.names[n] = s.Name
		g.w[n] = s.W
		g.invW[n] = 1. / s.W
		g.cvA[n] = s.CvA
		g.cvB[n] = s.CvB
		g.ef[n] = s.Ef
	}
	return
}

// NewCaloricallyPerfectGas is a single species gas with constant gamma.
func NewCaloricallyPerfectGas(gamma, W float64) (g *IdealGasMixture) {
	var err error
	R := Ru / W
	if g, err = NewIdealGasMixture([]Species{
		{Name: "gas", W: W, CvA: R / (gamma - 1)},
	}); err != nil {
		panic(err)
	}
	return
}

func (g *IdealGasMixture) NumSpecies() int { return len(g.species) }

func (g *IdealGasMixture) SpeciesNames() []string { return g.names }

func (g *IdealGasMixture) MolecularWeights() []float64 { return g.w }

// GasConstant is the mixture specific gas constant in J/(kg K)
func (g *IdealGasMixture) GasConstant(Y []float64) float64 {
	return Ru * floats.Dot(Y, g.invW)
}

func (g *IdealGasMixture) TY2E(T float64, Y []float64) float64 {
	return floats.Dot(Y, g.ef) + T*floats.Dot(Y, g.cvA) + 0.5*T*T*floats.Dot(Y, g.cvB)
}

func (g *IdealGasMixture) T2Ei(T float64, ei []float64) {
	for n := range g.species {
		ei[n] = g.ef[n] + g.cvA[n]*T + 0.5*g.cvB[n]*T*T
	}
}

func (g *IdealGasMixture) TY2Cv(T float64, Y []float64) float64 {
	return floats.Dot(Y, g.cvA) + T*floats.Dot(Y, g.cvB)
}

func (g *IdealGasMixture) TY2Cp(T float64, Y []float64) float64 {
	return g.TY2Cv(T, Y) + g.GasConstant(Y)
}

func (g *IdealGasMixture) RTY2P(rho, T float64, Y []float64) float64 {
	return rho * g.GasConstant(Y) * T
}

func (g *IdealGasMixture) RPY2T(rho, p float64, Y []float64) (T float64, err error) {
	if rho <= 0 {
		err = fmt.Errorf("rho = %g: %w", rho, ErrNonPositiveDensity)
		return
	}
	if T = p / (rho * g.GasConstant(Y)); T <= 0 || math.IsNaN(T) {
		err = fmt.Errorf("p = %g, rho = %g gives T = %g: %w", p, rho, T, ErrNonPositiveTemperature)
	}
	return
}

func (g *IdealGasMixture) RTY2Cs(rho, T float64, Y []float64) float64 {
	cv := g.TY2Cv(T, Y)
	R := g.GasConstant(Y)
	return math.Sqrt((cv + R) / cv * R * T)
}

/*
EY2T solves E(T) = e with Newton iterations. Energy is monotone in T since
Cv > 0, so the iteration converges from any positive guess unless the
requested energy lies below the formation energy of the mixture.
*/
func (g *IdealGasMixture) EY2T(e float64, Y []float64, Tguess float64) (T float64, err error) {
	var (
		a  = floats.Dot(Y, g.cvA)
		b  = floats.Dot(Y, g.cvB)
		e0 = floats.Dot(Y, g.ef)
	)
	if a <= 0 {
		err = fmt.Errorf("mixture Cv = %g: %w", a, ErrTemperatureSolve)
		return
	}
	if b == 0 {
		T = (e - e0) / a
	} else {
		T = Tguess
		if T <= 0 || math.IsNaN(T) {
			T = (e - e0) / a
		}
		var converged bool
		for it := 0; it < g.MaxNewtonIter; it++ {
			f := e0 + a*T + 0.5*b*T*T - e
			dT := f / (a + b*T)
			T -= dT
			if math.Abs(dT) <= g.NewtonTol*math.Abs(T) {
				converged = true
				break
			}
		}
		if !converged || math.IsNaN(T) {
			err = fmt.Errorf("e = %g after %d iterations: %w", e, g.MaxNewtonIter, ErrTemperatureSolve)
			return
		}
	}
	if T <= 0 {
		err = fmt.Errorf("e = %g gives T = %g: %w", e, T, ErrNonPositiveTemperature)
	}
	return
}

func (g *IdealGasMixture) Derivatives(rho, e, T float64, Y []float64) (gamc, c, dpdrE, dpde float64) {
	var (
		R  = g.GasConstant(Y)
		cv = g.TY2Cv(T, Y)
		p  = rho * R * T
	)
	dpdrE = p / rho
	dpde = rho * R / cv
	c = math.Sqrt(dpdrE + p/(rho*rho)*dpde)
	gamc = rho * c * c / p
	return
}
