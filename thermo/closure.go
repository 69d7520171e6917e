package thermo

import "errors"

// Ru is the universal gas constant in J/(mol K). All closures work in SI.
const Ru = 8.314462618

var (
	ErrNonPositiveDensity     = errors.New("non-positive density")
	ErrTemperatureSolve       = errors.New("temperature solve did not converge")
	ErrNonPositiveTemperature = errors.New("non-positive temperature")
	ErrUnbalancedReaction     = errors.New("reaction does not conserve mass")
)

/*
EOS is the equation of state contract used by the flow solver. Energies are
specific internal energies (J/kg) including formation energy, Y are species
mass fractions. Implementations must be safe for concurrent use.
*/
type EOS interface {
	NumSpecies() int
	SpeciesNames() []string
	MolecularWeights() []float64
	// EY2T inverts e(T, Y) starting from Tguess
	EY2T(e float64, Y []float64, Tguess float64) (T float64, err error)
	TY2E(T float64, Y []float64) float64
	// T2Ei fills the per-species specific energies at T
	T2Ei(T float64, ei []float64)
	TY2Cv(T float64, Y []float64) float64
	TY2Cp(T float64, Y []float64) float64
	RTY2P(rho, T float64, Y []float64) float64
	RPY2T(rho, p float64, Y []float64) (T float64, err error)
	RTY2Cs(rho, T float64, Y []float64) float64
	// Derivatives returns the first adiabatic index, the sound speed, and the
	// pressure derivatives dp/drho at constant e and dp/de at constant rho.
	Derivatives(rho, e, T float64, Y []float64) (gamc, c, dpdrE, dpde float64)
}

type Kinetics interface {
	// RTY2WDOT fills the species mass production rates in kg/(m^3 s)
	RTY2WDOT(rho, T float64, Y, wdot []float64)
}

// RhoYToY converts partial densities to mass fractions, returning their sum.
func RhoYToY(rhoY, Y []float64) (rho float64) {
	for _, v := range rhoY {
		rho += v
	}
	if rho <= 0 {
		return
	}
	for n, v := range rhoY {
		Y[n] = v / rho
	}
	return
}
