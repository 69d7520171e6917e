package thermo

import (
	"fmt"
	"math"
)

type Stoich struct {
	Species int
	Nu      float64
}

/*
Reaction is an irreversible elementary reaction with rate
q = A * T^Beta * exp(-Ea/(Ru*T)) * prod([X_k]^Nu_k) over the reactants,
where [X_k] is the molar concentration in mol/m^3.
*/
type Reaction struct {
	A, Beta, Ea float64
	Reactants   []Stoich
	Products    []Stoich
}

type ArrheniusMechanism struct {
	reactions []Reaction
	w         []float64
	// net mass stoichiometry per reaction, (nu'' - nu')*W
	dnu [][]float64
}

func NewArrheniusMechanism(eos EOS, reactions []Reaction) (m *ArrheniusMechanism, err error) {
	var (
		ns = eos.NumSpecies()
		w  = eos.MolecularWeights()
	)
	m = &ArrheniusMechanism{
		reactions: reactions,
		w:         w,
		dnu:       make([][]float64, len(reactions)),
	}
	for r, rx := range reactions {
		m.dnu[r] = make([]float64, ns)
		var massIn, massOut float64
		for _, s := range rx.Reactants {
			if s.Species < 0 || s.Species >= ns {
				return nil, fmt.Errorf("reaction %d: reactant species %d out of range", r, s.Species)
			}
			m.dnu[r][s.Species] -= s.Nu
			massIn += s.Nu * w[s.Species]
		}
		for _, s := range rx.Products {
			if s.Species < 0 || s.Species >= ns {
				return nil, fmt.Errorf("reaction %d: product species %d out of range", r, s.Species)
			}
			m.dnu[r][s.Species] += s.Nu
			massOut += s.Nu * w[s.Species]
		}
		if math.Abs(massIn-massOut) > 1.e-10*math.Max(massIn, massOut) {
			return nil, fmt.Errorf("reaction %d: %g kg/mol in, %g kg/mol out: %w",
				r, massIn, massOut, ErrUnbalancedReaction)
		}
	}
	return
}

func (m *ArrheniusMechanism) NumReactions() int { return len(m.reactions) }

func (m *ArrheniusMechanism) RTY2WDOT(rho, T float64, Y, wdot []float64) {
	for n := range wdot {
		wdot[n] = 0
	}
	if T <= 0 {
		return
	}
	for r, rx := range m.reactions {
		q := rx.A * math.Pow(T, rx.Beta) * math.Exp(-rx.Ea/(Ru*T))
		for _, s := range rx.Reactants {
			conc := math.Max(rho*Y[s.Species]/m.w[s.Species], 0)
			q *= math.Pow(conc, s.Nu)
		}
		if q == 0 {
			continue
		}
		for n, dn := range m.dnu[r] {
			if dn != 0 {
				wdot[n] += dn * m.w[n] * q
			}
		}
	}
}
