package Reactions

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/thermo"
)

type Integrator struct {
	EOS      thermo.EOS
	Kinetics thermo.Kinetics
	StepBounds
	// DoUpdate writes the reacted state back into the new state
	DoUpdate bool
	logger   *zap.Logger
}

func NewIntegrator(eos thermo.EOS, kin thermo.Kinetics, sb StepBounds, doUpdate bool,
	logger *zap.Logger) (it *Integrator, err error) {
	if err = sb.Validate(); err != nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	it = &Integrator{
		EOS:        eos,
		Kinetics:   kin,
		StepBounds: sb,
		DoUpdate:   doUpdate,
		logger:     logger,
	}
	return
}

// Cell carries the vectors of one cell through an integration along with
// the scratch space the stages need. A Cell must not be shared between
// goroutines.
type Cell struct {
	// Old is the pre-reaction state, New the advected state, Forcing the
	// advective forcing rate, all in conserved layout
	Old, New, Forcing []float64
	// IR receives the species production rates followed by the energy rate
	IR []float64

	nSpec                       int
	urk, carry, rkErr           []float64
	massFrac, wdot, ei, rhoYExt []float64
}

func NewCell(nSpec int) (c *Cell) {
	nv := rf.NVar(nSpec)
	c = &Cell{
		Old:      make([]float64, nv),
		New:      make([]float64, nv),
		Forcing:  make([]float64, nv),
		IR:       make([]float64, nSpec+1),
		nSpec:    nSpec,
		urk:      make([]float64, nv),
		carry:    make([]float64, nv),
		rkErr:    make([]float64, nv),
		massFrac: make([]float64, nSpec),
		wdot:     make([]float64, nSpec),
		ei:       make([]float64, nSpec),
		rhoYExt:  make([]float64, nSpec),
	}
	return
}

func (c *Cell) errNorm() (e float64) {
	for n := 0; n < c.nSpec; n++ {
		e = math.Max(e, math.Abs(c.rkErr[rf.UFS+n]))
	}
	return math.Max(e, math.Abs(c.rkErr[rf.UTEMP]))
}

/*
Integrate advances the species and temperature of one cell through dtReact
with the embedded RK64 scheme. Energy follows the externally imposed rate
exactly, density is re-formed from the species after each stage, and
momentum takes a single explicit forcing step. The production rates in
c.IR are back computed from the total change so they account for the
reaction exactly. The number of internal steps is returned as the cost.
*/
func (it *Integrator) Integrate(c *Cell, dtReact float64) (steps int, err error) {
	var (
		ns     = c.nSpec
		old    = c.Old
		nu     = c.New
		frc    = c.Forcing
		rhoOld = old[rf.URHO]
		rho    float64
		alpha  = RK64.Alpha
		beta   = RK64.Beta
		errC   = RK64.Err
	)
	if !(dtReact > 0) {
		err = fmt.Errorf("dt = %g: %w", dtReact, ErrBadReactDt)
		return
	}
	if rhoOld <= 0 || nu[rf.URHO] <= 0 {
		err = fmt.Errorf("rho_old = %g, rho_new = %g: %w", rhoOld, nu[rf.URHO], thermo.ErrNonPositiveDensity)
		return
	}
	for n := 0; n < ns; n++ {
		rho += old[rf.UFS+n]
		c.rhoYExt[n] = frc[rf.UFS+n]
	}
	var (
		nrg        = (old[rf.UEDEN] - rf.KineticEnergy(old)) / rhoOld
		rhoeDotExt = ((nu[rf.UEDEN] - rf.KineticEnergy(nu)) - rho*nrg) / dtReact
		dt         = dtReact / float64(it.NStepsGuess)
		dtMin      = dtReact / float64(it.NStepsMax)
		dtMax      = dtReact / float64(it.NStepsMin)
		rhoeRK     = rho * nrg
		rhoeCarry  float64
		t          float64
	)
	copy(c.urk, old)
	for dtReact-t > 1.e-12*dtReact {
		dt = math.Min(dt, dtReact-t)
		copy(c.carry, c.urk)
		for n := range c.rkErr {
			c.rkErr[n] = 0
		}
		rhoeCarry = rhoeRK
		for stage := 0; stage < 6; stage++ {
			urk := c.urk
			if urk[rf.URHO] <= 0 {
				err = fmt.Errorf("stage %d, step %d, rho = %g: %w", stage, steps, urk[rf.URHO],
					thermo.ErrNonPositiveDensity)
				return
			}
			rhoInv := 1. / urk[rf.URHO]
			for n := 0; n < ns; n++ {
				c.massFrac[n] = urk[rf.UFS+n] * rhoInv
			}
			it.Kinetics.RTY2WDOT(urk[rf.URHO], urk[rf.UTEMP], c.massFrac, c.wdot)
			var Trk float64
			if Trk, err = it.EOS.EY2T(rhoeRK*rhoInv, c.massFrac, urk[rf.UTEMP]); err != nil {
				err = fmt.Errorf("stage %d, step %d: %w", stage, steps, err)
				return
			}
			it.EOS.T2Ei(Trk, c.ei)
			tempSrc := rhoeDotExt
			for n := 0; n < ns; n++ {
				c.wdot[n] += c.rhoYExt[n]
				tempSrc -= c.wdot[n] * c.ei[n]
			}
			tempSrc /= urk[rf.URHO] * it.EOS.TY2Cv(urk[rf.UTEMP], c.massFrac)

			for n := 0; n < ns; n++ {
				m := rf.UFS + n
				c.rkErr[m] += errC[stage] * dt * c.wdot[n]
				urk[m] = c.carry[m] + alpha[stage]*dt*c.wdot[n]
				c.carry[m] = urk[m] + beta[stage]*dt*c.wdot[n]
			}
			c.rkErr[rf.UTEMP] += errC[stage] * dt * tempSrc
			urk[rf.UTEMP] = c.carry[rf.UTEMP] + alpha[stage]*dt*tempSrc
			c.carry[rf.UTEMP] = urk[rf.UTEMP] + beta[stage]*dt*tempSrc
			rhoeRK = rhoeCarry + alpha[stage]*dt*rhoeDotExt
			rhoeCarry = rhoeRK + beta[stage]*dt*rhoeDotExt

			urk[rf.URHO] = 0
			for n := 0; n < ns; n++ {
				urk[rf.URHO] += urk[rf.UFS+n]
			}
		}
		t += dt
		steps++
		dt = AdaptTimestep(c.errNorm(), dtMax, dt, dtMin, it.ErrTol)
	}

	var (
		urk = c.urk
		um  [3]float64
		ke  float64
	)
	for d := 0; d < 3; d++ {
		um[d] = old[rf.UMX+d] + dtReact*frc[rf.UMX+d]
		ke += um[d] * um[d]
	}
	ke *= 0.5 / urk[rf.URHO]
	if it.DoUpdate {
		nu[rf.URHO] = urk[rf.URHO]
		nu[rf.UMX], nu[rf.UMY], nu[rf.UMZ] = um[0], um[1], um[2]
		nu[rf.UTEMP] = urk[rf.UTEMP]
		for n := 0; n < ns; n++ {
			nu[rf.UFS+n] = urk[rf.UFS+n]
		}
	}
	for n := 0; n < ns; n++ {
		c.IR[n] = (urk[rf.UFS+n]-old[rf.UFS+n])/dtReact - c.rhoYExt[n]
	}
	c.IR[ns] = (nrg*rhoOld+dtReact*rhoeDotExt+ke-old[rf.UEDEN])/dtReact - frc[rf.UEDEN]
	return
}
