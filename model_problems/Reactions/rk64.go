package Reactions

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/reactingflow/utils"
)

// RK64Tableau holds the coefficients of a six stage, low storage embedded
// Runge-Kutta scheme.
type RK64Tableau struct {
	Alpha, Beta, Err [6]float64
}

// RK64 is shared by every cell and never modified.
var RK64 = RK64Tableau{
	Alpha: [6]float64{
		0.218150805229859,
		0.256702469801519,
		0.527402592007520,
		0.0484864267224467,
		1.24517071533530,
		0.412366034843237,
	},
	Beta: [6]float64{
		-0.113554138044166,
		-0.215118587818400,
		-0.0510152146250577,
		-1.07992686223881,
		-0.248664241213447,
		0.0,
	},
	Err: [6]float64{
		-0.0554699315064507,
		0.158481845574980,
		-0.0905918835751907,
		-0.219084567203338,
		0.164022338959433,
		0.0426421977505659,
	},
}

var (
	ErrBadStepBounds = errors.New("invalid reaction step bounds")
	ErrBadReactDt    = errors.New("reaction interval must be positive")
)

type StepBounds struct {
	NStepsMin, NStepsMax, NStepsGuess int
	ErrTol                            float64
}

func (sb StepBounds) Validate() error {
	switch {
	case sb.NStepsMin < 1, sb.NStepsGuess < 1:
		return fmt.Errorf("nsteps_min = %d, nsteps_guess = %d must be >= 1: %w",
			sb.NStepsMin, sb.NStepsGuess, ErrBadStepBounds)
	case sb.NStepsMin > sb.NStepsMax:
		return fmt.Errorf("nsteps_min = %d > nsteps_max = %d: %w",
			sb.NStepsMin, sb.NStepsMax, ErrBadStepBounds)
	case !(sb.ErrTol > 0):
		return fmt.Errorf("error tolerance %g must be positive: %w", sb.ErrTol, ErrBadStepBounds)
	}
	return nil
}

/*
AdaptTimestep returns the next internal step. Below tolerance the step grows
by (tol/err)^(1/4), with err floored at tol*1e-4, otherwise it shrinks by
(tol/err)^(1/5). The result always lies in [dtMin, dtMax].
*/
func AdaptTimestep(errNorm, dtMax, dt, dtMin, tol float64) float64 {
	if errNorm < tol {
		errNorm = math.Max(errNorm, tol*1.e-4)
		dt = math.Max(dt, math.Min(dtMax, dt*math.Sqrt(math.Sqrt(tol/errNorm))))
	} else {
		dt = math.Min(dt, math.Max(dtMin, dt*math.Pow(tol/errNorm, 0.2)))
	}
	return utils.Clamp(dt, dtMin, dtMax)
}
