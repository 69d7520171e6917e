package ReactingFlow

import (
	"fmt"
	"math"
	"strings"
)

type LimiterType uint8

const (
	LIMITER_MinMod LimiterType = iota
	LIMITER_VanLeer
	LIMITER_MC
)

var (
	LimiterNames = map[string]LimiterType{
		"minmod":  LIMITER_MinMod,
		"vanleer": LIMITER_VanLeer,
		"mc":      LIMITER_MC,
	}
	LimiterPrintNames = []string{"MinMod", "Van Leer", "Monotonized Central"}
)

func (lt LimiterType) Print() (txt string) {
	txt = LimiterPrintNames[lt]
	return
}

func NewLimiterType(label string) (lt LimiterType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if len(label) == 0 {
		return LIMITER_MC
	}
	if lt, ok = LimiterNames[label]; !ok {
		err = fmt.Errorf("unable to use limiter named %s", label)
		panic(err)
	}
	return
}

// Slope returns the limited cell slope from the left and right differences.
// Every variant returns zero at an extremum.
func (lt LimiterType) Slope(dl, dr float64) float64 {
	if dl*dr <= 0 {
		return 0
	}
	switch lt {
	case LIMITER_VanLeer:
		return 2 * dl * dr / (dl + dr)
	case LIMITER_MC:
		return math.Copysign(math.Min(0.5*math.Abs(dl+dr),
			2*math.Min(math.Abs(dl), math.Abs(dr))), dl)
	default:
		return math.Copysign(math.Min(math.Abs(dl), math.Abs(dr)), dl)
	}
}
