package Solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/reactingflow/InputParameters"
	"github.com/notargets/reactingflow/isentropic_vortex"
	"github.com/notargets/reactingflow/utils"
)

type InitType uint8

const (
	INIT_Uniform InitType = iota
	INIT_ShockTube
	INIT_Hotspot
	INIT_DensityWave
	INIT_Vortex
)

var (
	InitNames = map[string]InitType{
		"uniform":     INIT_Uniform,
		"freestream":  INIT_Uniform,
		"shocktube":   INIT_ShockTube,
		"sod":         INIT_ShockTube,
		"hotspot":     INIT_Hotspot,
		"ignition":    INIT_Hotspot,
		"densitywave": INIT_DensityWave,
		"vortex":      INIT_Vortex,
	}
	InitPrintNames = []string{"Uniform", "ShockTube", "Hotspot", "DensityWave", "Vortex"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
		panic(err)
	}
	return
}

// DensityWaveAmplitude is the relative density perturbation of a density
// wave.
const DensityWaveAmplitude = 0.2

// VortexStrength is the strength of the isentropic vortex.
const VortexStrength = 5.

// hotspotWidth is the Gaussian radius of the hot spot as a fraction of the
// domain diagonal.
const hotspotWidth = 0.1

/*
initialize fills the valid cells. A shock tube puts Initial left of the
x mid plane and Right beyond it. A hot spot doubles the Initial
temperature at the domain centre at constant pressure. A density wave
modulates the Initial density sinusoidally along x at constant pressure and
velocity, one period across the domain. A vortex puts an isentropic vortex
at the domain centre of a 2D calorically perfect gas, scaled by the Initial
density and pressure and convected by the Initial x velocity.
*/
func (s *Solver) initialize() (err error) {
	var (
		ip    = s.Input
		geom  = s.Level.Geom
		dim   = geom.Dim()
		it    = NewInitType(ip.InitType)
		left  []float64
		right []float64
		mid   [3]float64
		diag  float64
	)
	if left, err = ip.Initial.Cons(s.EOS); err != nil {
		return fmt.Errorf("initial state: %w", err)
	}
	for d := 0; d < dim; d++ {
		mid[d] = 0.5 * (geom.ProbLo[d] + geom.ProbHi[d])
		diag += utils.POW(geom.ProbHi[d]-geom.ProbLo[d], 2)
	}
	diag = math.Sqrt(diag)
	switch it {
	case INIT_ShockTube:
		if ip.Right == nil {
			return fmt.Errorf("shock tube needs a Right state")
		}
		if right, err = ip.Right.Cons(s.EOS); err != nil {
			return fmt.Errorf("right state: %w", err)
		}
	case INIT_Hotspot:
		if !(ip.Initial.T > 0) {
			return fmt.Errorf("hot spot needs an Initial temperature")
		}
	case INIT_DensityWave:
		if !(ip.Initial.Rho > 0) {
			return fmt.Errorf("density wave needs an Initial density")
		}
	case INIT_Vortex:
		switch {
		case dim < 2:
			return fmt.Errorf("vortex needs a 2D or 3D domain")
		case !(ip.Gas.Gamma > 1) || len(ip.Gas.Species) != 0:
			return fmt.Errorf("vortex needs a calorically perfect gas")
		case !(ip.Initial.Rho > 0):
			return fmt.Errorf("vortex needs an Initial density")
		}
	}
	for _, p := range s.Level.Patches {
		p.Box.ForEach(func(i, j, k int) {
			if err != nil {
				return
			}
			x := geom.CellCenter(i, j, k)
			switch it {
			case INIT_ShockTube:
				if x[0] > mid[0] {
					p.State.SetCell(i, j, k, right)
					return
				}
			case INIT_Hotspot:
				var r2 float64
				for d := 0; d < dim; d++ {
					r2 += utils.POW(x[d]-mid[d], 2)
				}
				var (
					sp = ip.Initial
					u  []float64
				)
				sp.Rho = 0
				sp.T *= 1 + math.Exp(-r2/(hotspotWidth*hotspotWidth*diag*diag))
				if u, err = sp.Cons(s.EOS); err != nil {
					return
				}
				p.State.SetCell(i, j, k, u)
				return
			case INIT_DensityWave, INIT_Vortex:
				var (
					sp InputParameters.StateParameters
					u  []float64
				)
				if it == INIT_Vortex {
					sp = s.vortex(x[0], x[1], 0)
				} else {
					sp = s.densityWave(x[0], 0)
				}
				if u, err = sp.Cons(s.EOS); err != nil {
					return
				}
				p.State.SetCell(i, j, k, u)
				return
			}
			p.State.SetCell(i, j, k, left)
		})
		if err != nil {
			return
		}
	}
	return
}

// densityWave is the density wave state at x after it has travelled for
// time t.
func (s *Solver) densityWave(x, t float64) (sp InputParameters.StateParameters) {
	var (
		geom = s.Level.Geom
		L    = geom.ProbHi[0] - geom.ProbLo[0]
		u    float64
	)
	sp = s.Input.Initial
	if len(sp.Vel) != 0 {
		u = sp.Vel[0]
	}
	sp.T = 0
	sp.Rho *= 1 + DensityWaveAmplitude*math.Sin(2*math.Pi*(x-u*t-geom.ProbLo[0])/L)
	return
}

// vortex is the isentropic vortex state at (x, y) and time t. Density,
// pressure and velocity scale with the Initial state, time with the
// freestream sqrt(P/Rho).
func (s *Solver) vortex(x, y, t float64) (sp InputParameters.StateParameters) {
	var (
		geom = s.Level.Geom
		ip   = s.Input
		a    = math.Sqrt(ip.Initial.P / ip.Initial.Rho)
		ufs  float64
	)
	if len(ip.Initial.Vel) != 0 {
		ufs = ip.Initial.Vel[0] / a
	}
	iv := isentropic_vortex.NewIVortex(VortexStrength,
		0.5*(geom.ProbLo[0]+geom.ProbHi[0]), 0.5*(geom.ProbLo[1]+geom.ProbHi[1]), ip.Gas.Gamma, ufs)
	if geom.Periodic[0] {
		iv.Lx = geom.ProbHi[0] - geom.ProbLo[0]
	}
	rho, u, v, p := iv.GetState(t*a, x, y)
	sp = InputParameters.StateParameters{
		Rho: rho * ip.Initial.Rho,
		P:   p * ip.Initial.P,
		Vel: []float64{u * a, v * a},
		Y:   ip.Initial.Y,
	}
	return
}

// ExactDensity returns the exact density at the current time along the
// line sampled by LineProfile. Only the density wave and the vortex have
// one.
func (s *Solver) ExactDensity(X []float64) (rho []float64, err error) {
	it := NewInitType(s.Input.InitType)
	if it != INIT_DensityWave && it != INIT_Vortex {
		return nil, fmt.Errorf("no exact solution for %s", it.Print())
	}
	jk := s.midLine()
	y := s.Level.Geom.CellCenter(s.Level.Geom.Domain.Lo[0], jk[1], jk[2])[1]
	rho = make([]float64, len(X))
	for i, x := range X {
		if it == INIT_Vortex {
			rho[i] = s.vortex(x, y, s.Time).Rho
		} else {
			rho[i] = s.densityWave(x, s.Time).Rho
		}
	}
	return
}

// ParseInput reads a YAML run description.
func ParseInput(data []byte) (ip *InputParameters.InputParameters, err error) {
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	return
}
