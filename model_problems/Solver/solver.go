package Solver

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/reactingflow/InputParameters"
	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/model_problems/Reactions"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/utils"
)

/*
Solver advances a single level: each step fills the halos, builds the hydro
source, applies it, then optionally integrates the chemistry over the step
with the hydro source as forcing. The reaction rates of one step feed the
hydro predictor of the next.
*/
type Solver struct {
	Input    *InputParameters.InputParameters
	EOS      *thermo.IdealGasMixture
	Kinetics *thermo.ArrheniusMechanism
	Hydro    *rf.Hydro
	React    *Reactions.Integrator
	Level    *grid.Level
	HL       *rf.HydroLevel
	Time     float64
	Steps    int
	ir       []*grid.Field // reaction rates over the grown patch boxes
	cost     []*grid.Field
	logger   *zap.Logger
}

func NewSolver(ip *InputParameters.InputParameters, logger *zap.Logger) (s *Solver, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s = &Solver{Input: ip, logger: logger}
	if s.EOS, s.Kinetics, err = ip.EOS(); err != nil {
		return nil, err
	}
	var (
		params rf.Params
		geom   grid.Geometry
		ns     = s.EOS.NumSpecies()
	)
	if params, err = ip.HydroParams(s.EOS); err != nil {
		return nil, err
	}
	if geom, err = ip.Geometry(); err != nil {
		return nil, err
	}
	s.Hydro = rf.NewHydro(s.EOS, params, logger)
	if ip.DoReact {
		if s.React, err = Reactions.NewIntegrator(s.EOS, s.Kinetics, ip.StepBounds(), true, logger); err != nil {
			return nil, err
		}
	}
	if s.Level, err = grid.NewLevel(0, geom, grid.IntVect{1, 1, 1}, ip.PatchBoxes(geom.Domain),
		rf.NVar(ns), rf.NGROW); err != nil {
		return nil, err
	}
	s.HL = rf.NewHydroLevel(s.Level, ns, true)
	s.ir = make([]*grid.Field, len(s.Level.Patches))
	s.cost = make([]*grid.Field, len(s.Level.Patches))
	for n, p := range s.Level.Patches {
		s.ir[n] = grid.NewField(p.State.Box, ns+1)
		s.cost[n] = grid.NewField(p.Box, 1)
		s.HL.Sources[n].React = s.ir[n]
	}
	if err = s.initialize(); err != nil {
		return nil, err
	}
	logger.Info("solver ready", zap.String("title", ip.Title), zap.Int("patches", len(s.Level.Patches)),
		zap.Int("species", ns), zap.String("flux", params.FluxType.Print()))
	return
}

func (s *Solver) state(p *grid.Patch) *grid.Field { return p.State }

// EstimateDt is the CFL limited step over all valid cells.
func (s *Solver) EstimateDt() (dt float64, err error) {
	var (
		dim   = s.Level.Geom.Dim()
		dx    = s.Level.Geom.CellSize()
		ns    = s.EOS.NumSpecies()
		rates = make([]float64, 0, len(s.Level.Patches))
	)
	for _, p := range s.Level.Patches {
		var (
			u       = make([]float64, rf.NVar(ns))
			q       = make([]float64, rf.QVar(ns))
			qa      = make([]float64, rf.NQAUX)
			Y       = make([]float64, ns)
			maxRate float64
		)
		p.Box.ForEach(func(i, j, k int) {
			if err != nil {
				return
			}
			p.State.Cell(i, j, k, u)
			if err = rf.ConsToPrim(s.EOS, u, q, qa, Y); err != nil {
				err = fmt.Errorf("patch %d cell (%d,%d,%d): %w", p.ID, i, j, k, err)
				return
			}
			var rate float64
			for d := 0; d < dim; d++ {
				rate = math.Max(rate, (math.Abs(q[rf.QU+d])+qa[rf.QC])/dx[d])
			}
			maxRate = math.Max(maxRate, rate)
		})
		if err != nil {
			return
		}
		rates = append(rates, maxRate)
	}
	dt = s.Input.CFL / floats.Max(rates)
	return
}

/*
Advance takes one step of size dt. With reactions on, the chemistry
integrates from the pre-step state under the hydro forcing and its result
replaces the hydro-only update.
*/
func (s *Solver) Advance(ctx context.Context, dt float64) (diag rf.Diagnostics, err error) {
	var (
		lev    = s.Level
		bc     = s.Hydro.Params.BC
		react  = s.React != nil
		fields []Reactions.PatchFields
	)
	lev.FillBoundary(s.state, bc, rf.MomComps)
	if react {
		lev.FillBoundary(func(p *grid.Patch) *grid.Field { return s.ir[p.ID] }, bc, [3]int{-1, -1, -1})
	}
	if diag, err = s.Hydro.ConstructHydroSource(ctx, s.HL, s.Time, dt, 0, 1); err != nil {
		return
	}
	for n, p := range lev.Patches {
		if react {
			fields = append(fields, Reactions.PatchFields{
				Old:     p.State.Clone(),
				New:     p.State,
				Forcing: s.HL.HydroSource[n],
				IR:      s.ir[n],
				Cost:    s.cost[n],
			})
		}
		p.State.Saxpy(dt, s.HL.HydroSource[n], p.Box)
	}
	if react {
		if diag.ReactCost, err = s.React.ReactLevel(ctx, lev, fields, dt); err != nil {
			return
		}
	}
	if err = s.computeTemp(); err != nil {
		return
	}
	s.Time += dt
	s.Steps++
	return
}

// computeTemp brings the temperature component in line with the energy.
func (s *Solver) computeTemp() error {
	ns := s.EOS.NumSpecies()
	for _, p := range s.Level.Patches {
		var (
			u  = make([]float64, rf.NVar(ns))
			q  = make([]float64, rf.QVar(ns))
			qa = make([]float64, rf.NQAUX)
			Y  = make([]float64, ns)
		)
		var err error
		p.Box.ForEach(func(i, j, k int) {
			if err != nil {
				return
			}
			p.State.Cell(i, j, k, u)
			if err = rf.ConsToPrim(s.EOS, u, q, qa, Y); err != nil {
				err = fmt.Errorf("patch %d cell (%d,%d,%d): %w", p.ID, i, j, k, err)
				return
			}
			p.State.Set(i, j, k, rf.UTEMP, q[rf.QTEMP])
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Run advances to the final time or the step limit, calling onStep after
// every step when it is non-nil.
func (s *Solver) Run(ctx context.Context, onStep func(s *Solver, diag rf.Diagnostics)) (err error) {
	var (
		ip = s.Input
	)
	for s.Time < ip.FinalTime && !utils.ApproxEqual(s.Time, ip.FinalTime, 1.e-12) &&
		(ip.MaxSteps == 0 || s.Steps < ip.MaxSteps) {
		if err = ctx.Err(); err != nil {
			return
		}
		var (
			dt   float64
			diag rf.Diagnostics
		)
		if dt, err = s.EstimateDt(); err != nil {
			return
		}
		dt = math.Min(dt, ip.FinalTime-s.Time)
		if diag, err = s.Advance(ctx, dt); err != nil {
			return fmt.Errorf("step %d, time %g: %w", s.Steps, s.Time, err)
		}
		s.logger.Debug("step", zap.Int("step", s.Steps), zap.Float64("time", s.Time),
			zap.Float64("dt", dt), zap.Float64("cfl", diag.CFL), zap.Float64("react_cost", diag.ReactCost))
		if onStep != nil {
			onStep(s, diag)
		}
	}
	s.logger.Info("run complete", zap.Int("steps", s.Steps), zap.Float64("time", s.Time))
	return
}

// Totals integrates each conserved component over the valid cells.
func (s *Solver) Totals() (tot []float64) {
	var (
		geom = s.Level.Geom
		nv   = rf.NVar(s.EOS.NumSpecies())
	)
	tot = make([]float64, nv)
	for _, p := range s.Level.Patches {
		p.Box.ForEach(func(i, j, k int) {
			vol := geom.CellVolume(i, j, k)
			for n := 0; n < nv; n++ {
				tot[n] += vol * p.State.At(i, j, k, n)
			}
		})
	}
	return
}

func (s *Solver) midLine() (jk [3]int) {
	dom := s.Level.Geom.Domain
	for d := 1; d < dom.Dim; d++ {
		jk[d] = (dom.Lo[d] + dom.Hi[d]) / 2
	}
	return
}

// LineProfile samples density, pressure, x velocity and temperature along
// the x direction through the middle of the domain.
func (s *Solver) LineProfile() (X, Rho, P, U, T []float64, err error) {
	var (
		geom = s.Level.Geom
		dom  = geom.Domain
		ns   = s.EOS.NumSpecies()
		jk   = s.midLine()
		u    = make([]float64, rf.NVar(ns))
		q    = make([]float64, rf.QVar(ns))
		qa   = make([]float64, rf.NQAUX)
		Y    = make([]float64, ns)
	)
	for i := dom.Lo[0]; i <= dom.Hi[0]; i++ {
		iv := grid.IntVect{i, jk[1], jk[2]}
		p := s.Level.Owner(iv)
		if p == nil {
			continue
		}
		p.State.Cell(iv[0], iv[1], iv[2], u)
		if err = rf.ConsToPrim(s.EOS, u, q, qa, Y); err != nil {
			return
		}
		X = append(X, geom.CellCenter(iv[0], iv[1], iv[2])[0])
		Rho = append(Rho, q[rf.QRHO])
		P = append(P, q[rf.QPRES])
		U = append(U, q[rf.QU])
		T = append(T, q[rf.QTEMP])
	}
	return
}
