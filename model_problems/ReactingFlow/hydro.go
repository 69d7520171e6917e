package ReactingFlow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/reactingflow/grid"
	"github.com/notargets/reactingflow/thermo"
	"github.com/notargets/reactingflow/types"
	"github.com/notargets/reactingflow/utils"
)

var (
	ErrRefluxNonCartesian  = errors.New("refluxing is not implemented for non-Cartesian geometry")
	ErrCFLTooHigh          = errors.New("CFL number exceeds the hard limit of 1")
	ErrUnsupportedCoordSys = errors.New("unsupported coordinate system")
	ErrNoFluxRegister      = errors.New("flux register required for refluxing is missing")
)

// FluxRegister accumulates the face fluxes of one level at a coarse-fine
// interface. The coarse side calls CrseAdd, the fine side FineAdd.
type FluxRegister interface {
	CrseAdd(p *grid.Patch, fluxes [3]*grid.Field, dt float64) error
	FineAdd(p *grid.Patch, fluxes [3]*grid.Field, dt float64) error
}

type Params struct {
	FluxType     FluxType
	Limiter      LimiterType
	UseNSCBC     bool
	CharBC       CharBCParams
	BC           grid.BCRec
	HardCFLLimit bool
	DoReflux     bool
	DoReact      bool
	ProcLimit    int // patch workers, 0 is one per CPU
}

func DefaultParams() Params {
	return Params{
		FluxType: FLUX_HLLC,
		Limiter:  LIMITER_MC,
		CharBC:   DefaultCharBCParams(),
	}
}

func (p Params) Print() {
	fmt.Printf("Flux = %s, Limiter = %s, NSCBC = %v, Hard CFL limit = %v, Reflux = %v, React = %v\n",
		p.FluxType.Print(), p.Limiter.Print(), p.UseNSCBC, p.HardCFLLimit, p.DoReflux, p.DoReact)
	for d := 0; d < 3; d++ {
		fmt.Printf("BC[%d] = [%s, %s]\n", d, p.BC[d][grid.Lo].Print(), p.BC[d][grid.Hi].Print())
	}
}

// PatchSources are conserved space source snapshots over the grown box of
// one patch. React holds the species and energy production rates and is
// only read when reactions are on.
type PatchSources struct {
	Old, New []*grid.Field
	React    *grid.Field
}

/*
HydroLevel is everything ConstructHydroSource reads and writes for one
level. HydroSource and Fluxes are per patch outputs over the valid box and
its faces. Crse is the register shared with the next finer level, Fine the
one shared with the next coarser level.
*/
type HydroLevel struct {
	Level       *grid.Level
	Finest      bool
	Sources     []PatchSources
	HydroSource []*grid.Field
	Fluxes      [][3]*grid.Field
	Crse, Fine  FluxRegister
}

// NewHydroLevel allocates the output fields of every patch.
func NewHydroLevel(lev *grid.Level, nSpec int, finest bool) (hl *HydroLevel) {
	hl = &HydroLevel{
		Level:       lev,
		Finest:      finest,
		Sources:     make([]PatchSources, len(lev.Patches)),
		HydroSource: make([]*grid.Field, len(lev.Patches)),
		Fluxes:      make([][3]*grid.Field, len(lev.Patches)),
	}
	for n, p := range lev.Patches {
		hl.HydroSource[n] = grid.NewField(p.Box, NVar(nSpec))
		for d := 0; d < lev.Geom.Dim(); d++ {
			hl.Fluxes[n][d] = grid.NewField(p.Box.SurroundingNodes(d), NVar(nSpec))
		}
	}
	return
}

type Hydro struct {
	EOS    thermo.EOS
	Params Params
	logger *zap.Logger
}

func NewHydro(eos thermo.EOS, params Params, logger *zap.Logger) *Hydro {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hydro{EOS: eos, Params: params, logger: logger}
}

/*
ConstructHydroSource computes the hydro update rate of every patch of a
level over one step of size dt starting at time. Patches run concurrently
and all of them must succeed. The fluxes go to the flux registers on the
last sub-cycle of the step.
*/
func (h *Hydro) ConstructHydroSource(ctx context.Context, hl *HydroLevel, time, dt float64,
	subIteration, subNCycle int) (diag Diagnostics, err error) {
	var (
		lev    = hl.Level
		geom   = lev.Geom
		np     = len(lev.Patches)
		reflux = h.Params.DoReflux && subIteration == subNCycle-1
	)
	switch geom.Coord {
	case types.Cartesian, types.RZ:
	default:
		err = fmt.Errorf("%s: %w", geom.Coord.Print(), ErrUnsupportedCoordSys)
		return
	}
	if h.Params.DoReflux && !geom.IsCartesian() {
		err = fmt.Errorf("%s geometry: %w", geom.Coord.Print(), ErrRefluxNonCartesian)
		return
	}
	if reflux && ((!hl.Finest && hl.Crse == nil) || (lev.Lev > 0 && hl.Fine == nil)) {
		err = fmt.Errorf("level %d: %w", lev.Lev, ErrNoFluxRegister)
		return
	}
	if lev.NGrow < NGROW {
		err = fmt.Errorf("level %d has %d halo cells, need %d", lev.Lev, lev.NGrow, NGROW)
		return
	}
	if len(hl.Sources) != np || len(hl.HydroSource) != np || len(hl.Fluxes) != np {
		err = fmt.Errorf("level %d has %d patches, have %d sources, %d outputs and %d flux sets",
			lev.Lev, np, len(hl.Sources), len(hl.HydroSource), len(hl.Fluxes))
		return
	}

	var (
		diags = make([]Diagnostics, np)
		errs  = make([]error, np)
		g, gc = errgroup.WithContext(ctx)
	)
	g.SetLimit(utils.ParallelDegree(h.Params.ProcLimit, np))
	for n, p := range lev.Patches {
		g.Go(func() error {
			if err := gc.Err(); err != nil {
				errs[n] = err
				return nil
			}
			d, err := h.patchSource(hl, n, time, dt)
			if err != nil {
				errs[n] = fmt.Errorf("level %d patch %d: %w", lev.Lev, p.ID, err)
				return nil
			}
			diags[n] = d
			h.logger.Debug("patch hydro source", zap.Int("level", lev.Lev), zap.Int("patch", p.ID),
				zap.Float64("cfl", d.CFL))
			return nil
		})
	}
	_ = g.Wait()
	if err = multierr.Combine(errs...); err != nil {
		return
	}
	diag = CombineDiagnostics(diags...)
	h.logger.Info("hydro source", zap.Int("level", lev.Lev), zap.Float64("time", time),
		zap.Float64("dt", dt), zap.Float64("cfl", diag.CFL))
	if diag.CFL > 1 {
		h.logger.Warn("effective CFL at this level", zap.Int("level", lev.Lev), zap.Float64("cfl", diag.CFL))
		if h.Params.HardCFLLimit {
			err = fmt.Errorf("level %d CFL = %g: %w", lev.Lev, diag.CFL, ErrCFLTooHigh)
			return
		}
	}
	if reflux {
		err = h.addToRegisters(hl, dt)
	}
	return
}

func (h *Hydro) addToRegisters(hl *HydroLevel, dt float64) (err error) {
	for n, p := range hl.Level.Patches {
		if !hl.Finest {
			err = multierr.Append(err, hl.Crse.CrseAdd(p, hl.Fluxes[n], dt))
		}
		if hl.Level.Lev > 0 {
			err = multierr.Append(err, hl.Fine.FineAdd(p, hl.Fluxes[n], dt))
		}
	}
	return
}

// patchSource runs the per patch pipeline: source blending, primitive
// reconstruction, boundary enforcement, source projection and the update.
func (h *Hydro) patchSource(hl *HydroLevel, n int, time, dt float64) (diag Diagnostics, err error) {
	var (
		p    = hl.Level.Patches[n]
		geom = hl.Level.Geom
		ns   = h.EOS.NumSpecies()
		qbx  = p.Box.Grow(NGROW)
		q    = grid.NewField(qbx, QVar(ns))
		qaux = grid.NewField(qbx, NQAUX)
		src  = grid.NewField(qbx, NVar(ns))
		srcq = grid.NewField(qbx, QVar(ns))
		ps   = hl.Sources[n]
	)
	var react *grid.Field
	if h.Params.DoReact {
		react = ps.React
	}
	BlendSources(qbx, src, ps.Old, ps.New, react, ns)
	if err = Ctoprim(h.EOS, qbx, p.State, q, qaux); err != nil {
		return
	}
	mask := SetBCMask(qbx, geom, h.Params.BC)
	if h.Params.UseNSCBC {
		variant := SelectNSCBC(geom.Dim(), geom.IsAnyPeriodic())
		err = variant.apply(&nscbcArgs{
			eos:    h.EOS,
			geom:   geom,
			valid:  p.Box,
			qbx:    qbx,
			q:      q,
			qaux:   qaux,
			mask:   mask,
			bc:     h.Params.BC,
			params: h.Params.CharBC,
			time:   time,
			dt:     dt,
		})
		if err != nil {
			err = fmt.Errorf("%s characteristic boundaries: %w", variant.Print(), err)
			return
		}
	}
	SrcToPrim(qbx, q, qaux, src, srcq, ns)
	uk := UpdateKernel{
		EOS:     h.EOS,
		Geom:    geom,
		Flux:    h.Params.FluxType,
		Limiter: h.Params.Limiter,
	}
	return uk.Umdrv(&PatchUpdate{
		Valid:  p.Box,
		Q:      q,
		QAux:   qaux,
		SrcQ:   srcq,
		Mask:   mask,
		Hydro:  hl.HydroSource[n],
		Fluxes: hl.Fluxes[n],
	}, dt)
}
