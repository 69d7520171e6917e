package Reactions

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/reactingflow/grid"
	rf "github.com/notargets/reactingflow/model_problems/ReactingFlow"
	"github.com/notargets/reactingflow/utils"
)

// PatchFields are the per-patch arrays the reaction step reads and writes.
// IR has NumSpecies+1 components and Cost one.
type PatchFields struct {
	Old, New, Forcing *grid.Field
	IR, Cost          *grid.Field
}

func (it *Integrator) cellPool() *sync.Pool {
	ns := it.EOS.NumSpecies()
	return &sync.Pool{New: func() any { return NewCell(ns) }}
}

// ReactPatch integrates every cell of the valid box b and returns the
// summed cost.
func (it *Integrator) ReactPatch(b grid.Box, pf PatchFields, dtReact float64) (cost float64, err error) {
	var (
		ns   = it.EOS.NumSpecies()
		pool = it.cellPool()
	)
	if pf.IR.NComp != ns+1 || pf.Old.NComp != rf.NVar(ns) {
		err = fmt.Errorf("reaction fields have %d state and %d rate components, need %d and %d",
			pf.Old.NComp, pf.IR.NComp, rf.NVar(ns), ns+1)
		return
	}
	err = grid.ParallelForErr(b, func(i, j, k int) error {
		c := pool.Get().(*Cell)
		defer pool.Put(c)
		pf.Old.Cell(i, j, k, c.Old)
		pf.New.Cell(i, j, k, c.New)
		pf.Forcing.Cell(i, j, k, c.Forcing)
		steps, err := it.Integrate(c, dtReact)
		if err != nil {
			return fmt.Errorf("cell (%d,%d,%d): %w", i, j, k, err)
		}
		if it.DoUpdate {
			pf.New.SetCell(i, j, k, c.New)
		}
		pf.IR.SetCell(i, j, k, c.IR)
		pf.Cost.Set(i, j, k, 0, float64(steps))
		return nil
	})
	if err != nil {
		return
	}
	cost = pf.Cost.Sum(0, b)
	return
}

/*
ReactLevel runs ReactPatch over all patches of a level concurrently. Every
failing patch is reported. The returned cost is the level total.
*/
func (it *Integrator) ReactLevel(ctx context.Context, lev *grid.Level, fields []PatchFields,
	dtReact float64) (cost float64, err error) {
	if len(fields) != len(lev.Patches) {
		err = fmt.Errorf("have fields for %d patches, level %d has %d", len(fields), lev.Lev, len(lev.Patches))
		return
	}
	var (
		np    = len(lev.Patches)
		costs = make([]float64, np)
		errs  = make([]error, np)
		g, gc = errgroup.WithContext(ctx)
	)
	g.SetLimit(utils.ParallelDegree(0, np))
	for n, p := range lev.Patches {
		g.Go(func() error {
			if err := gc.Err(); err != nil {
				errs[n] = err
				return nil
			}
			c, err := it.ReactPatch(p.Box, fields[n], dtReact)
			if err != nil {
				errs[n] = fmt.Errorf("level %d patch %d: %w", lev.Lev, p.ID, err)
				return nil
			}
			costs[n] = c
			it.logger.Debug("patch reacted", zap.Int("level", lev.Lev), zap.Int("patch", p.ID),
				zap.Float64("cost", c))
			return nil
		})
	}
	_ = g.Wait()
	if err = multierr.Combine(errs...); err != nil {
		return
	}
	for _, c := range costs {
		cost += c
	}
	it.logger.Info("reactions", zap.Int("level", lev.Lev), zap.Float64("dt", dtReact),
		zap.Float64("cost", cost))
	return
}
