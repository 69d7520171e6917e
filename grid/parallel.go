package grid

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/reactingflow/utils"
)

// outerDir is the slowest varying active direction of a box.
func outerDir(b Box) int { return b.Dim - 1 }

func partition(b Box) (pm *utils.PartitionMap, d int) {
	d = outerDir(b)
	n := b.Length(d)
	pm = utils.NewPartitionMap(utils.ParallelDegree(runtime.NumCPU(), n), n)
	return
}

func slab(b Box, d int, pm *utils.PartitionMap, np int) Box {
	kMin, kMax := pm.GetBucketRange(np)
	s := b
	s.Lo[d] = b.Lo[d] + kMin
	s.Hi[d] = b.Lo[d] + kMax - 1
	return s
}

/*
ParallelFor runs fn over every index of b, sharding the slowest direction
across goroutines. Each index is visited exactly once, so writes to
per-index outputs need no locking.
*/
func ParallelFor(b Box, fn func(i, j, k int)) {
	if !b.Ok() {
		return
	}
	pm, d := partition(b)
	if pm.ParallelDegree == 1 {
		b.ForEach(fn)
		return
	}
	wg := sync.WaitGroup{}
	for np := 0; np < pm.ParallelDegree; np++ {
		s := slab(b, d, pm, np)
		if !s.Ok() {
			continue
		}
		wg.Add(1)
		go func(s Box) {
			defer wg.Done()
			s.ForEach(fn)
		}(s)
	}
	wg.Wait()
}

// ParallelForErr is ParallelFor for bodies that can fail. The first error
// stops each shard and is returned.
func ParallelForErr(b Box, fn func(i, j, k int) error) error {
	if !b.Ok() {
		return nil
	}
	pm, d := partition(b)
	var g errgroup.Group
	for np := 0; np < pm.ParallelDegree; np++ {
		s := slab(b, d, pm, np)
		if !s.Ok() {
			continue
		}
		g.Go(func() error {
			for k := s.Lo[2]; k <= s.Hi[2]; k++ {
				for j := s.Lo[1]; j <= s.Hi[1]; j++ {
					for i := s.Lo[0]; i <= s.Hi[0]; i++ {
						if err := fn(i, j, k); err != nil {
							return err
						}
					}
				}
			}
			return nil
		})
	}
	return g.Wait()
}
