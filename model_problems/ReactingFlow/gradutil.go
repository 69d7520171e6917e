package ReactingFlow

import "github.com/notargets/reactingflow/grid"

// Components of the tangential derivative field: velocity component c
// differentiated along the m'th tangential direction is 3*m+c.
const NTangential = 6

// tangentialDirs are the two directions normal to dir, in increasing order.
func tangentialDirs(dir int) (t [2]int) {
	n := 0
	for d := 0; d < 3; d++ {
		if d != dir {
			t[n] = d
			n++
		}
	}
	return
}

/*
TangentialVelocityDerivs computes velocity derivatives along the face on
every dir-face of fb. Each is a four point average over the two cells
sharing the face. Tangential directions beyond the problem dimension are
left zero. The primitive field must cover one cell beyond fb transversely.
*/
func TangentialVelocityDerivs(q *grid.Field, fb grid.Box, dir int, dx [3]float64) (td *grid.Field) {
	var (
		dim = fb.Dim
		tds = tangentialDirs(dir)
		n   = grid.Unit(dir)
	)
	td = grid.NewField(fb, NTangential)
	grid.ParallelFor(fb, func(i, j, k int) {
		c := grid.IntVect{i, j, k}
		cm := c.Sub(n)
		for m, t := range tds {
			if t >= dim {
				continue
			}
			var (
				e     = grid.Unit(t)
				scale = 0.25 / dx[t]
			)
			for vc := 0; vc < 3; vc++ {
				comp := QU + vc
				val := q.AtIV(c.Add(e), comp) + q.AtIV(cm.Add(e), comp) -
					q.AtIV(c.Sub(e), comp) - q.AtIV(cm.Sub(e), comp)
				td.Set(i, j, k, 3*m+vc, scale*val)
			}
		}
	})
	return
}
