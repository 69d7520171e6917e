package ReactingFlow

import (
	"fmt"
	"math"
)

// Components of the added and lost diagnostic sums
const (
	DiagMass = iota
	DiagXMom
	DiagYMom
	DiagZMom
	DiagEnergy
	DiagXAngMom
	DiagYAngMom
	DiagZAngMom
	NDiagLost
	NDiagAdded = DiagEnergy + 1
)

var DiagNames = []string{"mass", "xmom", "ymom", "zmom", "energy", "xang", "yang", "zang"}

/*
Diagnostics are the per-patch partial results of one advance. Added is the
volume and time integrated hydro update, Lost the time integrated outward
flux through physical domain faces. Partial results from any number of
patches reduce with Combine in any order.
*/
type Diagnostics struct {
	CFL       float64
	Added     [NDiagAdded]float64
	Lost      [NDiagLost]float64
	ReactCost float64
}

func (d Diagnostics) Combine(o Diagnostics) (r Diagnostics) {
	r.CFL = math.Max(d.CFL, o.CFL)
	for n := range r.Added {
		r.Added[n] = d.Added[n] + o.Added[n]
	}
	for n := range r.Lost {
		r.Lost[n] = d.Lost[n] + o.Lost[n]
	}
	r.ReactCost = d.ReactCost + o.ReactCost
	return
}

func CombineDiagnostics(ds ...Diagnostics) (r Diagnostics) {
	for _, d := range ds {
		r = r.Combine(d)
	}
	return
}

func (d Diagnostics) Print() {
	fmt.Printf("Max CFL = %8.5f, Reaction cost = %g\n", d.CFL, d.ReactCost)
	fmt.Printf("%-8s%16s%16s\n", "", "Added", "Lost")
	for n := 0; n < NDiagLost; n++ {
		if n < NDiagAdded {
			fmt.Printf("%-8s%16.8g%16.8g\n", DiagNames[n], d.Added[n], d.Lost[n])
		} else {
			fmt.Printf("%-8s%16s%16.8g\n", DiagNames[n], "", d.Lost[n])
		}
	}
}
