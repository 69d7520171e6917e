package convOrder

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// ConvergenceStudy holds the error norms of one case run at several
// resolutions.
type ConvergenceStudy struct {
	Title          string
	CFL            float64
	NumPts         []int
	RhoL1, RhoLInf []float64
	PL1, PLInf     []float64
}

func NewConvergenceStudy(title string, CFL float64) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title: title,
		CFL:   CFL,
	}
}

func (cs *ConvergenceStudy) Add(numPts int, rhoL1, rhoLInf, pL1, pLInf float64) {
	cs.NumPts = append(cs.NumPts, numPts)
	cs.RhoL1 = append(cs.RhoL1, rhoL1)
	cs.RhoLInf = append(cs.RhoLInf, rhoLInf)
	cs.PL1 = append(cs.PL1, pL1)
	cs.PLInf = append(cs.PLInf, pLInf)
}

// Norms returns the L1 and max norms of the difference between a and b.
func Norms(a, b []float64) (l1, lInf float64) {
	for i := range a {
		d := math.Abs(a[i] - b[i])
		l1 += d
		lInf = math.Max(lInf, d)
	}
	if len(a) != 0 {
		l1 /= float64(len(a))
	}
	return
}

// Orders is the observed order between successive resolutions of an error
// sequence. The entries are sorted by resolution first.
func (cs *ConvergenceStudy) Orders(errs []float64) (orders []float64) {
	idx := make([]int, len(cs.NumPts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return cs.NumPts[idx[a]] < cs.NumPts[idx[b]] })
	for i := 1; i < len(idx); i++ {
		var (
			c, f = idx[i-1], idx[i]
			r    = float64(cs.NumPts[f]) / float64(cs.NumPts[c])
		)
		orders = append(orders, math.Log(errs[c]/errs[f])/math.Log(r))
	}
	return
}

func (cs *ConvergenceStudy) Print() {
	fmt.Printf("Title = %s, CFL = %5.2f\n", cs.Title, cs.CFL)
	fmt.Printf("%8s %12s %12s %12s %12s\n", "N", "L1(Rho)", "Max(Rho)", "L1(P)", "Max(P)")
	for i := range cs.NumPts {
		fmt.Printf("%8d %12.5e %12.5e %12.5e %12.5e\n",
			cs.NumPts[i], cs.RhoL1[i], cs.RhoLInf[i], cs.PL1[i], cs.PLInf[i])
	}
	fmt.Printf("Order L1(Rho) = %v\n", cs.Orders(cs.RhoL1))
}

var header = []string{"Title", "NumPts", "CFL", "RhoL1", "RhoLInf", "PL1", "PLInf"}

// WriteCSV appends the studies as rows under a single header.
func WriteCSV(w io.Writer, studies ...*ConvergenceStudy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, cs := range studies {
		for i := range cs.NumPts {
			rec := []string{cs.Title, strconv.Itoa(cs.NumPts[i]), f(cs.CFL),
				f(cs.RhoL1[i]), f(cs.RhoLInf[i]), f(cs.PL1[i]), f(cs.PLInf[i])}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV groups the rows written by WriteCSV back into studies keyed by
// title.
func ReadCSV(r io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var records [][]string
	if records, err = csv.NewReader(r).ReadAll(); err != nil {
		return
	}
	studies = make(map[string]*ConvergenceStudy)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, need %d", i, len(rec), len(header))
		}
		var (
			npts int
			vals [5]float64
		)
		if npts, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		for n := range vals {
			if vals[n], err = strconv.ParseFloat(rec[2+n], 64); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		cs, ok := studies[rec[0]]
		if !ok {
			cs = NewConvergenceStudy(rec[0], vals[0])
			studies[rec[0]] = cs
		}
		cs.Add(npts, vals[1], vals[2], vals[3], vals[4])
	}
	return
}
