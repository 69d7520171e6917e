package convOrder

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvergenceStudy(t *testing.T) {
	cs := NewConvergenceStudy("wave", 0.5)
	// second order in L1, first in max, added out of order
	for _, n := range []int{64, 16, 32} {
		h := 1. / float64(n)
		cs.Add(n, h*h, h, 3*h*h, 2*h)
	}
	for _, p := range cs.Orders(cs.RhoL1) {
		assert.InDelta(t, 2, p, 1.e-12)
	}
	for _, p := range cs.Orders(cs.PLInf) {
		assert.InDelta(t, 1, p, 1.e-12)
	}
	assert.Len(t, cs.Orders(cs.RhoL1), 2)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, cs))
	studies, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Contains(t, studies, "wave")
	assert.True(t, cmp.Equal(cs, studies["wave"], cmpopts.EquateApprox(0, 1.e-15)),
		cmp.Diff(cs, studies["wave"]))

	_, err = ReadCSV(bytes.NewBufferString("Title\nwave,1\n"))
	assert.Error(t, err)
}

func TestNorms(t *testing.T) {
	l1, lInf := Norms([]float64{1, 2, 3, 4}, []float64{1, 2.5, 2, 4})
	assert.Equal(t, 0.375, l1)
	assert.Equal(t, 1., lInf)
	l1, lInf = Norms(nil, nil)
	assert.Zero(t, l1)
	assert.Zero(t, lInf)
	assert.False(t, math.IsNaN(l1))
}
