package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestriction(t *testing.T) {
	{ // Two fine faces per coarse face, one dropped entry
		R, err := NewRestriction(2, []int{0, 0, 1, 1, -1}, 1)
		require.NoError(t, err)
		coarse := []float64{10, 20}
		R.AddTo(coarse, []float64{1, 2, 3, 4, 100}, 0.5)
		assert.InDeltaSlice(t, []float64{11.5, 23.5}, coarse, 1.e-14)
	}
	{ // Bad maps are rejected
		_, err := NewRestriction(1, []int{0, 3}, 1)
		assert.Error(t, err)
		_, err = NewRestriction(0, []int{}, 1)
		assert.Error(t, err)
	}
	{ // Dimension mismatch panics
		R, err := NewRestriction(1, []int{0, 0}, 1)
		require.NoError(t, err)
		assert.Panics(t, func() { R.AddTo([]float64{0}, []float64{1}, 1) })
	}
}
