//go:build linux

package cmd

import (
	"errors"
	"testing"

	perf "github.com/hodgesds/perf-utils"
	"github.com/stretchr/testify/assert"
)

func TestMeasure(t *testing.T) {
	saved := countInstructions
	defer func() { countInstructions = saved }()
	var (
		calls int
		fnErr = errors.New("advance failed")
		run   = func() error { calls++; return nil }
	)
	{ // Counter cannot be opened, fn still runs once
		countInstructions = func(f func() error) (*perf.ProfileValue, error) {
			return nil, errors.New("perf_event_open: permission denied")
		}
		calls = 0
		assert.NoError(t, measure(true, run))
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, measure(true, func() error { return fnErr }), fnErr)
	}
	{ // Counter works
		countInstructions = func(f func() error) (*perf.ProfileValue, error) {
			return &perf.ProfileValue{Value: 42}, f()
		}
		calls = 0
		assert.NoError(t, measure(true, run))
		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, measure(true, func() error { return fnErr }), fnErr)
	}
	{ // Counter fails after fn ran, fn is not repeated
		countInstructions = func(f func() error) (*perf.ProfileValue, error) {
			return nil, errors.Join(f(), errors.New("read counter"))
		}
		calls = 0
		assert.NoError(t, measure(true, run))
		assert.Equal(t, 1, calls)
	}
	{ // Disabled
		calls = 0
		assert.NoError(t, measure(false, run))
		assert.Equal(t, 1, calls)
	}
}
