//go:build linux

package cmd

import (
	"runtime"

	perf "github.com/hodgesds/perf-utils"
	"go.uber.org/zap"
)

var countInstructions = perf.CPUInstructions

// measure runs fn, counting the CPU instructions it retires when enabled.
// fn runs exactly once whether or not the counter can be opened.
func measure(enabled bool, fn func() error) error {
	if !enabled {
		return fn()
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	var (
		ran   bool
		fnErr error
	)
	pv, err := countInstructions(func() error {
		ran = true
		fnErr = fn()
		return fnErr
	})
	switch {
	case !ran:
		logger.Warn("instruction counter unavailable, running uncounted", zap.Error(err))
		return fn()
	case fnErr != nil:
		return fnErr
	case err != nil:
		logger.Warn("instruction counter failed", zap.Error(err))
		return nil
	}
	logger.Info("perf", zap.Uint64("instructions", pv.Value),
		zap.Uint64("time_enabled_ns", pv.TimeEnabled), zap.Uint64("time_running_ns", pv.TimeRunning))
	return nil
}
