//go:build !linux

package cmd

import "go.uber.org/zap"

func measure(enabled bool, fn func() error) error {
	if enabled {
		logger.Warn("instruction counting needs Linux", zap.Bool("perf", enabled))
	}
	return fn()
}
