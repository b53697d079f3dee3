package taskpool

import (
	"fmt"

	"github.com/Swind/go-task-pool/core"
)

// Config holds configuration options for a WorkerPool.
// All handlers are optional; if not provided, default implementations will be used.
type Config struct {
	// Name labels the pool in logs and metrics. Defaults to "pool-<size>".
	Name string

	// Size is the fixed number of worker goroutines. Must be positive.
	Size int

	// Logger receives lifecycle and fault logs. Defaults to core.NoOpLogger.
	Logger core.Logger

	// PanicHandler is called when a JobFunc panics. Defaults to a
	// core.LoggingPanicHandler over Logger.
	PanicHandler core.PanicHandler

	// Metrics records execution metrics. Defaults to core.NilMetrics.
	Metrics core.Metrics
}

// DefaultConfig returns a config for size workers with default handlers.
func DefaultConfig(size int) Config {
	return Config{Size: size}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = fmt.Sprintf("pool-%d", c.Size)
	}
	if c.Logger == nil {
		c.Logger = core.NewNoOpLogger()
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &core.LoggingPanicHandler{Logger: c.Logger}
	}
	if c.Metrics == nil {
		c.Metrics = &core.NilMetrics{}
	}
	return c
}
