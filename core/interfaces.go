package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling job panics
// =============================================================================

// PanicHandler is called when a job panics on a worker. Task computations
// never reach it: their panics are captured as faults on the task.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a job panics.
	//
	// Parameters:
	// - poolName: The name of the pool where the panic occurred
	// - workerID: The ID of the worker that recovered the panic
	// - panicInfo: The panic value recovered from the job
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(poolName string, workerID int, panicInfo any, stackTrace []byte)
}

// LoggingPanicHandler reports panics through a Logger.
type LoggingPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic at error level.
func (h *LoggingPanicHandler) HandlePanic(poolName string, workerID int, panicInfo any, stackTrace []byte) {
	h.Logger.Error("job panicked",
		F("pool", poolName),
		F("worker", workerID),
		F("panic", fmt.Sprint(panicInfo)),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting job execution metrics.
// Methods should be non-blocking and fast to avoid impacting execution.
type Metrics interface {
	// RecordTaskDuration records how long a job took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskFault records a job that finished with a fault.
	RecordTaskFault(poolName string)

	// RecordTaskPanic records that a job panicked on a worker.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the current queue depth.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records that a submission was rejected.
	RecordTaskRejected(poolName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskFault(poolName string)                            {}
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any)             {}
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int)                {}
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string)          {}
