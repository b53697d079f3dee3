package taskpool

import "github.com/Swind/go-task-pool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the taskpool package for most use cases.

// TaskID identifies a task in logs
type TaskID = core.TaskID

// PoolStats is a snapshot of a pool's runtime state
type PoolStats = core.PoolStats

// Logger is the structured logging interface used by pools
type Logger = core.Logger

// PanicError is the fault recorded for a panicking computation
type PanicError = core.PanicError

// Error taxonomy
var (
	ErrInvalidArgument = core.ErrInvalidArgument
	ErrInvalidState    = core.ErrInvalidState
	ErrPoolClosed      = core.ErrPoolClosed
	ErrTaskClosed      = core.ErrTaskClosed
)
