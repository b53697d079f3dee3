// Package taskpool provides a fixed-size worker pool and future-style tasks
// with continuations.
//
// A WorkerPool owns a fixed number of worker goroutines that drain one
// shared FIFO queue. A Task wraps a computation; submitting it to a pool
// runs the computation on a worker and Result blocks until the outcome is
// available.
//
// # Quick Start
//
//	pool, err := taskpool.NewWorkerPool(4)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	task := taskpool.NewTask(func() (int, error) {
//		return 2 + 2, nil
//	})
//	defer task.Close()
//
//	if err := pool.Submit(task); err != nil {
//		return err
//	}
//	sum, err := task.Result() // 4, nil
//
// # Continuations
//
// ContinueWith derives a task from another task's value. Continuations are
// not scheduled on their own: the caller submits every task, in any order,
// and a continuation runs once it has been submitted and its parent has
// settled. A parked continuation does not occupy a worker.
//
//	a := taskpool.NewTask(func() (string, error) { return "A", nil })
//	b := taskpool.ContinueWith(a, func(s string) (string, error) { return s + "B", nil })
//	pool.Submit(b)
//	pool.Submit(a)
//	ab, _ := b.Result() // "AB"
//
// # Errors
//
// Submitting a nil job or creating a pool with a non-positive size fails
// with ErrInvalidArgument. Submitting to a closed pool, closing a pool twice
// or closing a task twice fails with ErrInvalidState. A computation that
// returns an error or panics faults its task; the fault is returned from
// Result and propagated to continuations, and never affects other tasks.
package taskpool
