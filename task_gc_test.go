package taskpool

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

// TestContinueWith_GC_ParentCollected verifies a fired continuation does not retain its parent
// Given: A parent that settled and fired a continuation that has not run yet
// When: The caller drops the parent
// Then: The parent is garbage collected while the continuation is still alive
func TestContinueWith_GC_ParentCollected(t *testing.T) {
	// Arrange
	pool := newTestPool(t, 1)
	defer closePool(t, pool)

	var parentFinalized atomic.Bool

	parent := NewTask(func() (string, error) { return "A", nil })
	runtime.SetFinalizer(parent, func(*Task[string]) {
		parentFinalized.Store(true)
	})
	child := ContinueWith(parent, appendTo("B", 0))

	if err := pool.Submit(parent); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	<-parent.Done()

	// Act
	parent = nil
	for i := 0; i < 5 && !parentFinalized.Load(); i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}

	// Assert
	if !parentFinalized.Load() {
		t.Error("parent GC'd: got = false, want = true")
	}

	if err := pool.Submit(child); err != nil {
		t.Fatalf("Submit() = %v", err)
	}
	if got, err := child.Result(); got != "AB" || err != nil {
		t.Errorf("child Result() = (%q, %v), want (AB, nil)", got, err)
	}
}
