package server

import (
	"context"
	"sync"
)

// RunManager tracks in-flight icebreaker runs so they can be cancelled.
type RunManager struct {
	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// NewRunManager creates a new RunManager.
func NewRunManager() *RunManager {
	return &RunManager{
		runs: make(map[string]context.CancelFunc),
	}
}

// Start derives a cancellable context for run id and tracks it until done
// is called.
func (rm *RunManager) Start(parent context.Context, id string) (ctx context.Context, done func()) {
	ctx, cancel := context.WithCancel(parent)

	rm.mu.Lock()
	rm.runs[id] = cancel
	rm.mu.Unlock()

	return ctx, func() {
		cancel()
		rm.mu.Lock()
		delete(rm.runs, id)
		rm.mu.Unlock()
	}
}

// Active reports whether run id is in flight.
func (rm *RunManager) Active(id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	_, ok := rm.runs[id]
	return ok
}

// Len returns the number of in-flight runs.
func (rm *RunManager) Len() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.runs)
}

// Cancel stops run id if it is in flight.
func (rm *RunManager) Cancel(id string) bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	cancel, ok := rm.runs[id]
	if ok {
		cancel()
		delete(rm.runs, id)
	}
	return ok
}

// CloseAll cancels every in-flight run.
func (rm *RunManager) CloseAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for id, cancel := range rm.runs {
		cancel()
		delete(rm.runs, id)
	}
}
