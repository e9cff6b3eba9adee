package server

import (
	"context"
	"testing"
)

func TestRunManager_StartDone(t *testing.T) {
	rm := NewRunManager()

	ctx, done := rm.Start(context.Background(), "run-1")
	if !rm.Active("run-1") {
		t.Fatal("expected run to be active")
	}

	done()
	if rm.Active("run-1") {
		t.Error("expected run to be removed after done")
	}
	if ctx.Err() == nil {
		t.Error("expected context cancelled after done")
	}
}

func TestRunManager_Cancel(t *testing.T) {
	rm := NewRunManager()

	ctx, done := rm.Start(context.Background(), "run-1")
	defer done()

	if !rm.Cancel("run-1") {
		t.Fatal("Cancel returned false for active run")
	}
	if ctx.Err() == nil {
		t.Error("expected context cancelled")
	}
	if rm.Cancel("run-1") {
		t.Error("second Cancel should return false")
	}
}

func TestRunManager_CloseAll(t *testing.T) {
	rm := NewRunManager()

	ctx1, _ := rm.Start(context.Background(), "a")
	ctx2, _ := rm.Start(context.Background(), "b")

	rm.CloseAll()

	if rm.Len() != 0 {
		t.Errorf("expected 0 runs, got %d", rm.Len())
	}
	if ctx1.Err() == nil || ctx2.Err() == nil {
		t.Error("expected all contexts cancelled")
	}
}
