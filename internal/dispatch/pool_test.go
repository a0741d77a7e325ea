package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsJobsAndCloses(t *testing.T) {
	p := NewPool(3)
	if p.Size() != 3 {
		t.Fatalf("size=%d", p.Size())
	}
	var n atomic.Int32
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		if err := p.Submit(context.Background(), func() { n.Add(1); done <- struct{}{} }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	p.Close()
	p.Close()
	if n.Load() != 10 {
		t.Fatalf("ran %d jobs", n.Load())
	}
	if err := p.Submit(context.Background(), func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_MinimumSize(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	if p.Size() != 1 {
		t.Fatalf("size=%d", p.Size())
	}
}

func TestPool_SubmitWaitsForFreeWorker(t *testing.T) {
	p := NewPool(1)
	defer p.Close()
	release := make(chan struct{})
	if err := p.Submit(context.Background(), func() { <-release }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Submit(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
}

func TestPool_RecoversPanics(t *testing.T) {
	p := NewPool(1)
	defer p.Close()
	if err := p.Submit(context.Background(), func() { panic("boom") }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ran := make(chan struct{})
	if err := p.Submit(context.Background(), func() { close(ran) }); err != nil {
		t.Fatalf("submit after panic: %v", err)
	}
	<-ran
	if p.Panics() != 1 {
		t.Fatalf("panics=%d", p.Panics())
	}
}
