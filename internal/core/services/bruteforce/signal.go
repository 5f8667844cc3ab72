package bruteforce

import (
	"context"
	"sync"
	"sync/atomic"
)

// StopSignal is shared by every worker of one attack. It is set at most once,
// either by the first worker that connects or by a cancellation.
type StopSignal struct {
	set  atomic.Bool
	done chan struct{}
}

func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Trip sets the signal. Only the caller that actually flipped it gets true.
func (s *StopSignal) Trip() bool {
	if !s.set.CompareAndSwap(false, true) {
		return false
	}
	close(s.done)
	return true
}

func (s *StopSignal) IsSet() bool {
	return s.set.Load()
}

// Done is closed once the signal is set.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}

// PauseGate blocks workers between candidates while an attack is paused.
type PauseGate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

func NewPauseGate() *PauseGate {
	return &PauseGate{}
}

// Pause closes the gate. Returns false if it was already closed.
func (g *PauseGate) Pause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		return false
	}
	g.paused = true
	g.resume = make(chan struct{})
	return true
}

// Resume opens the gate and releases every blocked worker.
func (g *PauseGate) Resume() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		return false
	}
	g.paused = false
	close(g.resume)
	return true
}

func (g *PauseGate) IsPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait returns true once the gate is open, or false if stop fires or ctx ends first.
func (g *PauseGate) Wait(ctx context.Context, stop *StopSignal) bool {
	return g.Enter(ctx, stop, nil)
}

// Enter is Wait, except that begin runs under the gate lock once the gate is
// open. A Pause that has returned is therefore never followed by a begin.
func (g *PauseGate) Enter(ctx context.Context, stop *StopSignal, begin func()) bool {
	for {
		g.mu.Lock()
		if !g.paused {
			if stop.IsSet() {
				g.mu.Unlock()
				return false
			}
			if begin != nil {
				begin()
			}
			g.mu.Unlock()
			return true
		}
		ch := g.resume
		g.mu.Unlock()

		select {
		case <-ch:
		case <-stop.Done():
			return false
		case <-ctx.Done():
			return false
		}
	}
}
