package bruteforce

import (
	"sync"
	"time"
)

// etaEpsilon stands in for a zero elapsed time so the rate never divides by zero.
const etaEpsilon = 1e-9

// EstimateETA returns the remaining seconds given the completion rate so far:
// (total - completed) / (completed / elapsed). It returns -1 while the rate is
// still unknown (nothing completed yet).
func EstimateETA(total, completed int, elapsed time.Duration) float64 {
	if completed <= 0 {
		return -1
	}
	if completed >= total {
		return 0
	}
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = etaEpsilon
	}
	rate := float64(completed) / secs
	return float64(total-completed) / rate
}

// ProgressSnapshot is a consistent view of an attack's accounting.
type ProgressSnapshot struct {
	Completed        int
	Total            int
	Fraction         float64
	ETASeconds       float64
	Elapsed          time.Duration
	CurrentAdapter   string
	CurrentCandidate string
}

// Progress tracks completed attempts across all workers of one attack.
// Paused time is excluded from the elapsed time used for the ETA.
type Progress struct {
	mu               sync.Mutex
	now              func() time.Time
	total            int
	completed        int
	start            time.Time
	pausedAt         time.Time
	pausedFor        time.Duration
	currentAdapter   string
	currentCandidate string
}

// NewProgress starts the clock. now may be nil to use time.Now.
func NewProgress(total int, now func() time.Time) *Progress {
	if now == nil {
		now = time.Now
	}
	return &Progress{
		now:   now,
		total: total,
		start: now(),
	}
}

// Begin records the attempt currently being made, for status display.
func (p *Progress) Begin(adapter, candidate string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentAdapter = adapter
	p.currentCandidate = candidate
}

// Complete counts one finished attempt and returns the new total.
func (p *Progress) Complete() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed < p.total {
		p.completed++
	}
	return p.completed
}

func (p *Progress) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pausedAt.IsZero() {
		p.pausedAt = p.now()
	}
}

func (p *Progress) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pausedAt.IsZero() {
		p.pausedFor += p.now().Sub(p.pausedAt)
		p.pausedAt = time.Time{}
	}
}

func (p *Progress) StartTime() time.Time {
	return p.start
}

// Snapshot computes fraction and ETA under one lock.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	end := p.now()
	if !p.pausedAt.IsZero() {
		end = p.pausedAt
	}
	elapsed := end.Sub(p.start) - p.pausedFor

	snap := ProgressSnapshot{
		Completed:        p.completed,
		Total:            p.total,
		ETASeconds:       EstimateETA(p.total, p.completed, elapsed),
		Elapsed:          elapsed,
		CurrentAdapter:   p.currentAdapter,
		CurrentCandidate: p.currentCandidate,
	}
	if p.total > 0 {
		snap.Fraction = float64(p.completed) / float64(p.total)
	}
	return snap
}
