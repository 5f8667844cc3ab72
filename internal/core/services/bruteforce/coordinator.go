package bruteforce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Attack is the shared state of one running attack: the resolved request,
// the stop signal, the pause gate and the progress accounting.
type Attack struct {
	ID         string
	Request    domain.AttackRequest
	candidates domain.CandidateList
	fallback   bool
	stop       *StopSignal
	gate       *PauseGate
	cancelled  atomic.Bool
	progress   *Progress
	emit       EventFunc

	// result is written once, before the controller closes the attack's done channel.
	result domain.AttackOutcome
}

// NewAttack validates req and prepares a fresh stop signal for it.
// Configuration errors are returned here, before any worker exists.
func NewAttack(id string, req domain.AttackRequest, emit EventFunc) (*Attack, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	list, fallback, err := req.EffectiveCandidates()
	if err != nil {
		return nil, err
	}
	if emit == nil {
		emit = func(domain.AttackEvent) {}
	}

	adapters := make([]domain.AdapterHandle, len(req.Adapters))
	copy(adapters, req.Adapters)
	req.Adapters = adapters

	return &Attack{
		ID:         id,
		Request:    req,
		candidates: list,
		fallback:   fallback,
		stop:       NewStopSignal(),
		gate:       NewPauseGate(),
		progress:   NewProgress(list.Len()*len(adapters), nil),
		emit:       emit,
	}, nil
}

// Candidates is the list every worker of this attack uses.
func (a *Attack) Candidates() domain.CandidateList {
	return a.candidates
}

// Cancel marks the attack as cancelled and sets the stop signal.
// It returns false if the signal was already set.
func (a *Attack) Cancel() bool {
	a.cancelled.Store(true)
	return a.stop.Trip()
}

func (a *Attack) Cancelled() bool {
	return a.cancelled.Load()
}

func (a *Attack) Pause() bool {
	if !a.gate.Pause() {
		return false
	}
	a.progress.Pause()
	return true
}

func (a *Attack) Resume() bool {
	if !a.gate.Resume() {
		return false
	}
	a.progress.Resume()
	return true
}

func (a *Attack) Progress() ProgressSnapshot {
	return a.progress.Snapshot()
}

// Coordinator fans an attack out to one worker per adapter and joins them.
type Coordinator struct {
	provider ports.AdapterProvider
	cfg      WorkerConfig
	logger   *slog.Logger
}

func NewCoordinator(provider ports.AdapterProvider, cfg WorkerConfig) *Coordinator {
	return &Coordinator{
		provider: provider,
		cfg:      cfg.withDefaults(),
		logger:   slog.Default().With("component", "coordinator"),
	}
}

// Execute validates req, runs it to completion and returns the terminal outcome.
func (c *Coordinator) Execute(ctx context.Context, req domain.AttackRequest, emit EventFunc) (domain.AttackOutcome, error) {
	attack, err := NewAttack(uuid.New().String(), req, emit)
	if err != nil {
		return domain.AttackOutcome{}, err
	}
	return c.Run(ctx, attack), nil
}

// Run spawns exactly one worker per adapter and returns only after all of them
// have terminated. Cancelling ctx cancels the attack.
func (c *Coordinator) Run(ctx context.Context, a *Attack) domain.AttackOutcome {
	ctx, span := otel.Tracer("bruteforce").Start(ctx, "Coordinator.Run")
	defer span.End()

	req := a.Request
	span.SetAttributes(
		attribute.String("attack.id", a.ID),
		attribute.String("target.ssid", req.Target),
		attribute.String("attack.mode", string(req.Mode)),
		attribute.Int("attack.adapters", len(req.Adapters)),
		attribute.Int("attack.candidates", a.candidates.Len()),
	)

	if a.fallback {
		ev := domain.NewAttackEvent(a.ID, domain.EventAttackWarning)
		ev.Message = "multiple adapter mode without a secondary list: using the primary list on every adapter"
		a.emit(ev)
		c.logger.Warn("secondary candidate list missing, falling back to primary", "attack", a.ID)
	}

	// Context cancellation is a cancel request.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			a.Cancel()
		case <-a.stop.Done():
		case <-watchDone:
		}
	}()

	results := make([]WorkerResult, len(req.Adapters))
	var wg sync.WaitGroup
	for i, handle := range req.Adapters {
		wg.Add(1)
		go func(i int, handle domain.AdapterHandle) {
			defer wg.Done()
			results[i] = c.runWorker(ctx, a, handle)
		}(i, handle)
	}
	wg.Wait()

	outcome := resolveOutcome(results, a.Cancelled())
	span.SetAttributes(attribute.String("attack.outcome", string(outcome.Kind)))
	telemetry.AttacksTotal.WithLabelValues(string(outcome.Kind)).Inc()
	c.logger.Info("attack finished", "attack", a.ID, "outcome", outcome.Kind, "attempts", outcome.Attempts)
	return outcome
}

func (c *Coordinator) runWorker(ctx context.Context, a *Attack, handle domain.AdapterHandle) WorkerResult {
	adapter, err := c.provider.Open(ctx, handle)
	if err != nil {
		err = fmt.Errorf("%w: open %s: %v", domain.ErrAdapterGone, handle.ID, err)
		ev := domain.NewAttackEvent(a.ID, domain.EventWorkerFailed)
		ev.Adapter = handle.ID
		ev.Error = err.Error()
		a.emit(ev)
		telemetry.WorkerFailures.WithLabelValues(handle.ID).Inc()
		return WorkerResult{Adapter: handle, State: WorkerFailed, Err: err}
	}

	w := NewWorker(a.ID, handle, adapter, c.cfg, a.emit, a.progress)
	return w.Run(ctx, a.Request.Target, a.Request.Hidden, a.candidates, a.stop, a.gate)
}

// resolveOutcome: a success wins; otherwise a cancel request; otherwise exhaustion.
func resolveOutcome(results []WorkerResult, cancelled bool) domain.AttackOutcome {
	outcome := domain.AttackOutcome{Kind: domain.OutcomeExhausted}
	for _, r := range results {
		outcome.Attempts += r.Attempts
		if r.State == WorkerSucceeded && r.Outcome != nil {
			outcome.Kind = domain.OutcomeSuccess
			outcome.Candidate = r.Outcome.Candidate
			outcome.Adapter = r.Outcome.Adapter
		}
		if r.State == WorkerFailed && r.Err != nil {
			if outcome.WorkerErrors == nil {
				outcome.WorkerErrors = make(map[string]string)
			}
			outcome.WorkerErrors[r.Adapter.ID] = r.Err.Error()
		}
	}
	if outcome.Kind != domain.OutcomeSuccess && cancelled {
		outcome.Kind = domain.OutcomeCancelled
	}
	return outcome
}
