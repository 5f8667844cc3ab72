package bruteforce

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// Ensure interface compliance
var _ ports.BruteForceService = (*Controller)(nil)

// FinishedAttack is handed to finish hooks once an attack has terminated.
type FinishedAttack struct {
	ID        string
	Request   domain.AttackRequest
	Outcome   domain.AttackOutcome
	Progress  ProgressSnapshot
	StartedBy string
	StartTime time.Time
	EndTime   time.Time
}

// FinishHook runs after the outcome is known and before Wait returns.
type FinishHook func(ctx context.Context, finished FinishedAttack)

// Controller is the command and status boundary of the attack core.
// At most one attack is active at a time.
type Controller struct {
	coordinator *Coordinator
	broker      *Broker
	logger      *slog.Logger

	mu      sync.Mutex
	phase   domain.Phase
	attack  *Attack
	done    chan struct{}
	endTime *time.Time
	outcome *domain.AttackOutcome
	hooks   []FinishHook
}

func NewController(coordinator *Coordinator, broker *Broker) *Controller {
	if broker == nil {
		broker = NewBroker(0)
	}
	return &Controller{
		coordinator: coordinator,
		broker:      broker,
		logger:      slog.Default().With("component", "controller"),
		phase:       domain.PhaseIdle,
	}
}

// OnFinish registers a hook called for every finished attack.
func (c *Controller) OnFinish(hook FinishHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

// Start validates req and runs it in the background.
func (c *Controller) Start(ctx context.Context, req domain.AttackRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase.IsActive() {
		return "", domain.ErrAttackInProgress
	}

	attack, err := NewAttack(uuid.New().String(), req, c.broker.Publish)
	if err != nil {
		return "", err
	}

	startedBy := "system"
	if u := domain.UserFromContext(ctx); u != nil {
		startedBy = u.Username
	}

	c.attack = attack
	c.phase = domain.PhaseRunning
	c.outcome = nil
	c.endTime = nil
	done := make(chan struct{})
	c.done = done

	ev := domain.NewAttackEvent(attack.ID, domain.EventAttackStarted)
	ev.Phase = domain.PhaseRunning
	ev.Message = attack.Request.Target
	c.broker.Publish(ev)
	c.logger.Info("attack started", "attack", attack.ID, "target", req.Target, "mode", req.Mode, "adapters", len(req.Adapters), "started_by", startedBy)

	// The attack outlives the request that started it.
	go c.run(context.WithoutCancel(ctx), attack, done, startedBy)
	return attack.ID, nil
}

func (c *Controller) run(ctx context.Context, attack *Attack, done chan struct{}, startedBy string) {
	defer close(done)

	outcome := c.coordinator.Run(ctx, attack)
	end := time.Now()
	phase := domain.PhaseFor(outcome.Kind)

	attack.result = outcome

	c.mu.Lock()
	hooks := make([]FinishHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	// The attack stays active until its finish event and hooks are through,
	// so a new Start cannot overtake them.
	ev := domain.NewAttackEvent(attack.ID, domain.EventAttackFinished)
	ev.Phase = phase
	ev.Outcome = &outcome
	if outcome.Succeeded() {
		ev.Adapter = outcome.Adapter.ID
		ev.Candidate = outcome.Candidate
	}
	c.broker.Publish(ev)

	finished := FinishedAttack{
		ID:        attack.ID,
		Request:   attack.Request,
		Outcome:   outcome,
		Progress:  attack.Progress(),
		StartedBy: startedBy,
		StartTime: attack.progress.StartTime(),
		EndTime:   end,
	}
	for _, hook := range hooks {
		hook(ctx, finished)
	}

	c.mu.Lock()
	c.phase = phase
	c.outcome = &outcome
	c.endTime = &end
	c.mu.Unlock()
}

// Pause holds every worker before its next candidate. In-flight attempts finish.
func (c *Controller) Pause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.phase.IsActive() {
		return domain.ErrNoActiveAttack
	}
	if c.phase == domain.PhasePaused || c.attack.stop.IsSet() {
		return nil
	}
	c.attack.Pause()
	c.phase = domain.PhasePaused

	ev := domain.NewAttackEvent(c.attack.ID, domain.EventAttackPaused)
	ev.Phase = domain.PhasePaused
	c.broker.Publish(ev)
	return nil
}

// Resume releases paused workers; they continue from their next candidate.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.phase.IsActive() {
		return domain.ErrNoActiveAttack
	}
	if c.phase == domain.PhaseRunning {
		return nil
	}
	c.attack.Resume()
	c.phase = domain.PhaseRunning

	ev := domain.NewAttackEvent(c.attack.ID, domain.EventAttackResumed)
	ev.Phase = domain.PhaseRunning
	c.broker.Publish(ev)
	return nil
}

// Cancel stops the active attack at the workers' next check point.
// Calling it while idle or after a terminal state does nothing.
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.phase.IsActive() {
		return nil
	}
	if c.attack.Cancel() {
		c.logger.Info("attack cancel requested", "attack", c.attack.ID)
	}
	return nil
}

// Status returns a snapshot for presentation.
func (c *Controller) Status(ctx context.Context) domain.AttackStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attack == nil {
		return domain.AttackStatus{Phase: domain.PhaseIdle, ETASeconds: -1}
	}

	snap := c.attack.Progress()
	st := domain.AttackStatus{
		ID:               c.attack.ID,
		Phase:            c.phase,
		Target:           c.attack.Request.Target,
		Mode:             c.attack.Request.Mode,
		CurrentAdapter:   snap.CurrentAdapter,
		CurrentCandidate: snap.CurrentCandidate,
		Completed:        snap.Completed,
		Total:            snap.Total,
		Progress:         snap.Fraction,
		ETASeconds:       snap.ETASeconds,
		StartTime:        c.attack.progress.StartTime(),
		EndTime:          c.endTime,
		Outcome:          c.outcome,
	}
	if c.phase.IsTerminal() {
		st.ETASeconds = 0
	}
	return st
}

// Subscribe returns the core's event stream.
func (c *Controller) Subscribe() (<-chan domain.AttackEvent, func()) {
	return c.broker.Subscribe()
}

// Wait blocks until the current attack finishes and returns its outcome.
func (c *Controller) Wait(ctx context.Context) (domain.AttackOutcome, error) {
	c.mu.Lock()
	done, attack := c.done, c.attack
	c.mu.Unlock()

	if done == nil {
		return domain.AttackOutcome{}, domain.ErrNoActiveAttack
	}

	select {
	case <-done:
	case <-ctx.Done():
		return domain.AttackOutcome{}, ctx.Err()
	}
	return attack.result, nil
}

// Shutdown cancels the active attack, if any, and waits for its workers.
func (c *Controller) Shutdown(ctx context.Context) error {
	if err := c.Cancel(ctx); err != nil {
		return err
	}
	if _, err := c.Wait(ctx); err != nil && !errors.Is(err, domain.ErrNoActiveAttack) {
		return err
	}
	return nil
}
