package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// LaunchRequest is what an operator submits to start an attack. Candidate
// lists are given either as a reference (file path, "db:<name>") or as
// inline text; inline text wins when both are set.
type LaunchRequest struct {
	Preset        string             `json:"preset,omitempty"`
	Target        string             `json:"target"`
	Hidden        bool               `json:"hidden"`
	Mode          domain.AdapterMode `json:"mode,omitempty"`
	Adapters      []string           `json:"adapters"`
	Primary       string             `json:"primary,omitempty"`
	PrimaryText   string             `json:"primary_text,omitempty"`
	Secondary     string             `json:"secondary,omitempty"`
	SecondaryText string             `json:"secondary_text,omitempty"`

	LegalAcknowledgment bool `json:"legal_acknowledgment"`
}

// Service turns operator requests into attacks and records every command in the audit log.
type Service struct {
	engine     ports.BruteForceService
	discovery  ports.DiscoveryService
	candidates ports.CandidateSource
	audit      ports.AuditService
	presets    map[string]domain.AttackPreset
}

// NewService creates the operations facade. audit may be nil.
func NewService(engine ports.BruteForceService, discovery ports.DiscoveryService, candidates ports.CandidateSource, audit ports.AuditService, presets []domain.AttackPreset) *Service {
	byName := make(map[string]domain.AttackPreset, len(presets))
	for _, p := range presets {
		byName[p.Name] = p
	}
	return &Service{
		engine:     engine,
		discovery:  discovery,
		candidates: candidates,
		audit:      audit,
		presets:    byName,
	}
}

// Presets lists the configured presets by name.
func (s *Service) Presets() []domain.AttackPreset {
	out := make([]domain.AttackPreset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Build resolves adapters and candidate lists without starting anything.
func (s *Service) Build(ctx context.Context, req LaunchRequest) (domain.AttackRequest, error) {
	req, err := s.applyPreset(req)
	if err != nil {
		return domain.AttackRequest{}, err
	}

	handles, err := s.discovery.Resolve(ctx, req.Adapters)
	if err != nil {
		return domain.AttackRequest{}, err
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.ModeSingle
		if len(handles) > 1 {
			mode = domain.ModeMultiple
		}
	}

	primary, err := s.list(ctx, "primary", req.Primary, req.PrimaryText)
	if err != nil {
		return domain.AttackRequest{}, err
	}
	attack := domain.AttackRequest{
		Target:   strings.TrimSpace(req.Target),
		Hidden:   req.Hidden,
		Adapters: handles,
		Mode:     mode,
		Primary:  primary,
	}

	if req.Secondary != "" || req.SecondaryText != "" {
		secondary, err := s.list(ctx, "secondary", req.Secondary, req.SecondaryText)
		if err != nil {
			return domain.AttackRequest{}, err
		}
		attack.Secondary = &secondary
	}

	return attack, attack.Validate()
}

// Launch builds the request and starts it on the engine.
func (s *Service) Launch(ctx context.Context, req LaunchRequest) (string, error) {
	ctx, span := otel.Tracer("operations").Start(ctx, "Launch")
	defer span.End()

	if !req.LegalAcknowledgment {
		return "", domain.ErrLegalAckRequired
	}

	attack, err := s.Build(ctx, req)
	if err != nil {
		return "", err
	}
	span.SetAttributes(
		attribute.String("attack.target", attack.Target),
		attribute.String("attack.mode", string(attack.Mode)),
		attribute.Int("attack.adapters", len(attack.Adapters)),
	)

	id, err := s.engine.Start(ctx, attack)
	if err != nil {
		return "", err
	}

	ids := make([]string, len(attack.Adapters))
	for i, a := range attack.Adapters {
		ids[i] = a.ID
	}
	list, _, _ := attack.EffectiveCandidates()
	s.log(ctx, domain.ActionAttackStart, attack.Target,
		fmt.Sprintf("id=%s mode=%s adapters=%s candidates=%s(%d)", id, attack.Mode, strings.Join(ids, ","), list.Source(), list.Len()))
	return id, nil
}

func (s *Service) Pause(ctx context.Context) error {
	if err := s.engine.Pause(ctx); err != nil {
		return err
	}
	s.log(ctx, domain.ActionAttackPause, s.engine.Status(ctx).Target, "")
	return nil
}

func (s *Service) Resume(ctx context.Context) error {
	if err := s.engine.Resume(ctx); err != nil {
		return err
	}
	s.log(ctx, domain.ActionAttackResume, s.engine.Status(ctx).Target, "")
	return nil
}

// Cancel is audited only when an attack was active.
func (s *Service) Cancel(ctx context.Context) error {
	st := s.engine.Status(ctx)
	if err := s.engine.Cancel(ctx); err != nil {
		return err
	}
	if st.Phase.IsActive() {
		s.log(ctx, domain.ActionAttackCancel, st.Target, "id="+st.ID)
	}
	return nil
}

func (s *Service) Status(ctx context.Context) domain.AttackStatus {
	return s.engine.Status(ctx)
}

func (s *Service) Subscribe() (<-chan domain.AttackEvent, func()) {
	return s.engine.Subscribe()
}

func (s *Service) applyPreset(req LaunchRequest) (LaunchRequest, error) {
	if req.Preset == "" {
		return req, nil
	}
	p, ok := s.presets[req.Preset]
	if !ok {
		return req, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, req.Preset)
	}
	if req.Mode == "" {
		req.Mode = p.Mode
	}
	if len(req.Adapters) == 0 {
		req.Adapters = p.Adapters
	}
	if req.Primary == "" && req.PrimaryText == "" {
		req.Primary = p.Primary
	}
	if req.Secondary == "" && req.SecondaryText == "" {
		req.Secondary = p.Secondary
	}
	req.Hidden = req.Hidden || p.Hidden
	return req, nil
}

func (s *Service) list(ctx context.Context, name, ref, text string) (domain.CandidateList, error) {
	if strings.TrimSpace(text) != "" {
		return s.candidates.Inline(name, text), nil
	}
	if ref == "" {
		return domain.CandidateList{}, nil
	}
	list, err := s.candidates.Load(ctx, ref)
	if err != nil {
		return domain.CandidateList{}, fmt.Errorf("%w: %v", domain.ErrCandidateSource, err)
	}
	return list, nil
}

func (s *Service) log(ctx context.Context, action domain.AuditAction, target, details string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, action, target, details); err != nil {
		slog.Warn("audit write failed", "action", action, "error", err)
	}
}
