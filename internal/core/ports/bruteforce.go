package ports

import (
	"context"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// BruteForceService is the command and status boundary of the attack core.
type BruteForceService interface {
	// Start validates the request and runs the attack asynchronously.
	Start(ctx context.Context, req domain.AttackRequest) (string, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	// Cancel stops the active attack. It is a no-op when nothing is running.
	Cancel(ctx context.Context) error
	Status(ctx context.Context) domain.AttackStatus
	// Subscribe returns a channel of attack events and a function that releases it.
	Subscribe() (<-chan domain.AttackEvent, func())
}

// CandidateSource loads an ordered candidate list.
type CandidateSource interface {
	Load(ctx context.Context, ref string) (domain.CandidateList, error)
	// Inline parses operator-supplied text, one candidate per line.
	Inline(name, text string) domain.CandidateList
}

// CaptureImporter extracts network names from a packet capture.
type CaptureImporter interface {
	ImportFile(ctx context.Context, path string) ([]domain.Network, error)
}

// AttackReporter renders a finished attack as a document.
type AttackReporter interface {
	ExportAttack(record domain.AttackRecord) ([]byte, error)
}

// Recommender derives remediation advice from a finished attack.
type Recommender interface {
	ForAttack(record domain.AttackRecord) []domain.Recommendation
}
