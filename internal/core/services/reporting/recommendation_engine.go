package reporting

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// Passphrases shorter than this are called out even when the attack failed to find them.
const strongPassphraseLength = 16

const maxRecommendations = 5

// Ensure interface compliance
var _ ports.Recommender = (*RecommendationEngine)(nil)

// RecommendationEngine turns a finished attack into remediation advice.
type RecommendationEngine struct{}

// NewRecommendationEngine creates a new recommendation engine instance
func NewRecommendationEngine() *RecommendationEngine {
	return &RecommendationEngine{}
}

// ForAttack returns at most five recommendations, most urgent first.
func (re *RecommendationEngine) ForAttack(record domain.AttackRecord) []domain.Recommendation {
	var recs []domain.Recommendation

	switch record.Outcome {
	case domain.OutcomeSuccess:
		recs = append(recs, re.recoveredPassphrase(record)...)
	case domain.OutcomeExhausted:
		recs = append(recs, domain.Recommendation{
			Priority:    domain.PriorityLow,
			Title:       "Passphrase Resisted the Tested Wordlist",
			Description: fmt.Sprintf("None of the %d attempts using %s succeeded. This does not prove the passphrase is strong, only that it is not in this list.", record.TotalAttempts, sourceName(record)),
			Actions: []string{
				"Repeat the audit with a larger or organisation-specific wordlist",
				"Confirm the passphrase is at least 16 random characters",
			},
			EstimatedEffort: "Depends on wordlist size",
		})
	default:
		recs = append(recs, domain.Recommendation{
			Priority:    domain.PriorityMedium,
			Title:       "Complete the Audit",
			Description: fmt.Sprintf("The attack was cancelled after %d of %d attempts. Results only cover the tested part of the list.", record.Completed, record.TotalAttempts),
			Actions: []string{
				"Resume the audit in a maintenance window",
				"Split large wordlists across several adapters (multiple mode)",
			},
			EstimatedEffort: fmt.Sprintf("%d attempts remaining", record.TotalAttempts-record.Completed),
		})
	}

	if record.Hidden {
		recs = append(recs, domain.Recommendation{
			Priority:    domain.PriorityLow,
			Title:       "Do Not Rely on a Hidden SSID",
			Description: "Hiding the network name does not stop attackers; clients reveal it in probe requests.",
			Actions: []string{
				"Treat the SSID as public information",
				"Protect the network with WPA3-SAE and a strong passphrase instead",
			},
			EstimatedEffort: "15 minutes",
		})
	}

	if len(recs) < 3 {
		recs = append(recs, re.generalRecommendations()...)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return domain.PriorityRank(recs[i].Priority) < domain.PriorityRank(recs[j].Priority)
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func (re *RecommendationEngine) recoveredPassphrase(record domain.AttackRecord) []domain.Recommendation {
	recs := []domain.Recommendation{
		{
			Priority:    domain.PriorityCritical,
			Title:       "Replace the Recovered Passphrase",
			Description: fmt.Sprintf("The passphrase of %q was found after %d attempts from %s. Anyone with the same list can join the network.", record.Target, record.Completed, sourceName(record)),
			Actions: []string{
				"Change the passphrase on every access point of this network",
				"Use a random passphrase of at least 16 characters",
				"Rotate credentials stored on shared or departed devices",
			},
			EstimatedEffort: "30 minutes",
		},
		{
			Priority:    domain.PriorityHigh,
			Title:       "Move to WPA3-SAE",
			Description: "WPA3-SAE prevents offline dictionary attacks against captured handshakes.",
			Actions: []string{
				"Enable WPA3-SAE or WPA2/WPA3 transition mode",
				"Enable management frame protection",
				"Update firmware on clients that cannot join WPA3 networks",
			},
			EstimatedEffort: "1-2 hours",
		},
		{
			Priority:    domain.PriorityHigh,
			Title:       "Review Connected Devices",
			Description: "Unknown devices may have joined the network while the weak passphrase was in use.",
			Actions: []string{
				"Check the DHCP lease and association lists of the access points",
				"Remove unknown devices and block their MAC addresses",
			},
			EstimatedEffort: "1 hour",
		},
	}

	if weak := passphraseWeaknesses(record.Credential); len(weak) > 0 {
		recs[0].Actions = append(recs[0].Actions, weak...)
	}
	return recs
}

// generalRecommendations returns general wireless security practices.
func (re *RecommendationEngine) generalRecommendations() []domain.Recommendation {
	return []domain.Recommendation{
		{
			Priority:    domain.PriorityMedium,
			Title:       "Implement Network Segmentation",
			Description: "Separate guest, IoT, and corporate networks so one recovered passphrase does not expose everything.",
			Actions: []string{
				"Create separate SSIDs and VLANs for different device types",
				"Implement firewall rules between segments",
			},
			EstimatedEffort: "4-8 hours",
		},
		{
			Priority:    domain.PriorityLow,
			Title:       "Regular Security Audits",
			Description: "Repeat passphrase audits after every credential change.",
			Actions: []string{
				"Schedule audits quarterly",
				"Keep the wordlists used for audits up to date",
			},
			EstimatedEffort: "Ongoing (2 hours/quarter)",
		},
	}
}

// passphraseWeaknesses lists concrete problems of a recovered passphrase.
func passphraseWeaknesses(pass string) []string {
	if pass == "" {
		return nil
	}
	var out []string
	if n := len([]rune(pass)); n < strongPassphraseLength {
		out = append(out, fmt.Sprintf("Current passphrase is only %d characters long", n))
	}

	var lower, upper, digit, other bool
	for _, r := range pass {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			other = true
		}
	}
	classes := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			classes++
		}
	}
	if classes < 3 {
		out = append(out, fmt.Sprintf("Current passphrase uses only %d character classes", classes))
	}
	return out
}

func sourceName(record domain.AttackRecord) string {
	if record.CandidateSource == "" {
		return "the wordlist"
	}
	return record.CandidateSource
}
