package domain

import "time"

// AttackRecord is the persisted summary of a finished attack.
type AttackRecord struct {
	ID              string      `json:"id"`
	Target          string      `json:"target"`
	Hidden          bool        `json:"hidden"`
	Mode            AdapterMode `json:"mode"`
	Adapters        []string    `json:"adapters"`
	CandidateSource string      `json:"candidate_source"`
	TotalAttempts   int         `json:"total_attempts"`
	Completed       int         `json:"completed"`
	Outcome         OutcomeKind `json:"outcome"`
	Credential      string      `json:"credential,omitempty"`
	WinningAdapter  string      `json:"winning_adapter,omitempty"`
	StartedBy       string      `json:"started_by"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
}

// Duration is the wall-clock time the attack took.
func (r AttackRecord) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Where a Network was observed.
const (
	NetworkSourceScan    = "scan"
	NetworkSourceCapture = "pcap"
)

// Security labels of observed networks. Scans leave Security empty.
const (
	SecurityOpen       = "open"
	SecurityOWE        = "owe"
	SecurityWEP        = "wep"
	SecurityWPA        = "wpa"
	SecurityWPA2PSK    = "wpa2-psk"
	SecurityWPA3SAE    = "wpa3-sae"
	SecurityTransition = "wpa2/wpa3"
	SecurityEnterprise = "enterprise"
)

// Network is a nearby network observed by a scan or a capture import.
type Network struct {
	SSID     string `json:"ssid"`
	BSSID    string `json:"bssid,omitempty"`
	Source   string `json:"source"`
	Security string `json:"security,omitempty"`
}

// PassphraseBased reports whether the network authenticates with a shared
// passphrase. Unknown security counts as passphrase based.
func (n Network) PassphraseBased() bool {
	switch n.Security {
	case SecurityOpen, SecurityOWE, SecurityWEP, SecurityEnterprise:
		return false
	}
	return true
}
