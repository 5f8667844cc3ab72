package domain

// AttackPreset is a named set of attack defaults loaded from the config file.
// Candidate fields hold references understood by the candidate loaders.
type AttackPreset struct {
	Name      string      `json:"name"`
	Mode      AdapterMode `json:"mode,omitempty"`
	Adapters  []string    `json:"adapters,omitempty"`
	Primary   string      `json:"primary,omitempty"`
	Secondary string      `json:"secondary,omitempty"`
	Hidden    bool        `json:"hidden,omitempty"`
}
