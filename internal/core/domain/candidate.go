package domain

// CandidateList is an ordered, finite sequence of candidate secrets.
// Order is attempt order. Duplicates are kept and retried verbatim.
type CandidateList struct {
	source  string
	entries []string
}

// NewCandidateList copies entries so later changes by the caller cannot leak
// into a running attack.
func NewCandidateList(source string, entries []string) CandidateList {
	cp := make([]string, len(entries))
	copy(cp, entries)
	return CandidateList{source: source, entries: cp}
}

// Source describes where the list came from (file path, inline, preset name).
func (l CandidateList) Source() string {
	return l.source
}

func (l CandidateList) Len() int {
	return len(l.entries)
}

func (l CandidateList) IsEmpty() bool {
	return len(l.entries) == 0
}

// At returns the candidate at index i.
func (l CandidateList) At(i int) string {
	return l.entries[i]
}

// Entries returns a copy of the candidates.
func (l CandidateList) Entries() []string {
	cp := make([]string, len(l.entries))
	copy(cp, l.entries)
	return cp
}
