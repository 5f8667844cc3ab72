package candidates

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/telemetry"
)

// Source kinds used as the "source" metric label.
const (
	KindFile   = "file"
	KindInline = "inline"
	KindDB     = "db"
)

// dbPrefix selects a stored wordlist instead of a file: "db:<name>".
const dbPrefix = "db:"

// maxFileSize caps wordlist files read into memory.
const maxFileSize = 512 << 20

var ErrFileTooLarge = errors.New("candidate file too large")

// Ensure interface compliance
var _ ports.CandidateSource = (*Resolver)(nil)

// Parse turns raw wordlist bytes into candidates: invalid UTF-8 bytes are
// dropped, each line is trimmed and blank lines are skipped. Order and
// duplicates are preserved.
func Parse(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.ToValidUTF8(sc.Text(), ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Inline builds a list from text typed or pasted by the operator.
func Inline(name, text string) domain.CandidateList {
	entries, _ := Parse(strings.NewReader(text))
	if name == "" {
		name = KindInline
	}
	return finish(KindInline, name, entries)
}

// FileSource loads candidates from text files, one per line.
type FileSource struct{}

func (FileSource) Load(ctx context.Context, path string) (domain.CandidateList, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.CandidateList{}, fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > maxFileSize {
		return domain.CandidateList{}, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, path, info.Size())
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.CandidateList{}, fmt.Errorf("read wordlist: %w", err)
	}
	entries, err := Parse(bytes.NewReader(data))
	if err != nil {
		return domain.CandidateList{}, fmt.Errorf("parse wordlist %s: %w", path, err)
	}
	return finish(KindFile, filepath.Base(path), entries), nil
}

// Resolver dispatches a reference to the stored wordlists ("db:<name>") or to a file.
type Resolver struct {
	files FileSource
	db    *WordlistDB
}

// NewResolver creates a resolver. db may be nil when no wordlist database is configured.
func NewResolver(db *WordlistDB) *Resolver {
	return &Resolver{db: db}
}

func (r *Resolver) Load(ctx context.Context, ref string) (domain.CandidateList, error) {
	if name, ok := strings.CutPrefix(ref, dbPrefix); ok {
		if r.db == nil {
			return domain.CandidateList{}, errors.New("wordlist database not configured")
		}
		return r.db.Load(ctx, name)
	}
	return r.files.Load(ctx, ref)
}

func (r *Resolver) Inline(name, text string) domain.CandidateList {
	return Inline(name, text)
}

func finish(kind, name string, entries []string) domain.CandidateList {
	short := 0
	for _, e := range entries {
		if !domain.IsValidCandidate(e) {
			short++
		}
	}
	if short > 0 {
		log.Printf("[CANDIDATES] %s: %d of %d entries are not valid WPA2 passphrases and will fail", name, short, len(entries))
	}
	telemetry.CandidatesLoaded.WithLabelValues(kind).Add(float64(len(entries)))
	return domain.NewCandidateList(name, entries)
}
