package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/metrics"
)

// Resolver guarantees that exactly one canonical table file exists for a
// schema, recovering automatically when the file has been renamed,
// duplicated or lost by someone editing the directory by hand. It is
// invoked before every read and write and never caches its answer.
type Resolver struct {
	dir       string
	canonical string
	schema    Schema
	logger    zerolog.Logger
}

// NewResolver creates a resolver for one schema. canonical is the well-known
// file name inside dir.
func NewResolver(dir, canonical string, schema Schema, logger zerolog.Logger) *Resolver {
	return &Resolver{
		dir:       dir,
		canonical: canonical,
		schema:    schema,
		logger:    logger.With().Str("component", "resolver").Str("table", canonical).Logger(),
	}
}

// CanonicalPath returns the full path of the canonical table file.
func (r *Resolver) CanonicalPath() string {
	return filepath.Join(r.dir, r.canonical)
}

type candidate struct {
	name string
	rows int
}

// Resolve scans the data directory for workbooks whose header matches the
// schema, promotes the one with the most data rows to the canonical path
// (first discovered wins ties) and creates an empty table when nothing
// qualifies. After a nil return the canonical path holds a readable table
// with the exact expected schema.
func (r *Resolver) Resolve() (string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %v: %w", r.dir, err, ErrStorageUnavailable)
	}

	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !isWorkbook(entry.Name()) {
			continue
		}
		header, rows, err := readTable(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			// Unreadable workbooks are simply not candidates.
			continue
		}
		if r.schema.Matches(header) {
			candidates = append(candidates, candidate{name: entry.Name(), rows: len(rows)})
		}
	}

	if len(candidates) == 0 {
		r.logger.Warn().Msg("no matching table found, creating empty store")
		if err := writeTable(r.CanonicalPath(), r.schema, nil); err != nil {
			return "", fmt.Errorf("create table: %v: %w", err, ErrStorageUnavailable)
		}
		metrics.IncStoreRepair("created")
		return r.CanonicalPath(), nil
	}

	// Most rows wins; os.ReadDir order is lexical, so stable sort keeps
	// the first-discovered candidate ahead on ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rows > candidates[j].rows
	})
	winner := candidates[0]

	if winner.name != r.canonical {
		// Move-then-verify, never delete-then-move: rename replaces the
		// stale canonical file in a single step.
		if err := os.Rename(filepath.Join(r.dir, winner.name), r.CanonicalPath()); err != nil {
			return "", fmt.Errorf("promote %s: %v: %w", winner.name, err, ErrStorageUnavailable)
		}
		r.logger.Info().
			Str("promoted", winner.name).
			Int("rows", winner.rows).
			Msg("promoted candidate to canonical store")
		metrics.IncStoreRepair("promoted")
	}

	header, _, err := readTable(r.CanonicalPath())
	if err != nil || !r.schema.Matches(header) {
		return "", fmt.Errorf("verify %s: %v: %w", r.canonical, err, ErrStorageUnavailable)
	}
	return r.CanonicalPath(), nil
}

func isWorkbook(name string) bool {
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".xlsx")
}
