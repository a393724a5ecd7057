// Package store owns the durable per-folder record for each tracked entry:
// manual link list, discovered-link ledger, per-source observations and the
// computed latest summary. Every write lands via temp-file-then-rename, so a
// reader never sees a half-written record.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"GameScanner/internal/domain"
)

const (
	// RecordFileName is the per-folder JSON record.
	RecordFileName = "url.json"
	// LegacyFileName is the plain-text link list a record is bootstrapped
	// from when no JSON record exists yet. Never deleted or rewritten.
	LegacyFileName = "url.txt"
)

// Manual holds the user-curated links. Authoritative: the reconciler never
// mutates it and discovered entries never duplicate it.
type Manual struct {
	Links      []string `json:"links"`
	SourceFile string   `json:"source_file"`
}

// DiscoveredLink is one ledger entry for an external URL found on a scraped
// page. Pruned once last_seen falls outside the retention window.
type DiscoveredLink struct {
	URL       string `json:"url"`
	Source    string `json:"source"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

// Observation is a source-scoped snapshot of version and update timestamp.
type Observation struct {
	Version       string `json:"version"`
	LastUpdateISO string `json:"last_update_iso"`
}

// Latest is the derived most-recent observation across all sources. Zero
// value serializes as {} when no observation has a known timestamp.
type Latest struct {
	Source        string `json:"source,omitempty"`
	Version       string `json:"version,omitempty"`
	LastUpdateISO string `json:"last_update_iso,omitempty"`
	ComputedAt    string `json:"computed_at,omitempty"`
}

// Record is the durable state of one tracked entry.
type Record struct {
	GameID       string                 `json:"game_id"`
	Status       domain.FolderStatus    `json:"status"`
	Title        string                 `json:"title,omitempty"`
	Manual       Manual                 `json:"manual"`
	Discovered   []DiscoveredLink       `json:"discovered"`
	Observations map[string]Observation `json:"observations"`
	Latest       Latest                 `json:"latest"`
	UpdatedAt    string                 `json:"updated_at"`
}

// normalize guarantees the container fields are present so downstream code
// never branches on nil and every write persists the full shape.
func (r *Record) normalize() {
	if r.Manual.Links == nil {
		r.Manual.Links = []string{}
	}
	if r.Discovered == nil {
		r.Discovered = []DiscoveredLink{}
	}
	if r.Observations == nil {
		r.Observations = map[string]Observation{}
	}
}

func recordPath(folder string) string {
	return filepath.Join(folder, RecordFileName)
}

func legacyPath(folder string) string {
	return filepath.Join(folder, LegacyFileName)
}

// recordExists gates the mutating operations: a folder without a record is a
// silent no-op, never an error and never an implicit create.
func recordExists(folder string) bool {
	info, err := os.Stat(recordPath(folder))
	return err == nil && !info.IsDir()
}

func readRecord(folder string) Record {
	var rec Record
	raw, err := os.ReadFile(recordPath(folder))
	if err == nil {
		_ = json.Unmarshal(raw, &rec)
	}
	rec.normalize()
	return rec
}

// writeRecord serializes the full record and atomically replaces the prior
// one. A crash mid-write leaves the previous record intact.
func writeRecord(folder string, rec Record) error {
	rec.normalize()

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	path := recordPath(folder)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
