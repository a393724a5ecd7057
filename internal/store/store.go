package store

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"GameScanner/internal/domain"
	"GameScanner/internal/timeutil"
	"GameScanner/internal/title"
	"GameScanner/internal/urlutil"
)

// Store performs all reads and merges against per-folder records.
type Store struct {
	pruneDays int
	now       func() time.Time
	logger    *slog.Logger
}

// Options configures a Store. Zero values fall back to the default retention
// window and wall-clock time.
type Options struct {
	PruneDays int
	Now       func() time.Time
	Logger    *slog.Logger
}

// New builds a Store.
func New(opts Options) *Store {
	if opts.PruneDays <= 0 {
		opts.PruneDays = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		pruneDays: opts.PruneDays,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

func (s *Store) nowISO() string {
	return timeutil.FormatISO(s.now())
}

// Load reads the persisted record for a folder. Absent or unreadable records
// return an empty-shaped default; callers must tolerate empty containers.
func (s *Store) Load(folder string) Record {
	return readRecord(folder)
}

// Bootstrap constructs the first record for a folder from its legacy
// plain-text link file: blank and #-comment lines ignored, http(s)-only,
// deduplicated preserving order, game id derived from the first link. The
// record is persisted immediately; the legacy file is left in place.
func (s *Store) Bootstrap(folder string, status domain.FolderStatus) (Record, error) {
	raw, err := os.ReadFile(legacyPath(folder))
	if err != nil {
		return Record{}, fmt.Errorf("read legacy links: %w", err)
	}

	var links []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	links = urlutil.DedupeLinks(links)

	gameID := ""
	if len(links) > 0 {
		gameID = urlutil.GameID(links[0])
	}

	rec := Record{
		GameID: gameID,
		Status: status,
		Manual: Manual{
			Links:      links,
			SourceFile: LegacyFileName,
		},
		UpdatedAt: s.nowISO(),
	}
	rec.normalize()

	if err := writeRecord(folder, rec); err != nil {
		return Record{}, fmt.Errorf("write bootstrapped record: %w", err)
	}
	return rec, nil
}

// MergeDiscoveredLinks merges scraped external links into the folder's
// discovery ledger and prunes entries not re-observed within the retention
// window. Manual links are authoritative and never enter the ledger.
//
// The merged ledger is diffed against the stored one; when nothing changed
// beyond last_seen bumps on entries still safely inside the retention
// window, no write happens at all. A folder without a record is a silent
// no-op.
func (s *Store) MergeDiscoveredLinks(folder string, incoming []string, source string) error {
	if !recordExists(folder) {
		return nil
	}

	rec := readRecord(folder)

	manualSet := make(map[string]struct{}, len(rec.Manual.Links))
	for _, u := range rec.Manual.Links {
		if n := urlutil.Normalize(u); n != "" {
			manualSet[n] = struct{}{}
		}
	}

	index := make(map[string]DiscoveredLink, len(rec.Discovered))
	order := make([]string, 0, len(rec.Discovered))
	for _, entry := range rec.Discovered {
		u := urlutil.Normalize(entry.URL)
		if u == "" {
			continue
		}
		entry.URL = u
		if _, ok := index[u]; !ok {
			order = append(order, u)
		}
		index[u] = entry
	}

	nowISO := s.nowISO()
	for _, u := range urlutil.DedupeLinks(incoming) {
		if _, ok := manualSet[u]; ok {
			continue
		}

		if entry, ok := index[u]; ok {
			entry.LastSeen = nowISO
			if source != "" && entry.Source == "" {
				entry.Source = source
			}
			index[u] = entry
			continue
		}

		index[u] = DiscoveredLink{
			URL:       u,
			Source:    source,
			FirstSeen: nowISO,
			LastSeen:  nowISO,
		}
		order = append(order, u)
	}

	cutoff := s.now().UTC().Add(-time.Duration(s.pruneDays) * 24 * time.Hour)
	kept := make([]DiscoveredLink, 0, len(index))
	for _, u := range order {
		entry := index[u]
		lastSeen, ok := timeutil.ParseISO(entry.LastSeen)
		if ok && lastSeen.Before(cutoff) {
			continue
		}
		// unparseable last_seen survives: fail safe, never prune blind
		kept = append(kept, entry)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].URL < kept[j].URL })

	if !ledgerChanged(rec.Discovered, kept, cutoff) {
		return nil
	}

	rec.Discovered = kept
	rec.UpdatedAt = nowISO
	if err := writeRecord(folder, rec); err != nil {
		return fmt.Errorf("merge discovered links: %w", err)
	}
	return nil
}

// ledgerChanged reports whether the merged ledger needs persisting. A
// re-observed entry whose only difference is a fresher last_seen does not
// count as a change while the stored last_seen is still inside the
// retention window, so merging identical content twice stays a no-op under
// a wall clock. Once the stored timestamp ages past the window the bump is
// persisted, keeping a continuously observed link clear of the prune.
func ledgerChanged(stored, merged []DiscoveredLink, cutoff time.Time) bool {
	if len(stored) != len(merged) {
		return true
	}
	for i := range merged {
		prev, next := stored[i], merged[i]
		if prev.URL != next.URL || prev.Source != next.Source || prev.FirstSeen != next.FirstSeen {
			return true
		}
		if prev.LastSeen == next.LastSeen {
			continue
		}
		lastSeen, ok := timeutil.ParseISO(prev.LastSeen)
		if !ok || lastSeen.Before(cutoff) {
			return true
		}
	}
	return false
}

// ReadObservation returns the stored version and timestamp for one source.
// ok is false when the record or the source slot is absent.
func (s *Store) ReadObservation(folder, source string) (version, lastUpdateISO string, ok bool) {
	if !recordExists(folder) {
		return "", "", false
	}

	obs, ok := readRecord(folder).Observations[source]
	if !ok {
		return "", "", false
	}
	return obs.Version, obs.LastUpdateISO, true
}

// UpdateObservation overwrites the observation slot for a source and
// recomputes the latest summary: the maximum last_update_iso across all
// slots with a known timestamp. Ties break to the lexicographically
// smallest source label, so the result is deterministic regardless of map
// iteration order. A folder without a record is a silent no-op.
func (s *Store) UpdateObservation(folder, source, version, lastUpdateISO string) error {
	if !recordExists(folder) {
		return nil
	}

	rec := readRecord(folder)
	rec.Observations[source] = Observation{
		Version:       version,
		LastUpdateISO: lastUpdateISO,
	}

	nowISO := s.nowISO()
	rec.Latest = computeLatest(rec.Observations, nowISO)
	rec.UpdatedAt = nowISO

	if err := writeRecord(folder, rec); err != nil {
		return fmt.Errorf("update observation %s: %w", source, err)
	}
	return nil
}

func computeLatest(observations map[string]Observation, nowISO string) Latest {
	sources := make([]string, 0, len(observations))
	for src := range observations {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var best Latest
	for _, src := range sources {
		obs := observations[src]
		if obs.LastUpdateISO == "" {
			continue
		}
		if best.LastUpdateISO == "" || obs.LastUpdateISO > best.LastUpdateISO {
			best = Latest{
				Source:        src,
				Version:       obs.Version,
				LastUpdateISO: obs.LastUpdateISO,
			}
		}
	}

	if best.LastUpdateISO == "" {
		return Latest{}
	}
	best.ComputedAt = nowISO
	return best
}

// UpdateTitle stores a cleaned display title derived from the scraped raw
// title. Guarded: only applies when the scraped URL is one of the folder's
// manual links, and only upgrades the stored title when the existing one is
// empty, a game-id placeholder, dirty (still carries trailing brackets), or
// the new title is strictly longer and contains a space.
func (s *Store) UpdateTitle(folder, scrapedURL, rawTitle string) error {
	if !recordExists(folder) {
		return nil
	}

	rec := readRecord(folder)

	scraped := urlutil.Normalize(scrapedURL)
	member := false
	for _, u := range rec.Manual.Links {
		if urlutil.Normalize(u) == scraped {
			member = true
			break
		}
	}
	if !member {
		s.debug("title skipped, url not in manual links", "folder", folder, "url", scraped)
		return nil
	}

	cleaned := title.Clean(rawTitle)
	if cleaned == "" {
		return nil
	}

	existing := strings.TrimSpace(rec.Title)
	existingClean := title.Clean(existing)

	switch {
	case existingClean == "":
	case rec.GameID != "" && existingClean == rec.GameID:
	case existing != existingClean:
	case len(cleaned) > len(existingClean) && strings.Contains(cleaned, " "):
	default:
		s.debug("title kept", "folder", folder, "existing", existing, "candidate", cleaned)
		return nil
	}

	rec.Title = cleaned
	rec.UpdatedAt = s.nowISO()
	if err := writeRecord(folder, rec); err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
