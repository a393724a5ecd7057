package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"GameScanner/internal/domain"
	"GameScanner/internal/urlutil"
)

// Collect walks the library tree and produces the folder-aware work list:
// one item per manual URL of every folder holding a record or a legacy link
// file. Folders without a record are bootstrapped on the spot.
//
// The waiting root lives inside the active root, so status is assigned by
// path containment rather than by scan order. URLs are deduplicated across
// the whole library, keeping the first occurrence.
func (s *Store) Collect(activeRoot, waitingRoot string) ([]domain.ScrapeItem, error) {
	activeRoot = resolveRoot(activeRoot)
	waitingRoot = resolveRoot(waitingRoot)

	if _, err := os.Stat(activeRoot); err != nil {
		return nil, nil
	}

	var items []domain.ScrapeItem
	err := filepath.WalkDir(activeRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		status := domain.StatusActivePlay
		if isUnder(path, waitingRoot) {
			status = domain.StatusWaitingUpdate
		}

		links, ok := s.folderLinks(path, status)
		if !ok {
			return nil
		}

		for _, u := range links {
			items = append(items, domain.ScrapeItem{
				URL:          u,
				ForcedGameID: urlutil.GameID(u),
				FolderPath:   path,
				FolderStatus: status,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dedupeItems(items), nil
}

// folderLinks returns the manual URLs of a candidate folder, bootstrapping
// from the legacy file when no record exists. ok is false when the folder
// tracks nothing.
func (s *Store) folderLinks(folder string, status domain.FolderStatus) ([]string, bool) {
	if recordExists(folder) {
		rec := readRecord(folder)
		return urlutil.DedupeLinks(rec.Manual.Links), true
	}

	if _, err := os.Stat(legacyPath(folder)); err != nil {
		return nil, false
	}

	rec, err := s.Bootstrap(folder, status)
	if err != nil {
		s.debug("bootstrap failed", "folder", folder, "error", err)
		return nil, false
	}
	return rec.Manual.Links, true
}

func dedupeItems(items []domain.ScrapeItem) []domain.ScrapeItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.ScrapeItem, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.URL]; ok {
			continue
		}
		seen[it.URL] = struct{}{}
		out = append(out, it)
	}
	return out
}

func resolveRoot(root string) string {
	if strings.HasPrefix(root, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			root = filepath.Join(home, root[2:])
		}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

func isUnder(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
