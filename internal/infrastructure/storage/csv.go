// Package storage holds the tabular result exports: a flat CSV file and a
// sqlite cache, both keyed by URL.
package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"GameScanner/internal/domain"
	"GameScanner/internal/ports"
)

// csvColumns is the stable export column order.
var csvColumns = []string{
	"url", "source", "game_id", "title", "raw_title",
	"last_update", "updated_utc_iso", "version",
	"is_recent", "change_status", "external_links",
}

// CSVCache writes scan results to a flat CSV file and reads them back
// indexed by URL.
type CSVCache struct {
	path string
}

var _ ports.ResultHistory = (*CSVCache)(nil)

// NewCSVCache points the cache at a file path.
func NewCSVCache(path string) *CSVCache {
	return &CSVCache{path: path}
}

// Save replaces the file with the given results in stable column order.
// Written via temp-then-rename so a concurrent reader never sees a torn file.
func (c *CSVCache) Save(ctx context.Context, results []domain.GameInfo) error {
	tmp := c.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv cache: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, info := range results {
		if err := w.Write(rowOf(info)); err != nil {
			f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	return os.Rename(tmp, c.path)
}

// LoadPrevious reads the cache back, indexed by URL. A missing or broken
// file yields an empty map, matching the record store's tolerant reads.
func (c *CSVCache) LoadPrevious(ctx context.Context) (map[string]domain.GameInfo, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return map[string]domain.GameInfo{}, nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return map[string]domain.GameInfo{}, nil
	}

	out := make(map[string]domain.GameInfo, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != len(csvColumns) || rec[0] == "" {
			continue
		}
		out[rec[0]] = infoOf(rec)
	}
	return out, nil
}

func rowOf(info domain.GameInfo) []string {
	return []string{
		info.URL,
		info.Source,
		info.GameID,
		info.Title,
		info.RawTitle,
		info.LastUpdate,
		info.UpdatedISO,
		info.Version,
		string(info.IsRecent),
		string(info.ChangeStatus),
		info.ExternalLinks,
	}
}

func infoOf(rec []string) domain.GameInfo {
	return domain.GameInfo{
		URL:           rec[0],
		Source:        rec[1],
		GameID:        rec[2],
		Title:         rec[3],
		RawTitle:      rec[4],
		LastUpdate:    rec[5],
		UpdatedISO:    rec[6],
		Version:       rec[7],
		IsRecent:      domain.Recency(rec[8]),
		ChangeStatus:  domain.ChangeStatus(rec[9]),
		ExternalLinks: rec[10],
	}
}
