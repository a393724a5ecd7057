package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"GameScanner/internal/domain"
	"GameScanner/internal/ports"
	"GameScanner/internal/timeutil"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS scan_results (
    url            TEXT PRIMARY KEY,
    source         TEXT NOT NULL DEFAULT '',
    game_id        TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL DEFAULT '',
    raw_title      TEXT NOT NULL DEFAULT '',
    last_update    TEXT NOT NULL DEFAULT '',
    updated_utc_iso TEXT NOT NULL DEFAULT '',
    version        TEXT NOT NULL DEFAULT '',
    is_recent      TEXT NOT NULL DEFAULT '',
    change_status  TEXT NOT NULL DEFAULT '',
    external_links TEXT NOT NULL DEFAULT '',
    scanned_at     TEXT NOT NULL DEFAULT ''
)`

var resultColumns = []string{
	"url", "source", "game_id", "title", "raw_title",
	"last_update", "updated_utc_iso", "version",
	"is_recent", "change_status", "external_links", "scanned_at",
}

// SQLiteCache upserts scan results into a local sqlite database, keeping one
// row per URL with the last scan that touched it.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.ResultHistory = (*SQLiteCache)(nil)

// OpenSQLiteCache opens (creating if needed) the cache database.
func OpenSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	if _, err := db.Exec(createResultsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create scan_results schema: %w", err)
	}
	return &SQLiteCache{db: db, now: time.Now}, nil
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Save upserts every result row inside one transaction.
func (c *SQLiteCache) Save(ctx context.Context, results []domain.GameInfo) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	scannedAt := timeutil.FormatISO(c.now())
	for _, info := range results {
		query, args, err := sq.Insert("scan_results").
			Columns(resultColumns...).
			Values(
				info.URL, info.Source, info.GameID, info.Title, info.RawTitle,
				info.LastUpdate, info.UpdatedISO, info.Version,
				string(info.IsRecent), string(info.ChangeStatus), info.ExternalLinks,
				scannedAt,
			).
			Suffix(`ON CONFLICT(url) DO UPDATE SET
                source = excluded.source,
                game_id = excluded.game_id,
                title = excluded.title,
                raw_title = excluded.raw_title,
                last_update = excluded.last_update,
                updated_utc_iso = excluded.updated_utc_iso,
                version = excluded.version,
                is_recent = excluded.is_recent,
                change_status = excluded.change_status,
                external_links = excluded.external_links,
                scanned_at = excluded.scanned_at`).
			ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build upsert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", info.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadPrevious returns the cached rows indexed by URL.
func (c *SQLiteCache) LoadPrevious(ctx context.Context) (map[string]domain.GameInfo, error) {
	query, args, err := sq.Select(resultColumns...).
		From("scan_results").
		OrderBy("url").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scan_results: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.GameInfo{}
	for rows.Next() {
		var info domain.GameInfo
		var isRecent, changeStatus, scannedAt string
		if err := rows.Scan(
			&info.URL, &info.Source, &info.GameID, &info.Title, &info.RawTitle,
			&info.LastUpdate, &info.UpdatedISO, &info.Version,
			&isRecent, &changeStatus, &info.ExternalLinks, &scannedAt,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		info.IsRecent = domain.Recency(isRecent)
		info.ChangeStatus = domain.ChangeStatus(changeStatus)
		out[info.URL] = info
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return out, nil
}
