package ports

import (
	"context"
	"time"

	"GameScanner/internal/domain"
)

// ResultSink persists the rows a scan run produced (CSV file, sqlite cache).
type ResultSink interface {
	Save(ctx context.Context, results []domain.GameInfo) error
}

// ResultHistory additionally serves previously exported rows back, keyed by
// URL, for offline inspection between runs.
type ResultHistory interface {
	ResultSink
	LoadPrevious(ctx context.Context) (map[string]domain.GameInfo, error)
}

// Scheduler controls when watch-mode rescans execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
