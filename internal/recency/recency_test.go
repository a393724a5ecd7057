package recency

import (
	"testing"
	"time"

	"GameScanner/internal/domain"
	"GameScanner/internal/timeutil"
)

var now = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func TestClassifyBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		age  time.Duration
		want domain.Recency
	}{
		{0, domain.RecencyRecent},
		{5 * 24 * time.Hour, domain.RecencyRecent},
		{21 * 24 * time.Hour, domain.RecencyRecent},
		{22 * 24 * time.Hour, domain.RecencyOld},
		{200 * 24 * time.Hour, domain.RecencyOld},
		{365 * 24 * time.Hour, domain.RecencyAbandoned},
		{900 * 24 * time.Hour, domain.RecencyAbandoned},
	}

	for _, tc := range cases {
		iso := timeutil.FormatISO(now.Add(-tc.age))
		if got := Classify(iso, now, Default); got != tc.want {
			t.Fatalf("age %v classified %s, want %s", tc.age, got, tc.want)
		}
	}
}

func TestClassifyUnparseable(t *testing.T) {
	t.Parallel()

	if got := Classify("", now, Default); got != domain.RecencyOld {
		t.Fatalf("empty timestamp should classify Old, got %s", got)
	}
	if got := Classify("last tuesday", now, Default); got != domain.RecencyOld {
		t.Fatalf("garbage timestamp should classify Old, got %s", got)
	}
}

// Bands are monotonic in age: an older timestamp never lands in a fresher
// band than a newer one.
func TestClassifyMonotonic(t *testing.T) {
	t.Parallel()

	rank := map[domain.Recency]int{
		domain.RecencyRecent:    0,
		domain.RecencyOld:       1,
		domain.RecencyAbandoned: 2,
	}

	prev := domain.RecencyRecent
	for days := 0; days <= 800; days += 7 {
		iso := timeutil.FormatISO(now.Add(-time.Duration(days) * 24 * time.Hour))
		band := Classify(iso, now, Default)
		if rank[band] < rank[prev] {
			t.Fatalf("band regressed from %s to %s at age %d days", prev, band, days)
		}
		prev = band
	}
}
