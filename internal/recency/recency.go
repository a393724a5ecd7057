// Package recency bands an update timestamp by its age.
package recency

import (
	"time"

	"GameScanner/internal/domain"
	"GameScanner/internal/timeutil"
)

// Thresholds holds the band boundaries in whole days. Passed explicitly so
// the classifier stays a pure function of its inputs.
type Thresholds struct {
	RecentDays    int
	AbandonedDays int
}

// Default matches the library's long-standing policy.
var Default = Thresholds{RecentDays: 21, AbandonedDays: 365}

// Classify maps a timestamp's age to a recency band. Unparseable or empty
// timestamps classify Old; the bands are Recent, Old, Abandoned with Old as
// the middle default.
func Classify(iso string, now time.Time, th Thresholds) domain.Recency {
	t, ok := timeutil.ParseISO(iso)
	if !ok {
		return domain.RecencyOld
	}

	ageDays := int(now.UTC().Sub(t).Hours() / 24)
	switch {
	case ageDays <= th.RecentDays:
		return domain.RecencyRecent
	case ageDays >= th.AbandonedDays:
		return domain.RecencyAbandoned
	default:
		return domain.RecencyOld
	}
}
