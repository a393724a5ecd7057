// Package timeutil handles the strict UTC Zulu timestamp format used by the
// record files plus the human-readable date form shown in the UI.
package timeutil

import (
	"strings"
	"time"
)

// ISOLayout is the canonical persisted timestamp form. ISO strings in this
// layout compare correctly as plain strings, which the latest/change-status
// logic relies on.
const ISOLayout = "2006-01-02T15:04:05Z"

const prettyLayout = "January 2, 2006"

// FormatISO renders a time as canonical UTC Zulu.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseISO parses an ISO-8601 timestamp, accepting Zulu or numeric offsets,
// and normalizes to UTC. ok is false for anything unparseable.
func ParseISO(iso string) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{ISOLayout, time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Pretty converts an ISO timestamp to "January 2, 2006", or "N/A" when the
// input is empty or unparseable.
func Pretty(iso string) string {
	t, ok := ParseISO(iso)
	if !ok {
		return "N/A"
	}
	return t.Format(prettyLayout)
}

// ParsePretty attempts the reverse of Pretty for scrapers that only expose a
// human-readable date.
func ParsePretty(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return time.Time{}, false
	}
	if t, err := time.Parse(prettyLayout, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
