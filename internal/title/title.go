// Package title parses scraped page titles into display title and version.
package title

import (
	"regexp"
	"strings"
)

var (
	firstBracket     = regexp.MustCompile(`\[([^\]]+)\]`)
	anyBracket       = regexp.MustCompile(`\[[^\]]*\]`)
	trailingBrackets = regexp.MustCompile(`(\s*\[[^\]]+\])+\s*$`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SplitVersion extracts the version tag from a raw page title. The first
// bracket group is the version; the clean title is the raw title with every
// bracket group removed and whitespace collapsed.
//
//	"Best Game [v1.2] [MEF]" -> ("v1.2", "Best Game")
func SplitVersion(raw string) (version, clean string) {
	if m := firstBracket.FindStringSubmatch(raw); m != nil {
		version = strings.TrimSpace(m[1])
	}

	clean = anyBracket.ReplaceAllString(raw, "")
	clean = whitespaceRuns.ReplaceAllString(clean, " ")
	clean = strings.Trim(clean, " -–—\t")
	return version, clean
}

// Clean strips only trailing bracket groups ("[Episode 8a] [MEF]") and
// normalizes whitespace. Interior brackets are part of the title here; this
// is the form stored on the record by the title-upgrade path.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = trailingBrackets.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
