package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

const primaryDomain = "fap-nation.com"

// PrimaryLabel is the source label of the primary tracked site.
const PrimaryLabel = "fap-nation"

var gameIDSeparators = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Normalize trims a URL for identity comparison. Kept conservative: no
// trailing-slash or query rewriting, so stored links stay byte-identical to
// what the page served.
func Normalize(rawURL string) string {
	return strings.TrimSpace(rawURL)
}

// IsHTTP reports whether the string is an http(s) URL. Non-URL lines in
// legacy link files are dropped with this check.
func IsHTTP(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// Domain returns the lowercase host of a URL, empty if it does not parse.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// NormalizeDomain lowercases and strips a leading "www.".
func NormalizeDomain(d string) string {
	return strings.TrimPrefix(strings.ToLower(d), "www.")
}

// GameID derives a stable entry identifier from a URL: the last path
// segment with non-alphanumeric runs collapsed to underscores.
func GameID(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "unknown"
	}

	base := u.Host
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			base = seg
		}
	}

	id := gameIDSeparators.ReplaceAllString(base, "_")
	id = strings.ToLower(strings.Trim(id, "_"))
	if id == "" {
		return "unknown"
	}
	return id
}

// SourceFromURL maps a URL to its stable source label.
//
// The primary site keeps its explicit label; supported external domains
// match exactly or by subdomain (creator.itch.io -> itch.io); anything else
// falls back to the normalized host.
func SourceFromURL(rawURL string, supported []string) string {
	d := Domain(rawURL)
	if d == "" {
		return "unknown"
	}
	d = NormalizeDomain(d)

	if d == primaryDomain || strings.HasSuffix(d, "."+primaryDomain) {
		return PrimaryLabel
	}

	for _, s := range supported {
		s = NormalizeDomain(s)
		if d == s || strings.HasSuffix(d, "."+s) {
			return s
		}
	}

	return d
}

// LooksLikeFileURL reports whether the URL matches any of the compiled
// file-download patterns; such links are excluded from discovery.
func LooksLikeFileURL(rawURL string, patterns []*regexp.Regexp) bool {
	s := strings.ToLower(rawURL)
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// CompilePatterns compiles pattern strings, skipping any that fail. A bad
// pattern narrows filtering rather than aborting a scan.
func CompilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}

// DedupeLinks normalizes and deduplicates URLs preserving first-seen order,
// dropping empties and non-http lines.
func DedupeLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, raw := range links {
		u := Normalize(raw)
		if u == "" || !IsHTTP(u) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
