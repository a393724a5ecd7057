package scrape

import (
	"regexp"
	"strings"
	"time"
)

// Policy describes rate-limit, scope and politeness settings for outbound
// scraping. It is configuration only: the fetch path does not consult it
// yet, matching the current sequential single-fetch model.
type Policy struct {
	UserAgent        string
	RespectRobotsTXT bool

	AllowedDomains  []string
	BlockedDomains  []string
	AllowedURLRegex []string
	BlockedURLRegex []string

	PerHostRPS         float64
	PerHostBurst       int
	GlobalConcurrency  int
	PerHostConcurrency int

	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	RetryOnStatus []int

	MaxResponseBytes   int64
	AcceptMIMEPrefixes []string
}

// DefaultPolicy returns the conservative defaults.
func DefaultPolicy() Policy {
	return Policy{
		UserAgent:          "GameScanner/1.0",
		RespectRobotsTXT:   true,
		PerHostRPS:         0.5,
		PerHostBurst:       2,
		GlobalConcurrency:  6,
		PerHostConcurrency: 2,
		Timeout:            20 * time.Second,
		MaxRetries:         3,
		RetryBackoff:       750 * time.Millisecond,
		RetryOnStatus:      []int{429, 500, 502, 503, 504},
		MaxResponseBytes:   8 << 20,
		AcceptMIMEPrefixes: []string{"text/", "application/json", "application/xml"},
	}
}

// URLAllowed applies the scope rules: domain allow/block lists first, then
// blocked URL patterns, then the allow patterns (which, when present, must
// match).
func (p Policy) URLAllowed(rawURL, host string) bool {
	if len(p.AllowedDomains) > 0 && !matchesDomain(host, p.AllowedDomains) {
		return false
	}
	if matchesDomain(host, p.BlockedDomains) {
		return false
	}

	for _, pat := range p.BlockedURLRegex {
		if matched, _ := regexp.MatchString(pat, rawURL); matched {
			return false
		}
	}

	if len(p.AllowedURLRegex) > 0 {
		for _, pat := range p.AllowedURLRegex {
			if matched, _ := regexp.MatchString(pat, rawURL); matched {
				return true
			}
		}
		return false
	}

	return true
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
