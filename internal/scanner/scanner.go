package scanner

import (
	"context"

	"GameScanner/internal/domain"
)

// Scraper captures a single per-site extraction strategy. Implementations
// never return a Go error past this boundary; failures surface as the
// ScrapeResult error signal so one bad page cannot abort a run.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult
}

// Registry keeps a mapping from source labels to scraper implementations,
// with a generic fallback for unrecognized sources.
type Registry struct {
	scrapers map[string]Scraper
	fallback Scraper
}

// NewRegistry builds a registry around the given fallback scraper.
func NewRegistry(fallback Scraper) *Registry {
	return &Registry{
		scrapers: map[string]Scraper{},
		fallback: fallback,
	}
}

// Register adds or replaces a scraper implementation.
func (r *Registry) Register(s Scraper) {
	if r.scrapers == nil {
		r.scrapers = map[string]Scraper{}
	}
	r.scrapers[s.Name()] = s
}

// Resolve returns the scraper for a source label, or the fallback when no
// site-specific implementation exists.
func (r *Registry) Resolve(source string) Scraper {
	if s, ok := r.scrapers[source]; ok {
		return s
	}
	return r.fallback
}
