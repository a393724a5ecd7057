package scrape

import (
	"context"

	"GameScanner/internal/domain"
	"GameScanner/internal/scanner"
)

// The itch.io and lewdgames.to scrapers are structured hooks: registered so
// the pipeline needs no special-casing, but they do not extract anything
// yet. They return empty fields with no error signal, which downstream code
// treats as "nothing known".

// ItchScraper handles itch.io game pages.
type ItchScraper struct{}

var _ scanner.Scraper = ItchScraper{}

func (ItchScraper) Name() string { return "itch.io" }

func (ItchScraper) Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult {
	return domain.ScrapeResult{}
}

// LewdGamesScraper handles lewdgames.to pages.
type LewdGamesScraper struct{}

var _ scanner.Scraper = LewdGamesScraper{}

func (LewdGamesScraper) Name() string { return "lewdgames.to" }

func (LewdGamesScraper) Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult {
	return domain.ScrapeResult{}
}

// GenericScraper is the fallback for sources with no dedicated strategy.
type GenericScraper struct{}

var _ scanner.Scraper = GenericScraper{}

func (GenericScraper) Name() string { return "generic" }

func (GenericScraper) Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult {
	return domain.ScrapeResult{}
}
