package scrape

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"GameScanner/internal/domain"
	"GameScanner/internal/scanner"
	"GameScanner/internal/timeutil"
	"GameScanner/internal/urlutil"
)

// errFetchFailed is the adapter-level error signal carried on ScrapeResult.
const errFetchFailed = "fetch_failed"

// FapNationScraper extracts title, update timestamp, and external links from
// fap-nation game pages.
type FapNationScraper struct {
	client          *Client
	externalDomains []string
	filePatterns    []*regexp.Regexp
}

var _ scanner.Scraper = (*FapNationScraper)(nil)

// NewFapNationScraper wires the shared HTTP client plus the domain allowlist
// and file-URL filters used for external link collection.
func NewFapNationScraper(client *Client, externalDomains []string, filePatterns []*regexp.Regexp) *FapNationScraper {
	return &FapNationScraper{
		client:          client,
		externalDomains: externalDomains,
		filePatterns:    filePatterns,
	}
}

// Name identifies the strategy inside the registry.
func (f *FapNationScraper) Name() string {
	return urlutil.PrimaryLabel
}

// Scrape fetches one page and extracts its raw fields. Failures come back as
// the error signal on the result, never as a panic or a Go error.
func (f *FapNationScraper) Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult {
	doc, err := f.client.FetchDocument(ctx, pageURL, cookie)
	if err != nil {
		return domain.ScrapeResult{Err: errFetchFailed}
	}

	rawTitle := strings.TrimSpace(doc.Find("h1").First().Text())
	updatedISO := extractUpdatedISO(doc)

	pretty := "N/A"
	if updatedISO != "" {
		pretty = timeutil.Pretty(updatedISO)
	}

	return domain.ScrapeResult{
		RawTitle:      rawTitle,
		UpdatedISO:    updatedISO,
		PrettyDate:    pretty,
		ExternalLinks: f.collectExternalLinks(doc, pageURL),
	}
}

// extractUpdatedISO looks for a machine timestamp in the usual places:
// <time datetime>, then the article modified/published meta tags.
func extractUpdatedISO(doc *goquery.Document) string {
	for _, sel := range []string{
		"time.entry-date.published",
		"time",
	} {
		if dt, ok := doc.Find(sel).First().Attr("datetime"); ok {
			if iso := normalizeISO(dt); iso != "" {
				return iso
			}
		}
	}

	for _, prop := range []string{
		"article:modified_time",
		"article:published_time",
	} {
		sel := `meta[property="` + prop + `"]`
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if iso := normalizeISO(content); iso != "" {
				return iso
			}
		}
	}

	return ""
}

// normalizeISO converts a datetime-ish string to strict UTC Zulu, or ""
// when it cannot parse.
func normalizeISO(s string) string {
	t, ok := timeutil.ParseISO(s)
	if !ok {
		return ""
	}
	return timeutil.FormatISO(t)
}

// collectExternalLinks harvests supported-domain links from the page body,
// resolving relative hrefs, skipping file downloads, preserving first-seen
// order and deduplicating.
func (f *FapNationScraper) collectExternalLinks(doc *goquery.Document, pageURL string) []string {
	base, _ := url.Parse(pageURL)

	anchors := doc.Find("div.wpb_wrapper a[href]")
	if anchors.Length() == 0 {
		anchors = doc.Find("a[href]")
	}

	var links []string
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		if base != nil {
			if resolved, err := base.Parse(href); err == nil {
				href = resolved.String()
			}
		}
		href = urlutil.Normalize(href)

		if urlutil.LooksLikeFileURL(href, f.filePatterns) {
			return
		}

		d := urlutil.NormalizeDomain(urlutil.Domain(href))
		if d == "" {
			return
		}

		for _, s := range f.externalDomains {
			s = urlutil.NormalizeDomain(s)
			if d == s || strings.HasSuffix(d, "."+s) {
				links = append(links, href)
				return
			}
		}
	})

	return urlutil.DedupeLinks(links)
}
