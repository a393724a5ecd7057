package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"GameScanner/internal/domain"
	"GameScanner/internal/recency"
	"GameScanner/internal/scanner"
	"GameScanner/internal/store"
	"GameScanner/internal/timeutil"
	"GameScanner/internal/title"
	"GameScanner/internal/urlutil"
)

// ProgressFunc reports per-entry progress: invoked at the fetching and
// processed points of each entry, plus once at run completion.
type ProgressFunc func(index, total int, message string)

// PipelineDeps wires all collaborators into the reconciliation pipeline.
type PipelineDeps struct {
	Registry        *scanner.Registry
	Store           *store.Store
	Thresholds      recency.Thresholds
	ExternalDomains []string
	Cookie          string
	Logger          *slog.Logger
	Now             func() time.Time
}

// Pipeline runs the observation-reconciliation workflow: fetch each entry,
// parse and classify the result, compute the change status against the
// prior observation, and merge the outcome into the entry's record.
type Pipeline struct {
	registry        *scanner.Registry
	store           *store.Store
	thresholds      recency.Thresholds
	externalDomains []string
	cookie          string
	logger          *slog.Logger
	now             func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Thresholds == (recency.Thresholds{}) {
		deps.Thresholds = recency.Default
	}
	return &Pipeline{
		registry:        deps.Registry,
		store:           deps.Store,
		thresholds:      deps.Thresholds,
		externalDomains: deps.ExternalDomains,
		cookie:          deps.Cookie,
		logger:          deps.Logger,
		now:             deps.Now,
	}
}

// ScrapeAll processes the work list strictly in input order, one entry at a
// time; the emitted result order equals the input order. Storage faults are
// logged and swallowed so a metadata write never aborts the batch; the worst
// outcome for one entry is an Error row while the rest proceed.
func (p *Pipeline) ScrapeAll(ctx context.Context, items []domain.ScrapeItem, progress ProgressFunc) []domain.GameInfo {
	total := len(items)
	results := make([]domain.GameInfo, 0, total)

	for i, item := range items {
		idx := i + 1
		results = append(results, p.processOne(ctx, idx, total, item, progress))
	}

	report(progress, total, total, fmt.Sprintf("Done (%d/%d)", total, total))
	return results
}

func (p *Pipeline) processOne(ctx context.Context, idx, total int, item domain.ScrapeItem, progress ProgressFunc) domain.GameInfo {
	pageURL := urlutil.Normalize(item.URL)
	source := urlutil.SourceFromURL(pageURL, p.externalDomains)

	report(progress, idx, total, fmt.Sprintf("Fetching (%d/%d)\n%s", idx, total, pageURL))

	res := p.registry.Resolve(source).Scrape(ctx, pageURL, p.cookie)
	version, cleanTitle := title.SplitVersion(res.RawTitle)

	updatedISO := res.UpdatedISO
	pretty := res.PrettyDate
	if updatedISO == "" && pretty != "" {
		// scraper gave only a human-readable date; synthesize the timestamp
		if t, ok := timeutil.ParsePretty(pretty); ok {
			updatedISO = timeutil.FormatISO(t)
		}
	}

	links := res.ExternalLinks
	band := domain.RecencyOld
	var change domain.ChangeStatus

	if res.Failed() {
		change = domain.ChangeError
		// a failed fetch must not overwrite discovered links with nothing
		links = nil

		prevVersion, prevISO, ok := p.store.ReadObservation(item.FolderPath, source)
		if ok {
			if prevISO != "" {
				updatedISO = prevISO
			}
			if version == "" {
				version = prevVersion
			}
		}
		if cleanTitle == "" && item.FolderPath != "" {
			cleanTitle = strings.TrimSpace(p.store.Load(item.FolderPath).Title)
		}
		pretty = timeutil.Pretty(updatedISO)

		p.debug("scrape failed", "url", pageURL, "source", source, "error", res.Err)
	} else {
		if updatedISO != "" {
			pretty = timeutil.Pretty(updatedISO)
			band = recency.Classify(updatedISO, p.now(), p.thresholds)
		}
		if pretty == "" {
			pretty = "N/A"
		}

		_, prevISO, hadPrev := p.store.ReadObservation(item.FolderPath, source)
		switch {
		case !hadPrev:
			change = domain.ChangeNew
		case updatedISO != "" && updatedISO > prevISO:
			change = domain.ChangeUpdated
		default:
			change = domain.ChangeUnchanged
		}

		p.persist(item, source, version, updatedISO, links, res.RawTitle, pageURL)
	}

	gameID := item.ForcedGameID
	if gameID == "" {
		gameID = urlutil.GameID(pageURL)
	}

	info := domain.GameInfo{
		URL:           pageURL,
		Source:        source,
		GameID:        gameID,
		Title:         orNA(cleanTitle),
		RawTitle:      orNA(res.RawTitle),
		Version:       version,
		LastUpdate:    pretty,
		UpdatedISO:    updatedISO,
		IsRecent:      band,
		ChangeStatus:  change,
		ExternalLinks: strings.Join(links, "|"),
		FolderPath:    item.FolderPath,
		FolderStatus:  item.FolderStatus,
	}

	label := info.Title
	if label == "N/A" {
		label = info.RawTitle
	}
	report(progress, idx, total, fmt.Sprintf("Processed (%d/%d) | %s | %s\n%s",
		idx, total, info.IsRecent, info.ChangeStatus, label))

	return info
}

// persist runs the independent record merges. Each fault is contained
// here: logged, never propagated, so one bad write cannot abort the run.
func (p *Pipeline) persist(item domain.ScrapeItem, source, version, updatedISO string, links []string, rawTitle, pageURL string) {
	if item.FolderPath == "" {
		return
	}

	if err := p.store.MergeDiscoveredLinks(item.FolderPath, links, source); err != nil {
		p.warn("merge discovered links failed", "folder", item.FolderPath, "error", err)
	}

	if err := p.store.UpdateObservation(item.FolderPath, source, version, updatedISO); err != nil {
		p.warn("update observation failed", "folder", item.FolderPath, "source", source, "error", err)
	}

	if rawTitle != "" {
		if err := p.store.UpdateTitle(item.FolderPath, pageURL, rawTitle); err != nil {
			p.warn("update title failed", "folder", item.FolderPath, "error", err)
		}
	}
}

func report(progress ProgressFunc, idx, total int, message string) {
	if progress != nil {
		progress(idx, total, message)
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
