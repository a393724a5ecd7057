package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"GameScanner/internal/domain"
	"GameScanner/internal/recency"
	"GameScanner/internal/scanner"
	"GameScanner/internal/store"
	"GameScanner/internal/timeutil"
)

var fixedNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

type fakeScraper struct {
	name    string
	results map[string]domain.ScrapeResult
	calls   []string
}

func (f *fakeScraper) Name() string { return f.name }

func (f *fakeScraper) Scrape(ctx context.Context, pageURL, cookie string) domain.ScrapeResult {
	f.calls = append(f.calls, pageURL)
	return f.results[pageURL]
}

func newTestPipeline(fake *fakeScraper, st *store.Store) *Pipeline {
	registry := scanner.NewRegistry(&fakeScraper{name: "generic"})
	registry.Register(fake)

	return NewPipeline(PipelineDeps{
		Registry:        registry,
		Store:           st,
		Thresholds:      recency.Default,
		ExternalDomains: []string{"itch.io", "patreon.com"},
		Now:             func() time.Time { return fixedNow },
	})
}

func newTestStore() *store.Store {
	return store.New(store.Options{
		PruneDays: 10,
		Now:       func() time.Time { return fixedNow },
	})
}

func newFolder(t *testing.T, st *store.Store, pageURL string) string {
	t.Helper()
	folder := t.TempDir()
	if err := os.WriteFile(filepath.Join(folder, store.LegacyFileName), []byte(pageURL+"\n"), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}
	if _, err := st.Bootstrap(folder, domain.StatusActivePlay); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return folder
}

func TestScrapeAllNewEntry(t *testing.T) {
	t.Parallel()

	pageURL := "https://fap-nation.com/games/best-game/"
	updatedISO := timeutil.FormatISO(fixedNow.Add(-5 * 24 * time.Hour))

	st := newTestStore()
	folder := newFolder(t, st, pageURL)

	fake := &fakeScraper{
		name: "fap-nation",
		results: map[string]domain.ScrapeResult{
			pageURL: {
				RawTitle:      "Best Game [v1.2] [MEF]",
				UpdatedISO:    updatedISO,
				ExternalLinks: []string{"https://creator.itch.io/best-game", "https://www.patreon.com/maker"},
			},
		},
	}
	p := newTestPipeline(fake, st)

	items := []domain.ScrapeItem{{URL: pageURL, FolderPath: folder, FolderStatus: domain.StatusActivePlay}}
	results := p.ScrapeAll(context.Background(), items, nil)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	info := results[0]
	if info.ChangeStatus != domain.ChangeNew {
		t.Fatalf("first sighting should be New, got %s", info.ChangeStatus)
	}
	if info.IsRecent != domain.RecencyRecent {
		t.Fatalf("5 day old update should be Recent, got %s", info.IsRecent)
	}
	if info.Version != "v1.2" || info.Title != "Best Game" {
		t.Fatalf("unexpected parse: %q %q", info.Version, info.Title)
	}
	if info.Source != "fap-nation" {
		t.Fatalf("unexpected source: %s", info.Source)
	}
	if info.GameID != "best_game" {
		t.Fatalf("unexpected game id: %s", info.GameID)
	}
	if info.ExternalLinks != "https://creator.itch.io/best-game|https://www.patreon.com/maker" {
		t.Fatalf("unexpected links: %s", info.ExternalLinks)
	}
	if info.LastUpdate != timeutil.Pretty(updatedISO) {
		t.Fatalf("unexpected pretty date: %s", info.LastUpdate)
	}

	// both persistence calls landed
	version, iso, ok := st.ReadObservation(folder, "fap-nation")
	if !ok || version != "v1.2" || iso != updatedISO {
		t.Fatalf("observation not persisted: %q %q %v", version, iso, ok)
	}
	rec := st.Load(folder)
	if len(rec.Discovered) != 2 {
		t.Fatalf("links not merged: %+v", rec.Discovered)
	}
	if rec.Title != "Best Game" {
		t.Fatalf("title not stored: %q", rec.Title)
	}
	if rec.Latest.Source != "fap-nation" || rec.Latest.LastUpdateISO != updatedISO {
		t.Fatalf("latest not recomputed: %+v", rec.Latest)
	}
}

func TestScrapeAllChangeStatusTransitions(t *testing.T) {
	t.Parallel()

	pageURL := "https://fap-nation.com/games/twice/"
	firstISO := "2024-01-01T00:00:00Z"
	secondISO := "2024-06-01T00:00:00Z"

	st := newTestStore()
	folder := newFolder(t, st, pageURL)

	fake := &fakeScraper{
		name: "fap-nation",
		results: map[string]domain.ScrapeResult{
			pageURL: {RawTitle: "Twice [v1]", UpdatedISO: firstISO},
		},
	}
	p := newTestPipeline(fake, st)
	items := []domain.ScrapeItem{{URL: pageURL, FolderPath: folder}}

	if got := p.ScrapeAll(context.Background(), items, nil)[0].ChangeStatus; got != domain.ChangeNew {
		t.Fatalf("run 1 should be New, got %s", got)
	}
	if got := p.ScrapeAll(context.Background(), items, nil)[0].ChangeStatus; got != domain.ChangeUnchanged {
		t.Fatalf("run 2 with identical timestamp should be Unchanged, got %s", got)
	}

	fake.results[pageURL] = domain.ScrapeResult{RawTitle: "Twice [v2]", UpdatedISO: secondISO}
	if got := p.ScrapeAll(context.Background(), items, nil)[0].ChangeStatus; got != domain.ChangeUpdated {
		t.Fatalf("run 3 with greater timestamp should be Updated, got %s", got)
	}
}

func TestScrapeAllErrorFallsBackToPreviousObservation(t *testing.T) {
	t.Parallel()

	pageURL := "https://fap-nation.com/games/flaky/"
	prevISO := "2026-07-01T00:00:00Z"

	st := newTestStore()
	folder := newFolder(t, st, pageURL)
	if err := st.UpdateObservation(folder, "fap-nation", "v0.9", prevISO); err != nil {
		t.Fatalf("seed observation: %v", err)
	}
	if err := st.MergeDiscoveredLinks(folder, []string{"https://creator.itch.io/flaky"}, "fap-nation"); err != nil {
		t.Fatalf("seed links: %v", err)
	}
	before := st.Load(folder)

	fake := &fakeScraper{
		name: "fap-nation",
		results: map[string]domain.ScrapeResult{
			pageURL: {Err: "fetch_failed"},
		},
	}
	p := newTestPipeline(fake, st)

	items := []domain.ScrapeItem{{URL: pageURL, FolderPath: folder}}
	info := p.ScrapeAll(context.Background(), items, nil)[0]

	if info.ChangeStatus != domain.ChangeError {
		t.Fatalf("failed fetch must report Error, got %s", info.ChangeStatus)
	}
	if info.UpdatedISO != prevISO || info.Version != "v0.9" {
		t.Fatalf("expected fallback to previous observation, got %q %q", info.UpdatedISO, info.Version)
	}
	if info.LastUpdate != timeutil.Pretty(prevISO) {
		t.Fatalf("unexpected pretty date: %s", info.LastUpdate)
	}
	if info.ExternalLinks != "" {
		t.Fatalf("failed fetch must not report links: %s", info.ExternalLinks)
	}

	// the record is untouched: no merge, no prune, no observation change
	after := st.Load(folder)
	if fmt.Sprintf("%+v", after) != fmt.Sprintf("%+v", before) {
		t.Fatalf("record changed on failed fetch:\nbefore: %+v\nafter: %+v", before, after)
	}
}

func TestScrapeAllSynthesizesISOFromPrettyDate(t *testing.T) {
	t.Parallel()

	pageURL := "https://fap-nation.com/games/datey/"

	st := newTestStore()
	folder := newFolder(t, st, pageURL)

	fake := &fakeScraper{
		name: "fap-nation",
		results: map[string]domain.ScrapeResult{
			pageURL: {RawTitle: "Datey [v1]", PrettyDate: "June 3, 2025"},
		},
	}
	p := newTestPipeline(fake, st)

	items := []domain.ScrapeItem{{URL: pageURL, FolderPath: folder}}
	info := p.ScrapeAll(context.Background(), items, nil)[0]

	if info.UpdatedISO != "2025-06-03T00:00:00Z" {
		t.Fatalf("pretty date should synthesize a timestamp, got %q", info.UpdatedISO)
	}

	_, iso, ok := st.ReadObservation(folder, "fap-nation")
	if !ok || iso != "2025-06-03T00:00:00Z" {
		t.Fatalf("synthesized timestamp not persisted: %q %v", iso, ok)
	}
}

func TestScrapeAllOrderAndProgress(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://fap-nation.com/games/one/",
		"https://fap-nation.com/games/two/",
		"https://fap-nation.com/games/three/",
	}

	results := map[string]domain.ScrapeResult{}
	items := make([]domain.ScrapeItem, 0, len(urls))
	for _, u := range urls {
		results[u] = domain.ScrapeResult{RawTitle: "Game [v1]", UpdatedISO: "2026-08-30T00:00:00Z"}
		items = append(items, domain.ScrapeItem{URL: u})
	}

	fake := &fakeScraper{name: "fap-nation", results: results}
	p := newTestPipeline(fake, newTestStore())

	type call struct {
		index, total int
		message      string
	}
	var calls []call
	progress := func(index, total int, message string) {
		calls = append(calls, call{index, total, message})
	}

	got := p.ScrapeAll(context.Background(), items, progress)

	if len(got) != len(urls) {
		t.Fatalf("expected %d results, got %d", len(urls), len(got))
	}
	for i, u := range urls {
		if got[i].URL != u {
			t.Fatalf("result order must equal input order: position %d is %s", i, got[i].URL)
		}
	}
	for i, u := range urls {
		if fake.calls[i] != u {
			t.Fatalf("fetch order must equal input order: call %d was %s", i, fake.calls[i])
		}
	}

	// two progress calls per entry plus the completion call
	if len(calls) != 2*len(urls)+1 {
		t.Fatalf("expected %d progress calls, got %d", 2*len(urls)+1, len(calls))
	}
	for i := range urls {
		fetching := calls[2*i]
		processed := calls[2*i+1]
		if fetching.index != i+1 || !strings.HasPrefix(fetching.message, "Fetching") {
			t.Fatalf("unexpected fetching call: %+v", fetching)
		}
		if processed.index != i+1 || !strings.HasPrefix(processed.message, "Processed") {
			t.Fatalf("unexpected processed call: %+v", processed)
		}
	}
	last := calls[len(calls)-1]
	if last.index != len(urls) || last.total != len(urls) || !strings.HasPrefix(last.message, "Done") {
		t.Fatalf("unexpected completion call: %+v", last)
	}
}

func TestScrapeAllFolderlessEntry(t *testing.T) {
	t.Parallel()

	pageURL := "https://fap-nation.com/games/loose/"
	fake := &fakeScraper{
		name: "fap-nation",
		results: map[string]domain.ScrapeResult{
			pageURL: {RawTitle: "Loose [v1]", UpdatedISO: "2026-08-30T00:00:00Z"},
		},
	}
	p := newTestPipeline(fake, newTestStore())

	info := p.ScrapeAll(context.Background(), []domain.ScrapeItem{{URL: pageURL}}, nil)[0]
	if info.ChangeStatus != domain.ChangeNew {
		t.Fatalf("entry without a record has no prior observation, want New, got %s", info.ChangeStatus)
	}
}
