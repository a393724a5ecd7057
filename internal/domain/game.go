package domain

// FolderStatus classifies an entry by which library subtree it lives under.
type FolderStatus string

const (
	StatusActivePlay    FolderStatus = "Active Play"
	StatusWaitingUpdate FolderStatus = "Waiting Update"
)

// Recency bands an update timestamp by age.
type Recency string

const (
	RecencyRecent    Recency = "Recent"
	RecencyOld       Recency = "Old"
	RecencyAbandoned Recency = "Abandoned"
)

// ChangeStatus is derived per run by comparing the new observation to the
// prior one; it is never stored on the record.
type ChangeStatus string

const (
	ChangeNew       ChangeStatus = "New"
	ChangeUpdated   ChangeStatus = "Updated"
	ChangeUnchanged ChangeStatus = "Unchanged"
	ChangeError     ChangeStatus = "Error"
)

// GameInfo is the per-entry row model produced by a scan run. Persistence is
// the per-folder record file; GameInfo is derived at runtime for display and
// tabular export.
type GameInfo struct {
	URL           string
	Source        string
	GameID        string
	Title         string
	RawTitle      string
	Version       string
	LastUpdate    string // pretty date, "N/A" when unknown
	UpdatedISO    string // strict UTC Zulu, empty when unknown
	IsRecent      Recency
	ChangeStatus  ChangeStatus
	ExternalLinks string // links joined with "|"

	FolderPath   string
	FolderStatus FolderStatus
}

// ScrapeResult is the raw extraction from a single page before recency and
// change-status processing. Produced per fetch, consumed immediately.
type ScrapeResult struct {
	RawTitle      string
	UpdatedISO    string
	PrettyDate    string
	ExternalLinks []string
	Err           string // empty means success
}

// Failed reports whether the fetch returned an adapter-level error signal.
func (r ScrapeResult) Failed() bool {
	return r.Err != ""
}

// ScrapeItem is a folder-aware scrape request for one tracked URL.
type ScrapeItem struct {
	URL          string
	ForcedGameID string
	FolderPath   string
	FolderStatus FolderStatus
}
