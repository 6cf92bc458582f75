package tui

import "github.com/mhartley/tally/internal/query"

// pageLoadedMsg carries a search result back into the browser. Stale
// responses never produce this message; the controller drops them.
type pageLoadedMsg struct {
	snapshot query.Snapshot
}

// submitDoneMsg reports the outcome of an entry submit.
type submitDoneMsg struct {
	err error
}

// errorMsg surfaces a failed fetch without touching the current snapshot.
type errorMsg struct {
	err error
}
