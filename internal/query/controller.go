// Package query owns the filter criteria, pagination cursor and request
// fencing for the transaction history view. Filter and page state belong to
// exactly one controller instance; rendered results are replaceable
// snapshots, never mutated in place.
package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
)

// Searcher is the slice of the ledger client the controller fetches through.
type Searcher interface {
	SearchTransactions(ctx context.Context, p ledger.SearchParams) (*model.TransactionPage, error)
}

// PageSizes is the fixed set of allowed page sizes.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize matches the history view's initial state.
const DefaultPageSize = 10

// ErrStale marks a fetch whose response arrived after a newer query was
// issued. The result has been dropped; the caller should simply move on.
var ErrStale = errors.New("query superseded by a newer one")

// Filter is the server-side search criteria. Empty string means "any";
// Type additionally accepts the three entry modes.
type Filter struct {
	AccountID  string
	CategoryID string
	Type       string
	StartDate  string
	EndDate    string
	Keyword    string
}

// Patch is a partial filter update; nil fields are left untouched.
type Patch struct {
	AccountID  *string
	CategoryID *string
	Type       *string
	StartDate  *string
	EndDate    *string
	Keyword    *string
}

// Snapshot is the most recent non-stale result set.
type Snapshot struct {
	Transactions  []model.Transaction
	TotalElements int64
	Generation    uint64
}

// Controller derives the next server query from its state and reconciles
// responses against stale in-flight requests. Mutators never block on the
// network; an outstanding fetch cannot delay new filter edits.
type Controller struct {
	searcher Searcher
	userID   string

	mu         sync.Mutex
	filter     Filter
	page       int
	size       int
	generation uint64
	snapshot   Snapshot
}

// New creates a controller with empty filters, page 0 and the default size.
func New(searcher Searcher, userID string) *Controller {
	return &Controller{
		searcher: searcher,
		userID:   userID,
		size:     DefaultPageSize,
	}
}

// Filter returns a copy of the current criteria.
func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Page returns the current page index.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// PageSize returns the current page size.
func (c *Controller) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Generation returns the most recently issued query generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Snapshot returns the last applied (non-stale) result.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// SetFilter merges a partial update into the criteria, resets the page to 0
// and supersedes any in-flight query. Returns the new generation.
func (c *Controller) SetFilter(patch Patch) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if patch.AccountID != nil {
		c.filter.AccountID = *patch.AccountID
	}
	if patch.CategoryID != nil {
		c.filter.CategoryID = *patch.CategoryID
	}
	if patch.Type != nil {
		c.filter.Type = *patch.Type
	}
	if patch.StartDate != nil {
		c.filter.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		c.filter.EndDate = *patch.EndDate
	}
	if patch.Keyword != nil {
		c.filter.Keyword = *patch.Keyword
	}
	c.page = 0
	c.generation++
	return c.generation
}

// SetPage moves the cursor without touching the filters.
func (c *Controller) SetPage(page int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 0 {
		page = 0
	}
	c.page = page
	c.generation++
	return c.generation
}

// SetPageSize changes the size (snapped to the allowed set) and resets the
// page to 0.
func (c *Controller) SetPageSize(size int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = nearestPageSize(size)
	c.page = 0
	c.generation++
	return c.generation
}

// ClearFilters empties every filter field and resets the page; the page
// size is left alone.
func (c *Controller) ClearFilters() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = Filter{}
	c.page = 0
	c.generation++
	return c.generation
}

// Fetch runs the search for the given generation and applies the result
// only if no newer query has been issued meanwhile. Late responses to
// superseded generations return ErrStale and leave the snapshot alone, so
// the view always reflects the most recently issued state.
func (c *Controller) Fetch(ctx context.Context, generation uint64) (Snapshot, error) {
	c.mu.Lock()
	if generation != c.generation {
		current := c.snapshot
		c.mu.Unlock()
		return current, ErrStale
	}
	params := ledger.SearchParams{
		UserID:     c.userID,
		Page:       c.page,
		Size:       c.size,
		AccountID:  c.filter.AccountID,
		CategoryID: c.filter.CategoryID,
		Type:       c.filter.Type,
		StartDate:  c.filter.StartDate,
		EndDate:    c.filter.EndDate,
		Keyword:    c.filter.Keyword,
	}
	c.mu.Unlock()

	page, err := c.searcher.SearchTransactions(ctx, params)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		slog.Debug("Dropping stale search response",
			"response_generation", generation,
			"current_generation", c.generation)
		return c.snapshot, ErrStale
	}
	c.snapshot = Snapshot{
		Transactions:  page.Transactions,
		TotalElements: page.TotalElements,
		Generation:    generation,
	}
	return c.snapshot, nil
}

// Refresh re-issues the current query, superseding any in-flight fetch.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.mu.Unlock()
	return c.Fetch(ctx, generation)
}

func nearestPageSize(size int) int {
	best := PageSizes[0]
	for _, s := range PageSizes {
		if abs(s-size) < abs(best-size) {
			best = s
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
