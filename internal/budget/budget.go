// Package budget assembles a budget definition with a variable-length list
// of per-category limits. The list is an explicit ordered container with
// stable opaque keys; append and remove are its only shape mutations.
package budget

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mhartley/tally/internal/model"
)

// Item is one (category, limit) row under construction. Key is an opaque
// stable identity for rendering; it never reaches the wire. Values stay as
// entered until validation.
type Item struct {
	Key         string
	CategoryID  string
	LimitAmount string
}

// ItemPatch is a shallow merge into an existing item; nil fields are left
// untouched.
type ItemPatch struct {
	CategoryID  *string
	LimitAmount *string
}

// Draft is a budget definition under construction, owned by one dialog.
type Draft struct {
	Name       string
	PeriodType model.PeriodType
	StartDate  string
	EndDate    string
	TotalLimit string
	Notes      string

	items []Item
}

// NewDraft returns a draft with the original dialog defaults: monthly
// period starting today, no items.
func NewDraft() *Draft {
	return &Draft{
		PeriodType: model.PeriodMonthly,
		StartDate:  model.Today(),
	}
}

// Items returns a copy of the item list in order.
func (d *Draft) Items() []Item {
	out := make([]Item, len(d.items))
	copy(out, d.items)
	return out
}

// AddItem appends a blank row and returns its stable key. Duplicate
// category references across rows are allowed; dedup is a server concern.
func (d *Draft) AddItem() string {
	item := Item{Key: uuid.NewString()}
	d.items = append(d.items, item)
	return item.Key
}

// RemoveItem deletes the row at index and re-indexes the rest. An
// out-of-range index is a no-op, not a fault.
func (d *Draft) RemoveItem(index int) {
	if index < 0 || index >= len(d.items) {
		return
	}
	d.items = append(d.items[:index], d.items[index+1:]...)
}

// UpdateItem shallow-merges patch into the row at index.
func (d *Draft) UpdateItem(index int, patch ItemPatch) {
	if index < 0 || index >= len(d.items) {
		return
	}
	if patch.CategoryID != nil {
		d.items[index].CategoryID = *patch.CategoryID
	}
	if patch.LimitAmount != nil {
		d.items[index].LimitAmount = *patch.LimitAmount
	}
}

// FieldErrors maps field name (or "items[i].field") to message.
type FieldErrors map[string]string

// Error joins messages in field order.
func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid budget: " + strings.Join(parts, "; ")
}
