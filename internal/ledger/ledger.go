// Package ledger owns the receipt line items of a session and their assignments.
package ledger

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/models"
)

// ParticipantLookup answers whether a participant id exists.
type ParticipantLookup interface {
	Has(id string) bool
}

// Ledger holds receipt items in receipt order.
// It is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	items []models.ReceiptItem
	index map[string]int
	newID func() string
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		index: make(map[string]int),
		newID: func() string { return uuid.New().String() },
	}
}

// Load replaces the ledger wholesale with fresh, unassigned items.
// Every price must be non-negative; on error the ledger is left untouched.
func (l *Ledger) Load(extracted []models.ExtractedItem) error {
	for i, e := range extracted {
		if e.Price.IsNegative() {
			return models.NewValidationError(fmt.Sprintf("items[%d].price", i), "must not be negative, got %s", e.Price)
		}
	}

	items := make([]models.ReceiptItem, len(extracted))
	index := make(map[string]int, len(extracted))
	for i, e := range extracted {
		items[i] = models.ReceiptItem{
			ID:         l.newID(),
			Name:       strings.TrimSpace(e.Name),
			Price:      e.Price,
			AssignedTo: models.Unassigned,
		}
		index[items[i].ID] = i
	}

	l.items = items
	l.index = index
	return nil
}

// Reassign sets the assignment of itemID to target, which must be
// models.Unassigned or a participant known to participants.
// Totals are not recomputed here.
func (l *Ledger) Reassign(itemID, target string, participants ParticipantLookup) error {
	i, ok := l.index[itemID]
	if !ok {
		return models.NewValidationError("item_id", "unknown item %q", itemID)
	}
	if target != models.Unassigned && !participants.Has(target) {
		return models.NewValidationError("destination", "unknown participant %q", target)
	}
	l.items[i].AssignedTo = target
	return nil
}

// Replace overwrites the assignment column from items, which must list the
// same item ids in the same order as the ledger.
func (l *Ledger) Replace(items []models.ReceiptItem) error {
	if len(items) != len(l.items) {
		return fmt.Errorf("replace: got %d items, ledger has %d", len(items), len(l.items))
	}
	for i := range items {
		if items[i].ID != l.items[i].ID {
			return fmt.Errorf("replace: item %d is %s, ledger has %s", i, items[i].ID, l.items[i].ID)
		}
	}
	for i := range items {
		l.items[i].AssignedTo = items[i].AssignedTo
	}
	return nil
}

// Reset clears the ledger.
func (l *Ledger) Reset() {
	l.items = nil
	l.index = make(map[string]int)
}

// Get returns the item with the given id.
func (l *Ledger) Get(id string) (models.ReceiptItem, bool) {
	i, ok := l.index[id]
	if !ok {
		return models.ReceiptItem{}, false
	}
	return l.items[i], true
}

// Items returns a copy of the items in ledger order.
func (l *Ledger) Items() []models.ReceiptItem {
	out := make([]models.ReceiptItem, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items.
func (l *Ledger) Len() int {
	return len(l.items)
}
