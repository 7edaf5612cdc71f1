package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// ComputeTotals sums, for every participant on the roster, the prices of the
// items assigned to them. Participants with no items map to zero.
// Items assigned to ids not on the roster are ignored here; see CheckIntegrity.
func ComputeTotals(roster []models.Participant, items []models.ReceiptItem) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(roster))
	for _, p := range roster {
		totals[p.ID] = decimal.Zero
	}

	for _, item := range items {
		if !item.IsAssigned() {
			continue
		}
		if total, ok := totals[item.AssignedTo]; ok {
			totals[item.AssignedTo] = total.Add(item.Price)
		}
	}

	return totals
}

// CheckIntegrity returns an IntegrityError for the first item assigned to a
// participant id missing from the roster.
func CheckIntegrity(roster []models.Participant, items []models.ReceiptItem) error {
	known := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		known[p.ID] = struct{}{}
	}
	for _, item := range items {
		if !item.IsAssigned() {
			continue
		}
		if _, ok := known[item.AssignedTo]; !ok {
			return &models.IntegrityError{ItemID: item.ID, ParticipantID: item.AssignedTo}
		}
	}
	return nil
}

// EqualSplit returns a copy of items where every item is assigned by position:
// with chunk = ceil(len(items) / len(roster)), the k-th participant in roster
// order receives items [k*chunk, min((k+1)*chunk, len(items))).
//
// Prior assignments are discarded. Trailing participants may receive a short
// or empty chunk. This balances item counts, not amounts.
func EqualSplit(roster []models.Participant, items []models.ReceiptItem) ([]models.ReceiptItem, error) {
	if len(roster) == 0 {
		return nil, models.NewValidationError("participants", "must have at least one participant")
	}

	split := make([]models.ReceiptItem, len(items))
	copy(split, items)
	if len(split) == 0 {
		return split, nil
	}

	chunk := (len(split) + len(roster) - 1) / len(roster)
	for k, person := range roster {
		start := k * chunk
		if start >= len(split) {
			break
		}
		end := min(start+chunk, len(split))
		for i := start; i < end; i++ {
			split[i].AssignedTo = person.ID
		}
	}

	return split, nil
}

// UnassignedCount counts the items that belong to nobody. Payment requests
// stay blocked while it is nonzero.
func UnassignedCount(items []models.ReceiptItem) int {
	n := 0
	for _, item := range items {
		if !item.IsAssigned() {
			n++
		}
	}
	return n
}

// AssignedCount counts the items assigned to participantID.
func AssignedCount(items []models.ReceiptItem, participantID string) int {
	n := 0
	for _, item := range items {
		if item.AssignedTo == participantID {
			n++
		}
	}
	return n
}

// Subtotal sums the prices of all items, assigned or not.
func Subtotal(items []models.ReceiptItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price)
	}
	return sum
}

// AssignedSubtotal sums the prices of assigned items only.
func AssignedSubtotal(items []models.ReceiptItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.IsAssigned() {
			sum = sum.Add(item.Price)
		}
	}
	return sum
}
