package models

import "github.com/shopspring/decimal"

// Unassigned is the AssignedTo value of an item that belongs to nobody yet.
const Unassigned = "unassigned"

// ReceiptItem represents a single priced line on the receipt being split.
type ReceiptItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Name is the item description as read from the receipt (e.g., "Caesar Salad").
	Name string

	// Price is the pre-tax price of the item. Never negative.
	Price decimal.Decimal

	// AssignedTo is the ID of the participant who pays for this item,
	// or Unassigned.
	AssignedTo string
}

// IsAssigned reports whether the item belongs to a participant.
func (i ReceiptItem) IsAssigned() bool {
	return i.AssignedTo != Unassigned
}

// ExtractedItem is one {name, price} record produced by receipt ingestion.
type ExtractedItem struct {
	Name  string
	Price decimal.Decimal
}
