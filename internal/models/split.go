package models

import "github.com/shopspring/decimal"

// Bill represents a finalized bill, archived when payment is requested.
// It stores the complete picture: items with their assignments, totals, and
// the calculated per-participant shares.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// SessionID is the session the bill was split in.
	SessionID string

	// Owner is the user ID of the session owner.
	// Empty when the server runs without authentication.
	Owner string

	// Title is the human-readable name for the bill.
	// Auto-generated from participants when left empty.
	Title string

	// Items are the receipt lines in ledger order, each with its final assignment.
	Items []ReceiptItem

	// Shares are the per-participant amounts, in roster order.
	Shares []Share

	// Subtotal is the pre-tax amount (sum of all item prices).
	Subtotal decimal.Decimal

	// TaxRate is the rate applied to the subtotal (e.g., 0.085).
	TaxRate decimal.Decimal

	// Tax is Subtotal × TaxRate rounded to cents.
	Tax decimal.Decimal

	// Total is the final bill amount including tax.
	Total decimal.Decimal

	// CreatedAt is the Unix timestamp when the bill was archived.
	CreatedAt int64
}

// ShareItem represents one item within a participant's share.
type ShareItem struct {
	ItemID string
	Name   string
	Price  decimal.Decimal
}

// Share represents one participant's calculated portion of a bill.
type Share struct {
	// ParticipantID references the roster entry this share belongs to.
	ParticipantID string

	// DisplayName is copied from the participant for readability.
	DisplayName string

	// ColorTag is copied from the participant.
	ColorTag string

	// Subtotal is the sum of this participant's assigned item prices (pre-tax).
	// It always equals the participant's running total.
	Subtotal decimal.Decimal

	// Tax is this participant's proportional share of tax.
	// Calculated as: subtotal × tax rate, rounded to cents.
	Tax decimal.Decimal

	// Total is the final amount this participant owes (subtotal + tax).
	Total decimal.Decimal

	// Items are the items assigned to this participant, in ledger order.
	Items []ShareItem
}
