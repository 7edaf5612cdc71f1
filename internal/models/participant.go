package models

import "github.com/shopspring/decimal"

// OwnerColorTag is the color tag reserved for the session owner ("You").
const OwnerColorTag = "owner"

// Palette is the fixed set of color tags cycled through as participants
// are added. The tag for a new participant is Palette[rosterSize % len(Palette)].
var Palette = []string{
	"blue",
	"green",
	"amber",
	"pink",
	"purple",
	"cyan",
}

// Participant represents one person on the roster of a bill-splitting session.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	// It never changes once the participant is created.
	ID string

	// DisplayName is the trimmed, non-empty name shown to users.
	DisplayName string

	// ColorTag is a presentation hint picked from Palette (or OwnerColorTag).
	ColorTag string

	// Total is the sum of prices of the items assigned to this participant.
	// It is recomputed by the allocation engine after every ledger mutation.
	Total decimal.Decimal
}
