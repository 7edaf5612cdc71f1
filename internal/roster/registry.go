// Package roster owns the participants of a bill-splitting session.
package roster

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// Registry holds participants in insertion order. First-added is displayed first.
// It is not safe for concurrent use; the owning session serializes access.
type Registry struct {
	participants []models.Participant
	index        map[string]int
	newID        func() string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		index: make(map[string]int),
		newID: func() string { return uuid.New().String() },
	}
}

// NewDefault creates a registry seeded with the default roster:
// the session owner ("You") followed by Alex and Taylor.
func NewDefault() *Registry {
	r := New()
	r.add("You", models.OwnerColorTag)
	r.add("Alex", models.Palette[0])
	r.add("Taylor", models.Palette[1])
	return r
}

// Add appends a participant named name. The name is trimmed and must not be
// empty. The color tag cycles through models.Palette by current roster size.
func (r *Registry) Add(name string) (models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Participant{}, models.NewValidationError("name", "must not be empty")
	}
	color := models.Palette[len(r.participants)%len(models.Palette)]
	return r.add(name, color), nil
}

func (r *Registry) add(name, color string) models.Participant {
	p := models.Participant{
		ID:          r.newID(),
		DisplayName: name,
		ColorTag:    color,
		Total:       decimal.Zero,
	}
	r.index[p.ID] = len(r.participants)
	r.participants = append(r.participants, p)
	return p
}

// Has reports whether id names a participant on the roster.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Get returns the participant with the given id.
func (r *Registry) Get(id string) (models.Participant, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.Participant{}, false
	}
	return r.participants[i], true
}

// List returns a copy of the roster in insertion order.
func (r *Registry) List() []models.Participant {
	out := make([]models.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// Len returns the roster size.
func (r *Registry) Len() int {
	return len(r.participants)
}

// ApplyTotals overwrites every participant's total from totals, using zero
// for participants missing from the map. Only the session's recompute step
// calls this; totals are never patched incrementally.
func (r *Registry) ApplyTotals(totals map[string]decimal.Decimal) {
	for i := range r.participants {
		total, ok := totals[r.participants[i].ID]
		if !ok {
			total = decimal.Zero
		}
		r.participants[i].Total = total
	}
}
