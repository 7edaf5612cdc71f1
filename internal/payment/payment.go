// Package payment hands finalized bills to the payment-request collaborator.
// Requests are one-way: nothing is read back.
package payment

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// Line is the amount one participant is asked to pay.
type Line struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Amount        decimal.Decimal `json:"amount"`
	ItemCount     int             `json:"item_count"`
}

// Request is the event sent for a bill whose items are all assigned.
type Request struct {
	BillID      string          `json:"bill_id"`
	SessionID   string          `json:"session_id"`
	Owner       string          `json:"owner,omitempty"`
	Title       string          `json:"title"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
	Lines       []Line          `json:"lines"`
	RequestedAt time.Time       `json:"requested_at"`
}

// NewRequest builds the payment request for bill. Participants with nothing
// to pay are left out.
func NewRequest(bill *models.Bill) Request {
	lines := make([]Line, 0, len(bill.Shares))
	for _, s := range bill.Shares {
		if s.Total.IsZero() && len(s.Items) == 0 {
			continue
		}
		lines = append(lines, Line{
			ParticipantID: s.ParticipantID,
			DisplayName:   s.DisplayName,
			Subtotal:      s.Subtotal,
			Tax:           s.Tax,
			Amount:        s.Total,
			ItemCount:     len(s.Items),
		})
	}
	return Request{
		BillID:      bill.ID,
		SessionID:   bill.SessionID,
		Owner:       bill.Owner,
		Title:       bill.Title,
		Subtotal:    bill.Subtotal,
		Tax:         bill.Tax,
		Total:       bill.Total,
		Lines:       lines,
		RequestedAt: time.Unix(bill.CreatedAt, 0).UTC(),
	}
}

// Requester dispatches payment requests.
type Requester interface {
	Request(ctx context.Context, req Request) error
}

// LogRequester writes payment requests to the structured log.
type LogRequester struct{}

func (LogRequester) Request(ctx context.Context, req Request) error {
	for _, line := range req.Lines {
		slog.InfoContext(ctx, "Payment requested",
			"bill_id", req.BillID,
			"participant_id", line.ParticipantID,
			"display_name", line.DisplayName,
			"amount", line.Amount.StringFixed(2),
		)
	}
	return nil
}
