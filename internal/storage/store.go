// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/billsplit/internal/models"
)

// ErrNotFound is returned when a bill does not exist in the store.
var ErrNotFound = errors.New("bill not found")

// Store defines the interface for the bill archive.
// Bills are written once, when payment is requested, and read back for history.
type Store interface {
	// CreateBill persists a finalized bill.
	// ID, CreatedAt and Title are filled in by the store when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill by its ID.
	// Returns an error wrapping ErrNotFound if the bill does not exist.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBills returns the bills archived by owner, newest first.
	// An empty owner lists bills created without authentication.
	ListBills(ctx context.Context, owner string) ([]*models.Bill, error)

	// Close releases any resources held by the store.
	Close() error
}

// GenerateTitle creates an auto-generated title from participant names.
func GenerateTitle(names []string, at time.Time) string {
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", at.Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}

// PayingNames returns the display names of participants with at least one item,
// in roster order.
func PayingNames(bill *models.Bill) []string {
	var names []string
	for _, s := range bill.Shares {
		if len(s.Items) > 0 {
			names = append(names, s.DisplayName)
		}
	}
	return names
}
