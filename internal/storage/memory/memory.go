// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps archived bills in a map. Bills are deep-copied on the way in
// and out so callers never share slices with the store.
type Store struct {
	mu    sync.RWMutex
	bills map[string]*models.Bill
}

// New creates an empty store.
func New() *Store {
	return &Store{bills: make(map[string]*models.Bill)}
}

func (s *Store) CreateBill(_ context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Title == "" {
		bill.Title = storage.GenerateTitle(storage.PayingNames(bill), time.Unix(bill.CreatedAt, 0))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bills[bill.ID]; exists {
		return fmt.Errorf("bill %s already exists", bill.ID)
	}
	s.bills[bill.ID] = clone(bill)
	return nil
}

func (s *Store) GetBill(_ context.Context, billID string) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.bills[billID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	return clone(bill), nil
}

func (s *Store) ListBills(_ context.Context, owner string) ([]*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bills := make([]*models.Bill, 0)
	for _, b := range s.bills {
		if b.Owner == owner {
			bills = append(bills, clone(b))
		}
	}
	sort.Slice(bills, func(i, j int) bool {
		if bills[i].CreatedAt != bills[j].CreatedAt {
			return bills[i].CreatedAt > bills[j].CreatedAt
		}
		return bills[i].ID < bills[j].ID
	})
	return bills, nil
}

func (s *Store) Close() error {
	return nil
}

func clone(b *models.Bill) *models.Bill {
	c := *b
	c.Items = append([]models.ReceiptItem(nil), b.Items...)
	c.Shares = make([]models.Share, len(b.Shares))
	for i, share := range b.Shares {
		c.Shares[i] = share
		c.Shares[i].Items = append([]models.ShareItem(nil), share.Items...)
	}
	return &c
}
