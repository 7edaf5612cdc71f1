// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
// Money columns are stored as decimal strings so amounts round-trip exactly.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateBill persists a finalized bill with its shares and items.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Title == "" {
		bill.Title = storage.GenerateTitle(storage.PayingNames(bill), time.Unix(bill.CreatedAt, 0))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, session_id, owner, title, subtotal, tax_rate, tax, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.SessionID, bill.Owner, bill.Title,
		bill.Subtotal.String(), bill.TaxRate.String(), bill.Tax.String(), bill.Total.String(),
		bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	for i, share := range bill.Shares {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO shares (bill_id, position, participant_id, display_name, color_tag, subtotal, tax, total)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			bill.ID, i, share.ParticipantID, share.DisplayName, share.ColorTag,
			share.Subtotal.String(), share.Tax.String(), share.Total.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	for i, item := range bill.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (bill_id, position, id, name, price, assigned_to)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			bill.ID, i, item.ID, item.Name, item.Price.String(), item.AssignedTo,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID, including all shares and items.
func (s *Store) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, owner, title, subtotal, tax_rate, tax, total, created_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.SessionID, &bill.Owner, &bill.Title,
		&bill.Subtotal, &bill.TaxRate, &bill.Tax, &bill.Total, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := s.loadItems(ctx, bill); err != nil {
		return nil, err
	}
	if err := s.loadShares(ctx, bill); err != nil {
		return nil, err
	}

	return bill, nil
}

// ListBills returns every bill archived by owner, newest first.
func (s *Store) ListBills(ctx context.Context, owner string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM bills WHERE owner = ? ORDER BY created_at DESC, id",
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bill id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	bills := make([]*models.Bill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.GetBill(ctx, id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

func (s *Store) loadItems(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, assigned_to FROM items WHERE bill_id = ? ORDER BY position",
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.ReceiptItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.AssignedTo); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}
	return nil
}

// loadShares reads the shares and rebuilds each share's item list from the
// already loaded items.
func (s *Store) loadShares(ctx context.Context, bill *models.Bill) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT participant_id, display_name, color_tag, subtotal, tax, total
		 FROM shares WHERE bill_id = ? ORDER BY position`,
		bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.Share
		if err := rows.Scan(&share.ParticipantID, &share.DisplayName, &share.ColorTag,
			&share.Subtotal, &share.Tax, &share.Total); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		for _, item := range bill.Items {
			if item.AssignedTo == share.ParticipantID {
				share.Items = append(share.Items, models.ShareItem{
					ItemID: item.ID,
					Name:   item.Name,
					Price:  item.Price,
				})
			}
		}
		bill.Shares = append(bill.Shares, share)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shares: %w", err)
	}
	return nil
}
