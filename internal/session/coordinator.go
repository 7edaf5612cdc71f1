package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/models"
)

// AddParticipant appends a participant to the roster. Allowed in every state.
func (s *Session) AddParticipant(name string) (models.Participant, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.roster.Add(name)
	if err != nil {
		return models.Participant{}, Snapshot{}, err
	}
	s.touch()
	return p, s.snapshot(), nil
}

// MoveItem assigns itemID to destination, a participant id or
// models.Unassigned, and republishes totals in the same step.
func (s *Session) MoveItem(itemID, destination string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireLoaded(); err != nil {
		return Snapshot{}, err
	}

	prior := s.ledger.Items()
	if err := s.ledger.Reassign(itemID, destination, s.roster); err != nil {
		return Snapshot{}, err
	}
	if err := s.recompute(); err != nil {
		return Snapshot{}, errors.Join(err, s.rollback(prior))
	}
	return s.snapshot(), nil
}

// DistributeEqually overwrites every assignment with the positional equal
// split and republishes totals.
func (s *Session) DistributeEqually() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireLoaded(); err != nil {
		return Snapshot{}, err
	}

	prior := s.ledger.Items()
	split, err := calculator.EqualSplit(s.roster.List(), prior)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.ledger.Replace(split); err != nil {
		return Snapshot{}, fmt.Errorf("apply equal split: %w", err)
	}
	if err := s.recompute(); err != nil {
		return Snapshot{}, errors.Join(err, s.rollback(prior))
	}
	return s.snapshot(), nil
}

// RequestPayment builds the finalized bill. It is refused until the receipt
// is loaded, has at least one item and every item is assigned. The session
// itself is not changed.
func (s *Session) RequestPayment() (*models.Bill, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireLoaded(); err != nil {
		return nil, Snapshot{}, err
	}

	snap := s.snapshot()
	if len(snap.Items) == 0 {
		return nil, Snapshot{}, fmt.Errorf("%w: receipt has no items", ErrPaymentBlocked)
	}
	if snap.UnassignedCount > 0 {
		return nil, Snapshot{}, fmt.Errorf("%w: %d items unassigned", ErrPaymentBlocked, snap.UnassignedCount)
	}
	if err := calculator.CheckIntegrity(snap.Participants, snap.Items); err != nil {
		return nil, Snapshot{}, err
	}

	bill := &models.Bill{
		SessionID: s.id,
		Owner:     s.owner,
		Items:     snap.Items,
		Shares:    snap.Shares,
		Subtotal:  snap.Summary.Subtotal,
		TaxRate:   snap.Summary.TaxRate,
		Tax:       snap.Summary.Tax,
		Total:     snap.Summary.Total,
		CreatedAt: time.Now().Unix(),
	}
	return bill, snap, nil
}

func (s *Session) requireLoaded() error {
	if s.state != StateDone {
		return fmt.Errorf("%w: session is %s", ErrNotReady, s.state)
	}
	return nil
}

// rollback restores assignments after a failed recompute. A failed restore
// leaves the ledger in the rejected state and is logged.
func (s *Session) rollback(prior []models.ReceiptItem) error {
	if err := s.ledger.Replace(prior); err != nil {
		slog.Error("Ledger rollback failed",
			"session_id", s.id,
			"error", err,
		)
		return fmt.Errorf("rollback assignments: %w", err)
	}
	return nil
}
