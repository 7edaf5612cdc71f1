package session

import (
	"context"
	"fmt"

	"github.com/mmynk/billsplit/internal/models"
)

// Submit validates the upload and moves idle -> uploading. The returned
// context governs the ingestion job for this submission; it is cancelled when
// the bill is reset or the receipt has been loaded. The snapshot carries the
// new submission number that the job's signals must quote.
func (s *Session) Submit(parent context.Context, upload models.Upload) (context.Context, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ValidateTransition(s.state, StateUploading); err != nil {
		return nil, Snapshot{}, err
	}
	if err := upload.Validate(); err != nil {
		return nil, Snapshot{}, err
	}

	if err := s.transition(StateUploading); err != nil {
		return nil, Snapshot{}, err
	}
	s.upload = &upload
	s.submission++

	s.stopIngest()
	ctx, cancel := context.WithCancel(parent)
	s.cancelIngest = cancel
	return ctx, s.snapshot(), nil
}

// CompleteUpload records that the receipt transfer finished: uploading -> processing.
// A nonzero submission must name the current submission.
func (s *Session) CompleteUpload(submission uint64) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSubmission(submission); err != nil {
		return Snapshot{}, err
	}
	if err := s.transition(StateProcessing); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// DeliverExtraction loads the parsed receipt into the ledger and moves
// processing -> done. Every item starts unassigned. A rejected item list
// leaves the session in processing with the ledger untouched.
// A nonzero submission must name the current submission.
func (s *Session) DeliverExtraction(submission uint64, items []models.ExtractedItem) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSubmission(submission); err != nil {
		return Snapshot{}, err
	}
	if err := ValidateTransition(s.state, StateDone); err != nil {
		return Snapshot{}, err
	}
	if err := s.ledger.Load(items); err != nil {
		return Snapshot{}, err
	}
	if err := s.recompute(); err != nil {
		return Snapshot{}, fmt.Errorf("load receipt: %w", err)
	}
	if err := s.transition(StateDone); err != nil {
		return Snapshot{}, err
	}
	s.stopIngest()
	return s.snapshot(), nil
}

// StartNewBill abandons the current bill from any state: the ledger is
// emptied, every participant total drops to zero, any pending ingestion is
// cancelled and the session returns to idle. The roster is kept.
func (s *Session) StartNewBill() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(StateIdle); err != nil {
		return Snapshot{}, err
	}
	s.stopIngest()
	s.submission++
	s.upload = nil
	s.ledger.Reset()
	s.roster.ApplyTotals(nil)
	s.touch()
	return s.snapshot(), nil
}
