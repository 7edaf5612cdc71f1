// Package session holds the bill-splitting session aggregate: the participant
// roster, the item ledger and the lifecycle state of the current bill.
//
// A Session is safe for concurrent use. Every command and completion signal
// runs under the session's mutex, so a ledger mutation and the totals derived
// from it are always observed together.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/ledger"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/roster"
)

// Session is one bill-splitting workspace.
type Session struct {
	id      string
	owner   string
	taxRate decimal.Decimal

	mu        sync.Mutex
	state     State
	roster    *roster.Registry
	ledger    *ledger.Ledger
	upload    *models.Upload
	updatedAt time.Time

	// submission numbers the current receipt; it advances on every Submit
	// and StartNewBill so signals from abandoned ingestion jobs are refused.
	submission uint64

	// cancelIngest stops the ingestion job started by the last submission.
	cancelIngest context.CancelFunc
	onTransition func(from, to State)
}

// Snapshot is a consistent read of a session taken under its lock.
type Snapshot struct {
	ID              string
	Owner           string
	State           State
	Participants    []models.Participant
	Items           []models.ReceiptItem
	Summary         calculator.Summary
	Shares          []models.Share
	UnassignedCount int
	PaymentReady    bool
	Upload          *models.Upload
	Submission      uint64
	UpdatedAt       time.Time
}

// Option configures a new Session.
type Option func(*Session)

// WithOwner records the user that owns the session.
func WithOwner(owner string) Option {
	return func(s *Session) { s.owner = owner }
}

// WithTransitionHook registers fn to be called, under the session lock, on
// every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(s *Session) { s.onTransition = fn }
}

// WithRoster replaces the default roster.
func WithRoster(r *roster.Registry) Option {
	return func(s *Session) { s.roster = r }
}

// New creates an idle session with the default roster and an empty ledger.
func New(taxRate decimal.Decimal, opts ...Option) *Session {
	s := &Session{
		id:        uuid.New().String(),
		taxRate:   taxRate,
		state:     StateIdle,
		roster:    roster.NewDefault(),
		ledger:    ledger.New(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Owner() string {
	return s.owner
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// transition moves the session to next. Callers hold s.mu.
func (s *Session) transition(next State) error {
	if err := ValidateTransition(s.state, next); err != nil {
		return err
	}
	prev := s.state
	s.state = next
	s.touch()
	if s.onTransition != nil && prev != next {
		s.onTransition(prev, next)
	}
	return nil
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// recompute checks ledger integrity and publishes fresh participant totals.
// Callers hold s.mu. On error the roster totals are left untouched.
func (s *Session) recompute() error {
	participants := s.roster.List()
	items := s.ledger.Items()
	if err := calculator.CheckIntegrity(participants, items); err != nil {
		return err
	}
	s.roster.ApplyTotals(calculator.ComputeTotals(participants, items))
	s.touch()
	return nil
}

func (s *Session) snapshot() Snapshot {
	participants := s.roster.List()
	items := s.ledger.Items()
	unassigned := calculator.UnassignedCount(items)

	snap := Snapshot{
		ID:              s.id,
		Owner:           s.owner,
		State:           s.state,
		Participants:    participants,
		Items:           items,
		Summary:         calculator.Summarize(items, s.taxRate),
		Shares:          calculator.CalculateShares(participants, items, s.taxRate),
		UnassignedCount: unassigned,
		PaymentReady:    s.state == StateDone && len(items) > 0 && unassigned == 0,
		Submission:      s.submission,
		UpdatedAt:       s.updatedAt,
	}
	if s.upload != nil {
		u := *s.upload
		snap.Upload = &u
	}
	return snap
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// release cancels pending ingestion of a session that is being dropped.
func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopIngest()
}

// checkSubmission refuses a signal addressed to a submission other than the
// current one. Zero addresses whatever submission is current. Callers hold s.mu.
func (s *Session) checkSubmission(submission uint64) error {
	if submission != 0 && submission != s.submission {
		return fmt.Errorf("%w: signal for submission %d, current is %d", ErrStaleSubmission, submission, s.submission)
	}
	return nil
}

func (s *Session) stopIngest() {
	if s.cancelIngest != nil {
		s.cancelIngest()
		s.cancelIngest = nil
	}
}
