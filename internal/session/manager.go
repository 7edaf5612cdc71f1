package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/ingest"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/payment"
	"github.com/mmynk/billsplit/internal/storage"
	"github.com/mmynk/billsplit/internal/storage/memory"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrForbidden       = errors.New("session belongs to another user")
	// ErrDispatch wraps failures handing a payment request to its backend.
	ErrDispatch = errors.New("payment request dispatch failed")
)

// Options configures a Manager. Nil collaborators fall back to the logging
// or in-memory implementations.
type Options struct {
	// TaxRate applied to every session's bill. The zero value means no tax.
	TaxRate    decimal.Decimal
	Ingestor   ingest.Ingestor
	Notifier   notify.Notifier
	Payments   payment.Requester
	Archive    storage.Store
	Metrics    *metrics.Metrics
	// SessionTTL evicts sessions left untouched for longer. Zero keeps
	// sessions until Close.
	SessionTTL time.Duration
}

// Manager hosts independent sessions keyed by id and connects them to the
// ingestion, notification, payment and archive collaborators.
type Manager struct {
	opts Options

	// ctx outlives individual requests; ingestion jobs derive from it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager with no sessions.
func NewManager(opts Options) *Manager {
	if opts.Ingestor == nil {
		opts.Ingestor = ingest.External{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLogNotifier(nil)
	}
	if opts.Payments == nil {
		opts.Payments = payment.LogRequester{}
	}
	if opts.Archive == nil {
		opts.Archive = memory.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
	if opts.SessionTTL > 0 {
		go m.evictIdle(min(opts.SessionTTL, time.Minute))
	}
	return m
}

// Sweep drops every session untouched since now minus SessionTTL, cancelling
// its pending ingestion, and reports how many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	if m.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-m.opts.SessionTTL)

	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.lastTouched().Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	m.mu.Unlock()

	for _, s := range evicted {
		s.release()
		m.opts.Metrics.SessionClosed()
		slog.Info("Session evicted", "session_id", s.ID(), "ttl", m.opts.SessionTTL)
	}
	return len(evicted)
}

func (m *Manager) evictIdle(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Close cancels all pending ingestion jobs and drops every session.
func (m *Manager) Close() {
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.sessions {
		delete(m.sessions, id)
		m.opts.Metrics.SessionClosed()
	}
}

// Create starts a new idle session owned by owner (empty without auth).
func (m *Manager) Create(ctx context.Context, owner string) *Session {
	s := New(m.opts.TaxRate,
		WithOwner(owner),
		WithTransitionHook(func(from, to State) {
			m.opts.Metrics.Transition(string(from), string(to))
		}),
	)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.opts.Metrics.SessionOpened()
	slog.InfoContext(ctx, "Session created", "session_id", s.ID(), "owner", owner)
	return s
}

// Session returns the session with id if caller may act on it.
// Sessions without an owner are open to every caller.
func (m *Manager) Session(id, caller string) (*Session, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if s.Owner() != "" && s.Owner() != caller {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, id)
	}
	return s, nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Submit begins receipt ingestion for s.
func (m *Manager) Submit(ctx context.Context, s *Session, upload models.Upload) (Snapshot, error) {
	jobCtx, snap, err := s.Submit(m.ctx, upload)
	m.opts.Metrics.Command("submit_bill", err)
	if err != nil {
		m.reportValidation(ctx, s, "Unsupported receipt", err)
		return Snapshot{}, err
	}

	slog.InfoContext(ctx, "Receipt submitted",
		"session_id", s.ID(),
		"source", snap.Upload.Source,
		"content_type", snap.Upload.ContentType,
	)
	job := ingest.Job{SessionID: s.ID(), Submission: snap.Submission, Upload: *snap.Upload}
	m.opts.Ingestor.Start(jobCtx, job, callbacks{m})
	return snap, nil
}

// CompleteUpload applies the upload-finished signal to s. A nonzero
// submission must match the receipt currently being ingested.
func (m *Manager) CompleteUpload(ctx context.Context, s *Session, submission uint64) (Snapshot, error) {
	snap, err := s.CompleteUpload(submission)
	m.opts.Metrics.Command("complete_upload", err)
	if err != nil {
		return Snapshot{}, err
	}
	slog.InfoContext(ctx, "Receipt uploaded", "session_id", s.ID())
	return snap, nil
}

// DeliverExtraction applies the parsed receipt to s. A nonzero submission
// must match the receipt currently being ingested.
func (m *Manager) DeliverExtraction(ctx context.Context, s *Session, submission uint64, items []models.ExtractedItem) (Snapshot, error) {
	snap, err := s.DeliverExtraction(submission, items)
	m.opts.Metrics.Command("deliver_extraction", err)
	if err != nil {
		m.reportValidation(ctx, s, "Receipt could not be read", err)
		m.reportIntegrity(ctx, s, err)
		return Snapshot{}, err
	}

	slog.InfoContext(ctx, "Receipt processed",
		"session_id", s.ID(),
		"items", len(snap.Items),
		"subtotal", snap.Summary.Subtotal.StringFixed(2),
	)
	m.notify(ctx, s, notify.LevelSuccess,
		"Receipt processed successfully!",
		fmt.Sprintf("%d items detected.", len(snap.Items)),
	)
	return snap, nil
}

// AddParticipant adds name to the roster of s.
func (m *Manager) AddParticipant(ctx context.Context, s *Session, name string) (models.Participant, Snapshot, error) {
	p, snap, err := s.AddParticipant(name)
	m.opts.Metrics.Command("add_participant", err)
	if err != nil {
		m.reportValidation(ctx, s, "Name required", err)
		return models.Participant{}, Snapshot{}, err
	}
	slog.InfoContext(ctx, "Participant added",
		"session_id", s.ID(),
		"participant_id", p.ID,
		"color_tag", p.ColorTag,
	)
	return p, snap, nil
}

// MoveItem reassigns one item of s.
func (m *Manager) MoveItem(ctx context.Context, s *Session, itemID, destination string) (Snapshot, error) {
	snap, err := s.MoveItem(itemID, destination)
	m.opts.Metrics.Command("move_item", err)
	if err != nil {
		m.reportValidation(ctx, s, "Item could not be moved", err)
		m.reportIntegrity(ctx, s, err)
		return Snapshot{}, err
	}
	slog.DebugContext(ctx, "Item moved",
		"session_id", s.ID(),
		"item_id", itemID,
		"destination", destination,
	)
	return snap, nil
}

// DistributeEqually applies the equal split to s.
func (m *Manager) DistributeEqually(ctx context.Context, s *Session) (Snapshot, error) {
	snap, err := s.DistributeEqually()
	m.opts.Metrics.Command("distribute_equally", err)
	if err != nil {
		m.reportValidation(ctx, s, "Items could not be split", err)
		m.reportIntegrity(ctx, s, err)
		return Snapshot{}, err
	}
	slog.InfoContext(ctx, "Items distributed equally",
		"session_id", s.ID(),
		"items", len(snap.Items),
		"participants", len(snap.Participants),
	)
	return snap, nil
}

// StartNewBill resets s to idle.
func (m *Manager) StartNewBill(ctx context.Context, s *Session) (Snapshot, error) {
	snap, err := s.StartNewBill()
	m.opts.Metrics.Command("start_new_bill", err)
	if err != nil {
		return Snapshot{}, err
	}
	slog.InfoContext(ctx, "New bill started", "session_id", s.ID())
	return snap, nil
}

// RequestPayment archives the finalized bill of s and dispatches the payment
// request. The archived bill is returned.
func (m *Manager) RequestPayment(ctx context.Context, s *Session) (*models.Bill, Snapshot, error) {
	bill, snap, err := s.RequestPayment()
	m.opts.Metrics.Command("request_payment", err)
	if err != nil {
		m.reportIntegrity(ctx, s, err)
		return nil, Snapshot{}, err
	}

	if err := m.opts.Archive.CreateBill(ctx, bill); err != nil {
		slog.ErrorContext(ctx, "Failed to archive bill", "session_id", s.ID(), "error", err)
		return nil, Snapshot{}, fmt.Errorf("archive bill: %w", err)
	}

	err = m.opts.Payments.Request(ctx, payment.NewRequest(bill))
	m.opts.Metrics.PaymentRequested(err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dispatch payment request",
			"session_id", s.ID(),
			"bill_id", bill.ID,
			"error", err,
		)
		m.notify(ctx, s, notify.LevelError, "Payment requests failed", "Please try again.")
		return nil, Snapshot{}, fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	slog.InfoContext(ctx, "Payment requested",
		"session_id", s.ID(),
		"bill_id", bill.ID,
		"total", bill.Total.StringFixed(2),
	)
	m.notify(ctx, s, notify.LevelSuccess,
		"Payment requests sent successfully!",
		"Your friends will receive notifications to pay their share.",
	)
	return bill, snap, nil
}

// ListBills returns the archived bills of owner, newest first.
func (m *Manager) ListBills(ctx context.Context, owner string) ([]*models.Bill, error) {
	return m.opts.Archive.ListBills(ctx, owner)
}

// GetBill returns an archived bill if caller may see it. Bills of other
// owners are reported as missing.
func (m *Manager) GetBill(ctx context.Context, billID, caller string) (*models.Bill, error) {
	bill, err := m.opts.Archive.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.Owner != "" && bill.Owner != caller {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, billID)
	}
	return bill, nil
}

func (m *Manager) notify(ctx context.Context, s *Session, level notify.Level, title, description string) {
	m.opts.Notifier.Notify(ctx, notify.Notification{
		SessionID:   s.ID(),
		Level:       level,
		Title:       title,
		Description: description,
		At:          time.Now().UTC(),
	})
}

func (m *Manager) reportValidation(ctx context.Context, s *Session, title string, err error) {
	var v *models.ValidationError
	if !errors.As(err, &v) {
		return
	}
	m.notify(ctx, s, notify.LevelError, title, v.Error())
}

func (m *Manager) reportIntegrity(ctx context.Context, s *Session, err error) {
	var v *models.IntegrityError
	if !errors.As(err, &v) {
		return
	}
	slog.ErrorContext(ctx, "Ledger integrity violated",
		"session_id", s.ID(),
		"item_id", v.ItemID,
		"participant_id", v.ParticipantID,
	)
}

// callbacks routes ingestion completion signals back to their session.
type callbacks struct {
	m *Manager
}

func (c callbacks) UploadComplete(ctx context.Context, job ingest.Job) error {
	s, err := c.m.lookup(job.SessionID)
	if err != nil {
		return err
	}
	_, err = c.m.CompleteUpload(ctx, s, job.Submission)
	return err
}

func (c callbacks) Extracted(ctx context.Context, job ingest.Job, items []models.ExtractedItem) error {
	s, err := c.m.lookup(job.SessionID)
	if err != nil {
		return err
	}
	// The job context is cancelled once the receipt is loaded.
	_, err = c.m.DeliverExtraction(context.WithoutCancel(ctx), s, job.Submission, items)
	return err
}
