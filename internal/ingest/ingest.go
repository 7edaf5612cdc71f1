// Package ingest adapts the receipt ingestion collaborator (upload transfer
// and OCR extraction) to a session's completion signals.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// Job is one receipt submission handed to ingestion.
type Job struct {
	SessionID  string
	// Submission identifies the receipt within the session. Signals quoting
	// an outdated submission are refused.
	Submission uint64
	Upload     models.Upload
}

// Callbacks receives ingestion completion signals for a job.
type Callbacks interface {
	// UploadComplete moves the session from uploading to processing.
	UploadComplete(ctx context.Context, job Job) error
	// Extracted delivers the parsed receipt and moves the session to done.
	Extracted(ctx context.Context, job Job, items []models.ExtractedItem) error
}

// Ingestor starts ingestion for a job. Start must not block; completion is
// reported through cb. There is no failure signal: a job that never
// completes leaves its session pending.
type Ingestor interface {
	Start(ctx context.Context, job Job, cb Callbacks)
}

// External hands ingestion to an outside backend that reports back through
// the CompleteUpload and DeliverExtraction RPCs.
type External struct{}

func (External) Start(ctx context.Context, job Job, _ Callbacks) {
	slog.InfoContext(ctx, "Waiting for external ingestion",
		"session_id", job.SessionID,
		"submission", job.Submission,
		"source", job.Upload.Source,
		"content_type", job.Upload.ContentType,
	)
}

// Simulated completes every job with a fixed receipt after fixed delays.
type Simulated struct {
	UploadDelay  time.Duration
	ProcessDelay time.Duration
	Items        []models.ExtractedItem
}

// NewSimulated returns a Simulated ingestor that delivers SampleReceipt.
func NewSimulated(uploadDelay, processDelay time.Duration) *Simulated {
	return &Simulated{
		UploadDelay:  uploadDelay,
		ProcessDelay: processDelay,
		Items:        SampleReceipt(),
	}
}

func (s *Simulated) Start(ctx context.Context, job Job, cb Callbacks) {
	go func() {
		if !sleep(ctx, s.UploadDelay) {
			return
		}
		if err := cb.UploadComplete(ctx, job); err != nil {
			slog.WarnContext(ctx, "Simulated upload completion rejected", "session_id", job.SessionID, "error", err)
			return
		}

		if !sleep(ctx, s.ProcessDelay) {
			return
		}
		items := make([]models.ExtractedItem, len(s.Items))
		copy(items, s.Items)
		if err := cb.Extracted(ctx, job, items); err != nil {
			slog.WarnContext(ctx, "Simulated extraction rejected", "session_id", job.SessionID, "error", err)
		}
	}()
}

// sleep waits for d or until ctx is done, reporting whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SampleReceipt is the receipt returned by simulated OCR.
func SampleReceipt() []models.ExtractedItem {
	return []models.ExtractedItem{
		{Name: "Margherita Pizza", Price: decimal.RequireFromString("12.99")},
		{Name: "Pepperoni Pizza", Price: decimal.RequireFromString("14.99")},
		{Name: "Buffalo Wings", Price: decimal.RequireFromString("9.99")},
		{Name: "Caesar Salad", Price: decimal.RequireFromString("7.99")},
		{Name: "Garlic Bread", Price: decimal.RequireFromString("4.99")},
		{Name: "Soda (2)", Price: decimal.RequireFromString("5.98")},
	}
}
