// Package api defines the request and response messages of the
// billsplit.v1.BillSplitService. Messages travel as JSON; money amounts are
// decimal strings such as "12.99".
package api

import "github.com/shopspring/decimal"

// Participant is one roster entry with its running total.
type Participant struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	ColorTag    string          `json:"color_tag"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// Item is one receipt line. AssignedTo is a participant id or "unassigned".
type Item struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	AssignedTo string          `json:"assigned_to"`
}

// ExtractedItem is one line parsed from a receipt image.
type ExtractedItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type ShareItem struct {
	ItemID string          `json:"item_id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Share is a participant's portion of the bill including proportional tax.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	ColorTag      string          `json:"color_tag"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Items         []ShareItem     `json:"items"`
}

type Upload struct {
	Source      string `json:"source"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size,omitempty"`
}

// Session is the full state of a bill-splitting session.
type Session struct {
	ID              string        `json:"id"`
	Owner           string        `json:"owner,omitempty"`
	State           string        `json:"state"`
	Participants    []Participant `json:"participants"`
	Items           []Item        `json:"items"`
	Summary         Summary       `json:"summary"`
	Shares          []Share       `json:"shares"`
	UnassignedCount int           `json:"unassigned_count"`
	PaymentReady    bool          `json:"payment_ready"`
	Upload          *Upload       `json:"upload,omitempty"`
	Submission      uint64        `json:"submission"`
	UpdatedAt       int64         `json:"updated_at"`
}

// Bill is an archived bill.
type Bill struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	Items     []Item          `json:"items"`
	Shares    []Share         `json:"shares"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt int64           `json:"created_at"`
}

// SessionResponse is returned by every call that reads or changes a session.
type SessionResponse struct {
	Session *Session `json:"session"`
}

type CreateSessionRequest struct{}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

// SubmitBillRequest starts ingestion. Source is "file" or "capture";
// ContentType is required for files.
type SubmitBillRequest struct {
	SessionID   string `json:"session_id"`
	Source      string `json:"source"`
	FileName    string `json:"file_name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// CompleteUploadRequest is sent by the ingestion backend when the transfer
// finished. Submission, when set, must match the session's current submission.
type CompleteUploadRequest struct {
	SessionID  string `json:"session_id"`
	Submission uint64 `json:"submission,omitempty"`
}

// DeliverExtractionRequest is sent by the ingestion backend with the parsed
// receipt. Submission, when set, must match the session's current submission.
type DeliverExtractionRequest struct {
	SessionID  string          `json:"session_id"`
	Submission uint64          `json:"submission,omitempty"`
	Items      []ExtractedItem `json:"items"`
}

type AddParticipantRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
	Session     *Session     `json:"session"`
}

// MoveItemRequest assigns an item. Destination is a participant id or "unassigned".
type MoveItemRequest struct {
	SessionID   string `json:"session_id"`
	ItemID      string `json:"item_id"`
	Destination string `json:"destination"`
}

type DistributeEquallyRequest struct {
	SessionID string `json:"session_id"`
}

type StartNewBillRequest struct {
	SessionID string `json:"session_id"`
}

type RequestPaymentRequest struct {
	SessionID string `json:"session_id"`
}

type RequestPaymentResponse struct {
	Bill    *Bill    `json:"bill"`
	Session *Session `json:"session"`
}

type ListBillsRequest struct{}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}
