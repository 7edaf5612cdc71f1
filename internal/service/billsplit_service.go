package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/pkg/api"
	"github.com/mmynk/billsplit/pkg/api/apiconnect"
)

var _ apiconnect.BillSplitServiceHandler = (*BillSplitService)(nil)

// BillSplitService implements the Connect BillSplitService on top of a
// session manager.
type BillSplitService struct {
	manager *session.Manager
}

// NewBillSplitService creates a new BillSplitService backed by manager.
func NewBillSplitService(manager *session.Manager) *BillSplitService {
	return &BillSplitService{manager: manager}
}

// session resolves a session the caller is allowed to act on.
func (s *BillSplitService) session(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, models.NewValidationError("session_id", "is required"))
	}
	sess, err := s.manager.Session(id, middleware.GetUserID(ctx))
	if err != nil {
		return nil, toConnectError(err)
	}
	return sess, nil
}

func sessionResponse(snap session.Snapshot) *connect.Response[api.SessionResponse] {
	return connect.NewResponse(&api.SessionResponse{Session: toSession(snap)})
}

// CreateSession starts a new session for the caller.
func (s *BillSplitService) CreateSession(ctx context.Context, _ *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	sess := s.manager.Create(ctx, middleware.GetUserID(ctx))
	return sessionResponse(sess.Snapshot()), nil
}

// GetSession returns the current session state.
func (s *BillSplitService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess.Snapshot()), nil
}

// SubmitBill hands a receipt to ingestion.
func (s *BillSplitService) SubmitBill(ctx context.Context, req *connect.Request[api.SubmitBillRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	upload := models.Upload{
		Source:      models.Source(req.Msg.Source),
		FileName:    req.Msg.FileName,
		ContentType: req.Msg.ContentType,
		Size:        req.Msg.Size,
	}
	snap, err := s.manager.Submit(ctx, sess, upload)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// CompleteUpload is called by the ingestion backend once the receipt is transferred.
func (s *BillSplitService) CompleteUpload(ctx context.Context, req *connect.Request[api.CompleteUploadRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.CompleteUpload(ctx, sess, req.Msg.Submission)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// DeliverExtraction is called by the ingestion backend with the parsed receipt.
func (s *BillSplitService) DeliverExtraction(ctx context.Context, req *connect.Request[api.DeliverExtractionRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	for i, item := range req.Msg.Items {
		slog.Debug("Extracted item",
			"index", i+1,
			"name", item.Name,
			"price", item.Price.String(),
		)
	}
	snap, err := s.manager.DeliverExtraction(ctx, sess, req.Msg.Submission, fromExtracted(req.Msg.Items))
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// AddParticipant adds a person to the session roster.
func (s *BillSplitService) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	p, snap, err := s.manager.AddParticipant(ctx, sess, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	participant := toParticipant(p, 0)
	return connect.NewResponse(&api.AddParticipantResponse{
		Participant: &participant,
		Session:     toSession(snap),
	}), nil
}

// MoveItem assigns one item.
func (s *BillSplitService) MoveItem(ctx context.Context, req *connect.Request[api.MoveItemRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.MoveItem(ctx, sess, req.Msg.ItemID, req.Msg.Destination)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// DistributeEqually splits all items across the roster by position.
func (s *BillSplitService) DistributeEqually(ctx context.Context, req *connect.Request[api.DistributeEquallyRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.DistributeEqually(ctx, sess)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// StartNewBill resets the session.
func (s *BillSplitService) StartNewBill(ctx context.Context, req *connect.Request[api.StartNewBillRequest]) (*connect.Response[api.SessionResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.manager.StartNewBill(ctx, sess)
	if err != nil {
		return nil, toConnectError(err)
	}
	return sessionResponse(snap), nil
}

// RequestPayment archives the bill and notifies the payment backend.
func (s *BillSplitService) RequestPayment(ctx context.Context, req *connect.Request[api.RequestPaymentRequest]) (*connect.Response[api.RequestPaymentResponse], error) {
	sess, err := s.session(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	bill, snap, err := s.manager.RequestPayment(ctx, sess)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RequestPaymentResponse{
		Bill:    toBill(bill),
		Session: toSession(snap),
	}), nil
}

// ListBills returns the caller's archived bills.
func (s *BillSplitService) ListBills(ctx context.Context, _ *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	bills, err := s.manager.ListBills(ctx, middleware.GetUserID(ctx))
	if err != nil {
		slog.Error("ListBills failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Bill, len(bills))
	for i, b := range bills {
		out[i] = toBill(b)
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: out}), nil
}

// GetBill retrieves one archived bill.
func (s *BillSplitService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	bill, err := s.manager.GetBill(ctx, req.Msg.BillID, middleware.GetUserID(ctx))
	if err != nil {
		slog.Error("GetBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetBillResponse{Bill: toBill(bill)}), nil
}
