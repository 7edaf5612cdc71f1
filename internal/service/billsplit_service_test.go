package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/api"
	"github.com/mmynk/billsplit/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that sets the user ID from
// a test header in the context.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = context.WithValue(ctx, middleware.UserIDKey, user)
			}
			return next(ctx, req)
		}
	}
}

// setupTestServer creates a test server archiving bills in a temp SQLite database.
func setupTestServer(t *testing.T) apiconnect.BillSplitServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	manager := session.NewManager(session.Options{
		TaxRate: calculator.DefaultTaxRate,
		Archive: store,
	})

	path, handler := apiconnect.NewBillSplitServiceHandler(
		NewBillSplitService(manager),
		connect.WithInterceptors(testAuthInterceptor()),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		manager.Close()
		store.Close()
	})

	return apiconnect.NewBillSplitServiceClient(http.DefaultClient, server.URL)
}

func asUser[T any](msg *T, user string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user != "" {
		req.Header().Set(testUserHeader, user)
	}
	return req
}

func sampleItems() []api.ExtractedItem {
	prices := []struct {
		name  string
		price string
	}{
		{"Margherita Pizza", "12.99"},
		{"Pepperoni Pizza", "14.99"},
		{"Buffalo Wings", "9.99"},
		{"Caesar Salad", "7.99"},
		{"Garlic Bread", "4.99"},
		{"Soda (2)", "5.98"},
	}
	items := make([]api.ExtractedItem, len(prices))
	for i, p := range prices {
		items[i] = api.ExtractedItem{Name: p.name, Price: decimal.RequireFromString(p.price)}
	}
	return items
}

// loadedSession creates a session for user and drives it to done.
func loadedSession(t *testing.T, client apiconnect.BillSplitServiceClient, user string) *api.Session {
	t.Helper()
	ctx := context.Background()

	created, err := client.CreateSession(ctx, asUser(&api.CreateSessionRequest{}, user))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.Msg.Session.ID

	if _, err := client.SubmitBill(ctx, asUser(&api.SubmitBillRequest{
		SessionID:   id,
		Source:      "file",
		FileName:    "dinner.jpg",
		ContentType: "image/jpeg",
	}, user)); err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}
	if _, err := client.CompleteUpload(ctx, asUser(&api.CompleteUploadRequest{SessionID: id}, user)); err != nil {
		t.Fatalf("CompleteUpload failed: %v", err)
	}
	resp, err := client.DeliverExtraction(ctx, asUser(&api.DeliverExtractionRequest{
		SessionID: id,
		Items:     sampleItems(),
	}, user))
	if err != nil {
		t.Fatalf("DeliverExtraction failed: %v", err)
	}
	return resp.Msg.Session
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %v, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %v", err)
	}
	if connectErr.Code() != want {
		t.Errorf("code = %v, want %v (%s)", connectErr.Code(), want, connectErr.Message())
	}
}

func TestCreateSession_DefaultRoster(t *testing.T) {
	client := setupTestServer(t)

	resp, err := client.CreateSession(context.Background(), connect.NewRequest(&api.CreateSessionRequest{}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess := resp.Msg.Session
	if sess.State != "idle" {
		t.Errorf("expected state idle, got %s", sess.State)
	}
	wantNames := []string{"You", "Alex", "Taylor"}
	wantColors := []string{models.OwnerColorTag, "blue", "green"}
	if len(sess.Participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(sess.Participants))
	}
	for i, p := range sess.Participants {
		if p.DisplayName != wantNames[i] || p.ColorTag != wantColors[i] {
			t.Errorf("participant %d = %s/%s, want %s/%s", i, p.DisplayName, p.ColorTag, wantNames[i], wantColors[i])
		}
		if !p.Total.IsZero() {
			t.Errorf("expected zero total for %s, got %s", p.DisplayName, p.Total)
		}
	}
}

func TestFullFlow(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	sess := loadedSession(t, client, "alice")
	if sess.State != "done" {
		t.Fatalf("expected state done, got %s", sess.State)
	}
	if len(sess.Items) != 6 || sess.UnassignedCount != 6 {
		t.Fatalf("expected 6 unassigned items, got %d items, %d unassigned", len(sess.Items), sess.UnassignedCount)
	}
	if got := sess.Summary.Subtotal.StringFixed(2); got != "56.93" {
		t.Errorf("expected subtotal 56.93, got %s", got)
	}

	// Payment is refused while items are unassigned.
	_, err := client.RequestPayment(ctx, asUser(&api.RequestPaymentRequest{SessionID: sess.ID}, "alice"))
	assertCode(t, err, connect.CodeFailedPrecondition)

	resp, err := client.DistributeEqually(ctx, asUser(&api.DistributeEquallyRequest{SessionID: sess.ID}, "alice"))
	if err != nil {
		t.Fatalf("DistributeEqually failed: %v", err)
	}
	wantTotals := []string{"27.98", "17.98", "10.97"}
	for i, p := range resp.Msg.Session.Participants {
		if got := p.Total.StringFixed(2); got != wantTotals[i] {
			t.Errorf("%s total = %s, want %s", p.DisplayName, got, wantTotals[i])
		}
		if p.ItemCount != 2 {
			t.Errorf("%s item count = %d, want 2", p.DisplayName, p.ItemCount)
		}
	}
	if !resp.Msg.Session.PaymentReady {
		t.Error("expected session to be payment ready")
	}

	paid, err := client.RequestPayment(ctx, asUser(&api.RequestPaymentRequest{SessionID: sess.ID}, "alice"))
	if err != nil {
		t.Fatalf("RequestPayment failed: %v", err)
	}
	bill := paid.Msg.Bill
	if bill.ID == "" {
		t.Fatal("expected bill ID")
	}
	if got := bill.Total.StringFixed(2); got != "61.77" {
		t.Errorf("bill total = %s, want 61.77", got)
	}

	got, err := client.GetBill(ctx, asUser(&api.GetBillRequest{BillID: bill.ID}, "alice"))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.Title != "Split with You, Alex, Taylor" {
		t.Errorf("unexpected title %q", got.Msg.Bill.Title)
	}
	if len(got.Msg.Bill.Shares) != 3 || len(got.Msg.Bill.Shares[0].Items) != 2 {
		t.Errorf("unexpected shares: %+v", got.Msg.Bill.Shares)
	}

	// Another user cannot tell the bill exists.
	_, err = client.GetBill(ctx, asUser(&api.GetBillRequest{BillID: bill.ID}, "bob"))
	assertCode(t, err, connect.CodeNotFound)

	list, err := client.ListBills(ctx, asUser(&api.ListBillsRequest{}, "alice"))
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	if len(list.Msg.Bills) != 1 {
		t.Errorf("expected 1 bill, got %d", len(list.Msg.Bills))
	}

	reset, err := client.StartNewBill(ctx, asUser(&api.StartNewBillRequest{SessionID: sess.ID}, "alice"))
	if err != nil {
		t.Fatalf("StartNewBill failed: %v", err)
	}
	if reset.Msg.Session.State != "idle" || len(reset.Msg.Session.Items) != 0 {
		t.Errorf("expected empty idle session, got %s with %d items", reset.Msg.Session.State, len(reset.Msg.Session.Items))
	}
	for _, p := range reset.Msg.Session.Participants {
		if !p.Total.IsZero() {
			t.Errorf("expected zero total for %s after reset, got %s", p.DisplayName, p.Total)
		}
	}
}

func TestMoveItem(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	sess := loadedSession(t, client, "")

	item := sess.Items[0]
	alex := sess.Participants[1]

	resp, err := client.MoveItem(ctx, connect.NewRequest(&api.MoveItemRequest{
		SessionID:   sess.ID,
		ItemID:      item.ID,
		Destination: alex.ID,
	}))
	if err != nil {
		t.Fatalf("MoveItem failed: %v", err)
	}
	updated := resp.Msg.Session
	if updated.Items[0].AssignedTo != alex.ID {
		t.Errorf("item assigned to %s, want %s", updated.Items[0].AssignedTo, alex.ID)
	}
	if got := updated.Participants[1].Total.StringFixed(2); got != "12.99" {
		t.Errorf("Alex total = %s, want 12.99", got)
	}
	if updated.UnassignedCount != 5 {
		t.Errorf("unassigned = %d, want 5", updated.UnassignedCount)
	}

	resp, err = client.MoveItem(ctx, connect.NewRequest(&api.MoveItemRequest{
		SessionID:   sess.ID,
		ItemID:      item.ID,
		Destination: models.Unassigned,
	}))
	if err != nil {
		t.Fatalf("MoveItem back failed: %v", err)
	}
	if !resp.Msg.Session.Participants[1].Total.IsZero() {
		t.Errorf("expected Alex total 0, got %s", resp.Msg.Session.Participants[1].Total)
	}

	_, err = client.MoveItem(ctx, connect.NewRequest(&api.MoveItemRequest{
		SessionID:   sess.ID,
		ItemID:      item.ID,
		Destination: "nobody",
	}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestAddParticipant(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.Msg.Session.ID

	resp, err := client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{SessionID: id, Name: "Sam"}))
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if resp.Msg.Participant.DisplayName != "Sam" || resp.Msg.Participant.ColorTag != "pink" {
		t.Errorf("unexpected participant %+v", resp.Msg.Participant)
	}
	if len(resp.Msg.Session.Participants) != 4 {
		t.Errorf("expected 4 participants, got %d", len(resp.Msg.Session.Participants))
	}

	_, err = client.AddParticipant(ctx, connect.NewRequest(&api.AddParticipantRequest{SessionID: id, Name: ""}))
	assertCode(t, err, connect.CodeInvalidArgument)

	get, err := client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: id}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(get.Msg.Session.Participants) != 4 {
		t.Errorf("roster changed after failed add: %d participants", len(get.Msg.Session.Participants))
	}
}

func TestErrorCodes(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, asUser(&api.CreateSessionRequest{}, "alice"))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.Msg.Session.ID

	tests := []struct {
		name string
		call func() error
		want connect.Code
	}{
		{
			name: "unknown session",
			call: func() error {
				_, err := client.GetSession(ctx, asUser(&api.GetSessionRequest{SessionID: "missing"}, "alice"))
				return err
			},
			want: connect.CodeNotFound,
		},
		{
			name: "missing session id",
			call: func() error {
				_, err := client.GetSession(ctx, asUser(&api.GetSessionRequest{}, "alice"))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "other user's session",
			call: func() error {
				_, err := client.GetSession(ctx, asUser(&api.GetSessionRequest{SessionID: id}, "bob"))
				return err
			},
			want: connect.CodePermissionDenied,
		},
		{
			name: "move before receipt loaded",
			call: func() error {
				_, err := client.MoveItem(ctx, asUser(&api.MoveItemRequest{SessionID: id, ItemID: "i1", Destination: models.Unassigned}, "alice"))
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "extraction before upload",
			call: func() error {
				_, err := client.DeliverExtraction(ctx, asUser(&api.DeliverExtractionRequest{SessionID: id}, "alice"))
				return err
			},
			want: connect.CodeFailedPrecondition,
		},
		{
			name: "unsupported upload",
			call: func() error {
				_, err := client.SubmitBill(ctx, asUser(&api.SubmitBillRequest{SessionID: id, Source: "file", ContentType: "text/html"}, "alice"))
				return err
			},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown bill",
			call: func() error {
				_, err := client.GetBill(ctx, asUser(&api.GetBillRequest{BillID: "missing"}, "alice"))
				return err
			},
			want: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertCode(t, tt.call(), tt.want)
		})
	}
}

func TestDeliverExtraction_NegativePrice(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.Msg.Session.ID
	if _, err := client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{SessionID: id, Source: "capture"})); err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}
	if _, err := client.CompleteUpload(ctx, connect.NewRequest(&api.CompleteUploadRequest{SessionID: id})); err != nil {
		t.Fatalf("CompleteUpload failed: %v", err)
	}

	_, err = client.DeliverExtraction(ctx, connect.NewRequest(&api.DeliverExtractionRequest{
		SessionID: id,
		Items:     []api.ExtractedItem{{Name: "Refund", Price: decimal.RequireFromString("-3.50")}},
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	get, err := client.GetSession(ctx, connect.NewRequest(&api.GetSessionRequest{SessionID: id}))
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if get.Msg.Session.State != "processing" {
		t.Errorf("expected session to stay in processing, got %s", get.Msg.Session.State)
	}
}

func TestIngestionSignalsQuoteSubmission(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	created, err := client.CreateSession(ctx, connect.NewRequest(&api.CreateSessionRequest{}))
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	id := created.Msg.Session.ID

	first, err := client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{SessionID: id, Source: "capture"}))
	if err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}
	if _, err := client.StartNewBill(ctx, connect.NewRequest(&api.StartNewBillRequest{SessionID: id})); err != nil {
		t.Fatalf("StartNewBill failed: %v", err)
	}
	second, err := client.SubmitBill(ctx, connect.NewRequest(&api.SubmitBillRequest{SessionID: id, Source: "capture"}))
	if err != nil {
		t.Fatalf("SubmitBill failed: %v", err)
	}
	oldSub, newSub := first.Msg.Session.Submission, second.Msg.Session.Submission
	if oldSub == newSub {
		t.Fatalf("expected a new submission number, both are %d", oldSub)
	}

	_, err = client.CompleteUpload(ctx, connect.NewRequest(&api.CompleteUploadRequest{SessionID: id, Submission: oldSub}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	resp, err := client.CompleteUpload(ctx, connect.NewRequest(&api.CompleteUploadRequest{SessionID: id, Submission: newSub}))
	if err != nil {
		t.Fatalf("CompleteUpload failed: %v", err)
	}
	if resp.Msg.Session.State != "processing" {
		t.Errorf("state = %s, want processing", resp.Msg.Session.State)
	}

	_, err = client.DeliverExtraction(ctx, connect.NewRequest(&api.DeliverExtractionRequest{
		SessionID:  id,
		Submission: oldSub,
		Items:      sampleItems(),
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}
