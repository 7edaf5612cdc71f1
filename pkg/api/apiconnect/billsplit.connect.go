// Package apiconnect wires the billsplit.v1.BillSplitService messages to
// Connect handlers and clients.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/pkg/api"
)

// BillSplitServiceName is the fully-qualified name of the BillSplitService service.
const BillSplitServiceName = "billsplit.v1.BillSplitService"

// Procedure paths, one per RPC.
const (
	BillSplitServiceCreateSessionProcedure     = "/billsplit.v1.BillSplitService/CreateSession"
	BillSplitServiceGetSessionProcedure        = "/billsplit.v1.BillSplitService/GetSession"
	BillSplitServiceSubmitBillProcedure        = "/billsplit.v1.BillSplitService/SubmitBill"
	BillSplitServiceCompleteUploadProcedure    = "/billsplit.v1.BillSplitService/CompleteUpload"
	BillSplitServiceDeliverExtractionProcedure = "/billsplit.v1.BillSplitService/DeliverExtraction"
	BillSplitServiceAddParticipantProcedure    = "/billsplit.v1.BillSplitService/AddParticipant"
	BillSplitServiceMoveItemProcedure          = "/billsplit.v1.BillSplitService/MoveItem"
	BillSplitServiceDistributeEquallyProcedure = "/billsplit.v1.BillSplitService/DistributeEqually"
	BillSplitServiceStartNewBillProcedure      = "/billsplit.v1.BillSplitService/StartNewBill"
	BillSplitServiceRequestPaymentProcedure    = "/billsplit.v1.BillSplitService/RequestPayment"
	BillSplitServiceListBillsProcedure         = "/billsplit.v1.BillSplitService/ListBills"
	BillSplitServiceGetBillProcedure           = "/billsplit.v1.BillSplitService/GetBill"
)

// BillSplitServiceHandler is implemented by the server side of the service.
type BillSplitServiceHandler interface {
	// CreateSession creates a new idle session owned by the caller.
	CreateSession(context.Context, *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.SessionResponse], error)
	// GetSession returns the current state of a session.
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	// SubmitBill starts receipt ingestion: idle -> uploading.
	SubmitBill(context.Context, *connect.Request[api.SubmitBillRequest]) (*connect.Response[api.SessionResponse], error)
	// CompleteUpload signals that the receipt transfer finished: uploading -> processing.
	CompleteUpload(context.Context, *connect.Request[api.CompleteUploadRequest]) (*connect.Response[api.SessionResponse], error)
	// DeliverExtraction loads the parsed receipt: processing -> done.
	DeliverExtraction(context.Context, *connect.Request[api.DeliverExtractionRequest]) (*connect.Response[api.SessionResponse], error)
	// AddParticipant adds a participant to the roster.
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	// MoveItem assigns an item to a participant or back to unassigned.
	MoveItem(context.Context, *connect.Request[api.MoveItemRequest]) (*connect.Response[api.SessionResponse], error)
	// DistributeEqually overwrites all assignments with the positional equal split.
	DistributeEqually(context.Context, *connect.Request[api.DistributeEquallyRequest]) (*connect.Response[api.SessionResponse], error)
	// StartNewBill discards the current bill and returns the session to idle.
	StartNewBill(context.Context, *connect.Request[api.StartNewBillRequest]) (*connect.Response[api.SessionResponse], error)
	// RequestPayment archives the bill and sends payment requests once every item is assigned.
	RequestPayment(context.Context, *connect.Request[api.RequestPaymentRequest]) (*connect.Response[api.RequestPaymentResponse], error)
	// ListBills lists the caller's archived bills, newest first.
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	// GetBill returns one archived bill.
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
}

// NewBillSplitServiceHandler builds an HTTP handler for every procedure of svc.
// It returns the path to mount the handler on.
func NewBillSplitServiceHandler(svc BillSplitServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(BillSplitServiceCreateSessionProcedure, connect.NewUnaryHandler(BillSplitServiceCreateSessionProcedure, svc.CreateSession, opts...))
	mux.Handle(BillSplitServiceGetSessionProcedure, connect.NewUnaryHandler(BillSplitServiceGetSessionProcedure, svc.GetSession, opts...))
	mux.Handle(BillSplitServiceSubmitBillProcedure, connect.NewUnaryHandler(BillSplitServiceSubmitBillProcedure, svc.SubmitBill, opts...))
	mux.Handle(BillSplitServiceCompleteUploadProcedure, connect.NewUnaryHandler(BillSplitServiceCompleteUploadProcedure, svc.CompleteUpload, opts...))
	mux.Handle(BillSplitServiceDeliverExtractionProcedure, connect.NewUnaryHandler(BillSplitServiceDeliverExtractionProcedure, svc.DeliverExtraction, opts...))
	mux.Handle(BillSplitServiceAddParticipantProcedure, connect.NewUnaryHandler(BillSplitServiceAddParticipantProcedure, svc.AddParticipant, opts...))
	mux.Handle(BillSplitServiceMoveItemProcedure, connect.NewUnaryHandler(BillSplitServiceMoveItemProcedure, svc.MoveItem, opts...))
	mux.Handle(BillSplitServiceDistributeEquallyProcedure, connect.NewUnaryHandler(BillSplitServiceDistributeEquallyProcedure, svc.DistributeEqually, opts...))
	mux.Handle(BillSplitServiceStartNewBillProcedure, connect.NewUnaryHandler(BillSplitServiceStartNewBillProcedure, svc.StartNewBill, opts...))
	mux.Handle(BillSplitServiceRequestPaymentProcedure, connect.NewUnaryHandler(BillSplitServiceRequestPaymentProcedure, svc.RequestPayment, opts...))
	mux.Handle(BillSplitServiceListBillsProcedure, connect.NewUnaryHandler(BillSplitServiceListBillsProcedure, svc.ListBills, opts...))
	mux.Handle(BillSplitServiceGetBillProcedure, connect.NewUnaryHandler(BillSplitServiceGetBillProcedure, svc.GetBill, opts...))
	return "/" + BillSplitServiceName + "/", mux
}

// BillSplitServiceClient is a client for the service.
type BillSplitServiceClient interface {
	CreateSession(context.Context, *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.SessionResponse], error)
	GetSession(context.Context, *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error)
	SubmitBill(context.Context, *connect.Request[api.SubmitBillRequest]) (*connect.Response[api.SessionResponse], error)
	CompleteUpload(context.Context, *connect.Request[api.CompleteUploadRequest]) (*connect.Response[api.SessionResponse], error)
	DeliverExtraction(context.Context, *connect.Request[api.DeliverExtractionRequest]) (*connect.Response[api.SessionResponse], error)
	AddParticipant(context.Context, *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error)
	MoveItem(context.Context, *connect.Request[api.MoveItemRequest]) (*connect.Response[api.SessionResponse], error)
	DistributeEqually(context.Context, *connect.Request[api.DistributeEquallyRequest]) (*connect.Response[api.SessionResponse], error)
	StartNewBill(context.Context, *connect.Request[api.StartNewBillRequest]) (*connect.Response[api.SessionResponse], error)
	RequestPayment(context.Context, *connect.Request[api.RequestPaymentRequest]) (*connect.Response[api.RequestPaymentResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
}

// NewBillSplitServiceClient constructs a client for the service at baseURL,
// for example "http://localhost:8080".
func NewBillSplitServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillSplitServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &billSplitServiceClient{
		createSession:     connect.NewClient[api.CreateSessionRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceCreateSessionProcedure, opts...),
		getSession:        connect.NewClient[api.GetSessionRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceGetSessionProcedure, opts...),
		submitBill:        connect.NewClient[api.SubmitBillRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceSubmitBillProcedure, opts...),
		completeUpload:    connect.NewClient[api.CompleteUploadRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceCompleteUploadProcedure, opts...),
		deliverExtraction: connect.NewClient[api.DeliverExtractionRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceDeliverExtractionProcedure, opts...),
		addParticipant:    connect.NewClient[api.AddParticipantRequest, api.AddParticipantResponse](httpClient, baseURL+BillSplitServiceAddParticipantProcedure, opts...),
		moveItem:          connect.NewClient[api.MoveItemRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceMoveItemProcedure, opts...),
		distributeEqually: connect.NewClient[api.DistributeEquallyRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceDistributeEquallyProcedure, opts...),
		startNewBill:      connect.NewClient[api.StartNewBillRequest, api.SessionResponse](httpClient, baseURL+BillSplitServiceStartNewBillProcedure, opts...),
		requestPayment:    connect.NewClient[api.RequestPaymentRequest, api.RequestPaymentResponse](httpClient, baseURL+BillSplitServiceRequestPaymentProcedure, opts...),
		listBills:         connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL+BillSplitServiceListBillsProcedure, opts...),
		getBill:           connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+BillSplitServiceGetBillProcedure, opts...),
	}
}

type billSplitServiceClient struct {
	createSession     *connect.Client[api.CreateSessionRequest, api.SessionResponse]
	getSession        *connect.Client[api.GetSessionRequest, api.SessionResponse]
	submitBill        *connect.Client[api.SubmitBillRequest, api.SessionResponse]
	completeUpload    *connect.Client[api.CompleteUploadRequest, api.SessionResponse]
	deliverExtraction *connect.Client[api.DeliverExtractionRequest, api.SessionResponse]
	addParticipant    *connect.Client[api.AddParticipantRequest, api.AddParticipantResponse]
	moveItem          *connect.Client[api.MoveItemRequest, api.SessionResponse]
	distributeEqually *connect.Client[api.DistributeEquallyRequest, api.SessionResponse]
	startNewBill      *connect.Client[api.StartNewBillRequest, api.SessionResponse]
	requestPayment    *connect.Client[api.RequestPaymentRequest, api.RequestPaymentResponse]
	listBills         *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	getBill           *connect.Client[api.GetBillRequest, api.GetBillResponse]
}

func (c *billSplitServiceClient) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) SubmitBill(ctx context.Context, req *connect.Request[api.SubmitBillRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.submitBill.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) CompleteUpload(ctx context.Context, req *connect.Request[api.CompleteUploadRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.completeUpload.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) DeliverExtraction(ctx context.Context, req *connect.Request[api.DeliverExtractionRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.deliverExtraction.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) AddParticipant(ctx context.Context, req *connect.Request[api.AddParticipantRequest]) (*connect.Response[api.AddParticipantResponse], error) {
	return c.addParticipant.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) MoveItem(ctx context.Context, req *connect.Request[api.MoveItemRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.moveItem.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) DistributeEqually(ctx context.Context, req *connect.Request[api.DistributeEquallyRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.distributeEqually.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) StartNewBill(ctx context.Context, req *connect.Request[api.StartNewBillRequest]) (*connect.Response[api.SessionResponse], error) {
	return c.startNewBill.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) RequestPayment(ctx context.Context, req *connect.Request[api.RequestPaymentRequest]) (*connect.Response[api.RequestPaymentResponse], error) {
	return c.requestPayment.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billSplitServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}
