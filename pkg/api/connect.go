package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	// CheckoutServiceName is the fully-qualified name of the checkout service.
	CheckoutServiceName = "tablesplit.v1.CheckoutService"
	// OperatorServiceName is the fully-qualified name of the operator service.
	OperatorServiceName = "tablesplit.v1.OperatorService"
)

// Procedure paths, in the form "/service/method".
const (
	CheckoutServiceStartSplitProcedure      = "/" + CheckoutServiceName + "/StartSplit"
	CheckoutServiceGetSplitProcedure        = "/" + CheckoutServiceName + "/GetSplit"
	CheckoutServiceSetGuestCountProcedure   = "/" + CheckoutServiceName + "/SetGuestCount"
	CheckoutServiceSetModeProcedure         = "/" + CheckoutServiceName + "/SetMode"
	CheckoutServiceAssignItemProcedure      = "/" + CheckoutServiceName + "/AssignItem"
	CheckoutServiceUnassignItemProcedure    = "/" + CheckoutServiceName + "/UnassignItem"
	CheckoutServiceSetCustomAmountProcedure = "/" + CheckoutServiceName + "/SetCustomAmount"
	CheckoutServiceResetSplitProcedure      = "/" + CheckoutServiceName + "/ResetSplit"
	CheckoutServiceBeginPaymentProcedure    = "/" + CheckoutServiceName + "/BeginPayment"
	CheckoutServiceChooseMethodProcedure    = "/" + CheckoutServiceName + "/ChooseMethod"
	CheckoutServiceCancelPaymentProcedure   = "/" + CheckoutServiceName + "/CancelPayment"
	CheckoutServiceConfirmPaymentProcedure  = "/" + CheckoutServiceName + "/ConfirmPayment"
	CheckoutServiceCancelSplitProcedure     = "/" + CheckoutServiceName + "/CancelSplit"
	CheckoutServiceListSettlementsProcedure = "/" + CheckoutServiceName + "/ListSettlements"

	OperatorServiceRegisterProcedure = "/" + OperatorServiceName + "/Register"
	OperatorServiceLoginProcedure    = "/" + OperatorServiceName + "/Login"
)

// CheckoutServiceHandler is implemented by the checkout server.
type CheckoutServiceHandler interface {
	StartSplit(context.Context, *connect.Request[StartSplitRequest]) (*connect.Response[SplitResponse], error)
	GetSplit(context.Context, *connect.Request[GetSplitRequest]) (*connect.Response[SplitResponse], error)
	SetGuestCount(context.Context, *connect.Request[SetGuestCountRequest]) (*connect.Response[SplitResponse], error)
	SetMode(context.Context, *connect.Request[SetModeRequest]) (*connect.Response[SplitResponse], error)
	AssignItem(context.Context, *connect.Request[AssignItemRequest]) (*connect.Response[SplitResponse], error)
	UnassignItem(context.Context, *connect.Request[UnassignItemRequest]) (*connect.Response[SplitResponse], error)
	SetCustomAmount(context.Context, *connect.Request[SetCustomAmountRequest]) (*connect.Response[SplitResponse], error)
	ResetSplit(context.Context, *connect.Request[ResetSplitRequest]) (*connect.Response[SplitResponse], error)
	BeginPayment(context.Context, *connect.Request[BeginPaymentRequest]) (*connect.Response[SplitResponse], error)
	ChooseMethod(context.Context, *connect.Request[ChooseMethodRequest]) (*connect.Response[SplitResponse], error)
	CancelPayment(context.Context, *connect.Request[CancelPaymentRequest]) (*connect.Response[SplitResponse], error)
	ConfirmPayment(context.Context, *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error)
	CancelSplit(context.Context, *connect.Request[CancelSplitRequest]) (*connect.Response[CancelSplitResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
}

// OperatorServiceHandler is implemented by the operator server.
type OperatorServiceHandler interface {
	Register(context.Context, *connect.Request[RegisterOperatorRequest]) (*connect.Response[AuthResponse], error)
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
}

func withJSON(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// NewCheckoutServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewCheckoutServiceHandler(svc CheckoutServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	handlers := map[string]http.Handler{
		CheckoutServiceStartSplitProcedure:      connect.NewUnaryHandler(CheckoutServiceStartSplitProcedure, svc.StartSplit, opts...),
		CheckoutServiceGetSplitProcedure:        connect.NewUnaryHandler(CheckoutServiceGetSplitProcedure, svc.GetSplit, opts...),
		CheckoutServiceSetGuestCountProcedure:   connect.NewUnaryHandler(CheckoutServiceSetGuestCountProcedure, svc.SetGuestCount, opts...),
		CheckoutServiceSetModeProcedure:         connect.NewUnaryHandler(CheckoutServiceSetModeProcedure, svc.SetMode, opts...),
		CheckoutServiceAssignItemProcedure:      connect.NewUnaryHandler(CheckoutServiceAssignItemProcedure, svc.AssignItem, opts...),
		CheckoutServiceUnassignItemProcedure:    connect.NewUnaryHandler(CheckoutServiceUnassignItemProcedure, svc.UnassignItem, opts...),
		CheckoutServiceSetCustomAmountProcedure: connect.NewUnaryHandler(CheckoutServiceSetCustomAmountProcedure, svc.SetCustomAmount, opts...),
		CheckoutServiceResetSplitProcedure:      connect.NewUnaryHandler(CheckoutServiceResetSplitProcedure, svc.ResetSplit, opts...),
		CheckoutServiceBeginPaymentProcedure:    connect.NewUnaryHandler(CheckoutServiceBeginPaymentProcedure, svc.BeginPayment, opts...),
		CheckoutServiceChooseMethodProcedure:    connect.NewUnaryHandler(CheckoutServiceChooseMethodProcedure, svc.ChooseMethod, opts...),
		CheckoutServiceCancelPaymentProcedure:   connect.NewUnaryHandler(CheckoutServiceCancelPaymentProcedure, svc.CancelPayment, opts...),
		CheckoutServiceConfirmPaymentProcedure:  connect.NewUnaryHandler(CheckoutServiceConfirmPaymentProcedure, svc.ConfirmPayment, opts...),
		CheckoutServiceCancelSplitProcedure:     connect.NewUnaryHandler(CheckoutServiceCancelSplitProcedure, svc.CancelSplit, opts...),
		CheckoutServiceListSettlementsProcedure: connect.NewUnaryHandler(CheckoutServiceListSettlementsProcedure, svc.ListSettlements, opts...),
	}
	return "/" + CheckoutServiceName + "/", routeByPath(handlers)
}

// NewOperatorServiceHandler builds an HTTP handler for the operator service.
func NewOperatorServiceHandler(svc OperatorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	handlers := map[string]http.Handler{
		OperatorServiceRegisterProcedure: connect.NewUnaryHandler(OperatorServiceRegisterProcedure, svc.Register, opts...),
		OperatorServiceLoginProcedure:    connect.NewUnaryHandler(OperatorServiceLoginProcedure, svc.Login, opts...),
	}
	return "/" + OperatorServiceName + "/", routeByPath(handlers)
}

func routeByPath(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// CheckoutServiceClient calls a remote checkout service.
type CheckoutServiceClient struct {
	startSplit      *connect.Client[StartSplitRequest, SplitResponse]
	getSplit        *connect.Client[GetSplitRequest, SplitResponse]
	setGuestCount   *connect.Client[SetGuestCountRequest, SplitResponse]
	setMode         *connect.Client[SetModeRequest, SplitResponse]
	assignItem      *connect.Client[AssignItemRequest, SplitResponse]
	unassignItem    *connect.Client[UnassignItemRequest, SplitResponse]
	setCustomAmount *connect.Client[SetCustomAmountRequest, SplitResponse]
	resetSplit      *connect.Client[ResetSplitRequest, SplitResponse]
	beginPayment    *connect.Client[BeginPaymentRequest, SplitResponse]
	chooseMethod    *connect.Client[ChooseMethodRequest, SplitResponse]
	cancelPayment   *connect.Client[CancelPaymentRequest, SplitResponse]
	confirmPayment  *connect.Client[ConfirmPaymentRequest, ConfirmPaymentResponse]
	cancelSplit     *connect.Client[CancelSplitRequest, CancelSplitResponse]
	listSettlements *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
}

// NewCheckoutServiceClient constructs a client for the checkout service.
// baseURL is the server root, e.g. "http://localhost:8080".
func NewCheckoutServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CheckoutServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &CheckoutServiceClient{
		startSplit:      connect.NewClient[StartSplitRequest, SplitResponse](httpClient, baseURL+CheckoutServiceStartSplitProcedure, opts...),
		getSplit:        connect.NewClient[GetSplitRequest, SplitResponse](httpClient, baseURL+CheckoutServiceGetSplitProcedure, opts...),
		setGuestCount:   connect.NewClient[SetGuestCountRequest, SplitResponse](httpClient, baseURL+CheckoutServiceSetGuestCountProcedure, opts...),
		setMode:         connect.NewClient[SetModeRequest, SplitResponse](httpClient, baseURL+CheckoutServiceSetModeProcedure, opts...),
		assignItem:      connect.NewClient[AssignItemRequest, SplitResponse](httpClient, baseURL+CheckoutServiceAssignItemProcedure, opts...),
		unassignItem:    connect.NewClient[UnassignItemRequest, SplitResponse](httpClient, baseURL+CheckoutServiceUnassignItemProcedure, opts...),
		setCustomAmount: connect.NewClient[SetCustomAmountRequest, SplitResponse](httpClient, baseURL+CheckoutServiceSetCustomAmountProcedure, opts...),
		resetSplit:      connect.NewClient[ResetSplitRequest, SplitResponse](httpClient, baseURL+CheckoutServiceResetSplitProcedure, opts...),
		beginPayment:    connect.NewClient[BeginPaymentRequest, SplitResponse](httpClient, baseURL+CheckoutServiceBeginPaymentProcedure, opts...),
		chooseMethod:    connect.NewClient[ChooseMethodRequest, SplitResponse](httpClient, baseURL+CheckoutServiceChooseMethodProcedure, opts...),
		cancelPayment:   connect.NewClient[CancelPaymentRequest, SplitResponse](httpClient, baseURL+CheckoutServiceCancelPaymentProcedure, opts...),
		confirmPayment:  connect.NewClient[ConfirmPaymentRequest, ConfirmPaymentResponse](httpClient, baseURL+CheckoutServiceConfirmPaymentProcedure, opts...),
		cancelSplit:     connect.NewClient[CancelSplitRequest, CancelSplitResponse](httpClient, baseURL+CheckoutServiceCancelSplitProcedure, opts...),
		listSettlements: connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+CheckoutServiceListSettlementsProcedure, opts...),
	}
}

func (c *CheckoutServiceClient) StartSplit(ctx context.Context, req *connect.Request[StartSplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.startSplit.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) GetSplit(ctx context.Context, req *connect.Request[GetSplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.getSplit.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) SetGuestCount(ctx context.Context, req *connect.Request[SetGuestCountRequest]) (*connect.Response[SplitResponse], error) {
	return c.setGuestCount.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) SetMode(ctx context.Context, req *connect.Request[SetModeRequest]) (*connect.Response[SplitResponse], error) {
	return c.setMode.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) AssignItem(ctx context.Context, req *connect.Request[AssignItemRequest]) (*connect.Response[SplitResponse], error) {
	return c.assignItem.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) UnassignItem(ctx context.Context, req *connect.Request[UnassignItemRequest]) (*connect.Response[SplitResponse], error) {
	return c.unassignItem.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) SetCustomAmount(ctx context.Context, req *connect.Request[SetCustomAmountRequest]) (*connect.Response[SplitResponse], error) {
	return c.setCustomAmount.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) ResetSplit(ctx context.Context, req *connect.Request[ResetSplitRequest]) (*connect.Response[SplitResponse], error) {
	return c.resetSplit.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) BeginPayment(ctx context.Context, req *connect.Request[BeginPaymentRequest]) (*connect.Response[SplitResponse], error) {
	return c.beginPayment.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) ChooseMethod(ctx context.Context, req *connect.Request[ChooseMethodRequest]) (*connect.Response[SplitResponse], error) {
	return c.chooseMethod.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) CancelPayment(ctx context.Context, req *connect.Request[CancelPaymentRequest]) (*connect.Response[SplitResponse], error) {
	return c.cancelPayment.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) ConfirmPayment(ctx context.Context, req *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error) {
	return c.confirmPayment.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) CancelSplit(ctx context.Context, req *connect.Request[CancelSplitRequest]) (*connect.Response[CancelSplitResponse], error) {
	return c.cancelSplit.CallUnary(ctx, req)
}

func (c *CheckoutServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// OperatorServiceClient calls a remote operator service.
type OperatorServiceClient struct {
	register *connect.Client[RegisterOperatorRequest, AuthResponse]
	login    *connect.Client[LoginRequest, AuthResponse]
}

// NewOperatorServiceClient constructs a client for the operator service.
func NewOperatorServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *OperatorServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &OperatorServiceClient{
		register: connect.NewClient[RegisterOperatorRequest, AuthResponse](httpClient, baseURL+OperatorServiceRegisterProcedure, opts...),
		login:    connect.NewClient[LoginRequest, AuthResponse](httpClient, baseURL+OperatorServiceLoginProcedure, opts...),
	}
}

func (c *OperatorServiceClient) Register(ctx context.Context, req *connect.Request[RegisterOperatorRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *OperatorServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}
