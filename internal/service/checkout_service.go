// Package service implements the Connect RPC handlers for tablesplit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tablesplit/internal/metrics"
	"github.com/mmynk/tablesplit/internal/middleware"
	"github.com/mmynk/tablesplit/internal/models"
	"github.com/mmynk/tablesplit/internal/split"
	"github.com/mmynk/tablesplit/internal/storage"
	pb "github.com/mmynk/tablesplit/pkg/api"
)

// SettlementSink receives confirmed settlements; ledger.Dispatcher implements it.
type SettlementSink interface {
	Submit(settlement models.Settlement) bool
}

// CheckoutService implements the Connect CheckoutService
type CheckoutService struct {
	sessions *registry
	sink     SettlementSink
	store    storage.SettlementStore
}

var _ pb.CheckoutServiceHandler = (*CheckoutService)(nil)

// NewCheckoutService creates a CheckoutService. Confirmed payments go to sink;
// ListSettlements reads from store. Non-positive retentions fall back to
// DefaultClosedRetention and DefaultIdleRetention.
func NewCheckoutService(sink SettlementSink, store storage.SettlementStore, closedRetention, idleRetention time.Duration) *CheckoutService {
	if closedRetention <= 0 {
		closedRetention = DefaultClosedRetention
	}
	if idleRetention <= 0 {
		idleRetention = DefaultIdleRetention
	}
	return &CheckoutService{
		sessions: newRegistry(closedRetention, idleRetention),
		sink:     sink,
		store:    store,
	}
}

// toConnectError maps engine errors onto Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, split.ErrInvalidConfiguration),
		errors.Is(err, split.ErrItemNotFound),
		errors.Is(err, split.ErrUnknownGuestIndex):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, split.ErrCannotShrinkBelowSettled),
		errors.Is(err, split.ErrNoMethodSelected),
		errors.Is(err, split.ErrNoActivePayment),
		errors.Is(err, split.ErrGuestAlreadyPaid),
		errors.Is(err, split.ErrSessionClosed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// settlementFunc tags each settlement with the operator and hands it to the ledger.
func (s *CheckoutService) settlementFunc(operatorID string) split.SettlementFunc {
	return func(settlement models.Settlement) {
		settlement.OperatorID = operatorID
		metrics.RecordSettlement(string(settlement.Method), string(settlement.Mode), amountFloat(settlement.Amount))
		if !s.sink.Submit(settlement) {
			slog.Error("Settlement not queued for ledger",
				"session_id", settlement.SessionID,
				"guest_index", settlement.GuestIndex,
				"amount", settlement.Amount.String(),
			)
		}
	}
}

func (s *CheckoutService) lookup(sessionID string) (*entry, error) {
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id required"))
	}
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	return e, nil
}

// mutate runs op against the session and returns the resulting split.
func (s *CheckoutService) mutate(sessionID, action string, op func(*split.Session) error) (*connect.Response[pb.SplitResponse], error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := op(e.session); err != nil {
		slog.Warn(action+" rejected", "session_id", sessionID, "error", err)
		return nil, toConnectError(err)
	}
	s.sessions.touch(e)
	return s.splitResponse(e)
}

func (s *CheckoutService) splitResponse(e *entry) (*connect.Response[pb.SplitResponse], error) {
	view, err := e.session.View()
	if err != nil {
		slog.Error("Split view failed", "session_id", e.session.ID(), "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.SplitResponse{Split: splitToProto(view)}), nil
}

// StartSplit seeds a new split session from the cart snapshot.
func (s *CheckoutService) StartSplit(ctx context.Context, req *connect.Request[pb.StartSplitRequest]) (*connect.Response[pb.SplitResponse], error) {
	operatorID := middleware.GetOperatorID(ctx)
	if closed, idle := s.sessions.evict(); closed+idle > 0 {
		slog.Info("Evicted split sessions", "closed", closed, "idle", idle)
	}

	for i, item := range req.Msg.Items {
		slog.Debug("Processing item",
			"index", i+1,
			"id", item.ID,
			"unit_price", item.UnitPrice.String(),
			"quantity", item.Quantity,
		)
	}

	session, err := split.NewSession(
		snapshotFromRequest(req.Msg),
		req.Msg.GuestCount,
		split.WithSettlementFunc(s.settlementFunc(operatorID)),
	)
	if err != nil {
		slog.Error("StartSplit failed", "error", err)
		return nil, toConnectError(err)
	}

	e := &entry{session: session, operatorID: operatorID}
	s.sessions.add(e)
	slog.Info("Split started",
		"session_id", session.ID(),
		"guests", req.Msg.GuestCount,
		"items", len(req.Msg.Items),
		"total", req.Msg.Total.String(),
		"operator_id", operatorID,
	)
	return s.splitResponse(e)
}

// GetSplit returns the current state of a split session.
func (s *CheckoutService) GetSplit(ctx context.Context, req *connect.Request[pb.GetSplitRequest]) (*connect.Response[pb.SplitResponse], error) {
	e, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return s.splitResponse(e)
}

// SetGuestCount grows or shrinks the party.
func (s *CheckoutService) SetGuestCount(ctx context.Context, req *connect.Request[pb.SetGuestCountRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "SetGuestCount", func(session *split.Session) error {
		return session.SetGuestCount(req.Msg.GuestCount)
	})
}

// SetMode switches the allocation strategy.
func (s *CheckoutService) SetMode(ctx context.Context, req *connect.Request[pb.SetModeRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "SetMode", func(session *split.Session) error {
		return session.SetMode(models.SplitMode(req.Msg.Mode))
	})
}

// AssignItem gives a line item to a guest.
func (s *CheckoutService) AssignItem(ctx context.Context, req *connect.Request[pb.AssignItemRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "AssignItem", func(session *split.Session) error {
		return session.AssignItem(req.Msg.GuestIndex, req.Msg.ItemID)
	})
}

// UnassignItem takes a line item away from a guest.
func (s *CheckoutService) UnassignItem(ctx context.Context, req *connect.Request[pb.UnassignItemRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "UnassignItem", func(session *split.Session) error {
		return session.UnassignItem(req.Msg.GuestIndex, req.Msg.ItemID)
	})
}

// SetCustomAmount records a guest's custom share.
func (s *CheckoutService) SetCustomAmount(ctx context.Context, req *connect.Request[pb.SetCustomAmountRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "SetCustomAmount", func(session *split.Session) error {
		return session.SetCustomAmount(req.Msg.GuestIndex, req.Msg.Amount)
	})
}

// ResetSplit returns the session to its seeded state.
func (s *CheckoutService) ResetSplit(ctx context.Context, req *connect.Request[pb.ResetSplitRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "ResetSplit", func(session *split.Session) error {
		session.Reset()
		return nil
	})
}

// BeginPayment starts a guest's payment.
func (s *CheckoutService) BeginPayment(ctx context.Context, req *connect.Request[pb.BeginPaymentRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "BeginPayment", func(session *split.Session) error {
		return session.BeginPayment(req.Msg.GuestIndex)
	})
}

// ChooseMethod records the paying guest's method.
func (s *CheckoutService) ChooseMethod(ctx context.Context, req *connect.Request[pb.ChooseMethodRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "ChooseMethod", func(session *split.Session) error {
		return session.ChooseMethod(models.PaymentMethod(req.Msg.Method))
	})
}

// CancelPayment abandons the payment in progress.
func (s *CheckoutService) CancelPayment(ctx context.Context, req *connect.Request[pb.CancelPaymentRequest]) (*connect.Response[pb.SplitResponse], error) {
	return s.mutate(req.Msg.SessionID, "CancelPayment", func(session *split.Session) error {
		session.CancelPayment()
		return nil
	})
}

// ConfirmPayment settles the paying guest.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req *connect.Request[pb.ConfirmPaymentRequest]) (*connect.Response[pb.ConfirmPaymentResponse], error) {
	e, err := s.lookup(req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	confirmation, err := e.session.ConfirmPayment()
	if err != nil {
		slog.Warn("ConfirmPayment rejected", "session_id", req.Msg.SessionID, "error", err)
		return nil, toConnectError(err)
	}
	s.sessions.touch(e)

	settlement := confirmation.Settlement
	settlement.OperatorID = e.operatorID
	if confirmation.Replayed {
		slog.Info("Duplicate payment confirmation ignored",
			"session_id", settlement.SessionID,
			"guest_index", settlement.GuestIndex,
		)
	} else {
		slog.Info("Guest settled",
			"session_id", settlement.SessionID,
			"guest_index", settlement.GuestIndex,
			"amount", settlement.Amount.String(),
			"method", settlement.Method,
			"sequence", settlement.Sequence,
		)
	}

	view, err := e.session.View()
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.ConfirmPaymentResponse{
		Settlement: settlementToProto(settlement),
		Replayed:   confirmation.Replayed,
		Split:      splitToProto(view),
	}), nil
}

// CancelSplit discards a session. Settled payments stay in the ledger.
func (s *CheckoutService) CancelSplit(ctx context.Context, req *connect.Request[pb.CancelSplitRequest]) (*connect.Response[pb.CancelSplitResponse], error) {
	if req.Msg.SessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id required"))
	}
	if !s.sessions.remove(req.Msg.SessionID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("split session %q not found", req.Msg.SessionID))
	}
	slog.Info("Split cancelled", "session_id", req.Msg.SessionID)
	return connect.NewResponse(&pb.CancelSplitResponse{}), nil
}

// ListSettlements returns the ledger rows recorded for a session.
func (s *CheckoutService) ListSettlements(ctx context.Context, req *connect.Request[pb.ListSettlementsRequest]) (*connect.Response[pb.ListSettlementsResponse], error) {
	if req.Msg.SessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id required"))
	}

	settlements, err := s.store.ListSettlementsBySession(ctx, req.Msg.SessionID)
	if err != nil {
		slog.Error("ListSettlements failed", "session_id", req.Msg.SessionID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]pb.Settlement, len(settlements))
	for i, settlement := range settlements {
		out[i] = settlementToProto(*settlement)
	}
	return connect.NewResponse(&pb.ListSettlementsResponse{Settlements: out}), nil
}
