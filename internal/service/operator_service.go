package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tablesplit/internal/auth"
	"github.com/mmynk/tablesplit/internal/models"
	pb "github.com/mmynk/tablesplit/pkg/api"
)

// OperatorService implements the OperatorService RPC interface.
type OperatorService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

var _ pb.OperatorServiceHandler = (*OperatorService)(nil)

// NewOperatorService creates a new operator service.
func NewOperatorService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *OperatorService {
	return &OperatorService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new operator account.
func (s *OperatorService) Register(ctx context.Context, req *connect.Request[pb.RegisterOperatorRequest]) (*connect.Response[pb.AuthResponse], error) {
	s.logger.Info("Register request", "name", req.Msg.Name)

	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}
	displayName := req.Msg.DisplayName
	if displayName == "" {
		displayName = req.Msg.Name
	}

	operator, err := s.authenticator.Register(ctx, req.Msg.Name, displayName, req.Msg.PIN)
	if err != nil {
		s.logger.Error("Registration failed", "name", req.Msg.Name, "error", err)
		switch {
		case errors.Is(err, auth.ErrOperatorExists):
			return nil, connect.NewError(connect.CodeAlreadyExists, err)
		case errors.Is(err, auth.ErrWeakPIN):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		default:
			return nil, connect.NewError(connect.CodeInternal, err)
		}
	}

	resp, err := s.authResponse(operator)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Operator registered", "operator_id", operator.ID, "name", operator.Name)
	return resp, nil
}

// Login authenticates an operator and returns a shift token.
func (s *OperatorService) Login(ctx context.Context, req *connect.Request[pb.LoginRequest]) (*connect.Response[pb.AuthResponse], error) {
	s.logger.Info("Login request", "name", req.Msg.Name)

	if req.Msg.Name == "" || req.Msg.PIN == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	operator, err := s.authenticator.Authenticate(ctx, req.Msg.Name, req.Msg.PIN)
	if err != nil {
		s.logger.Warn("Login failed", "name", req.Msg.Name, "error", err)
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidCredentials)
	}

	resp, err := s.authResponse(operator)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Operator logged in", "operator_id", operator.ID, "name", operator.Name)
	return resp, nil
}

func (s *OperatorService) authResponse(operator *models.Operator) (*connect.Response[pb.AuthResponse], error) {
	token, err := s.jwtManager.Generate(operator)
	if err != nil {
		s.logger.Error("Failed to generate token", "operator_id", operator.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&pb.AuthResponse{
		Operator: pb.Operator{
			ID:          operator.ID,
			Name:        operator.Name,
			DisplayName: operator.DisplayName,
			CreatedAt:   operator.CreatedAt,
		},
		Token: token,
	}), nil
}
