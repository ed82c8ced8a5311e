package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tablesplit/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs and counts every RPC call.
// It logs the procedure name, operator ID, duration, and any error codes/messages.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			operatorID := GetOperatorID(ctx) // empty if pre-auth

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					metrics.RecordRPC(procedure, connectErr.Code().String())
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"operator_id", operatorID,
						"duration_ms", duration,
					)
				} else {
					metrics.RecordRPC(procedure, connect.CodeUnknown.String())
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"operator_id", operatorID,
						"duration_ms", duration,
					)
				}
			} else {
				metrics.RecordRPC(procedure, "ok")
				slog.Info("RPC ok",
					"procedure", procedure,
					"operator_id", operatorID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
