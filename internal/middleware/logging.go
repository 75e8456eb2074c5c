package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Each request gets a generated id so its log lines can be correlated; the
// id is echoed back in the X-Request-Id response header.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := req.Header().Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			actor := GetActor(ctx) // empty if pre-auth

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"actor", actor,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"request_id", requestID,
						"error", err,
						"actor", actor,
						"duration_ms", duration,
					)
				}
			} else {
				resp.Header().Set("X-Request-Id", requestID)
				slog.Info("RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"actor", actor,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
