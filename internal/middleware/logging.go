package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/metrics"
)

// LoggingInterceptor logs one line per unary call and feeds its latency to m,
// labelled by procedure and Connect code. m may be nil.
func LoggingInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			elapsed := time.Since(start)

			procedure := req.Spec().Procedure
			code, level, attrs := outcome(err)
			attrs = append(attrs,
				slog.String("procedure", procedure),
				slog.String("user_id", GetUserID(ctx)),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
			)
			msg := "RPC ok"
			if err != nil {
				msg = "RPC error"
			}
			slog.LogAttrs(ctx, level, msg, attrs...)
			m.ObserveRPC(procedure, code, elapsed)

			return resp, err
		}
	}
}

// outcome classifies a handler result. Connect errors are expected rejections
// and log at warn; anything else escaped the error mapping and logs at error.
func outcome(err error) (string, slog.Level, []slog.Attr) {
	if err == nil {
		return "ok", slog.LevelInfo, nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code().String(), slog.LevelWarn, []slog.Attr{
			slog.String("code", connectErr.Code().String()),
			slog.String("error", connectErr.Message()),
		}
	}
	return connect.CodeUnknown.String(), slog.LevelError, []slog.Attr{
		slog.String("code", connect.CodeUnknown.String()),
		slog.Any("error", err),
	}
}
