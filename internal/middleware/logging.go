// Package middleware holds Connect interceptors shared by every service.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// Logger is a Connect interceptor that logs every RPC call: the procedure,
// the peer, the duration, and any error code/message. Streams are logged
// once, when the handler returns.
type Logger struct{}

// LoggingInterceptor returns the request logging interceptor.
func LoggingInterceptor() *Logger {
	return &Logger{}
}

var _ connect.Interceptor = (*Logger)(nil)

// WrapUnary implements connect.Interceptor.
func (l *Logger) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		logCall(req.Spec().Procedure, req.Peer().Addr, start, err)
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor. Client streams are not logged.
func (l *Logger) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (l *Logger) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		logCall(conn.Spec().Procedure, conn.Peer().Addr, start, err)
		return err
	}
}

func logCall(procedure, peer string, start time.Time, err error) {
	duration := time.Since(start).Milliseconds()
	if err == nil {
		slog.Info("RPC ok",
			"procedure", procedure,
			"peer", peer,
			"duration_ms", duration,
		)
		return
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		slog.Warn("RPC error",
			"procedure", procedure,
			"code", connectErr.Code(),
			"error", connectErr.Message(),
			"peer", peer,
			"duration_ms", duration,
		)
		return
	}
	slog.Error("RPC error",
		"procedure", procedure,
		"error", err,
		"peer", peer,
		"duration_ms", duration,
	)
}
