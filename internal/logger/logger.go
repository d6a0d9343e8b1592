package logger

import (
	"context"
	"errors"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/pacsgate/internal/auth"
)

// RequestIDHeader carries the request ID back to the caller.
const RequestIDHeader = "X-Request-Id"

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

var _ connect.Interceptor = (*ConnectRequests)(nil)

// ConnectRequests attaches a request scoped logger to the context and logs every call.
type ConnectRequests struct {
	logger zerolog.Logger
}

func NewConnectRequests(logger zerolog.Logger) *ConnectRequests {
	return &ConnectRequests{logger: logger}
}

func (c *ConnectRequests) requestLogger(ctx context.Context, procedure string, peer connect.Peer, requestID string) zerolog.Logger {
	lc := c.logger.With().
		Str("request_id", requestID).
		Str("procedure", procedure).
		Str("protocol", peer.Protocol).
		Str("addr", peer.Addr)

	if p := auth.PrincipalFromContext(ctx); p != nil {
		lc = lc.Int64("user_id", p.UserID).Str("role", string(p.Role))
		if p.UnitID != nil {
			lc = lc.Int64("unit_id", *p.UnitID)
		}
	}

	return lc.Logger()
}

func (c *ConnectRequests) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return connect.UnaryFunc(func(
		ctx context.Context,
		req connect.AnyRequest,
	) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}

		started := time.Now()
		requestID := uuid.NewString()

		log := c.requestLogger(ctx, req.Spec().Procedure, req.Peer(), requestID)
		ctx = log.WithContext(ctx)

		resp, err := next(ctx, req)

		if err != nil {
			code := connect.CodeOf(err)
			ev := zerolog.Ctx(ctx).Error()
			switch code {
			case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodePermissionDenied,
				connect.CodeUnauthenticated, connect.CodeFailedPrecondition:
				ev = zerolog.Ctx(ctx).Warn()
			}
			ev.Err(err).
				Str("code", code.String()).
				Dur("duration", time.Since(started)).
				Msg("rpc call")

			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				connectErr.Meta().Set(RequestIDHeader, requestID)
			}

			return resp, err
		}

		zerolog.Ctx(ctx).Info().
			Dur("duration", time.Since(started)).
			Msg("rpc call")

		if resp != nil {
			resp.Header().Set(RequestIDHeader, requestID)
		}

		return resp, err
	})
}

func (c *ConnectRequests) WrapStreamingClient(
	next connect.StreamingClientFunc,
) connect.StreamingClientFunc {
	return next
}

func (c *ConnectRequests) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return connect.StreamingHandlerFunc(func(
		ctx context.Context,
		conn connect.StreamingHandlerConn,
	) error {
		started := time.Now()

		log := c.requestLogger(ctx, conn.Spec().Procedure, conn.Peer(), uuid.NewString())
		ctx = log.WithContext(ctx)

		err := next(ctx, conn)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("rpc server stream error")
			return err
		}

		zerolog.Ctx(ctx).Info().
			Dur("duration", time.Since(started)).
			Msg("rpc server stream finished")

		return nil
	})
}
