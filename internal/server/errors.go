package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/pacsgate/internal/gateway"
)

// toConnectError maps gateway errors onto Connect codes. Unexpected errors are logged
// and replaced with a generic message so internals do not leak to callers.
func toConnectError(ctx context.Context, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, gateway.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, gateway.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, gateway.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, gateway.ErrPreconditionFailed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, gateway.ErrUpstreamFailure):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, gateway.ErrUnavailable):
		zerolog.Ctx(ctx).Error().Err(err).Msg("Backing store unavailable")
		return connect.NewError(connect.CodeUnavailable, errors.New("service unavailable"))
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("Unhandled gateway error")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}
