package gateway

import (
	"errors"
	"fmt"

	"github.com/wolfeidau/pacsgate/internal/store"
)

// Sentinel errors returned by gateway operations. The RPC layer maps each to a status code.
var (
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrUnavailable        = errors.New("service unavailable")
	ErrInvalidArgument    = errors.New("invalid argument")
)

func newError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// translateStoreError maps store sentinels onto the gateway taxonomy.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, store.ErrUnitNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrStudyNotFound),
		errors.Is(err, store.ErrTemplateNotFound),
		errors.Is(err, store.ErrReportNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrUnitSlugTaken),
		errors.Is(err, store.ErrUserEmailTaken):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, store.ErrReportNotEditable),
		errors.Is(err, store.ErrReportNotSignable),
		errors.Is(err, store.ErrReportAlreadyRevised):
		return fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
	default:
		return fmt.Errorf("store: %w", err)
	}
}
