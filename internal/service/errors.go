package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/session"
	"github.com/mmynk/billsplit/internal/storage"
)

// toConnectError maps domain errors onto Connect status codes.
func toConnectError(err error) error {
	switch {
	case models.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrPaymentBlocked),
		errors.Is(err, session.ErrStaleSubmission):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrDispatch):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
