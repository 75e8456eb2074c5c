package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/Lingz450/receiptsplit/internal/engine"
)

// asConnectError maps the engine's error kinds onto Connect codes. Anything
// unrecognized is an internal error.
func asConnectError(err error) error {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, engine.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, engine.ErrPermissionDenied):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, engine.ErrInvalidInput):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, engine.ErrCloneFailure):
		return connect.NewError(connect.CodeInternal, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
