package graph

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/hmans/coursegraph/internal/apperrors"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error codes reported in errors[].extensions.code.
const (
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeForbidden       = "FORBIDDEN"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// ErrorCode returns the extensions code a client sees for err.
func ErrorCode(err error) string {
	switch {
	case apperrors.IsValidation(err):
		return CodeBadUserInput
	case apperrors.IsForbidden(err):
		return CodeForbidden
	case apperrors.IsUnauthenticated(err):
		return CodeUnauthenticated
	default:
		return CodeInternal
	}
}

// error records err against the current field.
func (ec *executionContext) error(ctx context.Context, err error) {
	graphql.AddError(ctx, ec.present(ctx, err))
}

// present classifies err for the client. Anything that is not a known client
// error is logged in full and reported with a generic message.
func (e *executableSchema) present(ctx context.Context, err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	path := graphql.GetPath(ctx)
	code, message := ErrorCode(err), err.Error()
	if code == CodeInternal {
		message = "internal server error"
		e.log.Error().Err(err).Str("path", path.String()).Msg("resolver failed")
	}

	return &gqlerror.Error{
		Err:        err,
		Message:    message,
		Path:       path,
		Extensions: map[string]any{"code": code},
	}
}
