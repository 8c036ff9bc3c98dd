// Package apierror maps domain errors onto transport status codes.
package apierror

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/dtroode/tokenkeeper/internal/model"
)

// APIError is an error with a client-safe message and its gRPC and HTTP codes.
type APIError struct {
	GRPCCode   codes.Code
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewErrMissingAuthorizationToken() *APIError {
	return &APIError{GRPCCode: codes.Unauthenticated, HTTPStatus: http.StatusUnauthorized, Message: "missing authorization token"}
}

func NewErrInvalidAuthorizationToken() *APIError {
	return &APIError{GRPCCode: codes.Unauthenticated, HTTPStatus: http.StatusUnauthorized, Message: "invalid authorization token"}
}

func NewErrInvalidPayload() *APIError {
	return &APIError{GRPCCode: codes.InvalidArgument, HTTPStatus: http.StatusBadRequest, Message: model.MsgInvalidPayload}
}

func NewErrNotFound(message string) *APIError {
	return &APIError{GRPCCode: codes.NotFound, HTTPStatus: http.StatusNotFound, Message: message}
}

// NewErrInternalServerError hides err behind a generic message.
func NewErrInternalServerError(_ error) *APIError {
	return &APIError{GRPCCode: codes.Internal, HTTPStatus: http.StatusInternalServerError, Message: model.MsgInternal}
}

// From converts err into an APIError. Unknown errors become internal errors.
func From(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, model.ErrInvalidPayload):
		return NewErrInvalidPayload()
	case errors.Is(err, model.ErrInvalidToken):
		return NewErrInvalidAuthorizationToken()
	case errors.Is(err, model.ErrTokenNotFound):
		return NewErrNotFound(model.MsgTokenNotFound)
	case errors.Is(err, model.ErrNotFound):
		return NewErrNotFound("user not found")
	default:
		return NewErrInternalServerError(err)
	}
}
