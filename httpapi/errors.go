package httpapi

import (
	"errors"
	"net/http"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/server"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails names what the error is about, when known.
type ErrorDetails struct {
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
	ID    string `json:"id,omitempty"`
}

// toErrorResponse maps err to its HTTP status and body. Server errors
// are not echoed to the caller.
func toErrorResponse(err error) ErrorResponse {
	if reqErr, ok := nodeapi.IsRequestError(err); ok {
		return ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
			Details: &ErrorDetails{Field: reqErr.Field},
		}
	}
	if nf, ok := nodeapi.IsNotFound(err); ok {
		return ErrorResponse{
			Code:    http.StatusNotFound,
			Message: err.Error(),
			Details: &ErrorDetails{Kind: nf.Kind, ID: nf.ID},
		}
	}
	switch {
	case errors.Is(err, server.ErrNotReady):
		return ErrorResponse{Code: http.StatusServiceUnavailable, Message: err.Error()}
	case errors.Is(err, server.ErrAPINotServed):
		return ErrorResponse{Code: http.StatusNotImplemented, Message: err.Error()}
	}
	return ErrorResponse{Code: http.StatusInternalServerError, Message: "internal server error"}
}
