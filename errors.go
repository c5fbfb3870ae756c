package nodeapi

import (
	"errors"
	"fmt"
)

// RequestError signals that a request was malformed or inconsistent and
// names the offending field. Transports render it as a client error.
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NewRequestError creates a new RequestError.
func NewRequestError(field string, err error) *RequestError {
	return &RequestError{Field: field, Err: err}
}

// IsRequestError checks whether an error is a RequestError and returns
// it.
func IsRequestError(err error) (*RequestError, bool) {
	var r *RequestError
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// ItemNotFoundError signals that a requested item does not exist.
type ItemNotFoundError struct {
	Kind string
	ID   string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewItemNotFoundError creates a new ItemNotFoundError.
func NewItemNotFoundError(kind, id string) *ItemNotFoundError {
	return &ItemNotFoundError{Kind: kind, ID: id}
}

// IsNotFound checks whether an error is an ItemNotFoundError and
// returns it.
func IsNotFound(err error) (*ItemNotFoundError, bool) {
	var n *ItemNotFoundError
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}
