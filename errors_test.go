package nodeapi

import (
	"errors"
	"fmt"
	"testing"
)

func TestRequestError(t *testing.T) {
	cause := errors.New("must be between 1 and 100")
	err := NewRequestError("max_page_size", cause)
	if err.Field != "max_page_size" {
		t.Errorf("expected field max_page_size, got %s", err.Field)
	}

	expected := "max_page_size: must be between 1 and 100"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected RequestError to unwrap to its cause")
	}
}

func TestIsRequestError(t *testing.T) {
	reqErr := NewRequestError("continuation_token", errors.New("malformed"))

	// Direct.
	r, ok := IsRequestError(reqErr)
	if !ok {
		t.Fatal("expected IsRequestError to return true")
	}
	if r.Field != "continuation_token" {
		t.Errorf("expected field continuation_token, got %s", r.Field)
	}

	// Wrapped.
	wrapped := fmt.Errorf("wrapped: %w", reqErr)
	r2, ok2 := IsRequestError(wrapped)
	if !ok2 {
		t.Fatal("expected IsRequestError to unwrap wrapped error")
	}
	if r2.Field != "continuation_token" {
		t.Errorf("expected field continuation_token, got %s", r2.Field)
	}

	// Other errors.
	if _, ok := IsRequestError(fmt.Errorf("just a regular error")); ok {
		t.Fatal("expected IsRequestError to return false for plain error")
	}
	if _, ok := IsRequestError(NewItemNotFoundError("entity", "x")); ok {
		t.Fatal("expected IsRequestError to return false for not-found error")
	}

	// Nil.
	if _, ok := IsRequestError(nil); ok {
		t.Fatal("expected IsRequestError to return false for nil")
	}
}

func TestIsNotFound(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NewItemNotFoundError("entity", "internal_keyvaluestore_1"))
	n, ok := IsNotFound(err)
	if !ok {
		t.Fatal("expected IsNotFound to unwrap wrapped error")
	}
	if n.Kind != "entity" || n.ID != "internal_keyvaluestore_1" {
		t.Errorf("unexpected not-found error: %+v", n)
	}
	if n.Error() != "entity not found: internal_keyvaluestore_1" {
		t.Errorf("unexpected message: %s", n.Error())
	}
	if _, ok := IsNotFound(nil); ok {
		t.Fatal("expected IsNotFound to return false for nil")
	}
}
