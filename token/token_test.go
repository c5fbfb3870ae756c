package token_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/blockberries/nodeapi/token"
	"github.com/blockberries/nodeapi/types"
)

type entityKey struct {
	StateVersion uint64 `cramberry:"1"`
	Index        uint32 `cramberry:"2"`
}

type kvFilter struct {
	EntityAddress string `cramberry:"1"`
}

func mustHash(t *testing.T, scope string, filter any) types.Hash {
	t.Helper()
	h, err := token.FilterHash(scope, filter)
	if err != nil {
		t.Fatalf("FilterHash failed: %v", err)
	}
	return h
}

func TestCodec_RoundTripStructKey(t *testing.T) {
	var codec token.Codec[entityKey]
	h := mustHash(t, "engine_state/entity_iterator", nil)

	key := entityKey{StateVersion: 42, Index: 7}
	s, err := codec.Encode(key, h)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsAny(s, "+/=") {
		t.Fatalf("token %q is not URL safe", s)
	}
	got, err := codec.Decode(s, h)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != key {
		t.Fatalf("round trip: got %+v, want %+v", got, key)
	}
}

func TestCodec_RoundTripBytesKey(t *testing.T) {
	var codec token.Codec[[]byte]
	h := mustHash(t, "browse/kv_store_iterator", kvFilter{EntityAddress: "internal_keyvaluestore_1"})

	key := []byte{0x00, 0x01, 0xFE, 0xFF}
	s, err := codec.Encode(key, h)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := codec.Decode(s, h)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("round trip: got %x, want %x", got, key)
	}
}

func TestCodec_FilterMismatch(t *testing.T) {
	var codec token.Codec[entityKey]
	issued := mustHash(t, "browse/kv_store_iterator", kvFilter{EntityAddress: "a"})
	other := mustHash(t, "browse/kv_store_iterator", kvFilter{EntityAddress: "b"})

	s, err := codec.Encode(entityKey{StateVersion: 1}, issued)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = codec.Decode(s, other)
	if !errors.Is(err, token.ErrDifferentFilterAcrossPages) {
		t.Fatalf("expected ErrDifferentFilterAcrossPages, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	var codec token.Codec[entityKey]
	h := mustHash(t, "scope", nil)

	for _, s := range []string{"", "!!!", "not a token", "AAAA"} {
		_, err := codec.Decode(s, h)
		if !errors.Is(err, token.ErrInvalidContinuationToken) {
			t.Errorf("Decode(%q): expected ErrInvalidContinuationToken, got %v", s, err)
		}
	}
}

func TestFilterHash_Deterministic(t *testing.T) {
	f := kvFilter{EntityAddress: "internal_keyvaluestore_1"}
	if mustHash(t, "s", f) != mustHash(t, "s", f) {
		t.Fatal("FilterHash is not deterministic")
	}
}

func TestFilterHash_NilFilters(t *testing.T) {
	var typedNil *kvFilter
	if mustHash(t, "s", nil) != mustHash(t, "s", typedNil) {
		t.Fatal("typed nil filter should hash like nil")
	}
}

func TestFilterHash_ScopeBinding(t *testing.T) {
	f := kvFilter{EntityAddress: "x"}
	if mustHash(t, "engine_state/entity_iterator", f) == mustHash(t, "browse/kv_store_iterator", f) {
		t.Fatal("hashes for different scopes must differ")
	}
	if mustHash(t, "s", kvFilter{EntityAddress: "x"}) == mustHash(t, "s", kvFilter{EntityAddress: "y"}) {
		t.Fatal("hashes for different filters must differ")
	}
}

func TestCodec_ScopeMismatch(t *testing.T) {
	var codec token.Codec[entityKey]
	s, err := codec.Encode(entityKey{StateVersion: 3}, mustHash(t, "engine_state/entity_iterator", nil))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	_, err = codec.Decode(s, mustHash(t, "browse/kv_store_iterator", nil))
	if !errors.Is(err, token.ErrDifferentFilterAcrossPages) {
		t.Fatalf("expected ErrDifferentFilterAcrossPages, got %v", err)
	}
}
