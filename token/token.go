// Package token encodes and decodes continuation tokens.
//
// A token is an opaque, URL-safe string carrying the resume key of the
// next page and a hash of the filter the page was produced for. The
// hash is recomputed from each request, so a token presented with a
// different filter (or to a different endpoint) is rejected.
package token

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/nodeapi/types"
)

// Version is the current envelope version.
const Version uint32 = 1

var (
	// ErrInvalidContinuationToken is returned for tokens that cannot be
	// decoded.
	ErrInvalidContinuationToken = errors.New("invalid continuation token")

	// ErrDifferentFilterAcrossPages is returned when a token is
	// presented with a filter other than the one it was issued for.
	ErrDifferentFilterAcrossPages = errors.New("continuation token was issued for a different filter")
)

type envelope struct {
	Version    uint32 `cramberry:"1"`
	Key        []byte `cramberry:"2"`
	FilterHash []byte `cramberry:"3"`
}

type keyBox[K any] struct {
	Value K `cramberry:"1"`
}

// FilterHash returns the hash binding a token to one endpoint scope and
// one filter value. A nil filter hashes like an empty one.
func FilterHash(scope string, filter any) (types.Hash, error) {
	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	if !isNil(filter) {
		data, err := cramberry.Marshal(filter)
		if err != nil {
			return types.Hash{}, fmt.Errorf("hash filter: %w", err)
		}
		h.Write(data)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

// Codec encodes resume keys of type K. The zero value is ready to use.
type Codec[K any] struct{}

// Encode returns the token for key under the given filter hash.
func (Codec[K]) Encode(key K, filterHash types.Hash) (string, error) {
	keyBytes, err := cramberry.Marshal(keyBox[K]{Value: key})
	if err != nil {
		return "", fmt.Errorf("encode continuation key: %w", err)
	}
	data, err := cramberry.Marshal(envelope{
		Version:    Version,
		Key:        keyBytes,
		FilterHash: filterHash[:],
	})
	if err != nil {
		return "", fmt.Errorf("encode continuation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses s and returns its resume key. The token must have been
// issued for filterHash.
func (Codec[K]) Decode(s string, filterHash types.Hash) (K, error) {
	var zero K
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(data) == 0 {
		return zero, fmt.Errorf("%w: not base64url", ErrInvalidContinuationToken)
	}
	var env envelope
	if err := cramberry.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidContinuationToken, err)
	}
	if env.Version != Version {
		return zero, fmt.Errorf("%w: unsupported version %d", ErrInvalidContinuationToken, env.Version)
	}
	if len(env.FilterHash) != len(filterHash) {
		return zero, fmt.Errorf("%w: bad filter hash", ErrInvalidContinuationToken)
	}
	if !bytes.Equal(env.FilterHash, filterHash[:]) {
		return zero, ErrDifferentFilterAcrossPages
	}
	var box keyBox[K]
	if err := cramberry.Unmarshal(env.Key, &box); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidContinuationToken, err)
	}
	return box.Value, nil
}
