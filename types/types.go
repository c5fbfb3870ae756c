// Package types defines the wire models of the node's browsing APIs.
//
// These are plain Go structs carrying two sets of tags: json tags for
// the HTTP APIs and cramberry tags for deterministic binary
// serialization (the gRPC transport and continuation token filter
// hashing). Transport concerns live in the transport packages.
package types

import "encoding/hex"

// Hash is a 32-byte cryptographic hash.
type Hash [32]byte

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText encodes the hash as hex, so it appears as a string in
// JSON.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex-encoded hash.
func (h *Hash) UnmarshalText(text []byte) error {
	_, err := hex.Decode(h[:], text)
	return err
}

// LedgerStateSummary identifies the ledger state a response was read
// at.
type LedgerStateSummary struct {
	StateVersion      uint64    `json:"state_version" cramberry:"1"`
	HeaderHash        Hash      `json:"header_hash" cramberry:"2"`
	ProposerTimestamp Timestamp `json:"proposer_timestamp" cramberry:"3"`
}
