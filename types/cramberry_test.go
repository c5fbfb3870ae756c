package types_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/blockberries/nodeapi/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestTimestamp_RoundTrip(t *testing.T) {
	ts := types.TimeToTimestamp(time.Date(2024, 6, 15, 12, 30, 45, 123456789, time.UTC))
	got := roundTrip(t, ts)
	if got != ts {
		t.Fatalf("Timestamp round-trip failed: got %+v, want %+v", got, ts)
	}
	goTime := got.ToTime()
	if goTime.Year() != 2024 || goTime.Month() != 6 || goTime.Day() != 15 {
		t.Fatalf("Timestamp.ToTime date wrong: %v", goTime)
	}
	// Millisecond precision.
	if goTime.Nanosecond() != 123000000 {
		t.Fatalf("Timestamp.ToTime nanos wrong: %d", goTime.Nanosecond())
	}
	if ts.DateTime != "2024-06-15T12:30:45.123Z" {
		t.Fatalf("unexpected DateTime %q", ts.DateTime)
	}
}

func TestLedgerStateSummary_RoundTrip(t *testing.T) {
	v := types.LedgerStateSummary{
		StateVersion:      42,
		HeaderHash:        types.Hash{0xAB, 0xCD},
		ProposerTimestamp: types.TimeToTimestamp(time.Unix(1700000000, 0)),
	}
	if got := roundTrip(t, v); got != v {
		t.Fatalf("LedgerStateSummary round-trip failed: got %+v, want %+v", got, v)
	}
}

func TestEntityIteratorRequest_RoundTrip(t *testing.T) {
	size := int32(25)
	tok := "opaque"
	v := types.EntityIteratorRequest{
		MaxPageSize:       &size,
		ContinuationToken: &tok,
		Filter:            &types.EntityIteratorFilter{Type: types.FilterTypeEntityType, EntityType: types.EntityGlobalAccount},
	}
	got := roundTrip(t, v)
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("EntityIteratorRequest round-trip failed: got %+v, want %+v", got, v)
	}
}

func TestEntityIteratorRequest_RoundTrip_Empty(t *testing.T) {
	got := roundTrip(t, types.EntityIteratorRequest{})
	if got.MaxPageSize != nil || got.ContinuationToken != nil || got.Filter != nil {
		t.Fatalf("expected absent optionals to stay absent, got %+v", got)
	}
}

func TestEntityIteratorResponse_RoundTrip(t *testing.T) {
	tok := "next"
	v := types.EntityIteratorResponse{
		LedgerState: types.LedgerStateSummary{StateVersion: 7},
		Page: []types.ListedEntityItem{
			{
				EntityType:            types.EntityInternalKeyValueStore,
				SystemType:            types.SystemKeyValueStore,
				EntityAddress:         "internal_keyvaluestore_000001",
				CreatedAtStateVersion: 3,
			},
			{
				EntityType:            types.EntityGlobalAccount,
				SystemType:            types.SystemObject,
				IsGlobal:              true,
				EntityAddress:         "account_000002",
				CreatedAtStateVersion: 4,
				BlueprintName:         "Account",
			},
		},
		ContinuationToken: &tok,
	}
	got := roundTrip(t, v)
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("EntityIteratorResponse round-trip failed: got %+v, want %+v", got, v)
	}
}

func TestKeyValueStoreIterator_RoundTrip(t *testing.T) {
	size := int32(3)
	req := types.KeyValueStoreIteratorRequest{EntityAddress: "internal_keyvaluestore_000008", MaxPageSize: &size}
	if got := roundTrip(t, req); !reflect.DeepEqual(got, req) {
		t.Fatalf("KeyValueStoreIteratorRequest round-trip failed: got %+v, want %+v", got, req)
	}

	resp := types.KeyValueStoreIteratorResponse{
		LedgerState: types.LedgerStateSummary{StateVersion: 9},
		Page:        []types.KeyValueStoreMapKey{{KeyHex: "00ff"}, {KeyHex: "0100"}},
	}
	if got := roundTrip(t, resp); !reflect.DeepEqual(got, resp) {
		t.Fatalf("KeyValueStoreIteratorResponse round-trip failed: got %+v, want %+v", got, resp)
	}
}

func TestDeterminism(t *testing.T) {
	size := int32(10)
	v := types.EntityIteratorRequest{
		MaxPageSize: &size,
		Filter:      &types.EntityIteratorFilter{Type: types.FilterTypeSystemType, SystemType: types.SystemObject},
	}
	data1, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	data2, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data1, data2) {
		t.Fatalf("non-deterministic encoding: %x vs %x", data1, data2)
	}
}

func TestFilterEncoding_DistinguishesVariants(t *testing.T) {
	a, err := cramberry.Marshal(types.EntityIteratorFilter{Type: types.FilterTypeSystemType, SystemType: types.SystemObject})
	if err != nil {
		t.Fatal(err)
	}
	b, err := cramberry.Marshal(types.EntityIteratorFilter{Type: types.FilterTypeSystemType, SystemType: types.SystemKeyValueStore})
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("different filters encoded identically")
	}
}
