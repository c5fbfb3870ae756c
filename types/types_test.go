package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/blockberries/nodeapi/types"
)

func TestEntityType_Classification(t *testing.T) {
	for _, et := range types.AllEntityTypes {
		if !et.Valid() {
			t.Errorf("%s: expected valid", et)
		}
		wantKV := et == types.EntityInternalKeyValueStore
		if got := et.SystemType() == types.SystemKeyValueStore; got != wantKV {
			t.Errorf("%s: system type %s", et, et.SystemType())
		}
	}
	if types.EntityType("Bogus").Valid() {
		t.Error("unknown entity type reported valid")
	}
	if !types.EntityGlobalAccount.IsGlobal() || types.EntityInternalFungibleVault.IsGlobal() {
		t.Error("IsGlobal misclassifies entity types")
	}
}

func TestEntityType_PanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	types.EntityType("Bogus").SystemType()
}

func TestFilter_Decode(t *testing.T) {
	var nilFilter *types.EntityIteratorFilter
	f, err := nilFilter.Decode()
	if err != nil {
		t.Fatalf("nil filter: %v", err)
	}
	if _, ok := f.(types.NoFilter); !ok {
		t.Fatalf("nil filter decoded to %T", f)
	}

	f, err = (&types.EntityIteratorFilter{Type: types.FilterTypeSystemType, SystemType: types.SystemKeyValueStore}).Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !f.Matches(types.EntityInternalKeyValueStore, "") || f.Matches(types.EntityGlobalAccount, "Account") {
		t.Fatal("system type filter matches wrongly")
	}

	f, err = (&types.EntityIteratorFilter{Type: types.FilterTypeEntityType, EntityType: types.EntityGlobalAccount}).Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !f.Matches(types.EntityGlobalAccount, "Account") || f.Matches(types.EntityGlobalIdentity, "Identity") {
		t.Fatal("entity type filter matches wrongly")
	}

	f, err = (&types.EntityIteratorFilter{Type: types.FilterTypeBlueprint, BlueprintName: "Radiswap"}).Decode()
	if err != nil {
		t.Fatal(err)
	}
	if !f.Matches(types.EntityGlobalGenericComponent, "Radiswap") || f.Matches(types.EntityGlobalGenericComponent, "Pool") {
		t.Fatal("blueprint filter matches wrongly")
	}
	if f.Matches(types.EntityInternalKeyValueStore, "") {
		t.Fatal("blueprint filter matched a key-value store")
	}

	invalid := []types.EntityIteratorFilter{
		{Type: "Nope"},
		{Type: types.FilterTypeSystemType, SystemType: "Nope"},
		{Type: types.FilterTypeEntityType},
		{Type: types.FilterTypeBlueprint},
	}
	for _, w := range invalid {
		if _, err := w.Decode(); !errors.Is(err, types.ErrInvalidFilter) {
			t.Errorf("%+v: expected ErrInvalidFilter, got %v", w, err)
		}
	}
}

func TestFilter_WireRoundTrip(t *testing.T) {
	filters := []types.EntityFilter{
		types.NoFilter{},
		types.SystemTypeFilter{SystemType: types.SystemObject},
		types.EntityTypeFilter{EntityType: types.EntityGlobalPackage},
		types.BlueprintFilter{BlueprintName: "Account"},
	}
	for _, f := range filters {
		got, err := types.Wire(f).Decode()
		if err != nil {
			t.Fatalf("%T: %v", f, err)
		}
		if got != f {
			t.Fatalf("round trip changed %#v to %#v", f, got)
		}
	}
	if types.Wire(types.NoFilter{}) != nil {
		t.Fatal("NoFilter must map to a nil wire filter")
	}
}

func TestFilter_JSON(t *testing.T) {
	var req types.EntityIteratorRequest
	body := `{"max_page_size": 5, "filter": {"type": "EntityType", "entity_type": "GlobalAccount"}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatal(err)
	}
	if req.MaxPageSize == nil || *req.MaxPageSize != 5 {
		t.Fatalf("unexpected max_page_size %v", req.MaxPageSize)
	}
	f, err := req.Filter.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if f != (types.EntityTypeFilter{EntityType: types.EntityGlobalAccount}) {
		t.Fatalf("unexpected filter %#v", f)
	}
}

func TestAPISet(t *testing.T) {
	s, err := types.ParseAPISet([]string{"Engine_State", " browse "})
	if err != nil {
		t.Fatal(err)
	}
	if s != types.AllAPIs {
		t.Fatalf("expected all apis, got %s", s)
	}
	if s.String() != "engine_state|browse" {
		t.Fatalf("unexpected String %q", s.String())
	}
	if types.APISet(0).String() != "none" {
		t.Fatal("empty set should print none")
	}
	if !types.AllAPIs.Has(types.APIBrowse) || types.APIEngineState.Has(types.APIBrowse) {
		t.Fatal("Has misreports")
	}
	if _, err := types.ParseAPISet([]string{"mesh"}); err == nil {
		t.Fatal("expected error for unknown api")
	}
}

func TestHash_Text(t *testing.T) {
	h := types.Hash{0x01, 0xFF}
	data, err := json.Marshal(h)
	if err != nil {
		t.Fatal(err)
	}
	var got types.Hash
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got != h {
		t.Fatalf("hash JSON round trip: got %s, want %s", got, h)
	}
}
