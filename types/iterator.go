package types

// EntityIteratorRequest lists entities in creation order.
//
// MaxPageSize and ContinuationToken are optional. A continuation token
// is only accepted together with the same Filter it was issued for.
type EntityIteratorRequest struct {
	MaxPageSize       *int32                `json:"max_page_size,omitempty" cramberry:"1"`
	ContinuationToken *string               `json:"continuation_token,omitempty" cramberry:"2"`
	Filter            *EntityIteratorFilter `json:"filter,omitempty" cramberry:"3"`
}

// EntityIteratorResponse is one page of the entity iterator.
type EntityIteratorResponse struct {
	LedgerState       LedgerStateSummary `json:"at_ledger_state" cramberry:"1"`
	Page              []ListedEntityItem `json:"page" cramberry:"2"`
	ContinuationToken *string            `json:"continuation_token,omitempty" cramberry:"3"`
}

// KeyValueStoreIteratorRequest lists the keys of one key-value store
// entity in key order.
type KeyValueStoreIteratorRequest struct {
	EntityAddress     string  `json:"entity_address" cramberry:"1" validate:"required"`
	MaxPageSize       *int32  `json:"max_page_size,omitempty" cramberry:"2"`
	ContinuationToken *string `json:"continuation_token,omitempty" cramberry:"3"`
}

// KeyValueStoreIteratorResponse is one page of the key-value store
// iterator.
type KeyValueStoreIteratorResponse struct {
	LedgerState       LedgerStateSummary    `json:"at_ledger_state" cramberry:"1"`
	Page              []KeyValueStoreMapKey `json:"page" cramberry:"2"`
	ContinuationToken *string               `json:"continuation_token,omitempty" cramberry:"3"`
}

// KeyValueStoreFilter is the filter-shaped part of a
// KeyValueStoreIteratorRequest.
type KeyValueStoreFilter struct {
	EntityAddress string `cramberry:"1"`
}
