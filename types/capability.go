package types

import (
	"fmt"
	"strings"
)

// APISet is a bitfield declaring which sub-APIs a node serves.
type APISet uint8

const (
	APIEngineState APISet = 1 << iota // 0b01
	APIBrowse                         // 0b10
)

// AllAPIs enables every sub-API.
const AllAPIs = APIEngineState | APIBrowse

// Has returns true if all bits in api are set.
func (s APISet) Has(api APISet) bool {
	return s&api == api
}

// String returns a human-readable representation.
func (s APISet) String() string {
	var apis []string
	if s.Has(APIEngineState) {
		apis = append(apis, "engine_state")
	}
	if s.Has(APIBrowse) {
		apis = append(apis, "browse")
	}
	if len(apis) == 0 {
		return "none"
	}
	return strings.Join(apis, "|")
}

// ParseAPISet builds an APISet from names such as "engine_state" and
// "browse".
func ParseAPISet(names []string) (APISet, error) {
	var s APISet
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "engine_state":
			s |= APIEngineState
		case "browse":
			s |= APIBrowse
		default:
			return 0, fmt.Errorf("unknown api %q", name)
		}
	}
	return s, nil
}
