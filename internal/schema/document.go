// Package schema validates user-supplied schema documents, synthesizes
// secondary-index companion schemas, and persists/caches the result per
// keyspace.
package schema

import (
	"encoding/json"

	"github.com/wikimedia/storoid/internal/types"
)

// stringList decodes a JSON value that may be a single string or an array
// of strings into a normalized []string, matching the flexibility
// spec.md grants index.range/order/static and secondaryIndexes[...].proj.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*l = nil
			return nil
		}
		*l = stringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = stringList(many)
	return nil
}

func (l stringList) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(l))
}

// RawIndex is the JSON shape of an `index` or `secondaryIndexes[name]`
// descriptor before normalization.
type RawIndex struct {
	Hash   string     `json:"hash"`
	Range  stringList `json:"range,omitempty"`
	Order  stringList `json:"order,omitempty"`
	Static stringList `json:"static,omitempty"`
}

// RawIndexDescriptor extends RawIndex with the extra projected attributes a
// secondary index may carry.
type RawIndexDescriptor struct {
	RawIndex
	Proj stringList `json:"proj,omitempty"`
}

// Document is the logical schema document exactly as persisted into the
// `meta` table under key "schema".
type Document struct {
	Attributes       map[string]types.AttrType     `json:"attributes"`
	Index            RawIndex                      `json:"index"`
	SecondaryIndexes map[string]RawIndexDescriptor `json:"secondaryIndexes,omitempty"`
}
