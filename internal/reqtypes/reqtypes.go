// Package reqtypes defines the JSON-friendly request and response shapes
// storoid's public API accepts and returns. They live in their own leaf
// package so both the planners (internal/plan) and the root storoid
// package can depend on them without an import cycle.
package reqtypes

import (
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/types"
)

// SchemaRequest is the body of createTable: the user-supplied logical
// schema document plus keyspace-level options.
type SchemaRequest struct {
	Attributes        map[string]types.AttrType           `json:"attributes" yaml:"attributes" validate:"required"`
	Index             schema.RawIndex                      `json:"index" yaml:"index"`
	SecondaryIndexes  map[string]schema.RawIndexDescriptor `json:"secondaryIndexes,omitempty" yaml:"secondaryIndexes,omitempty"`
	StorageClass      string                               `json:"storageClass,omitempty" yaml:"storageClass,omitempty"`
	ReplicationFactor int                                  `json:"replicationFactor,omitempty" yaml:"replicationFactor,omitempty"`
}

// Document converts the wire-level request into the schema.Document shape
// the Schema Manager validates and enriches.
func (r SchemaRequest) Document() schema.Document {
	return schema.Document{
		Attributes:       r.Attributes,
		Index:            r.Index,
		SecondaryIndexes: r.SecondaryIndexes,
	}
}

// ReadRequest is the body of get.
type ReadRequest struct {
	Table       string         `json:"table" yaml:"table" validate:"required"`
	Index       string         `json:"index,omitempty" yaml:"index,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Proj        any            `json:"proj,omitempty" yaml:"proj,omitempty"`
	Order       string         `json:"order,omitempty" yaml:"order,omitempty"`
	Limit       any            `json:"limit,omitempty" yaml:"limit,omitempty"`
	Distinct    bool           `json:"distinct,omitempty" yaml:"distinct,omitempty"`
	Consistency string         `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	ExistsOnly  bool           `json:"existsOnly,omitempty" yaml:"existsOnly,omitempty"`
}

// GetResult is the response shape of get.
type GetResult struct {
	Count int              `json:"count"`
	Items []map[string]any `json:"items"`
}

// WriteRequest is the body of put.
type WriteRequest struct {
	Table       string         `json:"table" yaml:"table" validate:"required"`
	Attributes  map[string]any `json:"attributes" yaml:"attributes" validate:"required"`
	If          any            `json:"if,omitempty" yaml:"if,omitempty"`
	Consistency string         `json:"consistency,omitempty" yaml:"consistency,omitempty"`
	TTL         *int           `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// PutResult is the response shape of put.
type PutResult struct {
	Status  int  `json:"status"`
	Applied bool `json:"applied"`
}

// DeleteRequest is the body of delete.
type DeleteRequest struct {
	Table       string         `json:"table" yaml:"table" validate:"required"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Consistency string         `json:"consistency,omitempty" yaml:"consistency,omitempty"`
}
