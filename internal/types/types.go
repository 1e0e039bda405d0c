// Package types maps storoid's closed set of logical attribute types onto
// the physical column types of the underlying wide-column store.
package types

import (
	"fmt"
	"strings"
)

// AttrType is a logical attribute type as it appears in a schema document.
type AttrType string

const (
	Blob      AttrType = "blob"
	Decimal   AttrType = "decimal"
	Double    AttrType = "double"
	Boolean   AttrType = "boolean"
	Varint    AttrType = "varint"
	String    AttrType = "string"
	TimeUUID  AttrType = "timeuuid"
	UUID      AttrType = "uuid"
	Timestamp AttrType = "timestamp"
	JSON      AttrType = "json"
)

// physical maps a scalar logical type to its physical column type. Types not
// present here are either invalid or set variants, handled by IsSet.
var physical = map[AttrType]string{
	Blob:      "blob",
	Decimal:   "decimal",
	Double:    "double",
	Boolean:   "boolean",
	Varint:    "varint",
	String:    "text",
	TimeUUID:  "timeuuid",
	UUID:      "uuid",
	Timestamp: "timestamp",
	JSON:      "text",
}

const setPrefix = "set<"

// IsSet reports whether t is a `set<scalar>` variant, returning the scalar
// element type it wraps.
func IsSet(t AttrType) (elem AttrType, ok bool) {
	s := string(t)
	if !strings.HasPrefix(s, setPrefix) || !strings.HasSuffix(s, ">") {
		return "", false
	}
	return AttrType(s[len(setPrefix) : len(s)-1]), true
}

// Valid reports whether t is a recognized logical type, scalar or set.
func Valid(t AttrType) bool {
	if _, ok := physical[t]; ok {
		return true
	}
	if elem, ok := IsSet(t); ok {
		_, elemOK := physical[elem]
		return elemOK
	}
	return false
}

// Physical returns the physical column type for a logical attribute type.
func Physical(t AttrType) (string, error) {
	if p, ok := physical[t]; ok {
		return p, nil
	}
	if elem, ok := IsSet(t); ok {
		if p, ok := physical[elem]; ok {
			return "set<" + p + ">", nil
		}
	}
	return "", fmt.Errorf("unknown logical type %q", t)
}

// EncodesJSON reports whether values of type t must be JSON-encoded before
// binding to the physical column (plain json, and set<json> elements).
func EncodesJSON(t AttrType) bool {
	if t == JSON {
		return true
	}
	elem, ok := IsSet(t)
	return ok && elem == JSON
}
