package schema

import (
	"github.com/wikimedia/storoid/internal/storeerr"
	"github.com/wikimedia/storoid/internal/types"
)

// DataFamily, MetaFamily, and the companion name prefix are the physical
// column-family names for every keyspace storoid manages.
const (
	DataFamily = "data"
	MetaFamily = "meta"

	companionPrefix = "i_"
)

// CompanionName returns the physical column-family name for a secondary
// index.
func CompanionName(indexName string) string {
	return companionPrefix + indexName
}

// Companion is a fully-synthesized secondary-index schema: a table that
// materializes the index as if it were a primary table, carrying the
// primary table's key columns so a companion row can be found or cleaned
// up alongside its primary row.
type Companion struct {
	Name       string
	Attributes map[string]types.AttrType
	Hash       string
	Range      []string
	Order      map[string]string
	Static     map[string]bool
	IndexAttrs map[string]bool
}

// Enriched is the validated schema document plus every synthesized
// companion, cached by the Manager and never mutated once built.
type Enriched struct {
	Document
	IndexAttrs map[string]bool
	Companions map[string]*Companion
}

// AttrConsistentUpTo, AttrTombstone, and AttrImplicitTid are the
// synthesized column names the companion-synthesis algorithm introduces.
const (
	AttrConsistentUpTo = "__consistentUpTo"
	AttrTombstone      = "__tombstone"
	AttrImplicitTid    = "_tid"
)

// Enrich validates doc and synthesizes every secondary-index companion,
// returning the cached-ready form. It never mutates doc.
func Enrich(doc Document) (*Enriched, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	primaryRange := append([]string{}, doc.Index.Range...)
	primaryIdxAttrs := toSet(append([]string{doc.Index.Hash}, primaryRange...))

	enriched := &Enriched{
		Document:   doc,
		IndexAttrs: primaryIdxAttrs,
		Companions: map[string]*Companion{},
	}
	enriched.Document.Index.Range = primaryRange

	for name, desc := range doc.SecondaryIndexes {
		companion, err := synthesizeCompanion(doc, name, desc)
		if err != nil {
			return nil, err
		}
		enriched.Companions[name] = companion
	}
	return enriched, nil
}

func validate(doc Document) error {
	if doc.Index.Hash == "" {
		return storeerr.Schema("index.hash is required")
	}
	if _, ok := doc.Attributes[doc.Index.Hash]; !ok {
		return storeerr.Schema("index.hash %q is not declared in attributes", doc.Index.Hash)
	}
	for _, col := range doc.Index.Range {
		if _, ok := doc.Attributes[col]; !ok {
			return storeerr.Schema("index.range column %q is not declared in attributes", col)
		}
	}
	for _, col := range doc.Index.Static {
		if _, ok := doc.Attributes[col]; !ok {
			return storeerr.Schema("index.static column %q is not declared in attributes", col)
		}
	}
	for attr, t := range doc.Attributes {
		if !types.Valid(t) {
			return storeerr.Schema("attribute %q has unknown type %q", attr, t)
		}
	}
	for name, desc := range doc.SecondaryIndexes {
		if desc.Hash == "" {
			return storeerr.Schema("secondary index %q: hash is required", name)
		}
		if _, ok := doc.Attributes[desc.Hash]; !ok {
			return storeerr.Schema("secondary index %q: hash %q is not declared in attributes", name, desc.Hash)
		}
		for _, col := range desc.Range {
			if _, ok := doc.Attributes[col]; !ok {
				return storeerr.Schema("secondary index %q: range column %q is not declared in attributes", name, col)
			}
		}
		for _, col := range desc.Proj {
			if _, ok := doc.Attributes[col]; !ok {
				return storeerr.Schema("secondary index %q: proj column %q is not declared in attributes", name, col)
			}
		}
	}
	return nil
}

// synthesizeCompanion implements the eight-step companion synthesis
// procedure: start from the two synthesized columns, close the key set
// over the primary's hash and range columns, guarantee a timeuuid
// clustering column, and copy any extra projected attributes.
func synthesizeCompanion(parent Document, name string, desc RawIndexDescriptor) (*Companion, error) {
	attrs := map[string]types.AttrType{
		AttrConsistentUpTo: types.TimeUUID,
		AttrTombstone:      types.Boolean,
	}
	static := map[string]bool{AttrConsistentUpTo: true}

	parentHashType, ok := parent.Attributes[desc.Hash]
	if !ok {
		return nil, storeerr.Schema("secondary index %q: hash %q is not declared in attributes", name, desc.Hash)
	}
	attrs[desc.Hash] = parentHashType

	rng := append([]string{}, desc.Range...)

	primaryHash := parent.Index.Hash
	if _, inAttrs := attrs[primaryHash]; !inAttrs && !contains(rng, primaryHash) {
		rng = append(rng, primaryHash)
	}

	for _, col := range parent.Index.Range {
		if _, inAttrs := attrs[col]; !inAttrs && !contains(rng, col) {
			rng = append(rng, col)
		}
	}

	for _, col := range rng {
		if _, have := attrs[col]; have {
			continue
		}
		t, ok := parent.Attributes[col]
		if !ok {
			return nil, storeerr.Schema("secondary index %q: closure column %q is not declared in parent attributes", name, col)
		}
		attrs[col] = t
	}

	if !anyTimeUUID(attrs, desc.Hash, rng) {
		attrs[AttrImplicitTid] = types.TimeUUID
		rng = append(rng, AttrImplicitTid)
	}

	for _, col := range desc.Proj {
		if _, have := attrs[col]; have {
			continue
		}
		t, ok := parent.Attributes[col]
		if !ok {
			return nil, storeerr.Schema("secondary index %q: proj column %q is not declared in parent attributes", name, col)
		}
		attrs[col] = t
	}

	order := map[string]string{}
	for i, col := range desc.Range {
		if i < len(desc.Order) {
			order[col] = desc.Order[i]
		}
	}

	return &Companion{
		Name:       CompanionName(name),
		Attributes: attrs,
		Hash:       desc.Hash,
		Range:      rng,
		Order:      order,
		Static:     static,
		IndexAttrs: toSet(append([]string{desc.Hash}, rng...)),
	}, nil
}

// anyTimeUUID reports whether the companion's hash or any clustering
// (range) column is a timeuuid. The synthesized static column
// (__consistentUpTo) is always timeuuid by construction and deliberately
// excluded — the key itself needs a natural time-ordering tiebreaker,
// which is the invariant this check enforces.
func anyTimeUUID(attrs map[string]types.AttrType, hash string, rng []string) bool {
	if attrs[hash] == types.TimeUUID {
		return true
	}
	for _, col := range rng {
		if attrs[col] == types.TimeUUID {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, v := range list {
		if v == "" {
			continue
		}
		out[v] = true
	}
	return out
}
