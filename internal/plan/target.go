// Package plan compiles storoid's declarative read/write/delete/DDL
// requests into parameterised driver statements, per spec.md §4.E-§4.H.
package plan

import (
	"sort"

	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/storeerr"
	"github.com/wikimedia/storoid/internal/types"
)

// target bundles the pieces of a resolved schema a planner needs,
// independent of whether it resolved to the primary table or a secondary
// index companion.
type target struct {
	Family     string
	Attributes map[string]types.AttrType
	Hash       string
	Range      []string
	IndexAttrs map[string]bool
}

// resolveTarget picks the primary table or a named secondary-index
// companion out of sch. sch may be nil (no schema cached for the
// keyspace); index must be empty in that case, and the target is the data
// family with no attributes or key columns.
func resolveTarget(sch *schema.Enriched, index string) (target, error) {
	if index == "" {
		if sch == nil {
			return target{Family: schema.DataFamily}, nil
		}
		return target{
			Family:     schema.DataFamily,
			Attributes: sch.Attributes,
			Hash:       sch.Index.Hash,
			Range:      sch.Index.Range,
			IndexAttrs: sch.IndexAttrs,
		}, nil
	}
	if sch == nil {
		return target{}, storeerr.Schema("no schema cached; cannot resolve index %q", index)
	}
	companion, ok := sch.Companions[index]
	if !ok {
		return target{}, storeerr.Schema("unknown secondary index %q", index)
	}
	return target{
		Family:     companion.Name,
		Attributes: companion.Attributes,
		Hash:       companion.Hash,
		Range:      companion.Range,
		IndexAttrs: companion.IndexAttrs,
	}, nil
}

// attributeNames returns the sorted attribute names of a target, used to
// expand "*" into an explicit projection (the ORDER BY workaround).
func (t target) attributeNames() []string {
	names := make([]string, 0, len(t.Attributes))
	for n := range t.Attributes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
