package plan

import (
	"sort"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/predicate"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
)

// DeletePlan is the compiled output of a delete request: the primary
// row's DELETE plus one tombstone UPDATE per companion, dispatched
// together in the same best-effort batch.
type DeletePlan struct {
	Primary    driver.Statement
	Companions []driver.Statement
}

// Delete compiles a DeleteRequest against sch into a DeletePlan. Unlike
// the write planner, it never synthesizes a missing "_tid": a delete
// predicate that doesn't pin the full key deletes whatever rows match
// the compiled predicate and leaves companion rows untouched, since
// there is no key to resolve them by.
func Delete(keyspace string, sch *schema.Enriched, req reqtypes.DeleteRequest) (DeletePlan, error) {
	consistency := driver.FromRequest(req.Consistency)

	query := `DELETE FROM "` + keyspace + `"."` + schema.DataFamily + `"`
	var params []any
	if len(req.Attributes) > 0 {
		frag, err := predicate.Compile(req.Attributes)
		if err != nil {
			return DeletePlan{}, err
		}
		if frag.Query != "" {
			query += " WHERE " + frag.Query
			params = frag.Params
		}
	}

	primaryStmt := driver.Statement{
		Query:       query,
		Params:      params,
		Consistency: consistency,
		Prepared:    true,
	}

	var companions []driver.Statement
	if sch != nil {
		names := make([]string, 0, len(sch.Companions))
		for n := range sch.Companions {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, n := range names {
			companion := sch.Companions[n]
			cKeyVals, ok := exactKeyValues(companion.IndexAttrs, req.Attributes)
			if !ok {
				// The delete predicate doesn't pin this companion's full
				// key (e.g. a partial-key delete, or an implicit "_tid"
				// this request never saw): nothing to tombstone.
				continue
			}
			stmt := compileUpsert(keyspace, companion.Name, cKeyVals, map[string]any{schema.AttrTombstone: true}, false, nil, nil)
			stmt.Consistency = consistency
			stmt.Prepared = true
			companions = append(companions, stmt)
		}
	}

	return DeletePlan{Primary: primaryStmt, Companions: companions}, nil
}

// exactKeyValues resolves every name in indexAttrs strictly from values,
// never synthesizing a missing "_tid": a delete can only tombstone a
// companion row it can exactly locate.
func exactKeyValues(indexAttrs map[string]bool, values map[string]any) (map[string]any, bool) {
	out := make(map[string]any, len(indexAttrs))
	for name := range indexAttrs {
		v, ok := values[name]
		if !ok {
			return nil, false
		}
		out[name] = v
	}
	return out, true
}
