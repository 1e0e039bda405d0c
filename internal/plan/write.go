package plan

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/predicate"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/storeerr"
	"github.com/wikimedia/storoid/internal/types"
)

// WritePlan is the compiled output of a put request: the primary
// statement (dispatched alone via ExecuteCAS when CAS is true, otherwise
// batched together with Companions), and one companion statement per
// secondary index.
type WritePlan struct {
	Primary    driver.Statement
	CAS        bool
	Companions []driver.Statement
}

const notExists = "not exists"

// Write compiles a WriteRequest against sch into a WritePlan.
func Write(keyspace string, sch *schema.Enriched, req reqtypes.WriteRequest) (WritePlan, error) {
	primaryTarget := target{
		Family:     schema.DataFamily,
		Attributes: sch.Attributes,
		Hash:       sch.Index.Hash,
		Range:      sch.Index.Range,
		IndexAttrs: sch.IndexAttrs,
	}

	keyVals, err := resolveKeyValues(primaryTarget.IndexAttrs, req.Attributes)
	if err != nil {
		return WritePlan{}, err
	}

	nonKeyVals := map[string]any{}
	for attr, v := range req.Attributes {
		if primaryTarget.IndexAttrs[attr] {
			continue
		}
		nonKeyVals[attr] = encodeValue(primaryTarget.Attributes[attr], v)
	}

	forceInsert, ifPred, err := parseIf(req.If)
	if err != nil {
		return WritePlan{}, err
	}
	casRequested := req.If != nil

	primaryStmt := compileUpsert(keyspace, schema.DataFamily, keyVals, nonKeyVals, forceInsert, ifPred, req.TTL)
	primaryStmt.Consistency = driver.FromRequest(req.Consistency)
	primaryStmt.Prepared = true

	combined := map[string]any{}
	for k, v := range keyVals {
		combined[k] = v
	}
	for k, v := range nonKeyVals {
		combined[k] = v
	}

	var companions []driver.Statement
	// Sort companion names for deterministic fan-out ordering.
	names := make([]string, 0, len(sch.Companions))
	for n := range sch.Companions {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		companion := sch.Companions[n]
		cKeyVals, err := resolveKeyValues(companion.IndexAttrs, combined)
		if err != nil {
			return WritePlan{}, err
		}
		cNonKeyVals := map[string]any{}
		for attr := range companion.Attributes {
			if companion.IndexAttrs[attr] || attr == schema.AttrConsistentUpTo || attr == schema.AttrTombstone {
				continue
			}
			if v, ok := combined[attr]; ok {
				cNonKeyVals[attr] = v
			}
		}
		stmt := compileUpsert(keyspace, companion.Name, cKeyVals, cNonKeyVals, len(cNonKeyVals) == 0, nil, req.TTL)
		stmt.Consistency = primaryStmt.Consistency
		stmt.Prepared = true
		companions = append(companions, stmt)
	}

	return WritePlan{Primary: primaryStmt, CAS: casRequested, Companions: companions}, nil
}

// resolveKeyValues resolves every name in indexAttrs from values, synthesizing
// a fresh time-based UUID for a missing "_tid" and failing for any other
// missing key attribute.
func resolveKeyValues(indexAttrs map[string]bool, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(indexAttrs))
	for name := range indexAttrs {
		if v, ok := values[name]; ok {
			out[name] = v
			continue
		}
		if name == schema.AttrImplicitTid {
			out[name] = driver.NewTimeUUID()
			continue
		}
		return nil, storeerr.Schema("Index attribute %s missing", name)
	}
	return out, nil
}

// encodeValue JSON-encodes v when its runtime shape is an object
// (map[string]any), or when attrType's physical column stores JSON text
// (the "json" logical type and set<json> elements).
func encodeValue(attrType types.AttrType, v any) any {
	if _, isObject := v.(map[string]any); !isObject && !types.EncodesJSON(attrType) {
		return v
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return string(encoded)
}

// parseIf interprets the `if` field: the literal (case/whitespace
// insensitive) string "not exists" forces an INSERT ... IF NOT EXISTS;
// any other value is compiled as a CAS predicate fragment via the
// predicate compiler.
func parseIf(ifVal any) (forceInsert bool, pred *predicate.Fragment, err error) {
	if ifVal == nil {
		return false, nil, nil
	}
	if s, ok := ifVal.(string); ok {
		normalized := strings.ToLower(strings.Join(strings.Fields(s), " "))
		if normalized == notExists {
			return true, nil, nil
		}
		return false, nil, storeerr.Schema("invalid if clause %q", s)
	}
	m, ok := ifVal.(map[string]any)
	if !ok {
		return false, nil, storeerr.Schema("invalid if clause shape")
	}
	frag, err := predicate.Compile(m)
	if err != nil {
		return false, nil, err
	}
	return false, &frag, nil
}

// compileUpsert builds the INSERT-or-UPDATE statement for one table
// (primary or a companion) from its split key/non-key values.
func compileUpsert(keyspace, family string, keyVals, nonKeyVals map[string]any, forceInsert bool, ifPred *predicate.Fragment, ttl *int) driver.Statement {
	table := `"` + keyspace + `"."` + family + `"`

	if forceInsert || len(nonKeyVals) == 0 {
		keys := sortedKeys(keyVals)
		nonKeys := sortedKeys(nonKeyVals)
		cols := append(append([]string{}, keys...), nonKeys...)
		params := make([]any, 0, len(cols))
		for _, c := range keys {
			params = append(params, keyVals[c])
		}
		for _, c := range nonKeys {
			params = append(params, nonKeyVals[c])
		}

		query := "INSERT INTO " + table + " (" + quoteList(cols) + ") VALUES (" + placeholders(len(cols)) + ")"
		if ttl != nil {
			query += " USING TTL ?"
			params = append(params, *ttl)
		}
		if forceInsert {
			query += " IF NOT EXISTS"
		} else if ifPred != nil && ifPred.Query != "" {
			query += " IF " + ifPred.Query
			params = append(params, ifPred.Params...)
		}
		return driver.Statement{Query: query, Params: params}
	}

	nonKeys := sortedKeys(nonKeyVals)
	keys := sortedKeys(keyVals)
	setClauses := make([]string, len(nonKeys))
	params := make([]any, 0, len(nonKeys)+len(keys)+1)

	query := "UPDATE " + table
	if ttl != nil {
		query += " USING TTL ?"
		params = append(params, *ttl)
	}
	for i, c := range nonKeys {
		setClauses[i] = `"` + c + `" = ?`
		params = append(params, nonKeyVals[c])
	}
	query += " SET " + strings.Join(setClauses, ", ") + " WHERE "

	whereClauses := make([]string, len(keys))
	for i, c := range keys {
		whereClauses[i] = `"` + c + `" = ?`
		params = append(params, keyVals[c])
	}
	query += strings.Join(whereClauses, " AND ")

	if ifPred != nil && ifPred.Query != "" {
		query += " IF " + ifPred.Query
		params = append(params, ifPred.Params...)
	}
	return driver.Statement{Query: query, Params: params}
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ", ")
}
