package plan

import (
	"strconv"
	"strings"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/predicate"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
)

// Get compiles a ReadRequest against keyspace into a statement. sch may be
// nil only when req.Index is empty; the statement then reads the data
// family with no schema-dependent projection expansion.
func Get(keyspace string, sch *schema.Enriched, req reqtypes.ReadRequest) (driver.Statement, error) {
	t, err := resolveTarget(sch, req.Index)
	if err != nil {
		return driver.Statement{}, err
	}

	proj := projection(t, req)

	query := "SELECT " + proj + ` FROM "` + keyspace + `"."` + t.Family + `"`
	var params []any

	if len(req.Attributes) > 0 {
		frag, err := predicate.Compile(req.Attributes)
		if err != nil {
			return driver.Statement{}, err
		}
		if frag.Query != "" {
			query += " WHERE " + frag.Query
			params = frag.Params
		}
	}

	if orderClause := orderBy(t, req.Order); orderClause != "" {
		query += " " + orderClause
	}

	if limit := limitValue(req.Limit); limit != "" {
		query += " LIMIT " + limit
	}

	return driver.Statement{
		Query:       query,
		Params:      params,
		Consistency: driver.FromRequest(req.Consistency),
		Prepared:    true,
	}, nil
}

// projection builds the SELECT list: "*" by default, a quoted
// comma-separated identifier list for an explicit string or []string
// projection, expanded to the full attribute list when ordering is
// requested without an explicit projection (the underlying engine cannot
// order a bare "*" projection), and prefixed with "distinct " when
// requested.
func projection(t target, req reqtypes.ReadRequest) string {
	var cols string
	switch p := req.Proj.(type) {
	case nil:
		if req.Order != "" && t.Attributes != nil {
			cols = quoteList(t.attributeNames())
		} else {
			cols = "*"
		}
	case string:
		cols = quoteList([]string{p})
	case []string:
		cols = quoteList(p)
	case []any:
		names := make([]string, 0, len(p))
		for _, v := range p {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		cols = quoteList(names)
	default:
		cols = "*"
	}
	if req.Distinct {
		return "distinct " + cols
	}
	return cols
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return strings.Join(quoted, ", ")
}

// orderBy compiles the ORDER BY modifier. Ordering is only valid when the
// target has a clustering column; the first clustering column is always
// the target. An order value other than asc/desc is silently dropped. If
// the target has no schema cached (no clustering columns resolvable), the
// clustering column defaults to "_tid".
func orderBy(t target, order string) string {
	dir := strings.ToLower(order)
	if dir != "asc" && dir != "desc" {
		return ""
	}
	col := schema.AttrImplicitTid
	if len(t.Range) > 0 {
		col = t.Range[0]
	} else if t.Attributes != nil {
		// schema is cached but has no clustering column: ordering is not
		// meaningful, per spec.md §4.E ("valid only when the schema has a
		// clustering column").
		return ""
	}
	return `ORDER BY "` + col + `" ` + dir
}

// limitValue returns the LIMIT clause's numeric literal, or "" if limit is
// absent or not a number.
func limitValue(limit any) string {
	switch v := limit.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.Itoa(int(v))
	default:
		return ""
	}
}
