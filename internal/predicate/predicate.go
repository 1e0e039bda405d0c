// Package predicate compiles attribute-map predicates into parameterised
// WHERE fragments. User values are never interpolated into the query text.
package predicate

import (
	"sort"
	"strings"

	"github.com/wikimedia/storoid/internal/storeerr"
)

// Fragment is a compiled predicate: query text with '?' placeholders, and
// the bound values in placeholder order.
type Fragment struct {
	Query  string
	Params []any
}

// op is a comparison operator template: argc is the number of bound values
// it consumes, and tmpl emits one '?' per bound value.
type op struct {
	argc int
	tmpl func(col string) string
}

var operators = map[string]op{
	"eq": {1, func(c string) string { return c + " = ?" }},
	"lt": {1, func(c string) string { return c + " < ?" }},
	"gt": {1, func(c string) string { return c + " > ?" }},
	"le": {1, func(c string) string { return c + " <= ?" }},
	"ge": {1, func(c string) string { return c + " >= ?" }},
	"ne": {1, func(c string) string { return c + " != ?" }},
	"between": {2, func(c string) string {
		return c + " >= ? AND " + c + " <= ?"
	}},
}

// Compile turns an attribute-name -> predicate-value map into a single
// ANDed WHERE fragment. A predicate value is either a scalar (equality) or
// a single-key object keyed by one of eq/lt/gt/le/ge/ne/between
// (case-insensitive).
func Compile(pred map[string]any) (Fragment, error) {
	cols := make([]string, 0, len(pred))
	for col := range pred {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var clauses []string
	var params []any
	for _, col := range cols {
		raw := pred[col]
		quoted := `"` + col + `"`
		switch v := raw.(type) {
		case map[string]any:
			if len(v) != 1 {
				return Fragment{}, storeerr.Schema("predicate for %q must have exactly one operator key, got %d", col, len(v))
			}
			var key string
			var val any
			for k, vv := range v {
				key, val = k, vv
			}
			o, ok := operators[strings.ToLower(key)]
			if !ok {
				return Fragment{}, storeerr.Schema("unknown predicate operator %q for %q", key, col)
			}
			vals, err := operandValues(o.argc, val, col)
			if err != nil {
				return Fragment{}, err
			}
			clauses = append(clauses, o.tmpl(quoted))
			params = append(params, vals...)
		default:
			clauses = append(clauses, quoted+" = ?")
			params = append(params, raw)
		}
	}
	return Fragment{Query: strings.Join(clauses, " AND "), Params: params}, nil
}

// operandValues normalizes an operator's operand into the argc values it
// needs, erroring if a multi-valued operator (between) was not given
// exactly that many.
func operandValues(argc int, val any, col string) ([]any, error) {
	if argc == 1 {
		return []any{val}, nil
	}
	list, ok := val.([]any)
	if !ok || len(list) != argc {
		return nil, storeerr.Schema("between predicate for %q requires a %d-element array", col, argc)
	}
	return list, nil
}

// PlaceholderCount returns the number of '?' placeholders in a compiled
// fragment's query text, used by tests to assert the params/placeholder
// invariant.
func PlaceholderCount(q string) int {
	return strings.Count(q, "?")
}
