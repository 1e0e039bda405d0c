// Package driver defines the narrow contract storoid's core needs from a
// database driver: execute a parameterised statement, or a batch of them.
// Connection pooling, prepared-statement caching, and retry/backoff policy
// are the concrete adapter's concern, not the core's.
package driver

import "context"

// Consistency is the tunable read/write consistency level a statement is
// dispatched with.
type Consistency string

const (
	One         Consistency = "ONE"
	LocalQuorum Consistency = "LOCAL_QUORUM"
	All         Consistency = "ALL"
)

// FromRequest maps the request-level consistency strings storoid accepts
// ("all", "localQuorum") onto a Consistency, defaulting to One for any
// other value or absence, per the read planner's consistency mapping.
func FromRequest(v string) Consistency {
	switch v {
	case "all":
		return All
	case "localQuorum":
		return LocalQuorum
	default:
		return One
	}
}

// Statement is a single parameterised wire statement. Query never contains
// interpolated user values; Params supplies them positionally for each '?'.
type Statement struct {
	Query       string
	Params      []any
	Consistency Consistency
	Prepared    bool
}

// Driver is the external collaborator storoid's planners compile
// statements for. Implementations own connection pooling and retries.
type Driver interface {
	// Execute runs a single statement and returns its result rows. For a
	// statement carrying a lightweight-transaction "IF" clause, the first
	// returned row is the driver's "[applied]" row.
	Execute(ctx context.Context, stmt Statement) ([]map[string]any, error)

	// Batch dispatches multiple statements as a single best-effort unit.
	// Used for primary+companion write/delete fan-out.
	Batch(ctx context.Context, stmts []Statement) error

	// ExecuteCAS runs a single statement carrying an "IF"/"IF NOT EXISTS"
	// guard and reports whether it applied, alongside the existing row the
	// engine returns when it did not.
	ExecuteCAS(ctx context.Context, stmt Statement) (applied bool, existing map[string]any, err error)
}
