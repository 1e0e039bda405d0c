// Package drivertest provides an in-memory fake of driver.Driver for unit
// tests of the schema manager and planners, so they never require a live
// cluster.
package drivertest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/wikimedia/storoid/internal/driver"
)

// Fake does not parse CQL and stores no rows: it logs every
// Execute/ExecuteCAS/Batch call in Calls, returns pre-seeded Rows for
// select statements, and lets tests assert on the recorded calls.
type Fake struct {
	mu    sync.Mutex
	Calls []driver.Statement

	// Rows, if set, is returned (in order) by the next N Execute calls
	// whose Query starts with a `select` (case-insensitive), one slice
	// per call; calls beyond len(Rows) get nil.
	Rows [][]map[string]any
	next int

	// CASApplied controls the ExecuteCAS return value of every call while
	// CASSet is true; with CASSet false, ExecuteCAS always reports applied.
	CASApplied bool
	CASSet     bool
	CASRow     map[string]any

	Err error
}

var _ driver.Driver = (*Fake)(nil)

func New() *Fake {
	return &Fake{CASApplied: true}
}

func (f *Fake) Execute(_ context.Context, stmt driver.Statement) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, stmt)
	if f.Err != nil {
		return nil, f.Err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(stmt.Query)), "select") {
		return nil, nil
	}
	if f.next < len(f.Rows) {
		rows := f.Rows[f.next]
		f.next++
		return rows, nil
	}
	return nil, nil
}

func (f *Fake) ExecuteCAS(_ context.Context, stmt driver.Statement) (bool, map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, stmt)
	if f.Err != nil {
		return false, nil, f.Err
	}
	applied := f.CASApplied
	if !f.CASSet {
		applied = true
	}
	if applied {
		return true, nil, nil
	}
	return false, f.CASRow, nil
}

func (f *Fake) Batch(_ context.Context, stmts []driver.Statement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, stmts...)
	return f.Err
}

// Queries returns the query text of every recorded call, for assertions
// against the planners' compiled output.
func (f *Fake) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Query
	}
	return out
}

// Targets returns the sorted set of keyspace-qualified tables every
// recorded call addressed (e.g. `"ks"."data"`, `"ks"."i_by_rev"`), useful for
// asserting fan-out shape without depending on statement order.
func (f *Fake) Targets() []string {
	seen := map[string]bool{}
	for _, q := range f.Queries() {
		fields := strings.Fields(q)
		for i, tok := range fields {
			up := strings.ToUpper(tok)
			if up == "INTO" || up == "FROM" || up == "UPDATE" {
				if i+1 < len(fields) {
					seen[strings.TrimSuffix(fields[i+1], "(")] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
