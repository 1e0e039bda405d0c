package schema

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/storeerr"
)

const schemaKey = "schema"

// Manager loads, persists, and caches enriched schemas per keyspace. It is
// write-once per keyspace: once a schema is cached it is never invalidated,
// per spec.md §4.D/§9 (schemas are treated as immutable once created).
type Manager struct {
	driver driver.Driver

	mu    sync.RWMutex
	cache map[string]*Enriched

	group singleflight.Group
}

func NewManager(d driver.Driver) *Manager {
	return &Manager{driver: d, cache: map[string]*Enriched{}}
}

// Get returns the cached enriched schema for keyspace, loading and caching
// it on a miss. Concurrent misses for the same keyspace are coalesced
// behind a single-flight barrier; this is the optimisation spec.md §5
// calls out, not a correctness requirement (every loader computes the same
// enriched schema from the same persisted document).
func (m *Manager) Get(ctx context.Context, keyspace string) (*Enriched, error) {
	if e, ok := m.fromCache(keyspace); ok {
		return e, nil
	}

	v, err, _ := m.group.Do(keyspace, func() (any, error) {
		if e, ok := m.fromCache(keyspace); ok {
			return e, nil
		}
		e, err := m.load(ctx, keyspace)
		if err != nil {
			return nil, err
		}
		m.store(keyspace, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Enriched), nil
}

// Put forcibly caches an already-enriched schema for keyspace, used right
// after createTable so the first get/put against a brand new table never
// has to round-trip through the driver.
func (m *Manager) Put(keyspace string, e *Enriched) {
	m.store(keyspace, e)
}

func (m *Manager) fromCache(keyspace string) (*Enriched, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.cache[keyspace]
	return e, ok
}

func (m *Manager) store(keyspace string, e *Enriched) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[keyspace] = e
}

// load reads and enriches the schema document persisted in keyspace's meta
// table, returning storeerr.NotFound if no schema row exists.
func (m *Manager) load(ctx context.Context, keyspace string) (*Enriched, error) {
	rows, err := m.driver.Execute(ctx, driver.Statement{
		Query:  `SELECT value FROM "` + keyspace + `"."` + MetaFamily + `" WHERE key = ?`,
		Params: []any{schemaKey},
	})
	if err != nil {
		return nil, storeerr.Driver(err)
	}
	if len(rows) == 0 {
		return nil, storeerr.NotFound("no schema document for keyspace %q", keyspace)
	}

	raw, ok := rows[0]["value"].(string)
	if !ok {
		return nil, storeerr.SchemaWrap("schema document is not a string", nil)
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, storeerr.SchemaWrap("unable to parse persisted schema document", err)
	}
	return Enrich(doc)
}

// Persist writes doc into keyspace's meta table under the "schema" key.
// Callers are expected to call Put with the enriched form afterward.
func Persist(ctx context.Context, d driver.Driver, keyspace string, doc Document) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return storeerr.SchemaWrap("unable to encode schema document", err)
	}
	_, err = d.Execute(ctx, driver.Statement{
		Query:  `INSERT INTO "` + keyspace + `"."` + MetaFamily + `" (key, value) VALUES (?, ?)`,
		Params: []any{schemaKey, string(encoded)},
	})
	if err != nil {
		return storeerr.Driver(err)
	}
	return nil
}
