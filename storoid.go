// Package storoid is a document store layered over a wide-column
// clustered database: each (reverseDomain, table) pair gets its own
// keyspace, with a primary "data" table, a "meta" table holding the
// persisted schema document, and one companion table per secondary
// index.
package storoid

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/name"
	"github.com/wikimedia/storoid/internal/plan"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/storeerr"
)

// Re-exported request/response shapes, so callers never import
// internal/reqtypes directly.
type (
	SchemaRequest = reqtypes.SchemaRequest
	ReadRequest   = reqtypes.ReadRequest
	GetResult     = reqtypes.GetResult
	WriteRequest  = reqtypes.WriteRequest
	PutResult     = reqtypes.PutResult
	DeleteRequest = reqtypes.DeleteRequest
)

// Store is the entry point for every storoid operation. A Store is safe
// for concurrent use by multiple goroutines.
type Store struct {
	driver  driver.Driver
	schemas *schema.Manager
}

// Option configures a Store at construction time.
type Option func(*Store)

// New builds a Store backed by d.
func New(d driver.Driver, opts ...Option) *Store {
	s := &Store{driver: d, schemas: schema.NewManager(d)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// keyspace derives the physical keyspace name for (reverseDomain, table).
func keyspace(reverseDomain, table string) string {
	return name.Encode(reverseDomain, table)
}

// CreateTable provisions a new keyspace for (reverseDomain, table): the
// keyspace itself, the data and meta column families, one companion per
// secondary index, and the persisted schema document — in that order,
// per the table's four-state creation lifecycle.
func (s *Store) CreateTable(ctx context.Context, reverseDomain, table string, req SchemaRequest) error {
	doc := req.Document()
	enriched, err := schema.Enrich(doc)
	if err != nil {
		return err
	}

	ks := keyspace(reverseDomain, table)
	ddl, err := plan.CreateTable(ks, req.StorageClass, req.ReplicationFactor, enriched)
	if err != nil {
		return err
	}

	if _, err := s.driver.Execute(ctx, ddl.Keyspace); err != nil {
		return storeerr.Driver(err)
	}

	// CREATE TABLE is DDL, not DML, and cannot ride inside a CQL BATCH
	// alongside the other column families; dispatch it as concurrent
	// Execute calls instead, per spec.md §4.H step 3.
	familyStmts := append([]driver.Statement{ddl.Data, ddl.Meta}, ddl.Companions...)
	g, gctx := errgroup.WithContext(ctx)
	for _, stmt := range familyStmts {
		stmt := stmt
		g.Go(func() error {
			_, err := s.driver.Execute(gctx, stmt)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return storeerr.Driver(err)
	}

	if err := schema.Persist(ctx, s.driver, ks, ddl.Document); err != nil {
		return err
	}
	s.schemas.Put(ks, enriched)
	return nil
}

// DropTable removes the keyspace backing (reverseDomain, table), along
// with its data, meta, and companion column families.
func (s *Store) DropTable(ctx context.Context, reverseDomain, table string) error {
	ks := keyspace(reverseDomain, table)
	if _, err := s.driver.Execute(ctx, plan.DropTable(ks)); err != nil {
		return storeerr.Driver(err)
	}
	return nil
}

// Get reads rows for (reverseDomain, table) matching req. When a schema is
// cached, columns not declared in the target table's attributes (primary
// or companion) are removed from each returned row.
func (s *Store) Get(ctx context.Context, reverseDomain, table string, req ReadRequest) (GetResult, error) {
	req.Table = table
	ks := keyspace(reverseDomain, table)

	enriched, err := s.schemaFor(ctx, ks, req.Index)
	if err != nil {
		return GetResult{}, err
	}

	if req.ExistsOnly {
		req.Limit = 1
	}

	stmt, err := plan.Get(ks, enriched, req)
	if err != nil {
		return GetResult{}, err
	}

	rows, err := s.driver.Execute(ctx, stmt)
	if err != nil {
		return GetResult{}, storeerr.Driver(err)
	}
	if enriched != nil {
		attrs := enriched.Attributes
		if c, ok := enriched.Companions[req.Index]; ok {
			attrs = c.Attributes
		}
		for _, row := range rows {
			for col := range row {
				if _, ok := attrs[col]; !ok {
					delete(row, col)
				}
			}
		}
	}
	return GetResult{Count: len(rows), Items: rows}, nil
}

// Put writes a row into (reverseDomain, table), fanning the write out to
// every secondary-index companion in the same batch. When req.If carries
// a lightweight-transaction guard, the primary statement runs alone via
// ExecuteCAS, PutResult.Applied reports whether it applied, and the
// companions follow in a separate batch only when it did.
func (s *Store) Put(ctx context.Context, reverseDomain, table string, req WriteRequest) (PutResult, error) {
	req.Table = table
	ks := keyspace(reverseDomain, table)

	enriched, err := s.schemaFor(ctx, ks, "")
	if err != nil {
		return PutResult{}, err
	}
	if enriched == nil {
		return PutResult{}, storeerr.Schema("table %q has no schema; call CreateTable first", table)
	}

	wp, err := plan.Write(ks, enriched, req)
	if err != nil {
		return PutResult{}, err
	}

	if wp.CAS {
		applied, _, err := s.driver.ExecuteCAS(ctx, wp.Primary)
		if err != nil {
			return PutResult{}, storeerr.Driver(err)
		}
		if applied && len(wp.Companions) > 0 {
			if err := s.driver.Batch(ctx, wp.Companions); err != nil {
				return PutResult{}, storeerr.Driver(err)
			}
		}
		return PutResult{Status: 201, Applied: applied}, nil
	}

	stmts := append([]driver.Statement{wp.Primary}, wp.Companions...)
	if err := s.driver.Batch(ctx, stmts); err != nil {
		return PutResult{}, storeerr.Driver(err)
	}
	return PutResult{Status: 201, Applied: true}, nil
}

// Delete removes a row from (reverseDomain, table), tombstoning the
// corresponding row in every secondary-index companion whose full key
// the delete predicate pins.
func (s *Store) Delete(ctx context.Context, reverseDomain, table string, req DeleteRequest) error {
	req.Table = table
	ks := keyspace(reverseDomain, table)

	enriched, err := s.schemaFor(ctx, ks, "")
	if err != nil {
		return err
	}

	dp, err := plan.Delete(ks, enriched, req)
	if err != nil {
		return err
	}

	stmts := append([]driver.Statement{dp.Primary}, dp.Companions...)
	if err := s.driver.Batch(ctx, stmts); err != nil {
		return storeerr.Driver(err)
	}
	return nil
}

// schemaFor loads and caches ks's enriched schema. When no schema document
// exists and index is empty, it returns a nil schema and no error: Get and
// Delete then proceed against the data family without a schema, while Put
// rejects the nil schema.
func (s *Store) schemaFor(ctx context.Context, ks, index string) (*schema.Enriched, error) {
	enriched, err := s.schemas.Get(ctx, ks)
	if err != nil {
		if storeerr.Is(err, storeerr.KindNotFound) && index == "" {
			return nil, nil
		}
		return nil, err
	}
	return enriched, nil
}
