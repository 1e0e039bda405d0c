package plan

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wikimedia/storoid/internal/driver"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/storeerr"
	"github.com/wikimedia/storoid/internal/types"
)

const defaultStorageClass = "SimpleStrategy"
const defaultReplicationFactor = 3

// CreateTablePlan is the compiled output of createTable: the keyspace
// statement, the data and meta column-family statements (issued
// concurrently by the caller), one statement per companion, and the
// schema document to persist once the column families exist.
type CreateTablePlan struct {
	Keyspace   driver.Statement
	Data       driver.Statement
	Meta       driver.Statement
	Companions []driver.Statement
	Document   schema.Document
}

// CreateTable compiles a createTable request into a CreateTablePlan.
// enriched must already be validated and enriched (internal/schema.Enrich)
// by the caller; CreateTable only composes DDL from it.
func CreateTable(keyspace, storageClass string, replicationFactor int, enriched *schema.Enriched) (CreateTablePlan, error) {
	if storageClass == "" {
		storageClass = defaultStorageClass
	}
	if replicationFactor == 0 {
		replicationFactor = defaultReplicationFactor
	}

	keyspaceStmt := driver.Statement{
		Query: `CREATE KEYSPACE "` + keyspace + `" WITH REPLICATION = { 'class': '` +
			storageClass + `', 'replication_factor': ` + strconv.Itoa(replicationFactor) + ` }`,
	}

	dataStmt, err := createColumnFamily(keyspace, schema.DataFamily, enriched.Attributes,
		enriched.Index.Hash, enriched.Index.Range, enriched.Index.Static, orderMap(enriched.Index.Range, enriched.Index.Order))
	if err != nil {
		return CreateTablePlan{}, err
	}

	metaStmt := driver.Statement{
		Query: `CREATE TABLE "` + keyspace + `"."` + schema.MetaFamily +
			`" (key text, value text, PRIMARY KEY (key)) WITH compaction = { 'class' : 'LeveledCompactionStrategy' }`,
	}

	names := make([]string, 0, len(enriched.Companions))
	for n := range enriched.Companions {
		names = append(names, n)
	}
	sort.Strings(names)

	companions := make([]driver.Statement, 0, len(names))
	for _, n := range names {
		c := enriched.Companions[n]
		order := map[string]string{}
		for _, col := range c.Range {
			if dir, ok := c.Order[col]; ok {
				order[col] = dir
			}
		}
		static := make([]string, 0, len(c.Static))
		for col := range c.Static {
			static = append(static, col)
		}
		stmt, err := createColumnFamily(keyspace, c.Name, c.Attributes, c.Hash, c.Range, static, order)
		if err != nil {
			return CreateTablePlan{}, err
		}
		companions = append(companions, stmt)
	}

	return CreateTablePlan{
		Keyspace:   keyspaceStmt,
		Data:       dataStmt,
		Meta:       metaStmt,
		Companions: companions,
		Document:   enriched.Document,
	}, nil
}

// DropTable compiles a dropTable request: a single keyspace drop, since
// dropping the keyspace removes the data, meta, and every companion
// column family with it.
func DropTable(keyspace string) driver.Statement {
	return driver.Statement{Query: `DROP KEYSPACE "` + keyspace + `"`}
}

// createColumnFamily composes a single CREATE TABLE statement: one typed
// column per attribute, STATIC on the columns named in static, a
// PRIMARY KEY closing over hash and the clustering list, a leveled
// compaction strategy, and an optional CLUSTERING ORDER BY clause.
func createColumnFamily(keyspace, family string, attrs map[string]types.AttrType, hash string, clustering, static []string, order map[string]string) (driver.Statement, error) {
	cols := make([]string, 0, len(attrs))
	for name := range attrs {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	staticSet := make(map[string]bool, len(static))
	for _, s := range static {
		staticSet[s] = true
	}
	defs := make([]string, 0, len(cols))
	for _, name := range cols {
		physical, err := types.Physical(attrs[name])
		if err != nil {
			return driver.Statement{}, storeerr.Schema("column %q: %v", name, err)
		}
		def := `"` + name + `" ` + physical
		if staticSet[name] {
			def += " static"
		}
		defs = append(defs, def)
	}

	keyCols := append([]string{hash}, clustering...)
	quotedKeys := make([]string, len(keyCols))
	for i, c := range keyCols {
		quotedKeys[i] = `"` + c + `"`
	}
	defs = append(defs, "PRIMARY KEY ("+strings.Join(quotedKeys, ", ")+")")

	query := `CREATE TABLE "` + keyspace + `"."` + family + `" (` + strings.Join(defs, ", ") +
		`) WITH compaction = { 'class' : 'LeveledCompactionStrategy' }`

	if clause := clusteringOrderClause(clustering, order); clause != "" {
		query += " AND " + clause
	}

	return driver.Statement{Query: query}, nil
}

// clusteringOrderClause builds "CLUSTERING ORDER BY (col dir, …)" from the
// clustering columns that have a valid asc/desc direction in order;
// columns with no entry or an invalid direction are silently dropped.
func clusteringOrderClause(clustering []string, order map[string]string) string {
	var parts []string
	for _, col := range clustering {
		dir := strings.ToLower(order[col])
		if dir != "asc" && dir != "desc" {
			continue
		}
		parts = append(parts, `"`+col+`" `+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return "CLUSTERING ORDER BY (" + strings.Join(parts, ", ") + ")"
}

// orderMap zips a range column list against its parallel order directions,
// matching the raw index descriptor's positional convention.
func orderMap(clustering, order []string) map[string]string {
	out := make(map[string]string, len(order))
	for i, col := range clustering {
		if i < len(order) {
			out[col] = order[i]
		}
	}
	return out
}
