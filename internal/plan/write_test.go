package plan_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/storoid/internal/plan"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/types"
)

func TestWrite_InsertWhenNoNonKeyAttributes(t *testing.T) {
	// No secondary index here: a companion keyed on "title" would reject a
	// write that omits "title" as a missing index attribute.
	doc := schema.Document{
		Attributes: map[string]types.AttrType{
			"key":   types.String,
			"rev":   types.TimeUUID,
			"title": types.String,
		},
		Index: schema.RawIndex{Hash: "key", Range: []string{"rev"}},
	}
	enriched, err := schema.Enrich(doc)
	require.NoError(t, err)
	key := uuid.NewString()
	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": key, "rev": "r"},
	})
	require.NoError(t, err)
	assert.Contains(t, wp.Primary.Query, "INSERT INTO")
	assert.Contains(t, wp.Primary.Params, key)
	assert.False(t, wp.CAS)
}

func TestWrite_UpdateWhenNonKeyAttributesPresent(t *testing.T) {
	enriched := enrichedFixture(t)
	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
	})
	require.NoError(t, err)
	assert.Contains(t, wp.Primary.Query, "UPDATE")
	assert.Contains(t, wp.Primary.Query, `SET "title" = ?`)
	assert.Contains(t, wp.Primary.Query, `WHERE "key" = ? AND "rev" = ?`)
}

func TestWrite_IfNotExistsForcesInsert(t *testing.T) {
	enriched := enrichedFixture(t)
	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
		If:         "not exists",
	})
	require.NoError(t, err)
	assert.Contains(t, wp.Primary.Query, "INSERT INTO")
	assert.Contains(t, wp.Primary.Query, "IF NOT EXISTS")
	assert.True(t, wp.CAS)
}

func TestWrite_IfPredicateCompilesCASClause(t *testing.T) {
	enriched := enrichedFixture(t)
	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "new"},
		If:         map[string]any{"title": "old"},
	})
	require.NoError(t, err)
	assert.Contains(t, wp.Primary.Query, `IF "title" = ?`)
	assert.True(t, wp.CAS)
}

func TestWrite_FansOutToCompanions(t *testing.T) {
	enriched := enrichedFixture(t)
	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
	})
	require.NoError(t, err)
	require.Len(t, wp.Companions, 1)
	assert.Contains(t, wp.Companions[0].Query, `"ks"."i_by_title"`)
}

func TestWrite_JSONEncodesObjectAttributes(t *testing.T) {
	// "body" is declared as the json logical type, so its value must be
	// JSON-encoded before binding; "title" stays a plain string and must
	// not be.
	doc := schema.Document{
		Attributes: map[string]types.AttrType{
			"key":   types.String,
			"rev":   types.TimeUUID,
			"title": types.String,
			"body":  types.JSON,
		},
		Index: schema.RawIndex{Hash: "key", Range: []string{"rev"}},
	}
	enriched, err := schema.Enrich(doc)
	require.NoError(t, err)

	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{
			"key":   "k",
			"rev":   "r",
			"title": "plain",
			"body":  map[string]any{"nested": "value"},
		},
	})
	require.NoError(t, err)
	found := false
	for _, p := range wp.Primary.Params {
		if s, ok := p.(string); ok && s == `{"nested":"value"}` {
			found = true
		}
	}
	assert.True(t, found, "expected JSON-encoded object among params: %v", wp.Primary.Params)
	assert.Contains(t, wp.Primary.Params, "plain", "plain string attribute must not be JSON re-encoded")
}

func TestWrite_MissingKeyAttributeErrors(t *testing.T) {
	enriched := enrichedFixture(t)
	_, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k"},
	})
	assert.Error(t, err)
}

func TestWrite_SynthesizesImplicitTidKey(t *testing.T) {
	// Neither the primary key ("key", "rev") nor "title" is a timeuuid, so
	// the companion must append an implicit "_tid" clustering column.
	doc := schema.Document{
		Attributes: map[string]types.AttrType{
			"key":   types.String,
			"rev":   types.Varint,
			"title": types.String,
		},
		Index: schema.RawIndex{Hash: "key", Range: []string{"rev"}},
		SecondaryIndexes: map[string]schema.RawIndexDescriptor{
			"by_title": {RawIndex: schema.RawIndex{Hash: "title"}},
		},
	}
	enriched, err := schema.Enrich(doc)
	require.NoError(t, err)

	wp, err := plan.Write("ks", enriched, reqtypes.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
	})
	require.NoError(t, err)
	require.Len(t, wp.Companions, 1)
	assert.Contains(t, wp.Companions[0].Query, `"_tid"`)
}
