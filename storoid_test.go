package storoid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/storoid/internal/driver/drivertest"
	"github.com/wikimedia/storoid/internal/reqtypes"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/types"

	"github.com/wikimedia/storoid"
)

func schemaRequest() storoid.SchemaRequest {
	return reqtypes.SchemaRequest{
		Attributes: map[string]types.AttrType{
			"key":   types.String,
			"rev":   types.TimeUUID,
			"title": types.String,
		},
		Index: schema.RawIndex{Hash: "key", Range: []string{"rev"}},
		SecondaryIndexes: map[string]schema.RawIndexDescriptor{
			"by_title": {RawIndex: schema.RawIndex{Hash: "title"}},
		},
	}
}

func TestCreateTable_ProvisionsKeyspaceFamiliesAndSchema(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)

	err := store.CreateTable(context.Background(), "org.wikimedia", "pages", schemaRequest())
	require.NoError(t, err)

	queries := fake.Queries()
	require.NotEmpty(t, queries)
	assert.Contains(t, queries[0], "CREATE KEYSPACE")
	assert.Contains(t, queries[len(queries)-1], `"meta"`)
}

func TestDropTable_IssuesDropKeyspace(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)

	err := store.DropTable(context.Background(), "org.wikimedia", "pages")
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.Contains(t, fake.Calls[0].Query, "DROP KEYSPACE")
}

func TestPut_RequiresPriorCreateTable(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)

	_, err := store.Put(context.Background(), "org.wikimedia", "pages", storoid.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r"},
	})
	assert.Error(t, err)
}

func TestPut_FansOutAndAppliesOnNonCAS(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)
	require.NoError(t, store.CreateTable(context.Background(), "org.wikimedia", "pages", schemaRequest()))
	fake.Calls = nil

	res, err := store.Put(context.Background(), "org.wikimedia", "pages", storoid.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)
	require.Len(t, fake.Calls, 2, "primary write and its one companion fan out in a single batch")
	assert.Contains(t, fake.Calls[0].Query, "UPDATE")
	assert.Contains(t, fake.Calls[1].Query, `"i_by_title"`)
}

func TestPut_CASNotAppliedSkipsCompanionFanOut(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)
	require.NoError(t, store.CreateTable(context.Background(), "org.wikimedia", "pages", schemaRequest()))
	fake.Calls = nil
	fake.CASSet = true
	fake.CASApplied = false

	res, err := store.Put(context.Background(), "org.wikimedia", "pages", storoid.WriteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
		If:         "not exists",
	})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.Len(t, fake.Calls, 1, "a rejected CAS must not fan out to companions")
}

func TestGet_ExistsOnlySetsLimitOne(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)
	require.NoError(t, store.CreateTable(context.Background(), "org.wikimedia", "pages", schemaRequest()))
	fake.Calls = nil

	_, err := store.Get(context.Background(), "org.wikimedia", "pages", storoid.ReadRequest{
		Attributes: map[string]any{"key": "k"},
		ExistsOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.Contains(t, fake.Calls[0].Query, "LIMIT 1")
}

func TestDelete_TombstonesCompanions(t *testing.T) {
	fake := drivertest.New()
	store := storoid.New(fake)
	require.NoError(t, store.CreateTable(context.Background(), "org.wikimedia", "pages", schemaRequest()))
	fake.Calls = nil

	err := store.Delete(context.Background(), "org.wikimedia", "pages", storoid.DeleteRequest{
		Attributes: map[string]any{"key": "k", "rev": "r", "title": "t"},
	})
	require.NoError(t, err)
	require.Len(t, fake.Calls, 2)
	assert.Contains(t, fake.Calls[0].Query, "DELETE FROM")
	assert.Contains(t, fake.Calls[1].Query, `"__tombstone"`)
}
