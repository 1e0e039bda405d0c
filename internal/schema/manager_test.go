package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/storoid/internal/driver/drivertest"
	"github.com/wikimedia/storoid/internal/schema"
	"github.com/wikimedia/storoid/internal/storeerr"
	"github.com/wikimedia/storoid/internal/types"
)

func TestManager_GetNotFound(t *testing.T) {
	fake := drivertest.New()
	m := schema.NewManager(fake)

	_, err := m.Get(context.Background(), "ks")
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindNotFound))
}

func TestManager_GetLoadsAndCaches(t *testing.T) {
	fake := drivertest.New()
	fake.Rows = [][]map[string]any{
		{{"value": `{"attributes":{"key":"string"},"index":{"hash":"key"}}`}},
	}
	m := schema.NewManager(fake)

	enriched, err := m.Get(context.Background(), "ks")
	require.NoError(t, err)
	assert.Equal(t, types.String, enriched.Attributes["key"])

	// Second call must hit the cache, not the driver again.
	again, err := m.Get(context.Background(), "ks")
	require.NoError(t, err)
	assert.Same(t, enriched, again)
	assert.Len(t, fake.Calls, 1)
}

func TestManager_Put(t *testing.T) {
	fake := drivertest.New()
	m := schema.NewManager(fake)
	doc := schema.Document{
		Attributes: map[string]types.AttrType{"key": types.String},
		Index:      schema.RawIndex{Hash: "key"},
	}
	enriched, err := schema.Enrich(doc)
	require.NoError(t, err)

	m.Put("ks", enriched)
	got, err := m.Get(context.Background(), "ks")
	require.NoError(t, err)
	assert.Same(t, enriched, got)
	assert.Empty(t, fake.Calls)
}

func TestPersist(t *testing.T) {
	fake := drivertest.New()
	doc := schema.Document{
		Attributes: map[string]types.AttrType{"key": types.String},
		Index:      schema.RawIndex{Hash: "key"},
	}
	err := schema.Persist(context.Background(), fake, "ks", doc)
	require.NoError(t, err)
	require.Len(t, fake.Calls, 1)
	assert.Contains(t, fake.Calls[0].Query, `"ks"."meta"`)
}
