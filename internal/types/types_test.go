package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhysical_ScalarMapping(t *testing.T) {
	cases := map[AttrType]string{
		String:    "text",
		JSON:      "text",
		Boolean:   "boolean",
		TimeUUID:  "timeuuid",
		UUID:      "uuid",
		Timestamp: "timestamp",
		Blob:      "blob",
		Decimal:   "decimal",
		Double:    "double",
		Varint:    "varint",
	}
	for logical, physical := range cases {
		got, err := Physical(logical)
		require.NoError(t, err)
		assert.Equal(t, physical, got)
	}
}

func TestPhysical_SetVariants(t *testing.T) {
	got, err := Physical("set<string>")
	require.NoError(t, err)
	assert.Equal(t, "set<text>", got)

	got, err = Physical("set<json>")
	require.NoError(t, err)
	assert.Equal(t, "set<text>", got)
}

func TestPhysical_UnknownType(t *testing.T) {
	_, err := Physical("not-a-type")
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(String))
	assert.True(t, Valid("set<uuid>"))
	assert.False(t, Valid("set<not-a-type>"))
	assert.False(t, Valid("bogus"))
}

func TestEncodesJSON(t *testing.T) {
	assert.True(t, EncodesJSON(JSON))
	assert.True(t, EncodesJSON("set<json>"))
	assert.False(t, EncodesJSON(String))
	assert.False(t, EncodesJSON("set<string>"))
}

func TestIsSet(t *testing.T) {
	elem, ok := IsSet("set<string>")
	require.True(t, ok)
	assert.Equal(t, String, elem)

	_, ok = IsSet("string")
	assert.False(t, ok)
}
