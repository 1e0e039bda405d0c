package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/storoid/internal/storeerr"
)

func TestCompile_EqualityAndBetween(t *testing.T) {
	frag, err := Compile(map[string]any{
		"key": "foo",
		"ts":  map[string]any{"between": []any{1, 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, `"key" = ? AND "ts" >= ? AND "ts" <= ?`, frag.Query)
	assert.Equal(t, []any{"foo", 1, 2}, frag.Params)
	assert.Equal(t, PlaceholderCount(frag.Query), len(frag.Params))
}

func TestCompile_AlphabeticallySortedColumns(t *testing.T) {
	frag, err := Compile(map[string]any{
		"zeta":  1,
		"alpha": 2,
		"mid":   3,
	})
	require.NoError(t, err)
	assert.Equal(t, `"alpha" = ? AND "mid" = ? AND "zeta" = ?`, frag.Query)
	assert.Equal(t, []any{2, 3, 1}, frag.Params)
}

func TestCompile_Deterministic(t *testing.T) {
	pred := map[string]any{"a": 1, "b": 2, "c": 3, "d": 4}
	first, err := Compile(pred)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Compile(pred)
		require.NoError(t, err)
		assert.Equal(t, first.Query, again.Query)
		assert.Equal(t, first.Params, again.Params)
	}
}

func TestCompile_AllComparisonOperators(t *testing.T) {
	for op, symbol := range map[string]string{
		"eq": "=", "lt": "<", "gt": ">", "le": "<=", "ge": ">=", "ne": "!=",
	} {
		frag, err := Compile(map[string]any{"n": map[string]any{op: 5}})
		require.NoError(t, err)
		assert.Equal(t, `"n" `+symbol+` ?`, frag.Query)
		assert.Equal(t, []any{5}, frag.Params)
	}
}

func TestCompile_OperatorCaseInsensitive(t *testing.T) {
	frag, err := Compile(map[string]any{"n": map[string]any{"GT": 5}})
	require.NoError(t, err)
	assert.Equal(t, `"n" > ?`, frag.Query)
}

func TestCompile_UnknownOperator(t *testing.T) {
	_, err := Compile(map[string]any{"n": map[string]any{"bogus": 5}})
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindSchema))
}

func TestCompile_MultipleOperatorKeysRejected(t *testing.T) {
	_, err := Compile(map[string]any{"n": map[string]any{"gt": 1, "lt": 2}})
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindSchema))
}

func TestCompile_BetweenWrongArity(t *testing.T) {
	_, err := Compile(map[string]any{"n": map[string]any{"between": []any{1}}})
	require.Error(t, err)
	assert.True(t, storeerr.Is(err, storeerr.KindSchema))
}

func TestCompile_Empty(t *testing.T) {
	frag, err := Compile(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "", frag.Query)
	assert.Empty(t, frag.Params)
}
