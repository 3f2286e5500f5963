package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListRoundTrip(t *testing.T) {
	list := IDList{3, 1, 2}
	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,1,2]", value)

	var decoded IDList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
}

func TestIDListScanToleratesCorruptData(t *testing.T) {
	// Malformed stored state must read as empty, not fail.
	for _, raw := range []interface{}{"not json", []byte("{broken"), nil, 42} {
		var list IDList
		require.NoError(t, list.Scan(raw))
		assert.Empty(t, list)
	}
}

func TestIDListAddIsIdempotent(t *testing.T) {
	var list IDList
	assert.True(t, list.Add(5))
	assert.False(t, list.Add(5))
	assert.Equal(t, IDList{5}, list)
	assert.True(t, list.Contains(5))
	assert.False(t, list.Contains(6))
}
