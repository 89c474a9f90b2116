package localstore

import (
	"testing"

	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDBStore_RoundTrip(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Put("k", []byte("v1")))
	require.NoError(t, s.Put("k", []byte("v2")))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(v))

	require.NoError(t, s.Delete("k"))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLevelDBStore_OpenFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put("a", []byte("1")))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))
}

func TestJSONHelpers(t *testing.T) {
	s, err := OpenMemory()
	require.NoError(t, err)
	defer s.Close()

	var ids []string
	found, err := GetJSON(s, "ids", &ids)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, PutJSON(s, "ids", []string{"a", "b"}))
	found, err = GetJSON(s, "ids", &ids)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, ids)
}
