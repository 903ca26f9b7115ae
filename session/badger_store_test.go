package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStorage(t *testing.T) *BadgerStorage {
	t.Helper()
	s, err := NewBadgerStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStorageRoundTrip(t *testing.T) {
	s := newTestBadgerStorage(t)

	require.NoError(t, s.Set("sid", []byte("alice"), 0))
	val, err := s.Get("sid")
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), val)

	require.NoError(t, s.Delete("sid"))
	val, err = s.Get("sid")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBadgerStorageMissingKey(t *testing.T) {
	s := newTestBadgerStorage(t)
	val, err := s.Get("never-set")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBadgerStorageExpiry(t *testing.T) {
	s := newTestBadgerStorage(t)
	require.NoError(t, s.Set("sid", []byte("alice"), 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)
	val, err := s.Get("sid")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBadgerStorageReset(t *testing.T) {
	s := newTestBadgerStorage(t)
	require.NoError(t, s.Set("a", []byte("1"), 0))
	require.NoError(t, s.Set("b", []byte("2"), 0))
	require.NoError(t, s.Reset())
	val, err := s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, val)
}
