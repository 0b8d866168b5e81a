package payment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_AddAndRecents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, s.Add("0xaaa"))
	require.NoError(t, s.Add("0xbbb"))
	require.NoError(t, s.Add("0xaaa")) // re-add moves to front, no duplicate

	recents, err := s.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaa", "0xbbb"}, recents)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Add("0xaaa"))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	recents, err := reopened.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaa"}, recents)
}

func TestFileStore_CapsRecents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)

	for i := 0; i < maxRecents+5; i++ {
		require.NoError(t, s.Add(string(rune('a'+i))))
	}

	recents, err := s.Recents()
	require.NoError(t, err)
	assert.Len(t, recents, maxRecents)
}

func TestFileStore_RejectsEmptyAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipients.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Error(t, s.Add(""))
}
