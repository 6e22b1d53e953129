package trie

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPredictiveSearch(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("わたし\xff私"))
	b.Add([]byte("わたし\xff渡し"))
	b.Add([]byte("わた\xff綿"))
	b.Add([]byte("なかの\xff中野"))
	tr := b.Build()

	require.Equal(t, 4, tr.NumKeys())

	got := tr.PredictiveSearch([]byte("わたし\xff"))
	require.Len(t, got, 2)
	require.Equal(t, []byte("わたし\xff渡し"), got[0].Key)
	require.Equal(t, []byte("わたし\xff私"), got[1].Key)

	require.Empty(t, tr.PredictiveSearch([]byte("ほげ")))
}

func TestIDsAreStableRanks(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("c"))
	b.Add([]byte("a"))
	b.Add([]byte("b"))
	tr := b.Build()

	for i, want := range []string{"a", "b", "c"} {
		es := tr.PredictiveSearch([]byte(want))
		require.Len(t, es, 1)
		require.Equal(t, int32(i), es[0].ID)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("あい\xffA"))
	b.Add([]byte{0x01, 0xff, 0x02})
	b.Add([]byte(""))
	tr := b.Build()

	path := filepath.Join(t.TempDir(), "test.trie")
	require.NoError(t, tr.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, tr.NumKeys(), loaded.NumKeys())

	// Every key must come back with the same id.
	for _, e := range tr.PredictiveSearch(nil) {
		got := loaded.PredictiveSearch(e.Key)
		require.NotEmpty(t, got)
		require.Equal(t, e.ID, got[0].ID)
		require.Equal(t, e.Key, got[0].Key)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.trie")
	require.NoError(t, os.WriteFile(path, []byte("this is not a trie"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
