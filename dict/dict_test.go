package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindKanjis(t *testing.T) {
	b := NewBuilder()
	b.Add("わたし", "私/渡し")
	b.Add("なかの", "中野")
	b.Add("の", "の")
	d := b.Build()

	require.Equal(t, []string{"私", "渡し"}, d.FindKanjis("わたし"))
	require.Equal(t, []string{"中野"}, d.FindKanjis("なかの"))
	require.Nil(t, d.FindKanjis("なまえ"))
	// Prefix of a stored yomi must not match.
	require.Nil(t, d.FindKanjis("わた"))
}

func TestFindKanjisDropsEmptyParts(t *testing.T) {
	b := NewBuilder()
	b.Add("てすと", "/テスト//試験/")
	d := b.Build()
	require.Equal(t, []string{"テスト", "試験"}, d.FindKanjis("てすと"))
}

func TestDictSaveLoad(t *testing.T) {
	b := NewBuilder()
	b.Add("にほん", "日本/二本")
	path := filepath.Join(t.TempDir(), "dict.trie")
	require.NoError(t, b.Save(path))

	d, err := LoadBinaryDict(path)
	require.NoError(t, err)
	require.Equal(t, 1, d.Size())
	require.Equal(t, []string{"日本", "二本"}, d.FindKanjis("にほん"))
}

func TestParseSKKDict(t *testing.T) {
	src := `;; -*- mode: fundamental; coding: utf-8 -*-
;; okuri-ari entries.
あいs /愛;love/会;meet/
;; okuri-nasi entries.
きょう /今日/京/
にほん /日本/
`
	path := filepath.Join(t.TempDir(), "SKK-JISYO.test")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	ari, nasi, err := ParseSKKDict(path)
	require.NoError(t, err)
	require.Equal(t, []string{"愛", "会"}, ari["あいs"])
	require.Equal(t, []string{"今日", "京"}, nasi["きょう"])
	require.Equal(t, []string{"日本"}, nasi["にほん"])
	require.NotContains(t, nasi, "あいs")
}
