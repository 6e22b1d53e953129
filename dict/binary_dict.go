// Package dict provides the binary dictionary (yomi → surface candidates)
// and the SKK text dictionary parser that feeds its builder.
//
// At runtime a dictionary plays one of two roles decided by the caller:
// normal (consulted for every substring of the input) or single-term
// (consulted only when the whole input is one segment; emoji, kaomoji and
// dynamic date entries live there).
package dict

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/kanaconv/trie"
)

// BinaryDict maps a yomi to its surface candidates through the trie store.
// Entries are packed as "<yomi>" 0xFF "<surface>/<surface>/...".
type BinaryDict struct {
	trie *trie.Trie
}

func NewBinaryDict(t *trie.Trie) *BinaryDict {
	return &BinaryDict{trie: t}
}

func LoadBinaryDict(path string) (*BinaryDict, error) {
	t, err := trie.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load binary dict")
	}
	return &BinaryDict{trie: t}, nil
}

func (d *BinaryDict) Size() int {
	return d.trie.NumKeys()
}

// FindKanjis returns the surface candidates for yomi, in trie order. Empty
// parts are dropped. A miss returns nil.
func (d *BinaryDict) FindKanjis(yomi string) []string {
	query := make([]byte, 0, len(yomi)+1)
	query = append(query, yomi...)
	query = append(query, 0xff)
	for _, e := range d.trie.PredictiveSearch(query) {
		var kanjis []string
		for _, k := range strings.Split(string(e.Key[len(query):]), "/") {
			if k != "" {
				kanjis = append(kanjis, k)
			}
		}
		return kanjis
	}
	return nil
}

// Builder collects (yomi, surfaces) pairs. Surfaces are joined by '/'.
type Builder struct {
	builder *trie.Builder
}

func NewBuilder() *Builder {
	return &Builder{builder: trie.NewBuilder()}
}

func (b *Builder) Add(yomi, kanjis string) {
	key := make([]byte, 0, len(yomi)+1+len(kanjis))
	key = append(key, yomi...)
	key = append(key, 0xff)
	key = append(key, kanjis...)
	b.builder.Add(key)
}

func (b *Builder) Build() *BinaryDict {
	return NewBinaryDict(b.builder.Build())
}

func (b *Builder) Save(path string) error {
	return b.builder.Build().Save(path)
}
