// Package trie implements the immutable key store backing all persistent
// artifacts (language models and dictionaries). Keys are arbitrary byte
// strings, including the 0xFF separator used by the packed entry formats.
//
// The store keeps its keys in a flat sorted slice and answers prefix
// enumeration with a binary search for the lower bound. An entry's id is its
// rank in sorted byte order; ids are assigned at build time and are stable
// across save/load because the file records the keys in that order.
package trie

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
)

const magic = "KCTRIE1\n"

// Entry is one stored key together with its stable id.
type Entry struct {
	ID  int32
	Key []byte
}

// Trie is an immutable set of byte keys. Safe for concurrent readers.
type Trie struct {
	keys [][]byte
}

// Builder accumulates keys for a Trie. Keys may be pushed in any order.
type Builder struct {
	keys [][]byte
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add pushes one key. The builder keeps its own copy.
func (b *Builder) Add(key []byte) {
	k := make([]byte, len(key))
	copy(k, key)
	b.keys = append(b.keys, k)
}

// Build sorts the accumulated keys and freezes them into a Trie.
func (b *Builder) Build() *Trie {
	keys := make([][]byte, len(b.keys))
	copy(keys, b.keys)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i], keys[j]) < 0
	})
	return &Trie{keys: keys}
}

// NumKeys returns the number of stored keys.
func (t *Trie) NumKeys() int {
	return len(t.keys)
}

// PredictiveSearch returns all entries whose key begins with prefix, in key
// order. Each entry carries the key's stable id.
func (t *Trie) PredictiveSearch(prefix []byte) []Entry {
	lo := sort.Search(len(t.keys), func(i int) bool {
		return bytes.Compare(t.keys[i], prefix) >= 0
	})
	var out []Entry
	for i := lo; i < len(t.keys) && bytes.HasPrefix(t.keys[i], prefix); i++ {
		out = append(out, Entry{ID: int32(i), Key: t.keys[i]})
	}
	return out
}

// Save writes the trie to path. The layout is a magic header, a uvarint key
// count, then each key as uvarint length + bytes, in sorted order.
func (t *Trie) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create trie file %s", path)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(magic); err != nil {
		f.Close()
		return errors.Wrap(err, "write trie header")
	}
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(t.keys)))
	if _, err := w.Write(buf[:n]); err != nil {
		f.Close()
		return errors.Wrap(err, "write trie key count")
	}
	for _, key := range t.keys {
		n := binary.PutUvarint(buf[:], uint64(len(key)))
		if _, err := w.Write(buf[:n]); err != nil {
			f.Close()
			return errors.Wrap(err, "write trie key length")
		}
		if _, err := w.Write(key); err != nil {
			f.Close()
			return errors.Wrap(err, "write trie key")
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush trie file %s", path)
	}
	return f.Close()
}

// Load reads a trie previously written by Save. A corrupt or unreadable file
// is a fatal construction error, never a partial trie.
func Load(path string) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open trie file %s", path)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, errors.Wrapf(err, "read trie header %s", path)
	}
	if string(head) != magic {
		return nil, errors.Errorf("not a trie file: %s", path)
	}
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read trie key count %s", path)
	}
	keys := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		klen, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, errors.Wrapf(err, "read trie key length %s", path)
		}
		key := make([]byte, klen)
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, errors.Wrapf(err, "read trie key %s", path)
		}
		keys = append(keys, key)
	}
	return &Trie{keys: keys}, nil
}
