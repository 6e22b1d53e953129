// Package langmodel provides the read-only system language models. Both
// models are packed into the trie store: the unigram as
// "<surface>/<yomi>" 0xFF float32(LE), the bigram as two 3-byte
// little-endian word ids followed by float32(LE).
//
// All scores are log10 probabilities. A lookup miss is a value, never an
// error; the default costs below are the floors substituted by callers.
package langmodel

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/hrygo/kanaconv/trie"
)

// UnknownWordID marks a word key absent from the system unigram LM.
const UnknownWordID int32 = -1

const (
	// defaultCost is log10(1e-20), the floor for unknown words.
	defaultCost float32 = -20.0
	// defaultCostForShort is log10(1e-19), applied when the surface is
	// shorter than its yomi. Keeps rare-but-short kanji above the floor.
	defaultCostForShort float32 = -19.0
)

// SystemUnigramLM maps a word key to (word id, log10 score).
type SystemUnigramLM struct {
	trie *trie.Trie
}

// NewSystemUnigramLM wraps an already-built trie.
func NewSystemUnigramLM(t *trie.Trie) *SystemUnigramLM {
	return &SystemUnigramLM{trie: t}
}

// LoadSystemUnigramLM reads a unigram trie from path.
func LoadSystemUnigramLM(path string) (*SystemUnigramLM, error) {
	t, err := trie.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load system unigram LM")
	}
	return &SystemUnigramLM{trie: t}, nil
}

// Size returns the vocabulary size.
func (lm *SystemUnigramLM) Size() int {
	return lm.trie.NumKeys()
}

// FindUnigram looks up a word key. Absent keys yield (UnknownWordID, 0).
func (lm *SystemUnigramLM) FindUnigram(key string) (int32, float32) {
	query := make([]byte, 0, len(key)+1)
	query = append(query, key...)
	query = append(query, 0xff)
	for _, e := range lm.trie.PredictiveSearch(query) {
		payload := e.Key[len(query):]
		if len(payload) < 4 {
			continue
		}
		score := math.Float32frombits(binary.LittleEndian.Uint32(payload))
		return e.ID, score
	}
	return UnknownWordID, 0
}

func (lm *SystemUnigramLM) DefaultCost() float32 {
	return defaultCost
}

func (lm *SystemUnigramLM) DefaultCostForShort() float32 {
	return defaultCostForShort
}

// SystemUnigramLMBuilder collects (word key, score) pairs and packs them into
// the trie at save time.
type SystemUnigramLMBuilder struct {
	builder *trie.Builder
}

func NewSystemUnigramLMBuilder() *SystemUnigramLMBuilder {
	return &SystemUnigramLMBuilder{builder: trie.NewBuilder()}
}

func (b *SystemUnigramLMBuilder) Add(word string, score float32) {
	key := make([]byte, 0, len(word)+5)
	key = append(key, word...)
	key = append(key, 0xff)
	key = binary.LittleEndian.AppendUint32(key, math.Float32bits(score))
	b.builder.Add(key)
}

// Build freezes the collected entries into an in-memory LM.
func (b *SystemUnigramLMBuilder) Build() *SystemUnigramLM {
	return NewSystemUnigramLM(b.builder.Build())
}

func (b *SystemUnigramLMBuilder) Save(path string) error {
	return b.builder.Build().Save(path)
}
