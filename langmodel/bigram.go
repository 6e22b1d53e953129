package langmodel

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/hrygo/kanaconv/trie"
)

// SystemBigramLM maps an ordered pair of unigram word ids to a log10 score.
type SystemBigramLM struct {
	trie *trie.Trie
}

func NewSystemBigramLM(t *trie.Trie) *SystemBigramLM {
	return &SystemBigramLM{trie: t}
}

func LoadSystemBigramLM(path string) (*SystemBigramLM, error) {
	t, err := trie.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "load system bigram LM")
	}
	return &SystemBigramLM{trie: t}, nil
}

func (lm *SystemBigramLM) Size() int {
	return lm.trie.NumKeys()
}

// FindBigram looks up the (id1, id2) pair. Returns 0 when the pair is absent;
// consumers substitute DefaultScore.
func (lm *SystemBigramLM) FindBigram(wordID1, wordID2 int32) float32 {
	query := packIDPair(wordID1, wordID2)
	for _, e := range lm.trie.PredictiveSearch(query) {
		payload := e.Key[len(query):]
		if len(payload) < 4 {
			continue
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(payload))
	}
	return 0
}

func (lm *SystemBigramLM) DefaultScore() float32 {
	return defaultCost
}

// packIDPair packs two word ids as 3-byte little-endian each. 24 bits caps
// the vocabulary at 8,388,608 words.
func packIDPair(wordID1, wordID2 int32) []byte {
	return []byte{
		byte(wordID1), byte(wordID1 >> 8), byte(wordID1 >> 16),
		byte(wordID2), byte(wordID2 >> 8), byte(wordID2 >> 16),
	}
}

// SystemBigramLMBuilder collects scored id pairs and packs them into the trie
// at save time.
type SystemBigramLMBuilder struct {
	builder *trie.Builder
}

func NewSystemBigramLMBuilder() *SystemBigramLMBuilder {
	return &SystemBigramLMBuilder{builder: trie.NewBuilder()}
}

func (b *SystemBigramLMBuilder) Add(wordID1, wordID2 int32, score float32) {
	key := packIDPair(wordID1, wordID2)
	key = binary.LittleEndian.AppendUint32(key, math.Float32bits(score))
	b.builder.Add(key)
}

func (b *SystemBigramLMBuilder) Build() *SystemBigramLM {
	return NewSystemBigramLM(b.builder.Build())
}

func (b *SystemBigramLMBuilder) Save(path string) error {
	return b.builder.Build().Save(path)
}
