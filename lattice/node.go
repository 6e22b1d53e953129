// Package lattice builds the conversion lattice over a yomi string and
// decodes it: candidate enumeration from the dictionaries, a forward
// maximum-score fill, and N-best extraction per segment.
//
// Positions are character (rune) indices into the hiragana yomi, never byte
// offsets.
package lattice

import (
	"unicode/utf8"

	"github.com/hrygo/kanaconv/langmodel"
	"github.com/hrygo/kanaconv/lisp"
	"github.com/hrygo/kanaconv/userlm"
)

const (
	// BOSKey is the word key of the beginning-of-sentence sentinel.
	BOSKey = "__BOS__/__BOS__"
	// EOSKey is deliberately the bare token: scoring the real __EOS__/__EOS__
	// key was found to hurt conversion quality.
	EOSKey = "__EOS__"

	bosToken = "__BOS__"
	eosToken = "__EOS__"
)

// Node is one candidate word occupying [StartPos, StartPos+len(yomi)) of the
// input. The identity fields are immutable; prev, totalCost and the bigram
// memo are filled during decoding, so a Node belongs to exactly one graph.
type Node struct {
	startPos int // rune index; BOS sits at -1
	yomi     string
	word     string
	key      string
	bos      bool
	eos      bool

	yomiLen int
	wordLen int

	wordID            int32
	systemUnigramCost float32

	prev        *Node
	totalCost   float32
	bigramCache map[string]float32
}

// NewNode builds a candidate and caches its system unigram lookup; every
// lattice candidate is scored against the unigram LM at least once, so the
// lookup is hoisted into construction.
func NewNode(systemUnigramLM *langmodel.SystemUnigramLM, startPos int, yomi, word string) *Node {
	key := word + "/" + yomi
	wordID, cost := systemUnigramLM.FindUnigram(key)
	return &Node{
		startPos:          startPos,
		yomi:              yomi,
		word:              word,
		key:               key,
		yomiLen:           utf8.RuneCountInString(yomi),
		wordLen:           utf8.RuneCountInString(word),
		wordID:            wordID,
		systemUnigramCost: cost,
		bigramCache:       map[string]float32{},
	}
}

// NewLiteralNode builds a pass-through candidate that bypasses the system LM
// (escape hatches and the trailing-consonant segment).
func NewLiteralNode(startPos int, yomi, word string) *Node {
	return &Node{
		startPos:          startPos,
		yomi:              yomi,
		word:              word,
		key:               word + "/" + yomi,
		yomiLen:           utf8.RuneCountInString(yomi),
		wordLen:           utf8.RuneCountInString(word),
		wordID:            langmodel.UnknownWordID,
		systemUnigramCost: 0,
		bigramCache:       map[string]float32{},
	}
}

func newBOSNode() *Node {
	return &Node{
		startPos:    -1,
		yomi:        bosToken,
		word:        bosToken,
		key:         BOSKey,
		bos:         true,
		yomiLen:     1, // BOS occupies [-1, 0), so it ends where the input starts
		wordID:      langmodel.UnknownWordID,
		bigramCache: map[string]float32{},
	}
}

func newEOSNode(startPos int) *Node {
	return &Node{
		startPos:    startPos,
		yomi:        eosToken,
		word:        eosToken,
		key:         EOSKey,
		eos:         true,
		wordID:      langmodel.UnknownWordID,
		bigramCache: map[string]float32{},
	}
}

func (n *Node) StartPos() int      { return n.startPos }
func (n *Node) Yomi() string       { return n.yomi }
func (n *Node) Word() string       { return n.word }
func (n *Node) Key() string        { return n.key }
func (n *Node) IsBOS() bool        { return n.bos }
func (n *Node) IsEOS() bool        { return n.eos }
func (n *Node) WordID() int32      { return n.wordID }
func (n *Node) Prev() *Node        { return n.prev }
func (n *Node) TotalCost() float32 { return n.totalCost }

// YomiLen is the node's width in runes; the node ends at StartPos+YomiLen.
func (n *Node) YomiLen() int { return n.yomiLen }

// Surface materializes the user-visible surface. A word beginning with "("
// is a Lisp expression evaluated against ev; everything else is returned
// verbatim.
func (n *Node) Surface(ev *lisp.Evaluator) (string, error) {
	if len(n.word) > 0 && n.word[0] == '(' {
		return ev.Run(n.word)
	}
	return n.word, nil
}

// Equals compares candidate identity (word, yomi, position).
func (n *Node) Equals(other *Node) bool {
	return n.word == other.word && n.yomi == other.yomi && n.startPos == other.startPos
}

// CalcNodeCost returns the unigram term of this node's score. The user LM
// wins when it has counted this key; then the cached system unigram cost;
// then the default floors, with the higher floor reserved for surfaces shorter
// than their yomi so uncovered short kanji still rank above raw kana. When the
// system LM supplies the cost it is also stored as the node's total cost;
// FillCost later overwrites that with the best path total.
func (n *Node) CalcNodeCost(user *userlm.UserLanguageModel, system *langmodel.SystemUnigramLM) float32 {
	if cost, ok := user.GetUnigramCost(n.key); ok {
		return cost
	}
	if n.wordID != langmodel.UnknownWordID {
		n.totalCost = n.systemUnigramCost
		return n.systemUnigramCost
	}
	if n.wordLen < n.yomiLen {
		return system.DefaultCostForShort()
	}
	return system.DefaultCost()
}

// GetBigramCost scores the transition self→next and memoizes it under next's
// key, so the N-best resort can reread the same slot without recomputing.
func (n *Node) GetBigramCost(next *Node, user *userlm.UserLanguageModel, system *langmodel.SystemBigramLM) float32 {
	cost := n.calcBigramCost(next, user, system)
	n.bigramCache[next.key] = cost
	return cost
}

func (n *Node) calcBigramCost(next *Node, user *userlm.UserLanguageModel, system *langmodel.SystemBigramLM) float32 {
	if cost, ok := user.GetBigramCost(n.key, next.key); ok {
		return cost
	}
	if n.wordID == langmodel.UnknownWordID || next.wordID == langmodel.UnknownWordID {
		return system.DefaultScore()
	}
	if score := system.FindBigram(n.wordID, next.wordID); score != 0 {
		return score
	}
	return system.DefaultScore()
}

// GetBigramCostFromCache reads the memoized transition cost. During N-best
// extraction the cache is already populated for every predecessor visited by
// the forward fill; anything else gets the default score.
func (n *Node) GetBigramCostFromCache(next *Node, system *langmodel.SystemBigramLM) float32 {
	if cost, ok := n.bigramCache[next.key]; ok {
		return cost
	}
	return system.DefaultScore()
}

func (n *Node) setPrev(prev *Node) {
	if prev == n {
		panic("lattice: node cannot be its own predecessor")
	}
	n.prev = prev
}
