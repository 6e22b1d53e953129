package lattice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/kanaconv/dict"
	"github.com/hrygo/kanaconv/langmodel"
	"github.com/hrygo/kanaconv/userlm"
)

// newTestResolver builds the in-memory fixture used across the decoder
// tests: a tiny unigram LM, an empty bigram LM, one normal dictionary and
// one single-term dictionary.
func newTestResolver(t *testing.T) *Resolver {
	ub := langmodel.NewSystemUnigramLMBuilder()
	ub.Add("私/わたし", -0.01)
	ub.Add("中野/なかの", -0.01)
	ub.Add("名前/なまえ", -0.01)
	systemUnigram := ub.Build()

	systemBigram := langmodel.NewSystemBigramLMBuilder().Build()

	db := dict.NewBuilder()
	db.Add("わたし", "私/渡し")
	db.Add("の", "の")
	db.Add("なまえ", "名前")
	db.Add("は", "は")
	db.Add("なかの", "中野")
	db.Add("です", "です")
	db.Add("。", "。")
	normal := db.Build()

	sb := dict.NewBuilder()
	sb.Add("すし", "🍣/鮨")
	singleTerm := sb.Build()

	return NewResolver(
		newTestUserLM(t),
		systemUnigram,
		systemBigram,
		[]*dict.BinaryDict{normal},
		[]*dict.BinaryDict{singleTerm},
	)
}

func firstCandidates(segments [][]*Node) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg[0].Word())
	}
	return b.String()
}

func TestGraphConstruct(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("わたしのなまえはなかのです。", nil)

	desu, maru := 0, 0
	for _, n := range g.Nodes() {
		if n.Key() == "です/です" {
			desu++
		}
		if n.Key() == "。/。" {
			maru++
		}
	}
	require.Equal(t, 1, desu)
	require.Equal(t, 1, maru)
}

func TestViterbiPath(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("わたしのなまえはなかのです。", nil)
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)

	require.Equal(t, "私の名前は中野です。", firstCandidates(got))
	require.Len(t, got, 7)
}

func TestNodeInvariants(t *testing.T) {
	r := newTestResolver(t)
	input := "わたしのなまえ"
	g := r.GraphConstruct(input, nil)
	r.FillCost(g)

	for _, n := range g.Nodes() {
		if n.IsBOS() {
			require.Equal(t, -1, n.StartPos())
			continue
		}
		if n.IsEOS() {
			require.Equal(t, g.Size(), n.StartPos())
			continue
		}
		require.NotEmpty(t, n.Yomi())
		require.GreaterOrEqual(t, n.StartPos(), 0)
		require.LessOrEqual(t, n.StartPos()+n.YomiLen(), g.Size())

		if n.Prev() != nil {
			require.NotSame(t, n, n.Prev())
			require.Equal(t, n.StartPos(), n.Prev().StartPos()+n.Prev().YomiLen())
		}
	}
}

func TestForwardFillIsOptimal(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("わたしの", nil)
	r.FillCost(g)

	// Snapshot the filled totals first: CalcNodeCost below stores the system
	// unigram cost into a known word's total, which would skew later reads.
	totals := map[*Node]float32{}
	for _, n := range g.Nodes() {
		totals[n] = n.TotalCost()
	}

	for _, n := range g.Nodes() {
		if n.IsBOS() {
			continue
		}
		prevs := g.GetPrevItems(n)
		if len(prevs) == 0 {
			continue
		}
		total := totals[n]
		u := n.CalcNodeCost(r.userLM, r.systemUnigramLM)
		best := float32(0)
		for i, p := range prevs {
			c := totals[p] + p.GetBigramCostFromCache(n, r.systemBigramLM) + u
			if i == 0 || c > best {
				best = c
			}
		}
		require.InDelta(t, float64(best), float64(total), 1e-4, "node %s", n.Key())
	}
}

// A reading absent from every dictionary must still produce the kana and
// katakana candidates when the user constrains the segment.
func TestKatakanaCandidates(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("ひょいー", []Slice{{Start: 0, Len: 4}})
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Len(t, got, 1)

	words := map[string]bool{}
	for _, n := range got[0] {
		words[n.Word()] = true
	}
	require.True(t, words["ひょいー"])
	require.True(t, words["ヒョイー"])
}

// Single-term dictionaries only apply when one segment spans the whole
// input.
func TestSingleTermDict(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("すし", []Slice{{Start: 0, Len: 2}})
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Len(t, got, 1)

	words := map[string]bool{}
	for _, n := range got[0] {
		words[n.Word()] = true
	}
	require.True(t, words["🍣"])
	require.True(t, words["鮨"])
}

func TestSingleTermDictUnconstrained(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("すし", nil)
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Len(t, got, 1)

	words := map[string]bool{}
	for _, n := range got[0] {
		words[n.Word()] = true
	}
	require.True(t, words["🍣"])
}

// With no dictionary coverage at all, the whole-input path still floors the
// lattice with pass-through candidates.
func TestPassThroughFloor(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("←", nil)
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "←", got[0][0].Word())
}

// A reading the user once committed is proposed even on a dictionary miss.
func TestUserYomiProposedOnDictMiss(t *testing.T) {
	r := newTestResolver(t)
	r.userLM.AddEntry([]userlm.Entry{{Key: "ヒョイー/ひょいー", Yomi: "ひょいー"}})

	g := r.GraphConstruct("ひょいーの", nil)
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Equal(t, "ヒョイーの", firstCandidates(got))
}

func TestForcedSlicesRestrictSegmentation(t *testing.T) {
	r := newTestResolver(t)
	g := r.GraphConstruct("わたしの", []Slice{
		{Start: 0, Len: 2},
		{Start: 2, Len: 2},
	})
	r.FillCost(g)
	got, err := r.FindNBest(g)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "わた", got[0][0].Yomi())
	require.Equal(t, "しの", got[1][0].Yomi())
}

func TestDeterministicAcrossRuns(t *testing.T) {
	r := newTestResolver(t)
	var last string
	for i := 0; i < 5; i++ {
		g := r.GraphConstruct("わたしのなまえはなかのです。", nil)
		r.FillCost(g)
		got, err := r.FindNBest(g)
		require.NoError(t, err)

		var b strings.Builder
		for _, seg := range got {
			for _, n := range seg {
				b.WriteString(n.Key())
				b.WriteString("|")
			}
			b.WriteString("//")
		}
		if i > 0 {
			require.Equal(t, last, b.String())
		}
		last = b.String()
	}
}

func TestSliceString(t *testing.T) {
	require.Equal(t, "<Slice start=1 len=2>", Slice{Start: 1, Len: 2}.String())
}
