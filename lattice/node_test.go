package lattice

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/kanaconv/langmodel"
	"github.com/hrygo/kanaconv/lisp"
	"github.com/hrygo/kanaconv/userlm"
)

func newTestUserLM(t *testing.T) *userlm.UserLanguageModel {
	dir := t.TempDir()
	return userlm.NewUserLanguageModel(
		filepath.Join(dir, "unigram.txt"),
		filepath.Join(dir, "bigram.txt"),
	)
}

func TestNodeFactoryCachesUnigram(t *testing.T) {
	b := langmodel.NewSystemUnigramLMBuilder()
	b.Add("私/わたし", -0.01)
	lm := b.Build()

	n := NewNode(lm, 0, "わたし", "私")
	require.Equal(t, "私/わたし", n.Key())
	require.NotEqual(t, langmodel.UnknownWordID, n.WordID())

	unknown := NewNode(lm, 0, "わたし", "渡し")
	require.Equal(t, langmodel.UnknownWordID, unknown.WordID())
}

func TestCalcNodeCostPrecedence(t *testing.T) {
	b := langmodel.NewSystemUnigramLMBuilder()
	b.Add("私/わたし", -0.01)
	system := b.Build()
	user := newTestUserLM(t)

	// Known in the system LM: cached cost.
	n := NewNode(system, 0, "わたし", "私")
	require.InDelta(t, -0.01, float64(n.CalcNodeCost(user, system)), 1e-6)

	// Unknown, surface shorter than yomi: the raised floor.
	short := NewNode(system, 0, "わたし", "渡し")
	require.InDelta(t, -19.0, float64(short.CalcNodeCost(user, system)), 1e-6)

	// Unknown, surface as long as yomi: the plain floor.
	passthrough := NewNode(system, 0, "わたし", "わたし")
	require.InDelta(t, -20.0, float64(passthrough.CalcNodeCost(user, system)), 1e-6)

	// Learned by the user: the user LM wins over everything.
	user.AddEntry([]userlm.Entry{{Key: "私/わたし", Yomi: "わたし"}})
	userCost, ok := user.GetUnigramCost("私/わたし")
	require.True(t, ok)
	require.InDelta(t, float64(userCost), float64(n.CalcNodeCost(user, system)), 1e-6)
}

func TestBigramCostAndCache(t *testing.T) {
	ub := langmodel.NewSystemUnigramLMBuilder()
	ub.Add("私/わたし", -0.01)
	ub.Add("の/の", -0.02)
	system := ub.Build()

	id1, _ := system.FindUnigram("私/わたし")
	id2, _ := system.FindUnigram("の/の")
	bb := langmodel.NewSystemBigramLMBuilder()
	bb.Add(id1, id2, -0.5)
	bigram := bb.Build()

	user := newTestUserLM(t)

	a := NewNode(system, 0, "わたし", "私")
	b := NewNode(system, 3, "の", "の")

	got := a.GetBigramCost(b, user, bigram)
	require.InDelta(t, -0.5, float64(got), 1e-6)
	require.InDelta(t, -0.5, float64(a.GetBigramCostFromCache(b, bigram)), 1e-6)

	// Pair absent from the bigram LM: default score, also memoized.
	got = b.GetBigramCost(a, user, bigram)
	require.InDelta(t, -20.0, float64(got), 1e-6)

	// Unknown word id on either side short-circuits to the default.
	unk := NewNode(system, 0, "わたし", "渡し")
	require.InDelta(t, -20.0, float64(unk.GetBigramCost(b, user, bigram)), 1e-6)

	// A cold cache read yields the default score.
	fresh := NewNode(system, 0, "わたし", "私")
	require.InDelta(t, -20.0, float64(fresh.GetBigramCostFromCache(b, bigram)), 1e-6)
}

func TestUserBigramWins(t *testing.T) {
	system := langmodel.NewSystemUnigramLMBuilder().Build()
	bigram := langmodel.NewSystemBigramLMBuilder().Build()
	user := newTestUserLM(t)
	user.AddEntry([]userlm.Entry{
		{Key: "私/わたし", Yomi: "わたし"},
		{Key: "の/の", Yomi: "の"},
	})

	a := NewNode(system, 0, "わたし", "私")
	b := NewNode(system, 3, "の", "の")
	want, ok := user.GetBigramCost("私/わたし", "の/の")
	require.True(t, ok)
	require.InDelta(t, float64(want), float64(a.GetBigramCost(b, user, bigram)), 1e-6)
}

func TestSurface(t *testing.T) {
	system := langmodel.NewSystemUnigramLMBuilder().Build()
	ev := lisp.NewEvaluatorAt(func() time.Time {
		return time.Date(2021, 2, 27, 0, 0, 0, 0, time.UTC)
	})

	plain := NewNode(system, 0, "きょう", "今日")
	got, err := plain.Surface(ev)
	require.NoError(t, err)
	require.Equal(t, "今日", got)

	dynamic := NewNode(system, 0, "きょう", `(strftime (current-datetime) "%Y-%m-%d")`)
	got, err = dynamic.Surface(ev)
	require.NoError(t, err)
	require.Equal(t, "2021-02-27", got)

	broken := NewNode(system, 0, "きょう", `(unknown-fn "x")`)
	_, err = broken.Surface(ev)
	require.Error(t, err)
}

func TestBOSAndEOS(t *testing.T) {
	bos := newBOSNode()
	require.True(t, bos.IsBOS())
	require.Equal(t, -1, bos.StartPos())
	require.Equal(t, "__BOS__/__BOS__", bos.Key())

	eos := newEOSNode(5)
	require.True(t, eos.IsEOS())
	require.Equal(t, 5, eos.StartPos())
	require.Equal(t, "__EOS__", eos.Key())
}

func TestEquals(t *testing.T) {
	system := langmodel.NewSystemUnigramLMBuilder().Build()
	a := NewNode(system, 0, "わたし", "私")
	b := NewNode(system, 0, "わたし", "私")
	c := NewNode(system, 1, "わたし", "私")
	require.True(t, a.Equals(b))
	require.False(t, a.Equals(c))
}
