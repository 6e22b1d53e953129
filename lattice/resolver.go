package lattice

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/hrygo/kanaconv/cache"
	"github.com/hrygo/kanaconv/dict"
	"github.com/hrygo/kanaconv/kana"
	"github.com/hrygo/kanaconv/langmodel"
	"github.com/hrygo/kanaconv/userlm"
)

// Slice is a user-imposed phrase boundary: Len runes starting at Start.
type Slice struct {
	Start int
	Len   int
}

func (s Slice) String() string {
	return fmt.Sprintf("<Slice start=%d len=%d>", s.Start, s.Len)
}

// Resolver orchestrates one conversion: lattice construction over the yomi,
// the forward cost fill, and N-best extraction. It only holds immutable
// models plus the user LM, so a single Resolver serves every convert call.
type Resolver struct {
	userLM          *userlm.UserLanguageModel
	systemUnigramLM *langmodel.SystemUnigramLM
	systemBigramLM  *langmodel.SystemBigramLM
	normalDicts     []*dict.BinaryDict
	singleTermDicts []*dict.BinaryDict

	// lookupCache memoizes merged normal-dict hits per yomi. The candidate
	// loop queries every substring of the input, so repeated readings are
	// the common case; the dictionaries are immutable, so entries never
	// go stale.
	lookupCache *cache.LRU[string, []string]
}

func NewResolver(
	userLM *userlm.UserLanguageModel,
	systemUnigramLM *langmodel.SystemUnigramLM,
	systemBigramLM *langmodel.SystemBigramLM,
	normalDicts []*dict.BinaryDict,
	singleTermDicts []*dict.BinaryDict,
) *Resolver {
	slog.Debug("resolver ready",
		"userUnigrams", userLM.SizeUnigram(),
		"userBigrams", userLM.SizeBigram(),
		"systemUnigrams", systemUnigramLM.Size(),
		"systemBigrams", systemBigramLM.Size(),
		"normalDicts", len(normalDicts),
		"singleTermDicts", len(singleTermDicts))
	return &Resolver{
		userLM:          userLM,
		systemUnigramLM: systemUnigramLM,
		systemBigramLM:  systemBigramLM,
		normalDicts:     normalDicts,
		singleTermDicts: singleTermDicts,
		lookupCache:     cache.NewLRU[string, []string](4096),
	}
}

// candidate is a (yomi, word) pair before node construction; the map-backed
// set deduplicates by value.
type candidate struct {
	yomi string
	word string
}

type candidateSet map[candidate]struct{}

func (s candidateSet) insert(yomi, word string) {
	s[candidate{yomi: yomi, word: word}] = struct{}{}
}

// insertBasic adds the pass-through candidates every covered reading gets:
// the kana itself and its katakana form.
func (s candidateSet) insertBasic(yomi string) {
	s.insert(yomi, yomi)
	s.insert(yomi, kana.HiraToKata(yomi))
}

// sorted flattens the set in (yomi, word) order so node construction is
// deterministic.
func (s candidateSet) sorted() []candidate {
	out := make([]candidate, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].yomi != out[j].yomi {
			return out[i].yomi < out[j].yomi
		}
		return out[i].word < out[j].word
	})
	return out
}

// findKanjis merges the normal-dictionary hits for yomi through the lookup
// cache.
func (r *Resolver) findKanjis(yomi string) []string {
	if hit, ok := r.lookupCache.Get(yomi); ok {
		return hit
	}
	var words []string
	for _, d := range r.normalDicts {
		words = append(words, d.FindKanjis(yomi)...)
	}
	r.lookupCache.Set(yomi, words)
	return words
}

// GraphConstruct builds the lattice for the yomi string. With forced slices
// the lattice contains exactly the caller's segmentation; otherwise every
// substring is a potential segment.
func (r *Resolver) GraphConstruct(yomi string, forced []Slice) *Graph {
	runes := []rune(yomi)
	var groups []NodeGroup
	if forced != nil {
		groups = r.forceSelectedGroups(runes, forced)
	} else {
		groups = r.normalGroups(runes)
	}
	return NewGraph(len(runes), groups)
}

func (r *Resolver) normalGroups(runes []rune) []NodeGroup {
	groups := make([]NodeGroup, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		set := candidateSet{}
		for j := 1; j <= len(runes)-i; j++ {
			y := string(runes[i : i+j])

			existKanjis := false
			for _, word := range r.findKanjis(y) {
				set.insert(y, word)
				existKanjis = true
			}

			if existKanjis || r.userLM.HasUnigramCostByYomi(y) {
				set.insertBasic(y)
			}

			// The whole input as one segment consults the single-term
			// dictionaries; if nothing at all covered it, the basic
			// candidates are the guaranteed floor.
			if i == 0 && j == len(runes) {
				for _, d := range r.singleTermDicts {
					for _, word := range d.FindKanjis(y) {
						set.insert(y, word)
					}
				}
				if len(set) == 0 {
					set.insertBasic(y)
				}
			}
		}
		groups = append(groups, NodeGroup{Start: i, Nodes: r.buildNodes(i, set)})
	}
	return groups
}

func (r *Resolver) forceSelectedGroups(runes []rune, slices []Slice) []NodeGroup {
	groups := make([]NodeGroup, 0, len(slices))
	for _, slice := range slices {
		set := candidateSet{}
		y := string(runes[slice.Start : slice.Start+slice.Len])

		for _, word := range r.findKanjis(y) {
			set.insert(y, word)
		}
		if slice.Start == 0 && slice.Len == len(runes) {
			for _, d := range r.singleTermDicts {
				for _, word := range d.FindKanjis(y) {
					set.insert(y, word)
				}
			}
		}
		set.insertBasic(y)

		groups = append(groups, NodeGroup{Start: slice.Start, Nodes: r.buildNodes(slice.Start, set)})
	}
	return groups
}

func (r *Resolver) buildNodes(start int, set candidateSet) []*Node {
	cands := set.sorted()
	nodes := make([]*Node, 0, len(cands))
	for _, c := range cands {
		nodes = append(nodes, NewNode(r.systemUnigramLM, start, c.yomi, c.word))
	}
	return nodes
}

// FillCost runs the forward maximum-score fill. Nodes are visited in
// ascending start order, so every predecessor is final before it is read.
func (r *Resolver) FillCost(g *Graph) {
	for _, node := range g.Nodes() {
		if node.IsBOS() {
			continue
		}
		nodeCost := node.CalcNodeCost(r.userLM, r.systemUnigramLM)

		prevs := g.GetPrevItems(node)
		if len(prevs) == 0 {
			// Only reachable on a corrupt graph; park the node at the
			// floor so nothing routes through it.
			node.totalCost = float32(math.MinInt32)
			continue
		}

		cost := float32(math.Inf(-1))
		var best *Node
		for _, prev := range prevs {
			c := prev.totalCost + prev.GetBigramCost(node, r.userLM, r.systemBigramLM) + nodeCost
			if cost < c {
				cost = c
				best = prev
			}
		}
		node.setPrev(best)
		node.totalCost = cost
	}
}

// FindNBest walks the best path backward from EOS and, per segment, ranks
// the alternatives covering the same span by their joint score against the
// committed successor. The first element of each segment is the Viterbi
// choice.
func (r *Resolver) FindNBest(g *Graph) ([][]*Node, error) {
	node := g.EOS().Prev()
	if node == nil {
		return nil, errors.New("lattice: EOS has no predecessor; fill costs first")
	}

	var result [][]*Node
	lastNode := g.EOS()
	for !node.IsBOS() {
		if node == node.Prev() {
			return nil, errors.Errorf("lattice: node is its own predecessor: %s", node.Key())
		}

		alternatives := g.GetItemsByStartAndLength(node)
		sort.SliceStable(alternatives, func(i, j int) bool {
			a := alternatives[i].TotalCost() + alternatives[i].GetBigramCostFromCache(lastNode, r.systemBigramLM)
			b := alternatives[j].TotalCost() + alternatives[j].GetBigramCostFromCache(lastNode, r.systemBigramLM)
			return a > b
		})
		result = append(result, alternatives)

		lastNode = node
		node = node.Prev()
		if node == nil {
			return nil, errors.New("lattice: broken prev chain before BOS")
		}
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}
