package lattice

import (
	"fmt"
	"sort"
	"strings"
)

// NodeGroup is the set of candidates starting at one position, as produced by
// the resolver.
type NodeGroup struct {
	Start int
	Nodes []*Node
}

// Graph owns the nodes of one conversion. It is created per convert call and
// discarded after N-best extraction.
type Graph struct {
	size  int
	nodes []*Node // sorted by start position; includes BOS and EOS
	bos   *Node
	eos   *Node

	// byEndPos[end] lists the nodes finishing at that rune position; BOS
	// finishes at 0. Built once so the forward fill can read predecessors
	// from already-built prefixes only, which makes prev-cycles impossible.
	byEndPos map[int][]*Node
}

// NewGraph assembles the lattice: the caller's node groups plus a synthetic
// BOS at (-1, 0) and EOS at size.
func NewGraph(size int, groups []NodeGroup) *Graph {
	g := &Graph{
		size:     size,
		bos:      newBOSNode(),
		eos:      newEOSNode(size),
		byEndPos: map[int][]*Node{},
	}
	g.nodes = append(g.nodes, g.bos, g.eos)
	for _, group := range groups {
		g.nodes = append(g.nodes, group.Nodes...)
	}
	sort.SliceStable(g.nodes, func(i, j int) bool {
		return g.nodes[i].startPos < g.nodes[j].startPos
	})

	g.byEndPos[0] = append(g.byEndPos[0], g.bos)
	for _, node := range g.nodes {
		if node.bos || node.eos {
			continue
		}
		end := node.startPos + node.yomiLen
		g.byEndPos[end] = append(g.byEndPos[end], node)
	}
	return g
}

// Size is the input length in runes.
func (g *Graph) Size() int { return g.size }

func (g *Graph) BOS() *Node { return g.bos }
func (g *Graph) EOS() *Node { return g.eos }

// Nodes returns all nodes in ascending start order, BOS first and EOS at its
// end position.
func (g *Graph) Nodes() []*Node { return g.nodes }

// GetPrevItems lists the candidates a node can follow: everything that ends
// where it starts.
func (g *Graph) GetPrevItems(node *Node) []*Node {
	return g.byEndPos[node.startPos]
}

// GetItemsByStartAndLength lists the alternatives covering exactly the same
// span as node, in graph order.
func (g *Graph) GetItemsByStartAndLength(node *Node) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.startPos == node.startPos && n.yomiLen == node.yomiLen {
			out = append(out, n)
		}
	}
	return out
}

// Dump renders the graph for debugging.
func (g *Graph) Dump() string {
	var b strings.Builder
	b.WriteString("# GRAPH --\n")
	for _, node := range g.nodes {
		prev := "NULL"
		if node.prev != nil {
			prev = node.prev.key
		}
		fmt.Fprintf(&b, "%d\t%s\t\t%s\t%f\n", node.startPos, node.key, prev, node.totalCost)
	}
	b.WriteString("# /GRAPH --\n")
	return b.String()
}
