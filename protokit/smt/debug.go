package smt

import (
	"strconv"

	"github.com/emicklei/dot"
	"github.com/ethereum/go-ethereum/common"
)

// DumpDot renders the non-default part of the snapshot as a graphviz graph.
// Chains of single-child interior nodes are collapsed so the output stays
// readable despite the 256-level tree. Debug-only.
func DumpDot(s Snapshot) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	if root := s.Root(); root != default_hashes[Depth] {
		dot_walk(g, s, root, Depth, 0)
	}
	return g
}

func dot_walk(g *dot.Graph, s Snapshot, node common.Hash, height int, collapsed int) dot.Node {
	if height == 0 {
		leaf := g.Node(node.Hex())
		leaf.Label("leaf " + node.Hex()[:10])
		g.AddToSameRank("leaves", leaf)
		return leaf
	}
	n, ok := s.store.GetNode(&node)
	if !ok {
		missing := g.Node(node.Hex())
		missing.Label("MISSING")
		return missing
	}
	left_default := n.Left == default_hashes[height-1]
	right_default := n.Right == default_hashes[height-1]
	// single-child chain, skip drawing the intermediate node
	if left_default != right_default {
		child := n.Left
		if left_default {
			child = n.Right
		}
		return dot_walk(g, s, child, height-1, collapsed+1)
	}
	ret := g.Node(node.Hex())
	ret.Label(dot_label(&node, height, collapsed))
	if !left_default {
		g.Edge(ret, dot_walk(g, s, n.Left, height-1, 0))
	}
	if !right_default {
		g.Edge(ret, dot_walk(g, s, n.Right, height-1, 0))
	}
	return ret
}

func dot_label(node *common.Hash, height int, collapsed int) string {
	label := node.Hex()[:10]
	if collapsed != 0 {
		label += " (+" + strconv.Itoa(collapsed) + ")"
	}
	return label + " h" + strconv.Itoa(height)
}
