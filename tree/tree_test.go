package tree

import "testing"

// sliceChunks replays a fixed slice of HashedChunk values.
type sliceChunks[H any] struct {
	chunks []HashedChunk[H]
	pos    int
}

func (s *sliceChunks[H]) Next() (HashedChunk[H], bool) {
	if s.pos >= len(s.chunks) {
		return HashedChunk[H]{}, false
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, true
}

func collect[H any](it *NodeIter[H]) []Node[H] {
	var out []Node[H]
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, n)
	}
	return out
}

// TestNodeIterPromotesBySingletonRule feeds hashes 0..11 with levels
// [0,0,1,0,1,1,2,1,0,1,0,1] and no hard cap, with a callback that assigns
// fresh sequential ids starting at 12, and checks that every node has at
// least 2 children, the root is at level 2 or above, every leaf appears as a
// child, and the total child count is the 12 leaves plus one per non-root
// node.
func TestNodeIterPromotesBySingletonRule(t *testing.T) {
	levels := []int{0, 0, 1, 0, 1, 1, 2, 1, 0, 1, 0, 1}

	var chunks []HashedChunk[int]
	for i, lvl := range levels {
		chunks = append(chunks, HashedChunk[int]{Hash: i, Level: lvl})
	}

	nextID := 12
	newNode := func(level int, children []int) Node[int] {
		id := nextID
		nextID++
		cp := make([]int, len(children))
		copy(cp, children)
		return Node[int]{Hash: id, Level: level, Children: cp}
	}

	it := NewNodeIter[int](&sliceChunks[int]{chunks: chunks}, newNode, 0)
	nodes := collect(it)

	if len(nodes) == 0 {
		t.Fatal("expected at least one node")
	}

	root := nodes[len(nodes)-1]
	if root.Level < 2 {
		t.Errorf("root level = %d, want >= 2", root.Level)
	}

	totalChildren := 0
	for _, n := range nodes {
		if len(n.Children) < 2 {
			t.Errorf("node %+v has fewer than 2 children", n)
		}
		totalChildren += len(n.Children)
	}

	// Every original leaf hash (0..11) must show up as a child somewhere, and
	// the children add up to the 12 leaves plus every node hash except the
	// root's, which is never anyone's child.
	seenAsChild := make(map[int]int)
	for _, n := range nodes {
		for _, c := range n.Children {
			seenAsChild[c]++
		}
	}
	for i := range levels {
		if seenAsChild[i] == 0 {
			t.Errorf("leaf hash %d never appears as a child", i)
		}
	}
	if totalChildren != 12+(len(nodes)-1) {
		t.Errorf("total children = %d, want %d (12 leaves + %d promoted internal hashes)",
			totalChildren, 12+(len(nodes)-1), len(nodes)-1)
	}
}

// TestHardCapProducesFixedWidthNodes checks that with max_node_children=4
// and a long run of level-0 chunks, every emitted level-0 node has exactly 4
// children. The level-0 node hashes are grouped again at the levels above
// (also capped at 4), so those nodes may have fewer children.
func TestHardCapProducesFixedWidthNodes(t *testing.T) {
	const n = 40
	var chunks []HashedChunk[int]
	for i := 0; i < n; i++ {
		chunks = append(chunks, HashedChunk[int]{Hash: i, Level: 0})
	}

	newNode := func(level int, children []int) Node[int] {
		cp := make([]int, len(children))
		copy(cp, children)
		return Node[int]{Hash: 1000 + children[0], Level: level, Children: cp}
	}

	it := NewNodeIter[int](&sliceChunks[int]{chunks: chunks}, newNode, 4)
	nodes := collect(it)

	var level0 []Node[int]
	for _, node := range nodes {
		if node.Level == 0 {
			level0 = append(level0, node)
		}
		if len(node.Children) > 4 {
			t.Errorf("level-%d node has %d children, want at most 4", node.Level, len(node.Children))
		}
	}

	if len(level0) != n/4 {
		t.Fatalf("got %d level-0 nodes, want %d", len(level0), n/4)
	}
	for _, node := range level0 {
		if len(node.Children) != 4 {
			t.Errorf("level-0 node has %d children, want exactly 4", len(node.Children))
		}
	}
}

// TestNoSingletonNodesEmitted: a single level-0 chunk followed by
// end-of-stream should promote without ever building a Node.
func TestNoSingletonNodesEmitted(t *testing.T) {
	chunks := []HashedChunk[int]{{Hash: 42, Level: 0}}
	newNode := func(level int, children []int) Node[int] {
		t.Fatalf("newNode should not be called for a singleton bucket, got level=%d children=%v", level, children)
		return Node[int]{}
	}

	it := NewNodeIter[int](&sliceChunks[int]{chunks: chunks}, newNode, 0)
	if _, ok := it.Next(); ok {
		t.Fatal("a single chunk should produce no nodes at all (it IS the unemitted root)")
	}
}

// TestRoundTripStability: running the pipeline twice on identical input
// yields an identical node sequence.
func TestRoundTripStability(t *testing.T) {
	levels := []int{0, 0, 1, 0, 1, 1, 2, 1, 0, 1, 0, 1}
	build := func() []Node[int] {
		var chunks []HashedChunk[int]
		for i, lvl := range levels {
			chunks = append(chunks, HashedChunk[int]{Hash: i, Level: lvl})
		}
		newNode := func(level int, children []int) Node[int] {
			sum := 0
			for _, c := range children {
				sum += c
			}
			return Node[int]{Hash: sum, Level: level, Children: append([]int(nil), children...)}
		}
		return collect(NewNodeIter[int](&sliceChunks[int]{chunks: chunks}, newNode, 0))
	}

	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Hash != b[i].Hash || a[i].Level != b[i].Level || len(a[i].Children) != len(b[i].Children) {
			t.Errorf("node %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
