package epidemic

import (
	"sync/atomic"
	"testing"
	"time"
)

type countNode struct {
	hits     atomic.Int64
	children []Updatable
}

func (n *countNode) UpdateSelf(delta time.Duration) { n.hits.Add(1) }
func (n *countNode) UpdateChildren() []Updatable    { return n.children }

// buildTree creates a uniform tree and returns the root plus every node.
func buildTree(depth, fanout int) (*countNode, []*countNode) {
	root := &countNode{}
	nodes := []*countNode{root}
	frontier := []*countNode{root}
	for d := 0; d < depth; d++ {
		var next []*countNode
		for _, parent := range frontier {
			for i := 0; i < fanout; i++ {
				child := &countNode{}
				parent.children = append(parent.children, child)
				nodes = append(nodes, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return root, nodes
}

func TestUpdate_VisitsEveryNodeOnce(t *testing.T) {
	root, nodes := buildTree(3, 3)
	Update(root, time.Minute)
	for i, n := range nodes {
		if got := n.hits.Load(); got != 1 {
			t.Fatalf("node %d updated %d times, expected 1", i, got)
		}
	}
}

func TestUpdateParallel_VisitsEveryNodeOnce(t *testing.T) {
	root, nodes := buildTree(4, 4)
	UpdateParallel(root, time.Minute)
	for i, n := range nodes {
		if got := n.hits.Load(); got != 1 {
			t.Fatalf("node %d updated %d times, expected 1", i, got)
		}
	}
}

func TestUpdateParallel_LeafOnlyRoot(t *testing.T) {
	root := &countNode{}
	UpdateParallel(root, time.Minute)
	if got := root.hits.Load(); got != 1 {
		t.Errorf("root updated %d times, expected 1", got)
	}
}

func TestUpdateParallel_ManyFlatChildren(t *testing.T) {
	// A worker count far below the child count forces the inline-walk
	// fallback; every child must still be visited exactly once.
	root, nodes := buildTree(1, 500)
	UpdateParallel(root, time.Minute)
	for i, n := range nodes {
		if got := n.hits.Load(); got != 1 {
			t.Fatalf("node %d updated %d times, expected 1", i, got)
		}
	}
}
