package epidemic

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Updatable is anything the simulation can advance by a time delta. An
// entity updates itself first, then exposes the children to advance after
// it; nothing is aggregated back up, only mutation side effects matter.
type Updatable interface {
	UpdateSelf(delta time.Duration)
	UpdateChildren() []Updatable
}

// Update walks the tree depth-first pre-order on the calling goroutine.
func Update(u Updatable, delta time.Duration) {
	u.UpdateSelf(delta)
	for _, child := range u.UpdateChildren() {
		Update(child, delta)
	}
}

// UpdateParallel updates the root, then fans the children out across a
// bounded worker group, each child subtree applying the same rule. Subtrees
// encountered while the pool is saturated are walked inline on the worker
// that found them, so the walk always makes progress and never exceeds the
// CPU-bound worker count.
func UpdateParallel(u Updatable, delta time.Duration) {
	u.UpdateSelf(delta)
	children := u.UpdateChildren()
	if len(children) == 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	var walk func(node Updatable)
	walk = func(node Updatable) {
		node.UpdateSelf(delta)
		for _, child := range node.UpdateChildren() {
			child := child
			if !g.TryGo(func() error { walk(child); return nil }) {
				walk(child)
			}
		}
	}

	for _, child := range children {
		child := child
		g.Go(func() error { walk(child); return nil })
	}
	_ = g.Wait()
}
