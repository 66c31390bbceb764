package viewer

import (
	"context"

	"github.com/binzume/sceneview/engine"
)

// readyTree returns the object tree without waiting.
func (v *Viewer) readyTree() (engine.ObjectTree, error) {
	m := v.engine.Model()
	if m == nil {
		return nil, ErrModelNotLoaded
	}
	if !m.Ready(engine.ObjectTreeCreated) {
		return nil, ErrTreeNotAvailable
	}
	s := newSettler[engine.ObjectTree]()
	m.GetObjectTree(s.resolve, func(code engine.ErrorCode, message string) {
		s.reject(engineError(code, message))
	})
	tree, ok, err := s.poll()
	switch {
	case err != nil:
		return nil, err
	case !ok || tree == nil:
		return nil, ErrTreeNotAvailable
	}
	return tree, nil
}

// waitTree returns the object tree once the engine has built it.
func (v *Viewer) waitTree(ctx context.Context) (engine.ObjectTree, error) {
	m := v.engine.Model()
	if m == nil {
		return nil, ErrModelNotLoaded
	}
	s := newSettler[engine.ObjectTree]()
	m.GetObjectTree(s.resolve, func(code engine.ErrorCode, message string) {
		s.reject(engineError(code, message))
	})
	tree, err := s.wait(ctx)
	if err == nil && tree == nil {
		err = ErrTreeNotAvailable
	}
	return tree, err
}

func startNode(tree engine.ObjectTree, parent []int) int {
	if len(parent) > 0 {
		return parent[0]
	}
	return tree.RootID()
}

func walkNodes(tree engine.ObjectTree, parent []int, leavesOnly bool, fn func(dbID int)) {
	tree.EnumNodeChildren(startNode(tree, parent), func(dbID int) {
		if !leavesOnly || tree.ChildCount(dbID) == 0 {
			fn(dbID)
		}
	}, true)
}

func walkFragments(tree engine.ObjectTree, parent []int, fn func(fragID int)) {
	tree.EnumNodeFragments(startNode(tree, parent), fn, true)
}

// EnumerateNodes calls fn for every node below parent (default: the tree
// root) in level order. The parent itself is not visited.
func (v *Viewer) EnumerateNodes(fn func(dbID int), parent ...int) error {
	tree, err := v.readyTree()
	if err != nil {
		return err
	}
	walkNodes(tree, parent, false, fn)
	return nil
}

// EnumerateLeafNodes is EnumerateNodes restricted to nodes without children.
func (v *Viewer) EnumerateLeafNodes(fn func(dbID int), parent ...int) error {
	tree, err := v.readyTree()
	if err != nil {
		return err
	}
	walkNodes(tree, parent, true, fn)
	return nil
}

// EnumerateFragments calls fn for the fragments of parent and its descendants.
func (v *Viewer) EnumerateFragments(fn func(fragID int), parent ...int) error {
	tree, err := v.readyTree()
	if err != nil {
		return err
	}
	walkFragments(tree, parent, fn)
	return nil
}

// ListNodes waits for the object tree and returns what EnumerateNodes visits.
func (v *Viewer) ListNodes(ctx context.Context, parent ...int) ([]int, error) {
	tree, err := v.waitTree(ctx)
	if err != nil {
		return nil, err
	}
	ids := []int{}
	walkNodes(tree, parent, false, func(dbID int) { ids = append(ids, dbID) })
	return ids, nil
}

func (v *Viewer) ListLeafNodes(ctx context.Context, parent ...int) ([]int, error) {
	tree, err := v.waitTree(ctx)
	if err != nil {
		return nil, err
	}
	ids := []int{}
	walkNodes(tree, parent, true, func(dbID int) { ids = append(ids, dbID) })
	return ids, nil
}

func (v *Viewer) ListFragments(ctx context.Context, parent ...int) ([]int, error) {
	tree, err := v.waitTree(ctx)
	if err != nil {
		return nil, err
	}
	ids := []int{}
	walkFragments(tree, parent, func(fragID int) { ids = append(ids, fragID) })
	return ids, nil
}
