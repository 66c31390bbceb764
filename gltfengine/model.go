package gltfengine

import (
	"sync"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
)

type treeRequest struct {
	onSuccess func(engine.ObjectTree)
	onError   engine.ErrorFunc
}

// Model is a displayed glTF scene.
type Model struct {
	node *engine.BubbleNode

	mu       sync.Mutex
	ready    map[engine.Event]bool
	tree     *objectTree
	frags    *fragmentList
	pending  []treeRequest
	unloaded bool
}

func newModel(node *engine.BubbleNode) *Model {
	return &Model{node: node, ready: map[engine.Event]bool{}}
}

// Viewable returns the bubble node the model was loaded from.
func (m *Model) Viewable() *engine.BubbleNode {
	return m.node
}

func (m *Model) Ready(ev engine.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready[ev]
}

// GetObjectTree calls back immediately when the tree exists, otherwise once it is built.
func (m *Model) GetObjectTree(onSuccess func(engine.ObjectTree), onError engine.ErrorFunc) {
	m.mu.Lock()
	switch {
	case m.tree != nil:
		tree := m.tree
		m.mu.Unlock()
		onSuccess(tree)
	case m.unloaded:
		m.mu.Unlock()
		onError(engine.ErrorCanceled, "model unloaded")
	default:
		m.pending = append(m.pending, treeRequest{onSuccess, onError})
		m.mu.Unlock()
	}
}

func (m *Model) FragmentList() engine.FragmentList {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frags == nil {
		return nil
	}
	return m.frags
}

func (m *Model) BoundingBox() *geom.Box3 {
	m.mu.Lock()
	frags := m.frags
	m.mu.Unlock()
	if frags == nil {
		return geom.NewEmptyBox3()
	}
	return frags.bounds()
}

func (m *Model) setTree(tree *objectTree) {
	m.mu.Lock()
	m.tree = tree
	m.ready[engine.ObjectTreeCreated] = true
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, r := range pending {
		r.onSuccess(tree)
	}
}

// setFragments reports false if the model was unloaded meanwhile.
func (m *Model) setFragments(frags *fragmentList) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unloaded {
		return false
	}
	m.frags = frags
	m.ready[engine.GeometryLoaded] = true
	return true
}

func (m *Model) unload() {
	m.mu.Lock()
	m.unloaded = true
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, r := range pending {
		r.onError(engine.ErrorCanceled, "model unloaded")
	}
}
