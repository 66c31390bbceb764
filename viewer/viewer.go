// Package viewer is a blocking facade over a 3D viewer engine.
//
// Engine callbacks are settled exactly once and turned into plain error
// returns. Operations that need a displayed model fail with ErrModelNotLoaded,
// ErrTreeNotAvailable or ErrFragmentsNotAvailable until the engine reports the
// corresponding readiness event (see WaitFor).
package viewer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/binzume/sceneview/engine"
)

// DefaultOverlay is the overlay scene used when no name is given.
const DefaultOverlay = "sceneview-overlay"

type Viewer struct {
	engine engine.Viewer
	loadMu sync.Mutex
}

// Initialize initializes the engine, creates a viewer bound to container and starts it.
// getAccessToken is called by the engine whenever it needs a fresh token.
func Initialize(ctx context.Context, init engine.Initializer, container *engine.Container, getAccessToken engine.AccessTokenProvider) (*Viewer, error) {
	s := newSettler[struct{}]()
	init.Initialize(&engine.InitOptions{GetAccessToken: getAccessToken},
		func() { s.resolve(struct{}{}) },
		s.reject)
	if _, err := s.wait(ctx); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	v, err := init.NewViewer(container)
	if err != nil {
		return nil, fmt.Errorf("new viewer: %w", err)
	}
	if err := v.Start(); err != nil {
		return nil, fmt.Errorf("start viewer: %w", err)
	}
	return New(v), nil
}

// New wraps a started engine viewer.
func New(v engine.Viewer) *Viewer {
	return &Viewer{engine: v}
}

func (v *Viewer) Engine() engine.Viewer {
	return v.engine
}

// Selector picks a viewable of a document.
// The zero value selects the first geometry viewable.
type Selector struct {
	byGUID bool
	guid   string
	index  int
}

// ByGUID selects the viewable with the given guid.
// An empty guid matches nothing.
func ByGUID(guid string) Selector {
	return Selector{byGUID: true, guid: guid}
}

// ByIndex selects the i-th geometry viewable in document order.
func ByIndex(i int) Selector {
	return Selector{index: i}
}

func (s Selector) String() string {
	if s.byGUID {
		return fmt.Sprintf("guid %q", s.guid)
	}
	return fmt.Sprintf("index %d", s.index)
}

func (s Selector) resolve(root *engine.BubbleNode) (*engine.BubbleNode, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: document has no viewables", ErrViewableNotFound)
	}
	if s.byGUID {
		if n := root.FindByGUID(s.guid); s.guid != "" && n != nil {
			return n, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrViewableNotFound, s)
	}
	geometries := root.Search(engine.BubbleFilter{Type: engine.TypeGeometry})
	if s.index < 0 || s.index >= len(geometries) {
		return nil, fmt.Errorf("%w: %v (document has %d geometry viewables)", ErrViewableNotFound, s, len(geometries))
	}
	return geometries[s.index], nil
}

// Load loads the document urn and displays the selected viewable.
// It returns once the engine accepted the viewable; geometry may still be
// loading. Overlapping calls run one after another.
func (v *Viewer) Load(ctx context.Context, urn string, sel Selector) (*engine.BubbleNode, error) {
	v.loadMu.Lock()
	defer v.loadMu.Unlock()

	ds := newSettler[engine.Document]()
	v.engine.LoadDocument(urn, ds.resolve, func(code engine.ErrorCode, message string) {
		ds.reject(engineError(code, message))
	})
	doc, err := ds.wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", urn, err)
	}

	node, err := sel.resolve(doc.Root())
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", urn, err)
	}

	ms := newSettler[engine.Model]()
	v.engine.LoadDocumentNode(doc, node, ms.resolve, func(code engine.ErrorCode, message string) {
		ms.reject(engineError(code, message))
	})
	if _, err := ms.wait(ctx); err != nil {
		return nil, fmt.Errorf("load viewable %q: %w", node.Name, err)
	}
	return node, nil
}

// WaitFor blocks until the displayed model is ready for ev.
func (v *Viewer) WaitFor(ctx context.Context, ev engine.Event) error {
	fired := make(chan struct{}, 1)
	remove := v.engine.AddEventListener(ev, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	defer remove()

	ready := func() bool {
		m := v.engine.Model()
		return m != nil && m.Ready(ev)
	}
	if ready() {
		return nil
	}
	for {
		select {
		case <-fired:
			// A superseded model may still fire; only the current one counts.
			if ev == engine.ModelUnloaded || ready() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RayCast returns the intersections under the canvas pixel (x, y), nearest first.
func (v *Viewer) RayCast(x, y float32) []*engine.Intersection {
	vx, vy := v.engine.ClientToViewport(x, y)
	hits := v.engine.HitTestViewport(vx, vy)
	result := make([]*engine.Intersection, 0, len(hits))
	for _, h := range hits {
		if h != nil {
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Distance < result[j].Distance })
	return result
}

func (v *Viewer) overlayScene(name string) (engine.OverlayManager, string) {
	if name == "" {
		name = DefaultOverlay
	}
	o := v.engine.Overlays()
	if !o.HasScene(name) {
		o.AddScene(name)
	}
	return o, name
}

// AddCustomMesh adds mesh to an overlay scene, creating the scene on first use.
// An empty overlay name means DefaultOverlay.
func (v *Viewer) AddCustomMesh(mesh *engine.Mesh, overlay string) {
	o, name := v.overlayScene(overlay)
	o.AddMesh(mesh, name)
	v.engine.Invalidate(false, false, true)
}

// RemoveCustomMesh removes mesh from an overlay scene. Meshes that are not in
// the scene are ignored.
func (v *Viewer) RemoveCustomMesh(mesh *engine.Mesh, overlay string) {
	o, name := v.overlayScene(overlay)
	o.RemoveMesh(mesh, name)
	v.engine.Invalidate(false, false, true)
}

// Refresh redraws the model, overlays and lighting.
// It is expensive; call it once after a batch of transform updates.
func (v *Viewer) Refresh() {
	v.engine.Invalidate(true, true, true)
}
