// Package gltfengine is a viewer engine over glTF 2.0 documents.
//
// It implements the engine contract without rendering: Invalidate only counts
// frames. Documents are addressed by base64 urns of source keys (see
// EncodeURN) and loaded from a DirSource or an HTTPSource.
package gltfengine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/binzume/sceneview/engine"
	"go.uber.org/zap"
)

type Options struct {
	// Root is the directory of a DirSource. Default: "."
	Root string
	// BaseURL selects an HTTPSource authorized by InitOptions.GetAccessToken.
	BaseURL string
	// Source overrides Root and BaseURL.
	Source Source
}

type Initializer struct {
	options *Options

	once   sync.Once
	err    error
	source Source
}

func NewInitializer(options *Options) *Initializer {
	if options == nil {
		options = &Options{}
	}
	if options.Root == "" {
		options.Root = "."
	}
	return &Initializer{options: options}
}

// Initialize configures the engine. Only the first call takes effect.
func (i *Initializer) Initialize(opts *engine.InitOptions, onSuccess func(), onError func(error)) {
	i.once.Do(func() {
		if opts == nil {
			opts = &engine.InitOptions{}
		}
		switch {
		case opts.Env != "" && opts.Env != "Local":
			i.err = fmt.Errorf("unsupported environment: %s", opts.Env)
		case i.options.Source != nil:
			i.source = i.options.Source
		case i.options.BaseURL != "":
			i.source = NewHTTPSource(i.options.BaseURL, opts.GetAccessToken)
		default:
			i.source = &DirSource{Root: i.options.Root}
		}
		Logger().Debug("engine initialized", zap.String("env", opts.Env), zap.Error(i.err))
	})
	if i.err != nil {
		onError(i.err)
		return
	}
	onSuccess()
}

func (i *Initializer) NewViewer(container *engine.Container) (engine.Viewer, error) {
	if i.source == nil {
		return nil, errors.New("engine not initialized")
	}
	if container == nil || container.Width <= 0 || container.Height <= 0 {
		return nil, errors.New("container must have a positive size")
	}
	return &Viewer3D{
		container: *container,
		source:    i.source,
		camera:    NewCamera(),
		overlays:  newOverlayManager(),
		listeners: map[engine.Event]map[int]func(){},
	}, nil
}

// Viewer3D implements engine.Viewer.
type Viewer3D struct {
	container engine.Container
	source    Source
	overlays  *overlayManager

	mu        sync.Mutex
	started   bool
	model     *Model
	camera    *Camera
	frames    int
	listeners map[engine.Event]map[int]func()
	lastID    int
}

func (v *Viewer3D) Start() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.started {
		return errors.New("viewer already started")
	}
	v.started = true
	return nil
}

func (v *Viewer3D) Container() *engine.Container {
	c := v.container
	return &c
}

func (v *Viewer3D) isStarted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.started
}

func (v *Viewer3D) LoadDocument(urn string, onSuccess func(engine.Document), onError engine.ErrorFunc) {
	if !v.isStarted() {
		onError(engine.ErrorUnknown, "viewer not started")
		return
	}
	go func() {
		doc, err := openDocument(context.Background(), v.source, urn)
		if err != nil {
			code := errorCode(err)
			if code == engine.ErrorUnknown {
				code = engine.ErrorBadData
			}
			if errors.Is(err, ErrUnsupportedDocument) {
				code = engine.ErrorUnsupported
			}
			Logger().Warn("load document failed", zap.String("urn", urn), zap.Error(err))
			onError(code, err.Error())
			return
		}
		Logger().Debug("document loaded", zap.String("urn", urn), zap.String("key", doc.key))
		onSuccess(doc)
	}()
}

// LoadDocumentNode replaces the displayed model. The callback runs once the
// object tree exists; geometry follows with the GeometryLoaded event.
func (v *Viewer3D) LoadDocumentNode(doc engine.Document, node *engine.BubbleNode, onSuccess func(engine.Model), onError engine.ErrorFunc) {
	d, ok := doc.(*Document)
	if !ok {
		onError(engine.ErrorUnsupported, fmt.Sprintf("foreign document type %T", doc))
		return
	}
	if node == nil {
		onError(engine.ErrorBadData, "no viewable")
		return
	}
	res := node
	if node.Type != engine.TypeResource {
		res = node.Resource(engine.RoleGraphics)
	}
	if res == nil || res.Role != engine.RoleGraphics {
		onError(engine.ErrorUnsupported, fmt.Sprintf("viewable %q has no graphics", node.GUID))
		return
	}

	go func() {
		gdoc, err := d.model(context.Background(), res.Path)
		if err != nil {
			onError(errorCode(err), err.Error())
			return
		}
		tree, refs, err := buildObjectTree(gdoc, res.Scene)
		if err != nil {
			onError(engine.ErrorBadData, err.Error())
			return
		}

		m := newModel(node)
		v.mu.Lock()
		prev := v.model
		v.model = m
		v.mu.Unlock()
		if prev != nil {
			prev.unload()
			v.emit(engine.ModelUnloaded)
		}

		m.setTree(tree)
		v.emit(engine.ObjectTreeCreated)
		onSuccess(m)

		frags := readFragments(gdoc, refs)
		if !m.setFragments(frags) || !v.geometryLoaded(m, frags) {
			Logger().Debug("geometry discarded", zap.String("viewable", node.Name))
			return
		}
		Logger().Debug("geometry loaded", zap.String("viewable", node.Name), zap.Int("fragments", frags.Count()))
	}()
}

func (v *Viewer3D) Model() engine.Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.model == nil {
		return nil
	}
	return v.model
}

func (v *Viewer3D) Camera() Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.camera
}

func (v *Viewer3D) SetCamera(c Camera) {
	v.mu.Lock()
	defer v.mu.Unlock()
	*v.camera = c
}

func (v *Viewer3D) ClientToViewport(x, y float32) (float32, float32) {
	w, h := float32(v.container.Width), float32(v.container.Height)
	return x/w*2 - 1, 1 - y/h*2
}

func (v *Viewer3D) HitTestViewport(vx, vy float32) []*engine.Intersection {
	v.mu.Lock()
	m := v.model
	aspect := float32(v.container.Width) / float32(v.container.Height)
	ray := v.camera.Ray(vx, vy, aspect)
	v.mu.Unlock()
	if m == nil {
		return nil
	}
	m.mu.Lock()
	frags := m.frags
	m.mu.Unlock()
	if frags == nil {
		return nil
	}
	hits := frags.intersect(ray, m)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func (v *Viewer3D) Overlays() engine.OverlayManager {
	return v.overlays
}

func (v *Viewer3D) Invalidate(needsClear, needsRender, overlayDirty bool) {
	v.mu.Lock()
	if needsClear || needsRender || overlayDirty {
		v.frames++
	}
	frames := v.frames
	v.mu.Unlock()
	Logger().Debug("invalidate",
		zap.Bool("clear", needsClear), zap.Bool("render", needsRender), zap.Bool("overlay", overlayDirty),
		zap.Int("frame", frames))
}

// Frames returns the number of redraws requested so far.
func (v *Viewer3D) Frames() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

func (v *Viewer3D) AddEventListener(ev engine.Event, fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastID++
	id := v.lastID
	if v.listeners[ev] == nil {
		v.listeners[ev] = map[int]func(){}
	}
	v.listeners[ev][id] = fn
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.listeners[ev], id)
	}
}

func (v *Viewer3D) emit(ev engine.Event) {
	v.mu.Lock()
	fns := v.listenersLocked(ev)
	v.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// geometryLoaded fits the camera and fires GeometryLoaded only while m is
// still the displayed model.
func (v *Viewer3D) geometryLoaded(m *Model, frags *fragmentList) bool {
	v.mu.Lock()
	if v.model != m {
		v.mu.Unlock()
		return false
	}
	v.camera.Fit(frags.bounds())
	fns := v.listenersLocked(engine.GeometryLoaded)
	v.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return true
}

func (v *Viewer3D) listenersLocked(ev engine.Event) []func() {
	ids := make([]int, 0, len(v.listeners[ev]))
	for id := range v.listeners[ev] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, v.listeners[ev][id])
	}
	return fns
}
