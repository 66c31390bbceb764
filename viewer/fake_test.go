package viewer

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
)

// fakeInitializer and friends implement the engine contract in memory.
type fakeInitializer struct {
	err     error
	twice   bool
	opts    *engine.InitOptions
	viewer  *fakeViewer
	created int
}

func (i *fakeInitializer) Initialize(opts *engine.InitOptions, onSuccess func(), onError func(error)) {
	i.opts = opts
	go func() {
		if i.err != nil {
			onError(i.err)
		} else {
			onSuccess()
		}
		if i.twice {
			onError(errors.New("late failure"))
			onSuccess()
		}
	}()
}

func (i *fakeInitializer) NewViewer(container *engine.Container) (engine.Viewer, error) {
	if container == nil {
		return nil, errors.New("no container")
	}
	i.created++
	if i.viewer == nil {
		i.viewer = newFakeViewer()
	}
	i.viewer.container = *container
	return i.viewer, nil
}

type fakeDocument struct {
	urn  string
	root *engine.BubbleNode
}

func (d *fakeDocument) URN() string { return d.urn }
func (d *fakeDocument) Root() *engine.BubbleNode { return d.root }

type fakeViewer struct {
	container engine.Container
	started   bool

	mu        sync.Mutex
	docs      map[string]*fakeDocument
	docErrs   map[string]*engine.LoadError
	nodeErr   *engine.LoadError
	newModel  func(node *engine.BubbleNode) *fakeModel
	model     *fakeModel
	shown     []*engine.BubbleNode
	hits      []*engine.Intersection
	viewport  [2]float32
	overlays  *fakeOverlays
	redraws   [][3]bool
	listeners map[engine.Event][]func()

	// callbacks fire twice, success then error
	twice    bool
	delay    time.Duration
	loading  int32
	maxLoads int32
}

func newFakeViewer() *fakeViewer {
	return &fakeViewer{
		docs:      map[string]*fakeDocument{},
		docErrs:   map[string]*engine.LoadError{},
		newModel:  func(*engine.BubbleNode) *fakeModel { return newScenarioModel() },
		overlays:  &fakeOverlays{scenes: map[string][]*engine.Mesh{}},
		listeners: map[engine.Event][]func(){},
	}
}

func (v *fakeViewer) Start() error {
	if v.started {
		return errors.New("already started")
	}
	v.started = true
	return nil
}

func (v *fakeViewer) Container() *engine.Container { return &v.container }

func (v *fakeViewer) LoadDocument(urn string, onSuccess func(engine.Document), onError engine.ErrorFunc) {
	n := atomic.AddInt32(&v.loading, 1)
	for {
		cur := atomic.LoadInt32(&v.maxLoads)
		if n <= cur || atomic.CompareAndSwapInt32(&v.maxLoads, cur, n) {
			break
		}
	}
	go func() {
		time.Sleep(v.delay)
		atomic.AddInt32(&v.loading, -1)
		v.mu.Lock()
		doc, docErr := v.docs[urn], v.docErrs[urn]
		v.mu.Unlock()
		switch {
		case docErr != nil:
			onError(docErr.Code, docErr.Message)
		case doc == nil:
			onError(engine.ErrorNotFound, "no such document")
		default:
			onSuccess(doc)
			if v.twice {
				onError(engine.ErrorUnknown, "late failure")
			}
		}
	}()
}

func (v *fakeViewer) LoadDocumentNode(doc engine.Document, node *engine.BubbleNode, onSuccess func(engine.Model), onError engine.ErrorFunc) {
	go func() {
		if v.nodeErr != nil {
			onError(v.nodeErr.Code, v.nodeErr.Message)
			return
		}
		m := v.newModel(node)
		v.mu.Lock()
		v.model = m
		v.shown = append(v.shown, node)
		v.mu.Unlock()
		onSuccess(m)
		if v.twice {
			onError(engine.ErrorUnknown, "late failure")
		}
	}()
}

func (v *fakeViewer) Model() engine.Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.model == nil {
		return nil
	}
	return v.model
}

func (v *fakeViewer) ClientToViewport(x, y float32) (float32, float32) {
	vx := x/float32(v.container.Width)*2 - 1
	vy := 1 - y/float32(v.container.Height)*2
	return vx, vy
}

func (v *fakeViewer) HitTestViewport(vx, vy float32) []*engine.Intersection {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport = [2]float32{vx, vy}
	return v.hits
}

func (v *fakeViewer) Overlays() engine.OverlayManager { return v.overlays }

func (v *fakeViewer) Invalidate(needsClear, needsRender, overlayDirty bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.redraws = append(v.redraws, [3]bool{needsClear, needsRender, overlayDirty})
}

func (v *fakeViewer) AddEventListener(ev engine.Event, fn func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners[ev] = append(v.listeners[ev], fn)
	i := len(v.listeners[ev]) - 1
	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.listeners[ev][i] = nil
	}
}

func (v *fakeViewer) listenerCount(ev engine.Event) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, fn := range v.listeners[ev] {
		if fn != nil {
			n++
		}
	}
	return n
}

func (v *fakeViewer) emit(ev engine.Event) {
	v.mu.Lock()
	fns := append([]func(){}, v.listeners[ev]...)
	v.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

type fakeModel struct {
	mu    sync.Mutex
	ready map[engine.Event]bool
	tree  *fakeTree
	frags *fakeFragments
	// GetObjectTree fails with this error
	treeErr *engine.LoadError
	// GetObjectTree calls back from a goroutine
	asyncTree bool
}

// newScenarioModel is a model whose tree is
//
//	0 -> 1 -> 3, 4
//	  -> 2
//
// with one fragment on each leaf: fragment i belongs to node i+2.
func newScenarioModel() *fakeModel {
	tree := &fakeTree{
		children:  map[int][]int{0: {1, 2}, 1: {3, 4}},
		fragments: map[int][]int{2: {0}, 3: {1}, 4: {2}},
	}
	frags := &fakeFragments{}
	for i := 0; i < 3; i++ {
		frags.items = append(frags.items, &fakeFragment{
			dbID:     i + 2,
			bounds:   *geom.NewBox3(&geom.Vector3{X: float32(i)}, &geom.Vector3{X: float32(i) + 1, Y: 1, Z: 1}),
			orig:     *geom.NewTranslateMatrix4(float32(i), 0, 0),
			scale:    geom.Vector3{X: 1, Y: 1, Z: 1},
			rotation: geom.Quaternion{W: 1},
		})
	}
	return &fakeModel{
		ready: map[engine.Event]bool{engine.ObjectTreeCreated: true, engine.GeometryLoaded: true},
		tree:  tree,
		frags: frags,
	}
}

func (m *fakeModel) Ready(ev engine.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready[ev]
}

func (m *fakeModel) setReady(ev engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready[ev] = true
}

func (m *fakeModel) GetObjectTree(onSuccess func(engine.ObjectTree), onError engine.ErrorFunc) {
	call := func() {
		if m.treeErr != nil {
			onError(m.treeErr.Code, m.treeErr.Message)
			return
		}
		onSuccess(m.tree)
	}
	if m.asyncTree {
		go call()
		return
	}
	call()
}

func (m *fakeModel) FragmentList() engine.FragmentList {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frags == nil || !m.ready[engine.GeometryLoaded] {
		return nil
	}
	return m.frags
}

func (m *fakeModel) BoundingBox() *geom.Box3 { return geom.NewEmptyBox3() }

type fakeTree struct {
	children  map[int][]int
	fragments map[int][]int
}

func (t *fakeTree) RootID() int { return 0 }
func (t *fakeTree) ChildCount(dbID int) int { return len(t.children[dbID]) }
func (t *fakeTree) NodeName(dbID int) string { return "" }

func (t *fakeTree) EnumNodeChildren(dbID int, fn func(int), recursive bool) {
	queue := append([]int{}, t.children[dbID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		fn(id)
		if recursive {
			queue = append(queue, t.children[id]...)
		}
	}
}

func (t *fakeTree) EnumNodeFragments(dbID int, fn func(int), recursive bool) {
	for _, f := range t.fragments[dbID] {
		fn(f)
	}
	if recursive {
		t.EnumNodeChildren(dbID, func(id int) {
			for _, f := range t.fragments[id] {
				fn(f)
			}
		}, true)
	}
}

type fakeFragment struct {
	dbID     int
	bounds   geom.Box3
	orig     geom.Matrix4
	scale    geom.Vector3
	rotation geom.Quaternion
	position geom.Vector3
}

func (f *fakeFragment) world() *geom.Matrix4 {
	return geom.NewTRSMatrix4(&f.position, &f.rotation, &f.scale).Mul(&f.orig)
}

type fakeFragments struct {
	items []*fakeFragment
}

func (l *fakeFragments) get(id int) (*fakeFragment, error) {
	if id < 0 || id >= len(l.items) {
		return nil, engine.ErrInvalidFragment
	}
	return l.items[id], nil
}

func (l *fakeFragments) Count() int { return len(l.items) }

func (l *fakeFragments) DBID(id int) (int, error) {
	f, err := l.get(id)
	if err != nil {
		return 0, err
	}
	return f.dbID, nil
}

func (l *fakeFragments) WorldBounds(id int, dst *geom.Box3) error {
	f, err := l.get(id)
	if err != nil {
		return err
	}
	*dst = *f.bounds.ApplyMatrix4(geom.NewTRSMatrix4(&f.position, &f.rotation, &f.scale))
	return nil
}

func (l *fakeFragments) OriginalWorldMatrix(id int, dst *geom.Matrix4) error {
	f, err := l.get(id)
	if err != nil {
		return err
	}
	*dst = f.orig
	return nil
}

func (l *fakeFragments) AnimTransform(id int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error {
	f, err := l.get(id)
	if err != nil {
		return err
	}
	*scale, *rotation, *position = f.scale, f.rotation, f.position
	return nil
}

func (l *fakeFragments) UpdateAnimTransform(id int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error {
	f, err := l.get(id)
	if err != nil {
		return err
	}
	if scale != nil {
		f.scale = *scale
	}
	if rotation != nil {
		f.rotation = *rotation
	}
	if position != nil {
		f.position = *position
	}
	return nil
}

func (l *fakeFragments) WorldMatrix(id int, dst *geom.Matrix4) error {
	f, err := l.get(id)
	if err != nil {
		return err
	}
	*dst = *f.world()
	return nil
}

type fakeOverlays struct {
	mu      sync.Mutex
	scenes  map[string][]*engine.Mesh
	created []string
}

func (o *fakeOverlays) HasScene(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.scenes[name]
	return ok
}

func (o *fakeOverlays) AddScene(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.scenes[name]; ok {
		return false
	}
	o.scenes[name] = []*engine.Mesh{}
	o.created = append(o.created, name)
	return true
}

func (o *fakeOverlays) AddMesh(mesh *engine.Mesh, scene string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scenes[scene] = append(o.scenes[scene], mesh)
	return true
}

func (o *fakeOverlays) RemoveMesh(mesh *engine.Mesh, scene string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, m := range o.scenes[scene] {
		if m == mesh {
			o.scenes[scene] = append(o.scenes[scene][:i:i], o.scenes[scene][i+1:]...)
			return true
		}
	}
	return false
}

func (o *fakeOverlays) Meshes(scene string) []*engine.Mesh {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*engine.Mesh{}, o.scenes[scene]...)
}
