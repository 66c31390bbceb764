// Package engine declares the contract of a 3D viewer engine: document
// loading, object tree, fragment list, ray casting and overlay scenes.
//
// Engines report asynchronous results through success/error callbacks which
// may run on any goroutine. Implementations must invoke exactly one of the two
// callbacks per request.
package engine

import "github.com/binzume/sceneview/geom"

// AccessTokenProvider is invoked whenever the engine needs a fresh token.
// The provider must eventually call done with the token and its lifetime in seconds.
type AccessTokenProvider func(done func(token string, expiresIn int))

type InitOptions struct {
	Env            string
	GetAccessToken AccessTokenProvider
}

// Container is the rendering surface a viewer is bound to.
type Container struct {
	Width  int
	Height int
}

type Initializer interface {
	Initialize(opts *InitOptions, onSuccess func(), onError func(error))
	NewViewer(container *Container) (Viewer, error)
}

type ErrorFunc func(code ErrorCode, message string)

type Viewer interface {
	Start() error
	Container() *Container

	LoadDocument(urn string, onSuccess func(Document), onError ErrorFunc)
	LoadDocumentNode(doc Document, node *BubbleNode, onSuccess func(Model), onError ErrorFunc)
	// Model returns the displayed model, or nil.
	Model() Model

	ClientToViewport(x, y float32) (float32, float32)
	// HitTestViewport returns intersections sorted by distance.
	HitTestViewport(vx, vy float32) []*Intersection

	Overlays() OverlayManager
	Invalidate(needsClear, needsRender, overlayDirty bool)

	AddEventListener(ev Event, fn func()) (remove func())
}

type Document interface {
	URN() string
	Root() *BubbleNode
}

type Model interface {
	Ready(ev Event) bool
	GetObjectTree(onSuccess func(ObjectTree), onError ErrorFunc)
	// FragmentList returns nil until GeometryLoaded.
	FragmentList() FragmentList
	BoundingBox() *geom.Box3
}

type ObjectTree interface {
	RootID() int
	ChildCount(dbID int) int
	NodeName(dbID int) string
	// EnumNodeChildren visits the children of dbID, or all descendants in
	// level order when recursive. dbID itself is not visited.
	EnumNodeChildren(dbID int, fn func(dbID int), recursive bool)
	EnumNodeFragments(dbID int, fn func(fragID int), recursive bool)
}

type FragmentList interface {
	Count() int
	DBID(fragID int) (int, error)
	WorldBounds(fragID int, dst *geom.Box3) error
	OriginalWorldMatrix(fragID int, dst *geom.Matrix4) error
	AnimTransform(fragID int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error
	// UpdateAnimTransform leaves nil components unchanged.
	UpdateAnimTransform(fragID int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error
	// WorldMatrix is the animation transform applied after the original one.
	WorldMatrix(fragID int, dst *geom.Matrix4) error
}

type OverlayManager interface {
	HasScene(name string) bool
	AddScene(name string) bool
	AddMesh(mesh *Mesh, scene string) bool
	// RemoveMesh returns false if mesh is not in the scene.
	RemoveMesh(mesh *Mesh, scene string) bool
	Meshes(scene string) []*Mesh
}

type Face struct {
	A, B, C int
	Normal  geom.Vector3
}

type Intersection struct {
	DBID     int
	FragID   int
	Distance float32
	Point    geom.Vector3
	Face     Face
	Model    Model
}
