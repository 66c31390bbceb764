package gltfengine

import (
	"sync"

	"github.com/binzume/sceneview/engine"
)

type overlayManager struct {
	mu     sync.Mutex
	scenes map[string][]*engine.Mesh
}

func newOverlayManager() *overlayManager {
	return &overlayManager{scenes: map[string][]*engine.Mesh{}}
}

func (o *overlayManager) HasScene(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.scenes[name]
	return ok
}

func (o *overlayManager) AddScene(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.scenes[name]; ok {
		return false
	}
	o.scenes[name] = nil
	return true
}

func (o *overlayManager) AddMesh(mesh *engine.Mesh, scene string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	meshes, ok := o.scenes[scene]
	if !ok {
		return false
	}
	for _, m := range meshes {
		if m == mesh {
			return false
		}
	}
	o.scenes[scene] = append(meshes, mesh)
	return true
}

func (o *overlayManager) RemoveMesh(mesh *engine.Mesh, scene string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	meshes := o.scenes[scene]
	for i, m := range meshes {
		if m == mesh {
			o.scenes[scene] = append(meshes[:i:i], meshes[i+1:]...)
			return true
		}
	}
	return false
}

func (o *overlayManager) Meshes(scene string) []*engine.Mesh {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*engine.Mesh(nil), o.scenes[scene]...)
}
