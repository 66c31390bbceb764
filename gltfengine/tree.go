package gltfengine

import (
	"fmt"

	"github.com/binzume/sceneview/geom"
	"github.com/binzume/sceneview/gltfutil"
	"github.com/qmuntal/gltf"
)

// RootDBID is the synthetic scene root. glTF node i has dbID i+1.
const RootDBID = 0

type fragmentRef struct {
	dbID      int
	mesh      uint32
	primitive int
	world     geom.Matrix4
}

type objectTree struct {
	children  map[int][]int
	fragments map[int][]int
	names     map[int]string
}

// buildObjectTree lays out the node hierarchy and assigns fragment ids to mesh primitives.
func buildObjectTree(doc *gltf.Document, scene int) (*objectTree, []*fragmentRef, error) {
	t := &objectTree{
		children:  map[int][]int{},
		fragments: map[int][]int{},
		names:     map[int]string{RootDBID: "root"},
	}
	if scene >= 0 && scene < len(doc.Scenes) && doc.Scenes[scene].Name != "" {
		t.names[RootDBID] = doc.Scenes[scene].Name
	}
	var refs []*fragmentRef
	var meshErr error
	err := gltfutil.WalkScene(doc, scene, func(n uint32, parent int, world *geom.Matrix4) {
		dbID := int(n) + 1
		parentID := RootDBID
		if parent >= 0 {
			parentID = parent + 1
		}
		t.children[parentID] = append(t.children[parentID], dbID)
		node := doc.Nodes[n]
		t.names[dbID] = node.Name
		if node.Mesh == nil {
			return
		}
		if int(*node.Mesh) >= len(doc.Meshes) {
			meshErr = fmt.Errorf("node %d: mesh %d out of range", n, *node.Mesh)
			return
		}
		for i := range doc.Meshes[*node.Mesh].Primitives {
			t.fragments[dbID] = append(t.fragments[dbID], len(refs))
			refs = append(refs, &fragmentRef{dbID: dbID, mesh: *node.Mesh, primitive: i, world: *world})
		}
	})
	if err == nil {
		err = meshErr
	}
	if err != nil {
		return nil, nil, err
	}
	return t, refs, nil
}

func (t *objectTree) RootID() int {
	return RootDBID
}

func (t *objectTree) ChildCount(dbID int) int {
	return len(t.children[dbID])
}

func (t *objectTree) NodeName(dbID int) string {
	return t.names[dbID]
}

func (t *objectTree) EnumNodeChildren(dbID int, fn func(dbID int), recursive bool) {
	queue := append([]int(nil), t.children[dbID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		fn(id)
		if recursive {
			queue = append(queue, t.children[id]...)
		}
	}
}

func (t *objectTree) EnumNodeFragments(dbID int, fn func(fragID int), recursive bool) {
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
