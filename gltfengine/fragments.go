package gltfengine

import (
	"fmt"
	"sync"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
	"github.com/binzume/sceneview/gltfutil"
	"github.com/qmuntal/gltf"
	"go.uber.org/zap"
)

type fragment struct {
	dbID      int
	positions []geom.Vector3
	indices   []uint32
	bounds    geom.Box3 // local
	orig      geom.Matrix4

	scale    geom.Vector3
	rotation geom.Quaternion
	position geom.Vector3
}

func (f *fragment) worldMatrix() *geom.Matrix4 {
	aux := geom.NewTRSMatrix4(&f.position, &f.rotation, &f.scale)
	return aux.Mul(&f.orig)
}

type fragmentList struct {
	mu    sync.RWMutex
	frags []*fragment
}

// readFragments reads the geometry of every fragment. Primitives that cannot be
// read keep their id with empty geometry.
func readFragments(doc *gltf.Document, refs []*fragmentRef) *fragmentList {
	l := &fragmentList{frags: make([]*fragment, len(refs))}
	for i, ref := range refs {
		f := &fragment{
			dbID:     ref.dbID,
			bounds:   *geom.NewEmptyBox3(),
			orig:     ref.world,
			scale:    geom.Vector3{X: 1, Y: 1, Z: 1},
			rotation: geom.Quaternion{W: 1},
		}
		l.frags[i] = f
		positions, indices, err := gltfutil.ReadTriangles(doc, doc.Meshes[ref.mesh].Primitives[ref.primitive])
		if err != nil {
			Logger().Warn("skip primitive", zap.Int("fragId", i), zap.Int("dbId", ref.dbID), zap.Error(err))
			continue
		}
		f.positions, f.indices = positions, indices
		for j := range positions {
			f.bounds.ExpandByPoint(&positions[j])
		}
	}
	return l
}

func (l *fragmentList) get(fragID int) (*fragment, error) {
	if fragID < 0 || fragID >= len(l.frags) {
		return nil, fmt.Errorf("%w: %d", engine.ErrInvalidFragment, fragID)
	}
	return l.frags[fragID], nil
}

func (l *fragmentList) Count() int {
	return len(l.frags)
}

func (l *fragmentList) DBID(fragID int) (int, error) {
	f, err := l.get(fragID)
	if err != nil {
		return 0, err
	}
	return f.dbID, nil
}

func (l *fragmentList) WorldBounds(fragID int, dst *geom.Box3) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, err := l.get(fragID)
	if err != nil {
		return err
	}
	*dst = *f.bounds.ApplyMatrix4(f.worldMatrix())
	return nil
}

func (l *fragmentList) OriginalWorldMatrix(fragID int, dst *geom.Matrix4) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, err := l.get(fragID)
	if err != nil {
		return err
	}
	*dst = f.orig
	return nil
}

func (l *fragmentList) AnimTransform(fragID int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, err := l.get(fragID)
	if err != nil {
		return err
	}
	if scale != nil {
		*scale = f.scale
	}
	if rotation != nil {
		*rotation = f.rotation
	}
	if position != nil {
		*position = f.position
	}
	return nil
}

func (l *fragmentList) UpdateAnimTransform(fragID int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := l.get(fragID)
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

func (l *fragmentList) WorldMatrix(fragID int, dst *geom.Matrix4) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, err := l.get(fragID)
	if err != nil {
		return err
	}
	*dst = *f.worldMatrix()
	return nil
}

// bounds returns the union of the fragments' world bounds.
func (l *fragmentList) bounds() *geom.Box3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b := geom.NewEmptyBox3()
	for _, f := range l.frags {
		b.Union(f.bounds.ApplyMatrix4(f.worldMatrix()))
	}
	return b
}

// intersect returns the nearest hit of each fragment crossed by ray. Triangles
// are tested in fragment space; distances are measured in world space.
func (l *fragmentList) intersect(ray *geom.Ray, m engine.Model) []*engine.Intersection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var hits []*engine.Intersection
	for id, f := range l.frags {
		world := f.worldMatrix()
		if world.Det() == 0 {
			continue // collapsed by a zero scale
		}
		local := ray.ApplyMatrix4(world.Inverse())
		if _, ok := local.IntersectBox(&f.bounds); !ok {
			continue
		}
		var best *engine.Intersection
		for i := 0; i+2 < len(f.indices); i += 3 {
			a, b, c := int(f.indices[i]), int(f.indices[i+1]), int(f.indices[i+2])
			t, ok := local.IntersectTriangle(&f.positions[a], &f.positions[b], &f.positions[c])
			if !ok {
				continue
			}
			p := world.ApplyTo(local.At(t))
			dist := p.Sub(&ray.Origin).Len()
			if best != nil && dist >= best.Distance {
				continue
			}
			best = &engine.Intersection{
				DBID:     f.dbID,
				FragID:   id,
				Distance: dist,
				Point:    *p,
				Face:     engine.Face{A: a, B: b, C: c},
				Model:    m,
			}
		}
		if best != nil {
			face := &best.Face
			va := world.ApplyTo(&f.positions[face.A])
			vb := world.ApplyTo(&f.positions[face.B])
			vc := world.ApplyTo(&f.positions[face.C])
			face.Normal = *vb.Sub(va).Cross(vc.Sub(va)).Normalize()
			hits = append(hits, best)
		}
	}
	return hits
}
