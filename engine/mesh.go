package engine

import "github.com/binzume/sceneview/geom"

// Mesh is a caller supplied triangle mesh rendered in an overlay scene.
type Mesh struct {
	Name      string
	Positions []geom.Vector3
	Indices   []uint32
	Matrix    geom.Matrix4
}

func NewMesh(name string, positions []geom.Vector3, indices []uint32) *Mesh {
	return &Mesh{Name: name, Positions: positions, Indices: indices, Matrix: *geom.NewMatrix4()}
}

// NewPolygonMesh triangulates a planar outline.
func NewPolygonMesh(name string, outline []*geom.Vector3) *Mesh {
	positions := make([]geom.Vector3, len(outline))
	for i, v := range outline {
		positions[i] = *v
	}
	var indices []uint32
	for _, tri := range geom.Triangulate(outline) {
		indices = append(indices, uint32(tri[0]), uint32(tri[1]), uint32(tri[2]))
	}
	return NewMesh(name, positions, indices)
}

func (m *Mesh) BoundingBox() *geom.Box3 {
	b := geom.NewEmptyBox3()
	for i := range m.Positions {
		b.ExpandByPoint(&m.Positions[i])
	}
	return b.ApplyMatrix4(&m.Matrix)
}
