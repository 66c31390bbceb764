package gltfutil

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/binzume/sceneview/geom"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Decode reads a .gltf or .glb stream. External buffers are resolved by handler.
func Decode(r io.Reader, handler gltf.ReadHandler) (*gltf.Document, error) {
	var doc gltf.Document
	dec := gltf.NewDecoder(r)
	if handler != nil {
		dec = dec.WithReadHandler(handler)
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DefaultScene returns the index of the scene to display, or -1 if the
// document has no scenes. An out of range default falls back to scene 0.
func DefaultScene(doc *gltf.Document) int {
	if len(doc.Scenes) == 0 {
		return -1
	}
	if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
		return int(*doc.Scene)
	}
	return 0
}

// NodeMatrix returns the local transform of the node.
func NodeMatrix(n *gltf.Node) *geom.Matrix4 {
	if n.Matrix != identity && n.Matrix != [16]float32{} {
		return geom.NewMatrix4FromSlice(n.Matrix[:])
	}
	rot := n.Rotation
	if rot == [4]float32{} {
		rot = [4]float32{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	return geom.NewTRSMatrix4(geom.NewVector3FromArray(n.Translation), geom.NewQuaternionFromArray(rot), geom.NewVector3FromArray(scale))
}

// WalkScene visits the nodes of a scene depth first. parent is -1 for scene roots.
func WalkScene(doc *gltf.Document, scene int, fn func(node uint32, parent int, world *geom.Matrix4)) error {
	if scene < 0 || scene >= len(doc.Scenes) {
		return fmt.Errorf("scene %d not found", scene)
	}
	visited := map[uint32]bool{}
	var walk func(n uint32, parent int, parentMat *geom.Matrix4) error
	walk = func(n uint32, parent int, parentMat *geom.Matrix4) error {
		if int(n) >= len(doc.Nodes) {
			return fmt.Errorf("node %d out of range", n)
		}
		if visited[n] {
			return fmt.Errorf("node %d appears twice in scene %d", n, scene)
		}
		visited[n] = true
		node := doc.Nodes[n]
		world := parentMat.Mul(NodeMatrix(node))
		fn(n, parent, world)
		for _, c := range node.Children {
			if err := walk(c, int(n), world); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range doc.Scenes[scene].Nodes {
		if err := walk(n, -1, geom.NewMatrix4()); err != nil {
			return err
		}
	}
	return nil
}

// ReadTriangles returns the local positions and triangle indices of a primitive.
func ReadTriangles(doc *gltf.Document, p *gltf.Primitive) ([]geom.Vector3, []uint32, error) {
	if p.Mode != gltf.PrimitiveTriangles {
		return nil, nil, fmt.Errorf("unsupported primitive mode: %v", p.Mode)
	}
	a, ok := p.Attributes["POSITION"]
	if !ok || int(a) >= len(doc.Accessors) {
		return nil, nil, fmt.Errorf("primitive has no POSITION")
	}
	pos, err := modeler.ReadPosition(doc, doc.Accessors[a], [][3]float32{})
	if err != nil {
		return nil, nil, err
	}
	positions := make([]geom.Vector3, len(pos))
	for i, v := range pos {
		positions[i] = *geom.NewVector3FromArray(v)
	}

	var indices []uint32
	if p.Indices != nil {
		if int(*p.Indices) >= len(doc.Accessors) {
			return nil, nil, fmt.Errorf("indices accessor %d out of range", *p.Indices)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], []uint32{})
		if err != nil {
			return nil, nil, err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	indices = indices[:len(indices)/3*3]
	for _, i := range indices {
		if int(i) >= len(positions) {
			return nil, nil, fmt.Errorf("vertex index %d out of range", i)
		}
	}
	return positions, indices, nil
}

// ImageData returns the encoded bytes of an image. open resolves external URIs.
func ImageData(doc *gltf.Document, img *gltf.Image, open func(uri string) (io.ReadCloser, error)) ([]byte, error) {
	if img.BufferView != nil {
		if int(*img.BufferView) >= len(doc.BufferViews) {
			return nil, fmt.Errorf("bufferView %d out of range", *img.BufferView)
		}
		bv := doc.BufferViews[*img.BufferView]
		if int(bv.Buffer) >= len(doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if int(end) > len(data) {
			return nil, fmt.Errorf("bufferView %d exceeds buffer", *img.BufferView)
		}
		return data[bv.ByteOffset:end], nil
	}
	if strings.HasPrefix(img.URI, "data:") {
		i := strings.Index(img.URI, ";base64,")
		if i < 0 {
			return nil, fmt.Errorf("unsupported data uri")
		}
		return base64.StdEncoding.DecodeString(img.URI[i+len(";base64,"):])
	}
	if img.URI == "" || open == nil {
		return nil, fmt.Errorf("image %q has no data", img.Name)
	}
	r, err := open(img.URI)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
