package gltfengine

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/binzume/sceneview/engine"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/require"
)

// newTestDocument builds two scenes. Scene 0:
//
//	root(0) -> assembly(1) -> left(3), back(4)
//	        -> center(2)
//
// Every mesh node holds a 2x2 quad in the XY plane. center is at the origin,
// back is behind it at z=-1, left is at x=-3.
func newTestDocument(t *testing.T, withImage bool) *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{"POSITION": pos},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "assembly", Children: []uint32{2, 3}},
		{Name: "center", Mesh: gltf.Index(0)},
		{Name: "left", Mesh: gltf.Index(0), Translation: [3]float32{-3, 0, 0}},
		{Name: "back", Mesh: gltf.Index(0), Translation: [3]float32{0, 0, -1}},
	}
	doc.Scenes[0].Name = "Main"
	doc.Scenes[0].Nodes = []uint32{0, 1}
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Nodes: []uint32{1}})

	if withImage {
		_, err := modeler.WriteImage(doc, "thumb.png", "image/png", bytes.NewReader(pngBytes(t, 64, 32)))
		require.NoError(t, err)
	}
	doc.Buffers[0].ByteLength = uint32(len(doc.Buffers[0].Data))
	return doc
}

func pngBytes(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeTestModel(t *testing.T, dir, name string, withImage bool) {
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, gltf.SaveBinary(newTestDocument(t, withImage), filepath.Join(dir, name)))
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func newTestViewer(t *testing.T, dir string) *Viewer3D {
	init := NewInitializer(&Options{Root: dir})
	var initErr error
	init.Initialize(&engine.InitOptions{}, func() {}, func(err error) { initErr = err })
	require.NoError(t, initErr)
	v, err := init.NewViewer(&engine.Container{Width: 100, Height: 100})
	require.NoError(t, err)
	require.NoError(t, v.Start())
	return v.(*Viewer3D)
}

func loadDocument(t *testing.T, v *Viewer3D, urn string) engine.Document {
	docCh := make(chan engine.Document, 1)
	errCh := make(chan *engine.LoadError, 1)
	v.LoadDocument(urn, func(d engine.Document) { docCh <- d }, func(code engine.ErrorCode, msg string) {
		errCh <- &engine.LoadError{Code: code, Message: msg}
	})
	select {
	case d := <-docCh:
		return d
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("LoadDocument timed out")
	}
	return nil
}

func showViewable(t *testing.T, v *Viewer3D, doc engine.Document, node *engine.BubbleNode) engine.Model {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	geometry := make(chan struct{}, 1)
	remove := v.AddEventListener(engine.GeometryLoaded, func() {
		select {
		case geometry <- struct{}{}:
		default:
		}
	})
	defer remove()

	modelCh := make(chan engine.Model, 1)
	errCh := make(chan *engine.LoadError, 1)
	v.LoadDocumentNode(doc, node, func(m engine.Model) { modelCh <- m }, func(code engine.ErrorCode, msg string) {
		errCh <- &engine.LoadError{Code: code, Message: msg}
	})
	var m engine.Model
	select {
	case m = <-modelCh:
	case err := <-errCh:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("LoadDocumentNode timed out")
	}
	if !m.Ready(engine.GeometryLoaded) {
		select {
		case <-geometry:
		case <-ctx.Done():
			t.Fatal("geometry not loaded")
		}
	}
	return m
}
