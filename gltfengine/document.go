package gltfengine

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/gltfutil"
	"github.com/qmuntal/gltf"
)

var ErrUnsupportedDocument = errors.New("unsupported document type")

type Document struct {
	urn    string
	key    string
	root   *engine.BubbleNode
	source Source

	mu sync.Mutex
	// models decoded while loading, keyed by source path
	models map[string]*gltf.Document
}

func (d *Document) URN() string {
	return d.urn
}

func (d *Document) Root() *engine.BubbleNode {
	return d.root
}

func isModelFile(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	return ext == ".gltf" || ext == ".glb"
}

func isManifest(key string) bool {
	ext := strings.ToLower(path.Ext(key))
	return ext == ".yaml" || ext == ".yml"
}

func modelMime(key string) string {
	if strings.ToLower(path.Ext(key)) == ".glb" {
		return "model/gltf-binary"
	}
	return "model/gltf+json"
}

func imageMime(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tga":
		return "image/x-tga"
	case ".psd":
		return "image/vnd.adobe.photoshop"
	}
	return "application/octet-stream"
}

// newGUID derives a stable uuid-formatted id.
func newGUID(parts ...string) string {
	h := sha1.Sum([]byte(strings.Join(parts, "/")))
	return fmt.Sprintf("%x-%x-%x-%x-%x", h[0:4], h[4:6], h[6:8], h[8:10], h[10:16])
}

func loadModel(ctx context.Context, src Source, key string) (*gltf.Document, error) {
	r, err := src.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return gltfutil.Decode(r, &sourceHandler{ctx: ctx, source: src, dir: path.Dir(cleanKey(key))})
}

// sceneOrder lists the scene indices with the default scene first.
func sceneOrder(doc *gltf.Document) []int {
	def := gltfutil.DefaultScene(doc)
	if def < 0 {
		return nil
	}
	order := []int{def}
	for i := range doc.Scenes {
		if i != def {
			order = append(order, i)
		}
	}
	return order
}

func openDocument(ctx context.Context, src Source, urn string) (*Document, error) {
	key, err := DecodeURN(urn)
	if err != nil {
		return nil, err
	}
	key = cleanKey(key)
	d := &Document{urn: urn, key: key, source: src, models: map[string]*gltf.Document{}}
	b := &bubbleBuilder{}
	d.root = b.node(&engine.BubbleNode{
		GUID: newGUID(urn),
		Name: strings.TrimSuffix(path.Base(key), path.Ext(key)),
		Type: engine.TypeFolder,
		Role: engine.RoleViewable,
	})

	switch {
	case isModelFile(key):
		doc, err := loadModel(ctx, src, key)
		if err != nil {
			return nil, err
		}
		d.models[key] = doc
		for _, i := range sceneOrder(doc) {
			s := doc.Scenes[i]
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("Scene %d", i+1)
			}
			b.addGeometry(d.root, urn, i, name, engine.Role3D, key, i)
		}
		if len(doc.Images) > 0 {
			b.addThumbnail(d.root, urn, key, modelMime(key))
		}
	case isManifest(key):
		r, err := src.Open(ctx, key)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, err
		}
		m, err := ParseManifest(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if m.Name != "" {
			d.root.Name = m.Name
		}
		dir := path.Dir(key)
		for i, v := range m.Viewables {
			file := path.Join(dir, v.File)
			name := v.Name
			if name == "" {
				name = strings.TrimSuffix(path.Base(file), path.Ext(file))
			}
			role := v.Role
			if role == "" {
				role = engine.Role3D
			}
			g := b.addGeometry(d.root, urn, i, name, role, file, v.Scene)
			if v.GUID != "" {
				g.GUID = v.GUID
			}
		}
		if m.Thumbnail != "" {
			file := path.Join(dir, m.Thumbnail)
			b.addThumbnail(d.root, urn, file, imageMime(file))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDocument, key)
	}
	return d, nil
}

type bubbleBuilder struct {
	lastID int
}

func (b *bubbleBuilder) node(n *engine.BubbleNode) *engine.BubbleNode {
	b.lastID++
	n.ID = b.lastID
	return n
}

func (b *bubbleBuilder) addGeometry(parent *engine.BubbleNode, urn string, index int, name, role, file string, scene int) *engine.BubbleNode {
	g := parent.AddChild(b.node(&engine.BubbleNode{
		GUID: newGUID(urn, "viewable", fmt.Sprint(index)),
		Name: name,
		Type: engine.TypeGeometry,
		Role: role,
	}))
	g.AddChild(b.node(&engine.BubbleNode{
		GUID:  newGUID(urn, "viewable", fmt.Sprint(index), engine.RoleGraphics),
		Name:  name,
		Type:  engine.TypeResource,
		Role:  engine.RoleGraphics,
		Mime:  modelMime(file),
		Path:  file,
		Scene: scene,
	}))
	return g
}

func (b *bubbleBuilder) addThumbnail(parent *engine.BubbleNode, urn, file, mime string) {
	parent.AddChild(b.node(&engine.BubbleNode{
		GUID: newGUID(urn, engine.RoleThumbnail),
		Name: engine.RoleThumbnail,
		Type: engine.TypeResource,
		Role: engine.RoleThumbnail,
		Mime: mime,
		Path: file,
	}))
}

// model returns the decoded glTF document of a graphics resource.
func (d *Document) model(ctx context.Context, key string) (*gltf.Document, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.models[key]; ok {
		return doc, nil
	}
	doc, err := loadModel(ctx, d.source, key)
	if err != nil {
		return nil, err
	}
	d.models[key] = doc
	return doc, nil
}
