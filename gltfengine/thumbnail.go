package gltfengine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"path"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/gltfutil"
	"github.com/blezek/tga"
	_ "github.com/oov/psd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

var ErrNoThumbnail = errors.New("document has no thumbnail")

// Thumbnail decodes the document thumbnail, scaled to fit maxSize (0: original size).
func (d *Document) Thumbnail(ctx context.Context, maxSize int) (image.Image, error) {
	node := d.root.Resource(engine.RoleThumbnail)
	if node == nil {
		return nil, ErrNoThumbnail
	}

	var data []byte
	if isModelFile(node.Path) {
		doc, err := d.model(ctx, node.Path)
		if err != nil {
			return nil, err
		}
		if len(doc.Images) == 0 {
			return nil, ErrNoThumbnail
		}
		h := &sourceHandler{ctx: ctx, source: d.source, dir: path.Dir(node.Path)}
		data, err = gltfutil.ImageData(doc, doc.Images[0], h.open)
		if err != nil {
			return nil, err
		}
	} else {
		r, err := d.source.Open(ctx, node.Path)
		if err != nil {
			return nil, err
		}
		data, err = io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, err
		}
	}

	img, err := decodeImage(data, node.Path)
	if err != nil {
		return nil, err
	}
	return scaleImage(img, maxSize), nil
}

func decodeImage(data []byte, name string) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil && strings.ToLower(path.Ext(name)) == ".tga" {
		// tga has no magic number
		img, err = tga.Decode(bytes.NewReader(data))
	}
	return img, err
}

func scaleImage(img image.Image, maxSize int) image.Image {
	rect := img.Bounds()
	sz := rect.Dx()
	if rect.Dy() > sz {
		sz = rect.Dy()
	}
	if maxSize <= 0 || sz <= maxSize {
		return img
	}
	scale := float64(maxSize) / float64(sz)
	w, h := int(float64(rect.Dx())*scale), int(float64(rect.Dy())*scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect, draw.Over, nil)
	return dst
}
