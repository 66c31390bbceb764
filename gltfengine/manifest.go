package gltfengine

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
	yaml "gopkg.in/yaml.v2"
)

// Manifest describes a document made of several model files.
//
//	name: Building
//	thumbnail: thumb.png
//	viewables:
//	  - name: Architecture
//	    file: arch.glb
//	  - name: Plan
//	    role: 2d
//	    file: plan.gltf
//	    scene: 1
type Manifest struct {
	Name      string              `yaml:"name"`
	Thumbnail string              `yaml:"thumbnail"`
	Viewables []*ManifestViewable `yaml:"viewables"`
}

type ManifestViewable struct {
	GUID  string `yaml:"guid"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
	File  string `yaml:"file"`
	Scene int    `yaml:"scene"`
}

// ParseManifest decodes a manifest. Data that is not valid UTF-8 is read as Shift_JIS.
func ParseManifest(data []byte) (*Manifest, error) {
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
		if err != nil {
			return nil, err
		}
		data = decoded
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for i, v := range m.Viewables {
		if v == nil || v.File == "" {
			return nil, fmt.Errorf("viewable %d: file is required", i)
		}
	}
	return &m, nil
}
