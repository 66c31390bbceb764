package viewer

import (
	"github.com/binzume/sceneview/engine"
	"github.com/binzume/sceneview/geom"
)

// AuxTransform is the animation transform applied on top of a fragment's
// original transform.
type AuxTransform struct {
	Scale    geom.Vector3
	Rotation geom.Quaternion
	Position geom.Vector3
}

// Matrix returns the transform as a matrix.
func (a *AuxTransform) Matrix() *geom.Matrix4 {
	return geom.NewTRSMatrix4(&a.Position, &a.Rotation, &a.Scale)
}

func (v *Viewer) fragments() (engine.FragmentList, error) {
	m := v.engine.Model()
	if m == nil {
		return nil, ErrFragmentsNotAvailable
	}
	fl := m.FragmentList()
	if fl == nil {
		return nil, ErrFragmentsNotAvailable
	}
	return fl, nil
}

// FragmentBounds returns the world bounding box of a fragment.
func (v *Viewer) FragmentBounds(fragID int) (*geom.Box3, error) {
	fl, err := v.fragments()
	if err != nil {
		return nil, err
	}
	var b geom.Box3
	if err := fl.WorldBounds(fragID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// FragmentOrigTransform returns the transform of a fragment as loaded.
func (v *Viewer) FragmentOrigTransform(fragID int) (*geom.Matrix4, error) {
	fl, err := v.fragments()
	if err != nil {
		return nil, err
	}
	var m geom.Matrix4
	if err := fl.OriginalWorldMatrix(fragID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (v *Viewer) FragmentAuxTransform(fragID int) (*AuxTransform, error) {
	fl, err := v.fragments()
	if err != nil {
		return nil, err
	}
	var a AuxTransform
	if err := fl.AnimTransform(fragID, &a.Scale, &a.Rotation, &a.Position); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetFragmentAuxTransform updates the animation transform of a fragment.
// nil components are left unchanged.
func (v *Viewer) SetFragmentAuxTransform(fragID int, scale *geom.Vector3, rotation *geom.Quaternion, position *geom.Vector3) error {
	fl, err := v.fragments()
	if err != nil {
		return err
	}
	return fl.UpdateAnimTransform(fragID, scale, rotation, position)
}

// FragmentTransform returns the final transform of a fragment: the auxiliary
// transform applied after the original one.
func (v *Viewer) FragmentTransform(fragID int) (*geom.Matrix4, error) {
	fl, err := v.fragments()
	if err != nil {
		return nil, err
	}
	var m geom.Matrix4
	if err := fl.WorldMatrix(fragID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
