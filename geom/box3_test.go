package geom

import (
	"math"
	"testing"
)

func TestBox3(t *testing.T) {
	b := NewEmptyBox3()
	if !b.IsEmpty() {
		t.Error("new box should be empty")
	}
	if *b.Size() != (Vector3{}) {
		t.Error("empty box size: ", b.Size())
	}

	b.ExpandByPoint(NewVector3(1, 2, 3)).ExpandByPoint(NewVector3(-1, 0, 5))
	if b.Min != *NewVector3(-1, 0, 3) || b.Max != *NewVector3(1, 2, 5) {
		t.Error("ExpandByPoint: ", b)
	}
	if *b.Center() != *NewVector3(0, 1, 4) {
		t.Error("Center: ", b.Center())
	}
	if !b.ContainsPoint(NewVector3(0, 1, 4)) || b.ContainsPoint(NewVector3(0, 3, 4)) {
		t.Error("ContainsPoint")
	}

	u := NewBox3(NewVector3(0, 0, 0), NewVector3(1, 1, 1)).Union(NewEmptyBox3())
	if u.Min != *NewVector3(0, 0, 0) || u.Max != *NewVector3(1, 1, 1) {
		t.Error("Union with empty box: ", u)
	}
}

func TestBox3ApplyMatrix4(t *testing.T) {
	const eps = 0.00001

	b := NewBox3(NewVector3(-1, -1, -1), NewVector3(1, 1, 1))
	moved := b.ApplyMatrix4(NewTranslateMatrix4(10, 0, 0))
	if moved.Min.Sub(NewVector3(9, -1, -1)).Len() > eps || moved.Max.Sub(NewVector3(11, 1, 1)).Len() > eps {
		t.Error("translated: ", moved)
	}

	rot := NewEuler(0, 0, math.Pi/4, RotationOrderXYZ).ToQuaternion()
	rotated := b.ApplyMatrix4(NewRotationMatrix4FromQuaternion(rot))
	r := float32(math.Sqrt2)
	if Abs(rotated.Max.X-r) > eps || Abs(rotated.Max.Y-r) > eps || Abs(rotated.Max.Z-1) > eps {
		t.Error("rotated: ", rotated)
	}

	if !NewEmptyBox3().ApplyMatrix4(NewMatrix4()).IsEmpty() {
		t.Error("empty box should stay empty")
	}
}
