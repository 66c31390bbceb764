package geom

import "math"

// Box3 is an axis aligned bounding box.
type Box3 struct {
	Min Vector3
	Max Vector3
}

func NewEmptyBox3() *Box3 {
	return &Box3{
		Min: Vector3{X: math.MaxFloat32, Y: math.MaxFloat32, Z: math.MaxFloat32},
		Max: Vector3{X: -math.MaxFloat32, Y: -math.MaxFloat32, Z: -math.MaxFloat32},
	}
}

func NewBox3(min, max *Vector3) *Box3 {
	return &Box3{Min: *min, Max: *max}
}

func (b *Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

func (b *Box3) ExpandByPoint(p *Vector3) *Box3 {
	b.Min = *b.Min.Min(p)
	b.Max = *b.Max.Max(p)
	return b
}

func (b *Box3) Union(b2 *Box3) *Box3 {
	if b2.IsEmpty() {
		return b
	}
	b.Min = *b.Min.Min(&b2.Min)
	b.Max = *b.Max.Max(&b2.Max)
	return b
}

func (b *Box3) Center() *Vector3 {
	return b.Min.Add(&b.Max).Scale(0.5)
}

func (b *Box3) Size() *Vector3 {
	if b.IsEmpty() {
		return &Vector3{}
	}
	return b.Max.Sub(&b.Min)
}

func (b *Box3) ContainsPoint(p *Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ApplyMatrix4 returns the bounds of the 8 transformed corners.
func (b *Box3) ApplyMatrix4(m *Matrix4) *Box3 {
	r := NewEmptyBox3()
	if b.IsEmpty() {
		return r
	}
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		r.ExpandByPoint(m.ApplyTo(&c))
	}
	return r
}
