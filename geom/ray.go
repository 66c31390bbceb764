package geom

import "math"

type Ray struct {
	Origin    Vector3
	Direction Vector3
}

func NewRay(origin, dir *Vector3) *Ray {
	d := *dir
	return &Ray{Origin: *origin, Direction: *d.Normalize()}
}

func (r *Ray) At(t Element) *Vector3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ApplyMatrix4 returns the ray transformed by m. The direction is renormalized,
// so distances along the result are in the target space.
func (r *Ray) ApplyMatrix4(m *Matrix4) *Ray {
	return NewRay(m.ApplyTo(&r.Origin), m.ApplyToDirection(&r.Direction))
}

// IntersectBox returns the distance to the nearest slab entry (0 if the origin is inside).
func (r *Ray) IntersectBox(b *Box3) (Element, bool) {
	if b.IsEmpty() {
		return 0, false
	}
	tmin, tmax := math.Inf(-1), math.Inf(1)
	origin := [3]Element{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]Element{r.Direction.X, r.Direction.Y, r.Direction.Z}
	bmin := [3]Element{b.Min.X, b.Min.Y, b.Min.Z}
	bmax := [3]Element{b.Max.X, b.Max.Y, b.Max.Z}
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < bmin[i] || origin[i] > bmax[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / float64(dir[i])
		t1 := float64(bmin[i]-origin[i]) * inv
		t2 := float64(bmax[i]-origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return Element(math.Max(tmin, 0)), true
}

// IntersectTriangle implements Moller-Trumbore without backface culling.
// The parallel test is relative to the edge lengths so small triangles still hit.
func (r *Ray) IntersectTriangle(a, b, c *Vector3) (Element, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if Abs(det) <= 1e-7*e1.Len()*e2.Len() {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}
