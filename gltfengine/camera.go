package gltfengine

import (
	"math"

	"github.com/binzume/sceneview/geom"
)

// Camera is a perspective camera. FOV is vertical, in degrees.
type Camera struct {
	Position geom.Vector3
	Target   geom.Vector3
	Up       geom.Vector3
	FOV      float32
}

func NewCamera() *Camera {
	return &Camera{
		Position: geom.Vector3{Z: 10},
		Up:       geom.Vector3{Y: 1},
		FOV:      45,
	}
}

// Ray returns the ray through viewport point (vx, vy) in [-1, 1].
func (c *Camera) Ray(vx, vy, aspect float32) *geom.Ray {
	forward := c.Target.Sub(&c.Position).Normalize()
	right := forward.Cross(&c.Up).Normalize()
	up := right.Cross(forward)
	h := float32(math.Tan(float64(c.FOV) * math.Pi / 360))
	dir := forward.Add(right.Scale(vx * h * aspect)).Add(up.Scale(vy * h))
	return geom.NewRay(&c.Position, dir)
}

// Fit moves the camera along +Z so that the bounding sphere of b is in view.
func (c *Camera) Fit(b *geom.Box3) {
	if b.IsEmpty() {
		return
	}
	center := b.Center()
	radius := float64(b.Size().Len()) / 2
	if radius == 0 {
		radius = 1
	}
	dist := radius / math.Sin(float64(c.FOV)*math.Pi/360)
	c.Target = *center
	c.Position = *center.Add(&geom.Vector3{Z: float32(dist)})
	c.Up = geom.Vector3{Y: 1}
}
