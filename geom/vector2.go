package geom

// Vector2 is a point on the viewer canvas, in client pixels.
type Vector2 struct {
	X Element
	Y Element
}

func NewVector2(x, y float32) *Vector2 {
	return &Vector2{X: x, Y: y}
}
