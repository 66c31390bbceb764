package geom

import "math"

func Abs(v Element) Element {
	if v < 0 {
		return -v
	}
	return v
}

func Min(a, b Element) Element {
	if a < b {
		return a
	}
	return b
}

func Max(a, b Element) Element {
	if a > b {
		return a
	}
	return b
}

func sqrt(v float64) float64 {
	return math.Sqrt(v)
}

func IsInTriangle(p, a, b, c *Vector3) bool {
	ab, bc, ca := b.Sub(a), c.Sub(b), a.Sub(c)
	c1, c2, c3 := ab.Cross(p.Sub(a)), bc.Cross(p.Sub(b)), ca.Cross(p.Sub(c))
	return c1.Dot(c2) > 0 && c2.Dot(c3) > 0 && c3.Dot(c1) > 0
}

// Triangulate splits a planar polygon into triangles by ear clipping.
func Triangulate(poly []*Vector3) [][3]int {
	var dst [][3]int
	if len(poly) < 3 {
		return dst
	}
	n := &Vector3{}
	ii := make([]int, len(poly))
	for i := range poly {
		ii[i] = i
		v0 := poly[(i+len(poly)-1)%len(poly)]
		v1 := poly[i]
		v2 := poly[(i+1)%len(poly)]
		n = n.Add(v0.Sub(v1).Cross(v2.Sub(v1)))
	}
	n = n.Normalize()

	// O(N*N)...
	count := len(ii)
	for count >= 3 {
		lastCount := count
		for i := count - 1; i >= 0; i-- {
			i0 := ii[(i+count-1)%count]
			i1 := ii[i]
			i2 := ii[(i+1)%count]
			v0, v1, v2 := poly[i0], poly[i1], poly[i2]
			if v0.Sub(v1).Cross(v2.Sub(v1)).Dot(n) < 0 {
				continue
			}
			rest := make([]int, 0, count-1)
			rest = append(rest, ii[:i]...)
			rest = append(rest, ii[i+1:]...)
			ear := true
			for _, j := range rest {
				if IsInTriangle(poly[j], v0, v1, v2) {
					ear = false
					break
				}
			}
			if ear {
				dst = append(dst, [3]int{i0, i1, i2})
				ii = rest
				count--
				if count < 3 {
					break
				}
			}
		}
		if lastCount == count {
			// self-intersecting polygon: fall back to a fan.
			for i := 0; i < len(ii)-2; i++ {
				dst = append(dst, [3]int{ii[0], ii[i+1], ii[i+2]})
			}
			break
		}
	}
	return dst
}
