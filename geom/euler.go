package geom

import "math"

// RotationOrder names the axis sequence of an EulerAngles.
type RotationOrder int

const (
	RotationOrderXYZ RotationOrder = iota
	RotationOrderYXZ
	RotationOrderZXY
	RotationOrderZYX
)

const degree = 180 / math.Pi

func (o RotationOrder) String() string {
	switch o {
	case RotationOrderXYZ:
		return "XYZ"
	case RotationOrderYXZ:
		return "YXZ"
	case RotationOrderZXY:
		return "ZXY"
	case RotationOrderZYX:
		return "ZYX"
	}
	return "unknown"
}

// EulerAngles holds rotations in radians about X, Y and Z.
type EulerAngles struct {
	Vector3
	Order RotationOrder
}

func NewEuler(x, y, z float32, order RotationOrder) *EulerAngles {
	return &EulerAngles{Vector3: Vector3{x, y, z}, Order: order}
}

// NewEulerDegrees is NewEuler with angles in degrees.
func NewEulerDegrees(x, y, z float32, order RotationOrder) *EulerAngles {
	return NewEuler(x/degree, y/degree, z/degree, order)
}

func NewEulerFromQuaternion(q *Quaternion, order RotationOrder) *EulerAngles {
	return NewEulerFromMatrix4(NewRotationMatrix4FromQuaternion(q), order)
}

func NewEulerFromMatrix4(mat *Matrix4, order RotationOrder) *EulerAngles {
	const eps = 0.00000001
	m11, m21, m31 := float64(mat[0]), float64(mat[1]), float64(mat[2])
	m12, m22, m32 := float64(mat[4]), float64(mat[5]), float64(mat[6])
	m13, m23, m33 := float64(mat[8]), float64(mat[9]), float64(mat[10])

	ret := &EulerAngles{Order: order}
	switch order {
	case RotationOrderXYZ:
		ret.Y = Element(math.Asin(math.Max(-1, math.Min(m13, 1))))
		if math.Abs(m13) < 1-eps {
			ret.X = Element(math.Atan2(-m23, m33))
			ret.Z = Element(math.Atan2(-m12, m11))
		} else {
			ret.X = Element(math.Atan2(m32, m22))
			ret.Z = 0
		}
	case RotationOrderYXZ:
		ret.X = Element(math.Asin(-math.Max(-1, math.Min(m23, 1))))
		if math.Abs(m23) < 1-eps {
			ret.Y = Element(math.Atan2(m13, m33))
			ret.Z = Element(math.Atan2(m21, m22))
		} else {
			ret.Y = Element(math.Atan2(-m31, m11))
			ret.Z = 0
		}
	case RotationOrderZXY:
		ret.X = Element(math.Asin(math.Max(-1, math.Min(m32, 1))))
		if math.Abs(m32) < 1-eps {
			ret.Y = Element(math.Atan2(-m31, m33))
			ret.Z = Element(math.Atan2(-m12, m22))
		} else {
			ret.Z = Element(math.Atan2(m21, m11))
			ret.Y = 0
		}
	case RotationOrderZYX:
		ret.Y = Element(math.Asin(-math.Max(-1, math.Min(m31, 1))))
		if math.Abs(m31) < 1-eps {
			ret.X = Element(math.Atan2(m32, m33))
			ret.Z = Element(math.Atan2(m21, m11))
		} else {
			ret.X = 0
			ret.Z = Element(math.Atan2(-m12, m22))
		}
	}
	return ret
}

// ToQuaternion composes the axis rotations in Order, leftmost axis outermost.
func (v *EulerAngles) ToQuaternion() *Quaternion {
	qx := axisQuaternion(v.X, 0)
	qy := axisQuaternion(v.Y, 1)
	qz := axisQuaternion(v.Z, 2)
	switch v.Order {
	case RotationOrderXYZ:
		return qx.Mul(qy).Mul(qz)
	case RotationOrderYXZ:
		return qy.Mul(qx).Mul(qz)
	case RotationOrderZXY:
		return qz.Mul(qx).Mul(qy)
	case RotationOrderZYX:
		return qz.Mul(qy).Mul(qx)
	}
	return &Quaternion{W: 1}
}

func axisQuaternion(angle Element, axis int) *Quaternion {
	s, c := math.Sincos(float64(angle) / 2)
	q := &Quaternion{W: Element(c)}
	switch axis {
	case 0:
		q.X = Element(s)
	case 1:
		q.Y = Element(s)
	default:
		q.Z = Element(s)
	}
	return q
}

// Degrees returns the angles in degrees.
func (v *EulerAngles) Degrees() Vector3 {
	return Vector3{X: v.X * degree, Y: v.Y * degree, Z: v.Z * degree}
}
