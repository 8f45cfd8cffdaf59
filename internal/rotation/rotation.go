// Package rotation implements the unit-quaternion rotation algebra used by
// the head tracker. Every constructor returns a normalized quaternion and
// every degenerate input (zero axis, antiparallel vectors, gimbal-lock pitch)
// falls back to a well-defined value instead of an error: the render loop
// consuming these values cannot tolerate a NaN or a failure path.
package rotation

import "math"

// parallelTolerance decides when two vectors handed to RotateInto are treated
// as exactly opposite, relative to the product of their lengths.
const parallelTolerance = 1e-6

// Rotation is an orientation stored as a unit quaternion. It is a plain
// value type: operations return new values and never mutate the receiver.
type Rotation struct {
	X, Y, Z, W float64
}

// Identity returns the zero rotation (0, 0, 0, 1).
func Identity() Rotation {
	return Rotation{W: 1}
}

// FromQuaternion builds a Rotation from raw quaternion components,
// normalizing them on entry.
func FromQuaternion(x, y, z, w float64) Rotation {
	return Rotation{X: x, Y: y, Z: z, W: w}.normalize()
}

// FromAxisAngle builds the rotation of angle radians about axis. The axis
// does not need to be unit length. A zero-length axis yields the identity
// rotation.
func FromAxisAngle(axis Vector3, angle float64) Rotation {
	if axis.Norm() == 0 {
		return Identity()
	}
	u := axis.Normalize()
	s := math.Sin(angle / 2)
	return Rotation{
		X: u.X * s,
		Y: u.Y * s,
		Z: u.Z * s,
		W: math.Cos(angle / 2),
	}.normalize()
}

// FromEuler builds the rotation applying roll about X, then pitch about Y,
// then yaw about Z (the inverse of Yaw/Pitch/Roll). Angles are in radians.
func FromEuler(yaw, pitch, roll float64) Rotation {
	cy := math.Cos(yaw / 2)
	sy := math.Sin(yaw / 2)
	cp := math.Cos(pitch / 2)
	sp := math.Sin(pitch / 2)
	cr := math.Cos(roll / 2)
	sr := math.Sin(roll / 2)

	return Rotation{
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
		W: cr*cp*cy + sr*sp*sy,
	}.normalize()
}

// FromRotationMatrix converts a 3x3 rotation matrix to a quaternion using
// the largest-diagonal-candidate selection. The four trace-derived candidates
// ww, xx, yy, zz are compared and the first maximum in that fixed order
// drives the branch, so the division below never sees a near-zero square
// root even for rotations close to ±180°.
func FromRotationMatrix(m Matrix3) Rotation {
	ww := 0.25 * (1 + m[0][0] + m[1][1] + m[2][2])
	xx := 0.25 * (1 + m[0][0] - m[1][1] - m[2][2])
	yy := 0.25 * (1 - m[0][0] + m[1][1] - m[2][2])
	zz := 0.25 * (1 - m[0][0] - m[1][1] + m[2][2])

	max := ww
	if xx > max {
		max = xx
	}
	if yy > max {
		max = yy
	}
	if zz > max {
		max = zz
	}

	var q Rotation
	switch {
	case ww == max:
		w := math.Sqrt(ww)
		q = Rotation{
			X: (m[2][1] - m[1][2]) / (4 * w),
			Y: (m[0][2] - m[2][0]) / (4 * w),
			Z: (m[1][0] - m[0][1]) / (4 * w),
			W: w,
		}
	case xx == max:
		x := math.Sqrt(xx)
		q = Rotation{
			X: x,
			Y: (m[0][1] + m[1][0]) / (4 * x),
			Z: (m[0][2] + m[2][0]) / (4 * x),
			W: (m[2][1] - m[1][2]) / (4 * x),
		}
	case yy == max:
		y := math.Sqrt(yy)
		q = Rotation{
			X: (m[0][1] + m[1][0]) / (4 * y),
			Y: y,
			Z: (m[1][2] + m[2][1]) / (4 * y),
			W: (m[0][2] - m[2][0]) / (4 * y),
		}
	default:
		z := math.Sqrt(zz)
		q = Rotation{
			X: (m[0][2] + m[2][0]) / (4 * z),
			Y: (m[1][2] + m[2][1]) / (4 * z),
			Z: z,
			W: (m[1][0] - m[0][1]) / (4 * z),
		}
	}
	return q.normalize()
}

// RotateInto builds the minimal-arc rotation mapping from onto to, using the
// half-way-vector construction: the scalar part is |from||to| + from·to and
// the vector part is from × to. When the vectors are nearly opposite that
// scalar vanishes and the cross product degenerates, so the scalar is forced
// to zero and the axis becomes an arbitrary vector orthogonal to from,
// chosen from whichever of from's X/Z components is larger in magnitude.
func RotateInto(from, to Vector3) Rotation {
	norms := from.Norm() * to.Norm()
	real := norms + from.Dot(to)

	var w Vector3
	if real < parallelTolerance*norms {
		// 180° apart: any axis orthogonal to from works.
		real = 0
		if math.Abs(from.X) > math.Abs(from.Z) {
			w = Vector3{X: -from.Y, Y: from.X}
		} else {
			w = Vector3{Y: -from.Z, Z: from.Y}
		}
	} else {
		w = from.Cross(to)
	}

	return Rotation{X: w.X, Y: w.Y, Z: w.Z, W: real}.normalize()
}

// Rotate applies the rotation to v (the q v q* sandwich product) and
// returns the rotated vector.
func (q Rotation) Rotate(v Vector3) Vector3 {
	qv := Vector3{X: q.X, Y: q.Y, Z: q.Z}
	t := qv.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// Mul returns the composition q * o, the rotation applying o first and then
// q. Quaternion multiplication is not commutative.
func (q Rotation) Mul(o Rotation) Rotation {
	return Rotation{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate returns the inverse rotation. For unit quaternions the conjugate
// and the inverse coincide.
func (q Rotation) Conjugate() Rotation {
	return Rotation{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// AxisAngle decomposes the rotation into a unit axis and an angle in
// radians. A rotation with a zero imaginary part (identity, or numerical
// underflow of it) reports axis (1, 0, 0) and angle 0 rather than an
// undefined axis.
func (q Rotation) AxisAngle() (Vector3, float64) {
	im := Vector3{X: q.X, Y: q.Y, Z: q.Z}
	if im.Norm() == 0 {
		return Vector3{X: 1}, 0
	}
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	return im.Normalize(), 2 * math.Acos(w)
}

// Yaw returns the rotation about the Z axis, in radians.
func (q Rotation) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

// Pitch returns the rotation about the Y axis, in radians. When floating
// point drift pushes the sine argument past ±1 the result is clamped to
// ±π/2 instead of letting asin return NaN.
func (q Rotation) Pitch() float64 {
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	if math.Abs(sinp) >= 1 {
		return math.Copysign(math.Pi/2, sinp)
	}
	return math.Asin(sinp)
}

// Roll returns the rotation about the X axis, in radians.
func (q Rotation) Roll() float64 {
	return math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
}

// Matrix returns the 3x3 rotation matrix equivalent of q, in the same
// column-vector convention FromRotationMatrix expects.
func (q Rotation) Matrix() Matrix3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return Matrix3{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

// normalize rescales q to unit length. A zero-length quaternion becomes the
// identity, so callers never observe a denormalized or NaN rotation.
func (q Rotation) normalize() Rotation {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return Identity()
	}
	inv := 1 / n
	return Rotation{X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv, W: q.W * inv}
}
