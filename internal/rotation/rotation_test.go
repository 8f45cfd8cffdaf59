package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func assertVectorInDelta(t *testing.T, want, got Vector3, delta float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta)
	assert.InDelta(t, want.Y, got.Y, delta)
	assert.InDelta(t, want.Z, got.Z, delta)
}

func TestIdentityLeavesVectorsUnchanged(t *testing.T) {
	vectors := []Vector3{
		{X: 1},
		{Y: -2.5},
		{X: 0.3, Y: -1.7, Z: 4.2},
		{},
	}
	for _, v := range vectors {
		assertVectorInDelta(t, v, Identity().Rotate(v), tol)
	}
}

func TestFromAxisAngleKeepsAxisFixed(t *testing.T) {
	cases := []struct {
		axis  Vector3
		angle float64
	}{
		{Vector3{X: 1}, math.Pi / 2},
		{Vector3{Y: 1}, -math.Pi / 3},
		{Vector3{X: 1, Y: 2, Z: -3}, 2.1},
		{Vector3{X: -0.2, Y: 0.1, Z: 0.9}, math.Pi},
	}
	for _, tc := range cases {
		q := FromAxisAngle(tc.axis, tc.angle)
		got := q.Rotate(tc.axis)
		assertVectorInDelta(t, tc.axis, got, 1e-9)
	}
}

func TestFromAxisAngleZeroAxisIsIdentity(t *testing.T) {
	q := FromAxisAngle(Vector3{}, 1.234)
	assert.Equal(t, Identity(), q)
}

func TestFromAxisAngleQuarterTurn(t *testing.T) {
	// 90° about Z maps X onto Y.
	q := FromAxisAngle(Vector3{Z: 1}, math.Pi/2)
	assertVectorInDelta(t, Vector3{Y: 1}, q.Rotate(Vector3{X: 1}), tol)
}

func TestFactoriesReturnUnitQuaternions(t *testing.T) {
	quats := []Rotation{
		Identity(),
		FromQuaternion(3, -1, 2, 5),
		FromAxisAngle(Vector3{X: 1, Y: 1}, 0.7),
		FromEuler(0.3, -0.6, 1.1),
		RotateInto(Vector3{X: 1}, Vector3{Y: 2}),
	}
	for _, q := range quats {
		n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
		assert.InDelta(t, 1.0, n, tol)
	}
}

func TestRotateIntoAlignsVectors(t *testing.T) {
	cases := []struct {
		from, to Vector3
	}{
		{Vector3{X: 1}, Vector3{Y: 1}},
		{Vector3{X: 1, Y: 2, Z: 3}, Vector3{X: -4, Y: 0.5, Z: 1}},
		{Vector3{Z: 2}, Vector3{Z: 5}}, // already parallel
		{Vector3{X: 0.1, Y: -0.9, Z: 0.2}, Vector3{X: 3, Y: 3, Z: -3}},
	}
	for _, tc := range cases {
		q := RotateInto(tc.from, tc.to)
		got := q.Rotate(tc.from)

		// Same direction as to, same magnitude as from.
		wantDir := tc.to.Normalize()
		gotDir := got.Normalize()
		assertVectorInDelta(t, wantDir, gotDir, 1e-9)
		assert.InDelta(t, tc.from.Norm(), got.Norm(), 1e-9)
	}
}

func TestRotateIntoAntiparallel(t *testing.T) {
	cases := []Vector3{
		{X: 1},
		{Y: 1},
		{Z: 1},
		{X: 0.2, Y: -0.5, Z: 0.8},
	}
	for _, from := range cases {
		to := from.Scale(-1)
		q := RotateInto(from, to)

		require.False(t, math.IsNaN(q.X) || math.IsNaN(q.Y) || math.IsNaN(q.Z) || math.IsNaN(q.W),
			"antiparallel case produced NaN for %+v", from)
		assert.NotEqual(t, Identity(), q, "antiparallel case must not degrade to identity")

		got := q.Rotate(from)
		assertVectorInDelta(t, to, got, 1e-9)
	}
}

// sameRotation compares two quaternions up to sign, since q and -q encode
// the same rotation.
func sameRotation(a, b Rotation) bool {
	direct := math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol &&
		math.Abs(a.Z-b.Z) < tol && math.Abs(a.W-b.W) < tol
	flipped := math.Abs(a.X+b.X) < tol && math.Abs(a.Y+b.Y) < tol &&
		math.Abs(a.Z+b.Z) < tol && math.Abs(a.W+b.W) < tol
	return direct || flipped
}

func TestMatrixRoundTrip(t *testing.T) {
	cases := []Rotation{
		Identity(),
		FromAxisAngle(Vector3{X: 1}, math.Pi/2),
		FromAxisAngle(Vector3{Y: 1}, 2.8),
		FromAxisAngle(Vector3{X: 1, Y: -1, Z: 0.5}, 0.01),
		// Near-180° rotations exercise every non-w branch of the
		// largest-diagonal selection.
		FromAxisAngle(Vector3{X: 1}, math.Pi-1e-7),
		FromAxisAngle(Vector3{Y: 1}, math.Pi),
		FromAxisAngle(Vector3{Z: 1}, -math.Pi+1e-7),
		FromAxisAngle(Vector3{X: 1, Y: 1, Z: 1}, math.Pi),
	}
	for _, q := range cases {
		back := FromRotationMatrix(q.Matrix())
		assert.True(t, sameRotation(q, back), "round trip mismatch: %+v vs %+v", q, back)
	}
}

func TestAxisAngleRecovery(t *testing.T) {
	axis := Vector3{X: 1, Y: 2, Z: -1}.Normalize()
	angle := 1.9

	gotAxis, gotAngle := FromAxisAngle(axis, angle).AxisAngle()
	assertVectorInDelta(t, axis, gotAxis, tol)
	assert.InDelta(t, angle, gotAngle, tol)
}

func TestAxisAngleOfIdentity(t *testing.T) {
	axis, angle := Identity().AxisAngle()
	assert.Equal(t, Vector3{X: 1}, axis)
	assert.Zero(t, angle)
}

func TestPitchNeverNaN(t *testing.T) {
	// A quaternion whose sinp term computes slightly past 1 after drift.
	s := math.Sqrt(0.5)
	q := Rotation{Y: s * (1 + 1e-13), W: s * (1 + 1e-13)}

	p := q.Pitch()
	require.False(t, math.IsNaN(p))
	assert.InDelta(t, math.Pi/2, p, 1e-6)

	q = Rotation{Y: -s, W: s * (1 + 1e-13)}
	p = q.Pitch()
	require.False(t, math.IsNaN(p))
	assert.InDelta(t, -math.Pi/2, p, 1e-6)
}

func TestEulerRoundTrip(t *testing.T) {
	cases := []struct {
		yaw, pitch, roll float64
	}{
		{0, 0, 0},
		{0.5, 0.25, -0.75},
		{-2.9, 1.2, 0.1},
		{3.0, -1.4, -3.0},
	}
	for _, tc := range cases {
		q := FromEuler(tc.yaw, tc.pitch, tc.roll)
		assert.InDelta(t, tc.yaw, q.Yaw(), 1e-9)
		assert.InDelta(t, tc.pitch, q.Pitch(), 1e-9)
		assert.InDelta(t, tc.roll, q.Roll(), 1e-9)
	}
}

func TestMulComposes(t *testing.T) {
	a := FromAxisAngle(Vector3{Z: 1}, math.Pi/2)
	b := FromAxisAngle(Vector3{X: 1}, math.Pi/2)

	v := Vector3{X: 1}
	// a.Mul(b) applies b first.
	want := a.Rotate(b.Rotate(v))
	got := a.Mul(b).Rotate(v)
	assertVectorInDelta(t, want, got, tol)
}

func TestConjugateInverts(t *testing.T) {
	q := FromAxisAngle(Vector3{X: 0.3, Y: -1, Z: 0.4}, 1.3)
	v := Vector3{X: 0.5, Y: 2, Z: -1}
	assertVectorInDelta(t, v, q.Conjugate().Rotate(q.Rotate(v)), tol)
}

func TestFromQuaternionNormalizes(t *testing.T) {
	q := FromQuaternion(0, 0, 0, 2)
	assert.Equal(t, Identity(), q)

	q = FromQuaternion(0, 0, 0, 0)
	assert.Equal(t, Identity(), q, "degenerate zero quaternion falls back to identity")
}
