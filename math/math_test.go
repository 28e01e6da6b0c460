package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec3(2, 4, 6)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}

	// Dot product
	dot := v1.Dot(v2)
	expectedDot := float32(32) // 1*4 + 2*5 + 3*6
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}

	// Cross product (Right x Up = Front in right-handed system)
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3ComponentWise(t *testing.T) {
	v := NewVec3(0.25, 0.5, 2)

	if got := v.OneMinus(); got != NewVec3(0.75, 0.5, -1) {
		t.Errorf("OneMinus: got %v", got)
	}
	if got := v.Clamp(0, 1); got != NewVec3(0.25, 0.5, 1) {
		t.Errorf("Clamp: got %v", got)
	}
	if got := v.Max(Splat3(0.4)); got != NewVec3(0.4, 0.5, 2) {
		t.Errorf("Max: got %v", got)
	}
	if got := Vec3Zero.LerpVec(Vec3One, NewVec3(0, 0.5, 1)); got != NewVec3(0, 0.5, 1) {
		t.Errorf("LerpVec: got %v", got)
	}
}

func TestVec3Reflect(t *testing.T) {
	incident := NewVec3(1, -1, 0)
	got := incident.Reflect(Vec3Up)
	if got != NewVec3(1, 1, 0) {
		t.Errorf("Reflect: expected (1,1,0), got %v", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)

	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}

	// Check length is 1
	length := normalized.Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}

	// Zero vector is returned unchanged
	if Vec3Zero.Normalize() != Vec3Zero {
		t.Errorf("Normalize: expected zero vector to stay zero")
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if m[i][j] != expected {
				t.Errorf("Identity: expected [%d][%d] = %v, got %v", i, j, expected, m[i][j])
			}
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	// Check translation components
	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}

	// Test transforming a point
	point := NewVec4(0, 0, 0, 1)
	result := point.MulMat(m)

	if result.ToVec3() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, result.ToVec3())
	}

	// Directions ignore translation
	if d := m.MulDirection(Vec3Up); d != Vec3Up {
		t.Errorf("MulDirection: expected %v, got %v", Vec3Up, d)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// Scale first, then translate: the translation must not be scaled.
	m := Mat4Scale(NewVec3(2, 2, 2)).Mul(Mat4Translation(NewVec3(1, 0, 0)))
	got := m.MulPoint(NewVec3(1, 1, 1))
	if got != NewVec3(3, 2, 2) {
		t.Errorf("MulOrder: expected (3,2,2), got %v", got)
	}
}

func TestMat4Flatten(t *testing.T) {
	m := Mat4Translation(NewVec3(4, 5, 6))
	f := m.Flatten()
	if f[12] != 4 || f[13] != 5 || f[14] != 6 || f[15] != 1 {
		t.Errorf("Flatten: translation not in elements 12..14, got %v", f)
	}
}

func TestQuaternionIdentity(t *testing.T) {
	q := QuaternionIdentity()

	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuaternionIdentity: expected (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degrees around Y
	half := float32(math.Sqrt2 / 2)
	q := Quaternion{Y: half, W: half}

	// X rotates onto -Z
	result := q.ToMat4().MulDirection(Vec3Right)

	tolerance := float32(0.001)
	if math.Abs(float64(result.X-0)) > float64(tolerance) ||
		math.Abs(float64(result.Y-0)) > float64(tolerance) ||
		math.Abs(float64(result.Z+1)) > float64(tolerance) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestMat4Perspective(t *testing.T) {
	fov := float32(math.Pi / 4) // 45 degrees
	aspect := float32(16.0 / 9.0)
	near := float32(0.1)
	far := float32(100.0)

	m := Mat4Perspective(fov, aspect, near, far)

	// A point on the near plane maps to NDC z = -1, on the far plane to +1.
	zNear := m.MulPoint(NewVec3(0, 0, -near)).Z
	zFar := m.MulPoint(NewVec3(0, 0, -far)).Z
	if math.Abs(float64(zNear+1)) > 1e-4 {
		t.Errorf("Perspective: near plane should map to -1, got %v", zNear)
	}
	if math.Abs(float64(zFar-1)) > 1e-3 {
		t.Errorf("Perspective: far plane should map to 1, got %v", zFar)
	}
	if m[0][0] >= m[1][1] {
		t.Errorf("Perspective: wide aspect should shrink the X scale, got %v vs %v", m[0][0], m[1][1])
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	target := NewVec3(0, 0, 0)
	up := Vec3Up

	m := Mat4LookAt(eye, target, up)

	// The view matrix should transform the eye position to origin
	point := eye.ToVec4(1)
	result := m.MulVec(point)

	tolerance := float32(0.001)
	if math.Abs(float64(result.X)) > float64(tolerance) ||
		math.Abs(float64(result.Y)) > float64(tolerance) ||
		math.Abs(float64(result.Z)) > float64(tolerance) {
		t.Errorf("LookAt: expected eye to transform to origin, got (%v,%v,%v)", result.X, result.Y, result.Z)
	}

	// The target lies straight ahead, down -Z in view space
	ahead := m.MulPoint(target)
	if math.Abs(float64(ahead.Z+5)) > float64(tolerance) {
		t.Errorf("LookAt: expected target at z=-5, got %v", ahead)
	}
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
