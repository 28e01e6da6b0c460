package scene

import (
	"github.com/chewxy/math32"

	"pbr-viewer/math"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromViewProjection extracts the six planes of a row-vector
// view-projection matrix (clip = p * vp). Clip component i is the dot
// product with column i, so the Gribb/Hartmann rows are vp's columns.
// The planes are normalised so DistanceTo returns world units.
func FrustumFromViewProjection(vp math.Mat4) Frustum {
	col := func(i int) math.Vec4 {
		return math.Vec4{X: vp[0][i], Y: vp[1][i], Z: vp[2][i], W: vp[3][i]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = normalizePlane(c3.Add(c0))         // left
	f.Planes[1] = normalizePlane(c3.Add(c0.Mul(-1))) // right
	f.Planes[2] = normalizePlane(c3.Add(c1))         // bottom
	f.Planes[3] = normalizePlane(c3.Add(c1.Mul(-1))) // top
	f.Planes[4] = normalizePlane(c3.Add(c2))         // near
	f.Planes[5] = normalizePlane(c3.Add(c2.Mul(-1))) // far
	return f
}

func normalizePlane(v math.Vec4) Plane {
	n := v.ToVec3()
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Div(l), D: v.W / l}
}

// IntersectsSphere returns false if the sphere lies completely outside
// one of the planes.
func (f *Frustum) IntersectsSphere(centre math.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.DistanceTo(centre) < -radius {
			return false
		}
	}
	return true
}

// BoundingSphere returns the geometry's bounding sphere in world space,
// its radius scaled by the largest axis of the transform's scale.
func (o *GameObject) BoundingSphere() (centre math.Vec3, radius float32) {
	local, r := o.Geometry.BoundingSphere()
	s := o.Transform.Scale
	maxScale := math32.Max(math32.Abs(s.X), math32.Max(math32.Abs(s.Y), math32.Abs(s.Z)))
	return o.Transform.GetMatrix().MulPoint(local), r * maxScale
}
