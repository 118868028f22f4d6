package mesh

import "github.com/aurelien-rainone/math32"

// parallelEps is the |a| threshold below which a ray is considered parallel
// to the triangle's plane. Below it the ray/plane system is singular and
// the triangle contributes no crossing, including triangles whose plane
// contains the ray, which the rasterizer's slab epsilon resolves instead
// (see raster.Rasterize).
const parallelEps = 1e-6

// Ray is a half-line, origin plus a (conventionally unit) direction.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// Intersect runs the Möller–Trumbore ray/triangle test. It reports the ray
// parameter t such that Origin+t*Dir lies inside t, and ok=true, or
// ok=false if the ray misses the triangle, grazes its plane, or would hit
// at or behind the origin.
func Intersect(t Triangle, r Ray) (dist float32, ok bool) {
	e1 := t.V1.Sub(t.V0)
	e2 := t.V2.Sub(t.V0)

	h := r.Dir.Cross(e2)
	a := e1.Dot(h)
	if math32.Abs(a) < parallelEps {
		return 0, false
	}

	f := 1 / a
	s := r.Origin.Sub(t.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := f * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist = f * e2.Dot(q)
	if dist <= parallelEps {
		return 0, false
	}
	return dist, true
}
