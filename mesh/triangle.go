package mesh

// Triangle is an immutable facet of a loaded mesh, three vertices in R3.
//
// Leaf carries the leaf index stamped onto the triangle by the BVH during
// Build; it is owned by package bvh and ignored everywhere else.
type Triangle struct {
	V0, V1, V2 Vec3
	Leaf       int32
}

// AABB is an axis-aligned bounding box, componentwise min/max.
type AABB struct {
	Min, Max Vec3
}

// Bounds returns the AABB of t, the componentwise min/max of its vertices.
func Bounds(t Triangle) AABB {
	return AABB{
		Min: Min(Min(t.V0, t.V1), t.V2),
		Max: Max(Max(t.V0, t.V1), t.V2),
	}
}

// Union returns the smallest AABB containing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Min: Min(a.Min, b.Min), Max: Max(a.Max, b.Max)}
}

// MeshBounds returns the componentwise min/max over every triangle in tris.
// It panics if tris is empty; callers must check for an empty mesh first.
func MeshBounds(tris []Triangle) AABB {
	b := Bounds(tris[0])
	for _, t := range tris[1:] {
		b = Union(b, Bounds(t))
	}
	return b
}

// Extent returns the size of the box along each axis.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}
