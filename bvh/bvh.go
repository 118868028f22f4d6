// Package bvh builds the spatial index the column span engine queries to
// cull triangles a vertical ray cannot hit. It delegates the actual tree to
// github.com/dhconnelly/rtreego, per the core's assumption of an
// off-the-shelf bounding volume hierarchy (the choice of topology affects
// throughput, not correctness).
package bvh

import (
	"github.com/arl/slaslice/mesh"
	"github.com/dhconnelly/rtreego"
)

// minChildren/maxChildren follow rtreego's own recommended defaults for a
// balanced R-tree over a few thousand to a few million leaves.
const (
	minChildren = 25
	maxChildren = 50

	// columnEps keeps a column query's x/y extent non-degenerate; rtreego
	// rejects zero-length rectangle sides.
	columnEps = 1e-5
	// boxEps pads a triangle's AABB the same way, for triangles that are
	// exactly axis-aligned along one dimension (e.g. a wall in a cube).
	boxEps = 1e-5
)

// Tree is a read-only spatial index over an immutable triangle set. It
// borrows the triangles read-only; Build stamps each one's Leaf field with
// its position in the tree's backing slice.
type Tree struct {
	rt   *rtreego.Rtree
	tris []mesh.Triangle
}

// triBox adapts a triangle's AABB to rtreego.Spatial without copying the
// triangle itself; the tree only ever hands back indices into Tree.tris.
type triBox struct {
	rect *rtreego.Rect
	idx  int32
}

func (b *triBox) Bounds() *rtreego.Rect { return b.rect }

func inflatedRect(b mesh.AABB) *rtreego.Rect {
	ext := b.Extent()
	lo := rtreego.Point{float64(b.Min.X), float64(b.Min.Y), float64(b.Min.Z)}
	lengths := []float64{
		inflate(ext.X), inflate(ext.Y), inflate(ext.Z),
	}
	rect, err := rtreego.NewRect(lo, lengths)
	if err != nil {
		// A triangle's AABB is degenerate in at most an axis the inflate
		// call above already guards against; any other error means rtreego
		// itself rejected a well-formed box, which is a programming error.
		panic(err)
	}
	return rect
}

func inflate(extent float32) float64 {
	if extent <= boxEps {
		return boxEps
	}
	return float64(extent)
}

// Build constructs the spatial index over tris. tris is stored by the
// returned Tree and must not be mutated afterwards.
func Build(tris []mesh.Triangle) *Tree {
	objs := make([]rtreego.Spatial, len(tris))
	for i := range tris {
		tris[i].Leaf = int32(i)
		objs[i] = &triBox{rect: inflatedRect(mesh.Bounds(tris[i])), idx: int32(i)}
	}
	return &Tree{
		rt:   rtreego.NewTree(3, minChildren, maxChildren, objs...),
		tris: tris,
	}
}

// Len returns the number of triangles indexed.
func (t *Tree) Len() int { return len(t.tris) }

// CandidatesAlongColumn returns every triangle whose AABB overlaps the
// vertical column through world coordinates (x, y), spanning the full
// z-extent of bounds. False positives are expected and are filtered by
// mesh.Intersect; every true intersector is guaranteed to be present.
func (t *Tree) CandidatesAlongColumn(x, y float32, bounds mesh.AABB) []mesh.Triangle {
	lo := rtreego.Point{
		float64(x - columnEps),
		float64(y - columnEps),
		float64(bounds.Min.Z) - 1,
	}
	lengths := []float64{
		2 * columnEps,
		2 * columnEps,
		float64(bounds.Max.Z-bounds.Min.Z) + 2,
	}
	rect, err := rtreego.NewRect(lo, lengths)
	if err != nil {
		panic(err)
	}

	hits := t.rt.SearchIntersect(rect)
	out := make([]mesh.Triangle, len(hits))
	for i, h := range hits {
		out[i] = t.tris[h.(*triBox).idx]
	}
	return out
}
