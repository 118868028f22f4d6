// Package mesh owns the triangle data the slicer operates on: vertices,
// bounding boxes and the Möller–Trumbore ray/triangle intersection.
package mesh

import "github.com/aurelien-rainone/math32"

// Vec3 is a point or direction in R3, single-precision.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v*t.
func (v Vec3) Scale(t float32) Vec3 {
	return Vec3{v.X * t, v.Y * t, v.Z * t}
}

// Cross returns the cross product v×w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Dot returns the dot product v·w.
func (v Vec3) Dot(w Vec3) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Min returns the componentwise minimum of v and w.
func Min(v, w Vec3) Vec3 {
	return Vec3{math32.Min(v.X, w.X), math32.Min(v.Y, w.Y), math32.Min(v.Z, w.Z)}
}

// Max returns the componentwise maximum of v and w.
func Max(v, w Vec3) Vec3 {
	return Vec3{math32.Max(v.X, w.X), math32.Max(v.Y, w.Y), math32.Max(v.Z, w.Z)}
}
