// Package stl decodes binary STL meshes into triangle streams. This is I/O
// shell, not core geometry: the slicer consumes the Triangle slice and does
// not care how it got there.
package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arl/slaslice/mesh"
)

const headerSize = 80

// ErrEmptyMesh is returned by Decode for a well-formed STL stream that
// declares zero triangles; a mesh with no facets has no bounds and can't
// be sliced.
var ErrEmptyMesh = errors.New("stl: mesh has no triangles")

// facet mirrors the 50-byte on-disk record of a binary STL facet: a normal
// vector the slicer ignores (orientation doesn't affect crossing parity),
// three vertices, and a 2-byte attribute count.
type facet struct {
	Normal     [3]float32
	V0, V1, V2 [3]float32
	Attr       uint16
}

// Decode reads a binary STL stream and returns its triangles. Vertex
// coordinates are taken as millimeters, as the rest of the pipeline
// assumes.
//
// Decode does not validate the declared triangle count against the file
// size up front; a truncated file surfaces as a wrapped error from
// binary.Read on whichever facet ran out of bytes: io.ErrUnexpectedEOF when
// the file ends inside a facet record, io.EOF when it ends exactly between
// two records.
func Decode(r io.Reader) ([]mesh.Triangle, error) {
	br := bufio.NewReader(r)

	var header [headerSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("stl: reading header: %w", err)
	}

	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("stl: reading triangle count: %w", err)
	}

	tris := make([]mesh.Triangle, 0, count)
	var f facet
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(br, binary.LittleEndian, &f); err != nil {
			return nil, fmt.Errorf("stl: reading facet %d/%d: %w", i, count, err)
		}
		tris = append(tris, mesh.Triangle{
			V0: mesh.Vec3{X: f.V0[0], Y: f.V0[1], Z: f.V0[2]},
			V1: mesh.Vec3{X: f.V1[0], Y: f.V1[1], Z: f.V1[2]},
			V2: mesh.Vec3{X: f.V2[0], Y: f.V2[1], Z: f.V2[2]},
		})
	}

	if len(tris) == 0 {
		return nil, ErrEmptyMesh
	}
	return tris, nil
}
