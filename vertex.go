package qem

import (
	"github.com/nat-n/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

type Vertex struct {
	Position r3.Vec
	// Q is the error quadric, the sum of the plane quadrics of incident faces
	// as of the last time it was rebuilt.
	Q       geom.SymMat4
	Border  bool
	Deleted bool

	// quadric and normals of incident faces need rebuilding
	dirty bool

	// range of this vertex's entries in Mesh.refs
	tstart int
	tcount int
}

// ref locates one corner of a face from the vertex that occupies it.
type ref struct {
	face   int
	corner int
}

func (m *Mesh) Vertex(i int) Vertex {
	return m.vertices[i]
}

// EachFace calls cb with the index of every live face currently referencing
// vertex vi, according to the last adjacency build plus any collapse since.
func (m *Mesh) EachFace(vi int, cb func(fi int)) {
	v := &m.vertices[vi]
	for _, r := range m.refs[v.tstart : v.tstart+v.tcount] {
		if !m.faces[r.face].Deleted {
			cb(r.face)
		}
	}
}

// neighbours returns the distinct vertices sharing a live face with vi.
func (m *Mesh) neighbours(vi int) (ns []int) {
	m.EachFace(vi, func(fi int) {
		for _, vj := range m.faces[fi].V {
			if vj != vi && !intInSlice(vj, ns) {
				ns = append(ns, vj)
			}
		}
	})
	return
}
