package qem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Border Classification:
// ----------------------
// An edge referenced by exactly one live face lies on the open boundary of
// the mesh, and both of its vertices are border vertices. A vertex is also a
// border vertex when it sits on a seam: its incident faces carry different
// materials, or two of their normals diverge by more than the seam angle.
// Border vertices are either locked or penalised by the collapse evaluator,
// depending on Config.PreserveBorder.

// VertexPair is an undirected edge, normalised so that A < B.
type VertexPair struct {
	A, B int
}

func MakeVertexPair(a, b int) VertexPair {
	if a > b {
		a, b = b, a
	}
	return VertexPair{a, b}
}

// edgeUse counts the live faces referencing each edge.
func (m *Mesh) edgeUse() map[VertexPair]int {
	uses := make(map[VertexPair]int, m.live*3/2)
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for j := 0; j < 3; j++ {
			uses[MakeVertexPair(f.V[j], f.V[(j+1)%3])]++
		}
	}
	return uses
}

// BoundaryEdges lists the edges referenced by exactly one live face.
func (m *Mesh) BoundaryEdges() (edges []VertexPair) {
	for vp, n := range m.edgeUse() {
		if n == 1 {
			edges = append(edges, vp)
		}
	}
	return
}

// ClassifyBorders recomputes the Border flag of every vertex. seam_angle is
// in radians, zero or less disables the normal seam test. Face normals and
// adjacency must be current.
func (m *Mesh) ClassifyBorders(seam_angle float64) {
	for vi := range m.vertices {
		m.vertices[vi].Border = false
	}
	for vp, n := range m.edgeUse() {
		if n == 1 {
			m.vertices[vp.A].Border = true
			m.vertices[vp.B].Border = true
		}
	}

	min_dot := math.Inf(-1)
	if seam_angle > 0 && seam_angle < math.Pi {
		min_dot = math.Cos(seam_angle)
	}
	for vi := range m.vertices {
		v := &m.vertices[vi]
		if v.Border || v.Deleted {
			continue
		}
		v.Border = m.onSeam(vi, min_dot)
	}
}

func (m *Mesh) onSeam(vi int, min_dot float64) (seam bool) {
	first := true
	var material int
	normals := make([]r3.Vec, 0, 8)
	m.EachFace(vi, func(fi int) {
		f := &m.faces[fi]
		if first {
			material = f.Material
			first = false
		} else if f.Material != material {
			seam = true
		}
		if f.Normal != (r3.Vec{}) {
			normals = append(normals, f.Normal)
		}
	})
	if seam || math.IsInf(min_dot, -1) {
		return
	}
	for i := 0; i < len(normals); i++ {
		for j := i + 1; j < len(normals); j++ {
			if r3.Dot(normals[i], normals[j]) < min_dot {
				return true
			}
		}
	}
	return
}

// BorderVertices lists the indices of vertices currently flagged Border.
func (m *Mesh) BorderVertices() (border []int) {
	for vi := range m.vertices {
		if m.vertices[vi].Border && !m.vertices[vi].Deleted {
			border = append(border, vi)
		}
	}
	return
}
