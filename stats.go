package qem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Stats summarise the live part of a mesh.
type Stats struct {
	Vertices       int
	Triangles      int
	BoundaryEdges  int
	BorderVertices int
	Bounds         r3.Box
}

// Stats refreshes face normals and border flags, using seam_angle in degrees,
// and counts the live mesh.
func (m *Mesh) Stats(seam_angle float64) (s Stats) {
	for fi := range m.faces {
		if !m.faces[fi].Deleted {
			m.updateNormal(fi)
		}
	}
	m.ClassifyBorders(seam_angle * math.Pi / 180)

	s.Triangles = m.live
	s.BoundaryEdges = len(m.BoundaryEdges())
	first := true
	seen := make([]bool, len(m.vertices))
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for _, vi := range f.V {
			if seen[vi] {
				continue
			}
			seen[vi] = true
			s.Vertices++
			if m.vertices[vi].Border {
				s.BorderVertices++
			}
			p := m.vertices[vi].Position
			if first {
				s.Bounds.Min, s.Bounds.Max = p, p
				first = false
				continue
			}
			s.Bounds.Min = r3.Vec{X: math.Min(s.Bounds.Min.X, p.X), Y: math.Min(s.Bounds.Min.Y, p.Y), Z: math.Min(s.Bounds.Min.Z, p.Z)}
			s.Bounds.Max = r3.Vec{X: math.Max(s.Bounds.Max.X, p.X), Y: math.Max(s.Bounds.Max.Y, p.Y), Z: math.Max(s.Bounds.Max.Z, p.Z)}
		}
	}
	return
}

func (s Stats) String() string {
	return fmt.Sprintf("%d vertices, %d triangles, %d boundary edges, %d border vertices, bounds %v - %v",
		s.Vertices, s.Triangles, s.BoundaryEdges, s.BorderVertices, s.Bounds.Min, s.Bounds.Max)
}
