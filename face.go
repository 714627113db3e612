package qem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type Face struct {
	V        [3]int
	Material int
	Normal   r3.Vec
	Deleted  bool

	// touched by a collapse during the current pass
	dirty bool

	// cached cost of the edges (V[0],V[1]), (V[1],V[2]), (V[2],V[0]) and their
	// minimum in err[3]
	err [4]float64
}

func (m *Mesh) Face(i int) Face {
	return m.faces[i]
}

func (f *Face) references(vi int) bool {
	return f.V[0] == vi || f.V[1] == vi || f.V[2] == vi
}

func (m *Mesh) corners(f *Face) (p0, p1, p2 r3.Vec) {
	return m.vertices[f.V[0]].Position, m.vertices[f.V[1]].Position, m.vertices[f.V[2]].Position
}

func (m *Mesh) updateNormal(fi int) {
	f := &m.faces[fi]
	p0, p1, p2 := m.corners(f)
	if n, ok := unit(r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))); ok {
		f.Normal = n
	} else {
		f.Normal = r3.Vec{}
	}
}

// Shape quality of a triangle, 1 for equilateral and 0 for degenerate.
func quality(p0, p1, p2 r3.Vec) float64 {
	e0 := r3.Sub(p1, p0)
	e1 := r3.Sub(p2, p1)
	e2 := r3.Sub(p0, p2)
	sum := r3.Dot(e0, e0) + r3.Dot(e1, e1) + r3.Dot(e2, e2)
	if sum == 0 {
		return 0
	}
	area := r3.Norm(r3.Cross(e0, r3.Sub(p2, p0))) / 2
	return 4 * math.Sqrt(3) * area / sum
}

func unit(v r3.Vec) (r3.Vec, bool) {
	l := r3.Norm(v)
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v, false
	}
	return r3.Scale(1/l, v), true
}

func finite(v r3.Vec) bool {
	for _, x := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
