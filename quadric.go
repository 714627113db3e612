package qem

import (
	"math"

	"github.com/nat-n/geom"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Calculate the Kp fundamental error quadric of the plane through p0, p1, p2,
// which measures squared distance to that plane. ok is false for degenerate
// triangles, which have no plane.
func planeQuadric(p0, p1, p2 r3.Vec) (Kp geom.SymMat4, ok bool) {
	n, ok := unit(r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0)))
	if !ok {
		return
	}

	// use abcd variable names like in the standard explanations
	a, b, c := n.X, n.Y, n.Z
	d := -r3.Dot(n, p0)

	Kp = geom.SymMat4{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
	return
}

func (m *Mesh) faceQuadric(fi int) (geom.SymMat4, bool) {
	return planeQuadric(m.corners(&m.faces[fi]))
}

// RebuildQuadrics recomputes from scratch the quadric of every vertex, or of
// every dirty vertex, as the sum of the plane quadrics of its live incident
// faces. Adjacency must be current. It returns the vertices it rebuilt.
func (m *Mesh) RebuildQuadrics(all bool) (rebuilt []int) {
	for vi := range m.vertices {
		v := &m.vertices[vi]
		if v.Deleted || !(all || v.dirty) {
			continue
		}
		v.Q = geom.SymMat4{}
		m.EachFace(vi, func(fi int) {
			if Kp, ok := m.faceQuadric(fi); ok {
				v.Q.Add(&Kp)
			}
		})
		v.dirty = false
		rebuilt = append(rebuilt, vi)
	}
	return
}

// Sum of the squared distances from p to the planes accumulated in Q.
func vertexError(Q *geom.SymMat4, p r3.Vec) float64 {
	return Q.VertexError(geom.Vec3{p.X, p.Y, p.Z})
}

// optimalPosition finds the point minimising the quadric form of Q by solving
// for a vanishing gradient over the upper 3x3 block. ok is false when that
// block is singular to within tolerance or the solve does not yield a finite
// point.
func optimalPosition(Q *geom.SymMat4, tolerance float64) (p r3.Vec, ok bool) {
	A := mat.NewSymDense(3, []float64{
		Q[0], Q[1], Q[2],
		Q[1], Q[4], Q[5],
		Q[2], Q[5], Q[7],
	})
	if det := mat.Det(A); math.Abs(det) < tolerance || math.IsNaN(det) {
		return
	}
	var x mat.VecDense
	if err := x.SolveVec(A, mat.NewVecDense(3, []float64{-Q[3], -Q[6], -Q[8]})); err != nil {
		return
	}
	p = r3.Vec{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	return p, finite(p)
}
