package qem

import (
	"errors"
	"math"
	"strconv"

	"github.com/nat-n/geom"
)

// Mesh Verification:
// ------------------
// The Verify method checks the invariants collapses must preserve: every live
// face references three distinct vertices that exist and are not deleted,
// and the live face counter agrees with the face flags.

// returns an error for the first violated expectation
func (m *Mesh) Verify() (err error) {
	live := 0
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		live++
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[2] == f.V[0] {
			err = errors.New("Face " + strconv.Itoa(fi) + " repeats a vertex")
			return
		}
		for _, vi := range f.V {
			if vi < 0 || vi >= len(m.vertices) {
				err = errors.New("Face " + strconv.Itoa(fi) + " references missing vertex " +
					strconv.Itoa(vi))
				return
			}
			if m.vertices[vi].Deleted {
				err = errors.New("Face " + strconv.Itoa(fi) + " references deleted vertex " +
					strconv.Itoa(vi))
				return
			}
		}
	}
	if live != m.live {
		err = errors.New("Live face count is " + strconv.Itoa(m.live) + " but " +
			strconv.Itoa(live) + " faces are live")
	}
	return
}

// QuadricDrift returns the largest coefficient difference between the stored
// quadric of vertex vi and the sum of the plane quadrics of its live faces.
// Freshly rebuilt quadrics have no drift beyond round-off.
func (m *Mesh) QuadricDrift(vi int) (drift float64) {
	Q := geom.SymMat4{}
	for fi := range m.faces {
		if m.faces[fi].Deleted || !m.faces[fi].references(vi) {
			continue
		}
		if Kp, ok := m.faceQuadric(fi); ok {
			Q.Add(&Kp)
		}
	}
	for i := range Q {
		drift = math.Max(drift, math.Abs(Q[i]-m.vertices[vi].Q[i]))
	}
	return
}
