package qem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Collapse merges e.V1 into e.V0 at e.Target if the result would be valid,
// returning the number of faces removed. Faces containing both vertices
// become degenerate and are deleted: two for an interior manifold edge, one
// for a boundary edge.
func (m *Mesh) Collapse(e Edge, cfg *Config) (removed int, ok bool) {
	i0, i1 := e.V0, e.V1
	if i0 == i1 || e.BorderViolation {
		return
	}
	v0, v1 := &m.vertices[i0], &m.vertices[i1]
	if v0.Deleted || v1.Deleted || !finite(e.Target) {
		return
	}
	if cfg.PreserveBorder && (v1.Border || (v0.Border && e.Target != v0.Position)) {
		return
	}

	if !m.manifoldCollapse(i0, i1) {
		return
	}

	min_dot := math.Cos(cfg.MaxNormalDeviation * math.Pi / 180)
	deleted0, flipped := m.flipped(e.Target, i0, i1, min_dot)
	if flipped {
		return
	}
	deleted1, flipped := m.flipped(e.Target, i1, i0, min_dot)
	if flipped {
		return
	}

	v0.Position = e.Target
	v0.Q.Add(&v1.Q)
	v1.Deleted = true

	tstart := len(m.refs)
	var touched []int
	removed += m.updateFaces(i0, i0, deleted0, &touched)
	removed += m.updateFaces(i0, i1, deleted1, &touched)

	// v0's refs now cover the faces both vertices kept
	tcount := len(m.refs) - tstart
	if tcount <= v0.tcount {
		copy(m.refs[v0.tstart:], m.refs[tstart:])
		m.refs = m.refs[:tstart]
	} else {
		v0.tstart = tstart
	}
	v0.tcount = tcount
	m.live -= removed

	for _, fi := range touched {
		for _, vi := range m.faces[fi].V {
			m.vertices[vi].dirty = true
		}
		m.updateErrors(fi, cfg)
	}
	v0.dirty = true

	assert("collapse left no live face on a deleted vertex", func() bool {
		return m.Verify() == nil
	})
	return removed, true
}

// flipped reports whether moving vertex i0 to p would turn any of its faces
// that survive the collapse with i1 by more than the allowed angle, or make
// one of them degenerate. deleted[k] marks the faces of i0 that also contain
// i1, indexed like i0's refs.
func (m *Mesh) flipped(p r3.Vec, i0, i1 int, min_dot float64) (deleted []bool, flip bool) {
	v := &m.vertices[i0]
	deleted = make([]bool, v.tcount)
	for k := 0; k < v.tcount; k++ {
		r := m.refs[v.tstart+k]
		f := &m.faces[r.face]
		if f.Deleted {
			continue
		}
		id1 := f.V[(r.corner+1)%3]
		id2 := f.V[(r.corner+2)%3]
		if id1 == i1 || id2 == i1 {
			deleted[k] = true
			continue
		}

		d1, ok1 := unit(r3.Sub(m.vertices[id1].Position, p))
		d2, ok2 := unit(r3.Sub(m.vertices[id2].Position, p))
		if !ok1 || !ok2 || math.Abs(r3.Dot(d1, d2)) > 0.999 {
			return deleted, true
		}
		n, ok := unit(r3.Cross(d1, d2))
		if !ok || r3.Dot(n, f.Normal) < min_dot {
			return deleted, true
		}
	}
	return
}

// updateFaces re-points the faces of vertex vi to i0, deleting the ones
// flagged in deleted. Surviving refs are appended to m.refs.
func (m *Mesh) updateFaces(i0, vi int, deleted []bool, touched *[]int) (removed int) {
	v := &m.vertices[vi]
	for k := 0; k < v.tcount; k++ {
		r := m.refs[v.tstart+k]
		f := &m.faces[r.face]
		if f.Deleted {
			continue
		}
		if deleted[k] {
			f.Deleted = true
			removed++
			continue
		}
		f.V[r.corner] = i0
		f.dirty = true
		m.refs = append(m.refs, r)
		*touched = append(*touched, r.face)
	}
	return
}

// manifoldCollapse checks the link condition: the vertices adjacent to both
// i0 and i1 must be exactly the apexes of the faces the two share, and an
// edge may be shared by at most two faces.
func (m *Mesh) manifoldCollapse(i0, i1 int) bool {
	shared := 0
	m.EachFace(i0, func(fi int) {
		if m.faces[fi].references(i1) {
			shared++
		}
	})
	if shared == 0 || shared > 2 {
		return false
	}
	n1 := m.neighbours(i1)
	common := 0
	for _, vi := range m.neighbours(i0) {
		if vi != i1 && intInSlice(vi, n1) {
			common++
		}
	}
	return common == shared
}
