package qem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Edge is a collapse candidate: V1 merges into V0, which moves to Target.
type Edge struct {
	V0, V1 int
	// face the candidate was read from, -1 when evaluated directly
	Face   int
	Target r3.Vec
	Error  float64
	// the collapse would move or remove a locked border vertex
	BorderViolation bool
}

// Evaluate computes where the edge (i0, i1) would collapse to and what it
// would cost. The returned Edge may have its endpoints swapped so that a
// border vertex is the one kept.
func (m *Mesh) Evaluate(i0, i1 int, cfg *Config) (e Edge) {
	e = Edge{V0: i0, V1: i1, Face: -1}
	v0, v1 := &m.vertices[i0], &m.vertices[i1]

	pinned := false
	if v0.Border != v1.Border {
		// keep the border vertex where it is
		if v1.Border {
			e.V0, e.V1 = i1, i0
			v0, v1 = v1, v0
		}
		pinned = cfg.PreserveBorder
	} else if v0.Border && cfg.PreserveBorder {
		e.BorderViolation = true
		e.Error = math.Inf(1)
		return
	}

	Q := v0.Q
	Q.Add(&v1.Q)

	switch {
	case pinned:
		e.Target = v0.Position
	case v0.Border && v1.Border:
		// Determine which is best, V0, V1 or their midpoint
		midpoint := r3.Scale(0.5, r3.Add(v0.Position, v1.Position))
		e.Target = midpoint
		best := vertexError(&Q, midpoint)
		for _, p := range [2]r3.Vec{v0.Position, v1.Position} {
			if cost := vertexError(&Q, p); cost < best {
				best, e.Target = cost, p
			}
		}
	default:
		var ok bool
		if e.Target, ok = optimalPosition(&Q, cfg.NumericScale); !ok {
			m.fallbacks++
			e.Target = r3.Scale(0.5, r3.Add(v0.Position, v1.Position))
			if !finite(e.Target) {
				e.Target = v0.Position
			}
		}
	}

	e.Error = vertexError(&Q, e.Target)
	if e.Error < 0 || math.IsNaN(e.Error) {
		// round-off on a near-zero form
		e.Error = 0
	}
	if cfg.PreserveCurvature {
		e.Error += m.curvature(e.V0, e.V1)
	}

	if !cfg.PreserveBorder && (v0.Border || v1.Border) {
		e.Error *= cfg.BorderPenalty
	}

	if cfg.AspectThreshold > 0 {
		q := m.collapseQuality(e.V0, e.V1, e.Target)
		if q <= 0 {
			e.Error = math.Inf(1)
		} else if q < cfg.AspectThreshold {
			penalty := math.Pow(cfg.AspectThreshold/q, cfg.AspectPenaltyExponent)
			e.Error = e.Error*penalty + cfg.NumericScale*(penalty-1)
		}
	}
	return
}

// curvature is the edge length scaled by how far the faces around the edge
// turn away from the faces on it: for every face touching either end, the
// smallest (1 - n.s)/2 over faces s sharing the edge, maximised. Zero on a
// flat patch, it grows when a collapse would drag a vertex off a crease.
func (m *Mesh) curvature(i0, i1 int) float64 {
	var shared []r3.Vec
	m.EachFace(i0, func(fi int) {
		if f := &m.faces[fi]; f.references(i1) {
			shared = append(shared, f.Normal)
		}
	})
	if len(shared) == 0 {
		return 0
	}

	worst := 0.0
	for _, vi := range [2]int{i0, i1} {
		m.EachFace(vi, func(fi int) {
			n := m.faces[fi].Normal
			nearest := 1.0
			for _, s := range shared {
				nearest = math.Min(nearest, (1-r3.Dot(n, s))/2)
			}
			worst = math.Max(worst, nearest)
		})
	}
	return r3.Norm(r3.Sub(m.vertices[i0].Position, m.vertices[i1].Position)) * worst
}

// collapseQuality is the worst shape quality among the faces that would
// survive collapsing i1 into i0 at p.
func (m *Mesh) collapseQuality(i0, i1 int, p r3.Vec) float64 {
	worst := 1.0
	for _, vi := range [2]int{i0, i1} {
		m.EachFace(vi, func(fi int) {
			f := &m.faces[fi]
			if f.references(i0) && f.references(i1) {
				return
			}
			var ps [3]r3.Vec
			for j, vj := range f.V {
				if vj == i0 || vj == i1 {
					ps[j] = p
				} else {
					ps[j] = m.vertices[vj].Position
				}
			}
			if q := quality(ps[0], ps[1], ps[2]); q < worst {
				worst = q
			}
		})
	}
	return worst
}

// updateErrors refreshes the cached edge costs of face fi.
func (m *Mesh) updateErrors(fi int, cfg *Config) {
	f := &m.faces[fi]
	for j := 0; j < 3; j++ {
		f.err[j] = m.Evaluate(f.V[j], f.V[(j+1)%3], cfg).Error
	}
	f.err[3] = math.Min(f.err[0], math.Min(f.err[1], f.err[2]))
}

type edgeHeap []*Edge

func (h edgeHeap) Len() int           { return len(h) }
func (h edgeHeap) Less(i, j int) bool { return h[i].Error < h[j].Error }
func (h edgeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *edgeHeap) Push(x interface{}) {
	e := x.(*Edge)
	*h = append(*h, e)
}

func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}
