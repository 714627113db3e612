package qem

import (
	"container/heap"
	"errors"
	"math"
)

/*
 * quadric edge collapse simplification of a whole mesh
 */

type Result struct {
	// live counts after the run, or the counts written by Compact
	Vertices  int
	Triangles int

	Iterations int
	Collapses  int
	// largest cost among the accepted collapses
	MaxError float64
	// MaxError after each accepted collapse, so never decreasing
	ErrorTrace []float64
	// sqrt(MaxError) relative to the extent of the input
	RelativeError float64
	// collapses whose optimal position solve was singular
	Fallbacks int
	Lossless  bool
}

func (res *Result) accept(cost float64) {
	res.Collapses++
	if cost > res.MaxError {
		res.MaxError = cost
	}
	res.ErrorTrace = append(res.ErrorTrace, res.MaxError)
}

// Simplify ingests flat position and index arrays, decimates them according
// to cfg and writes the compacted result into out, which must be sized to the
// input. On ErrNoProgress out still holds the (unreduced) mesh and res is
// filled in. Caller slices other than out are never modified.
func Simplify(positions []float64, indices []int, materials []int, cfg Config, out *Buffers) (res Result, err error) {
	m, err := Ingest(positions, indices, materials)
	if err != nil {
		return
	}
	if err = out.fits(m.VertexCount(), m.FaceCount()); err != nil {
		return
	}
	scale := Scale(positions)

	res, err = m.Simplify(cfg)
	if err != nil && !errors.Is(err, ErrNoProgress) {
		return
	}
	counts, cerr := m.Compact(out)
	if cerr != nil {
		return res, cerr
	}
	res.Vertices = counts.Vertices
	res.Triangles = counts.Triangles
	if scale > 0 {
		res.RelativeError = math.Sqrt(res.MaxError) / scale
	}
	return
}

// Simplify runs the collapse loop on m. Configuration problems are reported
// before anything is modified. When the loop stalls short of its target
// without removing a single face, the partial Result comes with ErrNoProgress.
func (m *Mesh) Simplify(cfg Config) (res Result, err error) {
	target, lossless, err := cfg.resolve(m.live)
	if err != nil {
		return
	}
	m.verbose = cfg.Verbose
	m.fallbacks = 0
	start_count := m.live
	res.Lossless = lossless

	if lossless {
		m.simplifyLossless(&cfg, &res)
	} else {
		m.simplifyToTarget(target, &cfg, &res)
	}

	res.Triangles = m.live
	res.Vertices = m.LiveVertexCount()
	res.Fallbacks = m.fallbacks
	m.debugf(1, "reduced %d triangles to %d in %d iterations, max error %g",
		start_count, m.live, res.Iterations, res.MaxError)

	if !lossless && m.live > target && m.live >= start_count {
		err = ErrNoProgress
	}
	return
}

func (m *Mesh) simplifyToTarget(target int, cfg *Config, res *Result) {
	for iteration := 0; iteration < cfg.MaxIterations; iteration++ {
		if m.live <= target {
			break
		}
		if iteration%cfg.UpdateRate == 0 {
			m.refresh(iteration == 0, cfg)
		}
		m.clearDirtyFaces()

		threshold := cfg.threshold(iteration)
		collapsed, deferred := m.collapsePass(threshold, target, cfg, res)
		res.Iterations = iteration + 1
		m.debugf(2, "iteration %d - triangles %d threshold %g", iteration, m.live, threshold)

		if collapsed == 0 && deferred == 0 {
			// every candidate was tried and none is valid, a higher
			// threshold cannot help
			m.debugf(1, "stalled at iteration %d with %d triangles", iteration, m.live)
			break
		}
	}
}

// simplifyLossless collapses only edges cheaper than LosslessThreshold,
// repeating until a pass collapses nothing.
func (m *Mesh) simplifyLossless(cfg *Config, res *Result) {
	for pass := 0; pass < cfg.MaxLosslessPasses; pass++ {
		fresh := pass%cfg.UpdateRate == 0
		if fresh {
			m.refresh(pass == 0, cfg)
		}
		m.clearDirtyFaces()

		collapsed, _ := m.collapsePass(cfg.LosslessThreshold, MinTriangles, cfg, res)
		res.Iterations = pass + 1
		m.debugf(2, "lossless pass %d - triangles %d", pass, m.live)
		if collapsed == 0 {
			if fresh {
				break
			}
			// stale costs may hide collapses, look again after a refresh
			pass += cfg.UpdateRate - pass%cfg.UpdateRate - 1
		}
	}
}

// refresh rebuilds adjacency, normals, quadrics and cached edge costs. The
// first refresh does so for everything and classifies borders, later ones
// only for what collapses have touched.
func (m *Mesh) refresh(first bool, cfg *Config) {
	m.BuildAdjacency()

	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		if first || m.vertices[f.V[0]].dirty || m.vertices[f.V[1]].dirty || m.vertices[f.V[2]].dirty {
			m.updateNormal(fi)
		}
	}
	if first {
		m.ClassifyBorders(cfg.SeamAngle * math.Pi / 180)
	}

	rebuilt := make([]bool, len(m.vertices))
	for _, vi := range m.RebuildQuadrics(first) {
		rebuilt[vi] = true
	}
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		if rebuilt[f.V[0]] || rebuilt[f.V[1]] || rebuilt[f.V[2]] {
			m.updateErrors(fi, cfg)
		}
	}
}

func (m *Mesh) clearDirtyFaces() {
	for fi := range m.faces {
		m.faces[fi].dirty = false
	}
}

// collapsePass tries every edge of every face untouched in this pass whose
// cached cost is below threshold, cheapest first, until the live face count
// reaches target. deferred counts the candidates held back by the threshold
// alone.
func (m *Mesh) collapsePass(threshold float64, target int, cfg *Config, res *Result) (collapsed, deferred int) {
	edges := &edgeHeap{}
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for j := 0; j < 3; j++ {
			if f.err[j] < threshold {
				edges.Push(&Edge{V0: f.V[j], V1: f.V[(j+1)%3], Face: fi, Error: f.err[j]})
			} else if !math.IsInf(f.err[j], 1) {
				deferred++
			}
		}
	}
	// Sort edges by error
	heap.Init(edges)

	for edges.Len() > 0 && m.live > target {
		candidate := heap.Pop(edges).(*Edge)
		f := &m.faces[candidate.Face]
		if f.Deleted || f.dirty {
			// already collapsed or its cost is stale
			continue
		}
		e := m.Evaluate(candidate.V0, candidate.V1, cfg)
		if e.BorderViolation {
			continue
		}
		if !(e.Error < threshold) {
			if !math.IsInf(e.Error, 1) {
				deferred++
			}
			continue
		}
		e.Face = candidate.Face
		if _, ok := m.Collapse(e, cfg); !ok {
			continue
		}
		collapsed++
		res.accept(e.Error)
	}
	return
}
