package qem

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func refreshed(t *testing.T, positions []float64, indices []int, cfg *Config) *Mesh {
	t.Helper()
	m := mustIngest(t, positions, indices)
	m.refresh(true, cfg)
	m.clearDirtyFaces()
	return m
}

func TestCollapseInterior(t *testing.T) {
	cfg := DefaultConfig()
	positions, indices := grid(3, nil)
	m := refreshed(t, positions, indices, &cfg)

	e := m.Evaluate(4, 0, &cfg)
	if e.V0 != 0 || e.V1 != 4 {
		t.Fatalf("interior vertex not merged into border vertex: %+v", e)
	}
	if e.Target != m.Vertex(0).Position || e.Error != 0 {
		t.Fatalf("evaluate=%+v", e)
	}
	removed, ok := m.Collapse(e, &cfg)
	if !ok || removed != 2 {
		t.Fatalf("removed=%d ok=%v", removed, ok)
	}
	if m.LiveFaceCount() != 6 || !m.Vertex(4).Deleted {
		t.Fatalf("live=%d", m.LiveFaceCount())
	}
	if p := m.Vertex(0).Position; p != (r3.Vec{}) {
		t.Fatalf("border vertex moved to %v", p)
	}
	// vertex 0 now holds the four faces vertex 4 kept
	count := 0
	m.EachFace(0, func(fi int) { count++ })
	if count != 4 {
		t.Fatalf("vertex 0 faces=%d", count)
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify err=%v", err)
	}
}

func TestCollapseBoundaryEdge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveBorder = false
	positions, indices := grid(3, nil)
	m := refreshed(t, positions, indices, &cfg)

	e := m.Evaluate(0, 1, &cfg)
	if e.BorderViolation || e.Target != (r3.Vec{X: 0.5}) {
		t.Fatalf("evaluate=%+v", e)
	}
	removed, ok := m.Collapse(e, &cfg)
	if !ok || removed != 1 {
		t.Fatalf("removed=%d ok=%v", removed, ok)
	}
	if m.LiveFaceCount() != 7 {
		t.Fatalf("live=%d", m.LiveFaceCount())
	}
}

func TestCollapsePreservedBorder(t *testing.T) {
	cfg := DefaultConfig()
	positions, indices := grid(3, nil)
	m := refreshed(t, positions, indices, &cfg)

	e := m.Evaluate(0, 1, &cfg)
	if !e.BorderViolation || !math.IsInf(e.Error, 1) {
		t.Fatalf("evaluate=%+v", e)
	}
	if _, ok := m.Collapse(e, &cfg); ok {
		t.Fatalf("border edge collapsed")
	}
	// moving a pinned vertex is refused as well
	e = Edge{V0: 0, V1: 4, Target: r3.Vec{X: 0.5, Y: 0.5}}
	if _, ok := m.Collapse(e, &cfg); ok {
		t.Fatalf("border vertex moved")
	}
	if m.LiveFaceCount() != 8 {
		t.Fatalf("live=%d", m.LiveFaceCount())
	}
}

func TestCollapseFlip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveBorder = false
	positions, indices := grid(3, nil)
	m := refreshed(t, positions, indices, &cfg)

	e := Edge{V0: 4, V1: 5, Target: r3.Vec{X: -5, Y: 1}}
	if _, ok := m.Collapse(e, &cfg); ok {
		t.Fatalf("collapse folding faces over accepted")
	}
	if m.LiveFaceCount() != 8 || m.Vertex(4).Position != (r3.Vec{X: 1, Y: 1}) {
		t.Fatalf("rejected collapse modified the mesh")
	}
}

func TestCollapseLinkCondition(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveBorder = false

	// edge 0-1 shared by three faces
	fin := []float64{
		0, 0, 0,
		1, 0, 0,
		0.5, 1, 0,
		0.5, -1, 0,
		0.5, 0, 1,
	}
	m := refreshed(t, fin, []int{0, 1, 2, 1, 0, 3, 0, 1, 4}, &cfg)
	if m.manifoldCollapse(0, 1) {
		t.Fatalf("edge of three faces passes the link condition")
	}
	e := Edge{V0: 0, V1: 1, Target: r3.Vec{X: 0.5}}
	if _, ok := m.Collapse(e, &cfg); ok {
		t.Fatalf("non-manifold edge collapsed")
	}

	// 3 and 4 neighbour both ends of edge 0-1 without sharing a face with it
	pinched := []float64{
		0, 0, 0,
		1, 0, 0,
		0.5, 1, 0,
		0.5, -1, 0,
		0.5, -1, 1,
	}
	m = refreshed(t, pinched, []int{0, 1, 2, 0, 3, 4, 1, 4, 3}, &cfg)
	if m.manifoldCollapse(0, 1) {
		t.Fatalf("pinched edge passes the link condition")
	}
	if _, ok := m.Collapse(e, &cfg); ok {
		t.Fatalf("pinched edge collapsed")
	}
	if m.LiveFaceCount() != 3 {
		t.Fatalf("live=%d", m.LiveFaceCount())
	}
}

func TestAspectPenalty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreserveBorder = false
	positions, indices := grid(3, nil)
	m := refreshed(t, positions, indices, &cfg)

	if q := m.collapseQuality(4, 5, r3.Vec{X: 1.5, Y: 1}); q <= 0 || q > 1 {
		t.Fatalf("quality=%v", q)
	}
	// on top of vertex 3, face 0-4-3 would have no area
	if q := m.collapseQuality(4, 5, r3.Vec{X: 0, Y: 1}); q != 0 {
		t.Fatalf("quality of a degenerate result=%v", q)
	}

	plain := cfg
	plain.AspectThreshold = 0
	strict := cfg
	strict.AspectThreshold = 0.9
	unpenalised := m.Evaluate(4, 5, &plain)
	penalised := m.Evaluate(4, 5, &strict)
	if unpenalised.Error != 0 {
		t.Fatalf("flat collapse cost=%v", unpenalised.Error)
	}
	if !(penalised.Error > unpenalised.Error) || math.IsInf(penalised.Error, 1) {
		t.Fatalf("penalised cost=%v", penalised.Error)
	}
}

func TestCurvature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AspectThreshold = 0
	curved := cfg
	curved.PreserveCurvature = true

	// right column raised, folding the sheet along x=1
	positions, indices := grid(3, func(i, j int) float64 {
		if i == 2 {
			return 2
		}
		return 0
	})
	m := refreshed(t, positions, indices, &cfg)

	// pulling vertex 4 off the fold onto the flat side
	plain := m.Evaluate(4, 3, &cfg)
	penalised := m.Evaluate(4, 3, &curved)
	want := (1 - 1/math.Sqrt(5)) / 2
	if d := penalised.Error - plain.Error; math.Abs(d-want) > 1e-9 {
		t.Fatalf("curvature term=%v want=%v", d, want)
	}
	// sliding along the fold keeps it
	if c := m.curvature(1, 4); math.Abs(c) > 1e-12 {
		t.Fatalf("curvature along the fold=%v", c)
	}

	positions, indices = grid(3, nil)
	m = refreshed(t, positions, indices, &cfg)
	if plain, flat := m.Evaluate(4, 3, &cfg), m.Evaluate(4, 3, &curved); plain.Error != flat.Error {
		t.Fatalf("flat sheet costs %v and %v", plain.Error, flat.Error)
	}
}
