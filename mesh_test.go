package qem

import (
	"errors"
	"math"
	"testing"
)

// disc is a flat 10-gon of radius 2 around four interior vertices.
func disc() (positions []float64, indices []int) {
	positions = []float64{
		0.5, 0.5, 0,
		-0.5, 0.5, 0,
		-0.5, -0.5, 0,
		0.5, -0.5, 0,
	}
	for k := 0; k < 10; k++ {
		a := float64(36*k) * math.Pi / 180
		positions = append(positions, 2*math.Cos(a), 2*math.Sin(a), 0)
	}
	indices = []int{
		0, 1, 2, 0, 2, 3, 0, 3, 4, 1, 0, 7,
		2, 1, 9, 3, 2, 12, 4, 5, 0, 5, 6, 0,
		6, 7, 0, 7, 8, 1, 8, 9, 1, 9, 10, 2,
		10, 11, 2, 11, 12, 2, 12, 13, 3, 13, 4, 3,
	}
	return
}

// grid is an n by n lattice of unit squares in the z=0 plane, or raised by
// z(i, j).
func grid(n int, z func(i, j int) float64) (positions []float64, indices []int) {
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			h := 0.0
			if z != nil {
				h = z(i, j)
			}
			positions = append(positions, float64(i), float64(j), h)
		}
	}
	for j := 0; j < n-1; j++ {
		for i := 0; i < n-1; i++ {
			a := j*n + i
			b, c := a+1, a+n
			d := c + 1
			indices = append(indices, a, b, d, a, d, c)
		}
	}
	return
}

// sphere is a closed latitude-longitude unit sphere with a vertex at each
// pole.
func sphere(stacks, slices int) (positions []float64, indices []int) {
	positions = []float64{0, 0, 1}
	for s := 1; s < stacks; s++ {
		phi := math.Pi * float64(s) / float64(stacks)
		for k := 0; k < slices; k++ {
			theta := 2 * math.Pi * float64(k) / float64(slices)
			positions = append(positions,
				math.Sin(phi)*math.Cos(theta), math.Sin(phi)*math.Sin(theta), math.Cos(phi))
		}
	}
	positions = append(positions, 0, 0, -1)
	south := 1 + (stacks-1)*slices
	ring := func(s, k int) int { return 1 + (s-1)*slices + k%slices }

	for k := 0; k < slices; k++ {
		indices = append(indices, 0, ring(1, k), ring(1, k+1))
	}
	for s := 1; s < stacks-1; s++ {
		for k := 0; k < slices; k++ {
			a, b := ring(s, k), ring(s, k+1)
			c, d := ring(s+1, k), ring(s+1, k+1)
			indices = append(indices, a, c, d, a, d, b)
		}
	}
	for k := 0; k < slices; k++ {
		indices = append(indices, south, ring(stacks-1, k+1), ring(stacks-1, k))
	}
	return
}

// strip is a zig-zag of five triangles, all of whose vertices are on the
// boundary. Vertices are numbered in the order the faces first use them.
func strip() (positions []float64, indices []int) {
	positions = []float64{
		0, 0, 0, 1, 0, 0, 0.5, 1, 0, 1.5, 1, 0,
		2, 0, 0, 2.5, 1, 0, 3, 0, 0,
	}
	indices = []int{0, 1, 2, 1, 3, 2, 1, 4, 3, 3, 4, 5, 4, 6, 5}
	return
}

func mustIngest(t *testing.T, positions []float64, indices []int) *Mesh {
	t.Helper()
	m, err := Ingest(positions, indices, nil)
	if err != nil {
		t.Fatalf("Ingest err=%v", err)
	}
	return m
}

func TestIngestErrors(t *testing.T) {
	positions, indices := grid(3, nil)
	nan := append([]float64(nil), positions...)
	nan[4] = math.NaN()

	for _, test := range []struct {
		name      string
		positions []float64
		indices   []int
		materials []int
		want      error
	}{
		{"partial vertex", positions[:len(positions)-1], indices, nil, ErrInvalidTopology},
		{"partial triangle", positions, indices[:len(indices)-1], nil, ErrInvalidTopology},
		{"index out of range", positions, append([]int{0, 1, 9}, indices[3:]...), nil, ErrInvalidTopology},
		{"negative index", positions, append([]int{0, 1, -1}, indices[3:]...), nil, ErrInvalidTopology},
		{"two triangles", positions, indices[:6], nil, ErrInsufficientGeometry},
		{"two vertices", positions[:6], []int{0, 1, 1, 0, 1, 1, 0, 1, 1}, nil, ErrInsufficientGeometry},
		{"material count", positions, indices, []int{1, 2}, ErrInvalidParameter},
		{"non-finite", nan, indices, nil, ErrInvalidParameter},
		{"degenerate", positions, []int{0, 1, 4, 0, 0, 1, 1, 2, 2, 3, 3, 4}, nil, ErrInsufficientGeometry},
	} {
		m, err := Ingest(test.positions, test.indices, test.materials)
		if !errors.Is(err, test.want) {
			t.Errorf("%s: err=%v want %v", test.name, err, test.want)
		}
		if m != nil {
			t.Errorf("%s: returned a mesh", test.name)
		}
	}
}

func TestIngestDegenerateFaces(t *testing.T) {
	positions, indices := grid(3, nil)
	indices = append(indices, 4, 4, 5)
	m := mustIngest(t, positions, indices)
	if m.FaceCount() != 9 || m.LiveFaceCount() != 8 {
		t.Fatalf("faces=%d live=%d", m.FaceCount(), m.LiveFaceCount())
	}
	if !m.Face(8).Deleted {
		t.Fatalf("degenerate face is live")
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify err=%v", err)
	}
}

func TestIngestCopies(t *testing.T) {
	positions, indices := grid(3, nil)
	m := mustIngest(t, positions, indices)
	positions[0] = 42
	indices[0] = 8
	if m.Vertex(0).Position.X != 0 || m.Face(0).V[0] != 0 {
		t.Fatalf("mesh shares caller slices")
	}
}

func TestBuildAdjacency(t *testing.T) {
	positions, indices := grid(3, nil)
	m := mustIngest(t, positions, indices)

	want := map[int]int{0: 2, 2: 1, 4: 6, 8: 2}
	for vi, n := range want {
		count := 0
		m.EachFace(vi, func(fi int) {
			if f := m.Face(fi); !f.references(vi) {
				t.Errorf("vertex %d lists face %d", vi, fi)
			}
			count++
		})
		if count != n {
			t.Errorf("vertex %d faces=%d want %d", vi, count, n)
		}
	}
	if ns := m.neighbours(4); len(ns) != 6 {
		t.Errorf("neighbours(4)=%v", ns)
	}
}

func TestCompactOrder(t *testing.T) {
	positions := []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	indices := []int{3, 1, 0, 3, 0, 2, 3, 2, 1, 0, 1, 2}
	m := mustIngest(t, positions, indices)

	out := NewBuffers(m.VertexCount(), m.FaceCount())
	counts, err := m.Compact(out)
	if err != nil {
		t.Fatalf("Compact err=%v", err)
	}
	if counts != (Counts{Vertices: 4, Triangles: 4}) {
		t.Fatalf("counts=%+v", counts)
	}
	want_indices := []int{0, 1, 2, 0, 2, 3, 0, 3, 1, 2, 1, 3}
	for i, vi := range want_indices {
		if out.Indices[i] != vi {
			t.Fatalf("indices=%v want %v", out.Indices, want_indices)
		}
	}
	want_positions := []float64{0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 1, 0}
	for i, x := range want_positions {
		if out.Positions[i] != x {
			t.Fatalf("positions=%v want %v", out.Positions, want_positions)
		}
	}
}

func TestCompactDropsDeleted(t *testing.T) {
	positions, indices := grid(3, nil)
	m := mustIngest(t, positions, indices)
	cfg := DefaultConfig()
	m.refresh(true, &cfg)

	e := m.Evaluate(4, 0, &cfg)
	if _, ok := m.Collapse(e, &cfg); !ok {
		t.Fatalf("collapse rejected")
	}
	positions, indices, _, err := m.Export()
	if err != nil {
		t.Fatalf("Export err=%v", err)
	}
	if len(positions) != 8*3 || len(indices) != 6*3 {
		t.Fatalf("exported %d vertices %d faces", len(positions)/3, len(indices)/3)
	}
	if m.VertexCount() != 8 || m.FaceCount() != 6 || m.LiveFaceCount() != 6 {
		t.Fatalf("mesh not compacted: %d vertices %d faces", m.VertexCount(), m.FaceCount())
	}
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify err=%v", err)
	}
}

func TestCompactBufferTooSmall(t *testing.T) {
	positions, indices := grid(3, nil)
	m := mustIngest(t, positions, indices)
	out := NewBuffers(m.VertexCount()-1, m.FaceCount())
	if _, err := m.Compact(out); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err=%v", err)
	}
	if m.LiveFaceCount() != 8 || m.VertexCount() != 9 {
		t.Fatalf("mesh modified by failed Compact")
	}
}

func TestVerify(t *testing.T) {
	positions, indices := grid(3, nil)
	m := mustIngest(t, positions, indices)
	if err := m.Verify(); err != nil {
		t.Fatalf("Verify err=%v", err)
	}
	m.faces[0].V[1] = m.faces[0].V[0]
	if err := m.Verify(); err == nil {
		t.Fatalf("repeated vertex not reported")
	}
	m.faces[0].V[1] = 1
	m.vertices[1].Deleted = true
	if err := m.Verify(); err == nil {
		t.Fatalf("deleted vertex not reported")
	}
}

func TestScale(t *testing.T) {
	positions, _ := disc()
	if s := Scale(positions); math.Abs(s-4) > 1e-12 {
		t.Fatalf("Scale=%v", s)
	}
	bb := BoundingBox(positions)
	if bb.Min.Z != 0 || bb.Max.Z != 0 {
		t.Fatalf("bounds=%v", bb)
	}
}
