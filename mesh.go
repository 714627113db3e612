// Package qem reduces indexed triangle meshes by iterative edge collapse,
// choosing collapses by the quadric error metric.
//
// A Mesh is one simplification session. It owns its vertex and face arrays,
// which keep stable indices for the whole session: collapses only flag
// vertices and faces as deleted, and Compact remaps the survivors once at
// the end.
package qem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fewest faces a reduction may leave behind.
const MinTriangles = 4

type Mesh struct {
	vertices []Vertex
	faces    []Face
	refs     []ref

	// number of faces not flagged deleted
	live int

	verbose   bool
	fallbacks int
}

// Buffers receive the result of Compact. Callers size them to the vertex and
// face counts of the input, the engine never writes past that and reports
// how much of each it used.
type Buffers struct {
	Positions []float64
	Indices   []int
	// optional, one material id per face
	Materials []int
}

func NewBuffers(vertex_count, face_count int) *Buffers {
	return &Buffers{
		Positions: make([]float64, vertex_count*3),
		Indices:   make([]int, face_count*3),
		Materials: make([]int, face_count),
	}
}

func (b *Buffers) fits(vertex_count, face_count int) error {
	if b == nil {
		return fmt.Errorf("%w: no output buffers", ErrInvalidParameter)
	}
	if len(b.Positions) < vertex_count*3 {
		return fmt.Errorf("%w: position buffer holds %d vertices, need %d",
			ErrInvalidParameter, len(b.Positions)/3, vertex_count)
	}
	if len(b.Indices) < face_count*3 {
		return fmt.Errorf("%w: index buffer holds %d faces, need %d",
			ErrInvalidParameter, len(b.Indices)/3, face_count)
	}
	if b.Materials != nil && len(b.Materials) < face_count {
		return fmt.Errorf("%w: material buffer holds %d faces, need %d",
			ErrInvalidParameter, len(b.Materials), face_count)
	}
	return nil
}

// Counts reports how much of each output buffer Compact wrote.
type Counts struct {
	Vertices  int
	Triangles int
}

// Ingest validates flat position and index arrays and builds a Mesh from
// copies of them. materials may be nil. Faces that repeat a vertex are kept
// for index stability but start out deleted.
func Ingest(positions []float64, indices []int, materials []int) (m *Mesh, err error) {
	if len(positions)%3 != 0 {
		err = fmt.Errorf("%w: %d position components is not a whole number of vertices",
			ErrInvalidTopology, len(positions))
		return
	}
	if len(indices)%3 != 0 {
		err = fmt.Errorf("%w: %d indices is not a whole number of triangles",
			ErrInvalidTopology, len(indices))
		return
	}
	vertex_count := len(positions) / 3
	face_count := len(indices) / 3
	if vertex_count < 3 || face_count < 3 {
		err = fmt.Errorf("%w: %d vertices and %d triangles",
			ErrInsufficientGeometry, vertex_count, face_count)
		return
	}
	if materials != nil && len(materials) != face_count {
		err = fmt.Errorf("%w: %d materials for %d triangles",
			ErrInvalidParameter, len(materials), face_count)
		return
	}
	for i, index := range indices {
		if index < 0 || index >= vertex_count {
			err = fmt.Errorf("%w: triangle %d references vertex %d of %d",
				ErrInvalidTopology, i/3, index, vertex_count)
			return
		}
	}
	for i, x := range positions {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			err = fmt.Errorf("%w: vertex %d has a non-finite coordinate",
				ErrInvalidParameter, i/3)
			return
		}
	}

	m = &Mesh{
		vertices: make([]Vertex, vertex_count),
		faces:    make([]Face, face_count),
	}
	for i := range m.vertices {
		m.vertices[i].Position = r3.Vec{X: positions[i*3], Y: positions[i*3+1], Z: positions[i*3+2]}
	}
	for i := range m.faces {
		f := &m.faces[i]
		f.V = [3]int{indices[i*3], indices[i*3+1], indices[i*3+2]}
		if materials != nil {
			f.Material = materials[i]
		}
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[2] == f.V[0] {
			f.Deleted = true
			continue
		}
		m.live++
	}
	if m.live < 3 {
		m = nil
		err = fmt.Errorf("%w: only %d non-degenerate triangles", ErrInsufficientGeometry, face_count)
		return
	}
	m.BuildAdjacency()
	return
}

// VertexCount and FaceCount include deleted entries, they are the sizes
// output buffers must have.
func (m *Mesh) VertexCount() int { return len(m.vertices) }
func (m *Mesh) FaceCount() int   { return len(m.faces) }

func (m *Mesh) LiveFaceCount() int { return m.live }

func (m *Mesh) LiveVertexCount() (n int) {
	seen := make([]bool, len(m.vertices))
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for _, vi := range f.V {
			if !seen[vi] {
				seen[vi] = true
				n++
			}
		}
	}
	return
}

// BuildAdjacency derives, for every vertex, the list of live faces
// referencing it. Cheap enough to run every few iterations, it is not kept
// exact after every collapse.
func (m *Mesh) BuildAdjacency() {
	for vi := range m.vertices {
		m.vertices[vi].tstart = 0
		m.vertices[vi].tcount = 0
	}
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for _, vi := range f.V {
			m.vertices[vi].tcount++
		}
	}
	tstart := 0
	for vi := range m.vertices {
		v := &m.vertices[vi]
		v.tstart = tstart
		tstart += v.tcount
		v.tcount = 0
	}
	if cap(m.refs) < tstart {
		m.refs = make([]ref, tstart)
	}
	m.refs = m.refs[:tstart]
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for corner, vi := range f.V {
			v := &m.vertices[vi]
			m.refs[v.tstart+v.tcount] = ref{face: fi, corner: corner}
			v.tcount++
		}
	}
}

// Compact drops deleted faces and every vertex no live face uses, renumbers
// the surviving vertices in the order the surviving faces first reference
// them, and writes the dense result into a prefix of out. The Mesh itself is
// left dense as well, so indices in Vertex and Face match the output.
func (m *Mesh) Compact(out *Buffers) (counts Counts, err error) {
	index_map := make([]int, len(m.vertices))
	for i := range index_map {
		index_map[i] = -1
	}
	for fi := range m.faces {
		f := &m.faces[fi]
		if f.Deleted {
			continue
		}
		for _, vi := range f.V {
			if index_map[vi] < 0 {
				index_map[vi] = counts.Vertices
				counts.Vertices++
			}
		}
		counts.Triangles++
	}
	if err = out.fits(counts.Vertices, counts.Triangles); err != nil {
		counts = Counts{}
		return
	}

	vertices := make([]Vertex, counts.Vertices)
	for vi, nvi := range index_map {
		if nvi >= 0 {
			vertices[nvi] = m.vertices[vi]
			vertices[nvi].Deleted = false
		}
	}
	faces := make([]Face, 0, counts.Triangles)
	for fi := range m.faces {
		f := m.faces[fi]
		if f.Deleted {
			continue
		}
		for j, vi := range f.V {
			f.V[j] = index_map[vi]
		}
		faces = append(faces, f)
	}
	m.vertices = vertices
	m.faces = faces
	m.live = len(faces)
	m.BuildAdjacency()

	for vi, v := range m.vertices {
		out.Positions[vi*3] = v.Position.X
		out.Positions[vi*3+1] = v.Position.Y
		out.Positions[vi*3+2] = v.Position.Z
	}
	for fi, f := range m.faces {
		copy(out.Indices[fi*3:fi*3+3], f.V[:])
		if out.Materials != nil {
			out.Materials[fi] = f.Material
		}
	}
	return
}

// Export compacts the mesh into freshly allocated, exactly sized slices.
func (m *Mesh) Export() (positions []float64, indices []int, materials []int, err error) {
	out := NewBuffers(len(m.vertices), len(m.faces))
	counts, err := m.Compact(out)
	if err != nil {
		return
	}
	return out.Positions[:counts.Vertices*3], out.Indices[:counts.Triangles*3], out.Materials[:counts.Triangles], nil
}
