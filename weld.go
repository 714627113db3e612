package qem

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Welding:
// --------
// Exporters often split vertices along UV or normal seams, which leaves
// position-identical copies that make the surface look open along those
// seams. Weld merges vertices lying within a distance tolerance of each
// other, so the border classifier sees the surface as connected. To find the
// copies, all vertices are sorted by x, y, z. Walking the sorted list, each
// vertex not yet merged keeps its position and takes in the later vertices
// within tolerance of it, looking only as far as x stays within tolerance.
// With a zero tolerance only exact copies merge, onto the first of them in
// input order.

type indexedVertex struct {
	Vertex r3.Vec
	Index  int
}

type sortableVertices []indexedVertex

func (vs sortableVertices) Len() int      { return len(vs) }
func (vs sortableVertices) Swap(i, j int) { vs[i], vs[j] = vs[j], vs[i] }

type vertsByPosition struct{ sortableVertices }

func (vs vertsByPosition) Less(i, j int) bool {
	a := vs.sortableVertices[i]
	b := vs.sortableVertices[j]
	if a.Vertex.X != b.Vertex.X {
		return a.Vertex.X < b.Vertex.X
	}
	if a.Vertex.Y != b.Vertex.Y {
		return a.Vertex.Y < b.Vertex.Y
	}
	if a.Vertex.Z != b.Vertex.Z {
		return a.Vertex.Z < b.Vertex.Z
	}
	return a.Index < b.Index
}

// Weld returns new position and index arrays in which vertices no further
// than tolerance apart are merged, and how many vertices were dropped. A
// negative tolerance is treated as zero. Out of range indices are passed
// through. Surviving vertices keep their position and relative order. The
// inputs are not modified.
func Weld(positions []float64, indices []int, tolerance float64) (welded_positions []float64, welded_indices []int, merged int) {
	tolerance = math.Max(tolerance, 0)
	vertex_count := len(positions) / 3
	vs := make(sortableVertices, vertex_count)
	for i := range vs {
		vs[i] = indexedVertex{
			Vertex: r3.Vec{X: positions[i*3], Y: positions[i*3+1], Z: positions[i*3+2]},
			Index:  i,
		}
	}
	sort.Sort(vertsByPosition{vs})

	// point every vertex at the vertex it merges into, or itself
	canonical := make([]int, vertex_count)
	for i := range canonical {
		canonical[i] = -1
	}
	max_dist_sq := tolerance * tolerance
	for i, v := range vs {
		if canonical[v.Index] >= 0 {
			continue
		}
		canonical[v.Index] = v.Index
		for _, w := range vs[i+1:] {
			if !(w.Vertex.X-v.Vertex.X <= tolerance) {
				break
			}
			if canonical[w.Index] >= 0 {
				continue
			}
			if d := r3.Sub(w.Vertex, v.Vertex); r3.Dot(d, d) <= max_dist_sq {
				canonical[w.Index] = v.Index
				merged++
			}
		}
	}

	index_map := make([]int, vertex_count)
	welded_positions = make([]float64, 0, (vertex_count-merged)*3)
	for vi := 0; vi < vertex_count; vi++ {
		if canonical[vi] != vi {
			continue
		}
		index_map[vi] = len(welded_positions) / 3
		welded_positions = append(welded_positions, positions[vi*3:vi*3+3]...)
	}
	welded_indices = make([]int, len(indices))
	for i, vi := range indices {
		if vi < 0 || vi >= vertex_count {
			// left for Ingest to reject
			welded_indices[i] = vi
			continue
		}
		welded_indices[i] = index_map[canonical[vi]]
	}
	return
}

// Weld merges vertices of md no further than tolerance apart, in place.
func (md *MeshData) Weld(tolerance float64) (merged int) {
	md.Positions, md.Indices, merged = Weld(md.Positions, md.Indices, tolerance)
	return
}
