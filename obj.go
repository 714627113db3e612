package qem

import (
	"os"

	gomesh "github.com/nat-n/gomesh/mesh"
	"github.com/nat-n/gomesh/triplebuffer"
)

// FromGomesh flattens a gomesh mesh into position and index arrays.
func FromGomesh(m *gomesh.Mesh) (positions []float64, indices []int) {
	positions = make([]float64, 0, m.Verts.Len()*3)
	indices = make([]int, 0, m.Faces.Len()*3)
	m.Verts.EachWithIndex(func(i int, x, y, z float64) {
		positions = append(positions, x, y, z)
	})
	m.Faces.Each(func(x, y, z int) {
		indices = append(indices, x, y, z)
	})
	return
}

// ToGomesh builds a gomesh mesh, e.g. for writing OBJ files, from position
// and index arrays.
func ToGomesh(name string, positions []float64, indices []int) *gomesh.Mesh {
	m := gomesh.New(name)

	// Initialise empty buffers with exactly the required length array
	//  underlying
	m.Verts = triplebuffer.NewVertexBuffer()
	m.Verts.Buffer = make([]float64, 0, len(positions))
	m.Faces.Buffer = make([]int, 0, len(indices))

	for i := 0; i+2 < len(positions); i += 3 {
		m.Verts.Append(positions[i], positions[i+1], positions[i+2])
	}
	for i := 0; i+2 < len(indices); i += 3 {
		m.Faces.Append(indices[i], indices[i+1], indices[i+2])
	}
	return m
}

// ReadOBJFile loads the positions and triangles of an OBJ file.
func ReadOBJFile(obj_file_path string) (positions []float64, indices []int, err error) {
	m, err := gomesh.ReadOBJFile(obj_file_path)
	if err != nil {
		return
	}
	positions, indices = FromGomesh(m)
	return
}

// WriteOBJFile writes positions and indices as an OBJ file, reporting a
// failure to create or close it.
func WriteOBJFile(obj_file_path, name string, positions []float64, indices []int) (err error) {
	obj_file, err := os.Create(obj_file_path)
	if err != nil {
		return
	}
	ToGomesh(name, positions, indices).WriteOBJ(obj_file)
	return obj_file.Close()
}
