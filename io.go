package qem

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

type meshParseSchema struct {
	Name      string `json:"name"`
	Verts     string `json:"verts"`
	Faces     string `json:"faces"`
	Materials string `json:"materials,omitempty"`
}

// MeshData is a mesh in flat array form, as read from and written to files.
type MeshData struct {
	Name      string
	Positions []float64
	Indices   []int
	Materials []int
}

func (md *MeshData) VertexCount() int { return len(md.Positions) / 3 }
func (md *MeshData) FaceCount() int   { return len(md.Indices) / 3 }

func (md *MeshData) Ingest() (*Mesh, error) {
	return Ingest(md.Positions, md.Indices, md.Materials)
}

// Simplify decimates md in place, replacing its arrays with the result.
func (md *MeshData) Simplify(cfg Config) (res Result, err error) {
	out := NewBuffers(md.VertexCount(), md.FaceCount())
	if md.Materials == nil {
		out.Materials = nil
	}
	res, err = Simplify(md.Positions, md.Indices, md.Materials, cfg, out)
	if err != nil && !errors.Is(err, ErrNoProgress) {
		return
	}
	md.Positions = out.Positions[:res.Vertices*3]
	md.Indices = out.Indices[:res.Triangles*3]
	if md.Materials != nil {
		md.Materials = out.Materials[:res.Triangles]
	}
	return
}

// Load parses a mesh from the JSON format, where vertex coordinates, face
// indices and optional face materials are comma separated strings.
func Load(md_reader io.Reader) (md *MeshData, err error) {
	// Parse json from reader and load with temporary types
	parsed_data := new(meshParseSchema)
	err = json.NewDecoder(md_reader).Decode(parsed_data)
	if err != nil {
		err = errors.New("Could not parse json from md_reader")
		return
	}

	md = &MeshData{Name: parsed_data.Name}
	md.Positions, err = parseCSFloats(parsed_data.Verts)
	if err != nil {
		err = errors.New("Could not parse vertices for: " + parsed_data.Name)
		return
	}
	md.Indices, err = parseCSInts(parsed_data.Faces)
	if err != nil {
		err = errors.New("Could not parse faces for: " + parsed_data.Name)
		return
	}
	// Materials are optional
	if len(parsed_data.Materials) > 0 {
		md.Materials, err = parseCSInts(parsed_data.Materials)
		if err != nil {
			err = errors.New("Could not parse materials for: " + parsed_data.Name)
			return
		}
	}
	return
}

func (md *MeshData) Save(md_writer io.Writer) (err error) {
	parsed_data := meshParseSchema{
		Name:  md.Name,
		Verts: formatCSFloats(md.Positions),
		Faces: formatCSInts(md.Indices),
	}
	if len(md.Materials) > 0 {
		parsed_data.Materials = formatCSInts(md.Materials)
	}
	err = json.NewEncoder(md_writer).Encode(&parsed_data)
	if err != nil {
		err = errors.New("Could not encode json for: " + md.Name)
	}
	return
}

func ReadFile(md_file_path string) (md *MeshData, err error) {
	// open file
	input_file, err := os.Open(md_file_path)
	if err != nil {
		return
	}
	defer input_file.Close()

	md, err = Load(input_file)
	return
}

func (md *MeshData) WriteFile(md_file_path string) (err error) {
	// Serialize JSON and stream to a file
	output_file, err := os.Create(md_file_path)
	if err != nil {
		return
	}
	defer output_file.Close()
	return md.Save(output_file)
}
