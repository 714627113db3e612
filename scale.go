package qem

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox of a flat position array.
func BoundingBox(positions []float64) (bb r3.Box) {
	for i := 0; i+2 < len(positions); i += 3 {
		p := r3.Vec{X: positions[i], Y: positions[i+1], Z: positions[i+2]}
		if i == 0 {
			bb.Min, bb.Max = p, p
			continue
		}
		bb.Min = r3.Vec{X: math.Min(bb.Min.X, p.X), Y: math.Min(bb.Min.Y, p.Y), Z: math.Min(bb.Min.Z, p.Z)}
		bb.Max = r3.Vec{X: math.Max(bb.Max.X, p.X), Y: math.Max(bb.Max.Y, p.Y), Z: math.Max(bb.Max.Z, p.Z)}
	}
	return
}

// Scale is the largest dimension of the bounding box of positions, the length
// errors can be expressed relative to.
func Scale(positions []float64) float64 {
	bb := BoundingBox(positions)
	d := r3.Sub(bb.Max, bb.Min)
	return math.Max(math.Max(d.X, d.Y), d.Z)
}
