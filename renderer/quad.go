package renderer

import "github.com/go-gl/mathgl/mgl32"

// QuadVertexCount is the number of vertices drawn per frame.
const QuadVertexCount = 6

// Two triangles covering clip space.
var quadVertices = [QuadVertexCount]mgl32.Vec2{
	{-1.0, -1.0},
	{1.0, -1.0},
	{-1.0, 1.0},
	{-1.0, 1.0},
	{1.0, -1.0},
	{1.0, 1.0},
}

// QuadVertices returns the full-screen quad as tightly packed xy pairs.
func QuadVertices() []float32 {
	out := make([]float32, 0, QuadVertexCount*2)
	for _, v := range quadVertices {
		out = append(out, v.X(), v.Y())
	}
	return out
}
