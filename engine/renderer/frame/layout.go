package frame

import (
	"unsafe"

	"github.com/spaghettifunk/vkspin/engine/math"
)

const (
	// VertexStride is the tightly packed size of one Vertex.
	VertexStride = uint32(unsafe.Sizeof(Vertex{}))
	// VertexColorOffset is the byte offset of the color attribute.
	VertexColorOffset = uint32(unsafe.Offsetof(Vertex{}.Color))
	// PushConstantSize is the inline payload: one column major mat4.
	PushConstantSize = uint32(unsafe.Sizeof(math.Mat4{}))
	// UniformBufferSize is the descriptor bound range: model, view, proj.
	UniformBufferSize = uint64(unsafe.Sizeof(UniformBufferObject{}))
)

// Vertex matches the shader inputs: location 0 position, location 1 color.
type Vertex struct {
	Position math.Vec3
	Color    math.Vec3
}

// UniformBufferObject is the std140 block at set 0, binding 0.
type UniformBufferObject struct {
	Model math.Mat4
	View  math.Mat4
	Proj  math.Mat4
}

// Bytes views the block as raw memory for copying into a mapped buffer.
// The slice aliases u.
func (u *UniformBufferObject) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), unsafe.Sizeof(*u))
}

// VerticesBytes views a vertex slice as raw memory. The slice aliases v.
func VerticesBytes(v []Vertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(VertexStride))
}

var (
	red   = math.NewVec3(1, 0, 0)
	green = math.NewVec3(0, 1, 0)
	blue  = math.NewVec3(0, 0, 1)
	white = math.NewVec3(1, 1, 1)
)

// TetrahedronVertices returns the four coloured corners expanded to four
// triangles, so one non-indexed draw covers the whole mesh.
func TetrahedronVertices() []Vertex {
	a := Vertex{Position: math.NewVec3(0, -0.5, 0), Color: red}
	b := Vertex{Position: math.NewVec3(-0.5, 0.5, 0.5), Color: green}
	c := Vertex{Position: math.NewVec3(0.5, 0.5, 0.5), Color: blue}
	d := Vertex{Position: math.NewVec3(0, 0.5, -0.5), Color: white}
	return []Vertex{
		a, b, c,
		a, c, d,
		a, d, b,
		b, d, c,
	}
}
