package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored column by column, the layout GLSL expects
// for a mat4 in a uniform block or push constant. Element (row r, column c)
// lives at Data[c*4+r].
type Mat4 struct {
	Data [16]float32
}

// Extents2D is the size of a 2D surface in pixels.
type Extents2D struct {
	Width, Height uint32
}

// AspectRatio returns width over height, or 1 for a degenerate extent.
func (e Extents2D) AspectRatio() float32 {
	if e.Width == 0 || e.Height == 0 {
		return 1
	}
	return float32(e.Width) / float32(e.Height)
}

func (e Extents2D) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}
