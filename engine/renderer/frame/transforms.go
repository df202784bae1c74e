package frame

import (
	"github.com/spaghettifunk/vkspin/engine/math"
)

const (
	RotationDegreesPerSecond float32 = 90
	FieldOfViewDegrees       float32 = 45
	NearClip                 float32 = 0.1
	FarClip                  float32 = 10
)

var (
	cameraEye    = math.NewVec3(2, 2, 2)
	cameraTarget = math.NewVec3(0, 0, 0)
	cameraUp     = math.NewVec3(0, 0, 1)
)

// Transforms is the model, view and projection for one frame.
type Transforms struct {
	Model math.Mat4
	View  math.Mat4
	Proj  math.Mat4
}

// ComputeTransforms is a pure function of the elapsed seconds and the
// swapchain extent. The projection has Y flipped for Vulkan clip space.
func ComputeTransforms(seconds float64, extent math.Extents2D) Transforms {
	angle := math.DegToRad(float32(seconds) * RotationDegreesPerSecond)
	proj := math.NewMat4Perspective(math.DegToRad(FieldOfViewDegrees), extent.AspectRatio(), NearClip, FarClip)
	proj.Data[5] *= -1
	return Transforms{
		Model: math.NewMat4EulerZ(angle),
		View:  math.NewMat4LookAt(cameraEye, cameraTarget, cameraUp),
		Proj:  proj,
	}
}

// MVP returns proj·view·model, the matrix pushed inline with each draw.
func (t Transforms) MVP() math.Mat4 {
	return t.Model.Mul(t.View).Mul(t.Proj)
}

func (t Transforms) Uniform() UniformBufferObject {
	return UniformBufferObject{Model: t.Model, View: t.View, Proj: t.Proj}
}
