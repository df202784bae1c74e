package frame

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkspin/engine/math"
)

var extent = math.Extents2D{Width: 800, Height: 600}

func TestComputeTransformsIsPure(t *testing.T) {
	a := ComputeTransforms(3.7, extent)
	b := ComputeTransforms(3.7, extent)
	require.Equal(t, a, b)
	require.Equal(t, a.MVP(), b.MVP())
}

func TestModelRotatesNinetyDegreesPerSecond(t *testing.T) {
	tr := ComputeTransforms(1, extent)
	p := tr.Model.MulVec4(math.Vec4{X: 1, W: 1})
	require.True(t, p.ToVec3().Compare(math.NewVec3(0, 1, 0), 1e-5), "got %+v", p)

	require.True(t, ComputeTransforms(0, extent).Model.Compare(math.NewMat4Identity(), 0))
}

func TestProjectionFlipsY(t *testing.T) {
	tr := ComputeTransforms(0, extent)
	require.Less(t, tr.Proj.At(1, 1), float32(0))
	require.Greater(t, tr.Proj.At(0, 0), float32(0))
	require.InDelta(t, float64(-tr.Proj.At(1, 1)/extent.AspectRatio()), float64(tr.Proj.At(0, 0)), 1e-5)
}

func TestMVPComposesProjViewModel(t *testing.T) {
	tr := ComputeTransforms(0.5, extent)
	v := math.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 1}

	want := tr.Proj.MulVec4(tr.View.MulVec4(tr.Model.MulVec4(v)))
	got := tr.MVP().MulVec4(v)
	require.InDelta(t, want.X, got.X, 1e-5)
	require.InDelta(t, want.Y, got.Y, 1e-5)
	require.InDelta(t, want.Z, got.Z, 1e-5)
	require.InDelta(t, want.W, got.W, 1e-5)
}

func TestUniformCarriesSameMatrices(t *testing.T) {
	tr := ComputeTransforms(2, extent)
	ubo := tr.Uniform()
	require.Equal(t, tr.Model, ubo.Model)
	require.Equal(t, tr.View, ubo.View)
	require.Equal(t, tr.Proj, ubo.Proj)
}

func TestLayouts(t *testing.T) {
	require.Equal(t, uint32(24), VertexStride)
	require.Equal(t, uint32(12), VertexColorOffset)
	require.Equal(t, uint32(64), PushConstantSize)
	require.Equal(t, uint64(192), UniformBufferSize)

	ubo := UniformBufferObject{}
	ubo.View.Data[0] = 1
	require.Len(t, ubo.Bytes(), 192)
	require.Equal(t, []byte{0, 0, 0x80, 0x3f}, ubo.Bytes()[64:68], "view starts after model, little endian 1.0")

	verts := TetrahedronVertices()
	require.Len(t, verts, 12)
	require.Len(t, VerticesBytes(verts), 12*24)
	require.Nil(t, VerticesBytes(nil))
}
