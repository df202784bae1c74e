package math

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func TestMulAppliesReceiverFirst(t *testing.T) {
	move := NewMat4Translation(NewVec3(1, 0, 0))
	rot := NewMat4EulerZ(DegToRad(90))

	// translate then rotate: (0,0,0) -> (1,0,0) -> (0,1,0)
	p := move.Mul(rot).MulVec4(Vec4{0, 0, 0, 1})
	require.True(t, p.ToVec3().Compare(NewVec3(0, 1, 0), eps), "got %+v", p)

	// rotate then translate: (0,0,0) -> (0,0,0) -> (1,0,0)
	p = rot.Mul(move).MulVec4(Vec4{0, 0, 0, 1})
	require.True(t, p.ToVec3().Compare(NewVec3(1, 0, 0), eps), "got %+v", p)
}

func TestIdentity(t *testing.T) {
	m := NewMat4EulerZ(0.3)
	require.True(t, m.Mul(NewMat4Identity()).Compare(m, eps))
	require.True(t, NewMat4Identity().Mul(m).Compare(m, eps))
}

func TestLookAt(t *testing.T) {
	eye := NewVec3(2, 2, 2)
	view := NewMat4LookAt(eye, NewVec3(0, 0, 0), NewVec3(0, 0, 1))

	origin := view.MulVec4(eye.ToVec4(1))
	require.True(t, origin.ToVec3().Compare(NewVec3(0, 0, 0), eps), "eye maps to origin, got %+v", origin)

	target := view.MulVec4(Vec4{0, 0, 0, 1})
	require.InDelta(t, 0, target.X, eps)
	require.InDelta(t, 0, target.Y, eps)
	require.InDelta(t, -eye.Length(), target.Z, eps, "target sits on -Z")
}

func TestPerspective(t *testing.T) {
	p := NewMat4Perspective(DegToRad(90), 2, 1, 10)
	require.InDelta(t, 0.5, p.At(0, 0), eps)
	require.InDelta(t, 1, p.At(1, 1), eps)
	require.Equal(t, float32(-1), p.At(3, 2))

	near := p.MulVec4(Vec4{0, 0, -1, 1})
	require.InDelta(t, -1, near.Z/near.W, eps)
	far := p.MulVec4(Vec4{0, 0, -10, 1})
	require.InDelta(t, 1, far.Z/far.W, eps)
}

func TestClamp(t *testing.T) {
	require.Equal(t, uint32(4), Clamp[uint32](9, 1, 4))
	require.Equal(t, uint32(1), Clamp[uint32](0, 1, 4))
	require.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestExtents(t *testing.T) {
	require.Equal(t, float32(2), Extents2D{Width: 800, Height: 400}.AspectRatio())
	require.Equal(t, float32(1), Extents2D{}.AspectRatio())
	require.True(t, Extents2D{Width: 10}.IsZero())
}

func TestDegreeConversion(t *testing.T) {
	require.InDelta(t, K_PI/2, DegToRad(90), 1e-6)
	require.InDelta(t, 180, RadToDeg(K_PI), 1e-4)
}
