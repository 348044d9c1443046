package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeTRSOrder(t *testing.T) {
	// 90 degrees about Z.
	r := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1})
	m := ComposeTRS([3]float32{10, 0, 0}, [4]float32{r.V[0], r.V[1], r.V[2], r.W}, [3]float32{2, 2, 2})

	// (1,0,0) scaled to (2,0,0), rotated to (0,2,0), translated to (10,2,0).
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 10, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 0, p.Z(), 1e-5)
}

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS([3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	assert.True(t, m.ApproxEqual(mgl32.Ident4()))
}

func TestMat4FromFloat64(t *testing.T) {
	var src [16]float64
	for i := range src {
		src[i] = float64(i) + 0.5
	}
	m := Mat4FromFloat64(src)
	assert.Equal(t, float32(12.5), m[12])
	assert.Equal(t, float32(12.5), m.At(0, 3))
}

func TestFloat32RoundTrip(t *testing.T) {
	buf := make([]byte, 20)
	PutFloat32s(buf, 1, -2, 3.5, 4, 5)

	assert.Equal(t, mgl32.Vec3{1, -2, 3.5}, Vec3At(buf, 0))
	assert.Equal(t, mgl32.Vec2{4, 5}, Vec2At(buf, 12))
}

func TestSliceToBytes(t *testing.T) {
	b := SliceToBytes([]uint32{1, 2})
	require.Len(t, b, 8)
	assert.Equal(t, byte(1), b[0])
	assert.Nil(t, SliceToBytes([]uint32{}))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "image/jpeg", Coalesce("", "image/jpeg", "image/png"))
	assert.Equal(t, "", Coalesce[string]())
}

func TestDefaultSamplerStagingData(t *testing.T) {
	s := DefaultSamplerStagingData()
	assert.Equal(t, wgpu.AddressModeRepeat, s.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, s.MinFilter)
	assert.Equal(t, float32(32), s.LodMaxClamp)
}

func TestAABBFromPositions(t *testing.T) {
	var positions []byte
	for _, v := range []float32{-1, 0, 2, 3, -4, 0} {
		positions = binary.LittleEndian.AppendUint32(positions, math.Float32bits(v))
	}

	box := AABBFromPositions(positions)
	assert.False(t, box.IsEmpty())
	assert.Equal(t, mgl32.Vec3{-1, -4, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{3, 0, 2}, box.Max)
	assert.Equal(t, mgl32.Vec3{1, -2, 1}, box.Center())
}

func TestAABBEmpty(t *testing.T) {
	box := AABBFromPositions(nil)
	assert.True(t, box.IsEmpty())
	assert.Zero(t, box.Radius())
	assert.True(t, box.Transform(mgl32.Translate3D(1, 2, 3)).IsEmpty())

	other := EmptyAABB().Extend(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, other, other.Union(box))
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 0}}

	moved := box.Transform(mgl32.Translate3D(10, 0, 0))
	assert.InDelta(t, 10, moved.Min.X(), 1e-6)
	assert.InDelta(t, 11, moved.Max.X(), 1e-6)

	rotated := box.Transform(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	assert.InDelta(t, -2, rotated.Min.X(), 1e-5)
	assert.InDelta(t, 0, rotated.Max.X(), 1e-5)
	assert.InDelta(t, 1, rotated.Max.Y(), 1e-5)
}
