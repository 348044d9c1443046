package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// ComposeTRS builds a local transform from translation, rotation and scale.
// The result is T * R * S: scale first, then rotate, then translate.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion as (x, y, z, w)
//   - s: the scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func ComposeTRS(t [3]float32, r [4]float32, s [3]float32) mgl32.Mat4 {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
	translate := mgl32.Translate3D(t[0], t[1], t[2])
	scale := mgl32.Scale3D(s[0], s[1], s[2])
	return translate.Mul4(q.Mat4()).Mul4(scale)
}

// Mat4FromFloat64 narrows a column-major float64 matrix to an mgl32.Mat4.
func Mat4FromFloat64(m [16]float64) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// SliceToBytes converts any slice to a byte slice view for buffer uploads.
// The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// PutFloat32s writes values into dst as little-endian float32s.
// dst must hold at least 4*len(values) bytes.
func PutFloat32s(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Float32At reads the little-endian float32 at byte offset off.
func Float32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

// Vec3At reads three little-endian float32s starting at byte offset off.
func Vec3At(b []byte, off int) mgl32.Vec3 {
	return mgl32.Vec3{Float32At(b, off), Float32At(b, off+4), Float32At(b, off+8)}
}

// Vec2At reads two little-endian float32s starting at byte offset off.
func Vec2At(b []byte, off int) mgl32.Vec2 {
	return mgl32.Vec2{Float32At(b, off), Float32At(b, off+4)}
}
