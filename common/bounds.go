package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. An empty box has Min greater than Max.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns a box that contains nothing and grows to fit the first point it is extended by.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// AABBFromPositions bounds tightly packed little-endian float32x3 positions.
//
// Parameters:
//   - positions: the packed position bytes, 12 bytes per vertex
//
// Returns:
//   - AABB: the bounds, empty when there are no positions
func AABBFromPositions(positions []byte) AABB {
	box := EmptyAABB()
	for off := 0; off+12 <= len(positions); off += 12 {
		box = box.Extend(Vec3At(positions, off))
	}
	return box
}

// IsEmpty reports whether the box contains no point.
func (b AABB) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Extend returns the box grown to contain p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Transform returns the bounds of the box's eight corners after applying m.
//
// Parameters:
//   - m: the transform to apply
//
// Returns:
//   - AABB: the transformed bounds, empty if the box is empty
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}

	out := EmptyAABB()
	for corner := 0; corner < 8; corner++ {
		p := b.Min
		if corner&1 != 0 {
			p[0] = b.Max[0]
		}
		if corner&2 != 0 {
			p[1] = b.Max[1]
		}
		if corner&4 != 0 {
			p[2] = b.Max[2]
		}
		out = out.Extend(mgl32.TransformCoordinate(p, m))
	}
	return out
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the radius of the sphere around Center that encloses the box.
func (b AABB) Radius() float32 {
	if b.IsEmpty() {
		return 0
	}
	return b.Max.Sub(b.Min).Len() * 0.5
}
