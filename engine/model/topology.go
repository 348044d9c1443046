package model

import "github.com/cogentcore/webgpu/wgpu"

// PrimitiveMode is the topology of a mesh primitive.
type PrimitiveMode int

const (
	ModePoints PrimitiveMode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// String returns the glTF name of the mode.
func (m PrimitiveMode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeLineLoop:
		return "LINE_LOOP"
	case ModeLineStrip:
		return "LINE_STRIP"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	default:
		return "UNKNOWN"
	}
}

// Topology returns the wgpu primitive topology for the mode.
// Line loops and triangle fans have no wgpu equivalent and report false.
//
// Returns:
//   - wgpu.PrimitiveTopology: the matching topology
//   - bool: false when wgpu has no matching topology
func (m PrimitiveMode) Topology() (wgpu.PrimitiveTopology, bool) {
	switch m {
	case ModePoints:
		return wgpu.PrimitiveTopologyPointList, true
	case ModeLines:
		return wgpu.PrimitiveTopologyLineList, true
	case ModeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case ModeTriangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	case ModeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	default:
		return wgpu.PrimitiveTopologyTriangleList, false
	}
}
