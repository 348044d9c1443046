package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUModelData is the GPU-aligned representation of a single per-instance model matrix.
// Size: 64 bytes (mat4x4<f32> = 16 × float32, std430 aligned, no padding required).
type GPUModelData struct {
	Model [16]float32 // offset 0: 4×4 model-to-world transform matrix (64 bytes)
}

// NewGPUModelData wraps a column-major world transform.
func NewGPUModelData(transform mgl32.Mat4) GPUModelData {
	return GPUModelData{Model: transform}
}

// Size returns the size of the GPUModelData struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelData struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, 64)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
	return buf
}

// ModelData returns one GPUModelData per mesh-bearing node, in node id order.
// Every mesh of a node shares that node's entry.
//
// Returns:
//   - []GPUModelData: the per-instance model matrices
//   - []int: the node id of each entry
func (v *SceneView) ModelData() ([]GPUModelData, []int) {
	var data []GPUModelData
	var ids []int
	for _, id := range v.NodeIDs() {
		node := v.Nodes[id]
		if len(node.Meshes) == 0 {
			continue
		}
		data = append(data, NewGPUModelData(node.Transform))
		ids = append(ids, id)
	}
	return data, ids
}

// MarshalModelData packs a slice of GPUModelData into one instance buffer without copying.
//
// Parameters:
//   - data: the per-instance entries, usually from SceneView.ModelData
//
// Returns:
//   - []byte: a byte view of data, 64 bytes per entry, nil when data is empty
func MarshalModelData(data []GPUModelData) []byte {
	return common.SliceToBytes(data)
}

// ComputeBoundingRadius calculates the bounding sphere radius from packed float32x3
// positions. The radius is the maximum distance from the origin across all positions.
//
// Parameters:
//   - positions: the packed position bytes, 12 bytes per vertex
//
// Returns:
//   - float32: the maximum distance from the origin
func ComputeBoundingRadius(positions []byte) float32 {
	var maxDistSq float32
	for off := 0; off+12 <= len(positions); off += 12 {
		p := common.Vec3At(positions, off)
		if distSq := p.Dot(p); distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// Bounds returns the mesh's local-space bounds.
func (m *Mesh) Bounds(buffers *SceneBuffers) common.AABB {
	return common.AABBFromPositions(buffers.Positions.Slice(m.Positions))
}

// Bounds returns the world-space bounds of every mesh in the scene.
//
// Parameters:
//   - buffers: the arenas the scene's ranges address
//
// Returns:
//   - common.AABB: the scene bounds, empty for a scene without meshes
func (v *SceneView) Bounds(buffers *SceneBuffers) common.AABB {
	box := common.EmptyAABB()
	for _, node := range v.Nodes {
		for i := range node.Meshes {
			box = box.Union(node.Meshes[i].Bounds(buffers).Transform(node.Transform))
		}
	}
	return box
}
