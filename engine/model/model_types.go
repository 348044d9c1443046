package model

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// --- Buffer Types ---

// SceneBuffers holds every byte arena produced by a single load.
// Meshes and images address these arenas through Range values.
type SceneBuffers struct {
	// Positions holds vertex positions (vec3 float32).
	Positions *Arena

	// Normals holds vertex normals (vec3 float32).
	Normals *Arena

	// Tangents holds source or synthesized tangents (vec4 float32).
	Tangents *Arena

	// BiTangents holds synthesized bitangents (vec3 float32).
	BiTangents *Arena

	// TexCoords holds one arena per texture coordinate set.
	TexCoords []*Arena

	// Indices holds normalized uint32 indices.
	Indices *Arena

	// Shared holds encoded image bytes.
	Shared *Arena
}

// NewSceneBuffers creates an empty set of arenas.
//
// Returns:
//   - *SceneBuffers: the empty buffers
func NewSceneBuffers() *SceneBuffers {
	return &SceneBuffers{
		Positions:  NewArena(0),
		Normals:    NewArena(0),
		Tangents:   NewArena(0),
		BiTangents: NewArena(0),
		TexCoords:  []*Arena{NewArena(0)},
		Indices:    NewArena(0),
		Shared:     NewArena(0),
	}
}

// TexCoord returns the arena for texture coordinate set n, creating any
// missing arenas up to n.
func (b *SceneBuffers) TexCoord(n int) *Arena {
	for len(b.TexCoords) <= n {
		b.TexCoords = append(b.TexCoords, NewArena(0))
	}
	return b.TexCoords[n]
}

// --- Scene Graph Types ---

// Index describes a mesh's index data after normalization to uint32.
type Index struct {
	// Range is the byte range in SceneBuffers.Indices.
	Range Range

	// Count is the number of indices.
	Count int

	// ElementSize is the byte size of one index. Always 4.
	ElementSize int

	// Format is the wgpu index format matching ElementSize.
	Format wgpu.IndexFormat
}

// Mesh is one flattened glTF primitive.
type Mesh struct {
	// ID is the index of the glTF mesh this primitive belongs to.
	ID int

	// Primitive is the primitive index within the glTF mesh.
	Primitive int

	// VertexCount is the number of vertices (position elements).
	VertexCount int

	// VertexSize is the byte size of one position element.
	VertexSize int

	// Positions is the byte range in SceneBuffers.Positions.
	Positions Range

	// PositionFormat is the vertex format of the position data.
	PositionFormat wgpu.VertexFormat

	// Normals is the byte range in SceneBuffers.Normals, nil when absent.
	Normals *Range

	// NormalFormat is the vertex format of the normal data.
	NormalFormat wgpu.VertexFormat

	// UV0 is the byte range of the first texture coordinate set, nil when absent.
	UV0 *Range

	// UV0Format is the vertex format of the UV0 data.
	UV0Format wgpu.VertexFormat

	// UV0Set is the texture coordinate set UV0 was read from.
	UV0Set int

	// Tangents is the byte range in SceneBuffers.Tangents, nil when absent.
	Tangents *Range

	// TangentFormat is the vertex format of the tangent data.
	TangentFormat wgpu.VertexFormat

	// BiTangents is the byte range in SceneBuffers.BiTangents, nil unless synthesized.
	BiTangents *Range

	// Index is the normalized index data.
	Index Index

	// Mode is the primitive topology.
	Mode PrimitiveMode

	// Material is the index into SceneView.Materials, nil when unset.
	Material *int
}

// Node is a scene graph node with its composed world transform.
type Node struct {
	// ID is the original glTF node index.
	ID int

	// Name is the node's name (may be empty).
	Name string

	// Transform is the world transform: all ancestor local transforms times the node's own.
	Transform mgl32.Mat4

	// Meshes holds one Mesh per primitive of the node's glTF mesh.
	Meshes []Mesh

	// Children are the original ids of the node's children.
	Children []int
}

// Image is an encoded image stored in SceneBuffers.Shared.
type Image struct {
	// Name is the image's name (may be empty).
	Name string

	// Range is the byte range in SceneBuffers.Shared.
	Range Range

	// MimeType is the declared, sniffed or default mime type.
	MimeType string

	// Source records where the bytes came from.
	Source ImageSource

	// TargetFormat is the pixel format hint: sRGB for color data, linear otherwise.
	TargetFormat wgpu.TextureFormat
}

// ImageSource identifies where an image's bytes were read from.
type ImageSource int

const (
	// ImageSourceURI is an external file next to the document.
	ImageSourceURI ImageSource = iota
	// ImageSourceDataURI is an inline base64 data URI.
	ImageSourceDataURI
	// ImageSourceBufferView is a buffer view inside a document buffer.
	ImageSourceBufferView
)

// String returns a readable name for the image source.
func (s ImageSource) String() string {
	switch s {
	case ImageSourceURI:
		return "uri"
	case ImageSourceDataURI:
		return "data-uri"
	case ImageSourceBufferView:
		return "buffer-view"
	default:
		return "unknown"
	}
}

// SceneView is the immutable scene description returned by a load.
type SceneView struct {
	// Name is the default scene's name, or the document name when unnamed.
	Name string

	// Nodes holds every node reachable from the default scene, keyed by original id.
	Nodes map[int]*Node

	// Roots are the default scene's root node ids in document order.
	Roots []int

	// Materials are the document materials in document order.
	Materials []Material

	// Images are the document images in document order.
	Images []Image

	// Samplers are the document samplers in document order.
	Samplers []common.SamplerStagingData
}

// NodeIDs returns the ids of every node in the scene in ascending order.
func (v *SceneView) NodeIDs() []int {
	ids := make([]int, 0, len(v.Nodes))
	for id := range v.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Meshes returns every mesh in the scene, ordered by node id then primitive.
func (v *SceneView) Meshes() []*Mesh {
	var meshes []*Mesh
	for _, id := range v.NodeIDs() {
		node := v.Nodes[id]
		for i := range node.Meshes {
			meshes = append(meshes, &node.Meshes[i])
		}
	}
	return meshes
}
