package loader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
)

// attributeSemantic names the vertex attributes the loader flattens.
type attributeSemantic string

const (
	semanticPosition attributeSemantic = gltf.POSITION
	semanticNormal   attributeSemantic = gltf.NORMAL
	semanticTangent  attributeSemantic = gltf.TANGENT
	semanticTexCoord attributeSemantic = "TEXCOORD"
)

// attributeFormatKey is one row key of the attribute decision table.
// Strided is false when the buffer view declares no stride.
type attributeFormatKey struct {
	Semantic      attributeSemantic
	Type          gltf.AccessorType
	ComponentType gltf.ComponentType
	Normalized    bool
	Strided       bool
}

// gltfAttributeFormats lists every (semantic, shape, component type, normalized, stride)
// combination the loader reads. Anything missing is ErrUnsupportedFormat.
var gltfAttributeFormats = map[attributeFormatKey]wgpu.VertexFormat{
	{semanticPosition, gltf.AccessorVec3, gltf.ComponentFloat, false, false}: wgpu.VertexFormatFloat32x3,
	{semanticPosition, gltf.AccessorVec3, gltf.ComponentFloat, false, true}:  wgpu.VertexFormatFloat32x3,

	{semanticNormal, gltf.AccessorVec3, gltf.ComponentFloat, false, false}: wgpu.VertexFormatFloat32x3,
	{semanticNormal, gltf.AccessorVec3, gltf.ComponentFloat, false, true}:  wgpu.VertexFormatFloat32x3,

	{semanticTangent, gltf.AccessorVec4, gltf.ComponentFloat, false, false}: wgpu.VertexFormatFloat32x4,
	{semanticTangent, gltf.AccessorVec4, gltf.ComponentFloat, false, true}:  wgpu.VertexFormatFloat32x4,

	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentFloat, false, false}: wgpu.VertexFormatFloat32x2,
	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentFloat, false, true}:  wgpu.VertexFormatFloat32x2,
	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentUshort, true, false}: wgpu.VertexFormatUnorm16x2,
	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentUshort, true, true}:  wgpu.VertexFormatUnorm16x2,
	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentUbyte, true, false}:  wgpu.VertexFormatUnorm8x2,
	{semanticTexCoord, gltf.AccessorVec2, gltf.ComponentUbyte, true, true}:   wgpu.VertexFormatUnorm8x2,
}

// gltfAttributeFormat looks up the vertex format of an attribute accessor.
//
// Parameters:
//   - semantic: the attribute being read
//   - acc: the attribute's accessor
//   - stride: the byte stride of the accessor's buffer view, 0 when none
//
// Returns:
//   - wgpu.VertexFormat: the vertex format of the de-interleaved data
//   - error: ErrUnsupportedFormat for combinations outside the table
func gltfAttributeFormat(semantic attributeSemantic, acc *gltf.Accessor, stride int) (wgpu.VertexFormat, error) {
	key := attributeFormatKey{
		Semantic:      semantic,
		Type:          acc.Type,
		ComponentType: acc.ComponentType,
		Normalized:    acc.Normalized,
		Strided:       stride > 0,
	}
	format, ok := gltfAttributeFormats[key]
	if !ok {
		return wgpu.VertexFormatUndefined, fmt.Errorf("%w: %s accessor type=%v componentType=%v normalized=%t stride=%d",
			ErrUnsupportedFormat, semantic, acc.Type, acc.ComponentType, acc.Normalized, stride)
	}
	return format, nil
}

// gltfVertexFormatSize returns the byte size of the vertex formats the loader produces.
func gltfVertexFormatSize(format wgpu.VertexFormat) int {
	switch format {
	case wgpu.VertexFormatUnorm8x2:
		return 2
	case wgpu.VertexFormatUnorm16x2:
		return 4
	case wgpu.VertexFormatFloat32x2:
		return 8
	case wgpu.VertexFormatFloat32x3:
		return 12
	case wgpu.VertexFormatFloat32x4:
		return 16
	default:
		return 0
	}
}
