package loader

import (
	"github.com/Carmen-Shannon/oxy-scene/common"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
)

// gltfExtractSamplers converts the document samplers in document order.
// A document without samplers yields a single default sampler so that
// sampler index 0 is always valid.
//
// Parameters:
//   - doc: the parsed document
//
// Returns:
//   - []common.SamplerStagingData: the converted samplers
func gltfExtractSamplers(doc *gltf.Document) []common.SamplerStagingData {
	if len(doc.Samplers) == 0 {
		return []common.SamplerStagingData{common.DefaultSamplerStagingData()}
	}

	samplers := make([]common.SamplerStagingData, len(doc.Samplers))
	for i, s := range doc.Samplers {
		samplers[i] = gltfSamplerToStagingData(s)
	}
	return samplers
}

// gltfSamplerToStagingData converts a glTF sampler definition into SamplerStagingData.
// Any unset fields in the glTF sampler fall back to the glTF defaults (linear filtering, repeat wrapping).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
//
// Parameters:
//   - s: the glTF sampler to convert
//
// Returns:
//   - common.SamplerStagingData: the converted sampler staging data
func gltfSamplerToStagingData(s *gltf.Sampler) common.SamplerStagingData {
	result := common.DefaultSamplerStagingData()
	if s == nil {
		return result
	}

	switch s.MagFilter {
	case gltf.MagNearest:
		result.MagFilter = wgpu.FilterModeNearest
	case gltf.MagLinear:
		result.MagFilter = wgpu.FilterModeLinear
	}

	switch s.MinFilter {
	case gltf.MinNearest, gltf.MinNearestMipMapNearest, gltf.MinNearestMipMapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	case gltf.MinLinear, gltf.MinLinearMipMapNearest, gltf.MinLinearMipMapLinear:
		result.MinFilter = wgpu.FilterModeLinear
	}

	// The mipmap filter follows the minification variant; plain filters sample no mip chain.
	switch s.MinFilter {
	case gltf.MinNearestMipMapNearest, gltf.MinLinearMipMapNearest:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case gltf.MinNearestMipMapLinear, gltf.MinLinearMipMapLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeLinear
	case gltf.MinNearest, gltf.MinLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	}

	result.AddressModeU = gltfWrapToAddressMode(s.WrapS)
	result.AddressModeV = gltfWrapToAddressMode(s.WrapT)
	return result
}

// gltfWrapToAddressMode converts a glTF wrap mode to a wgpu AddressMode.
//
// Parameters:
//   - wrap: the glTF wrap mode
//
// Returns:
//   - wgpu.AddressMode: the corresponding wgpu address mode
func gltfWrapToAddressMode(wrap gltf.WrappingMode) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
