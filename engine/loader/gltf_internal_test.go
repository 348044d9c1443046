package loader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGLTFAttributeFormat(t *testing.T) {
	tests := []struct {
		name     string
		semantic attributeSemantic
		acc      gltf.Accessor
		stride   int
		want     wgpu.VertexFormat
		wantErr  bool
	}{
		{
			name:     "float positions",
			semantic: semanticPosition,
			acc:      gltf.Accessor{Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			want:     wgpu.VertexFormatFloat32x3,
		},
		{
			name:     "strided float normals",
			semantic: semanticNormal,
			acc:      gltf.Accessor{Type: gltf.AccessorVec3, ComponentType: gltf.ComponentFloat},
			stride:   32,
			want:     wgpu.VertexFormatFloat32x3,
		},
		{
			name:     "float tangents",
			semantic: semanticTangent,
			acc:      gltf.Accessor{Type: gltf.AccessorVec4, ComponentType: gltf.ComponentFloat},
			want:     wgpu.VertexFormatFloat32x4,
		},
		{
			name:     "normalized ubyte uv",
			semantic: semanticTexCoord,
			acc:      gltf.Accessor{Type: gltf.AccessorVec2, ComponentType: gltf.ComponentUbyte, Normalized: true},
			want:     wgpu.VertexFormatUnorm8x2,
		},
		{
			name:     "normalized ushort uv",
			semantic: semanticTexCoord,
			acc:      gltf.Accessor{Type: gltf.AccessorVec2, ComponentType: gltf.ComponentUshort, Normalized: true},
			stride:   4,
			want:     wgpu.VertexFormatUnorm16x2,
		},
		{
			name:     "unnormalized ushort uv",
			semantic: semanticTexCoord,
			acc:      gltf.Accessor{Type: gltf.AccessorVec2, ComponentType: gltf.ComponentUshort},
			wantErr:  true,
		},
		{
			name:     "vec2 positions",
			semantic: semanticPosition,
			acc:      gltf.Accessor{Type: gltf.AccessorVec2, ComponentType: gltf.ComponentFloat},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gltfAttributeFormat(tt.semantic, &tt.acc, tt.stride)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGLTFVertexFormatSize(t *testing.T) {
	assert.Equal(t, 2, gltfVertexFormatSize(wgpu.VertexFormatUnorm8x2))
	assert.Equal(t, 4, gltfVertexFormatSize(wgpu.VertexFormatUnorm16x2))
	assert.Equal(t, 8, gltfVertexFormatSize(wgpu.VertexFormatFloat32x2))
	assert.Equal(t, 12, gltfVertexFormatSize(wgpu.VertexFormatFloat32x3))
	assert.Equal(t, 16, gltfVertexFormatSize(wgpu.VertexFormatFloat32x4))
}

func TestGLTFDeinterleave(t *testing.T) {
	src := []byte{1, 2, 9, 9, 3, 4, 9, 9, 5, 6}

	out, err := gltfDeinterleave(src, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, out)

	_, err = gltfDeinterleave(src, 1, 2)
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = gltfDeinterleave([]byte{1, 2, 9, 9, 3}, 4, 2)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestGLTFDecodeDataURI(t *testing.T) {
	data, mime, err := gltfDecodeDataURI("data:image/png;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", mime)

	data, mime, err = gltfDecodeDataURI("data:,AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Empty(t, mime)

	_, _, err = gltfDecodeDataURI("data:image/png;base64")
	require.ErrorIs(t, err, ErrInvalidDataURI)
	assert.ErrorIs(t, err, ErrEncoding)

	_, _, err = gltfDecodeDataURI("data:image/png;base64,@@@")
	require.ErrorIs(t, err, ErrBase64Decode)
}

func TestGLTFSamplerToStagingData(t *testing.T) {
	s := gltfSamplerToStagingData(&gltf.Sampler{
		MagFilter: gltf.MagLinear,
		MinFilter: gltf.MinLinearMipMapLinear,
		WrapS:     gltf.WrapMirroredRepeat,
		WrapT:     gltf.WrapClampToEdge,
	})
	assert.Equal(t, wgpu.FilterModeLinear, s.MagFilter)
	assert.Equal(t, wgpu.FilterModeLinear, s.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeLinear, s.MipmapFilter)
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, s.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeV)

	def := gltfSamplerToStagingData(nil)
	assert.Equal(t, wgpu.AddressModeRepeat, def.AddressModeU)
	assert.Equal(t, wgpu.FilterModeLinear, def.MagFilter)
}

func TestGLTFExtractSamplersDefault(t *testing.T) {
	samplers := gltfExtractSamplers(&gltf.Document{})
	require.Len(t, samplers, 1)
	assert.Equal(t, wgpu.AddressModeRepeat, samplers[0].AddressModeU)
}

func TestGLTFAlphaMode(t *testing.T) {
	assert.Equal(t, "opaque", gltfAlphaMode(gltf.AlphaOpaque).String())
	assert.Equal(t, "mask", gltfAlphaMode(gltf.AlphaMask).String())
	assert.Equal(t, "blend", gltfAlphaMode(gltf.AlphaBlend).String())
}

func TestGLTFIsCompressionFallback(t *testing.T) {
	buf := &gltf.Buffer{Extensions: gltf.Extensions{
		extMeshoptCompression: map[string]any{"fallback": true},
	}}
	assert.True(t, gltfIsCompressionFallback(buf))

	buf.Extensions[extMeshoptCompression] = map[string]any{"fallback": false}
	assert.False(t, gltfIsCompressionFallback(buf))

	assert.False(t, gltfIsCompressionFallback(&gltf.Buffer{}))
}
