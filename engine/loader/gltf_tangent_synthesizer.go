package loader

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	tangentElementSize   = 16 // vec4 float32
	bitangentElementSize = 12 // vec3 float32
)

// gltfTangentSynthesizerImpl is the implementation of the gltfTangentSynthesizer interface.
type gltfTangentSynthesizerImpl struct {
	buffers *model.SceneBuffers
	logger  *slog.Logger
}

// gltfTangentSynthesizer computes per-triangle tangent space vectors for flattened meshes.
type gltfTangentSynthesizer interface {
	// Synthesize emits tangents and bitangents for a triangle-list mesh with positions and UV0.
	// One vector is emitted per triangle corner. A mesh that already has tangents only
	// receives bitangents. Other meshes are left untouched.
	//
	// Parameters:
	//   - mesh: the mesh to update in place
	//
	// Returns:
	//   - int: the number of triangles whose vectors are not finite
	//   - error: ErrOutOfBounds if an index references a vertex the arenas do not hold
	Synthesize(mesh *model.Mesh) (int, error)
}

var _ gltfTangentSynthesizer = &gltfTangentSynthesizerImpl{}

// newGLTFTangentSynthesizer creates a tangent synthesizer over the given arenas.
//
// Parameters:
//   - buffers: the arenas meshes address and tangents are appended to
//   - logger: the logger used to report non-finite results
//
// Returns:
//   - gltfTangentSynthesizer: the synthesizer
func newGLTFTangentSynthesizer(buffers *model.SceneBuffers, logger *slog.Logger) gltfTangentSynthesizer {
	return &gltfTangentSynthesizerImpl{buffers: buffers, logger: logger}
}

// Synthesize solves, per triangle with edges e1, e2 and uv deltas (du1, dv1), (du2, dv2):
//
//	r = 1 / (du1*dv2 - du2*dv1)
//	T = (e1*dv2 - e2*dv1) * r
//	B = (e2*du1 - e1*du2) * r
//
// B is negated for the renderer's top-left texture origin. A zero determinant
// is not special-cased and yields non-finite vectors.
func (s *gltfTangentSynthesizerImpl) Synthesize(mesh *model.Mesh) (int, error) {
	if mesh.UV0 == nil || mesh.Mode != model.ModeTriangles {
		return 0, nil
	}

	positions := s.buffers.Positions.Slice(mesh.Positions)
	uvs := s.buffers.TexCoord(mesh.UV0Set).Slice(*mesh.UV0)
	indices := s.buffers.Indices.Slice(mesh.Index.Range)
	uvSize := gltfVertexFormatSize(mesh.UV0Format)
	if mesh.VertexSize <= 0 || uvSize <= 0 {
		return 0, fmt.Errorf("mesh %d primitive %d: vertex size %d uv size %d: %w", mesh.ID, mesh.Primitive, mesh.VertexSize, uvSize, ErrUnsupportedFormat)
	}

	vertices := min(mesh.VertexCount, len(positions)/mesh.VertexSize, len(uvs)/uvSize)
	triangles := min(mesh.Index.Count, len(indices)/indexElementSize) / 3
	emitTangents := mesh.Tangents == nil

	var tanView []byte
	var tanRange model.Range
	if emitTangents {
		tanRange, tanView = s.buffers.Tangents.Grow(triangles * 3 * tangentElementSize)
	}
	bitRange, bitView := s.buffers.BiTangents.Grow(triangles * 3 * bitangentElementSize)

	nonFinite := 0
	for tri := 0; tri < triangles; tri++ {
		var corner [3]int
		for k := range corner {
			idx := int(binary.LittleEndian.Uint32(indices[(tri*3+k)*indexElementSize:]))
			if idx >= vertices {
				return 0, fmt.Errorf("triangle %d: index %d beyond %d vertices: %w", tri, idx, vertices, ErrOutOfBounds)
			}
			corner[k] = idx
		}

		p0 := common.Vec3At(positions, corner[0]*mesh.VertexSize)
		p1 := common.Vec3At(positions, corner[1]*mesh.VertexSize)
		p2 := common.Vec3At(positions, corner[2]*mesh.VertexSize)
		uv0 := gltfDecodeUV(uvs, corner[0]*uvSize, mesh.UV0Format)
		uv1 := gltfDecodeUV(uvs, corner[1]*uvSize, mesh.UV0Format)
		uv2 := gltfDecodeUV(uvs, corner[2]*uvSize, mesh.UV0Format)

		e1, e2 := p1.Sub(p0), p2.Sub(p0)
		du1, dv1 := uv1.X()-uv0.X(), uv1.Y()-uv0.Y()
		du2, dv2 := uv2.X()-uv0.X(), uv2.Y()-uv0.Y()

		r := 1 / (du1*dv2 - du2*dv1)
		tangent := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
		bitangent := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(-r)

		if !gltfFiniteVec3(tangent) || !gltfFiniteVec3(bitangent) {
			nonFinite++
		}

		for k := 0; k < 3; k++ {
			v := tri*3 + k
			if emitTangents {
				common.PutFloat32s(tanView[v*tangentElementSize:], tangent.X(), tangent.Y(), tangent.Z(), 1)
			}
			common.PutFloat32s(bitView[v*bitangentElementSize:], bitangent.X(), bitangent.Y(), bitangent.Z())
		}
	}

	if emitTangents {
		mesh.Tangents = &tanRange
		mesh.TangentFormat = wgpu.VertexFormatFloat32x4
	}
	mesh.BiTangents = &bitRange

	if nonFinite > 0 {
		s.logger.Warn("degenerate uv triangles produced non-finite tangent vectors",
			"mesh", mesh.ID, "primitive", mesh.Primitive, "triangles", nonFinite)
	}
	return nonFinite, nil
}

// gltfDecodeUV decodes one texture coordinate in the given vertex format.
func gltfDecodeUV(b []byte, off int, format wgpu.VertexFormat) mgl32.Vec2 {
	switch format {
	case wgpu.VertexFormatUnorm16x2:
		return mgl32.Vec2{
			float32(binary.LittleEndian.Uint16(b[off:])) / 65535,
			float32(binary.LittleEndian.Uint16(b[off+2:])) / 65535,
		}
	case wgpu.VertexFormatUnorm8x2:
		return mgl32.Vec2{float32(b[off]) / 255, float32(b[off+1]) / 255}
	default:
		return common.Vec2At(b, off)
	}
}

func gltfFiniteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}
