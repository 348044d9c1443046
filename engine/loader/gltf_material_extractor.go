package loader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
)

// gltfSelfDescribingMimeTypes are containers that carry their own pixel format,
// so a normal-map slot never overrides their target format.
var gltfSelfDescribingMimeTypes = map[string]bool{
	"image/ktx2":       true,
	"image/ktx":        true,
	"image/vnd-ms.dds": true,
}

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	document *gltf.Document
	logger   *slog.Logger

	// claims records which slot fixed each image's target format first.
	claims map[int]model.MaterialSlot
}

// gltfMaterialExtractor resolves material texture slots against already extracted images.
type gltfMaterialExtractor interface {
	// ExtractAllMaterials resolves every material in document order.
	// Normal-map slots switch their image's target format to linear in place.
	//
	// Parameters:
	//   - images: the extracted images, indexed by document image id
	//
	// Returns:
	//   - []model.Material: the resolved materials
	//   - error: ErrMissingReference for dangling texture, image or sampler ids
	ExtractAllMaterials(images []model.Image) ([]model.Material, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

// newGLTFMaterialExtractor creates a new material extractor for a parsed document.
//
// Parameters:
//   - doc: the parsed document
//   - logger: the logger used for conflicting image format claims
//
// Returns:
//   - gltfMaterialExtractor: the material extractor
func newGLTFMaterialExtractor(doc *gltf.Document, logger *slog.Logger) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{
		document: doc,
		logger:   logger,
		claims:   make(map[int]model.MaterialSlot),
	}
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials(images []model.Image) ([]model.Material, error) {
	materials := make([]model.Material, 0, len(e.document.Materials))
	for i, mat := range e.document.Materials {
		out, err := e.extractMaterial(mat, images)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials = append(materials, out)
	}
	return materials, nil
}

// extractMaterial resolves the BaseColor, MetallicRoughness, Normal and Occlusion slots in that order.
func (e *gltfMaterialExtractorImpl) extractMaterial(mat *gltf.Material, images []model.Image) (model.Material, error) {
	out := model.Material{
		Name:        mat.Name,
		Textures:    make(map[model.MaterialKey]model.TextureData, 4),
		AlphaMode:   gltfAlphaMode(mat.AlphaMode),
		AlphaCutoff: 0.5,
		DoubleSided: mat.DoubleSided,
	}
	if mat.AlphaCutoff != nil {
		out.AlphaCutoff = float32(*mat.AlphaCutoff)
	}
	for i, v := range mat.EmissiveFactor {
		out.EmissiveFactor[i] = float32(v)
	}

	baseColor := [4]float32{1, 1, 1, 1}
	metallic, roughness := float32(1), float32(1)
	var baseColorTex, metallicRoughnessTex *gltf.TextureInfo
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		bc := pbr.BaseColorFactorOrDefault()
		baseColor = [4]float32{float32(bc[0]), float32(bc[1]), float32(bc[2]), float32(bc[3])}
		metallic = float32(pbr.MetallicFactorOrDefault())
		roughness = float32(pbr.RoughnessFactorOrDefault())
		baseColorTex = pbr.BaseColorTexture
		metallicRoughnessTex = pbr.MetallicRoughnessTexture
	}

	slots := []struct {
		slot     model.MaterialSlot
		index    *int
		texCoord int
		factor   [4]float32
		scale    float32
	}{
		{slot: model.SlotBaseColor, factor: baseColor, scale: 1},
		{slot: model.SlotMetallicRoughness, factor: [4]float32{0, roughness, metallic, 0}, scale: 1},
		{slot: model.SlotNormal, scale: 1},
		{slot: model.SlotOcclusion, scale: 1},
	}
	if baseColorTex != nil {
		slots[0].index, slots[0].texCoord = &baseColorTex.Index, baseColorTex.TexCoord
	}
	if metallicRoughnessTex != nil {
		slots[1].index, slots[1].texCoord = &metallicRoughnessTex.Index, metallicRoughnessTex.TexCoord
	}
	if nt := mat.NormalTexture; nt != nil {
		slots[2].index, slots[2].texCoord, slots[2].scale = nt.Index, nt.TexCoord, float32(nt.ScaleOrDefault())
	}
	if ot := mat.OcclusionTexture; ot != nil {
		slots[3].index, slots[3].texCoord, slots[3].scale = ot.Index, ot.TexCoord, float32(ot.StrengthOrDefault())
	}

	for _, s := range slots {
		td, err := e.resolveSlot(s.slot, s.index, s.texCoord, s.factor, s.scale, images)
		if err != nil {
			return model.Material{}, fmt.Errorf("%s: %w", s.slot, err)
		}
		out.Textures[model.Key(s.slot)] = td
	}
	return out, nil
}

// resolveSlot builds a slot's TextureData. A nil texture index yields factor-only data.
func (e *gltfMaterialExtractorImpl) resolveSlot(slot model.MaterialSlot, textureIndex *int, texCoord int, factor [4]float32, scale float32, images []model.Image) (model.TextureData, error) {
	td := model.TextureData{
		Factor: factor,
		Scale:  scale,
	}
	if textureIndex == nil {
		return td, nil
	}
	td.TexCoord = texCoord

	if *textureIndex < 0 || *textureIndex >= len(e.document.Textures) {
		return model.TextureData{}, fmt.Errorf("%w: texture %d", ErrMissingReference, *textureIndex)
	}
	tex := e.document.Textures[*textureIndex]

	if tex.Sampler != nil {
		if *tex.Sampler < 0 || *tex.Sampler >= len(e.document.Samplers) {
			return model.TextureData{}, fmt.Errorf("%w: sampler %d", ErrMissingReference, *tex.Sampler)
		}
		td.Sampler = *tex.Sampler
	}

	if tex.Source != nil {
		imageID := *tex.Source
		if imageID < 0 || imageID >= len(images) {
			return model.TextureData{}, fmt.Errorf("%w: image %d", ErrMissingReference, imageID)
		}
		td.ImageID = &imageID
		e.claimImage(imageID, slot, images)
	}
	return td, nil
}

// claimImage applies a slot's target format to an image, first writer wins.
// Only BaseColor (color) and Normal (linear) claim images.
func (e *gltfMaterialExtractorImpl) claimImage(imageID int, slot model.MaterialSlot, images []model.Image) {
	if slot != model.SlotBaseColor && slot != model.SlotNormal {
		return
	}

	if prev, ok := e.claims[imageID]; ok {
		if prev != slot {
			e.logger.Warn("image shared by slots with conflicting target formats, keeping first",
				"image", imageID, "kept", prev.String(), "ignored", slot.String())
		}
		return
	}
	e.claims[imageID] = slot

	img := &images[imageID]
	if slot == model.SlotNormal && !gltfSelfDescribingMimeTypes[img.MimeType] {
		img.TargetFormat = wgpu.TextureFormatRGBA8Unorm
	}
}

// gltfAlphaMode maps a glTF alpha mode to the model alpha mode.
func gltfAlphaMode(mode gltf.AlphaMode) model.AlphaMode {
	switch mode {
	case gltf.AlphaMask:
		return model.AlphaMask
	case gltf.AlphaBlend:
		return model.AlphaBlend
	default:
		return model.AlphaOpaque
	}
}
