package model

import (
	"cmp"
	"slices"
)

// MaterialSlot identifies a texture slot of a material.
type MaterialSlot int

const (
	SlotBaseColor MaterialSlot = iota
	SlotMetallicRoughness
	SlotNormal
	SlotEmissive
	SlotOcclusion
	// SlotOther is a named slot not covered by the fixed set; see MaterialKey.Name.
	SlotOther
)

// String returns the slot name.
func (s MaterialSlot) String() string {
	switch s {
	case SlotBaseColor:
		return "BaseColor"
	case SlotMetallicRoughness:
		return "MetallicRoughness"
	case SlotNormal:
		return "Normal"
	case SlotEmissive:
		return "Emissive"
	case SlotOcclusion:
		return "Occlusion"
	default:
		return "Other"
	}
}

// MaterialKey is the key of a material's texture map. Name is only set for SlotOther.
type MaterialKey struct {
	Slot MaterialSlot
	Name string
}

// Key returns the MaterialKey for one of the fixed slots.
func Key(slot MaterialSlot) MaterialKey {
	return MaterialKey{Slot: slot}
}

// OtherKey returns a MaterialKey for a named slot outside the fixed set.
func OtherKey(name string) MaterialKey {
	return MaterialKey{Slot: SlotOther, Name: name}
}

// String returns the slot name, or the custom name for SlotOther.
func (k MaterialKey) String() string {
	if k.Slot == SlotOther {
		return k.Name
	}
	return k.Slot.String()
}

// Compare orders keys by slot and then by name.
func (k MaterialKey) Compare(o MaterialKey) int {
	if c := cmp.Compare(k.Slot, o.Slot); c != 0 {
		return c
	}
	return cmp.Compare(k.Name, o.Name)
}

// TextureData describes one material slot: either a texture reference or just a factor.
type TextureData struct {
	// ImageID is the index into SceneView.Images, nil when the slot has no texture.
	ImageID *int

	// Factor is the slot's constant factor.
	// BaseColor: RGBA base color. MetallicRoughness: [0, roughness, metallic, 0].
	Factor [4]float32

	// TexCoord is the texture coordinate set the slot samples.
	TexCoord int

	// Sampler is the index into SceneView.Samplers.
	Sampler int

	// Scale is the normal scale or occlusion strength (1 otherwise).
	Scale float32
}

// AlphaMode mirrors the glTF alpha mode of a material.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

func (a AlphaMode) String() string {
	switch a {
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	default:
		return "opaque"
	}
}

// Material is a resolved glTF material.
type Material struct {
	// Name is the material's name (may be empty).
	Name string

	// Textures maps each resolved slot to its data.
	Textures map[MaterialKey]TextureData

	// EmissiveFactor is the material's RGB emissive factor.
	EmissiveFactor [3]float32

	// AlphaMode is the material's alpha mode.
	AlphaMode AlphaMode

	// AlphaCutoff is the alpha threshold used with AlphaMask.
	AlphaCutoff float32

	// DoubleSided disables back-face culling when true.
	DoubleSided bool
}

// Keys returns the material's slot keys in slot order.
func (m *Material) Keys() []MaterialKey {
	keys := make([]MaterialKey, 0, len(m.Textures))
	for k := range m.Textures {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, MaterialKey.Compare)
	return keys
}

// Slot returns the TextureData of a fixed slot.
func (m *Material) Slot(slot MaterialSlot) (TextureData, bool) {
	td, ok := m.Textures[Key(slot)]
	return td, ok
}
