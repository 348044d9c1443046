package loader

import (
	"encoding/binary"
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/qmuntal/gltf"
)

// indexElementSize is the byte size of every index after normalization.
const indexElementSize = 4

// gltfNormalizeIndices reads an index accessor into the index arena as uint32 values.
// 32-bit indices are appended as-is, 16-bit indices are zero-extended.
//
// Parameters:
//   - reader: the accessor reader
//   - accessorIndex: the index accessor
//   - out: the index arena
//
// Returns:
//   - model.Index: the appended range and count, with ElementSize 4
//   - error: ErrUnsupportedIndexType for any other component type
func gltfNormalizeIndices(reader gltfAccessorReader, accessorIndex int, out *model.Arena) (model.Index, error) {
	acc, err := reader.Accessor(accessorIndex)
	if err != nil {
		return model.Index{}, err
	}
	if acc.Type != gltf.AccessorScalar {
		return model.Index{}, fmt.Errorf("%w: index accessor %d is not SCALAR", ErrUnsupportedFormat, accessorIndex)
	}

	switch acc.ComponentType {
	case gltf.ComponentUint:
		read, err := reader.Read(accessorIndex, out)
		if err != nil {
			return model.Index{}, err
		}
		return gltfIndex(read.Range, read.Count), nil

	case gltf.ComponentUshort:
		scratch, count, elemSize, err := reader.ReadBytes(accessorIndex)
		if err != nil {
			return model.Index{}, err
		}
		n := len(scratch) / elemSize
		r, dst := out.Grow(n * indexElementSize)
		for i := 0; i < n; i++ {
			v := binary.LittleEndian.Uint16(scratch[i*elemSize:])
			binary.LittleEndian.PutUint32(dst[i*indexElementSize:], uint32(v))
		}
		return gltfIndex(r, count), nil

	default:
		return model.Index{}, fmt.Errorf("accessor %d componentType=%v: %w", accessorIndex, acc.ComponentType, ErrUnsupportedIndexType)
	}
}

func gltfIndex(r model.Range, count int) model.Index {
	return model.Index{
		Range:       r,
		Count:       count,
		ElementSize: indexElementSize,
		Format:      wgpu.IndexFormatUint32,
	}
}
