package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/qmuntal/gltf"
)

// accessorRead is the result of reading one accessor into an arena.
type accessorRead struct {
	// Range is the appended byte range.
	Range model.Range
	// Count is the number of elements extracted, at most the accessor's declared count.
	Count int
	// ElementSize is the byte size of one element.
	ElementSize int
}

// gltfAccessorReaderImpl is the implementation of the gltfAccessorReader interface.
type gltfAccessorReaderImpl struct {
	document *gltf.Document
	buffers  map[int][]byte
}

// gltfAccessorReader extracts accessor and buffer view bytes from resolved buffers.
type gltfAccessorReader interface {
	// Accessor returns the accessor with the given index.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - *gltf.Accessor: the accessor
	//   - error: ErrMissingReference if the index is dangling
	Accessor(accessorIndex int) (*gltf.Accessor, error)

	// Stride returns the byte stride of the accessor's buffer view, 0 when none is declared.
	Stride(acc *gltf.Accessor) int

	// Read extracts an accessor's elements and appends them to out.
	// Interleaved views are de-interleaved so that only the accessor's own bytes are kept.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - out: the arena to append to
	//
	// Returns:
	//   - accessorRead: the appended range, element count and element size
	//   - error: error if the accessor cannot be read
	Read(accessorIndex int, out *model.Arena) (accessorRead, error)

	// ReadBytes extracts an accessor's elements into a new slice.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: the tightly packed element bytes
	//   - int: the element count, lower than declared when the view is shorter than the accessor
	//   - int: the element size
	//   - error: error if the accessor cannot be read
	ReadBytes(accessorIndex int) ([]byte, int, int, error)

	// ReadBufferView returns a copy of a buffer view's bytes.
	// Views with a stride are rejected since there is no element size to honor it with.
	//
	// Parameters:
	//   - viewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: the view's bytes
	//   - error: error if the view cannot be read
	ReadBufferView(viewIndex int) ([]byte, error)
}

var _ gltfAccessorReader = &gltfAccessorReaderImpl{}

// newGLTFAccessorReader creates an accessor reader over resolved buffers.
//
// Parameters:
//   - doc: the parsed document
//   - buffers: resolved buffer bytes keyed by buffer index
//
// Returns:
//   - gltfAccessorReader: the reader
func newGLTFAccessorReader(doc *gltf.Document, buffers map[int][]byte) gltfAccessorReader {
	return &gltfAccessorReaderImpl{document: doc, buffers: buffers}
}

func (r *gltfAccessorReaderImpl) Accessor(accessorIndex int) (*gltf.Accessor, error) {
	if accessorIndex < 0 || accessorIndex >= len(r.document.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d", ErrMissingReference, accessorIndex)
	}
	return r.document.Accessors[accessorIndex], nil
}

func (r *gltfAccessorReaderImpl) Stride(acc *gltf.Accessor) int {
	if acc.BufferView == nil {
		return 0
	}
	view, err := r.bufferView(*acc.BufferView)
	if err != nil {
		return 0
	}
	return view.ByteStride
}

func (r *gltfAccessorReaderImpl) Read(accessorIndex int, out *model.Arena) (accessorRead, error) {
	data, count, elemSize, err := r.ReadBytes(accessorIndex)
	if err != nil {
		return accessorRead{}, err
	}
	return accessorRead{
		Range:       out.Append(data),
		Count:       count,
		ElementSize: elemSize,
	}, nil
}

func (r *gltfAccessorReaderImpl) ReadBytes(accessorIndex int) ([]byte, int, int, error) {
	acc, err := r.Accessor(accessorIndex)
	if err != nil {
		return nil, 0, 0, err
	}
	if acc.Sparse != nil {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, ErrSparseAccessor)
	}
	if acc.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("%w: accessor %d has no bufferView", ErrResourceNotFound, accessorIndex)
	}

	view, err := r.bufferView(*acc.BufferView)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	elemSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elemSize == 0 {
		return nil, 0, 0, fmt.Errorf("%w: accessor %d type=%v componentType=%v", ErrUnsupportedFormat, accessorIndex, acc.Type, acc.ComponentType)
	}
	stride := view.ByteStride

	declared := acc.Count * elemSize
	if stride > 0 {
		declared = acc.Count * stride
	}
	// The view is authoritative when the accessor claims more than it holds.
	length := min(declared, view.ByteLength-acc.ByteOffset)

	src, err := r.slice(view, view.ByteOffset+acc.ByteOffset, length)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}

	var data []byte
	if stride == 0 {
		n := len(src) / elemSize
		data = make([]byte, n*elemSize)
		copy(data, src)
	} else {
		data, err = gltfDeinterleave(src, stride, elemSize)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
		}
	}

	// count follows the bytes actually extracted so range length stays count*elemSize
	return data, len(data) / elemSize, elemSize, nil
}

func (r *gltfAccessorReaderImpl) ReadBufferView(viewIndex int) ([]byte, error) {
	view, err := r.bufferView(viewIndex)
	if err != nil {
		return nil, err
	}
	if view.ByteStride > 0 {
		return nil, fmt.Errorf("%w: bufferView %d declares a stride but has no element size", ErrUnsupportedFormat, viewIndex)
	}

	src, err := r.slice(view, view.ByteOffset, view.ByteLength)
	if err != nil {
		return nil, fmt.Errorf("bufferView %d: %w", viewIndex, err)
	}
	data := make([]byte, len(src))
	copy(data, src)
	return data, nil
}

// bufferView returns the buffer view with the given index.
func (r *gltfAccessorReaderImpl) bufferView(viewIndex int) (*gltf.BufferView, error) {
	if viewIndex < 0 || viewIndex >= len(r.document.BufferViews) {
		return nil, fmt.Errorf("%w: bufferView %d", ErrMissingReference, viewIndex)
	}
	return r.document.BufferViews[viewIndex], nil
}

// slice returns length bytes at offset of the view's buffer, bounds-checked.
func (r *gltfAccessorReaderImpl) slice(view *gltf.BufferView, offset, length int) ([]byte, error) {
	data, ok := r.buffers[view.Buffer]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrBufferNotLoaded, view.Buffer)
	}
	if offset < 0 || length < 0 || offset+length > len(data) {
		return nil, fmt.Errorf("%w: offset=%d length=%d bufSize=%d", ErrOutOfBounds, offset, length, len(data))
	}
	return data[offset : offset+length], nil
}

// gltfDeinterleave walks src in stride-sized chunks and keeps the first elemSize bytes of each.
func gltfDeinterleave(src []byte, stride, elemSize int) ([]byte, error) {
	if stride < elemSize {
		return nil, fmt.Errorf("%w: stride %d smaller than element size %d", ErrUnsupportedFormat, stride, elemSize)
	}

	chunks := (len(src) + stride - 1) / stride
	out := make([]byte, 0, chunks*elemSize)
	for start := 0; start < len(src); start += stride {
		if start+elemSize > len(src) {
			return nil, fmt.Errorf("%w: trailing chunk of %d bytes shorter than element size %d", ErrUnsupportedFormat, len(src)-start, elemSize)
		}
		out = append(out, src[start:start+elemSize]...)
	}
	return out, nil
}

// gltfComponentTypeSize returns the byte size of a single component.
func gltfComponentTypeSize(componentType gltf.ComponentType) int {
	switch componentType {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType gltf.AccessorType) int {
	switch accessorType {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	default:
		return 0
	}
}
