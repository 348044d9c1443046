package loader

import (
	"errors"
	"fmt"
)

// Error kinds. Every load failure wraps exactly one of these.
var (
	// ErrDocumentParse reports a malformed JSON document or binary container.
	ErrDocumentParse = errors.New("document parse error")
	// ErrResourceNotFound reports a missing file, buffer, scene or required attribute.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrUnsupportedFormat reports a component type, normalization or stride combination that is not handled.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEncoding reports malformed base64 or percent-encoded URIs.
	ErrEncoding = errors.New("encoding error")
	// ErrMissingReference reports a dangling image, texture, sampler, material, mesh, node or accessor index.
	ErrMissingReference = errors.New("missing reference")
)

// Specific failures, each wrapping one of the error kinds above.
var (
	ErrInvalidGLB           = fmt.Errorf("%w: invalid GLB container", ErrDocumentParse)
	ErrInvalidGLTFVersion   = fmt.Errorf("%w: invalid glTF version: must be 2.x", ErrDocumentParse)
	ErrNodeCycle            = fmt.Errorf("%w: node reachable more than once", ErrDocumentParse)
	ErrDefaultSceneNotFound = fmt.Errorf("%w: default scene", ErrResourceNotFound)
	ErrNoPositionFound      = fmt.Errorf("%w: POSITION attribute", ErrResourceNotFound)
	ErrNoIndexFound         = fmt.Errorf("%w: index accessor", ErrResourceNotFound)
	ErrNoImageSource        = fmt.Errorf("%w: image has neither uri nor bufferView", ErrResourceNotFound)
	ErrBufferNotLoaded      = fmt.Errorf("%w: buffer data", ErrResourceNotFound)
	ErrOutOfBounds          = fmt.Errorf("%w: data outside buffer bounds", ErrResourceNotFound)
	ErrUnsupportedIndexType = fmt.Errorf("%w: index component type", ErrUnsupportedFormat)
	ErrSparseAccessor       = fmt.Errorf("%w: sparse accessor", ErrUnsupportedFormat)
	ErrBufferSizeMismatch   = fmt.Errorf("%w: buffer shorter than declared byteLength", ErrUnsupportedFormat)
	ErrInvalidDataURI       = fmt.Errorf("%w: malformed data URI header", ErrEncoding)
	ErrBase64Decode         = fmt.Errorf("%w: invalid base64 payload", ErrEncoding)
	ErrPercentDecode        = fmt.Errorf("%w: invalid percent-encoding", ErrEncoding)
)
