package loader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/h2non/filetype"
	"github.com/qmuntal/gltf"
)

// defaultImageMimeType is used when an image declares no mime type and sniffing fails.
const defaultImageMimeType = "image/png"

// gltfImageExtractorImpl is the implementation of the gltfImageExtractor interface.
type gltfImageExtractorImpl struct {
	document *gltf.Document
	resolver gltfBufferResolver
	reader   gltfAccessorReader
}

// gltfImageExtractor copies every document image's encoded bytes into the shared arena.
type gltfImageExtractor interface {
	// ExtractAllImages extracts the document's images in document order.
	// Every image starts with a color (sRGB) target format hint.
	//
	// Parameters:
	//   - shared: the arena image bytes are appended to
	//
	// Returns:
	//   - []model.Image: the extracted images
	//   - error: the first failure encountered
	ExtractAllImages(shared *model.Arena) ([]model.Image, error)
}

var _ gltfImageExtractor = &gltfImageExtractorImpl{}

// newGLTFImageExtractor creates an image extractor.
//
// Parameters:
//   - doc: the parsed document
//   - resolver: the resolver used for image URIs
//   - reader: the reader used for buffer-view images
//
// Returns:
//   - gltfImageExtractor: the image extractor
func newGLTFImageExtractor(doc *gltf.Document, resolver gltfBufferResolver, reader gltfAccessorReader) gltfImageExtractor {
	return &gltfImageExtractorImpl{
		document: doc,
		resolver: resolver,
		reader:   reader,
	}
}

func (e *gltfImageExtractorImpl) ExtractAllImages(shared *model.Arena) ([]model.Image, error) {
	images := make([]model.Image, 0, len(e.document.Images))
	for i, img := range e.document.Images {
		out, err := e.extractImage(img, shared)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		images = append(images, out)
	}
	return images, nil
}

// extractImage reads one image from its URI or buffer view.
func (e *gltfImageExtractorImpl) extractImage(img *gltf.Image, shared *model.Arena) (model.Image, error) {
	var (
		data       []byte
		headerMime string
		source     model.ImageSource
		err        error
	)

	switch {
	case strings.HasPrefix(img.URI, "data:"):
		source = model.ImageSourceDataURI
		data, headerMime, err = gltfDecodeDataURI(img.URI)
	case img.URI != "":
		source = model.ImageSourceURI
		data, err = e.resolver.ResolveURI(img.URI)
	case img.BufferView != nil:
		source = model.ImageSourceBufferView
		data, err = e.reader.ReadBufferView(*img.BufferView)
	default:
		return model.Image{}, ErrNoImageSource
	}
	if err != nil {
		return model.Image{}, err
	}

	return model.Image{
		Name:         img.Name,
		Range:        shared.Append(data),
		MimeType:     common.Coalesce(img.MimeType, headerMime, gltfSniffMimeType(data), defaultImageMimeType),
		Source:       source,
		TargetFormat: wgpu.TextureFormatRGBA8UnormSrgb,
	}, nil
}

// gltfSniffMimeType guesses a mime type from the image's magic bytes, empty when unknown.
func gltfSniffMimeType(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
