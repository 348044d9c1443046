// Package texture decodes the encoded image bytes a loaded scene carries into RGBA8 pixels.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/loader"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrCompressedContainer reports a GPU container format that needs a transcoder rather than a decoder.
	ErrCompressedContainer = errors.New("compressed texture container")
	// ErrImageNotFound reports an image id outside the scene's image table.
	ErrImageNotFound = errors.New("image not found")
)

// compressedMimeTypes are GPU container formats the standard image registry cannot decode.
var compressedMimeTypes = map[string]bool{
	"image/ktx2":       true,
	"image/ktx":        true,
	"image/vnd-ms.dds": true,
}

// Decode decodes one image of a loaded scene.
// The image bytes are sliced from the scene's shared arena and its target format hint is kept.
//
// Parameters:
//   - scene: the loaded scene
//   - imageID: the index into the scene's image table
//
// Returns:
//   - common.TextureStagingData: the decoded RGBA8 pixels
//   - error: ErrImageNotFound, ErrCompressedContainer or a decode failure
func Decode(scene *loader.Scene, imageID int) (common.TextureStagingData, error) {
	if scene == nil || scene.View == nil || imageID < 0 || imageID >= len(scene.View.Images) {
		return common.TextureStagingData{}, fmt.Errorf("%w: image %d", ErrImageNotFound, imageID)
	}

	img := scene.View.Images[imageID]
	data := scene.Buffers.Shared.Slice(img.Range)

	staging, err := DecodeBytes(data, img.MimeType, img.TargetFormat)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("image %d (%s): %w", imageID, img.Name, err)
	}
	return staging, nil
}

// DecodeBytes decodes encoded image bytes to tightly packed RGBA8 pixels.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - data: the encoded image bytes
//   - mime: the image's mime type
//   - target: the texture format hint recorded on the result
//
// Returns:
//   - common.TextureStagingData: the decoded pixels, 4 bytes per pixel in row-major order
//   - error: ErrCompressedContainer for GPU containers, or the decoder's error
func DecodeBytes(data []byte, mime string, target wgpu.TextureFormat) (common.TextureStagingData, error) {
	if compressedMimeTypes[mime] {
		return common.TextureStagingData{}, fmt.Errorf("%w: %s", ErrCompressedContainer, mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to decode %s image: %w", mime, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Format: target,
	}, nil
}
