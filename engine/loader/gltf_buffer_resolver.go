package loader

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// extMeshoptCompression is the glTF extension whose fallback buffers are never read.
const extMeshoptCompression = "EXT_meshopt_compression"

// gltfBufferResolverImpl is the implementation of the gltfBufferResolver interface.
type gltfBufferResolverImpl struct {
	baseDir     string
	binaryChunk []byte
	logger      *slog.Logger
}

// gltfBufferResolver maps document buffers and image URIs to raw bytes.
type gltfBufferResolver interface {
	// ResolveBuffers resolves every buffer of the document.
	// Buffers flagged as a compression fallback are skipped and absent from the result.
	//
	// Parameters:
	//   - buffers: the document's buffer list
	//
	// Returns:
	//   - map[int][]byte: resolved bytes keyed by buffer index
	//   - error: the first resolution failure
	ResolveBuffers(buffers []*gltf.Buffer) (map[int][]byte, error)

	// ResolveURI reads the bytes behind a URI: a data: URI is base64-decoded after the
	// first comma, anything else is percent-decoded and read relative to the base directory.
	//
	// Parameters:
	//   - uri: the URI to resolve
	//
	// Returns:
	//   - []byte: the resolved bytes
	//   - error: ErrEncoding or ErrResourceNotFound wrapped with context
	ResolveURI(uri string) ([]byte, error)
}

var _ gltfBufferResolver = &gltfBufferResolverImpl{}

// newGLTFBufferResolver creates a buffer resolver.
//
// Parameters:
//   - baseDir: the directory external files are read from
//   - binaryChunk: the GLB BIN chunk, or nil
//   - logger: the logger used for warnings
//
// Returns:
//   - gltfBufferResolver: the resolver
func newGLTFBufferResolver(baseDir string, binaryChunk []byte, logger *slog.Logger) gltfBufferResolver {
	return &gltfBufferResolverImpl{
		baseDir:     baseDir,
		binaryChunk: binaryChunk,
		logger:      logger,
	}
}

func (r *gltfBufferResolverImpl) ResolveBuffers(buffers []*gltf.Buffer) (map[int][]byte, error) {
	out := make(map[int][]byte, len(buffers))

	for i, buf := range buffers {
		if buf == nil || gltfIsCompressionFallback(buf) {
			continue
		}

		if buf.URI == "" {
			if i == 0 && r.binaryChunk != nil {
				if len(r.binaryChunk) < buf.ByteLength {
					return nil, fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
				}
				out[i] = r.binaryChunk
			}
			continue
		}

		if strings.HasPrefix(buf.URI, "data:") {
			r.logger.Warn("loading base64-embedded buffer is inefficient, prefer .glb or external .bin", "buffer", i)
		}

		data, err := r.ResolveURI(buf.URI)
		if err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
		if len(data) < buf.ByteLength {
			return nil, fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
		out[i] = data
	}

	return out, nil
}

func (r *gltfBufferResolverImpl) ResolveURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		data, _, err := gltfDecodeDataURI(uri)
		return data, err
	}

	decoded, err := url.PathUnescape(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrPercentDecode, uri, err)
	}

	fullPath := filepath.Join(r.baseDir, filepath.FromSlash(decoded))
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrResourceNotFound, fullPath, err)
	}
	return data, nil
}

// gltfDecodeDataURI decodes a data URI into raw bytes and the media type of its header.
// Format: data:[<mediatype>][;base64],<data>
func gltfDecodeDataURI(uri string) ([]byte, string, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, "", fmt.Errorf("%w: no comma found", ErrInvalidDataURI)
	}

	header := strings.TrimPrefix(uri[:commaIdx], "data:")
	mimeType, _, _ := strings.Cut(header, ";")

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrBase64Decode, err)
	}
	return data, mimeType, nil
}

// gltfIsCompressionFallback reports whether a buffer is an EXT_meshopt_compression fallback.
// Unregistered extensions decode as raw JSON, so the value is re-marshalled before inspection.
func gltfIsCompressionFallback(buf *gltf.Buffer) bool {
	ext, ok := buf.Extensions[extMeshoptCompression]
	if !ok {
		return false
	}

	raw, err := json.Marshal(ext)
	if err != nil {
		return false
	}

	var meshopt struct {
		Fallback bool `json:"fallback"`
	}
	if err := json.Unmarshal(raw, &meshopt); err != nil {
		return false
	}
	return meshopt.Fallback
}
