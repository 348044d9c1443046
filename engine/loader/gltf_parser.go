package loader

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// GLB container constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     uint32 = 0x46546C67 // "glTF"
	glbVersion   uint32 = 2
	glbChunkJSON uint32 = 0x4E4F534A // "JSON"
	glbChunkBIN  uint32 = 0x004E4942 // "BIN\0"
)

// glbHeader is the 12-byte GLB file header.
type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// glbChunkHeader precedes every GLB chunk.
type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	name           string
	document       *gltf.Document
	glbBinaryChunk []byte
}

// gltfParser defines the interface for reading a glTF/GLB file into a document.
// Buffer bytes are not resolved here; see gltfBufferResolver.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// Automatically detects .gltf (JSON) vs .glb (binary) format by extension or magic.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error wrapping ErrDocumentParse or ErrResourceNotFound if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - baseDir: directory used to resolve relative URIs
	//
	// Returns:
	//   - error: error wrapping ErrDocumentParse if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltf.Document

	// BaseDir returns the directory relative URIs are resolved against.
	BaseDir() string

	// Name returns the document file name without extension (empty for readers).
	Name() string

	// BinaryChunk returns the GLB BIN chunk, or nil for .gltf documents.
	BinaryChunk() []byte
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltf.Document {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Name() string {
	return p.name
}

func (p *gltfParserImpl) BinaryChunk() []byte {
	return p.glbBinaryChunk
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)
	p.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrResourceNotFound, path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic) {
		return p.parseGLB(data)
	}
	return p.parseJSON(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, baseDir string) error {
	p.baseDir = baseDir

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: failed to read data: %w", ErrDocumentParse, err)
	}

	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseJSON(data)
}

// parseJSON decodes the glTF JSON document.
func (p *gltfParserImpl) parseJSON(data []byte) error {
	var doc gltf.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrDocumentParse, err)
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return ErrInvalidGLTFVersion
	}

	p.document = &doc
	return nil
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("%w: file too small", ErrInvalidGLB)
	}

	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: failed to read header: %w", ErrInvalidGLB, err)
	}
	if header.Magic != glbMagic {
		return fmt.Errorf("%w: bad magic 0x%08X", ErrInvalidGLB, header.Magic)
	}
	if header.Version != glbVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidGLB, header.Version)
	}

	var jsonData []byte
	for {
		var chunkHeader glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("%w: failed to read chunk header: %w", ErrInvalidGLB, err)
		}

		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return fmt.Errorf("%w: failed to read chunk data: %w", ErrInvalidGLB, err)
		}

		switch chunkHeader.ChunkType {
		case glbChunkJSON:
			jsonData = chunkData
		case glbChunkBIN:
			p.glbBinaryChunk = chunkData
		}
	}

	if jsonData == nil {
		return fmt.Errorf("%w: missing JSON chunk", ErrInvalidGLB)
	}
	return p.parseJSON(jsonData)
}
