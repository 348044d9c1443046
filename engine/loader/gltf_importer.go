package loader

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/qmuntal/gltf"
)

// LoadOptions configures a single load.
type LoadOptions struct {
	// GenerateTangentBitangent enables tangent/bitangent synthesis for meshes with UV0.
	GenerateTangentBitangent bool

	// Logger receives load diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// LoadGLTF loads a .gltf or .glb file and flattens its default scene.
// The loader keeps no state between calls; on error nothing is returned.
//
// Parameters:
//   - path: the file path to the glTF or GLB file
//   - opts: the load options
//
// Returns:
//   - *model.SceneView: the scene graph, materials, images and samplers
//   - *model.SceneBuffers: the arenas the scene view addresses
//   - error: the first failure encountered
func LoadGLTF(path string, opts LoadOptions) (*model.SceneView, *model.SceneBuffers, error) {
	scene, err := newGLTFImporter(opts).Import(path)
	if err != nil {
		return nil, nil, err
	}
	return scene.View, scene.Buffers, nil
}

// LoadGLTFReader loads a glTF document from a reader.
//
// Parameters:
//   - r: the reader providing glTF JSON or GLB data
//   - isGLB: true if the reader provides GLB binary data
//   - baseDir: the directory relative URIs are resolved against
//   - opts: the load options
//
// Returns:
//   - *model.SceneView: the scene graph, materials, images and samplers
//   - *model.SceneBuffers: the arenas the scene view addresses
//   - error: the first failure encountered
func LoadGLTFReader(r io.Reader, isGLB bool, baseDir string, opts LoadOptions) (*model.SceneView, *model.SceneBuffers, error) {
	scene, err := newGLTFImporter(opts).ImportReader(r, isGLB, baseDir)
	if err != nil {
		return nil, nil, err
	}
	return scene.View, scene.Buffers, nil
}

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	opts LoadOptions
}

// gltfImporter defines the interface for orchestrating a full glTF/GLB import.
// It runs the parser, buffer resolver, scene builder, image and material extractors
// and the optional tangent synthesizer in that order.
type gltfImporter interface {
	// Import loads a glTF/GLB file and flattens its default scene.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *Scene: the flattened scene
	//   - error: error if import fails
	Import(path string) (*Scene, error)

	// ImportReader loads a glTF document from a reader and flattens its default scene.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - baseDir: the directory relative URIs are resolved against
	//
	// Returns:
	//   - *Scene: the flattened scene
	//   - error: error if import fails
	ImportReader(r io.Reader, isGLB bool, baseDir string) (*Scene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Parameters:
//   - opts: the load options applied to every import
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(opts LoadOptions) gltfImporter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &gltfImporterImpl{opts: opts}
}

func (imp *gltfImporterImpl) Import(path string) (*Scene, error) {
	start := time.Now()
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path, start)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool, baseDir string) (*Scene, error) {
	start := time.Now()
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB, baseDir); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, "reader:"+baseDir, start)
}

// importFromParser performs a full import from a parser that has already loaded a document.
// source names the input in logs and start is when reading it began.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, source string, start time.Time) (*Scene, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("%w: no document after parsing", ErrDocumentParse)
	}
	logger := imp.opts.Logger

	resolver := newGLTFBufferResolver(parser.BaseDir(), parser.BinaryChunk(), logger)
	resolved, err := resolver.ResolveBuffers(doc.Buffers)
	if err != nil {
		return nil, fmt.Errorf("buffer resolution failed: %w", err)
	}

	reader := newGLTFAccessorReader(doc, resolved)
	buffers := model.NewSceneBuffers()

	scene, nodes, err := newGLTFSceneBuilder(doc, reader, buffers, logger).Build()
	if err != nil {
		return nil, fmt.Errorf("scene graph build failed: %w", err)
	}

	images, err := newGLTFImageExtractor(doc, resolver, reader).ExtractAllImages(buffers.Shared)
	if err != nil {
		return nil, fmt.Errorf("image extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(doc, logger).ExtractAllMaterials(images)
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	view := &model.SceneView{
		Name:      gltfExtractSceneName(scene, parser.Name()),
		Nodes:     nodes,
		Roots:     append([]int(nil), scene.Nodes...),
		Materials: materials,
		Images:    images,
		Samplers:  gltfExtractSamplers(doc),
	}

	if imp.opts.GenerateTangentBitangent {
		synth := newGLTFTangentSynthesizer(buffers, logger)
		for _, mesh := range view.Meshes() {
			if _, err := synth.Synthesize(mesh); err != nil {
				return nil, fmt.Errorf("tangent synthesis failed for mesh %d primitive %d: %w", mesh.ID, mesh.Primitive, err)
			}
		}
	}

	logger.Info("loaded glTF scene",
		"path", source,
		"scene", view.Name,
		"nodes", len(view.Nodes),
		"meshes", len(view.Meshes()),
		"materials", len(view.Materials),
		"images", len(view.Images),
		"indexBytes", buffers.Indices.Len(),
		"duration", time.Since(start),
	)

	return &Scene{View: view, Buffers: buffers}, nil
}

// gltfExtractSceneName derives a scene name from the default scene or a file name fallback.
func gltfExtractSceneName(scene *gltf.Scene, fallback string) string {
	if scene != nil && scene.Name != "" {
		return scene.Name
	}
	if fallback != "" {
		return fallback
	}
	return "unnamed_scene"
}
