package loader

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/model"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// gltfSceneBuilderImpl is the implementation of the gltfSceneBuilder interface.
// It owns the output node map; arenas are borrowed from the caller's SceneBuffers.
type gltfSceneBuilderImpl struct {
	document *gltf.Document
	reader   gltfAccessorReader
	buffers  *model.SceneBuffers
	logger   *slog.Logger

	nodes   map[int]*model.Node
	visited map[int]bool
}

// gltfSceneBuilder walks the default scene and flattens its meshes into arenas.
type gltfSceneBuilder interface {
	// Build walks the default scene depth-first, composing world transforms
	// and reading every mesh primitive it reaches.
	//
	// Returns:
	//   - *gltf.Scene: the default scene
	//   - map[int]*model.Node: every reached node keyed by original id
	//   - error: the first failure encountered
	Build() (*gltf.Scene, map[int]*model.Node, error)
}

var _ gltfSceneBuilder = &gltfSceneBuilderImpl{}

// newGLTFSceneBuilder creates a scene builder.
//
// Parameters:
//   - doc: the parsed document
//   - reader: the accessor reader over resolved buffers
//   - buffers: the arenas attribute and index data is appended to
//   - logger: the logger used for omitted optional attributes
//
// Returns:
//   - gltfSceneBuilder: the builder
func newGLTFSceneBuilder(doc *gltf.Document, reader gltfAccessorReader, buffers *model.SceneBuffers, logger *slog.Logger) gltfSceneBuilder {
	return &gltfSceneBuilderImpl{
		document: doc,
		reader:   reader,
		buffers:  buffers,
		logger:   logger,
		nodes:    make(map[int]*model.Node),
		visited:  make(map[int]bool),
	}
}

func (b *gltfSceneBuilderImpl) Build() (*gltf.Scene, map[int]*model.Node, error) {
	sceneIndex := 0
	if b.document.Scene != nil {
		sceneIndex = *b.document.Scene
	}
	if sceneIndex < 0 || sceneIndex >= len(b.document.Scenes) {
		return nil, nil, fmt.Errorf("scene %d: %w", sceneIndex, ErrDefaultSceneNotFound)
	}

	scene := b.document.Scenes[sceneIndex]
	for _, root := range scene.Nodes {
		if err := b.visit(root, mgl32.Ident4()); err != nil {
			return nil, nil, err
		}
	}
	return scene, b.nodes, nil
}

// visit builds node id and its subtree. parent is the ancestor world transform.
func (b *gltfSceneBuilderImpl) visit(id int, parent mgl32.Mat4) error {
	if id < 0 || id >= len(b.document.Nodes) {
		return fmt.Errorf("%w: node %d", ErrMissingReference, id)
	}
	if b.visited[id] {
		return fmt.Errorf("node %d: %w", id, ErrNodeCycle)
	}
	b.visited[id] = true

	node := b.document.Nodes[id]
	world := parent.Mul4(gltfLocalTransform(node))

	out := &model.Node{
		ID:        id,
		Name:      node.Name,
		Transform: world,
		Children:  append([]int(nil), node.Children...),
	}

	if node.Mesh != nil {
		meshID := *node.Mesh
		if meshID < 0 || meshID >= len(b.document.Meshes) {
			return fmt.Errorf("%w: node %d mesh %d", ErrMissingReference, id, meshID)
		}
		for primIndex, prim := range b.document.Meshes[meshID].Primitives {
			mesh, err := b.buildPrimitive(meshID, primIndex, prim)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", meshID, primIndex, err)
			}
			out.Meshes = append(out.Meshes, mesh)
		}
	}

	for _, child := range node.Children {
		if err := b.visit(child, world); err != nil {
			return err
		}
	}

	b.nodes[id] = out
	return nil
}

// buildPrimitive reads one primitive's indices and attributes into the arenas.
func (b *gltfSceneBuilderImpl) buildPrimitive(meshID, primIndex int, prim *gltf.Primitive) (model.Mesh, error) {
	if prim.Indices == nil {
		return model.Mesh{}, ErrNoIndexFound
	}
	index, err := gltfNormalizeIndices(b.reader, *prim.Indices, b.buffers.Indices)
	if err != nil {
		return model.Mesh{}, err
	}

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return model.Mesh{}, ErrNoPositionFound
	}
	posFormat, err := b.attributeFormat(semanticPosition, posIndex)
	if err != nil {
		return model.Mesh{}, err
	}
	positions, err := b.reader.Read(posIndex, b.buffers.Positions)
	if err != nil {
		return model.Mesh{}, err
	}

	mesh := model.Mesh{
		ID:             meshID,
		Primitive:      primIndex,
		VertexCount:    positions.Count,
		VertexSize:     positions.ElementSize,
		Positions:      positions.Range,
		PositionFormat: posFormat,
		Index:          index,
		Mode:           gltfPrimitiveMode(prim.Mode),
	}

	if r, format, ok := b.readOptional(prim, gltf.NORMAL, semanticNormal, b.buffers.Normals); ok {
		mesh.Normals, mesh.NormalFormat = r, format
	}
	if r, format, ok := b.readOptional(prim, gltf.TEXCOORD_0, semanticTexCoord, b.buffers.TexCoord(0)); ok {
		mesh.UV0, mesh.UV0Format, mesh.UV0Set = r, format, 0
	}
	if r, format, ok := b.readOptional(prim, gltf.TANGENT, semanticTangent, b.buffers.Tangents); ok {
		mesh.Tangents, mesh.TangentFormat = r, format
	}

	if prim.Material != nil {
		matID := *prim.Material
		if matID < 0 || matID >= len(b.document.Materials) {
			return model.Mesh{}, fmt.Errorf("%w: material %d", ErrMissingReference, matID)
		}
		mesh.Material = &matID
	}

	return mesh, nil
}

// readOptional reads an optional attribute. Any failure omits the attribute.
func (b *gltfSceneBuilderImpl) readOptional(prim *gltf.Primitive, name string, semantic attributeSemantic, out *model.Arena) (*model.Range, wgpu.VertexFormat, bool) {
	accIndex, ok := prim.Attributes[name]
	if !ok {
		return nil, wgpu.VertexFormatUndefined, false
	}

	format, err := b.attributeFormat(semantic, accIndex)
	if err == nil {
		var read accessorRead
		if read, err = b.reader.Read(accIndex, out); err == nil {
			return &read.Range, format, true
		}
	}

	b.logger.Debug("omitting optional attribute", "attribute", name, "accessor", accIndex, "error", err)
	return nil, wgpu.VertexFormatUndefined, false
}

// attributeFormat resolves an accessor's vertex format through the decision table.
func (b *gltfSceneBuilderImpl) attributeFormat(semantic attributeSemantic, accIndex int) (wgpu.VertexFormat, error) {
	acc, err := b.reader.Accessor(accIndex)
	if err != nil {
		return wgpu.VertexFormatUndefined, err
	}
	return gltfAttributeFormat(semantic, acc, b.reader.Stride(acc))
}

// gltfLocalTransform returns a node's local transform: its explicit matrix, or T * R * S.
func gltfLocalTransform(node *gltf.Node) mgl32.Mat4 {
	if m := node.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return common.Mat4FromFloat64(m)
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()
	return common.ComposeTRS(
		[3]float32{float32(t[0]), float32(t[1]), float32(t[2])},
		[4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])},
		[3]float32{float32(s[0]), float32(s[1]), float32(s[2])},
	)
}

// gltfPrimitiveMode maps a glTF primitive mode to the model topology.
func gltfPrimitiveMode(mode gltf.PrimitiveMode) model.PrimitiveMode {
	switch mode {
	case gltf.PrimitivePoints:
		return model.ModePoints
	case gltf.PrimitiveLines:
		return model.ModeLines
	case gltf.PrimitiveLineLoop:
		return model.ModeLineLoop
	case gltf.PrimitiveLineStrip:
		return model.ModeLineStrip
	case gltf.PrimitiveTriangleStrip:
		return model.ModeTriangleStrip
	case gltf.PrimitiveTriangleFan:
		return model.ModeTriangleFan
	default:
		return model.ModeTriangles
	}
}
