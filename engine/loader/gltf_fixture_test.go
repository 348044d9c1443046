package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// glTF component type codes used by the fixtures.
const (
	compUbyte  = 5121
	compUshort = 5123
	compUint   = 5125
	compFloat  = 5126
)

// gltfFixture assembles a small glTF document and its binary buffer for tests.
type gltfFixture struct {
	bin         []byte
	bufferViews []map[string]any
	accessors   []map[string]any
	meshes      []map[string]any
	nodes       []map[string]any
	materials   []map[string]any
	textures    []map[string]any
	images      []map[string]any
	samplers    []map[string]any
	extraBufs   []map[string]any
	roots       []int
	sceneName   string
	// overrides replaces top-level document members after rendering.
	overrides   map[string]any
}

func newGLTFFixture() *gltfFixture {
	return &gltfFixture{}
}

func float32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func uint16Bytes(values ...uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func uint32Bytes(values ...uint32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// addView appends data to the buffer, 4-byte aligned, and returns the view index.
func (f *gltfFixture) addView(data []byte, stride int) int {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
	view := map[string]any{
		"buffer":     0,
		"byteOffset": len(f.bin),
		"byteLength": len(data),
	}
	if stride > 0 {
		view["byteStride"] = stride
	}
	f.bin = append(f.bin, data...)
	f.bufferViews = append(f.bufferViews, view)
	return len(f.bufferViews) - 1
}

// addAccessor adds an accessor over a view and returns its index.
func (f *gltfFixture) addAccessor(view, byteOffset, componentType, count int, typ string, normalized bool) int {
	acc := map[string]any{
		"bufferView":    view,
		"componentType": componentType,
		"count":         count,
		"type":          typ,
	}
	if byteOffset > 0 {
		acc["byteOffset"] = byteOffset
	}
	if normalized {
		acc["normalized"] = true
	}
	f.accessors = append(f.accessors, acc)
	return len(f.accessors) - 1
}

// addData adds a tightly packed view plus an accessor over it.
func (f *gltfFixture) addData(data []byte, componentType, count int, typ string, normalized bool) int {
	return f.addAccessor(f.addView(data, 0), 0, componentType, count, typ, normalized)
}

// addMesh adds a single-primitive mesh and returns its index.
func (f *gltfFixture) addMesh(primitive map[string]any) int {
	f.meshes = append(f.meshes, map[string]any{"primitives": []any{primitive}})
	return len(f.meshes) - 1
}

// addNode adds a node and returns its index.
func (f *gltfFixture) addNode(node map[string]any) int {
	f.nodes = append(f.nodes, node)
	return len(f.nodes) - 1
}

// addTriangle adds the unit right triangle with UVs matching its positions,
// u16 indices, and a root node instancing it.
func (f *gltfFixture) addTriangle() (mesh int) {
	pos := f.addData(float32Bytes(0, 0, 0, 1, 0, 0, 0, 1, 0), compFloat, 3, "VEC3", false)
	uv := f.addData(float32Bytes(0, 0, 1, 0, 0, 1), compFloat, 3, "VEC2", false)
	idx := f.addData(uint16Bytes(0, 1, 2), compUshort, 3, "SCALAR", false)

	mesh = f.addMesh(map[string]any{
		"attributes": map[string]any{"POSITION": pos, "TEXCOORD_0": uv},
		"indices":    idx,
	})
	f.roots = append(f.roots, f.addNode(map[string]any{"mesh": mesh}))
	return mesh
}

// document renders the glTF JSON. bufferURI is empty for GLB containers.
func (f *gltfFixture) document(bufferURI string) []byte {
	buffer := map[string]any{"byteLength": len(f.bin)}
	if bufferURI != "" {
		buffer["uri"] = bufferURI
	}
	buffers := append([]map[string]any{buffer}, f.extraBufs...)

	scene := map[string]any{"nodes": f.roots}
	if f.sceneName != "" {
		scene["name"] = f.sceneName
	}

	doc := map[string]any{
		"asset":       map[string]any{"version": "2.0"},
		"scene":       0,
		"scenes":      []any{scene},
		"buffers":     buffers,
		"bufferViews": f.bufferViews,
		"accessors":   f.accessors,
		"meshes":      f.meshes,
		"nodes":       f.nodes,
	}
	if len(f.materials) > 0 {
		doc["materials"] = f.materials
	}
	if len(f.textures) > 0 {
		doc["textures"] = f.textures
	}
	if len(f.images) > 0 {
		doc["images"] = f.images
	}
	if len(f.samplers) > 0 {
		doc["samplers"] = f.samplers
	}

	for k, v := range f.overrides {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

// writeGLTF writes name.gltf plus its external buffer file into dir.
func (f *gltfFixture) writeGLTF(t *testing.T, dir, name, binName string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, binName), f.bin, 0o644))

	path := filepath.Join(dir, name+".gltf")
	require.NoError(t, os.WriteFile(path, f.document(escapeURI(binName)), 0o644))
	return path
}

// writeGLB writes name.glb with the buffer as the BIN chunk.
func (f *gltfFixture) writeGLB(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name+".glb")
	require.NoError(t, os.WriteFile(path, f.glb(), 0o644))
	return path
}

// glb renders the document as a GLB container.
func (f *gltfFixture) glb() []byte {
	jsonChunk := f.document("")
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := append([]byte(nil), f.bin...)
	for len(binChunk)%4 != 0 {
		binChunk = append(binChunk, 0)
	}

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(&out, binary.LittleEndian, glbHeader{Magic: glbMagic, Version: glbVersion, Length: uint32(total)})
	_ = binary.Write(&out, binary.LittleEndian, glbChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: glbChunkJSON})
	out.Write(jsonChunk)
	_ = binary.Write(&out, binary.LittleEndian, glbChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: glbChunkBIN})
	out.Write(binChunk)
	return out.Bytes()
}

// escapeURI percent-encodes the spaces of a file name.
func escapeURI(name string) string {
	return string(bytes.ReplaceAll([]byte(name), []byte(" "), []byte("%20")))
}

// dataURI builds a base64 data URI.
func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// pngMagic is enough of a PNG signature for mime sniffing.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
