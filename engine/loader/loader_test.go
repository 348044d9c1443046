package loader

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuietLoader(options ...LoaderBuilderOption) Loader {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLoader(BackendTypeGLTF, append([]LoaderBuilderOption{WithLogger(logger)}, options...)...)
}

func writeTriangle(t *testing.T, dir, name string) string {
	t.Helper()
	f := newGLTFFixture()
	f.addTriangle()
	return f.writeGLTF(t, dir, name, name+".bin")
}

func TestLoader_LoadCachesByPath(t *testing.T) {
	l := newQuietLoader()
	path := writeTriangle(t, t.TempDir(), "cached")

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Len(t, l.Scenes(), 1)
}

func TestLoader_Evict(t *testing.T) {
	l := newQuietLoader()
	path := writeTriangle(t, t.TempDir(), "evicted")

	first, err := l.Load(path)
	require.NoError(t, err)

	assert.True(t, l.Evict(path))
	assert.False(t, l.Evict(path))
	assert.Nil(t, l.Get(path))

	reloaded, err := l.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
}

func TestLoader_UnsupportedExtension(t *testing.T) {
	l := newQuietLoader()

	_, err := l.Load(filepath.Join(t.TempDir(), "mesh.obj"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoader_FailedLoadIsNotCached(t *testing.T) {
	l := newQuietLoader()
	path := filepath.Join(t.TempDir(), "missing.gltf")

	scene, err := l.Load(path)
	require.ErrorIs(t, err, ErrResourceNotFound)
	assert.Nil(t, scene)
	assert.Empty(t, l.Scenes())
}

func TestLoader_LoadReader(t *testing.T) {
	l := newQuietLoader()
	f := newGLTFFixture()
	f.addTriangle()

	scene, err := l.LoadReader("stream", bytes.NewReader(f.glb()), true, "")
	require.NoError(t, err)
	assert.Len(t, scene.View.Meshes(), 1)
	assert.Same(t, scene, l.Get("stream"))

	// cached entries are returned without reading
	again, err := l.LoadReader("stream", bytes.NewReader(nil), true, "")
	require.NoError(t, err)
	assert.Same(t, scene, again)
}

func TestLoader_WithScene(t *testing.T) {
	preset := &Scene{View: &model.SceneView{Name: "preset"}, Buffers: model.NewSceneBuffers()}
	l := newQuietLoader(WithScene("preset", preset))

	assert.Same(t, preset, l.Get("preset"))
}

func TestLoader_WithTangentGeneration(t *testing.T) {
	l := newQuietLoader(WithTangentGeneration(true))
	scene, err := l.Load(writeTriangle(t, t.TempDir(), "tangents"))
	require.NoError(t, err)

	meshes := scene.View.Meshes()
	require.Len(t, meshes, 1)
	assert.NotNil(t, meshes[0].Tangents)
	assert.NotNil(t, meshes[0].BiTangents)
}

func TestLoader_LoadManyPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTriangle(t, dir, "a"),
		writeTriangle(t, dir, "b"),
		writeTriangle(t, dir, "c"),
	}

	prof := profiler.NewProfiler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l := newQuietLoader(WithWorkers(2), WithProfiler(prof))

	scenes, err := l.LoadMany(paths)
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, scenes[i].View.Name)
		assert.Same(t, scenes[i], l.Get(paths[i]))
	}
	assert.Equal(t, 3, prof.Stats().Loads)
}

func TestLoader_LoadManyReportsFirstFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeTriangle(t, dir, "ok"),
		filepath.Join(dir, "missing.gltf"),
		filepath.Join(dir, "other.obj"),
	}

	l := newQuietLoader(WithWorkers(3))
	scenes, err := l.LoadMany(paths)
	require.ErrorIs(t, err, ErrResourceNotFound)
	assert.Nil(t, scenes)
}

func TestLoader_LoadManyEmpty(t *testing.T) {
	scenes, err := newQuietLoader().LoadMany(nil)
	require.NoError(t, err)
	assert.Nil(t, scenes)
}
