package loader

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/model"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Scene pairs a flattened scene view with the arenas its ranges address.
type Scene struct {
	View    *model.SceneView
	Buffers *model.SceneBuffers
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	sceneCache map[string]*Scene

	backend loaderBackend

	logger   *slog.Logger
	profiler *profiler.Profiler
	tangents bool
	workers  int
}

// Loader defines the public-facing interface for loading and caching flattened scenes.
// It abstracts the file format behind a backend and keeps a cache of previously
// loaded scenes keyed by path or caller supplied name.
type Loader interface {
	// Load imports a scene file and caches the result.
	// If the scene is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - *Scene: the loaded and cached scene
	//   - error: error if loading fails
	Load(path string) (*Scene, error)

	// LoadReader imports a scene from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded scene
	//   - r: the reader providing scene data
	//   - isGLB: true if the reader provides GLB binary data
	//   - baseDir: the directory relative URIs are resolved against
	//
	// Returns:
	//   - *Scene: the loaded scene
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*Scene, error)

	// LoadMany imports several scene files concurrently on a worker pool.
	// Results are returned in input order. When any load fails the first
	// failure in input order is returned and the results are nil.
	//
	// Parameters:
	//   - paths: the file paths to load
	//
	// Returns:
	//   - []*Scene: the loaded scenes, one per path
	//   - error: the first failure in input order
	LoadMany(paths []string) ([]*Scene, error)

	// Get retrieves a cached scene by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *Scene: the cached scene or nil
	Get(name string) *Scene

	// Scenes returns a copy of the scene cache.
	//
	// Returns:
	//   - map[string]*Scene: all cached scenes keyed by name
	Scenes() map[string]*Scene

	// Evict removes a scene from the cache so the next Load re-imports it.
	//
	// Parameters:
	//   - name: the cache key to remove
	//
	// Returns:
	//   - bool: true if a cached scene was removed
	Evict(name string) bool
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		sceneCache: make(map[string]*Scene),
		logger:     slog.Default(),
		workers:    runtime.NumCPU(),
	}

	for _, option := range options {
		option(l)
	}

	// The backend captures the final options, so it is built last.
	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(LoadOptions{
			GenerateTangentBitangent: l.tangents,
			Logger:                   l.logger,
		})
	}
	return l
}

func (l *loader) Load(path string) (*Scene, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	done := l.beginProfile(path)
	scene, err := backend.Load(path)
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.store(path, scene), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool, baseDir string) (*Scene, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("%w: no backend configured", ErrUnsupportedFormat)
	}

	done := l.beginProfile(name)
	scene, err := l.backend.LoadReader(r, isGLB, baseDir)
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	return l.store(name, scene), nil
}

func (l *loader) LoadMany(paths []string) ([]*Scene, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(paths)), len(paths), 1*time.Second)
	defer pool.Stop()

	results := make([]*Scene, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID:      i,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = l.Load(path)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (l *loader) Get(name string) *Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sceneCache[name]
}

func (l *loader) Scenes() map[string]*Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Scene, len(l.sceneCache))
	for k, v := range l.sceneCache {
		result[k] = v
	}
	return result
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sceneCache[name]; !ok {
		return false
	}
	delete(l.sceneCache, name)
	l.logger.Debug("evicted cached scene", "name", name)
	return true
}

// store caches a scene unless a concurrent load already cached one under the same key,
// in which case the existing entry wins and is returned.
func (l *loader) store(key string, scene *Scene) *Scene {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.sceneCache[key]; ok {
		return existing
	}
	l.sceneCache[key] = scene
	return scene
}

// beginProfile starts timing a load when a profiler is attached.
func (l *loader) beginProfile(name string) func() {
	if l.profiler == nil {
		return func() {}
	}
	return l.profiler.Begin(name)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("%w: no backend configured for %s", ErrUnsupportedFormat, ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scene format %q", ErrUnsupportedFormat, ext)
	}
}
