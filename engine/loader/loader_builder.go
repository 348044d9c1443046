package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithTangentGeneration is an option builder that toggles tangent/bitangent synthesis for every load.
//
// Parameters:
//   - enabled: true to synthesize tangents for meshes with UV0
//
// Returns:
//   - LoaderBuilderOption: a function that applies the tangent option to a loader
func WithTangentGeneration(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.tangents = enabled
	}
}

// WithLogger is an option builder that sets the logger the Loader and its backend report to.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers is an option builder that sets how many files LoadMany imports concurrently.
//
// Parameters:
//   - n: the maximum number of workers, values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithScene is an option builder that pre-populates the scene cache with a scene.
//
// Parameters:
//   - key: the cache key for the scene
//   - scene: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, scene *Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = scene
	}
}

// WithProfiler is an option builder that attaches a load profiler.
//
// Parameters:
//   - p: the profiler every load is timed with
//
// Returns:
//   - LoaderBuilderOption: a function that applies the profiler option to a loader
func WithProfiler(p *profiler.Profiler) LoaderBuilderOption {
	return func(l *loader) {
		l.profiler = p
	}
}
