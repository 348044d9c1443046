// Command gltfinspect loads glTF/GLB files and prints what the loader flattened out of them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-scene/engine/loader"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"

	"github.com/spf13/cobra"
)

// inspector loads scenes with one configured Loader and writes their reports.
type inspector struct {
	cfg      Config
	loader   loader.Loader
	profiler *profiler.Profiler
	out      io.Writer
}

// newInspector builds the Loader for a configuration.
func newInspector(cfg Config, out, logOut io.Writer) *inspector {
	logger := cfg.NewLogger(logOut)
	prof := profiler.NewProfiler(logger)
	return &inspector{
		cfg:      cfg,
		profiler: prof,
		out:      out,
		loader: loader.NewLoader(loader.BackendTypeGLTF,
			loader.WithLogger(logger),
			loader.WithWorkers(cfg.Workers),
			loader.WithTangentGeneration(cfg.Tangents),
			loader.WithProfiler(prof),
		),
	}
}

// inspect loads every path and writes one report per file.
func (in *inspector) inspect(paths []string) error {
	scenes, err := in.loader.LoadMany(paths)
	if err != nil {
		return err
	}

	reports := make([]Report, len(scenes))
	for i, scene := range scenes {
		reports[i] = BuildReport(paths[i], scene, in.cfg.Decode)
	}
	return WriteReports(in.out, in.cfg.Format, reports)
}

// reload evicts a cached scene and inspects it again.
func (in *inspector) reload(path string) error {
	in.loader.Evict(path)
	return in.inspect([]string{path})
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		flagCfg    Config
	)

	root := &cobra.Command{
		Use:           "gltfinspect",
		Short:         "Inspect how glTF/GLB files flatten into scene arenas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// resolveConfig merges the config file with any flags set explicitly.
	resolveConfig := func(cmd *cobra.Command) (Config, error) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		flags := cmd.Flags()
		if flags.Changed("format") {
			cfg.Format = flagCfg.Format
		}
		if flags.Changed("tangents") {
			cfg.Tangents = flagCfg.Tangents
		}
		if flags.Changed("decode") {
			cfg.Decode = flagCfg.Decode
		}
		if flags.Changed("workers") {
			cfg.Workers = flagCfg.Workers
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = flagCfg.LogLevel
		}
		return cfg, cfg.Validate()
	}

	defaults := DefaultConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "TOML config file supplying flag defaults")
	pf.StringVarP(&flagCfg.Format, "format", "f", defaults.Format, "output format: text, json or yaml")
	pf.BoolVar(&flagCfg.Tangents, "tangents", defaults.Tangents, "synthesize tangents and bitangents")
	pf.BoolVar(&flagCfg.Decode, "decode", defaults.Decode, "decode every image and report its size")
	pf.IntVar(&flagCfg.Workers, "workers", defaults.Workers, "files loaded concurrently")
	pf.StringVar(&flagCfg.LogLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")

	root.AddCommand(&cobra.Command{
		Use:   "inspect <file>...",
		Short: "Load files and print a summary of each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return newInspector(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()).inspect(args)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "watch <file>",
		Short: "Re-inspect a file whenever it or its directory changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			in := newInspector(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return watch(cmd.Context(), in, args[0], cmd.ErrOrStderr())
		},
	})

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gltfinspect:", err)
		stop()
		os.Exit(1)
	}
}
