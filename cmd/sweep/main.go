package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/neurodesk/sweep/pkg/config"
	"github.com/neurodesk/sweep/pkg/netcache"
	"github.com/neurodesk/sweep/pkg/source"
	"github.com/neurodesk/sweep/pkg/starlark"
	"github.com/neurodesk/sweep/pkg/sweep"
	"github.com/spf13/cobra"
)

const usage = "Usage: sweep <template_file> [output_file]"

var errUsage = errors.New("missing template file")

type rootOptions struct {
	config  string
	target  string
	prelude bool
	verbose bool
}

// env is what every command needs after flags and config are resolved.
type env struct {
	cfg      *config.Config
	compiler *sweep.Compiler
	loader   source.Loader
	sink     source.Sink
}

func newEnv(cmd *cobra.Command, opts *rootOptions) (*env, error) {
	load := config.Load
	if cmd.Flags().Changed("config") {
		load = config.LoadFile
	}
	cfg, err := load(opts.config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("target") {
		cfg.Target = strings.ToLower(opts.target)
	}
	if cmd.Flags().Changed("prelude") {
		cfg.Prelude = opts.prelude
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	compiler, err := sweep.NewCompiler(cfg.CompilerOptions())
	if err != nil {
		return nil, err
	}
	slog.Debug("configured", "target", cfg.Target, "prelude", cfg.Prelude, "cache_dir", cfg.CacheDir)
	return &env{
		cfg:      cfg,
		compiler: compiler,
		loader: source.Auto{
			File: source.FileLoader{Stdin: cmd.InOrStdin()},
			URL:  source.URLLoader{Cache: netcache.New(cfg.CacheDir), Ctx: cmd.Context()},
		},
		sink: source.FileSink{Dir: cfg.OutputDir},
	}, nil
}

func (e *env) compileFile(path string) (string, error) {
	src, err := e.loader.Load(path)
	if err != nil {
		return "", err
	}
	out, err := e.compiler.Compile(src)
	if err != nil {
		return "", fmt.Errorf("%s:%w", path, err)
	}
	return out, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sweep <template_file> [output_file]",
		Short:         "Compile sweep templates to PHP or Starlark source",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), usage)
				return errUsage
			}
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			out, err := e.compileFile(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				if err := e.sink.Write(args[1], out); err != nil {
					return err
				}
				slog.Info("compiled", "input", args[0], "output", args[1], "bytes", len(out))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.config, "config", config.DefaultPath, "Path to sweep configuration file")
	root.PersistentFlags().StringVar(&opts.target, "target", string(sweep.TargetPHP), "Host language: php or starlark")
	root.PersistentFlags().BoolVar(&opts.prelude, "prelude", false, "Prepend definitions of filter helpers")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newNodesCmd(opts), newCheckCmd(opts), newFiltersCmd(opts))
	return root
}

func newNodesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes <template_file>",
		Short: "Print the node list of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			src, err := e.loader.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), sweep.Pretty(sweep.Parse(src)))
			return nil
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <template_file>...",
		Short: "Compile templates and report every failure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				if err := e.check(path); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed++
					continue
				}
				slog.Info("ok", "file", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(args))
			}
			return nil
		},
	}
}

func (e *env) check(path string) error {
	out, err := e.compileFile(path)
	if err != nil {
		return err
	}
	if e.compiler.Target() != sweep.TargetStarlark {
		return nil
	}
	if err := starlark.Check(path, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	inputs, err := starlark.Inputs(path, out)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("starlark inputs", "file", path, "names", inputs)
	return nil
}

func newFiltersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the filters of the selected target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			reg, err := e.compiler.Target().Filters()
			if err != nil {
				return err
			}
			for _, f := range reg.Filters() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", f.Name, f.Func)
			}
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errUsage) {
			slog.Error("fatal", "error", err)
		}
		os.Exit(1)
	}
}
