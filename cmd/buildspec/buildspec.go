// Package buildspec implements the build-spec sub-command.
package buildspec

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zihgir1/BEVM/chainspec"
	cmdCommon "github.com/zihgir1/BEVM/cmd/common"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/config"
	"github.com/zihgir1/BEVM/log"
)

const (
	moduleName = "build_spec"
)

// Options are the build-spec flags.
type Options struct {
	Chain      common.Profile
	FromSource bool
	Output     string
	Record     bool
	All        bool
	OutputDir  string
	RuntimeDir string
}

var (
	// Path to the configuration file.
	configFile string

	opts Options

	buildSpecCmd = &cobra.Command{
		Use:   "build-spec",
		Short: "Build the chain spec of a profile",
		Run:   runBuildSpec,
	}
)

func runBuildSpec(cmd *cobra.Command, args []string) {
	cfg, err := cmdCommon.LoadConfig(configFile)
	if err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	if err = cmdCommon.Init(cfg); err != nil {
		log.NewDefaultLogger("init").Error("init failed",
			"error", err,
		)
		os.Exit(1)
	}
	logger := cmdCommon.RootLogger().WithModule(moduleName)

	buildCfg := mergeFlags(cmd, cfg.Build, opts)
	if err = Run(cmd.Context(), buildCfg, opts, os.Stdout, logger); err != nil {
		logger.Error("build failed",
			"error", err,
		)
		os.Exit(1)
	}
	cmdCommon.FlushMetrics(cfg.Metrics)
}

// mergeFlags overlays explicitly set flags on the configured build section.
func mergeFlags(cmd *cobra.Command, cfg *config.BuildConfig, o Options) *config.BuildConfig {
	merged := config.BuildConfig{}
	if cfg != nil {
		merged = *cfg
	}
	if cmd.Flags().Changed("runtime-dir") || merged.RuntimeDir == "" {
		merged.RuntimeDir = o.RuntimeDir
	}
	if cmd.Flags().Changed("from-source") {
		merged.FromSource = o.FromSource
	}
	if cmd.Flags().Changed("output-dir") {
		merged.OutputDir = o.OutputDir
	}
	return &merged
}

// Run builds the chain specs selected by the options. A single spec goes to
// o.Output, or to stdout if that is empty; `--all` writes
// `<output_dir>/<profile>.json` for every configured profile.
func Run(ctx context.Context, cfg *config.BuildConfig, o Options, stdout io.Writer, logger *log.Logger) error {
	if cfg.RuntimeDir == "" {
		// Frozen profiles build without code images.
		cfg.RuntimeDir = "."
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.Record && cfg.Storage == nil {
		return fmt.Errorf("--record needs a storage section in the build config")
	}

	b, cleanup, err := cmdCommon.NewBuilder(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()
	buildOpts := chainspec.BuildOptions{FromSource: cfg.FromSource}

	profiles := []common.Profile{o.Chain}
	if o.All {
		if cfg.OutputDir == "" {
			return fmt.Errorf("--all needs an output directory")
		}
		profiles = cfg.SelectedProfiles()
	}
	envs, err := b.BuildAll(ctx, profiles, buildOpts)
	if err != nil {
		return err
	}

	summaries := make([]*chainspec.Summary, 0, len(envs))
	for i, env := range envs {
		encoded, err := chainspec.Encode(env)
		if err != nil {
			return err
		}
		summary, err := chainspec.Summarize(profiles[i], env)
		if err != nil {
			return err
		}
		summaries = append(summaries, summary)

		switch {
		case o.All:
			if err = writeFile(filepath.Join(cfg.OutputDir, profiles[i].String()+".json"), encoded); err != nil {
				return err
			}
		case o.Output != "":
			if err = writeFile(o.Output, encoded); err != nil {
				return err
			}
		default:
			if _, err = stdout.Write(encoded); err != nil {
				return err
			}
		}
		logger.Info("chain spec written",
			"profile", summary.Profile.String(),
			"id", summary.ID,
			"spec_hash", summary.SpecHash,
			"size", summary.Size,
		)
	}

	if o.Record {
		store, err := cmdCommon.NewPublicationStore(cfg.Storage, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		for _, s := range summaries {
			if err := store.RecordPublication(ctx, cmdCommon.NewPublication(s)); err != nil {
				return fmt.Errorf("recording %s: %w", s.Profile, err)
			}
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // Chain specs are public.
		return err
	}
	return os.Rename(tmp, path)
}

// Register registers the build-spec sub-command.
func Register(parentCmd *cobra.Command) {
	buildSpecCmd.Flags().StringVar(&configFile, "config", "", "path to the config.yml file")
	buildSpecCmd.Flags().Var(&opts.Chain, "chain", "profile to build")
	buildSpecCmd.Flags().BoolVar(&opts.FromSource, "from-source", false, "rebuild published profiles instead of reading their frozen snapshot")
	buildSpecCmd.Flags().StringVar(&opts.Output, "output", "", "file to write the chain spec to (default stdout)")
	buildSpecCmd.Flags().BoolVar(&opts.Record, "record", false, "record the publication in the configured storage")
	buildSpecCmd.Flags().BoolVar(&opts.All, "all", false, "build every configured profile into --output-dir")
	buildSpecCmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "directory for --all")
	buildSpecCmd.Flags().StringVar(&opts.RuntimeDir, "runtime-dir", "", "directory with the <runtime>.wasm code images")
	buildSpecCmd.MarkFlagsMutuallyExclusive("all", "chain")
	buildSpecCmd.MarkFlagsMutuallyExclusive("all", "output")
	parentCmd.AddCommand(buildSpecCmd)
}
