// Package verify implements the verify-snapshot sub-command.
package verify

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zihgir1/BEVM/chainspec"
	cmdCommon "github.com/zihgir1/BEVM/cmd/common"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/params"
	"github.com/zihgir1/BEVM/resources"
)

const (
	moduleName = "verify_snapshot"
)

var (
	// Path to the configuration file.
	configFile string

	chain common.Profile = common.ProfileMain
	file  string

	verifyCmd = &cobra.Command{
		Use:   "verify-snapshot",
		Short: "Check that a frozen chain spec round-trips byte-identically",
		Run:   runVerify,
	}
)

func runVerify(cmd *cobra.Command, args []string) {
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

	var snapshots chainspec.Snapshots = resources.FrozenSnapshots{}
	if cfg.Build != nil && cfg.Build.SnapshotDir != "" {
		snapshots = chainspec.DirSnapshots{Dir: cfg.Build.SnapshotDir}
	}
	data, err := readSnapshot(snapshots, chain, file)
	if err != nil {
		logger.Error("reading snapshot failed",
			"profile", chain.String(),
			"error", err,
		)
		os.Exit(1)
	}

	summary, err := Verify(chain, data)
	if err != nil {
		logger.Error("snapshot verification failed",
			"profile", chain.String(),
			"error", err,
		)
		os.Exit(1)
	}
	logger.Info("snapshot verified",
		"profile", summary.Profile.String(),
		"id", summary.ID,
		"genesis_hash", summary.GenesisHash,
		"spec_hash", summary.SpecHash,
		"validators", summary.Validators,
		"trustees", summary.Trustees,
		"anchor_hash", summary.AnchorHash,
	)
}

func readSnapshot(snapshots chainspec.Snapshots, profile common.Profile, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return snapshots.Snapshot(profile)
}

// Verify loads a frozen snapshot of the profile and summarizes it. Every
// failure wraps chainspec.ErrMalformedSnapshot.
func Verify(profile common.Profile, data []byte) (*chainspec.Summary, error) {
	if !profile.IsFrozen() {
		return nil, fmt.Errorf("profile %s is not published as a frozen snapshot", profile)
	}
	env, err := chainspec.Load(data, params.For(profile).Metadata)
	if err != nil {
		return nil, err
	}
	return chainspec.Summarize(profile, env)
}

// Register registers the verify-snapshot sub-command.
func Register(parentCmd *cobra.Command) {
	verifyCmd.Flags().StringVar(&configFile, "config", "", "path to the config.yml file")
	verifyCmd.Flags().Var(&chain, "chain", "published profile to verify")
	verifyCmd.Flags().StringVar(&file, "file", "", "snapshot file to verify instead of the embedded one")
	parentCmd.AddCommand(verifyCmd)
}
