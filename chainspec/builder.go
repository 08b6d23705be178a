package chainspec

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zihgir1/BEVM/assets"
	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/endowment"
	"github.com/zihgir1/BEVM/genesis"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
	"github.com/zihgir1/BEVM/params"
	"github.com/zihgir1/BEVM/resources"
)

// BuildOptions select how a profile is built.
type BuildOptions struct {
	// FromSource rebuilds published profiles from their inputs instead of
	// reading the frozen snapshot.
	FromSource bool
}

// Builder builds the chain spec of a profile.
type Builder struct {
	Images    RuntimeImages
	Snapshots Snapshots
	// Verifier checks the external chain anchor. Defaults to
	// bridge.PowVerifier.
	Verifier bridge.Verifier
	Logger   *log.Logger
	// Metrics is optional.
	Metrics *metrics.BuildMetrics
}

// NewBuilder returns a builder using the embedded snapshots and the default
// anchor verifier.
func NewBuilder(images RuntimeImages, logger *log.Logger, m *metrics.BuildMetrics) *Builder {
	return &Builder{
		Images:    images,
		Snapshots: resources.FrozenSnapshots{},
		Verifier:  bridge.PowVerifier{},
		Logger:    logger.WithModule("chainspec"),
		Metrics:   m,
	}
}

// Mode returns how Build produces a profile's spec.
func Mode(profile common.Profile, opts BuildOptions) metrics.BuildMode {
	if profile.IsFrozen() && !opts.FromSource {
		return metrics.BuildModeFrozen
	}
	return metrics.BuildModeDynamic
}

// Build produces the chain spec of a profile. Any failure aborts the build;
// no partial spec is ever returned.
func (b *Builder) Build(ctx context.Context, profile common.Profile, opts BuildOptions) (*Envelope, error) {
	if !profile.Valid() {
		return nil, fmt.Errorf("%w: %d", common.ErrUnknownProfile, uint8(profile))
	}
	start := time.Now()
	mode := Mode(profile, opts)
	logger := b.Logger.With("profile", profile.String(), "mode", mode)

	var env *Envelope
	var err error
	switch mode {
	case metrics.BuildModeFrozen:
		env, err = b.loadFrozen(profile)
	default:
		env, err = b.assemble(ctx, profile)
	}

	status := metrics.BuildStatusOK
	if err != nil {
		status = metrics.BuildStatusError
		logger.Error("chain spec build failed", "err", err)
	}
	if b.Metrics != nil {
		b.Metrics.ObserveBuild(profile.String(), mode, status, time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	summary, err := Summarize(profile, env)
	if err != nil {
		return nil, err
	}
	logger.Info("built chain spec",
		"validators", summary.Validators,
		"endowed_accounts", summary.EndowedAccounts,
		"total_endowed", summary.TotalEndowed,
		"trustees", summary.Trustees,
		"anchor", summary.AnchorHash,
		"genesis_hash", summary.GenesisHash,
	)
	return env, nil
}

func (b *Builder) loadFrozen(profile common.Profile) (*Envelope, error) {
	if b.Snapshots == nil {
		return nil, fmt.Errorf("%w: no snapshot source for %s", ErrMalformedSnapshot, profile)
	}
	raw, err := b.Snapshots.Snapshot(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s snapshot: %v", ErrMalformedSnapshot, profile, err)
	}
	return Load(raw, params.For(profile).Metadata)
}

func (b *Builder) assemble(ctx context.Context, profile common.Profile) (*Envelope, error) {
	p := params.For(profile)

	if b.Images == nil {
		return nil, fmt.Errorf("%w: no image source for %s", ErrMissingRuntimeImage, p.Capabilities.Runtime)
	}
	code, err := b.Images.Image(p.Capabilities.Runtime)
	if err != nil {
		return nil, err
	}

	in, err := resources.ForProfile(profile)
	if err != nil {
		return nil, err
	}

	registry, err := assets.Init(in.Assets, in.Restrictions)
	if err != nil {
		return nil, err
	}

	native, err := endowment.AllocateNative(in.Endowed, p.Endowment, p.ElectionStash)
	if err != nil {
		return nil, err
	}

	verifier := b.Verifier
	if verifier == nil {
		verifier = bridge.PowVerifier{}
	}
	verified, err := verifier.Verify(ctx, in.Anchor, p.Difficulty)
	if err != nil {
		return nil, err
	}
	b.Logger.Debug("verified anchor",
		"profile", profile.String(),
		"network", verified.Network,
		"height", verified.Height,
		"target", verified.Target,
		"retarget_interval", verified.RetargetInterval,
	)

	trustees, err := bridge.Assemble(in.TrusteeSets, in.Anchor)
	if err != nil {
		return nil, err
	}

	doc, err := genesis.Assemble(profile, &genesis.Input{
		Authorities: in.Authorities,
		RootKey:     in.RootKey,
		Registry:    registry,
		Native:      native,
		Assets:      endowment.Assets{},
		Trustees:    trustees,
		Governance:  genesis.Governance{TechnicalMembers: in.TechnicalMembers},
		Code:        code,
	})
	if err != nil {
		return nil, err
	}
	return Wrap(doc, p.Metadata), nil
}

// BuildAll builds several profiles concurrently. Every envelope is owned by
// its slot of the result.
func (b *Builder) BuildAll(ctx context.Context, profiles []common.Profile, opts BuildOptions) ([]*Envelope, error) {
	envs := make([]*Envelope, len(profiles))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		i, profile := i, profile
		group.Go(func() error {
			env, err := b.Build(groupCtx, profile, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", profile, err)
			}
			envs[i] = env
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return envs, nil
}
