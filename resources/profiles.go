package resources

import (
	"fmt"

	"github.com/zihgir1/BEVM/assets"
	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/keys"
	"github.com/zihgir1/BEVM/params"
)

type profileFile struct {
	// Derived profiles.
	Validators []string `koanf:"validators"`
	Root       string   `koanf:"root"`
	Endowed    []string `koanf:"endowed"`

	// Published profiles.
	Authorities string `koanf:"authorities"`
	Governance  string `koanf:"governance"`

	Trustees string `koanf:"trustees"`
}

type profilesFile struct {
	Profiles map[string]profileFile `koanf:"profiles"`
}

// Inputs are the genesis inputs of one profile.
type Inputs struct {
	Authorities []*keys.AuthorityIdentity
	// RootKey is nil if the profile has no administrative key.
	RootKey *common.AccountID
	// Endowed are the accounts receiving the native endowment, in order.
	Endowed []common.AccountID
	// TechnicalMembers is the fixed technical membership of published
	// profiles.
	TechnicalMembers []common.AccountID

	Assets       []assets.Definition
	Restrictions []assets.Restriction
	TrusteeSets  []bridge.CandidateSet
	Anchor       *bridge.Anchor
}

func deriveAccounts(seeds []string) ([]common.AccountID, error) {
	accounts := make([]common.AccountID, 0, len(seeds))
	for _, seed := range seeds {
		account, err := keys.DeriveAccount(seed)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// ForProfile collects the genesis inputs of a profile. Every call returns
// freshly allocated values.
func ForProfile(profile common.Profile) (*Inputs, error) {
	f, err := file[profilesFile]("profiles.yaml").get()
	if err != nil {
		return nil, err
	}
	entry, ok := f.Profiles[profile.String()]
	if !ok {
		return nil, fmt.Errorf("resource profiles.yaml: no entry for %s", profile)
	}
	p := params.For(profile)

	var in Inputs
	switch {
	case entry.Authorities != "":
		if in.Authorities, err = Authorities(entry.Authorities); err != nil {
			return nil, err
		}
		gov, err := LoadGovernance(entry.Governance)
		if err != nil {
			return nil, err
		}
		in.RootKey = gov.Sudo
		in.TechnicalMembers = gov.TechnicalMembers
		in.Endowed = []common.AccountID{}
	default:
		if in.Authorities, err = keys.DeriveAll(entry.Validators...); err != nil {
			return nil, fmt.Errorf("%s validators: %w", profile, err)
		}
		if entry.Root != "" {
			root, err := keys.DeriveAccount(entry.Root)
			if err != nil {
				return nil, fmt.Errorf("%s root key: %w", profile, err)
			}
			in.RootKey = &root
		}
		if in.Endowed, err = deriveAccounts(entry.Endowed); err != nil {
			return nil, fmt.Errorf("%s endowed accounts: %w", profile, err)
		}
	}

	if in.Assets, in.Restrictions, err = AssetDefinitions(); err != nil {
		return nil, err
	}
	if in.TrusteeSets, err = TrusteeCandidates(entry.Trustees); err != nil {
		return nil, err
	}
	if in.Anchor, err = Anchor(p.Capabilities.Anchor); err != nil {
		return nil, err
	}
	return &in, nil
}

// FrozenSnapshots serves the embedded frozen snapshots of the published
// profiles.
type FrozenSnapshots struct{}

// Snapshot returns the frozen snapshot bytes of a profile.
func (FrozenSnapshots) Snapshot(profile common.Profile) ([]byte, error) {
	if !profile.IsFrozen() {
		return nil, fmt.Errorf("%s has no frozen snapshot", profile)
	}
	return data.ReadFile(fmt.Sprintf("data/frozen/%s.json", profile))
}
