package resources

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zihgir1/BEVM/assets"
	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/keys"
)

type candidateFile struct {
	// Exactly one of Seed and Account is set.
	Seed    string `koanf:"seed"`
	Account string `koanf:"account"`
	About   string `koanf:"about"`
	HotKey  string `koanf:"hot_key"`
	ColdKey string `koanf:"cold_key"`
}

type candidateSetFile struct {
	Chain      common.Chain    `koanf:"chain"`
	Min        uint32          `koanf:"min_trustee_count"`
	Max        uint32          `koanf:"max_trustee_count"`
	Candidates []candidateFile `koanf:"candidates"`
}

type trusteesFile struct {
	Sets []candidateSetFile `koanf:"sets"`
}

func (c *candidateFile) account() (common.AccountID, error) {
	switch {
	case c.Seed != "" && c.Account != "":
		return common.AccountID{}, fmt.Errorf("candidate '%s' has both a seed and an account", c.About)
	case c.Seed != "":
		return keys.DeriveAccount(c.Seed)
	default:
		return common.ParseAccountHex(c.Account)
	}
}

// TrusteeCandidates returns the trustee candidate sets of a resource file.
func TrusteeCandidates(name string) ([]bridge.CandidateSet, error) {
	f, err := file[trusteesFile](name).get()
	if err != nil {
		return nil, err
	}
	sets := make([]bridge.CandidateSet, 0, len(f.Sets))
	for _, s := range f.Sets {
		set := bridge.CandidateSet{
			Chain:      s.Chain,
			Config:     bridge.TrusteeInfoConfig{MinTrusteeCount: s.Min, MaxTrusteeCount: s.Max},
			Candidates: make([]bridge.Candidate, 0, len(s.Candidates)),
		}
		for _, c := range s.Candidates {
			account, err := c.account()
			if err != nil {
				return nil, fmt.Errorf("resource %s: %w", name, err)
			}
			hot, err := hexutil.Decode(c.HotKey)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %s hot key: %w", name, c.About, err)
			}
			cold, err := hexutil.Decode(c.ColdKey)
			if err != nil {
				return nil, fmt.Errorf("resource %s: %s cold key: %w", name, c.About, err)
			}
			set.Candidates = append(set.Candidates, bridge.Candidate{Account: account, About: c.About, HotKey: hot, ColdKey: cold})
		}
		sets = append(sets, set)
	}
	return sets, nil
}

type authorityFile struct {
	Referral           string `koanf:"referral"`
	Stash              string `koanf:"stash"`
	Babe               string `koanf:"babe"`
	Grandpa            string `koanf:"grandpa"`
	ImOnline           string `koanf:"im_online"`
	AuthorityDiscovery string `koanf:"authority_discovery"`
}

type authoritiesFile struct {
	Authorities []authorityFile `koanf:"authorities"`
}

// Authorities returns the published authorities of a resource file, in
// validator order.
func Authorities(name string) ([]*keys.AuthorityIdentity, error) {
	f, err := file[authoritiesFile](name).get()
	if err != nil {
		return nil, err
	}
	out := make([]*keys.AuthorityIdentity, 0, len(f.Authorities))
	for _, a := range f.Authorities {
		identity, err := keys.ParseAuthority(a.Referral, a.Stash, a.Babe, a.Grandpa, a.ImOnline, a.AuthorityDiscovery)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", name, err)
		}
		out = append(out, identity)
	}
	return out, nil
}

type governanceFile struct {
	TechnicalMembers []string `koanf:"technical_members"`
	Sudo             string   `koanf:"sudo"`
}

// Governance is the published governance membership of a network.
type Governance struct {
	TechnicalMembers []common.AccountID
	// Sudo is nil if the network has no administrative key.
	Sudo *common.AccountID
}

// LoadGovernance returns the governance membership of a resource file.
func LoadGovernance(name string) (*Governance, error) {
	f, err := file[governanceFile](name).get()
	if err != nil {
		return nil, err
	}
	gov := Governance{TechnicalMembers: make([]common.AccountID, 0, len(f.TechnicalMembers))}
	for _, m := range f.TechnicalMembers {
		account, err := common.ParseAccountHex(m)
		if err != nil {
			return nil, fmt.Errorf("resource %s: technical member: %w", name, err)
		}
		gov.TechnicalMembers = append(gov.TechnicalMembers, account)
	}
	if f.Sudo != "" {
		sudo, err := common.ParseAccountHex(f.Sudo)
		if err != nil {
			return nil, fmt.Errorf("resource %s: sudo: %w", name, err)
		}
		gov.Sudo = &sudo
	}
	return &gov, nil
}

type assetFile struct {
	ID           common.AssetID `koanf:"id"`
	Token        string         `koanf:"token"`
	TokenName    string         `koanf:"token_name"`
	Chain        common.Chain   `koanf:"chain"`
	Decimals     uint8          `koanf:"decimals"`
	Desc         string         `koanf:"desc"`
	Restrictions []string       `koanf:"restrictions"`
	Enabled      bool           `koanf:"enabled"`
	Registered   bool           `koanf:"registered"`
}

type restrictionFile struct {
	ID           common.AssetID `koanf:"id"`
	Restrictions []string       `koanf:"restrictions"`
}

type assetsFile struct {
	Assets       []assetFile       `koanf:"assets"`
	Restrictions []restrictionFile `koanf:"restrictions"`
}

// AssetDefinitions returns the genesis asset list and the restriction
// overrides.
func AssetDefinitions() ([]assets.Definition, []assets.Restriction, error) {
	const name = "assets.yaml"
	f, err := file[assetsFile](name).get()
	if err != nil {
		return nil, nil, err
	}
	defs := make([]assets.Definition, 0, len(f.Assets))
	for _, a := range f.Assets {
		r, err := assets.ParseRestrictions(a.Restrictions...)
		if err != nil {
			return nil, nil, fmt.Errorf("resource %s: asset %d: %w", name, a.ID, err)
		}
		defs = append(defs, assets.Definition{
			Info: assets.Info{
				ID:        a.ID,
				Token:     a.Token,
				TokenName: a.TokenName,
				Chain:     a.Chain,
				Decimals:  a.Decimals,
				Desc:      a.Desc,
			},
			Restrictions: r,
			Enabled:      a.Enabled,
			Registered:   a.Registered,
		})
	}
	overrides := make([]assets.Restriction, 0, len(f.Restrictions))
	for _, o := range f.Restrictions {
		r, err := assets.ParseRestrictions(o.Restrictions...)
		if err != nil {
			return nil, nil, fmt.Errorf("resource %s: restriction %d: %w", name, o.ID, err)
		}
		overrides = append(overrides, assets.Restriction{ID: o.ID, Restrictions: r})
	}
	return defs, overrides, nil
}
