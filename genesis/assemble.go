package genesis

import (
	"errors"
	"fmt"
	"sort"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/oasisprotocol/oasis-core/go/common/crypto/signature"

	"github.com/zihgir1/BEVM/assets"
	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/endowment"
	"github.com/zihgir1/BEVM/keys"
	"github.com/zihgir1/BEVM/params"
)

var (
	// ErrIncompleteAuthority is returned when an authority lacks one of its
	// role identities.
	ErrIncompleteAuthority = errors.New("incomplete authority")
	// ErrDuplicateValidator is returned when two authorities share a stash.
	ErrDuplicateValidator = errors.New("duplicate validator")
	// ErrInconsistentGenesis is returned when the composed state violates a
	// cross-subsystem invariant.
	ErrInconsistentGenesis = errors.New("inconsistent genesis")
	// ErrSealedModified is returned when a sealed document was changed
	// after Assemble returned it.
	ErrSealedModified = errors.New("sealed genesis modified")
)

// Governance is the fixed governance membership of profiles that do not
// derive it from the endowed accounts.
type Governance struct {
	TechnicalMembers []common.AccountID
}

// Input holds the fragments the genesis state is composed of.
type Input struct {
	// Authorities are the initial validators, in validator order.
	Authorities []*keys.AuthorityIdentity
	// RootKey is the administrative override key. Required iff the profile
	// has one.
	RootKey *common.AccountID
	// Registry is the asset registry.
	Registry *assets.Registry
	// Native is the native currency allocation.
	Native *endowment.Native
	// Assets are the non-native endowments. A native entry is dropped.
	Assets endowment.Assets
	// Trustees is the Bitcoin bridge committee with its verified anchor.
	Trustees *bridge.TrusteeSet
	// Governance is used when the profile does not derive governance.
	Governance Governance
	// Code is the runtime code image.
	Code []byte
	// AdminKey is the optional EVM admin key of the assets bridge.
	AdminKey *gethCommon.Address
}

// Assemble composes the genesis state of a profile and seals it. Every
// validation failure aborts the assembly.
func Assemble(profile common.Profile, in *Input) (*Document, error) {
	p := params.For(profile)
	caps := p.Capabilities

	switch {
	case in.Registry == nil:
		return nil, fmt.Errorf("%w: no asset registry", ErrInconsistentGenesis)
	case in.Native == nil:
		return nil, fmt.Errorf("%w: no native allocation", ErrInconsistentGenesis)
	case in.Trustees == nil || in.Trustees.Anchor == nil:
		return nil, fmt.Errorf("%w: no bridge trustees", ErrInconsistentGenesis)
	case len(in.Code) == 0:
		return nil, fmt.Errorf("%w: empty code image", ErrInconsistentGenesis)
	}

	// Validators.
	bindings, err := NewBindings(in.Authorities)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 || uint32(len(bindings)) < p.MinimumValidatorCount {
		return nil, fmt.Errorf("%w: %d initial validators, want at least max(1, %d)", ErrInconsistentGenesis, len(bindings), p.MinimumValidatorCount)
	}

	// Administrative key.
	var sudo *Sudo
	switch {
	case caps.AdminKey && in.RootKey == nil:
		return nil, fmt.Errorf("%w: %s requires a root key", ErrInconsistentGenesis, profile)
	case !caps.AdminKey && in.RootKey != nil:
		return nil, fmt.Errorf("%w: %s has no root key", ErrInconsistentGenesis, profile)
	case caps.AdminKey:
		sudo = &Sudo{Key: *in.RootKey}
	}

	// Endowments.
	_, nonNative := endowment.Split(in.Assets)
	endowed := make([]AssetEndowment, 0, len(nonNative))
	for id, balances := range nonNative {
		if err = in.Registry.Check("endowment", id); err != nil {
			return nil, err
		}
		endowed = append(endowed, AssetEndowment{AssetID: id, Balances: append([]endowment.Balance{}, balances...)})
	}
	sort.Slice(endowed, func(i, j int) bool { return endowed[i].AssetID < endowed[j].AssetID })

	technical := in.Governance.TechnicalMembers
	elected := []endowment.Member{}
	if caps.DeriveGovernance {
		technical = in.Native.TechnicalMembers
		elected = append(elected, in.Native.ElectionMembers...)
	}

	// Policy constants.
	for _, r := range p.ClaimRestrictions {
		if err = in.Registry.Check("claim restriction", r.AssetID); err != nil {
			return nil, err
		}
	}
	for _, m := range p.MiningPower {
		if err = in.Registry.Check("mining power", m.AssetID); err != nil {
			return nil, err
		}
	}
	for _, tp := range p.TradingPairs {
		if err = checkNonNative(in.Registry, "trading pair", tp.Base, tp.Quote); err != nil {
			return nil, err
		}
	}

	// Bridge.
	trustees := in.Trustees
	if trustees.Chain != common.ChainBitcoin {
		return nil, fmt.Errorf("%w: %s trustees bound to the Bitcoin bridge", ErrInconsistentGenesis, trustees.Chain)
	}
	anchor := trustees.Anchor

	doc := Document{
		System:  System{Code: append([]byte{}, in.Code...)},
		Sudo:    sudo,
		Babe:    Babe{Authorities: []signature.PublicKey{}, EpochConfig: p.BabeEpoch},
		Grandpa: Grandpa{Authorities: []signature.PublicKey{}},
		Council: Membership{Members: []common.AccountID{}},

		TechnicalCommittee:  Membership{Members: []common.AccountID{}},
		TechnicalMembership: Membership{Members: append([]common.AccountID{}, technical...)},
		Elections:           Elections{Members: elected},
		ImOnline:            KeyList{Keys: []signature.PublicKey{}},
		AuthorityDiscovery:  KeyList{Keys: bindings.DiscoveryKeys()},
		Session:             Session{Keys: bindings.SessionKeys()},
		Balances:            Balances{Balances: append([]endowment.Balance{}, in.Native.Balances...)},
		Indices:             Indices{Indices: []common.AccountID{}},

		XSystem:          XSystem{NetworkProps: caps.Network},
		XAssetsRegistrar: XAssetsRegistrar{Assets: append([]assets.Descriptor{}, in.Registry.Assets...)},
		XAssets: XAssets{
			AssetsRestrictions: in.Registry.RestrictionList(),
			Endowed:            endowed,
		},
		XGatewayCommon: XGatewayCommon{Trustees: append([]bridge.CandidateSet{}, trustees.Sets...)},
		XGatewayBitcoin: XGatewayBitcoin{
			GenesisTrustees:    trustees.GenesisTrustees(),
			NetworkID:          anchor.Network,
			ConfirmationNumber: anchor.ConfirmationNumber,
			GenesisHash:        anchor.Hash.String(),
			GenesisInfo:        BtcGenesisInfo{Header: anchor.HeaderInfo(), Height: anchor.Height},
			ParamsInfo:         p.Difficulty,
			BtcWithdrawalFee:   p.BtcWithdrawalFee,
			MaxWithdrawalCount: p.MaxWithdrawalCount,
			Verifier:           p.Verifier,
		},
		XStaking: XStaking{
			ValidatorCount:        p.ValidatorCount,
			MinimumValidatorCount: p.MinimumValidatorCount,
			SessionsPerEra:        p.SessionsPerEra,
			GlobDistRatio:         p.GlobalDistributionRatio,
			MiningRatio:           p.MiningRatio,
			MinimumPenalty:        p.MinimumPenalty,
			CandidateRequirement:  p.CandidateRequirement,
		},
		XMiningAsset: XMiningAsset{
			ClaimRestrictions: p.ClaimRestrictions,
			MiningPowerMap:    p.MiningPower,
		},
		XSpot:           XSpot{TradingPairs: p.TradingPairs},
		XGenesisBuilder: XGenesisBuilder{InitialAuthorities: bindings.InitialAuthorities()},
		EthereumChainID: EthereumChainID{ChainID: p.EthereumChainID},
		BaseFee:         p.BaseFee,
		XAssetsBridge:   XAssetsBridge{AdminKey: in.AdminKey},

		TotalEndowed: *in.Native.TotalEndowed.Clone(),
	}

	if err = SanityCheck(&doc, caps); err != nil {
		return nil, err
	}
	if err = doc.seal(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func checkNonNative(reg *assets.Registry, what string, ids ...common.AssetID) error {
	for _, id := range ids {
		if id == common.NativeAssetID {
			continue
		}
		if err := reg.Check(what, id); err != nil {
			return err
		}
	}
	return nil
}
