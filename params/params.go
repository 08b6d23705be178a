// Package params holds the per-profile policy constants of the genesis state.
package params

import (
	"fmt"

	"github.com/oasisprotocol/oasis-core/go/common/quantity"

	"github.com/zihgir1/BEVM/common"
)

const (
	// BlocksPerDay is the number of 6 second blocks in a day.
	BlocksPerDay = 24 * 60 * 60 / 6

	chainXTelemetryURL   = "wss://telemetry.chainx.org/submit/"
	polkadotTelemetryURL = "wss://telemetry.polkadot.io/submit/"
)

// AnchorFamily selects the external chain anchor resource of a profile.
type AnchorFamily string

const (
	AnchorBitcoinTest AnchorFamily = "bitcoin-test"
	AnchorBitcoinMain AnchorFamily = "bitcoin-main"
)

// Capabilities describes how a profile's genesis differs structurally from
// the others.
type Capabilities struct {
	// AdminKey is true if the genesis carries an administrative override key.
	AdminKey bool
	// Network is the network tag stored in the genesis state.
	Network common.NetworkType
	// DeriveGovernance is true if governance seats and native balances are
	// derived from the endowed account list, false if the profile uses
	// fixed published membership and starts without native balances.
	DeriveGovernance bool
	// Runtime names the code image backing the profile.
	Runtime string
	// Anchor selects the external chain anchor.
	Anchor AnchorFamily
}

// TelemetryEndpoint is a telemetry submission target.
type TelemetryEndpoint struct {
	URL       string
	Verbosity uint8
}

// Properties are the client display properties of a network.
type Properties struct {
	Network       common.NetworkType `json:"network"`
	SS58Format    uint16             `json:"ss58Format"`
	TokenDecimals uint8              `json:"tokenDecimals"`
	TokenSymbol   string             `json:"tokenSymbol"`
}

// Metadata is the distribution metadata of a profile's chain spec.
type Metadata struct {
	Name       string
	ID         string
	ChainType  common.ChainType
	ProtocolID string
	BootNodes  []string
	Telemetry  []TelemetryEndpoint
	Properties Properties
}

// Difficulty holds the external chain difficulty-retargeting parameters.
type Difficulty struct {
	MaxBits               uint32 `json:"maxBits"`
	BlockMaxFuture        uint32 `json:"blockMaxFuture"`
	TargetTimespanSeconds uint32 `json:"targetTimespanSeconds"`
	TargetSpacingSeconds  uint32 `json:"targetSpacingSeconds"`
	RetargetingFactor     uint32 `json:"retargetingFactor"`
}

// RetargetInterval is the number of blocks between difficulty adjustments.
func (d *Difficulty) RetargetInterval() uint32 {
	if d.TargetSpacingSeconds == 0 {
		return 0
	}
	return d.TargetTimespanSeconds / d.TargetSpacingSeconds
}

// Validate checks the internal consistency of the parameters.
func (d *Difficulty) Validate() error {
	switch {
	case d.MaxBits == 0:
		return fmt.Errorf("max bits is zero")
	case d.TargetSpacingSeconds == 0:
		return fmt.Errorf("target spacing is zero")
	case d.TargetTimespanSeconds == 0:
		return fmt.Errorf("target timespan is zero")
	case d.TargetTimespanSeconds%d.TargetSpacingSeconds != 0:
		return fmt.Errorf("target timespan %d is not a multiple of target spacing %d", d.TargetTimespanSeconds, d.TargetSpacingSeconds)
	case d.RetargetingFactor < 1:
		return fmt.Errorf("retargeting factor is zero")
	}
	return nil
}

// CandidateRequirement is the minimum bond to become a validator candidate.
type CandidateRequirement struct {
	SelfBonded  *quantity.Quantity `json:"selfBonded"`
	TotalBonded *quantity.Quantity `json:"totalBonded"`
}

// BaseFee configures the EVM base fee.
type BaseFee struct {
	BaseFeePerGas uint64 `json:"baseFeePerGas"`
	IsActive      bool   `json:"isActive"`
	// Elasticity is in parts per million.
	Elasticity uint32 `json:"elasticity"`
}

// BabeEpoch is the genesis epoch configuration of block production.
type BabeEpoch struct {
	C            common.Ratio `json:"c"`
	AllowedSlots string       `json:"allowedSlots"`
}

// ClaimRestriction limits how often mining rewards of an asset can be claimed.
type ClaimRestriction struct {
	AssetID            common.AssetID `json:"assetId"`
	StakingRequirement uint32         `json:"stakingRequirement"`
	FrequencyLimit     uint32         `json:"frequencyLimit"`
}

// MiningPower is the weight of an asset in asset mining.
type MiningPower struct {
	AssetID common.AssetID `json:"assetId"`
	Power   uint32         `json:"power"`
}

// TradingPair is a spot market opened at genesis.
type TradingPair struct {
	Base         common.AssetID `json:"base"`
	Quote        common.AssetID `json:"quote"`
	PipDecimals  uint32         `json:"pipDecimals"`
	TickDecimals uint32         `json:"tickDecimals"`
	LatestPrice  uint64         `json:"latestPrice"`
	Tradable     bool           `json:"tradable"`
}

// Parameters are the policy constants of one profile.
type Parameters struct {
	Profile      common.Profile
	Capabilities Capabilities
	Metadata     Metadata

	ValidatorCount          uint32
	MinimumValidatorCount   uint32
	SessionsPerEra          uint32
	GlobalDistributionRatio common.Ratio
	MiningRatio             common.Ratio
	MinimumPenalty          *quantity.Quantity
	CandidateRequirement    CandidateRequirement

	Difficulty         Difficulty
	BtcWithdrawalFee   uint64
	MaxWithdrawalCount uint32
	Verifier           string

	// Endowment is the native amount every endowed account receives.
	Endowment *quantity.Quantity
	// ElectionStash is the stake each initial elected member bonds.
	ElectionStash *quantity.Quantity

	EthereumChainID uint64
	BaseFee         BaseFee
	BabeEpoch       BabeEpoch

	ClaimRestrictions []ClaimRestriction
	MiningPower       []MiningPower
	TradingPairs      []TradingPair
}

type row struct {
	capabilities          Capabilities
	metadata              Metadata
	sessionsPerEra        uint32
	minimumValidatorCount uint32
	maxBits               uint32
	ethereumChainID       uint64
}

func testProperties() Properties {
	return Properties{
		Network:       common.NetworkTestnet,
		SS58Format:    common.NetworkTestnet.SS58Format(),
		TokenDecimals: common.NativeDecimals,
		TokenSymbol:   common.NativeSymbol,
	}
}

var table = [...]row{
	common.ProfileDevelopment: {
		capabilities: Capabilities{
			AdminKey:         true,
			Network:          common.NetworkTestnet,
			DeriveGovernance: true,
			Runtime:          "dev",
			Anchor:           AnchorBitcoinTest,
		},
		metadata: Metadata{
			Name:       "Development",
			ID:         "dev",
			ChainType:  common.ChainTypeDevelopment,
			ProtocolID: "chainx-dev",
			Properties: testProperties(),
		},
		sessionsPerEra:  12,
		maxBits:         545259519,
		ethereumChainID: 1503,
	},
	common.ProfileLocal: {
		capabilities: Capabilities{
			AdminKey:         true,
			Network:          common.NetworkTestnet,
			DeriveGovernance: true,
			Runtime:          "dev",
			Anchor:           AnchorBitcoinTest,
		},
		metadata: Metadata{
			Name:       "ChainX Local Testnet",
			ID:         "dev",
			ChainType:  common.ChainTypeLocal,
			ProtocolID: "pcx",
			Properties: testProperties(),
		},
		sessionsPerEra:  12,
		maxBits:         545259519,
		ethereumChainID: 1503,
	},
	common.ProfilePublicTest: {
		capabilities: Capabilities{
			AdminKey: true,
			Network:  common.NetworkTestnet,
			Runtime:  "malan",
			Anchor:   AnchorBitcoinTest,
		},
		metadata: Metadata{
			Name:       "ChainX-Malan",
			ID:         "chainx-malan",
			ChainType:  common.ChainTypeLive,
			ProtocolID: "pcx1",
			Telemetry:  []TelemetryEndpoint{{URL: chainXTelemetryURL}},
			Properties: testProperties(),
		},
		sessionsPerEra:        12,
		minimumValidatorCount: 2,
		maxBits:               545259519,
		ethereumChainID:       1502,
	},
	common.ProfileMain: {
		capabilities: Capabilities{
			Network: common.NetworkMainnet,
			Runtime: "chainx",
			Anchor:  AnchorBitcoinMain,
		},
		metadata: Metadata{
			Name:       "ChainX",
			ID:         "chainx",
			ChainType:  common.ChainTypeLive,
			ProtocolID: "pcx1",
			Telemetry:  []TelemetryEndpoint{{URL: chainXTelemetryURL}, {URL: polkadotTelemetryURL}},
			Properties: Properties{
				Network:       common.NetworkMainnet,
				SS58Format:    common.NetworkMainnet.SS58Format(),
				TokenDecimals: common.NativeDecimals,
				TokenSymbol:   common.NativeSymbol,
			},
		},
		sessionsPerEra:  1,
		maxBits:         486604799,
		ethereumChainID: 1501,
	},
}

// Every profile has exactly one row.
var _ = [1]struct{}{}[len(table)-common.NumProfiles]

// For returns the parameters of a profile. Every call returns a freshly
// allocated value. It panics on a value outside the profile set.
func For(profile common.Profile) *Parameters {
	if !profile.Valid() {
		panic(fmt.Sprintf("params: %v", profile))
	}
	r := table[profile]

	metadata := r.metadata
	metadata.BootNodes = append([]string{}, r.metadata.BootNodes...)
	metadata.Telemetry = append([]TelemetryEndpoint{}, r.metadata.Telemetry...)

	return &Parameters{
		Profile:      profile,
		Capabilities: r.capabilities,
		Metadata:     metadata,

		ValidatorCount:          40,
		MinimumValidatorCount:   r.minimumValidatorCount,
		SessionsPerEra:          r.sessionsPerEra,
		GlobalDistributionRatio: common.Ratio{Numerator: 12, Denominator: 88},
		MiningRatio:             common.Ratio{Numerator: 10, Denominator: 90},
		MinimumPenalty:          common.Dollars(100),
		CandidateRequirement: CandidateRequirement{
			SelfBonded:  common.Dollars(100),
			TotalBonded: common.Dollars(1_000),
		},

		Difficulty: Difficulty{
			MaxBits:               r.maxBits,
			BlockMaxFuture:        2 * 60 * 60,
			TargetTimespanSeconds: 2 * 7 * 24 * 60 * 60,
			TargetSpacingSeconds:  10 * 60,
			RetargetingFactor:     4,
		},
		BtcWithdrawalFee:   500000,
		MaxWithdrawalCount: 100,
		Verifier:           "Recover",

		Endowment:     common.Dollars(10_000_000),
		ElectionStash: common.Dollars(100),

		EthereumChainID: r.ethereumChainID,
		BaseFee: BaseFee{
			BaseFeePerGas: 1_000_000_000,
			IsActive:      false,
			Elasticity:    125_000,
		},
		BabeEpoch: BabeEpoch{
			C:            common.Ratio{Numerator: 1, Denominator: 4},
			AllowedSlots: "PrimaryAndSecondaryVRFSlots",
		},

		ClaimRestrictions: []ClaimRestriction{
			{AssetID: common.XBTCAssetID, StakingRequirement: 10, FrequencyLimit: 7 * BlocksPerDay},
		},
		MiningPower: []MiningPower{
			{AssetID: common.XBTCAssetID, Power: 400},
		},
		TradingPairs: []TradingPair{
			{
				Base:         common.NativeAssetID,
				Quote:        common.XBTCAssetID,
				PipDecimals:  9,
				TickDecimals: 2,
				LatestPrice:  100000,
				Tradable:     true,
			},
		},
	}
}
