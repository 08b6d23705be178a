// Package genesis assembles the genesis state of the chain.
package genesis

import (
	"encoding/json"
	"fmt"

	gethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/oasisprotocol/oasis-core/go/common/crypto/hash"
	"github.com/oasisprotocol/oasis-core/go/common/crypto/signature"
	"github.com/oasisprotocol/oasis-core/go/common/quantity"

	"github.com/zihgir1/BEVM/assets"
	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/endowment"
	"github.com/zihgir1/BEVM/params"
)

// Document is the genesis state consumed by the runtime to compute block 0.
// A document returned by Assemble is sealed and must be treated as read-only;
// Hash fails once its content diverges from the sealed hash.
type Document struct {
	System              System              `json:"system"`
	Sudo                *Sudo               `json:"sudo,omitempty"`
	Babe                Babe                `json:"babe"`
	Grandpa             Grandpa             `json:"grandpa"`
	Council             Membership          `json:"council"`
	TechnicalCommittee  Membership          `json:"technicalCommittee"`
	TechnicalMembership Membership          `json:"technicalMembership"`
	Democracy           struct{}            `json:"democracy"`
	Treasury            struct{}            `json:"treasury"`
	Elections           Elections           `json:"elections"`
	ImOnline            KeyList             `json:"imOnline"`
	AuthorityDiscovery  KeyList             `json:"authorityDiscovery"`
	Session             Session             `json:"session"`
	Balances            Balances            `json:"balances"`
	Indices             Indices             `json:"indices"`
	XSystem             XSystem             `json:"xSystem"`
	XAssetsRegistrar    XAssetsRegistrar    `json:"xAssetsRegistrar"`
	XAssets             XAssets             `json:"xAssets"`
	XGatewayCommon      XGatewayCommon      `json:"xGatewayCommon"`
	XGatewayBitcoin     XGatewayBitcoin     `json:"xGatewayBitcoin"`
	XStaking            XStaking            `json:"xStaking"`
	XMiningAsset        XMiningAsset        `json:"xMiningAsset"`
	XSpot               XSpot               `json:"xSpot"`
	XGenesisBuilder     XGenesisBuilder     `json:"xGenesisBuilder"`
	EthereumChainID     EthereumChainID     `json:"ethereumChainId"`
	EVM                 struct{}            `json:"evm"`
	Ethereum            struct{}            `json:"ethereum"`
	BaseFee             params.BaseFee      `json:"baseFee"`
	XAssetsBridge       XAssetsBridge       `json:"xAssetsBridge"`
	XBtcLedger          struct{}            `json:"xBtcLedger"`

	// TotalEndowed is the sum of the native balances. Diagnostic only.
	TotalEndowed quantity.Quantity `json:"totalEndowed"`

	sealed *hash.Hash
}

type System struct {
	Code hexutil.Bytes `json:"code"`
}

type Sudo struct {
	Key common.AccountID `json:"key"`
}

type Babe struct {
	Authorities []signature.PublicKey `json:"authorities"`
	EpochConfig params.BabeEpoch      `json:"epochConfig"`
}

type Grandpa struct {
	Authorities []signature.PublicKey `json:"authorities"`
}

type Membership struct {
	Members []common.AccountID `json:"members"`
}

type Elections struct {
	Members []endowment.Member `json:"members"`
}

type KeyList struct {
	Keys []signature.PublicKey `json:"keys"`
}

type Session struct {
	Keys []SessionEntry `json:"keys"`
}

type Balances struct {
	Balances []endowment.Balance `json:"balances"`
}

type Indices struct {
	Indices []common.AccountID `json:"indices"`
}

type XSystem struct {
	NetworkProps common.NetworkType `json:"networkProps"`
}

type XAssetsRegistrar struct {
	Assets []assets.Descriptor `json:"assets"`
}

// AssetEndowment is the initial distribution of one non-native asset.
type AssetEndowment struct {
	AssetID  common.AssetID      `json:"assetId"`
	Balances []endowment.Balance `json:"balances"`
}

type XAssets struct {
	AssetsRestrictions []assets.Restriction `json:"assetsRestrictions"`
	// Endowed is ordered by asset id and never holds the native asset.
	Endowed []AssetEndowment `json:"endowed"`
}

type XGatewayCommon struct {
	Trustees []bridge.CandidateSet `json:"trustees"`
}

// BtcGenesisInfo is the anchor header and its height.
type BtcGenesisInfo struct {
	Header bridge.HeaderInfo `json:"header"`
	Height uint32            `json:"height"`
}

type XGatewayBitcoin struct {
	GenesisTrustees    []common.AccountID `json:"genesisTrustees"`
	NetworkID          string             `json:"networkId"`
	ConfirmationNumber uint32             `json:"confirmationNumber"`
	GenesisHash        string             `json:"genesisHash"`
	GenesisInfo        BtcGenesisInfo     `json:"genesisInfo"`
	ParamsInfo         params.Difficulty  `json:"paramsInfo"`
	BtcWithdrawalFee   uint64             `json:"btcWithdrawalFee"`
	MaxWithdrawalCount uint32             `json:"maxWithdrawalCount"`
	Verifier           string             `json:"verifier"`
}

type XStaking struct {
	ValidatorCount        uint32                      `json:"validatorCount"`
	MinimumValidatorCount uint32                      `json:"minimumValidatorCount"`
	SessionsPerEra        uint32                      `json:"sessionsPerEra"`
	GlobDistRatio         common.Ratio                `json:"globDistRatio"`
	MiningRatio           common.Ratio                `json:"miningRatio"`
	MinimumPenalty        *quantity.Quantity          `json:"minimumPenalty"`
	CandidateRequirement  params.CandidateRequirement `json:"candidateRequirement"`
}

type XMiningAsset struct {
	ClaimRestrictions []params.ClaimRestriction `json:"claimRestrictions"`
	MiningPowerMap    []params.MiningPower      `json:"miningPowerMap"`
}

type XSpot struct {
	TradingPairs []params.TradingPair `json:"tradingPairs"`
}

type XGenesisBuilder struct {
	// InitialAuthorities are the referral tags of the initial validators,
	// in validator order.
	InitialAuthorities []string `json:"initialAuthorities"`
}

type EthereumChainID struct {
	ChainID uint64 `json:"chainId"`
}

type XAssetsBridge struct {
	AdminKey *gethCommon.Address `json:"adminKey"`
}

// Hash returns the SHA-512/256 hash of the canonical (compact) JSON
// encoding of the document. A sealed document whose content no longer
// hashes to the value recorded at sealing returns ErrSealedModified.
func (d *Document) Hash() (hash.Hash, error) {
	h, err := d.computeHash()
	if err != nil {
		return hash.Hash{}, err
	}
	if d.sealed != nil && !d.sealed.Equal(&h) {
		return hash.Hash{}, fmt.Errorf("%w: sealed as %s, content hashes to %s", ErrSealedModified, d.sealed, h)
	}
	return h, nil
}

func (d *Document) computeHash() (hash.Hash, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return hash.Hash{}, fmt.Errorf("genesis: encoding document: %w", err)
	}
	return hash.NewFromBytes(raw), nil
}

func (d *Document) seal() error {
	h, err := d.computeHash()
	if err != nil {
		return err
	}
	d.sealed = &h
	return nil
}

// Sealed reports whether the document has been sealed by Assemble.
func (d *Document) Sealed() bool {
	return d.sealed != nil
}

// Validators returns the number of initial validators.
func (d *Document) Validators() int {
	return len(d.Session.Keys)
}
