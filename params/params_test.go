package params

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/common"
)

func TestForEveryProfile(t *testing.T) {
	for _, p := range common.AllProfiles() {
		params := For(p)
		require.Equal(t, p, params.Profile)
		require.NoError(t, params.Difficulty.Validate(), p.String())
		require.Equal(t, params.Capabilities.Network, params.Metadata.Properties.Network, p.String())
		require.Equal(t, uint32(40), params.ValidatorCount)
		require.Equal(t, "Recover", params.Verifier)
	}
}

func TestForPanicsOnUnknownProfile(t *testing.T) {
	require.Panics(t, func() { For(common.Profile(common.NumProfiles)) })
}

func TestForReturnsFreshValues(t *testing.T) {
	a := For(common.ProfileMain)
	a.Metadata.Telemetry[0].URL = "wss://example.invalid"
	a.TradingPairs[0].Tradable = false
	require.NoError(t, a.Endowment.Add(common.Dollars(1)))

	b := For(common.ProfileMain)
	require.Equal(t, chainXTelemetryURL, b.Metadata.Telemetry[0].URL)
	require.True(t, b.TradingPairs[0].Tradable)
	require.Zero(t, b.Endowment.Cmp(common.Dollars(10_000_000)))
}

func TestCapabilities(t *testing.T) {
	dev := For(common.ProfileDevelopment).Capabilities
	require.True(t, dev.AdminKey)
	require.True(t, dev.DeriveGovernance)
	require.Equal(t, common.NetworkTestnet, dev.Network)

	malan := For(common.ProfilePublicTest).Capabilities
	require.True(t, malan.AdminKey)
	require.False(t, malan.DeriveGovernance)
	require.Equal(t, AnchorBitcoinTest, malan.Anchor)

	main := For(common.ProfileMain).Capabilities
	require.False(t, main.AdminKey)
	require.False(t, main.DeriveGovernance)
	require.Equal(t, common.NetworkMainnet, main.Network)
	require.Equal(t, AnchorBitcoinMain, main.Anchor)
	require.Equal(t, "chainx", main.Runtime)
}

func TestMetadata(t *testing.T) {
	main := For(common.ProfileMain).Metadata
	require.Equal(t, "ChainX", main.Name)
	require.Equal(t, "pcx1", main.ProtocolID)
	require.Equal(t, uint16(44), main.Properties.SS58Format)
	require.Len(t, main.Telemetry, 2)

	dev := For(common.ProfileDevelopment).Metadata
	require.Equal(t, common.ChainTypeDevelopment, dev.ChainType)
	require.Equal(t, uint16(42), dev.Properties.SS58Format)
	require.Equal(t, "PCX", dev.Properties.TokenSymbol)
	require.Empty(t, dev.Telemetry)
}

func TestDifficultyMatchesBitcoin(t *testing.T) {
	main := For(common.ProfileMain).Difficulty
	require.Equal(t, chaincfg.MainNetParams.PowLimitBits, main.MaxBits)
	require.Equal(t, chaincfg.MainNetParams.TargetTimespan, time.Duration(main.TargetTimespanSeconds)*time.Second)
	require.Equal(t, chaincfg.MainNetParams.TargetTimePerBlock, time.Duration(main.TargetSpacingSeconds)*time.Second)
	require.Equal(t, chaincfg.MainNetParams.RetargetAdjustmentFactor, int64(main.RetargetingFactor))
	require.Equal(t, uint32(blockchain.MaxTimeOffsetSeconds), main.BlockMaxFuture)
	require.Equal(t, uint32(2016), main.RetargetInterval())

	test := For(common.ProfilePublicTest).Difficulty
	require.Equal(t, chaincfg.RegressionNetParams.PowLimitBits, test.MaxBits)
}

func TestDifficultyValidate(t *testing.T) {
	d := For(common.ProfileMain).Difficulty
	d.TargetTimespanSeconds++
	require.Error(t, d.Validate())

	d = For(common.ProfileMain).Difficulty
	d.TargetSpacingSeconds = 601
	require.Error(t, d.Validate())

	d = For(common.ProfileMain).Difficulty
	d.TargetSpacingSeconds = 7
	require.NoError(t, d.Validate())
	require.Equal(t, uint32(172800), d.RetargetInterval())

	d = For(common.ProfileMain).Difficulty
	d.TargetSpacingSeconds = 0
	require.Error(t, d.Validate())
	require.Zero(t, d.RetargetInterval())
}

func TestEthereumChainIDs(t *testing.T) {
	require.Equal(t, uint64(1503), For(common.ProfileDevelopment).EthereumChainID)
	require.Equal(t, uint64(1503), For(common.ProfileLocal).EthereumChainID)
	require.Equal(t, uint64(1502), For(common.ProfilePublicTest).EthereumChainID)
	require.Equal(t, uint64(1501), For(common.ProfileMain).EthereumChainID)
}
