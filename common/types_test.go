package common

import (
	"encoding/json"
	"testing"

	"github.com/oasisprotocol/oasis-core/go/common/quantity"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	for name, expected := range map[string]Profile{
		"dev":         ProfileDevelopment,
		"Development": ProfileDevelopment,
		"local":       ProfileLocal,
		"malan":       ProfilePublicTest,
		"testnet":     ProfilePublicTest,
		"public-test": ProfilePublicTest,
		" mainnet ":   ProfileMain,
	} {
		p, err := ParseProfile(name)
		require.NoError(t, err, name)
		require.Equal(t, expected, p, name)
	}

	_, err := ParseProfile("staging")
	require.ErrorIs(t, err, ErrUnknownProfile)
}

func TestProfileText(t *testing.T) {
	require.Len(t, AllProfiles(), NumProfiles)
	for _, p := range AllProfiles() {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var decoded Profile
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, p, decoded)
	}

	_, err := Profile(NumProfiles).MarshalText()
	require.ErrorIs(t, err, ErrUnknownProfile)
	require.Equal(t, "profile(4)", Profile(NumProfiles).String())
}

func TestProfileFlag(t *testing.T) {
	var p Profile
	require.NoError(t, p.Set("main"))
	require.Equal(t, ProfileMain, p)
	require.True(t, p.IsFrozen())
	require.Error(t, p.Set("nope"))
	require.Equal(t, ProfileMain, p)
	require.False(t, ProfileLocal.IsFrozen())
}

func TestRatioJSON(t *testing.T) {
	raw, err := json.Marshal(Ratio{Numerator: 12, Denominator: 88})
	require.NoError(t, err)
	require.Equal(t, "[12,88]", string(raw))

	var r Ratio
	require.NoError(t, json.Unmarshal([]byte("[10, 90]"), &r))
	require.Equal(t, Ratio{Numerator: 10, Denominator: 90}, r)
}

func TestDollars(t *testing.T) {
	require.Zero(t, quantity.NewFromUint64(10_000_000_00000000).Cmp(Dollars(10_000_000)))
	require.Equal(t, "100.00000000", FormatAmount(Dollars(100), NativeDecimals))
	require.Equal(t, "0.00500000", FormatAmount(quantity.NewFromUint64(500000), 8))
	require.Equal(t, "0", FormatAmount(nil, 8))
}

func TestParseAccountHex(t *testing.T) {
	id, err := ParseAccountHex("0x8fa51087d1a7327c90da45f8e369e31037606427f07ef77007a41036227a3a5b")
	require.NoError(t, err)
	require.Equal(t, byte(0x8f), id[0])
	require.Equal(t, byte(0x5b), id[31])

	_, err = ParseAccountHex("8fa51087")
	require.Error(t, err)
	_, err = ParseAccountHex("zz")
	require.Error(t, err)
}

func TestSS58Format(t *testing.T) {
	require.EqualValues(t, 44, NetworkMainnet.SS58Format())
	require.EqualValues(t, 42, NetworkTestnet.SS58Format())
}
