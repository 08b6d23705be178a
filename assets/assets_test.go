package assets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/common"
)

func xbtc() Definition {
	return Definition{
		Info: Info{
			ID:        common.XBTCAssetID,
			Token:     "XBTC",
			TokenName: "ChainX Bitcoin",
			Chain:     common.ChainBitcoin,
			Decimals:  8,
			Desc:      "ChainX's cross-chain Bitcoin",
		},
		Restrictions: RestrictDestroyUsable,
		Enabled:      true,
		Registered:   true,
	}
}

func other(id common.AssetID, token string) Definition {
	return Definition{
		Info:       Info{ID: id, Token: token, TokenName: token, Chain: common.ChainEthereum, Decimals: 18},
		Enabled:    true,
		Registered: true,
	}
}

func TestInit(t *testing.T) {
	reg, err := Init([]Definition{other(7, "SEVEN"), xbtc(), other(3, "THREE")}, nil)
	require.NoError(t, err)
	require.Equal(t, []common.AssetID{7, common.XBTCAssetID, 3}, reg.IDs())
	require.Equal(t, RestrictDestroyUsable, reg.Restrictions[common.XBTCAssetID])
	require.True(t, reg.Has(3))
	require.False(t, reg.Has(common.NativeAssetID))

	list := reg.RestrictionList()
	require.Len(t, list, 3)
	require.Equal(t, common.XBTCAssetID, list[0].ID)
	require.Equal(t, common.AssetID(7), list[2].ID)
}

func TestInitDuplicateID(t *testing.T) {
	_, err := Init([]Definition{xbtc(), other(common.XBTCAssetID, "FAKE")}, nil)
	require.ErrorIs(t, err, ErrDuplicateAssetID)
}

func TestInitUnknownReference(t *testing.T) {
	_, err := Init([]Definition{xbtc()}, []Restriction{{ID: 9, Restrictions: RestrictMove}})
	require.ErrorIs(t, err, ErrUnknownAssetReference)

	reg, err := Init([]Definition{xbtc()}, []Restriction{{ID: common.XBTCAssetID, Restrictions: RestrictMove | RestrictWithdraw}})
	require.NoError(t, err)
	require.False(t, reg.Restrictions[common.XBTCAssetID].CanWithdraw())
	require.True(t, reg.Restrictions[common.XBTCAssetID].CanDeposit())
}

func TestInitRejectsNative(t *testing.T) {
	_, err := Init([]Definition{other(common.NativeAssetID, "PCX")}, nil)
	require.ErrorIs(t, err, ErrNativeAssetRegistered)
}

func TestCheck(t *testing.T) {
	reg, err := Init([]Definition{xbtc()}, nil)
	require.NoError(t, err)
	require.NoError(t, reg.Check("mining power", common.XBTCAssetID))
	require.ErrorIs(t, reg.Check("trading pair", common.XBTCAssetID, 5), ErrUnknownAssetReference)
}

func TestRestrictionsJSON(t *testing.T) {
	r := RestrictDeposit | RestrictDestroyUsable
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `["Deposit","DestroyUsable"]`, string(raw))

	var decoded Restrictions
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, r, decoded)

	raw, err = json.Marshal(Restrictions(0))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(raw))

	require.Error(t, json.Unmarshal([]byte(`["Teleport"]`), &decoded))
}

func TestClone(t *testing.T) {
	reg, err := Init([]Definition{xbtc()}, nil)
	require.NoError(t, err)
	clone := reg.Clone()
	clone.Restrictions[common.XBTCAssetID] = RestrictMove
	clone.Assets[0].Enabled = false
	require.Equal(t, RestrictDestroyUsable, reg.Restrictions[common.XBTCAssetID])
	require.True(t, reg.Assets[0].Enabled)
}
