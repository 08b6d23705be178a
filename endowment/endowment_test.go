package endowment

import (
	"testing"

	"github.com/oasisprotocol/oasis-core/go/common/quantity"
	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/keys"
)

func accounts(t *testing.T, seeds ...string) []common.AccountID {
	t.Helper()
	out := make([]common.AccountID, 0, len(seeds))
	for _, s := range seeds {
		a, err := keys.DeriveAccount(s)
		require.NoError(t, err)
		out = append(out, a)
	}
	return out
}

func TestAllocateNativeConservation(t *testing.T) {
	amount := common.Dollars(1_000)
	stake := common.Dollars(100)
	for k := 0; k <= 7; k++ {
		seeds := []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Ferdie", "Alice//stash"}[:k]
		native, err := AllocateNative(accounts(t, seeds...), amount, stake)
		require.NoError(t, err)
		require.Len(t, native.Balances, k)

		expected := quantity.NewFromUint64(uint64(k))
		require.NoError(t, expected.Mul(amount))
		require.Zero(t, native.TotalEndowed.Cmp(expected), "k=%d", k)

		total, err := Total(native.Balances)
		require.NoError(t, err)
		require.Zero(t, total.Cmp(&native.TotalEndowed))

		require.Len(t, native.TechnicalMembers, (k+1)/2)
		require.Len(t, native.ElectionMembers, (k+1)/2)
	}
}

func TestAllocateNativeOrder(t *testing.T) {
	accs := accounts(t, "Charlie", "Alice", "Bob")
	native, err := AllocateNative(accs, common.Dollars(5), common.Dollars(1))
	require.NoError(t, err)
	require.Equal(t, accs, Accounts(native.Balances))
	require.Equal(t, accs[:2], native.TechnicalMembers)
	require.Equal(t, accs[0], native.ElectionMembers[0].Account)
	require.Zero(t, native.ElectionMembers[1].Stake.Cmp(common.Dollars(1)))
}

func TestAllocateNativeOwnsAmounts(t *testing.T) {
	amount := common.Dollars(5)
	native, err := AllocateNative(accounts(t, "Alice", "Bob"), amount, common.Dollars(1))
	require.NoError(t, err)
	require.NoError(t, native.Balances[0].Amount.Add(common.Dollars(1)))
	require.Zero(t, native.Balances[1].Amount.Cmp(common.Dollars(5)))
	require.Zero(t, amount.Cmp(common.Dollars(5)))
}

func TestAllocateNativeDuplicate(t *testing.T) {
	_, err := AllocateNative(accounts(t, "Alice", "Bob", "Alice"), common.Dollars(1), common.Dollars(1))
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestAllocateNativeEmpty(t *testing.T) {
	native, err := AllocateNative(nil, common.Dollars(1), common.Dollars(1))
	require.NoError(t, err)
	require.Empty(t, native.Balances)
	require.True(t, native.TotalEndowed.IsZero())
	require.Empty(t, native.TechnicalMembers)
}

func TestAllocateAssetsAndSplit(t *testing.T) {
	accs := accounts(t, "Alice", "Bob")
	endowed := map[common.AssetID][]Balance{
		common.NativeAssetID: {{Account: accs[0], Amount: *common.Dollars(3)}},
		common.XBTCAssetID:   {{Account: accs[0], Amount: *quantity.NewFromUint64(10)}, {Account: accs[1], Amount: *quantity.NewFromUint64(20)}},
	}
	allocated, err := AllocateAssets(endowed)
	require.NoError(t, err)
	require.Contains(t, allocated, common.NativeAssetID)

	native, rest := Split(allocated)
	require.Len(t, native, 1)
	require.NotContains(t, rest, common.NativeAssetID)
	require.Len(t, rest[common.XBTCAssetID], 2)
	require.Contains(t, allocated, common.NativeAssetID)

	endowed[common.XBTCAssetID] = append(endowed[common.XBTCAssetID], Balance{Account: accs[1], Amount: *quantity.NewFromUint64(1)})
	_, err = AllocateAssets(endowed)
	require.ErrorIs(t, err, ErrDuplicateAccount)
}
