// Package endowment allocates the initial balances of the genesis state.
package endowment

import (
	"errors"
	"fmt"

	"github.com/oasisprotocol/oasis-core/go/common/quantity"

	"github.com/zihgir1/BEVM/common"
)

// ErrDuplicateAccount is returned when an account is endowed twice with the
// same asset.
var ErrDuplicateAccount = errors.New("duplicate endowed account")

// Balance is the initial balance of one account.
type Balance struct {
	Account common.AccountID  `json:"account"`
	Amount  quantity.Quantity `json:"amount"`
}

// Member is an initially elected member with its bonded stake.
type Member struct {
	Account common.AccountID  `json:"account"`
	Stake   quantity.Quantity `json:"stake"`
}

// Native is the native currency allocation and the allocations derived
// from the same account list.
type Native struct {
	// Balances keeps the order of the input accounts.
	Balances []Balance
	// TotalEndowed is the sum of Balances.
	TotalEndowed quantity.Quantity
	// TechnicalMembers are the first half (rounded up) of the accounts.
	TechnicalMembers []common.AccountID
	// ElectionMembers are the first half (rounded up) of the accounts, each
	// bonding the reserved stake.
	ElectionMembers []Member
}

// Assets maps non-native asset ids to their initial balances.
type Assets map[common.AssetID][]Balance

// AllocateNative gives every account exactly amount and derives the
// governance seats from the same ordered account list.
func AllocateNative(accounts []common.AccountID, amount, reservedStake *quantity.Quantity) (*Native, error) {
	if amount == nil || reservedStake == nil {
		return nil, fmt.Errorf("endowment: nil amount")
	}
	native := Native{
		Balances:     make([]Balance, 0, len(accounts)),
		TotalEndowed: *quantity.NewQuantity(),
	}
	seen := make(map[common.AccountID]struct{}, len(accounts))
	for _, account := range accounts {
		if _, dup := seen[account]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, common.AccountAddress(account))
		}
		seen[account] = struct{}{}
		native.Balances = append(native.Balances, Balance{Account: account, Amount: *amount.Clone()})
		if err := native.TotalEndowed.Add(amount); err != nil {
			return nil, fmt.Errorf("endowment: total: %w", err)
		}
	}

	expected := quantity.NewFromUint64(uint64(len(accounts)))
	if err := expected.Mul(amount); err != nil {
		return nil, fmt.Errorf("endowment: expected total: %w", err)
	}
	if native.TotalEndowed.Cmp(expected) != 0 {
		return nil, fmt.Errorf("endowment: total %s does not equal %d * %s", native.TotalEndowed.String(), len(accounts), amount.String())
	}

	seats := (len(accounts) + 1) / 2
	for _, account := range accounts[:seats] {
		native.TechnicalMembers = append(native.TechnicalMembers, account)
		native.ElectionMembers = append(native.ElectionMembers, Member{Account: account, Stake: *reservedStake.Clone()})
	}
	return &native, nil
}

// AllocateAssets copies the explicit non-native endowments. The native id
// is kept if present; Split separates it.
func AllocateAssets(endowed map[common.AssetID][]Balance) (Assets, error) {
	out := make(Assets, len(endowed))
	for id, balances := range endowed {
		seen := make(map[common.AccountID]struct{}, len(balances))
		copied := make([]Balance, 0, len(balances))
		for _, b := range balances {
			if _, dup := seen[b.Account]; dup {
				return nil, fmt.Errorf("%w: asset %d: %s", ErrDuplicateAccount, id, common.AccountAddress(b.Account))
			}
			seen[b.Account] = struct{}{}
			copied = append(copied, Balance{Account: b.Account, Amount: *b.Amount.Clone()})
		}
		out[id] = copied
	}
	return out, nil
}

// Split separates the native currency entry from the non-native ones.
// The input is not modified.
func Split(endowed map[common.AssetID][]Balance) ([]Balance, Assets) {
	rest := make(Assets, len(endowed))
	var native []Balance
	for id, balances := range endowed {
		if id == common.NativeAssetID {
			native = balances
			continue
		}
		rest[id] = balances
	}
	return native, rest
}

// Total sums a list of balances.
func Total(balances []Balance) (*quantity.Quantity, error) {
	total := quantity.NewQuantity()
	for i := range balances {
		if err := total.Add(&balances[i].Amount); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// Accounts returns the accounts of a list of balances, in order.
func Accounts(balances []Balance) []common.AccountID {
	accounts := make([]common.AccountID, 0, len(balances))
	for _, b := range balances {
		accounts = append(accounts, b.Account)
	}
	return accounts
}
