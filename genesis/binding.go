package genesis

import (
	"fmt"
	"strings"

	"github.com/oasisprotocol/oasis-core/go/common/crypto/signature"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/keys"
)

// SessionKeys are the non-stash identities of a validator.
type SessionKeys struct {
	Grandpa            signature.PublicKey `json:"grandpa"`
	Babe               signature.PublicKey `json:"babe"`
	ImOnline           signature.PublicKey `json:"imOnline"`
	AuthorityDiscovery signature.PublicKey `json:"authorityDiscovery"`
}

// SessionEntry is the session subsystem's view of a validator.
type SessionEntry struct {
	Account   common.AccountID `json:"account"`
	Validator common.AccountID `json:"validator"`
	Keys      SessionKeys      `json:"keys"`
}

// ValidatorBinding binds a validator's stash account to its session keys.
type ValidatorBinding struct {
	Stash    common.AccountID
	Referral string
	Keys     SessionKeys
}

// Bindings is the ordered list of initial validators. Every subsystem view
// of the validator set is a projection of it.
type Bindings []ValidatorBinding

// NewBindings builds one binding per authority, in input order.
func NewBindings(authorities []*keys.AuthorityIdentity) (Bindings, error) {
	bindings := make(Bindings, 0, len(authorities))
	seen := make(map[common.AccountID]int, len(authorities))
	for i, a := range authorities {
		if a == nil {
			return nil, fmt.Errorf("%w: authority %d is nil", ErrIncompleteAuthority, i)
		}
		if missing := a.Missing(); len(missing) > 0 {
			names := make([]string, 0, len(missing))
			for _, role := range missing {
				names = append(names, string(role))
			}
			return nil, fmt.Errorf("%w: authority %d (%s) lacks %s", ErrIncompleteAuthority, i, a.Referral, strings.Join(names, ", "))
		}
		if prev, dup := seen[a.Stash]; dup {
			return nil, fmt.Errorf("%w: authorities %d and %d share stash %s", ErrDuplicateValidator, prev, i, common.AccountAddress(a.Stash))
		}
		seen[a.Stash] = i
		bindings = append(bindings, ValidatorBinding{
			Stash:    a.Stash,
			Referral: a.Referral,
			Keys: SessionKeys{
				Grandpa:            a.Finality,
				Babe:               a.BlockProduction,
				ImOnline:           a.Liveness,
				AuthorityDiscovery: a.Discovery,
			},
		})
	}
	return bindings, nil
}

// SessionKeys projects the session subsystem's key list.
func (b Bindings) SessionKeys() []SessionEntry {
	entries := make([]SessionEntry, 0, len(b))
	for _, v := range b {
		entries = append(entries, SessionEntry{Account: v.Stash, Validator: v.Stash, Keys: v.Keys})
	}
	return entries
}

// DiscoveryKeys projects the authority discovery key list.
func (b Bindings) DiscoveryKeys() []signature.PublicKey {
	discovery := make([]signature.PublicKey, 0, len(b))
	for _, v := range b {
		discovery = append(discovery, v.Keys.AuthorityDiscovery)
	}
	return discovery
}

// InitialAuthorities projects the staking candidacy list.
func (b Bindings) InitialAuthorities() []string {
	referrals := make([]string, 0, len(b))
	for _, v := range b {
		referrals = append(referrals, v.Referral)
	}
	return referrals
}

// Stashes returns the validator stash accounts.
func (b Bindings) Stashes() []common.AccountID {
	stashes := make([]common.AccountID, 0, len(b))
	for _, v := range b {
		stashes = append(stashes, v.Stash)
	}
	return stashes
}
