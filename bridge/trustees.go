package bridge

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zihgir1/BEVM/common"
)

var (
	// ErrNoTrusteesForChain is returned when no candidate set matches the
	// chain of the bridge being initialized.
	ErrNoTrusteesForChain = errors.New("no trustees for chain")
	// ErrTrusteeCount is returned when the committee size is outside the
	// configured bounds.
	ErrTrusteeCount = errors.New("trustee count out of bounds")
	// ErrInvalidTrusteeKey is returned when a trustee key does not parse or
	// is reused.
	ErrInvalidTrusteeKey = errors.New("invalid trustee key")
)

// TrusteeInfoConfig bounds the size of a trustee committee.
type TrusteeInfoConfig struct {
	MinTrusteeCount uint32 `json:"minTrusteeCount"`
	MaxTrusteeCount uint32 `json:"maxTrusteeCount"`
}

// Candidate is one trustee candidate and its key material on the external
// chain.
type Candidate struct {
	Account common.AccountID `json:"account"`
	About   string           `json:"about"`
	HotKey  hexutil.Bytes    `json:"hotKey"`
	ColdKey hexutil.Bytes    `json:"coldKey"`
}

// CandidateSet is the trustee configuration of one external chain.
type CandidateSet struct {
	Chain      common.Chain      `json:"chain"`
	Config     TrusteeInfoConfig `json:"config"`
	Candidates []Candidate       `json:"candidates"`
}

// TrusteeSet is the genesis trustee committee of one bridge.
type TrusteeSet struct {
	Chain  common.Chain
	Config TrusteeInfoConfig
	// Trustees keeps candidate order with keys in compressed form.
	Trustees []Candidate
	// Anchor is the external chain block the bridge starts from.
	Anchor *Anchor
	// Sets keeps every input set for the common gateway configuration.
	Sets []CandidateSet
}

// GenesisTrustees returns the ordered trustee accounts.
func (t *TrusteeSet) GenesisTrustees() []common.AccountID {
	accounts := make([]common.AccountID, 0, len(t.Trustees))
	for _, c := range t.Trustees {
		accounts = append(accounts, c.Account)
	}
	return accounts
}

func compressKey(raw []byte) ([]byte, error) {
	pk, err := btcec.ParsePubKey(raw)
	if err != nil {
		return nil, err
	}
	return pk.SerializeCompressed(), nil
}

// Assemble selects the first candidate set of the anchor's chain and
// validates it as the genesis committee. The anchor is taken as verified.
func Assemble(sets []CandidateSet, anchor *Anchor) (*TrusteeSet, error) {
	var selected *CandidateSet
	for i := range sets {
		if sets[i].Chain == anchor.Chain {
			selected = &sets[i]
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTrusteesForChain, anchor.Chain)
	}

	cfg := selected.Config
	n := uint32(len(selected.Candidates))
	if cfg.MinTrusteeCount > cfg.MaxTrusteeCount || n < cfg.MinTrusteeCount || n > cfg.MaxTrusteeCount {
		return nil, fmt.Errorf("%w: %s has %d trustees, want [%d, %d]", ErrTrusteeCount, anchor.Chain, n, cfg.MinTrusteeCount, cfg.MaxTrusteeCount)
	}

	set := TrusteeSet{
		Chain:    selected.Chain,
		Config:   cfg,
		Trustees: make([]Candidate, 0, n),
		Anchor:   anchor,
		Sets:     make([]CandidateSet, 0, len(sets)),
	}
	seenAccounts := make(map[common.AccountID]struct{}, n)
	var seenKeys [][]byte
	for _, c := range selected.Candidates {
		if _, dup := seenAccounts[c.Account]; dup {
			return nil, fmt.Errorf("%w: account %s listed twice", ErrInvalidTrusteeKey, common.AccountAddress(c.Account))
		}
		seenAccounts[c.Account] = struct{}{}

		hot, err := compressKey(c.HotKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s hot key: %v", ErrInvalidTrusteeKey, c.About, err)
		}
		cold, err := compressKey(c.ColdKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s cold key: %v", ErrInvalidTrusteeKey, c.About, err)
		}
		for _, key := range [][]byte{hot, cold} {
			for _, seen := range seenKeys {
				if bytes.Equal(seen, key) {
					return nil, fmt.Errorf("%w: %s reuses key %x", ErrInvalidTrusteeKey, c.About, key)
				}
			}
			seenKeys = append(seenKeys, key)
		}
		set.Trustees = append(set.Trustees, Candidate{Account: c.Account, About: c.About, HotKey: hot, ColdKey: cold})
	}
	for _, s := range sets {
		s.Candidates = append([]Candidate{}, s.Candidates...)
		set.Sets = append(set.Sets, s)
	}
	return &set, nil
}
