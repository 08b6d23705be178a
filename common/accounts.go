package common

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oasisprotocol/oasis-core/go/common/crypto/signature"
	staking "github.com/oasisprotocol/oasis-core/go/staking/api"
)

// AccountID identifies an account on the ledger. Accounts are the raw
// 32-byte public key of their owner.
type AccountID = signature.PublicKey

// ParseAccountHex parses a hex encoded 32-byte public key, with or without
// a 0x prefix.
func ParseAccountHex(s string) (AccountID, error) {
	var id AccountID
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, fmt.Errorf("account '%s': %w", s, err)
	}
	if err = id.UnmarshalBinary(raw); err != nil {
		return id, fmt.Errorf("account '%s': %w", s, err)
	}
	return id, nil
}

// AccountAddress returns the bech32 display address of an account.
func AccountAddress(id AccountID) string {
	return staking.NewAddress(id).String()
}
