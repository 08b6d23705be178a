// Package bridge binds an external chain's genesis anchor and trustee
// committee into the bridge configuration.
package bridge

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/zihgir1/BEVM/common"
)

var (
	// ErrInvalidAnchor is returned when an anchor fails verification.
	ErrInvalidAnchor = errors.New("invalid external chain anchor")
	// ErrInvalidParams is returned when difficulty parameters are inconsistent.
	ErrInvalidParams = errors.New("invalid difficulty parameters")
)

// Anchor is the external chain block the bridge starts from.
type Anchor struct {
	Chain common.Chain
	// Network is the external network tag, e.g. "Mainnet".
	Network            string
	Height             uint32
	ConfirmationNumber uint32
	Header             wire.BlockHeader
	// Hash is the declared hash of Header.
	Hash chainhash.Hash
}

// HeaderInfo is the display form of a block header.
type HeaderInfo struct {
	Version       int32  `json:"version"`
	PrevBlockHash string `json:"previousHeaderHash"`
	MerkleRoot    string `json:"merkleRoot"`
	Time          uint32 `json:"time"`
	Bits          uint32 `json:"bits"`
	Nonce         uint32 `json:"nonce"`
}

// BlockHash computes the hash of the anchor header.
func (a *Anchor) BlockHash() chainhash.Hash {
	return a.Header.BlockHash()
}

// HeaderInfo returns the header fields with hashes in display byte order.
func (a *Anchor) HeaderInfo() HeaderInfo {
	return HeaderInfo{
		Version:       a.Header.Version,
		PrevBlockHash: a.Header.PrevBlock.String(),
		MerkleRoot:    a.Header.MerkleRoot.String(),
		Time:          uint32(a.Header.Timestamp.Unix()),
		Bits:          a.Header.Bits,
		Nonce:         a.Header.Nonce,
	}
}

func (a *Anchor) String() string {
	return fmt.Sprintf("%s %s #%d (%s)", a.Chain, a.Network, a.Height, a.Hash)
}
