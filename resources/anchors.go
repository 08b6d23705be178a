package resources

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/zihgir1/BEVM/bridge"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/params"
)

type headerFile struct {
	Version      int32  `koanf:"version"`
	PreviousHash string `koanf:"previous_header_hash"`
	MerkleRoot   string `koanf:"merkle_root"`
	Time         int64  `koanf:"time"`
	Bits         uint32 `koanf:"bits"`
	Nonce        uint32 `koanf:"nonce"`
}

type anchorFile struct {
	Chain              common.Chain `koanf:"chain"`
	Network            string       `koanf:"network"`
	Height             uint32       `koanf:"height"`
	ConfirmationNumber uint32       `koanf:"confirmation_number"`
	Hash               string       `koanf:"hash"`
	Header             headerFile   `koanf:"header"`
}

// Anchor returns the external chain anchor of a family. Hashes are given in
// display byte order.
func Anchor(family params.AnchorFamily) (*bridge.Anchor, error) {
	name := fmt.Sprintf("anchors/%s.json", family)
	f, err := file[anchorFile](name).get()
	if err != nil {
		return nil, err
	}

	prev, err := chainhash.NewHashFromStr(f.Header.PreviousHash)
	if err != nil {
		return nil, fmt.Errorf("resource %s: previous header hash: %w", name, err)
	}
	merkle, err := chainhash.NewHashFromStr(f.Header.MerkleRoot)
	if err != nil {
		return nil, fmt.Errorf("resource %s: merkle root: %w", name, err)
	}
	hash, err := chainhash.NewHashFromStr(f.Hash)
	if err != nil {
		return nil, fmt.Errorf("resource %s: hash: %w", name, err)
	}
	if !f.Chain.Valid() {
		return nil, fmt.Errorf("resource %s: unknown chain '%s'", name, f.Chain)
	}

	return &bridge.Anchor{
		Chain:              f.Chain,
		Network:            f.Network,
		Height:             f.Height,
		ConfirmationNumber: f.ConfirmationNumber,
		Header: wire.BlockHeader{
			Version:    f.Header.Version,
			PrevBlock:  *prev,
			MerkleRoot: *merkle,
			Timestamp:  time.Unix(f.Header.Time, 0),
			Bits:       f.Header.Bits,
			Nonce:      f.Header.Nonce,
		},
		Hash: *hash,
	}, nil
}
