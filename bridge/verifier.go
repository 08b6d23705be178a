package bridge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/btcsuite/btcd/blockchain"

	"github.com/zihgir1/BEVM/cache/kvstore"
	"github.com/zihgir1/BEVM/params"
)

// Summary is what anchor verification reports about an anchor.
type Summary struct {
	Network            string
	Height             uint32
	Hash               string
	Bits               uint32
	Target             string
	RetargetInterval   uint32
	ConfirmationNumber uint32
}

// Verifier verifies and summarizes a genesis anchor before the bridge is
// configured with it.
type Verifier interface {
	Verify(ctx context.Context, anchor *Anchor, difficulty params.Difficulty) (*Summary, error)
}

// PowVerifier checks an anchor against the external chain's proof-of-work
// rules.
type PowVerifier struct{}

var _ Verifier = PowVerifier{}

// Verify implements Verifier.
func (PowVerifier) Verify(ctx context.Context, anchor *Anchor, difficulty params.Difficulty) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := difficulty.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	hash := anchor.BlockHash()
	if hash != anchor.Hash {
		return nil, fmt.Errorf("%w: declared hash %s, header hashes to %s", ErrInvalidAnchor, anchor.Hash, hash)
	}

	target := blockchain.CompactToBig(anchor.Header.Bits)
	maxTarget := blockchain.CompactToBig(difficulty.MaxBits)
	if target.Sign() <= 0 || target.Cmp(maxTarget) > 0 {
		return nil, fmt.Errorf("%w: bits %08x outside (0, %08x]", ErrInvalidAnchor, anchor.Header.Bits, difficulty.MaxBits)
	}
	if blockchain.HashToBig(&hash).Cmp(target) > 0 {
		return nil, fmt.Errorf("%w: hash %s above target %064x", ErrInvalidAnchor, hash, target)
	}

	interval := difficulty.RetargetInterval()
	if anchor.Height%interval != 0 {
		return nil, fmt.Errorf("%w: height %d is not a retarget boundary (every %d blocks)", ErrInvalidAnchor, anchor.Height, interval)
	}
	if anchor.ConfirmationNumber == 0 {
		return nil, fmt.Errorf("%w: zero confirmation number", ErrInvalidAnchor)
	}

	return &Summary{
		Network:            anchor.Network,
		Height:             anchor.Height,
		Hash:               hash.String(),
		Bits:               anchor.Header.Bits,
		Target:             fmt.Sprintf("%064x", target),
		RetargetInterval:   interval,
		ConfirmationNumber: anchor.ConfirmationNumber,
	}, nil
}

// CachingVerifier memoizes successful verifications of an inner verifier.
type CachingVerifier struct {
	Inner Verifier
	Cache kvstore.KVStore
}

var _ Verifier = (*CachingVerifier)(nil)

// Verify implements Verifier.
func (v *CachingVerifier) Verify(ctx context.Context, anchor *Anchor, difficulty params.Difficulty) (*Summary, error) {
	var header bytes.Buffer
	if err := anchor.Header.Serialize(&header); err != nil {
		return nil, fmt.Errorf("%w: serializing header: %v", ErrInvalidAnchor, err)
	}
	key := kvstore.GenerateCacheKey("bridge.Verify",
		anchor.Hash[:],
		header.Bytes(),
		anchor.Network,
		anchor.Height,
		anchor.ConfirmationNumber,
		difficulty,
	)
	return kvstore.GetFromCacheOrCall(v.Cache, key, func() (*Summary, error) {
		return v.Inner.Verify(ctx, anchor, difficulty)
	})
}
