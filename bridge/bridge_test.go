package bridge

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/zihgir1/BEVM/cache/kvstore"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/keys"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/params"
)

func mainAnchor() *Anchor {
	return &Anchor{
		Chain:              common.ChainBitcoin,
		Network:            "Mainnet",
		Height:             0,
		ConfirmationNumber: 6,
		Header:             chaincfg.MainNetParams.GenesisBlock.Header,
		Hash:               *chaincfg.MainNetParams.GenesisHash,
	}
}

func testAnchor() *Anchor {
	return &Anchor{
		Chain:              common.ChainBitcoin,
		Network:            "Testnet",
		Height:             0,
		ConfirmationNumber: 4,
		Header:             chaincfg.TestNet3Params.GenesisBlock.Header,
		Hash:               *chaincfg.TestNet3Params.GenesisHash,
	}
}

func pubKey(seed string) []byte {
	secret := sha256.Sum256([]byte(seed))
	_, pk := btcec.PrivKeyFromBytes(secret[:])
	return pk.SerializeCompressed()
}

func candidate(t *testing.T, seed string) Candidate {
	t.Helper()
	account, err := keys.DeriveAccount(seed)
	require.NoError(t, err)
	return Candidate{
		Account: account,
		About:   seed,
		HotKey:  pubKey(seed + "//hot"),
		ColdKey: pubKey(seed + "//cold"),
	}
}

func TestPowVerifier(t *testing.T) {
	ctx := context.Background()

	summary, err := PowVerifier{}.Verify(ctx, mainAnchor(), params.For(common.ProfileMain).Difficulty)
	require.NoError(t, err)
	require.Equal(t, chaincfg.MainNetParams.GenesisHash.String(), summary.Hash)
	require.Equal(t, uint32(2016), summary.RetargetInterval)
	require.Equal(t, uint32(6), summary.ConfirmationNumber)

	_, err = PowVerifier{}.Verify(ctx, testAnchor(), params.For(common.ProfilePublicTest).Difficulty)
	require.NoError(t, err)
}

func TestPowVerifierRejects(t *testing.T) {
	ctx := context.Background()
	difficulty := params.For(common.ProfileMain).Difficulty

	wrongHash := mainAnchor()
	wrongHash.Hash = *chaincfg.TestNet3Params.GenesisHash
	_, err := PowVerifier{}.Verify(ctx, wrongHash, difficulty)
	require.ErrorIs(t, err, ErrInvalidAnchor)

	tampered := mainAnchor()
	tampered.Header.Nonce++
	tampered.Hash = tampered.Header.BlockHash()
	_, err = PowVerifier{}.Verify(ctx, tampered, difficulty)
	require.ErrorIs(t, err, ErrInvalidAnchor)

	offBoundary := mainAnchor()
	offBoundary.Height = 2017
	_, err = PowVerifier{}.Verify(ctx, offBoundary, difficulty)
	require.ErrorIs(t, err, ErrInvalidAnchor)

	unconfirmed := mainAnchor()
	unconfirmed.ConfirmationNumber = 0
	_, err = PowVerifier{}.Verify(ctx, unconfirmed, difficulty)
	require.ErrorIs(t, err, ErrInvalidAnchor)

	tooEasy := difficulty
	tooEasy.MaxBits = 0x1c00ffff
	_, err = PowVerifier{}.Verify(ctx, mainAnchor(), tooEasy)
	require.ErrorIs(t, err, ErrInvalidAnchor)

	uneven := difficulty
	uneven.TargetSpacingSeconds = 601
	_, err = PowVerifier{}.Verify(ctx, mainAnchor(), uneven)
	require.ErrorIs(t, err, ErrInvalidParams)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = PowVerifier{}.Verify(canceled, mainAnchor(), difficulty)
	require.ErrorIs(t, err, context.Canceled)
}

type countingVerifier struct {
	calls int
}

func (v *countingVerifier) Verify(ctx context.Context, anchor *Anchor, difficulty params.Difficulty) (*Summary, error) {
	v.calls++
	return PowVerifier{}.Verify(ctx, anchor, difficulty)
}

func TestCachingVerifier(t *testing.T) {
	store, err := kvstore.OpenKVStore(log.NewDefaultLogger("bridge-test"), filepath.Join(t.TempDir(), "anchors"), nil)
	require.NoError(t, err)
	defer store.Close()

	inner := &countingVerifier{}
	v := &CachingVerifier{Inner: inner, Cache: store}
	difficulty := params.For(common.ProfileMain).Difficulty

	first, err := v.Verify(context.Background(), mainAnchor(), difficulty)
	require.NoError(t, err)
	second, err := v.Verify(context.Background(), mainAnchor(), difficulty)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)

	_, err = v.Verify(context.Background(), testAnchor(), params.For(common.ProfilePublicTest).Difficulty)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestCachingVerifierChecksHeader(t *testing.T) {
	store, err := kvstore.OpenKVStore(log.NewDefaultLogger("bridge-test"), filepath.Join(t.TempDir(), "anchors"), nil)
	require.NoError(t, err)
	defer store.Close()

	inner := &countingVerifier{}
	v := &CachingVerifier{Inner: inner, Cache: store}
	difficulty := params.For(common.ProfileMain).Difficulty

	_, err = v.Verify(context.Background(), mainAnchor(), difficulty)
	require.NoError(t, err)

	// Same declared hash, different header.
	forged := mainAnchor()
	forged.Header.Nonce++
	forged.Header.MerkleRoot[0] ^= 0xff
	_, err = v.Verify(context.Background(), forged, difficulty)
	require.ErrorIs(t, err, ErrInvalidAnchor)
	require.Equal(t, 2, inner.calls)

	_, err = v.Verify(context.Background(), mainAnchor(), difficulty)
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestHeaderInfo(t *testing.T) {
	info := mainAnchor().HeaderInfo()
	require.Equal(t, int32(1), info.Version)
	require.Equal(t, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b", info.MerkleRoot)
	require.Equal(t, uint32(1231006505), info.Time)
	require.Equal(t, uint32(486604799), info.Bits)
	require.Equal(t, uint32(2083236893), info.Nonce)
	require.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", info.PrevBlockHash)
}

func TestAssembleSelectsChain(t *testing.T) {
	bitcoin := CandidateSet{
		Chain:      common.ChainBitcoin,
		Config:     TrusteeInfoConfig{MinTrusteeCount: 3, MaxTrusteeCount: 15},
		Candidates: []Candidate{candidate(t, "Alice"), candidate(t, "Bob"), candidate(t, "Charlie")},
	}
	ethereum := CandidateSet{
		Chain:      common.ChainEthereum,
		Config:     TrusteeInfoConfig{MinTrusteeCount: 1, MaxTrusteeCount: 5},
		Candidates: []Candidate{candidate(t, "Dave")},
	}

	for _, sets := range [][]CandidateSet{{bitcoin, ethereum}, {ethereum, bitcoin}} {
		set, err := Assemble(sets, testAnchor())
		require.NoError(t, err)
		require.Equal(t, common.ChainBitcoin, set.Chain)
		require.Equal(t, bitcoin.Config, set.Config)
		require.Equal(t, []common.AccountID{
			bitcoin.Candidates[0].Account,
			bitcoin.Candidates[1].Account,
			bitcoin.Candidates[2].Account,
		}, set.GenesisTrustees())
		for i, c := range set.Trustees {
			require.Equal(t, bitcoin.Candidates[i].HotKey, c.HotKey)
			require.Equal(t, bitcoin.Candidates[i].ColdKey, c.ColdKey)
		}
		require.Len(t, set.Sets, 2)
	}

	_, err := Assemble([]CandidateSet{ethereum}, testAnchor())
	require.ErrorIs(t, err, ErrNoTrusteesForChain)

	_, err = Assemble(nil, testAnchor())
	require.ErrorIs(t, err, ErrNoTrusteesForChain)
}

func TestAssembleValidation(t *testing.T) {
	valid := func() CandidateSet {
		return CandidateSet{
			Chain:      common.ChainBitcoin,
			Config:     TrusteeInfoConfig{MinTrusteeCount: 3, MaxTrusteeCount: 15},
			Candidates: []Candidate{candidate(t, "Alice"), candidate(t, "Bob"), candidate(t, "Charlie")},
		}
	}

	tooFew := valid()
	tooFew.Candidates = tooFew.Candidates[:2]
	_, err := Assemble([]CandidateSet{tooFew}, testAnchor())
	require.ErrorIs(t, err, ErrTrusteeCount)

	badKey := valid()
	badKey.Candidates[1].HotKey = []byte{0x02, 0x01}
	_, err = Assemble([]CandidateSet{badKey}, testAnchor())
	require.ErrorIs(t, err, ErrInvalidTrusteeKey)

	reused := valid()
	reused.Candidates[2].ColdKey = reused.Candidates[0].HotKey
	_, err = Assemble([]CandidateSet{reused}, testAnchor())
	require.ErrorIs(t, err, ErrInvalidTrusteeKey)

	dupAccount := valid()
	dupAccount.Candidates[2].Account = dupAccount.Candidates[0].Account
	_, err = Assemble([]CandidateSet{dupAccount}, testAnchor())
	require.ErrorIs(t, err, ErrInvalidTrusteeKey)
}

func TestAssembleCompressesKeys(t *testing.T) {
	secret := sha256.Sum256([]byte("Alice//hot"))
	_, pk := btcec.PrivKeyFromBytes(secret[:])

	c := candidate(t, "Alice")
	c.HotKey = pk.SerializeUncompressed()
	set, err := Assemble([]CandidateSet{{
		Chain:      common.ChainBitcoin,
		Config:     TrusteeInfoConfig{MinTrusteeCount: 1, MaxTrusteeCount: 1},
		Candidates: []Candidate{c},
	}}, testAnchor())
	require.NoError(t, err)
	require.Equal(t, pk.SerializeCompressed(), []byte(set.Trustees[0].HotKey))
}
