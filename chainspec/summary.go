package chainspec

import (
	"github.com/oasisprotocol/oasis-core/go/common/crypto/hash"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/endowment"
)

// Summary is the human-readable digest of a chain spec.
type Summary struct {
	Profile     common.Profile `json:"profile"`
	Name        string         `json:"name"`
	ID          string         `json:"id"`
	Frozen      bool           `json:"frozen"`
	GenesisHash string         `json:"genesis_hash"`
	// SpecHash is the hash of the canonical envelope encoding.
	SpecHash        string `json:"spec_hash"`
	Size            int    `json:"size"`
	Validators      int    `json:"validators"`
	EndowedAccounts int    `json:"endowed_accounts"`
	// TotalEndowed is in whole native currency units.
	TotalEndowed string `json:"total_endowed"`
	Trustees     int    `json:"trustees"`
	AnchorHash   string `json:"anchor_hash"`
}

// Summarize digests a chain spec.
func Summarize(profile common.Profile, env *Envelope) (*Summary, error) {
	doc, err := env.Genesis.Document()
	if err != nil {
		return nil, err
	}
	genesisHash, err := doc.Hash()
	if err != nil {
		return nil, err
	}
	encoded, err := Encode(env)
	if err != nil {
		return nil, err
	}
	total, err := endowment.Total(doc.Balances.Balances)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Profile:         profile,
		Name:            env.Name,
		ID:              env.ID,
		Frozen:          env.Genesis.IsFrozen(),
		GenesisHash:     genesisHash.String(),
		SpecHash:        hash.NewFromBytes(encoded).String(),
		Size:            len(encoded),
		Validators:      doc.Validators(),
		EndowedAccounts: len(doc.Balances.Balances),
		TotalEndowed:    common.FormatAmount(total, common.NativeDecimals),
		Trustees:        len(doc.XGatewayBitcoin.GenesisTrustees),
		AnchorHash:      doc.XGatewayBitcoin.GenesisHash,
	}, nil
}
