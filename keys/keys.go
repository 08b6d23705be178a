// Package keys derives authority identities from human-readable seeds.
package keys

import (
	"crypto"
	"crypto/sha512"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oasisprotocol/oasis-core/go/common/crypto/drbg"
	"github.com/oasisprotocol/oasis-core/go/common/crypto/mathrand"
	"github.com/oasisprotocol/oasis-core/go/common/crypto/signature"
	memorySigner "github.com/oasisprotocol/oasis-core/go/common/crypto/signature/signers/memory"

	"github.com/zihgir1/BEVM/common"
)

// ErrInvalidSeed is returned when a seed is rejected by the derivation.
var ErrInvalidSeed = errors.New("invalid seed")

// Role is one of the signing roles an authority holds keys for.
type Role string

const (
	RoleStash           Role = "stash"
	RoleBlockProduction Role = "babe"
	RoleFinality        Role = "grandpa"
	RoleLiveness        Role = "im_online"
	RoleDiscovery       Role = "authority_discovery"
)

// Roles lists every authority role in canonical order.
var Roles = []Role{RoleStash, RoleBlockProduction, RoleFinality, RoleLiveness, RoleDiscovery}

var signerRoles = map[Role]signature.SignerRole{
	RoleStash:           signature.SignerEntity,
	RoleBlockProduction: signature.SignerConsensus,
	RoleFinality:        signature.SignerConsensus,
	RoleLiveness:        signature.SignerNode,
	RoleDiscovery:       signature.SignerP2P,
}

// AuthorityIdentity is the full set of public identities of one validator.
type AuthorityIdentity struct {
	// Stash is the account that bonds, receives endowments and owns the
	// session keys.
	Stash common.AccountID `json:"stash"`
	// BlockProduction signs produced blocks.
	BlockProduction signature.PublicKey `json:"babe"`
	// Finality votes in the finality gadget.
	Finality signature.PublicKey `json:"grandpa"`
	// Liveness signs heartbeats.
	Liveness signature.PublicKey `json:"im_online"`
	// Discovery is published for peer discovery.
	Discovery signature.PublicKey `json:"authority_discovery"`
	// Referral is the free-text label the validator registers with.
	Referral string `json:"referral"`
}

// Key returns the identity held for a role.
func (a *AuthorityIdentity) Key(role Role) signature.PublicKey {
	switch role {
	case RoleStash:
		return a.Stash
	case RoleBlockProduction:
		return a.BlockProduction
	case RoleFinality:
		return a.Finality
	case RoleLiveness:
		return a.Liveness
	case RoleDiscovery:
		return a.Discovery
	default:
		return signature.PublicKey{}
	}
}

func (a *AuthorityIdentity) setKey(role Role, pk signature.PublicKey) {
	switch role {
	case RoleStash:
		a.Stash = pk
	case RoleBlockProduction:
		a.BlockProduction = pk
	case RoleFinality:
		a.Finality = pk
	case RoleLiveness:
		a.Liveness = pk
	case RoleDiscovery:
		a.Discovery = pk
	}
}

// Missing returns the roles whose identity is not populated.
func (a *AuthorityIdentity) Missing() []Role {
	var missing []Role
	for _, role := range Roles {
		if a.Key(role) == (signature.PublicKey{}) {
			missing = append(missing, role)
		}
	}
	return missing
}

// Complete reports whether all five role identities are populated.
func (a *AuthorityIdentity) Complete() bool {
	return len(a.Missing()) == 0
}

func validateSeed(seed string) error {
	switch {
	case seed == "":
		return fmt.Errorf("%w: empty", ErrInvalidSeed)
	case !utf8.ValidString(seed):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidSeed)
	case strings.HasPrefix(seed, "/"):
		// The secret URI is "//"+seed; a third slash would start a password.
		return fmt.Errorf("%w: '%s' starts with a path separator", ErrInvalidSeed, seed)
	case strings.IndexFunc(seed, unicode.IsControl) != -1:
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidSeed, seed)
	}
	return nil
}

// DeriveRole deterministically derives the identity of one role from a seed.
// Every role uses its own DRBG personalization, so key material is never
// shared between roles.
func DeriveRole(seed string, role Role) (signature.PublicKey, error) {
	var pk signature.PublicKey
	if err := validateSeed(seed); err != nil {
		return pk, err
	}
	signerRole, ok := signerRoles[role]
	if !ok {
		return pk, fmt.Errorf("keys: unknown role '%s'", role)
	}

	entropy := sha512.Sum512([]byte("//" + seed))
	src, err := drbg.New(crypto.SHA512, entropy[:], nil, []byte(fmt.Sprintf("authority key derivation v1, role %s", role)))
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	rng := rand.New(mathrand.New(src)) //nolint:gosec // G404: deterministic derivation is the point.

	signer, err := memorySigner.NewFactory().Generate(signerRole, rng)
	if err != nil {
		return pk, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return signer.Public(), nil
}

// DeriveAccount derives the account identity of a seed. It equals the
// stash identity of Derive(seed).
func DeriveAccount(seed string) (common.AccountID, error) {
	return DeriveRole(seed, RoleStash)
}

// Derive derives the full authority identity of a seed. The seed doubles as
// the referral label.
func Derive(seed string) (*AuthorityIdentity, error) {
	identity := AuthorityIdentity{Referral: seed}
	for _, role := range Roles {
		pk, err := DeriveRole(seed, role)
		if err != nil {
			return nil, fmt.Errorf("deriving %s key: %w", role, err)
		}
		identity.setKey(role, pk)
	}
	return &identity, nil
}

// DeriveAll derives the identities of several seeds, preserving order.
func DeriveAll(seeds ...string) ([]*AuthorityIdentity, error) {
	identities := make([]*AuthorityIdentity, 0, len(seeds))
	for _, seed := range seeds {
		identity, err := Derive(seed)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

// ParseAuthority builds an identity from published hex-encoded keys, given
// in the order of Roles.
func ParseAuthority(referral string, hexKeys ...string) (*AuthorityIdentity, error) {
	if len(hexKeys) != len(Roles) {
		return nil, fmt.Errorf("authority '%s': expected %d keys, got %d", referral, len(Roles), len(hexKeys))
	}
	identity := AuthorityIdentity{Referral: referral}
	for i, role := range Roles {
		pk, err := common.ParseAccountHex(hexKeys[i])
		if err != nil {
			return nil, fmt.Errorf("authority '%s' %s key: %w", referral, role, err)
		}
		identity.setKey(role, pk)
	}
	return &identity, nil
}
