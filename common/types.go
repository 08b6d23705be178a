package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// ErrUnknownProfile is returned when a profile name cannot be resolved.
var ErrUnknownProfile = errors.New("unknown profile")

// Profile is one of the fixed deployment targets a chain spec can be built
// for. It implements the pflag.Value interface.
type Profile uint8

const (
	// ProfileDevelopment is the ephemeral single-validator development chain.
	ProfileDevelopment Profile = iota
	// ProfileLocal is the multi-validator local test chain.
	ProfileLocal
	// ProfilePublicTest is the long-lived public test network.
	ProfilePublicTest
	// ProfileMain is the production network.
	ProfileMain

	profileCount // Keep last.
)

var _ pflag.Value = (*Profile)(nil)

// NumProfiles is the size of the closed profile set.
const NumProfiles = int(profileCount)

var profileNames = [NumProfiles]string{
	ProfileDevelopment: "development",
	ProfileLocal:       "local",
	ProfilePublicTest:  "public-test",
	ProfileMain:        "main",
}

var profileAliases = map[string]Profile{
	"development": ProfileDevelopment,
	"dev":         ProfileDevelopment,
	"local":       ProfileLocal,
	"public-test": ProfilePublicTest,
	"testnet":     ProfilePublicTest,
	"malan":       ProfilePublicTest,
	"main":        ProfileMain,
	"mainnet":     ProfileMain,
}

// AllProfiles returns every profile in declaration order.
func AllProfiles() []Profile {
	return []Profile{ProfileDevelopment, ProfileLocal, ProfilePublicTest, ProfileMain}
}

// ParseProfile resolves a profile name or one of its aliases.
func ParseProfile(s string) (Profile, error) {
	p, ok := profileAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: '%s'", ErrUnknownProfile, s)
	}
	return p, nil
}

// Valid reports whether p is a member of the profile set.
func (p Profile) Valid() bool {
	return int(p) < NumProfiles
}

// IsFrozen reports whether the profile is published as a frozen snapshot.
func (p Profile) IsFrozen() bool {
	return p == ProfilePublicTest || p == ProfileMain
}

// String returns the canonical name of the profile.
func (p Profile) String() string {
	if !p.Valid() {
		return fmt.Sprintf("profile(%d)", uint8(p))
	}
	return profileNames[p]
}

// Set sets the Profile to the value specified by the provided string.
func (p *Profile) Set(s string) error {
	parsed, err := ParseProfile(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Type returns the list of supported Profiles.
func (p *Profile) Type() string {
	return "[development,local,public-test,main]"
}

func (p Profile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProfile, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Profile) UnmarshalText(text []byte) error {
	return p.Set(string(text))
}

// NetworkType is the network tag stored in the genesis state and in the
// client display properties.
type NetworkType string

const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

// SS58Format returns the address format identifier of the network.
func (n NetworkType) SS58Format() uint16 {
	if n == NetworkMainnet {
		return 44
	}
	return 42
}

// ChainType is the client-facing chain type tag of a chain spec.
type ChainType string

const (
	ChainTypeDevelopment ChainType = "Development"
	ChainTypeLocal       ChainType = "Local"
	ChainTypeLive        ChainType = "Live"
)

// Chain tags the chain an asset or a bridge belongs to.
type Chain string

const (
	ChainChainX   Chain = "ChainX"
	ChainBitcoin  Chain = "Bitcoin"
	ChainEthereum Chain = "Ethereum"
	ChainPolkadot Chain = "Polkadot"
)

// Valid reports whether c is a known chain tag.
func (c Chain) Valid() bool {
	switch c {
	case ChainChainX, ChainBitcoin, ChainEthereum, ChainPolkadot:
		return true
	default:
		return false
	}
}

// AssetID identifies a registered asset.
type AssetID uint32

const (
	// NativeAssetID is the id reserved for the native currency. Native
	// balances live in the balances subsystem, never in the asset registry.
	NativeAssetID AssetID = 0
	// XBTCAssetID is the id of the bridged Bitcoin asset.
	XBTCAssetID AssetID = 1
)

// Ratio is a pair of integer weights, encoded as a two element array.
type Ratio struct {
	Numerator   uint32
	Denominator uint32
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint32{r.Numerator, r.Denominator})
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	var pair [2]uint32
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	r.Numerator, r.Denominator = pair[0], pair[1]
	return nil
}

// Key used to set values in a web request context.
type ContextKey string

const (
	// RequestIDContextKey is used to set a request id for tracing
	// in a request context.
	RequestIDContextKey ContextKey = "request_id"
	// ProfileContextKey is used to set the requested profile
	// in a request context.
	ProfileContextKey ContextKey = "profile"
)
