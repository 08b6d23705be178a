// Package assets builds the genesis asset registry and its restriction map.
package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zihgir1/BEVM/common"
)

var (
	// ErrDuplicateAssetID is returned when two definitions share an id.
	ErrDuplicateAssetID = errors.New("duplicate asset id")
	// ErrUnknownAssetReference is returned when an entry references an id
	// absent from the registry.
	ErrUnknownAssetReference = errors.New("unknown asset reference")
	// ErrNativeAssetRegistered is returned when the native currency id is
	// part of the registry.
	ErrNativeAssetRegistered = errors.New("native asset id in registry")
)

// Restrictions is a set of operations forbidden on an asset.
type Restrictions uint32

const (
	RestrictMove Restrictions = 1 << iota
	RestrictTransfer
	RestrictDeposit
	RestrictWithdraw
	RestrictDestroyWithdrawal
	RestrictDestroyUsable
)

var restrictionNames = []struct {
	flag Restrictions
	name string
}{
	{RestrictMove, "Move"},
	{RestrictTransfer, "Transfer"},
	{RestrictDeposit, "Deposit"},
	{RestrictWithdraw, "Withdraw"},
	{RestrictDestroyWithdrawal, "DestroyWithdrawal"},
	{RestrictDestroyUsable, "DestroyUsable"},
}

// ParseRestrictions parses restriction flag names.
func ParseRestrictions(names ...string) (Restrictions, error) {
	var r Restrictions
NAMES:
	for _, name := range names {
		for _, n := range restrictionNames {
			if strings.EqualFold(n.name, name) {
				r |= n.flag
				continue NAMES
			}
		}
		return 0, fmt.Errorf("unknown asset restriction '%s'", name)
	}
	return r, nil
}

// Names returns the names of the set flags in canonical order.
func (r Restrictions) Names() []string {
	names := []string{}
	for _, n := range restrictionNames {
		if r&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

func (r Restrictions) String() string {
	return strings.Join(r.Names(), "|")
}

func (r Restrictions) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Names())
}

func (r *Restrictions) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	parsed, err := ParseRestrictions(names...)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// CanDeposit reports whether deposits of the asset are allowed.
func (r Restrictions) CanDeposit() bool { return r&RestrictDeposit == 0 }

// CanWithdraw reports whether withdrawals of the asset are allowed.
func (r Restrictions) CanWithdraw() bool { return r&RestrictWithdraw == 0 }

// CanTransfer reports whether transfers of the asset are allowed.
func (r Restrictions) CanTransfer() bool { return r&RestrictTransfer == 0 }

// Info is the display metadata of an asset.
type Info struct {
	ID        common.AssetID `json:"id"`
	Token     string         `json:"token"`
	TokenName string         `json:"tokenName"`
	Chain     common.Chain   `json:"chain"`
	Decimals  uint8          `json:"decimals"`
	Desc      string         `json:"desc"`
}

// Definition is one declarative asset entry.
type Definition struct {
	Info         Info
	Restrictions Restrictions
	Enabled      bool
	Registered   bool
}

// Descriptor is a registry entry.
type Descriptor struct {
	Info       Info `json:"info"`
	Enabled    bool `json:"enabled"`
	Registered bool `json:"registered"`
}

// Restriction assigns a restriction set to an asset.
type Restriction struct {
	ID           common.AssetID `json:"id"`
	Restrictions Restrictions   `json:"restrictions"`
}

// Registry is the asset list and the restriction map derived from a list
// of definitions.
type Registry struct {
	// Assets keeps the order of the definitions.
	Assets []Descriptor
	// Restrictions maps every registered id to its restriction set.
	Restrictions map[common.AssetID]Restrictions
}

// Init splits the definitions into the registry list and the restriction
// map. Overrides replace the restriction set of an already defined asset.
func Init(defs []Definition, overrides []Restriction) (*Registry, error) {
	reg := Registry{
		Assets:       make([]Descriptor, 0, len(defs)),
		Restrictions: make(map[common.AssetID]Restrictions, len(defs)),
	}
	for _, def := range defs {
		id := def.Info.ID
		if id == common.NativeAssetID {
			return nil, fmt.Errorf("%w: %d (%s)", ErrNativeAssetRegistered, id, def.Info.Token)
		}
		if _, dup := reg.Restrictions[id]; dup {
			return nil, fmt.Errorf("%w: %d (%s)", ErrDuplicateAssetID, id, def.Info.Token)
		}
		if !def.Info.Chain.Valid() {
			return nil, fmt.Errorf("asset %d: unknown chain '%s'", id, def.Info.Chain)
		}
		reg.Assets = append(reg.Assets, Descriptor{
			Info:       def.Info,
			Enabled:    def.Enabled,
			Registered: def.Registered,
		})
		reg.Restrictions[id] = def.Restrictions
	}
	for _, o := range overrides {
		if _, ok := reg.Restrictions[o.ID]; !ok {
			return nil, fmt.Errorf("%w: restriction for asset %d", ErrUnknownAssetReference, o.ID)
		}
		reg.Restrictions[o.ID] = o.Restrictions
	}
	return &reg, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id common.AssetID) bool {
	_, ok := r.Restrictions[id]
	return ok
}

// IDs returns the registered ids in registry order.
func (r *Registry) IDs() []common.AssetID {
	ids := make([]common.AssetID, 0, len(r.Assets))
	for _, a := range r.Assets {
		ids = append(ids, a.Info.ID)
	}
	return ids
}

// Check returns ErrUnknownAssetReference if any of ids is not registered.
func (r *Registry) Check(what string, ids ...common.AssetID) error {
	for _, id := range ids {
		if !r.Has(id) {
			return fmt.Errorf("%w: %s references asset %d", ErrUnknownAssetReference, what, id)
		}
	}
	return nil
}

// RestrictionList returns the restriction map as a list ordered by id.
func (r *Registry) RestrictionList() []Restriction {
	list := make([]Restriction, 0, len(r.Restrictions))
	for id, rs := range r.Restrictions {
		list = append(list, Restriction{ID: id, Restrictions: rs})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	clone := Registry{
		Assets:       append([]Descriptor{}, r.Assets...),
		Restrictions: make(map[common.AssetID]Restrictions, len(r.Restrictions)),
	}
	for id, rs := range r.Restrictions {
		clone.Restrictions[id] = rs
	}
	return &clone
}
