package genesis

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/endowment"
	"github.com/zihgir1/BEVM/params"
)

func inconsistent(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInconsistentGenesis, fmt.Sprintf(format, args...))
}

// SanityCheck verifies the cross-subsystem invariants of a genesis state.
// All violations are reported together.
func SanityCheck(doc *Document, caps params.Capabilities) error {
	var result *multierror.Error
	add := func(err error) {
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	add(checkValidators(doc))
	add(checkAssets(doc))
	add(checkBridge(doc))

	if caps.AdminKey != (doc.Sudo != nil) {
		add(inconsistent("administrative key present: %t, expected: %t", doc.Sudo != nil, caps.AdminKey))
	}
	if doc.XSystem.NetworkProps != caps.Network {
		add(inconsistent("network %q, expected %q", doc.XSystem.NetworkProps, caps.Network))
	}
	if len(doc.System.Code) == 0 {
		add(inconsistent("empty code image"))
	}

	seen := make(map[common.AccountID]struct{}, len(doc.Balances.Balances))
	for _, b := range doc.Balances.Balances {
		if _, dup := seen[b.Account]; dup {
			add(inconsistent("account %s has two native balances", common.AccountAddress(b.Account)))
		}
		seen[b.Account] = struct{}{}
	}
	total, err := endowment.Total(doc.Balances.Balances)
	switch {
	case err != nil:
		add(inconsistent("summing balances: %v", err))
	case total.Cmp(&doc.TotalEndowed) != 0:
		add(inconsistent("balances sum to %s, total endowed is %s", total.String(), doc.TotalEndowed.String()))
	}

	return result.ErrorOrNil()
}

func checkValidators(doc *Document) error {
	var result *multierror.Error
	sessions := doc.Session.Keys
	if len(doc.AuthorityDiscovery.Keys) != len(sessions) {
		result = multierror.Append(result, inconsistent("%d discovery keys for %d validators", len(doc.AuthorityDiscovery.Keys), len(sessions)))
	}
	if len(doc.XGenesisBuilder.InitialAuthorities) != len(sessions) {
		result = multierror.Append(result, inconsistent("%d initial authorities for %d validators", len(doc.XGenesisBuilder.InitialAuthorities), len(sessions)))
	}
	seen := make(map[common.AccountID]struct{}, len(sessions))
	for i, s := range sessions {
		if s.Account != s.Validator {
			result = multierror.Append(result, inconsistent("validator %d: session account differs from validator id", i))
		}
		if _, dup := seen[s.Account]; dup {
			result = multierror.Append(result, inconsistent("validator %d: stash %s bound twice", i, common.AccountAddress(s.Account)))
		}
		seen[s.Account] = struct{}{}
		if i < len(doc.AuthorityDiscovery.Keys) && doc.AuthorityDiscovery.Keys[i] != s.Keys.AuthorityDiscovery {
			result = multierror.Append(result, inconsistent("validator %d: discovery key out of order", i))
		}
	}
	return result.ErrorOrNil()
}

func checkAssets(doc *Document) error {
	var result *multierror.Error
	registered := make(map[common.AssetID]struct{}, len(doc.XAssetsRegistrar.Assets))
	for _, a := range doc.XAssetsRegistrar.Assets {
		if a.Info.ID == common.NativeAssetID {
			result = multierror.Append(result, inconsistent("native asset in the registry"))
		}
		if _, dup := registered[a.Info.ID]; dup {
			result = multierror.Append(result, inconsistent("asset %d registered twice", a.Info.ID))
		}
		registered[a.Info.ID] = struct{}{}
	}
	check := func(what string, id common.AssetID) {
		if _, ok := registered[id]; !ok {
			result = multierror.Append(result, inconsistent("%s references unregistered asset %d", what, id))
		}
	}

	for _, r := range doc.XAssets.AssetsRestrictions {
		check("restriction", r.ID)
	}
	for _, e := range doc.XAssets.Endowed {
		if e.AssetID == common.NativeAssetID {
			result = multierror.Append(result, inconsistent("native asset in the asset endowments"))
			continue
		}
		check("endowment", e.AssetID)
	}
	for _, r := range doc.XMiningAsset.ClaimRestrictions {
		check("claim restriction", r.AssetID)
	}
	for _, m := range doc.XMiningAsset.MiningPowerMap {
		check("mining power", m.AssetID)
	}
	for _, tp := range doc.XSpot.TradingPairs {
		for _, id := range []common.AssetID{tp.Base, tp.Quote} {
			if id != common.NativeAssetID {
				check("trading pair", id)
			}
		}
	}
	return result.ErrorOrNil()
}

func checkBridge(doc *Document) error {
	var result *multierror.Error
	btc := doc.XGatewayBitcoin
	found := false
	for _, set := range doc.XGatewayCommon.Trustees {
		if set.Chain != common.ChainBitcoin {
			continue
		}
		found = true
		if len(set.Candidates) != len(btc.GenesisTrustees) {
			result = multierror.Append(result, inconsistent("%d genesis trustees, %d Bitcoin trustees", len(btc.GenesisTrustees), len(set.Candidates)))
			break
		}
		for i, c := range set.Candidates {
			if c.Account != btc.GenesisTrustees[i] {
				result = multierror.Append(result, inconsistent("genesis trustee %d differs from the Bitcoin trustee set", i))
			}
		}
		n := uint32(len(set.Candidates))
		if n < set.Config.MinTrusteeCount || n > set.Config.MaxTrusteeCount {
			result = multierror.Append(result, inconsistent("%d Bitcoin trustees, want [%d, %d]", n, set.Config.MinTrusteeCount, set.Config.MaxTrusteeCount))
		}
		break
	}
	if !found {
		result = multierror.Append(result, inconsistent("no Bitcoin trustee set"))
	}
	if btc.ConfirmationNumber == 0 {
		result = multierror.Append(result, inconsistent("zero Bitcoin confirmation number"))
	}
	if err := btc.ParamsInfo.Validate(); err != nil {
		result = multierror.Append(result, inconsistent("Bitcoin params: %v", err))
	}
	return result.ErrorOrNil()
}
