// api/service/asset_merger.go
package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
)

// AssetMerger joins raw per-asset grant rows with entity storage, producing
// hydrated assets carrying their granted accounts. Ids the store cannot
// resolve are dropped silently: grant computation is asynchronous, so rows
// may reference entities deleted since the last run.
type AssetMerger struct {
	entities EntityLookup
}

func NewAssetMerger(entities EntityLookup) *AssetMerger {
	return &AssetMerger{entities: entities}
}

// Merge hydrates the grant rows. A non-empty search term restricts the
// result to assets whose hostname or address matches, by intersecting the
// granted id set with the store's matches.
func (m *AssetMerger) Merge(ctx context.Context, grants []model.AssetGrant, search string) ([]model.GrantedAsset, error) {
	assetIDs := make([]string, 0, len(grants))
	accountIDSet := make(map[string]struct{})
	for _, g := range grants {
		assetIDs = append(assetIDs, g.AssetID)
		for accountID := range g.Accounts {
			accountIDSet[accountID] = struct{}{}
		}
	}

	if search != "" {
		matched, err := m.entities.SearchAssetIDs(ctx, assetIDs, search)
		if err != nil {
			return nil, err
		}
		narrowed := make([]model.AssetGrant, 0, len(matched))
		for _, g := range grants {
			if _, ok := matched[g.AssetID]; ok {
				narrowed = append(narrowed, g)
			}
		}
		grants = narrowed
		assetIDs = assetIDs[:0]
		for _, g := range grants {
			assetIDs = append(assetIDs, g.AssetID)
		}
	}

	assets, err := m.entities.AssetsByIDs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	accounts, err := m.entities.AccountsByIDs(ctx, setToSlice(accountIDSet))
	if err != nil {
		return nil, err
	}

	merged := make([]model.GrantedAsset, 0, len(grants))
	for _, g := range grants {
		asset, ok := assets[g.AssetID]
		if !ok {
			logger.Debug("Dropping grant for unknown asset", zap.String("assetID", g.AssetID))
			continue
		}
		merged = append(merged, model.GrantedAsset{
			Asset:           asset,
			AccountsGranted: grantedAccounts(g.Accounts, accounts),
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Hostname != merged[j].Hostname {
			return merged[i].Hostname < merged[j].Hostname
		}
		return merged[i].Asset.ID < merged[j].Asset.ID
	})
	return merged, nil
}

// grantedAccounts hydrates one asset's account->bitmask map, skipping
// accounts missing from storage. Output is ordered by name then id.
func grantedAccounts(granted map[string]model.Action, accounts map[string]model.Account) []model.GrantedAccount {
	result := make([]model.GrantedAccount, 0, len(granted))
	for accountID, actions := range granted {
		account, ok := accounts[accountID]
		if !ok {
			continue
		}
		result = append(result, model.GrantedAccount{Account: account, Actions: actions})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
