// api/service/node_asset_merger.go
package service

import (
	"context"
	"sort"

	"github.com/bastionlabs/bastion/api/model"
)

// NodeAssetMerger performs the three-level node x asset x account join,
// producing per-node lists of hydrated assets. An id unresolved at any level
// drops only that branch; the rest of the result degrades gracefully.
type NodeAssetMerger struct {
	entities EntityLookup
}

func NewNodeAssetMerger(entities EntityLookup) *NodeAssetMerger {
	return &NodeAssetMerger{entities: entities}
}

func (m *NodeAssetMerger) Merge(ctx context.Context, grants []model.NodeGrant) ([]model.GrantedNode, error) {
	keys := make([]string, 0, len(grants))
	assetIDSet := make(map[string]struct{})
	accountIDSet := make(map[string]struct{})
	for _, g := range grants {
		keys = append(keys, g.Key)
		for assetID, accounts := range g.Assets {
			assetIDSet[assetID] = struct{}{}
			for accountID := range accounts {
				accountIDSet[accountID] = struct{}{}
			}
		}
	}

	stored, err := m.entities.NodesByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	nodes := withSyntheticNodes(stored, keys)
	assets, err := m.entities.AssetsByIDs(ctx, setToSlice(assetIDSet))
	if err != nil {
		return nil, err
	}
	accounts, err := m.entities.AccountsByIDs(ctx, setToSlice(accountIDSet))
	if err != nil {
		return nil, err
	}

	out := make([]model.GrantedNode, 0, len(grants)+2)
	seen := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		node, ok := nodes[g.Key]
		if !ok {
			continue
		}
		if _, dup := seen[g.Key]; dup {
			continue
		}
		seen[g.Key] = struct{}{}

		assetsGranted := make([]model.GrantedAsset, 0, len(g.Assets))
		for assetID, accountActions := range g.Assets {
			asset, ok := assets[assetID]
			if !ok {
				continue
			}
			assetsGranted = append(assetsGranted, model.GrantedAsset{
				Asset:           asset,
				AccountsGranted: grantedAccounts(accountActions, accounts),
			})
		}
		sort.Slice(assetsGranted, func(i, j int) bool {
			if assetsGranted[i].Hostname != assetsGranted[j].Hostname {
				return assetsGranted[i].Hostname < assetsGranted[j].Hostname
			}
			return assetsGranted[i].Asset.ID < assetsGranted[j].Asset.ID
		})

		out = append(out, model.GrantedNode{
			Node:          node,
			AssetsAmount:  g.AssetsAmount,
			AssetsGranted: assetsGranted,
		})
	}

	ungroupedKey := UngroupedKey(keys)
	if _, ok := seen[ungroupedKey]; !ok {
		out = append(out, model.GrantedNode{Node: nodes[ungroupedKey], AssetsGranted: []model.GrantedAsset{}})
	}
	if _, ok := seen[model.EmptyNodeKey]; !ok {
		out = append(out, model.GrantedNode{Node: nodes[model.EmptyNodeKey], AssetsGranted: []model.GrantedAsset{}})
	}
	return out, nil
}
