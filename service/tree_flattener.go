// api/service/tree_flattener.go
package service

import (
	"sort"

	"github.com/bastionlabs/bastion/api/model"
)

// FlattenNodes converts a nodes-only listing into the flat display form: one
// TreeNode per node, ordered by ancestry path.
func FlattenNodes(nodes []model.GrantedNode) []model.TreeNode {
	out := make([]model.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeEntry(n))
	}
	sortTreeNodes(out)
	return out
}

// FlattenNodesWithAssets converts the nested node+asset structure into one
// flat ordered sequence: every node immediately followed by its own assets
// in name order, before any sibling node.
func FlattenNodesWithAssets(nodes []model.GrantedNode) []model.TreeNode {
	out := make([]model.TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeEntry(n))
		for _, a := range n.AssetsGranted {
			out = append(out, model.TreeNode{
				ID:       a.Asset.ID,
				Name:     a.Hostname,
				Key:      n.Key,
				Type:     model.TreeEntryAsset,
				ParentID: n.Node.ID,
				Accounts: a.AccountsGranted,
			})
		}
	}
	sortTreeNodes(out)
	return out
}

func nodeEntry(n model.GrantedNode) model.TreeNode {
	return model.TreeNode{
		ID:           n.Node.ID,
		Name:         n.Value,
		Key:          n.Key,
		Type:         model.TreeEntryNode,
		AssetsAmount: n.AssetsAmount,
	}
}

func sortTreeNodes(entries []model.TreeNode) {
	sort.SliceStable(entries, func(i, j int) bool {
		return model.CompareTreeNodes(entries[i], entries[j]) < 0
	})
}
