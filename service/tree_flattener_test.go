package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/bastion/api/model"
)

func TestCompareNodeKeys(t *testing.T) {
	assert.Negative(t, model.CompareNodeKeys("1", "1:2"))
	assert.Negative(t, model.CompareNodeKeys("1:2", "1:10")) // numeric, not lexical
	assert.Positive(t, model.CompareNodeKeys("1:3", "1:2"))
	assert.Zero(t, model.CompareNodeKeys("1:2", "1:2"))
	assert.Negative(t, model.CompareNodeKeys("1:-1", "1:2"))
}

func TestFlattenNodesWithAssetsKeepsChildrenWithParent(t *testing.T) {
	nodes := []model.GrantedNode{
		{
			Node:         model.Node{ID: "n3", Key: "1:3", Value: "staging"},
			AssetsAmount: 1,
			AssetsGranted: []model.GrantedAsset{
				{Asset: model.Asset{ID: "a3", Hostname: "cache1"}},
			},
		},
		{
			Node:         model.Node{ID: "n2", Key: "1:2", Value: "prod"},
			AssetsAmount: 2,
			AssetsGranted: []model.GrantedAsset{
				{Asset: model.Asset{ID: "a2", Hostname: "b-web"}},
				{Asset: model.Asset{ID: "a1", Hostname: "a-db"}},
			},
		},
	}

	flat := FlattenNodesWithAssets(nodes)
	require.Len(t, flat, 5)

	// node 1:2 immediately followed by its own assets in name order, then
	// the sibling node with its child; never interleaved.
	assert.Equal(t, []string{"prod", "a-db", "b-web", "staging", "cache1"}, names(flat))
	assert.Equal(t, model.TreeEntryNode, flat[0].Type)
	assert.Equal(t, model.TreeEntryAsset, flat[1].Type)
	assert.Equal(t, "n2", flat[1].ParentID)
	assert.Equal(t, "n2", flat[2].ParentID)
	assert.Equal(t, "n3", flat[4].ParentID)
}

func TestFlattenOrdersParentBeforeDescendants(t *testing.T) {
	nodes := []model.GrantedNode{
		{Node: model.Node{ID: "n10", Key: "1:10", Value: "ten"}},
		{Node: model.Node{ID: "n1", Key: "1", Value: "root"},
			AssetsGranted: []model.GrantedAsset{
				{Asset: model.Asset{ID: "a1", Hostname: "edge"}},
			}},
		{Node: model.Node{ID: "n2", Key: "1:2", Value: "two"}},
	}

	flat := FlattenNodesWithAssets(nodes)
	assert.Equal(t, []string{"root", "edge", "two", "ten"}, names(flat))
}

func TestFlattenTiesBreakOnEntityID(t *testing.T) {
	nodes := []model.GrantedNode{
		{
			Node: model.Node{ID: "n1", Key: "1", Value: "root"},
			AssetsGranted: []model.GrantedAsset{
				{Asset: model.Asset{ID: "a2", Hostname: "same"}},
				{Asset: model.Asset{ID: "a1", Hostname: "same"}},
			},
		},
	}

	flat := FlattenNodesWithAssets(nodes)
	require.Len(t, flat, 3)
	assert.Equal(t, "a1", flat[1].ID)
	assert.Equal(t, "a2", flat[2].ID)
}

func TestFlattenNodesCarriesTransientCounts(t *testing.T) {
	flat := FlattenNodes([]model.GrantedNode{
		{Node: model.Node{ID: "n2", Key: "1:2", Value: "prod"}, AssetsAmount: 7},
	})
	require.Len(t, flat, 1)
	assert.Equal(t, 7, flat[0].AssetsAmount)
	assert.Equal(t, model.TreeEntryNode, flat[0].Type)
}

func names(entries []model.TreeNode) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
