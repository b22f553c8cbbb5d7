package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/bastion/api/model"
)

func nodeAssetFixture() *fakeEntities {
	return &fakeEntities{
		assets: map[string]model.Asset{
			"a1": {ID: "a1", Hostname: "db1", IP: "10.0.0.1"},
			"a2": {ID: "a2", Hostname: "web1", IP: "10.0.0.2"},
		},
		accounts: map[string]model.Account{
			"s1": {ID: "s1", Name: "root"},
			"s2": {ID: "s2", Name: "deploy"},
		},
		nodes: map[string]model.Node{
			"1:2": {ID: "n2", Key: "1:2", Value: "prod"},
		},
	}
}

func TestNodeAssetMergerThreeLevelJoin(t *testing.T) {
	merger := NewNodeAssetMerger(nodeAssetFixture())

	grants := []model.NodeGrant{
		{
			Key:          "1:2",
			AssetsAmount: 2,
			Assets: map[string]map[string]model.Action{
				"a1": {"s1": model.ActionConnect},
				"a2": {"s1": model.ActionConnect, "s2": model.ActionConnect | model.ActionUploadFile},
			},
		},
	}
	nodes, err := merger.Merge(context.Background(), grants)
	require.NoError(t, err)
	require.Len(t, nodes, 3) // real + 2 synthetics

	prod := nodes[0]
	assert.Equal(t, "prod", prod.Value)
	assert.Equal(t, 2, prod.AssetsAmount)
	require.Len(t, prod.AssetsGranted, 2)
	assert.Equal(t, "db1", prod.AssetsGranted[0].Hostname)
	assert.Equal(t, "web1", prod.AssetsGranted[1].Hostname)

	web := prod.AssetsGranted[1]
	require.Len(t, web.AccountsGranted, 2)
	// ordered by account name
	assert.Equal(t, "deploy", web.AccountsGranted[0].Name)
	assert.True(t, web.AccountsGranted[0].Actions.Contains("upload_file"))
	assert.Equal(t, "root", web.AccountsGranted[1].Name)
}

func TestNodeAssetMergerDropsBranchesLocally(t *testing.T) {
	merger := NewNodeAssetMerger(nodeAssetFixture())

	grants := []model.NodeGrant{
		{
			Key:          "1:2",
			AssetsAmount: 2,
			Assets: map[string]map[string]model.Action{
				"a1":   {"s1": model.ActionConnect, "ghost": model.ActionAll},
				"gone": {"s1": model.ActionConnect},
			},
		},
		{
			Key:          "1:99", // node deleted, whole branch dropped
			AssetsAmount: 1,
			Assets: map[string]map[string]model.Action{
				"a2": {"s1": model.ActionConnect},
			},
		},
	}
	nodes, err := merger.Merge(context.Background(), grants)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	prod := nodes[0]
	assert.Equal(t, "1:2", prod.Key)
	require.Len(t, prod.AssetsGranted, 1)
	assert.Equal(t, "a1", prod.AssetsGranted[0].Asset.ID)
	require.Len(t, prod.AssetsGranted[0].AccountsGranted, 1)
	assert.Equal(t, "s1", prod.AssetsGranted[0].AccountsGranted[0].ID)
}

func TestNodeAssetMergerSyntheticNodesCarryEmptyAssetLists(t *testing.T) {
	merger := NewNodeAssetMerger(nodeAssetFixture())

	nodes, err := merger.Merge(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	for _, n := range nodes {
		assert.NotNil(t, n.AssetsGranted)
		assert.Empty(t, n.AssetsGranted)
	}
}
