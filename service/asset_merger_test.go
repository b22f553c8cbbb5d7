package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/bastion/api/model"
)

func mergerFixture() *fakeEntities {
	return &fakeEntities{
		assets: map[string]model.Asset{
			"a5": {ID: "a5", Hostname: "db1", IP: "10.0.0.5"},
			"a6": {ID: "a6", Hostname: "web1", IP: "10.0.0.6"},
		},
		accounts: map[string]model.Account{
			"s9": {ID: "s9", Name: "root", Username: "root"},
		},
	}
}

func TestAssetMergerHydratesGrants(t *testing.T) {
	merger := NewAssetMerger(mergerFixture())

	grants := []model.AssetGrant{
		{AssetID: "a5", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
	}
	merged, err := merger.Merge(context.Background(), grants, "")
	require.NoError(t, err)
	require.Len(t, merged, 1)

	assert.Equal(t, "db1", merged[0].Hostname)
	require.Len(t, merged[0].AccountsGranted, 1)
	assert.Equal(t, "root", merged[0].AccountsGranted[0].Name)
	assert.Equal(t, model.ActionConnect, merged[0].AccountsGranted[0].Actions)
}

func TestAssetMergerDropsDanglingAsset(t *testing.T) {
	merger := NewAssetMerger(mergerFixture())

	grants := []model.AssetGrant{
		{AssetID: "a5", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
		{AssetID: "gone", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
	}
	merged, err := merger.Merge(context.Background(), grants, "")
	require.NoError(t, err)

	require.Len(t, merged, 1)
	assert.Equal(t, "a5", merged[0].Asset.ID)
}

func TestAssetMergerDropsDanglingAccount(t *testing.T) {
	merger := NewAssetMerger(mergerFixture())

	grants := []model.AssetGrant{
		{AssetID: "a5", Accounts: map[string]model.Action{
			"s9":   model.ActionConnect,
			"gone": model.ActionAll,
		}},
	}
	merged, err := merger.Merge(context.Background(), grants, "")
	require.NoError(t, err)

	require.Len(t, merged, 1)
	require.Len(t, merged[0].AccountsGranted, 1)
	assert.Equal(t, "s9", merged[0].AccountsGranted[0].ID)
}

func TestAssetMergerSearchRestrictsToMatches(t *testing.T) {
	merger := NewAssetMerger(mergerFixture())

	grants := []model.AssetGrant{
		{AssetID: "a5", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
		{AssetID: "a6", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
	}

	merged, err := merger.Merge(context.Background(), grants, "DB")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "db1", merged[0].Hostname)

	merged, err = merger.Merge(context.Background(), grants, "10.0.0")
	require.NoError(t, err)
	assert.Len(t, merged, 2)
}

func TestAssetMergerOutputIsDeterministic(t *testing.T) {
	merger := NewAssetMerger(mergerFixture())

	grants := []model.AssetGrant{
		{AssetID: "a6", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
		{AssetID: "a5", Accounts: map[string]model.Action{"s9": model.ActionConnect}},
	}
	merged, err := merger.Merge(context.Background(), grants, "")
	require.NoError(t, err)

	require.Len(t, merged, 2)
	assert.Equal(t, "db1", merged[0].Hostname)
	assert.Equal(t, "web1", merged[1].Hostname)
}
