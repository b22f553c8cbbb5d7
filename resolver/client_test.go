// api/resolver/client_test.go
package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/bastion/api/model"
)

func TestFilterAccountsNilFilterPassesThrough(t *testing.T) {
	accounts := map[string]model.Action{
		"s1": model.ActionConnect,
		"s2": model.ActionAll,
	}

	assert.Equal(t, accounts, filterAccounts(accounts, nil))
}

func TestFilterAccountsNarrowsToAllowed(t *testing.T) {
	accounts := map[string]model.Action{
		"s1": model.ActionConnect,
		"s2": model.ActionAll,
	}
	allowed := map[string]struct{}{"s2": {}}

	filtered := filterAccounts(accounts, allowed)
	require.Len(t, filtered, 1)
	assert.Equal(t, model.ActionAll, filtered["s2"])
}

func TestFilterNodeGrantsRecomputesCounts(t *testing.T) {
	grants := []model.NodeGrant{
		{
			Key:          "1:2",
			AssetsAmount: 2,
			Assets: map[string]map[string]model.Action{
				"a1": {"s1": model.ActionConnect},
				"a2": {"s2": model.ActionConnect},
			},
		},
	}
	allowed := map[string]struct{}{"s1": {}}

	filtered := filterNodeGrants(grants, allowed)
	require.Len(t, filtered, 1)
	assert.Equal(t, 1, filtered[0].AssetsAmount)
	require.Len(t, filtered[0].Assets, 1)
	assert.Contains(t, filtered[0].Assets, "a1")
}

func TestFilterNodeGrantsKeepsEmptiedRows(t *testing.T) {
	grants := []model.NodeGrant{
		{
			Key:          "1:2",
			AssetsAmount: 1,
			Assets: map[string]map[string]model.Action{
				"a1": {"s1": model.ActionConnect},
			},
		},
	}
	allowed := map[string]struct{}{"s9": {}}

	// the node row survives with a zero count so listings still show it
	filtered := filterNodeGrants(grants, allowed)
	require.Len(t, filtered, 1)
	assert.Zero(t, filtered[0].AssetsAmount)
	assert.Empty(t, filtered[0].Assets)
}

func TestFilterPermissionsSetsFilter(t *testing.T) {
	r := New(nil, "u1", model.CachePolicyDefault)
	r.FilterPermissions([]string{"s1", "s2"})

	assert.Len(t, r.accountIDs, 2)
	assert.Contains(t, r.accountIDs, "s1")
}

func TestMetaCacheExpiresLazily(t *testing.T) {
	c := &metaCache{entries: make(map[string]metaEntry)}
	meta := &model.CacheMeta{GenerationID: "g1"}

	c.set("u1", meta, time.Minute)
	got, ok := c.get("u1")
	require.True(t, ok)
	assert.Equal(t, "g1", got.GenerationID)

	// force the entry past its deadline
	c.mu.Lock()
	c.entries["u1"] = metaEntry{meta: meta, expiresAt: time.Now().Add(-time.Second)}
	c.mu.Unlock()

	_, ok = c.get("u1")
	assert.False(t, ok)
	c.mu.RLock()
	_, present := c.entries["u1"]
	c.mu.RUnlock()
	assert.False(t, present)
}

func TestMetaCacheZeroTTLNeverStores(t *testing.T) {
	c := &metaCache{entries: make(map[string]metaEntry)}
	c.set("u1", &model.CacheMeta{GenerationID: "g1"}, 0)

	_, ok := c.get("u1")
	assert.False(t, ok)
}
