package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastionlabs/bastion/api/model"
)

func TestUngroupedKeySelection(t *testing.T) {
	assert.Equal(t, "1:-1", UngroupedKey(nil))
	assert.Equal(t, "1:-1", UngroupedKey([]string{"1:2", "1:3"}))
	assert.Equal(t, "2:-1", UngroupedKey([]string{"1:2", "2:-1", "3:-1"}))
}

func TestNodeTreeBuilderInjectsSyntheticNodes(t *testing.T) {
	entities := &fakeEntities{
		nodes: map[string]model.Node{
			"1:2": {ID: "n2", Key: "1:2", Value: "prod"},
		},
	}
	builder := NewNodeTreeBuilder(entities)

	nodes, err := builder.Build(context.Background(), []model.NodeGrant{
		{Key: "1:2", AssetsAmount: 3},
	})
	require.NoError(t, err)

	// real node plus ungrouped (default key) plus empty
	require.Len(t, nodes, 3)
	assert.Equal(t, "1:2", nodes[0].Key)
	assert.Equal(t, 3, nodes[0].AssetsAmount)
	assert.Equal(t, model.DefaultUngroupedKey, nodes[1].Key)
	assert.Equal(t, model.UngroupedNodeID, nodes[1].Node.ID)
	assert.Equal(t, model.EmptyNodeKey, nodes[2].Key)
	assert.Equal(t, model.EmptyNodeID, nodes[2].Node.ID)
}

func TestNodeTreeBuilderSyntheticNodesAppearOnce(t *testing.T) {
	builder := NewNodeTreeBuilder(&fakeEntities{nodes: map[string]model.Node{}})

	// The grant data already references an ungrouped key; the builder must
	// not add a second one.
	nodes, err := builder.Build(context.Background(), []model.NodeGrant{
		{Key: "2:-1", AssetsAmount: 4},
	})
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, "2:-1", nodes[0].Key)
	assert.Equal(t, model.UngroupedNodeID, nodes[0].Node.ID)
	assert.Equal(t, 4, nodes[0].AssetsAmount)
	assert.Equal(t, model.EmptyNodeKey, nodes[1].Key)
}

func TestNodeTreeBuilderEmptyInputStillYieldsSynthetics(t *testing.T) {
	builder := NewNodeTreeBuilder(&fakeEntities{nodes: map[string]model.Node{}})

	nodes, err := builder.Build(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, model.UngroupedNodeID, nodes[0].Node.ID)
	assert.Equal(t, model.EmptyNodeID, nodes[1].Node.ID)
}

func TestNodeTreeBuilderDropsDanglingNode(t *testing.T) {
	entities := &fakeEntities{
		nodes: map[string]model.Node{
			"1:2": {ID: "n2", Key: "1:2", Value: "prod"},
		},
	}
	builder := NewNodeTreeBuilder(entities)

	nodes, err := builder.Build(context.Background(), []model.NodeGrant{
		{Key: "1:2", AssetsAmount: 1},
		{Key: "1:9", AssetsAmount: 7}, // deleted since grant computation
	})
	require.NoError(t, err)

	require.Len(t, nodes, 3)
	for _, n := range nodes {
		assert.NotEqual(t, "1:9", n.Key)
	}
}

func TestWithSyntheticNodesDoesNotMutateInput(t *testing.T) {
	original := map[string]model.Node{
		"1:2": {ID: "n2", Key: "1:2", Value: "prod"},
	}
	out := withSyntheticNodes(original, []string{"1:2"})

	assert.Len(t, original, 1)
	assert.Len(t, out, 3)
}
