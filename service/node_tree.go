// api/service/node_tree.go
package service

import (
	"context"
	"strings"

	"github.com/bastionlabs/bastion/api/model"
)

// NodeTreeBuilder resolves node grant rows into hydrated nodes with their
// transient asset counts, and guarantees the two synthetic nodes (ungrouped,
// empty) appear in every listing exactly once.
type NodeTreeBuilder struct {
	entities EntityLookup
}

func NewNodeTreeBuilder(entities EntityLookup) *NodeTreeBuilder {
	return &NodeTreeBuilder{entities: entities}
}

// UngroupedKey picks the ungrouped node's key: the first supplied key ending
// in ":-1", in the order the resolver yielded them, else the default.
func UngroupedKey(keys []string) string {
	for _, key := range keys {
		if strings.HasSuffix(key, ":-1") {
			return key
		}
	}
	return model.DefaultUngroupedKey
}

// withSyntheticNodes returns a copy of the node map with the ungrouped and
// empty entries added. The input map is not mutated.
func withSyntheticNodes(nodes map[string]model.Node, keys []string) map[string]model.Node {
	out := make(map[string]model.Node, len(nodes)+2)
	for k, n := range nodes {
		out[k] = n
	}
	ungroupedKey := UngroupedKey(keys)
	out[ungroupedKey] = model.Node{
		ID:    model.UngroupedNodeID,
		Key:   ungroupedKey,
		Value: model.UngroupedNodeValue,
	}
	out[model.EmptyNodeKey] = model.Node{
		ID:    model.EmptyNodeID,
		Key:   model.EmptyNodeKey,
		Value: model.EmptyNodeValue,
	}
	return out
}

// Build hydrates the node rows in resolver order, dropping rows whose key no
// longer resolves, then appends whichever synthetic nodes the rows did not
// already reference.
func (b *NodeTreeBuilder) Build(ctx context.Context, grants []model.NodeGrant) ([]model.GrantedNode, error) {
	keys := make([]string, 0, len(grants))
	for _, g := range grants {
		keys = append(keys, g.Key)
	}

	stored, err := b.entities.NodesByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	nodes := withSyntheticNodes(stored, keys)

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
		out = append(out, model.GrantedNode{Node: node, AssetsAmount: g.AssetsAmount})
	}

	ungroupedKey := UngroupedKey(keys)
	if _, ok := seen[ungroupedKey]; !ok {
		out = append(out, model.GrantedNode{Node: nodes[ungroupedKey]})
	}
	if _, ok := seen[model.EmptyNodeKey]; !ok {
		out = append(out, model.GrantedNode{Node: nodes[model.EmptyNodeKey]})
	}
	return out, nil
}
