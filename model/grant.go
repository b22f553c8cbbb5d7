// api/model/grant.go
package model

// AssetGrant is one raw row from the grant resolver: the accounts a user may
// use on an asset, each with its action bitmask. The resolver merges
// overlapping grants before publishing, so there is exactly one bitmask per
// (asset, account) pair.
type AssetGrant struct {
	AssetID  string            `json:"asset_id"`
	Accounts map[string]Action `json:"accounts"`
}

// NodeGrant is one raw row of the node-shaped resolver output: the assets
// granted under a hierarchy node, keyed asset id -> account id -> bitmask.
// AssetsAmount is the resolver's count for the node and is transient; it is
// never persisted on the node entity.
type NodeGrant struct {
	Key          string                       `json:"key"`
	AssetsAmount int                          `json:"assets_amount"`
	Assets       map[string]map[string]Action `json:"assets"`
}

// GrantedAccount is an account hydrated from entity storage with the action
// bitmask the grant attached to it.
type GrantedAccount struct {
	Account
	Actions Action `json:"actions"`
}

// GrantedAsset is an asset hydrated from entity storage carrying the
// accounts granted on it.
type GrantedAsset struct {
	Asset
	AccountsGranted []GrantedAccount `json:"accounts_granted"`
}

// GrantedNode is a node hydrated from entity storage (or synthesized) with
// its transient asset count and, on the nodes-with-assets paths, the nested
// hydrated assets.
type GrantedNode struct {
	Node
	AssetsAmount  int            `json:"assets_amount"`
	AssetsGranted []GrantedAsset `json:"assets_granted,omitempty"`
}
