// api/service/interfaces.go
package service

import (
	"context"
	"time"

	"github.com/bastionlabs/bastion/api/model"
)

// EntityLookup resolves ids referenced by grant data to entity records with
// field projection. Implemented by dao.EntityDAO.
type EntityLookup interface {
	UserByID(ctx context.Context, userID string) (*model.User, error)
	AssetsByIDs(ctx context.Context, assetIDs []string) (map[string]model.Asset, error)
	AccountsByIDs(ctx context.Context, accountIDs []string) (map[string]model.Account, error)
	NodesByKeys(ctx context.Context, keys []string) (map[string]model.Node, error)
	NodeByID(ctx context.Context, nodeID string) (*model.Node, error)
	SearchAssetIDs(ctx context.Context, assetIDs []string, term string) (map[string]struct{}, error)
}

// GrantResolver is the narrow surface of the external grant-resolution
// engine this service consumes. Implemented by resolver.RedisResolver.
type GrantResolver interface {
	GetAssets(ctx context.Context) ([]model.AssetGrant, error)
	GetNodesWithAssets(ctx context.Context) ([]model.NodeGrant, error)
	FilterPermissions(accountIDs []string)
	CacheMeta(ctx context.Context) (*model.CacheMeta, error)
}

// ResolverFactory builds a resolver bound to one user and one request's
// cache policy.
type ResolverFactory func(userID string, policy model.CachePolicy) GrantResolver

// Store is the cache backend the response cache layer writes through.
// Get returns (nil, nil) on a miss. DeleteByPrefix is delimiter-bound: the
// prefix must end at a key separator.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
