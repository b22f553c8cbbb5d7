// api/resolver/client.go
package resolver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	perm_errors "github.com/bastionlabs/bastion/api/errors"
	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
)

// Key layout published by the asynchronous grant engine. Bitmasks for
// overlapping grants are already unioned by the producer; this client never
// merges duplicates.
const (
	assetGrantsKeyFmt = "PERM_GRANTS:%s:assets"
	nodeGrantsKeyFmt  = "PERM_GRANTS:%s:nodes"
	metaKeyFmt        = "PERM_META:%s"
)

// RedisResolver reads the precomputed grant maps and generation metadata for
// one user. An account filter, when set, narrows every subsequent read to
// that credential subset.
type RedisResolver struct {
	client     *redis.Client
	userID     string
	policy     model.CachePolicy
	accountIDs map[string]struct{}
}

func New(client *redis.Client, userID string, policy model.CachePolicy) *RedisResolver {
	return &RedisResolver{
		client: client,
		userID: userID,
		policy: policy,
	}
}

// FilterPermissions narrows subsequent GetAssets/GetNodesWithAssets results
// to the given accounts.
func (r *RedisResolver) FilterPermissions(accountIDs []string) {
	r.accountIDs = make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		r.accountIDs[id] = struct{}{}
	}
}

// GetAssets returns the raw per-asset grant rows for the user.
func (r *RedisResolver) GetAssets(ctx context.Context) ([]model.AssetGrant, error) {
	key := fmt.Sprintf(assetGrantsKeyFmt, r.userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		logger.Error("Failed to read asset grants",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}

	// Published as {assetID: {accountID: bitmask}}
	var raw map[string]map[string]model.Action
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Error("Malformed asset grant payload",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}

	grants := make([]model.AssetGrant, 0, len(raw))
	for assetID, accounts := range raw {
		accounts = filterAccounts(accounts, r.accountIDs)
		if len(accounts) == 0 {
			continue
		}
		grants = append(grants, model.AssetGrant{AssetID: assetID, Accounts: accounts})
	}
	return grants, nil
}

// GetNodesWithAssets returns the node-shaped grant rows for the user, in the
// order the producer published them.
func (r *RedisResolver) GetNodesWithAssets(ctx context.Context) ([]model.NodeGrant, error) {
	key := fmt.Sprintf(nodeGrantsKeyFmt, r.userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		logger.Error("Failed to read node grants",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}

	var grants []model.NodeGrant
	if err := json.Unmarshal(data, &grants); err != nil {
		logger.Error("Malformed node grant payload",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}
	return filterNodeGrants(grants, r.accountIDs), nil
}

// CacheMeta returns the current generation marker, or nil when the engine
// has not published one yet. Metadata is served from a short-lived
// in-process cache unless the request policy opted out of caching.
func (r *RedisResolver) CacheMeta(ctx context.Context) (*model.CacheMeta, error) {
	useCache := r.policy == model.CachePolicyDefault
	if useCache {
		if meta, ok := sharedMetaCache.get(r.userID); ok {
			return meta, nil
		}
	}

	key := fmt.Sprintf(metaKeyFmt, r.userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		logger.Error("Failed to read resolver meta",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}

	var meta model.CacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		logger.Error("Malformed resolver meta payload",
			zap.Error(err), zap.String("userID", r.userID))
		return nil, perm_errors.ErrResolverFailure
	}

	sharedMetaCache.set(r.userID, &meta, viper.GetDuration("resolver.metaCacheTTL"))
	return &meta, nil
}

func filterAccounts(accounts map[string]model.Action, allowed map[string]struct{}) map[string]model.Action {
	if allowed == nil {
		return accounts
	}
	filtered := make(map[string]model.Action, len(accounts))
	for id, actions := range accounts {
		if _, ok := allowed[id]; ok {
			filtered[id] = actions
		}
	}
	return filtered
}

// filterNodeGrants restricts every grant row to the allowed accounts,
// dropping assets left without accounts and recomputing the transient node
// counts. A nil filter passes rows through untouched.
func filterNodeGrants(grants []model.NodeGrant, allowed map[string]struct{}) []model.NodeGrant {
	if allowed == nil {
		return grants
	}
	filtered := make([]model.NodeGrant, 0, len(grants))
	for _, g := range grants {
		assets := make(map[string]map[string]model.Action, len(g.Assets))
		for assetID, accounts := range g.Assets {
			accounts = filterAccounts(accounts, allowed)
			if len(accounts) == 0 {
				continue
			}
			assets[assetID] = accounts
		}
		filtered = append(filtered, model.NodeGrant{
			Key:          g.Key,
			AssetsAmount: len(assets),
			Assets:       assets,
		})
	}
	return filtered
}
