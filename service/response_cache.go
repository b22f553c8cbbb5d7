// api/service/response_cache.go
package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
	"github.com/bastionlabs/bastion/api/util"
)

const (
	respCachePrefix = "PERM_RESP:"
	// cacheBusterParam is the timestamp parameter browsers append to defeat
	// HTTP caches; it must not fragment this cache.
	cacheBusterParam = "_"

	// EventCacheRefreshed is published after a subject's entries are swept by
	// the refresh policy.
	EventCacheRefreshed = "permission.cache.refreshed"
)

// MetaFunc yields the resolver's current generation id, or "" when the
// resolver has not published one.
type MetaFunc func(ctx context.Context) (string, error)

// ComputeFunc produces the serialized response payload on a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// ResponseCache decorates a compute function with response-level caching.
// Keys bind the subject, a normalized request fingerprint, and the
// resolver's generation id, so a generation change orphans every stale entry
// without an explicit sweep. Cache backend failures degrade to plain
// compute; they never fail the request.
type ResponseCache struct {
	store  Store
	ttl    time.Duration
	events *util.EventBus
}

func NewResponseCache(store Store, ttl time.Duration, events *util.EventBus) *ResponseCache {
	return &ResponseCache{store: store, ttl: ttl, events: events}
}

// Fingerprint normalizes a request identity: query parameters are sorted,
// the cache-buster parameter is dropped, and the path plus normalized query
// is hashed. Parameter order and buster noise therefore never fragment the
// cache.
func Fingerprint(path string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == cacheBusterParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
		}
	}

	full := fmt.Sprintf("%s?%s", path, strings.Join(pairs, "&"))
	sum := md5.Sum([]byte(full))
	return hex.EncodeToString(sum[:])
}

func cacheKey(subjectID, fingerprint, generationID string) string {
	return fmt.Sprintf("%s%s_%s_%s", respCachePrefix, subjectID, fingerprint, generationID)
}

func subjectPrefix(subjectID string) string {
	return fmt.Sprintf("%s%s_", respCachePrefix, subjectID)
}

// Resolve applies the cache policy around compute. With no generation id
// available the cache is treated as cold and compute runs directly.
func (rc *ResponseCache) Resolve(ctx context.Context, subjectID, fingerprint string, policy model.CachePolicy, meta MetaFunc, compute ComputeFunc) ([]byte, error) {
	if rc.store == nil || policy == model.CachePolicyBypass {
		return compute(ctx)
	}

	if policy == model.CachePolicyRefresh {
		if err := rc.store.DeleteByPrefix(ctx, subjectPrefix(subjectID)); err != nil {
			logger.Warn("Cache sweep failed, continuing without cache",
				zap.Error(err), zap.String("subjectID", subjectID))
			return compute(ctx)
		}
		if rc.events != nil {
			rc.events.Publish(ctx, EventCacheRefreshed, subjectID)
		}
	}

	generationID, err := meta(ctx)
	if err != nil || generationID == "" {
		logger.Debug("No resolver generation, computing without cache",
			zap.String("subjectID", subjectID), zap.Error(err))
		return compute(ctx)
	}
	key := cacheKey(subjectID, fingerprint, generationID)

	if policy == model.CachePolicyDefault {
		data, err := rc.store.Get(ctx, key)
		if err != nil {
			logger.Warn("Cache read failed, degrading to compute",
				zap.Error(err), zap.String("key", key))
			return compute(ctx)
		}
		if data != nil {
			logger.Debug("Response cache hit", zap.String("key", key))
			return data, nil
		}
		logger.Debug("Response cache miss", zap.String("key", key))
	}

	data, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if err := rc.store.Set(ctx, key, data, rc.ttl); err != nil {
		logger.Warn("Cache write failed, serving uncached response",
			zap.Error(err), zap.String("key", key))
	} else {
		logger.Debug("Response cached", zap.String("key", key))
	}
	return data, nil
}
