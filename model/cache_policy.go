// api/model/cache_policy.go
package model

// CachePolicy selects per-request response-cache behavior.
type CachePolicy string

const (
	// CachePolicyDefault serves the cache when present, else computes and stores.
	CachePolicyDefault CachePolicy = "default"
	// CachePolicyBypass always computes and never reads or writes the cache.
	CachePolicyBypass CachePolicy = "bypass"
	// CachePolicyRefresh sweeps every cached entry for the subject, then
	// computes and stores.
	CachePolicyRefresh CachePolicy = "refresh"
)

// ParseCachePolicy maps a request parameter onto a policy, treating anything
// unrecognized (including the empty string) as the default policy.
func ParseCachePolicy(s string) CachePolicy {
	switch CachePolicy(s) {
	case CachePolicyBypass:
		return CachePolicyBypass
	case CachePolicyRefresh:
		return CachePolicyRefresh
	default:
		return CachePolicyDefault
	}
}
