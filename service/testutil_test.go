package service

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	perm_errors "github.com/bastionlabs/bastion/api/errors"
	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
)

func TestMain(m *testing.M) {
	logger.InitLogger("")
	os.Exit(m.Run())
}

// fakeEntities is a map-backed EntityLookup.
type fakeEntities struct {
	users     map[string]model.User
	assets    map[string]model.Asset
	accounts  map[string]model.Account
	nodes     map[string]model.Node // by key
	nodesByID map[string]model.Node
	err       error
}

func (f *fakeEntities) UserByID(ctx context.Context, userID string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[userID]; ok {
		return &u, nil
	}
	return nil, perm_errors.ErrUserNotFound
}

func (f *fakeEntities) AssetsByIDs(ctx context.Context, assetIDs []string) (map[string]model.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]model.Asset)
	for _, id := range assetIDs {
		if a, ok := f.assets[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeEntities) AccountsByIDs(ctx context.Context, accountIDs []string) (map[string]model.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]model.Account)
	for _, id := range accountIDs {
		if a, ok := f.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (f *fakeEntities) NodesByKeys(ctx context.Context, keys []string) (map[string]model.Node, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]model.Node)
	for _, key := range keys {
		if n, ok := f.nodes[key]; ok {
			out[key] = n
		}
	}
	return out, nil
}

func (f *fakeEntities) NodeByID(ctx context.Context, nodeID string) (*model.Node, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n, ok := f.nodesByID[nodeID]; ok {
		return &n, nil
	}
	return nil, perm_errors.ErrNodeNotFound
}

func (f *fakeEntities) SearchAssetIDs(ctx context.Context, assetIDs []string, term string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	term = strings.ToLower(term)
	out := make(map[string]struct{})
	for _, id := range assetIDs {
		a, ok := f.assets[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(a.Hostname), term) ||
			strings.Contains(strings.ToLower(a.IP), term) {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// fakeResolver is a canned GrantResolver recording call counts and filters.
type fakeResolver struct {
	assets   []model.AssetGrant
	nodes    []model.NodeGrant
	meta     *model.CacheMeta
	err      error
	filtered []string

	assetCalls int
	nodeCalls  int
	metaCalls  int
}

func (f *fakeResolver) GetAssets(ctx context.Context) ([]model.AssetGrant, error) {
	f.assetCalls++
	return f.assets, f.err
}

func (f *fakeResolver) GetNodesWithAssets(ctx context.Context) ([]model.NodeGrant, error) {
	f.nodeCalls++
	return f.nodes, f.err
}

func (f *fakeResolver) FilterPermissions(accountIDs []string) {
	f.filtered = accountIDs
}

func (f *fakeResolver) CacheMeta(ctx context.Context) (*model.CacheMeta, error) {
	f.metaCalls++
	return f.meta, f.err
}

func factoryFor(r GrantResolver) ResolverFactory {
	return func(userID string, policy model.CachePolicy) GrantResolver { return r }
}

// memStore is an in-memory Store for cache-layer tests.
type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte

	gets    int
	sets    int
	deletes int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string][]byte)}
}

func (s *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	data, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (s *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.entries[key] = value
	return nil
}

func (s *memStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// failStore errors on every operation.
type failStore struct{ err error }

func (s *failStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, s.err }
func (s *failStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.err
}
func (s *failStore) DeleteByPrefix(ctx context.Context, prefix string) error { return s.err }
