// api/service/permission_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bastionlabs/bastion/api/audit"
	perm_errors "github.com/bastionlabs/bastion/api/errors"
	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
	"github.com/bastionlabs/bastion/api/util"
)

// EventPermissionChecked is published for every point-query decision.
const EventPermissionChecked = "permission.checked"

// IPermissionService defines the read operations over a user's effective
// access.
type IPermissionService interface {
	ListAssets(ctx context.Context, userID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error)
	ListNodes(ctx context.Context, userID string, policy model.CachePolicy) ([]model.GrantedNode, error)
	ListNodesAsTree(ctx context.Context, userID string, policy model.CachePolicy) ([]model.TreeNode, error)
	ListNodesWithAssets(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.GrantedNode, error)
	ListNodesWithAssetsAsTree(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.TreeNode, error)
	ListNodeAssets(ctx context.Context, userID, nodeID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error)
	ValidatePermission(ctx context.Context, userID, assetID, accountID, actionName string, policy model.CachePolicy) (bool, error)
	PermissionActions(ctx context.Context, userID, assetID, accountID string) (model.Action, error)
	CacheGeneration(ctx context.Context, userID string, policy model.CachePolicy) (string, error)
}

// PermissionService wires the grant resolver, entity lookups and the merge
// stages together.
type PermissionService struct {
	resolverFor     ResolverFactory
	entities        EntityLookup
	assetMerger     *AssetMerger
	nodeBuilder     *NodeTreeBuilder
	nodeAssetMerger *NodeAssetMerger
	eventBus        *util.EventBus
}

var _ IPermissionService = &PermissionService{}

// NewPermissionService creates a new instance of PermissionService
func NewPermissionService(resolverFor ResolverFactory, entities EntityLookup, eventBus *util.EventBus, auditSvc audit.Service) *PermissionService {
	service := &PermissionService{
		resolverFor:     resolverFor,
		entities:        entities,
		assetMerger:     NewAssetMerger(entities),
		nodeBuilder:     NewNodeTreeBuilder(entities),
		nodeAssetMerger: NewNodeAssetMerger(entities),
		eventBus:        eventBus,
	}

	if eventBus != nil && auditSvc != nil {
		eventBus.Subscribe(EventPermissionChecked, func(ctx context.Context, event util.Event) error {
			decision, ok := event.Payload.(audit.DecisionLog)
			if !ok {
				return nil
			}
			return auditSvc.LogDecision(context.WithoutCancel(ctx), decision)
		})
		eventBus.Subscribe(EventCacheRefreshed, func(ctx context.Context, event util.Event) error {
			subjectID, _ := event.Payload.(string)
			return auditSvc.LogDecision(context.WithoutCancel(ctx), audit.DecisionLog{
				Timestamp: time.Now().UTC(),
				UserID:    subjectID,
				Action:    "cache_refresh",
				Granted:   true,
			})
		})
	}

	return service
}

func (s *PermissionService) ListAssets(ctx context.Context, userID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error) {
	if _, err := s.entities.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	grants, err := s.resolverFor(userID, policy).GetAssets(ctx)
	if err != nil {
		return nil, err
	}
	return s.assetMerger.Merge(ctx, grants, search)
}

func (s *PermissionService) ListNodes(ctx context.Context, userID string, policy model.CachePolicy) ([]model.GrantedNode, error) {
	if _, err := s.entities.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	grants, err := s.resolverFor(userID, policy).GetNodesWithAssets(ctx)
	if err != nil {
		return nil, err
	}
	return s.nodeBuilder.Build(ctx, grants)
}

func (s *PermissionService) ListNodesAsTree(ctx context.Context, userID string, policy model.CachePolicy) ([]model.TreeNode, error) {
	nodes, err := s.ListNodes(ctx, userID, policy)
	if err != nil {
		return nil, err
	}
	return FlattenNodes(nodes), nil
}

func (s *PermissionService) ListNodesWithAssets(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.GrantedNode, error) {
	if _, err := s.entities.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	resolver := s.resolverFor(userID, policy)
	if accountID != "" {
		accounts, err := s.entities.AccountsByIDs(ctx, []string{accountID})
		if err != nil {
			return nil, err
		}
		if _, ok := accounts[accountID]; !ok {
			return nil, perm_errors.ErrAccountNotFound
		}
		resolver.FilterPermissions([]string{accountID})
	}
	grants, err := resolver.GetNodesWithAssets(ctx)
	if err != nil {
		return nil, err
	}
	return s.nodeAssetMerger.Merge(ctx, grants)
}

func (s *PermissionService) ListNodesWithAssetsAsTree(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.TreeNode, error) {
	nodes, err := s.ListNodesWithAssets(ctx, userID, accountID, policy)
	if err != nil {
		return nil, err
	}
	return FlattenNodesWithAssets(nodes), nil
}

// ListNodeAssets returns the hydrated assets granted under a single node.
// The synthetic node ids resolve to the ungrouped and empty keys; any other
// id must exist in storage.
func (s *PermissionService) ListNodeAssets(ctx context.Context, userID, nodeID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error) {
	if _, err := s.entities.UserByID(ctx, userID); err != nil {
		return nil, err
	}
	grants, err := s.resolverFor(userID, policy).GetNodesWithAssets(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.nodeKeyForID(ctx, nodeID, grants)
	if err != nil {
		return nil, err
	}

	assetGrants := make([]model.AssetGrant, 0)
	for _, g := range grants {
		if g.Key != key {
			continue
		}
		for assetID, accounts := range g.Assets {
			assetGrants = append(assetGrants, model.AssetGrant{AssetID: assetID, Accounts: accounts})
		}
		break
	}
	return s.assetMerger.Merge(ctx, assetGrants, search)
}

func (s *PermissionService) nodeKeyForID(ctx context.Context, nodeID string, grants []model.NodeGrant) (string, error) {
	switch nodeID {
	case model.UngroupedNodeID:
		keys := make([]string, 0, len(grants))
		for _, g := range grants {
			keys = append(keys, g.Key)
		}
		return UngroupedKey(keys), nil
	case model.EmptyNodeID:
		return model.EmptyNodeKey, nil
	}
	node, err := s.entities.NodeByID(ctx, nodeID)
	if err != nil {
		return "", err
	}
	return node.Key, nil
}

// ValidatePermission reports whether the user may perform the named action
// on the asset through the account. A zero bitmask and an absent pair are
// equally denied.
func (s *PermissionService) ValidatePermission(ctx context.Context, userID, assetID, accountID, actionName string, policy model.CachePolicy) (bool, error) {
	mask, err := s.pairActions(ctx, userID, assetID, accountID, policy)
	if err != nil {
		return false, err
	}
	granted := mask.Contains(actionName)

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, EventPermissionChecked, audit.DecisionLog{
			Timestamp: time.Now().UTC(),
			UserID:    userID,
			AssetID:   assetID,
			AccountID: accountID,
			Action:    actionName,
			Granted:   granted,
			Bitmask:   uint32(mask),
		})
	}
	logger.Debug("Permission validated",
		zap.String("userID", userID),
		zap.String("assetID", assetID),
		zap.String("accountID", accountID),
		zap.String("action", actionName),
		zap.Bool("granted", granted))
	return granted, nil
}

// PermissionActions returns the raw bitmask for the (user, asset, account)
// triple, zero when the pair is absent.
func (s *PermissionService) PermissionActions(ctx context.Context, userID, assetID, accountID string) (model.Action, error) {
	mask, err := s.pairActions(ctx, userID, assetID, accountID, model.CachePolicyDefault)
	if err != nil {
		return 0, err
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, EventPermissionChecked, audit.DecisionLog{
			Timestamp: time.Now().UTC(),
			UserID:    userID,
			AssetID:   assetID,
			AccountID: accountID,
			Action:    "actions",
			Granted:   mask != model.ActionNone,
			Bitmask:   uint32(mask),
		})
	}
	return mask, nil
}

// pairActions resolves the triple's existence, then looks the bitmask up in
// the resolved grant set.
func (s *PermissionService) pairActions(ctx context.Context, userID, assetID, accountID string, policy model.CachePolicy) (model.Action, error) {
	if _, err := s.entities.UserByID(ctx, userID); err != nil {
		return 0, err
	}
	assets, err := s.entities.AssetsByIDs(ctx, []string{assetID})
	if err != nil {
		return 0, err
	}
	if _, ok := assets[assetID]; !ok {
		return 0, perm_errors.ErrAssetNotFound
	}
	accounts, err := s.entities.AccountsByIDs(ctx, []string{accountID})
	if err != nil {
		return 0, err
	}
	if _, ok := accounts[accountID]; !ok {
		return 0, perm_errors.ErrAccountNotFound
	}

	grants, err := s.resolverFor(userID, policy).GetAssets(ctx)
	if err != nil {
		return 0, err
	}
	for _, g := range grants {
		if g.AssetID == assetID {
			return g.Accounts[accountID], nil
		}
	}
	return 0, nil
}

func (s *PermissionService) CacheGeneration(ctx context.Context, userID string, policy model.CachePolicy) (string, error) {
	meta, err := s.resolverFor(userID, policy).CacheMeta(ctx)
	if err != nil || meta == nil {
		return "", err
	}
	return meta.GenerationID, nil
}
