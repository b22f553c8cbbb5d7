// test/mock/permission.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bastionlabs/bastion/api/model"
)

// MockPermissionService is a mock implementation of service.IPermissionService
type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) ListAssets(ctx context.Context, userID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error) {
	args := m.Called(ctx, userID, search, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.GrantedAsset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ListNodes(ctx context.Context, userID string, policy model.CachePolicy) ([]model.GrantedNode, error) {
	args := m.Called(ctx, userID, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.GrantedNode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ListNodesAsTree(ctx context.Context, userID string, policy model.CachePolicy) ([]model.TreeNode, error) {
	args := m.Called(ctx, userID, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.TreeNode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ListNodesWithAssets(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.GrantedNode, error) {
	args := m.Called(ctx, userID, accountID, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.GrantedNode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ListNodesWithAssetsAsTree(ctx context.Context, userID, accountID string, policy model.CachePolicy) ([]model.TreeNode, error) {
	args := m.Called(ctx, userID, accountID, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.TreeNode), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ListNodeAssets(ctx context.Context, userID, nodeID, search string, policy model.CachePolicy) ([]model.GrantedAsset, error) {
	args := m.Called(ctx, userID, nodeID, search, policy)
	if v := args.Get(0); v != nil {
		return v.([]model.GrantedAsset), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPermissionService) ValidatePermission(ctx context.Context, userID, assetID, accountID, actionName string, policy model.CachePolicy) (bool, error) {
	args := m.Called(ctx, userID, assetID, accountID, actionName, policy)
	return args.Bool(0), args.Error(1)
}

func (m *MockPermissionService) PermissionActions(ctx context.Context, userID, assetID, accountID string) (model.Action, error) {
	args := m.Called(ctx, userID, assetID, accountID)
	return args.Get(0).(model.Action), args.Error(1)
}

func (m *MockPermissionService) CacheGeneration(ctx context.Context, userID string, policy model.CachePolicy) (string, error) {
	args := m.Called(ctx, userID, policy)
	return args.String(0), args.Error(1)
}
