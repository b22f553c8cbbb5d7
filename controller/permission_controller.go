// api/controller/permission_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bastionlabs/bastion/api/model"
	"github.com/bastionlabs/bastion/api/service"
	"github.com/bastionlabs/bastion/api/util"
	helper_util "github.com/bastionlabs/bastion/api/util/helper"
)

type PermissionController struct {
	permissionService service.IPermissionService
	responseCache     *service.ResponseCache
}

func NewPermissionController(permissionService service.IPermissionService, responseCache *service.ResponseCache) *PermissionController {
	return &PermissionController{
		permissionService: permissionService,
		responseCache:     responseCache,
	}
}

// RegisterRoutes registers the API routes for user permissions
func (pc *PermissionController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users/:user_id")
	{
		users.GET("/assets", pc.ListUserAssets)
		users.GET("/nodes", pc.ListUserNodes)
		users.GET("/nodes/tree", pc.ListUserNodesAsTree)
		users.GET("/nodes-with-assets", pc.ListUserNodesWithAssets)
		users.GET("/nodes-with-assets/tree", pc.ListUserNodesWithAssetsAsTree)
		users.GET("/nodes/:node_id/assets", pc.ListUserNodeAssets)
	}
	permissions := r.Group("/permissions")
	{
		permissions.GET("/validate", pc.ValidatePermission)
		permissions.GET("/actions", pc.PermissionActions)
	}
}

// resolveCached runs compute through the response cache layer keyed by the
// request path+query and the user's resolver generation.
func (pc *PermissionController) resolveCached(c *gin.Context, userID string, policy model.CachePolicy, compute service.ComputeFunc) {
	fingerprint := service.Fingerprint(c.Request.URL.Path, c.Request.URL.Query())
	meta := func(ctx context.Context) (string, error) {
		return pc.permissionService.CacheGeneration(ctx, userID, policy)
	}
	payload, err := pc.responseCache.Resolve(c, userID, fingerprint, policy, meta, compute)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// ListUserAssets endpoint
func (pc *PermissionController) ListUserAssets(c *gin.Context) {
	userID := c.Param("user_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))
	search := c.Query("search")
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		assets, err := pc.permissionService.ListAssets(ctx, userID, search, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(helper_util.Paginate(assets, limit, offset))
	})
}

// ListUserNodes endpoint
func (pc *PermissionController) ListUserNodes(c *gin.Context) {
	userID := c.Param("user_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		nodes, err := pc.permissionService.ListNodes(ctx, userID, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(helper_util.Paginate(nodes, limit, offset))
	})
}

// ListUserNodesAsTree endpoint
func (pc *PermissionController) ListUserNodesAsTree(c *gin.Context) {
	userID := c.Param("user_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		tree, err := pc.permissionService.ListNodesAsTree(ctx, userID, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tree)
	})
}

// ListUserNodesWithAssets endpoint
func (pc *PermissionController) ListUserNodesWithAssets(c *gin.Context) {
	userID := c.Param("user_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))
	accountID := c.Query("account_id")
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		nodes, err := pc.permissionService.ListNodesWithAssets(ctx, userID, accountID, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(helper_util.Paginate(nodes, limit, offset))
	})
}

// ListUserNodesWithAssetsAsTree endpoint
func (pc *PermissionController) ListUserNodesWithAssetsAsTree(c *gin.Context) {
	userID := c.Param("user_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))
	accountID := c.Query("account_id")

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		tree, err := pc.permissionService.ListNodesWithAssetsAsTree(ctx, userID, accountID, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tree)
	})
}

// ListUserNodeAssets endpoint
func (pc *PermissionController) ListUserNodeAssets(c *gin.Context) {
	userID := c.Param("user_id")
	nodeID := c.Param("node_id")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))
	search := c.Query("search")
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	pc.resolveCached(c, userID, policy, func(ctx context.Context) ([]byte, error) {
		assets, err := pc.permissionService.ListNodeAssets(ctx, userID, nodeID, search, policy)
		if err != nil {
			return nil, err
		}
		return json.Marshal(helper_util.Paginate(assets, limit, offset))
	})
}

// ValidatePermission endpoint. Malformed asset/account ids are answered
// exactly like a denial, so callers cannot distinguish a bad id from a
// missing permission.
func (pc *PermissionController) ValidatePermission(c *gin.Context) {
	userID := c.Query("user_id")
	assetID := c.Query("asset_id")
	accountID := c.Query("account_id")
	actionName := c.Query("action_name")
	policy := model.ParseCachePolicy(c.Query("cache_policy"))

	if _, err := uuid.Parse(assetID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"msg": false})
		return
	}
	if _, err := uuid.Parse(accountID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"msg": false})
		return
	}

	granted, err := pc.permissionService.ValidatePermission(c, userID, assetID, accountID, actionName, policy)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	if !granted {
		c.JSON(http.StatusForbidden, gin.H{"msg": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": true})
}

// PermissionActions endpoint returns the raw bitmask for one
// (user, asset, account) triple; zero when the pair is absent.
func (pc *PermissionController) PermissionActions(c *gin.Context) {
	userID := c.Query("user_id")
	assetID := c.Query("asset_id")
	accountID := c.Query("account_id")

	actions, err := pc.permissionService.PermissionActions(c, userID, assetID, accountID)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": uint32(actions)})
}
