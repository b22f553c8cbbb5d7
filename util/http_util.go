// api/util/http_util.go
package util

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	perm_errors "github.com/bastionlabs/bastion/api/errors"
	logger "github.com/bastionlabs/bastion/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// RespondWithServiceError maps sentinel errors onto HTTP statuses: entity
// misses referenced directly by request parameters become 404, everything
// else is a server error.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, perm_errors.ErrUserNotFound):
		RespondWithError(c, http.StatusNotFound, "User not found", err)
	case errors.Is(err, perm_errors.ErrAssetNotFound):
		RespondWithError(c, http.StatusNotFound, "Asset not found", err)
	case errors.Is(err, perm_errors.ErrAccountNotFound):
		RespondWithError(c, http.StatusNotFound, "Account not found", err)
	case errors.Is(err, perm_errors.ErrNodeNotFound):
		RespondWithError(c, http.StatusNotFound, "Node not found", err)
	case errors.Is(err, perm_errors.ErrResolverFailure):
		RespondWithError(c, http.StatusInternalServerError, "Grant resolver failure", err)
	case errors.Is(err, perm_errors.ErrDatabaseOperation):
		RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error", perm_errors.ErrInternalServer)
	}
}
