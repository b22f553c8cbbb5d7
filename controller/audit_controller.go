// api/controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bastionlabs/bastion/api/audit"
	"github.com/bastionlabs/bastion/api/util"
	helper_util "github.com/bastionlabs/bastion/api/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit/decisions", ac.QueryDecisions)
}

// QueryDecisions endpoint. The window defaults to the last 24 hours when
// from/to are omitted.
func (ac *AuditController) QueryDecisions(c *gin.Context) {
	now := time.Now()
	from, err := helper_util.ParseTimeOrDefault(c.Query("from"), now.Add(-24*time.Hour))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp", err)
		return
	}
	to, err := helper_util.ParseTimeOrDefault(c.Query("to"), now)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp", err)
		return
	}

	logs, err := ac.auditService.QueryDecisions(c, from, to, c.Query("user_id"), c.Query("asset_id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query decision logs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(logs), "results": logs})
}
