// api/controller/controllers.go
package controller

import (
	"github.com/bastionlabs/bastion/api/audit"
	"github.com/bastionlabs/bastion/api/service"
)

// Controllers aggregates the API controllers for route registration.
type Controllers struct {
	Permission *PermissionController
	Audit      *AuditController
}

func InitializeControllers(permissionService service.IPermissionService, responseCache *service.ResponseCache, auditService audit.Service) *Controllers {
	return &Controllers{
		Permission: NewPermissionController(permissionService, responseCache),
		Audit:      NewAuditController(auditService),
	}
}
