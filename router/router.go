// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bastionlabs/bastion/api/controller"
	"github.com/bastionlabs/bastion/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	controllers.Permission.RegisterRoutes(api)
	controllers.Audit.RegisterRoutes(api)

	return router
}
