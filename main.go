package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bastionlabs/bastion/api/audit"
	"github.com/bastionlabs/bastion/api/config"
	"github.com/bastionlabs/bastion/api/controller"
	"github.com/bastionlabs/bastion/api/dao"
	"github.com/bastionlabs/bastion/api/db"
	logger "github.com/bastionlabs/bastion/api/logging"
	"github.com/bastionlabs/bastion/api/model"
	"github.com/bastionlabs/bastion/api/resolver"
	"github.com/bastionlabs/bastion/api/router"
	"github.com/bastionlabs/bastion/api/service"
	"github.com/bastionlabs/bastion/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Audit trail
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Entity lookups and the grant resolver adapter
	entityDAO := dao.NewEntityDAO(db.Neo4jDriver)
	resolverFor := func(userID string, policy model.CachePolicy) service.GrantResolver {
		return resolver.New(db.RedisClient, userID, policy)
	}

	// Initialize services
	permissionService := service.NewPermissionService(resolverFor, entityDAO, eventBus, auditService)
	responseCache := service.NewResponseCache(
		db.NewRedisStore(db.RedisClient),
		viper.GetDuration("redis.responseCacheTTL"),
		eventBus,
	)

	// Initialize controllers
	controllers := controller.InitializeControllers(permissionService, responseCache, auditService)
	engine := router.SetupRouter(controllers, 100, time.Minute) // 100 requests per minute

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
