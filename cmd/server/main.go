package main

import (
	"context"
	"database/sql"
	"log"

	"daysegment/backend/internal/config"
	"daysegment/backend/internal/db"
	"daysegment/backend/internal/handler"
	"daysegment/backend/internal/offline"
	"daysegment/backend/internal/repository"
	"daysegment/backend/internal/router"
	"daysegment/backend/internal/service"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	taskRepo := repository.NewTaskRepository(database)
	subtaskRepo := repository.NewSubtaskRepository(database)
	segmentRepo := repository.NewSegmentRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	collectionRepo := repository.NewCollectionRepository(database)
	templateRepo := repository.NewTemplateRepository(database)
	completionRepo := repository.NewCompletionRepository(database)
	settingRepo := repository.NewSettingRepository(database)

	authService := service.NewAuthService(userRepo, segmentRepo, cfg.JWTSecret, cfg.TokenTTL)
	taskService := service.NewTaskService(taskRepo, segmentRepo, completionRepo)
	subtaskService := service.NewSubtaskService(taskRepo, subtaskRepo)
	segmentService := service.NewSegmentService(segmentRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	collectionService := service.NewCollectionService(collectionRepo, taskRepo)
	templateService := service.NewTemplateService(templateRepo, taskRepo, subtaskRepo)
	settingsService := service.NewSettingsService(settingRepo)

	gateway := setupGateway(cfg, database)

	engine := router.New(authService, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Task:       handler.NewTaskHandler(taskService),
		Subtask:    handler.NewSubtaskHandler(subtaskService),
		Segment:    handler.NewSegmentHandler(segmentService),
		Category:   handler.NewCategoryHandler(categoryService),
		Collection: handler.NewCollectionHandler(collectionService),
		Template:   handler.NewTemplateHandler(templateService),
		Settings:   handler.NewSettingsHandler(settingsService),
		Analytics:  handler.NewAnalyticsHandler(completionRepo, taskRepo, segmentRepo),
		Push:       handler.NewPushHandler(),
	}, cfg.CORSOrigins, gateway)

	log.Printf("backend listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

// setupGateway wires the offline asset gateway. Precache failures are
// logged, not fatal: the gateway still serves network-first without a
// warm cache, matching a worker whose install did not finish.
func setupGateway(cfg config.Config, database *sql.DB) *offline.Controller {
	store := offline.NewStore(database)

	gateway, err := offline.NewController(store, cfg.AssetUpstream, offline.Options{
		Version:           cfg.CacheVersion,
		NamePrefix:        cfg.CacheNamePrefix,
		OfflinePage:       cfg.OfflinePagePath,
		APIPathSegment:    cfg.APIPathSegment,
		DisabledHosts:     cfg.DisabledHosts,
		PreviewHostSuffix: cfg.PreviewHostSuffix,
	})
	if err != nil {
		log.Fatalf("build offline gateway: %v", err)
	}

	ctx := context.Background()
	manifest, err := offline.LoadManifest(cfg.ManifestPath)
	if err != nil {
		log.Printf("offline gateway: %v; serving without precache", err)
	} else if err := gateway.Install(ctx, manifest); err != nil {
		log.Printf("offline gateway install: %v; serving without precache", err)
	}
	if err := gateway.Activate(ctx); err != nil {
		log.Printf("offline gateway activate: %v", err)
	}

	return gateway
}
