// server runs the collection tracker API: catalog queries, card code
// resolution, duplicate checks, collection CRUD and statistics, CSV
// import/export, and Prometheus metrics.
//
// Configuration comes from the environment:
//
//	PORT               listen port (default 8080)
//	DATABASE_PATH      SQLite database path (default ./data/tracker.db)
//	ADMIN_KEY          bearer key for admin routes; unset disables auth
//	CORS_ORIGINS       comma-separated allowed origins (default *)
//	IMPORT_CONCURRENCY import write batches in flight (default 4)
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkeller/swu-tracker/backend/internal/api/handlers"
	"github.com/mkeller/swu-tracker/backend/internal/database"
	"github.com/mkeller/swu-tracker/backend/internal/metrics"
	"github.com/mkeller/swu-tracker/backend/internal/middleware"
	"github.com/mkeller/swu-tracker/backend/internal/services"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	dbPath := envOr("DATABASE_PATH", "./data/tracker.db")
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := database.RunMigrations(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()
	catalog := services.NewCatalogStore(db)
	worker := services.NewImportWorker(db)
	worker.Start()
	defer worker.Stop()

	metrics.UpdateCollectionMetrics(db)

	cardsHandler := handlers.NewCardsHandler(catalog)
	collectionHandler := handlers.NewCollectionHandler(catalog)
	importsHandler := handlers.NewImportsHandler(worker)
	adminHandler := handlers.NewAdminHandler(catalog)

	router := gin.Default()
	router.Use(metrics.HTTPMetrics())

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", adminHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/auth/status", middleware.GetAuthStatus)
	router.POST("/api/auth/verify", middleware.VerifyAdminKey)

	api := router.Group("/api")
	{
		api.GET("/cards", cardsHandler.ListCards)
		api.GET("/cards/resolve/:code", cardsHandler.ResolveCode)
		api.POST("/cards/check-duplicates", cardsHandler.CheckDuplicates)

		api.GET("/collection", collectionHandler.ListCollection)
		api.PUT("/collection", collectionHandler.UpsertEntry)
		api.DELETE("/collection/:key", collectionHandler.DeleteEntry)
		api.GET("/collection/stats/:set", collectionHandler.GetStats)
		api.GET("/collection/summary", collectionHandler.GetSummary)
		api.GET("/collection/export", collectionHandler.ExportCSV)
	}

	// Imports are rate limited: parsing a large CSV is the most expensive
	// request the server takes.
	importLimiter := middleware.NewRateLimiter(30, 5)
	imports := router.Group("/api/imports")
	imports.Use(importLimiter.Middleware())
	{
		imports.POST("", importsHandler.CreateJob)
		imports.POST("/preview", importsHandler.Preview)
		imports.GET("/current", importsHandler.GetCurrentJob)
		imports.GET("/:id", importsHandler.GetJob)
		imports.DELETE("/:id", importsHandler.DeleteJob)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AdminKeyAuth())
	{
		admin.POST("/catalog", adminHandler.LoadCatalog)
		admin.POST("/metrics/refresh", adminHandler.RefreshMetrics)
	}

	srv := &http.Server{
		Addr:    ":" + envOr("PORT", "8080"),
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
