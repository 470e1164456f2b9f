// cmd/server/main.go - Relief Hub coordination backend
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"relief-hub/internal/config"
	"relief-hub/internal/database"
	"relief-hub/internal/handlers"
	"relief-hub/internal/middleware"
	"relief-hub/internal/services"
	"relief-hub/internal/ws"
	"relief-hub/pkg/auth"
	"relief-hub/pkg/validator"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var (
	serverStartTime = time.Now()

	appVersion = "1.0.0"
	buildTime  = "unknown"
	gitCommit  = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	setupLogging(cfg)
	printStartupInfo(cfg)

	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("error disconnecting from MongoDB: %v", err)
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logrus.Warnf("failed to create some indexes: %v", err)
	}
	indexCancel()

	validator.Init()

	jwtManager := auth.NewJWTManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiration)*time.Hour,
		time.Duration(cfg.RefreshTokenExpiration)*time.Hour,
	)

	userCollection := db.Database.Collection("users")
	resourceCollection := db.Database.Collection("resources")
	alertCollection := db.Database.Collection("alerts")
	submissionCollection := db.Database.Collection("submissions")

	resourceStore := database.NewResourceStore(resourceCollection)
	alertStore := database.NewAlertStore(alertCollection)
	submissionStore := database.NewSubmissionStore(submissionCollection)

	geoMatchService := services.NewGeoMatchService(resourceStore, alertStore, cfg.DefaultSearchRadiusKm)
	moderationService := services.NewModerationService(submissionStore, resourceStore, cfg.EnforceCapacityLimit)
	notificationService := services.NewNotificationService(cfg.AlertWebhookURL)
	statsService := services.NewStatsService(resourceCollection, alertCollection, submissionCollection, userCollection)

	wsHub := ws.NewHub()
	go wsHub.Run()
	defer wsHub.Shutdown()

	authHandler := handlers.NewAuthHandler(userCollection, jwtManager)
	userHandler := handlers.NewUserHandler(userCollection)
	resourceHandler := handlers.NewResourceHandler(resourceCollection, geoMatchService, cfg.EnforceCapacityLimit)
	alertHandler := handlers.NewAlertHandler(alertCollection, geoMatchService, notificationService, wsHub)
	submissionHandler := handlers.NewSubmissionHandler(submissionCollection, moderationService)
	statsHandler := handlers.NewStatsHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	router := setupRouter(cfg, jwtManager, wsHub,
		authHandler, userHandler, resourceHandler, alertHandler, submissionHandler, statsHandler, wsHandler)

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logrus.Infof("relief-hub v%s listening on http://%s:%s", appVersion, cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	wsHub.Broadcast(ws.Message{
		Type: "system",
		Data: map[string]interface{}{"message": "Server is shutting down"},
	})

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Warnf("server forced to shutdown: %v", err)
	} else {
		logrus.Info("server gracefully stopped")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func printStartupInfo(cfg *config.Config) {
	logrus.Infof("Relief Hub Backend v%s | build: %s | commit: %s", appVersion, buildTime, gitCommit)
	logrus.WithFields(logrus.Fields{
		"environment":  cfg.Environment,
		"host":         cfg.Host,
		"port":         cfg.Port,
		"database":     cfg.DatabaseName,
		"cors_origins": cfg.AllowedOrigins,
	}).Info("configuration loaded")
	if cfg.RateLimitEnabled {
		logrus.Infof("rate limit: %d requests per %s", cfg.RateLimitRequests, cfg.RateLimitDuration)
	}
}

func setupRouter(
	cfg *config.Config,
	jwtManager *auth.JWTManager,
	wsHub *ws.Hub,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	resourceHandler *handlers.ResourceHandler,
	alertHandler *handlers.AlertHandler,
	submissionHandler *handlers.SubmissionHandler,
	statsHandler *handlers.StatsHandler,
	wsHandler *handlers.WebSocketHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitDuration)
		router.Use(limiter.RateLimit())
	}

	// Live alert feed
	router.GET("/ws/alerts", wsHandler.HandleAlertFeed)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"stats": gin.H{
				"websocket_connections": wsHub.ConnectionCount(),
			},
		})
	})

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.RefreshToken)

		api.GET("/resources", resourceHandler.GetResources)
		api.GET("/resources/search", resourceHandler.SearchResources)
		api.GET("/resources/:id", resourceHandler.GetResource)

		api.GET("/alerts/active", alertHandler.GetActiveAlerts)
		api.GET("/alerts/location", alertHandler.GetAlertsByLocation)
		api.GET("/alerts/:id", alertHandler.GetAlert)

		// Authenticated routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.GET("/auth/me", authHandler.Me)

			protected.POST("/submissions", submissionHandler.CreateSubmission)
			protected.GET("/submissions/mine", submissionHandler.GetMySubmissions)
		}

		// Moderation routes (admin or volunteer)
		moderation := api.Group("")
		moderation.Use(middleware.AuthMiddleware(jwtManager))
		moderation.Use(middleware.RequireAnyRole("ADMIN", "VOLUNTEER"))
		{
			moderation.GET("/submissions", submissionHandler.GetSubmissions)
			moderation.PATCH("/submissions/:id/approve", submissionHandler.ApproveSubmission)
			moderation.PATCH("/submissions/:id/reject", submissionHandler.RejectSubmission)

			moderation.POST("/resources", resourceHandler.CreateResource)
			moderation.PUT("/resources/:id", resourceHandler.UpdateResource)
			moderation.DELETE("/resources/:id", resourceHandler.DeleteResource)

			moderation.POST("/alerts", alertHandler.CreateAlert)
			moderation.PATCH("/alerts/:id/deactivate", alertHandler.DeactivateAlert)
			moderation.DELETE("/alerts/:id", alertHandler.DeleteAlert)

			moderation.GET("/dashboard/stats", statsHandler.GetDashboardStats)
		}

		// Admin-only routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager))
		admin.Use(middleware.RequireRole("ADMIN"))
		{
			admin.GET("/users", userHandler.GetUsers)
			admin.PUT("/users/:id/role", userHandler.UpdateRole)
			admin.PUT("/users/:id/verify", userHandler.VerifyUser)
			admin.DELETE("/users/:id", userHandler.DeleteUser)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":  "Method not allowed",
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	})

	return router
}
