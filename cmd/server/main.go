package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codegen-server/internal/authutils"
	"codegen-server/internal/config"
	"codegen-server/internal/database"
	"codegen-server/internal/delivery"
	"codegen-server/internal/handler"
	"codegen-server/internal/logger"
	"codegen-server/internal/messaging"
	"codegen-server/internal/middleware"
	"codegen-server/internal/parser"
	"codegen-server/internal/provider"
	"codegen-server/internal/repository"
	"codegen-server/internal/service"
	"codegen-server/internal/validator"
	"codegen-server/migrations"

	"github.com/docker/docker/client"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  "codegen-server",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("encoding", cfg.LogEncoding))
	zap.L().Info("Configuration loaded", zap.String("dsn", cfg.GetMaskedDSN()))

	// --- PostgreSQL ---
	pgPool, err := database.Connect(database.Config{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	}, log)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	migrator := database.NewMigrator(database.MigratorConfig{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, pgPool)
	if err := migrator.Up(); err != nil {
		zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
	}

	// --- Redis (опционально: реестр preview-идентификаторов) ---
	var previewRegistry delivery.PreviewRegistry
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		pingCancel()
		defer redisClient.Close()
		zap.L().Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
		previewRegistry = delivery.NewRedisPreviewRegistry(redisClient, log)
	}

	// --- RabbitMQ (опционально: события жизненного цикла) ---
	var publisher messaging.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqConn, err := connectRabbitMQ(cfg.RabbitMQURL, log)
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		publisher, err = messaging.NewRabbitMQEventPublisher(mqConn)
		if err != nil {
			zap.L().Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer publisher.Close()
		zap.L().Info("Connected to RabbitMQ")
	}

	// --- Docker (деплой) ---
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		zap.L().Warn("Docker client unavailable, deploy mode will fail", zap.Error(err))
		dockerClient = nil
	}

	// --- Dependency Injection ---
	aiClient, err := provider.NewClient(cfg, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize generation backend", zap.Error(err))
	}
	gateway := provider.NewGateway(aiClient, log)

	contentParser := parser.New()

	codeValidator := validator.New(validator.Options{
		Runner:       validator.ExecRunner{Timeout: cfg.SyntaxCheckTimeout},
		NodeBinary:   cfg.NodeBinary,
		PythonBinary: cfg.PythonBinary,
		StagingRoot:  cfg.StagingDir,
	}, log)

	previewStrategy := delivery.NewPreviewStrategy(cfg.PreviewBaseURL, cfg.PreviewTTL, previewRegistry, log)
	var deployDocker delivery.DockerClient
	if dockerClient != nil {
		deployDocker = dockerClient
	}
	deployStrategy := delivery.NewDeployStrategy(deployDocker, cfg.DeploymentsDir, cfg.AppsDomain, cfg.DeployTimeout, log)
	downloadStrategy := delivery.NewDownloadStrategy(cfg.DownloadsDir, cfg.DownloadsBaseURL, log)
	router := delivery.NewRouter(previewStrategy, deployStrategy, downloadStrategy, log)

	repo := repository.NewPgGenerationRepository(pgPool, log)
	generationSvc := service.NewGenerationService(repo, gateway, contentParser, codeValidator, router, publisher, log)
	generationHandler := handler.NewGenerationHandler(generationSvc, log)

	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, log)
	if err != nil {
		zap.L().Fatal("Failed to initialize JWT verifier", zap.Error(err))
	}
	authMiddleware := middleware.AuthMiddleware(verifier.VerifyToken, log)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.Use(middleware.ZapLoggingMiddleware(log))
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	engine.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	engine.GET("/health", healthHandler)
	engine.HEAD("/health", healthHandler)

	generationHandler.RegisterRoutes(engine, authMiddleware)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// connectRabbitMQ подключается к RabbitMQ с повторными попытками.
func connectRabbitMQ(url string, log *zap.Logger) (*amqp091.Connection, error) {
	const maxRetries = 10
	const retryDelay = 3 * time.Second

	var conn *amqp091.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		log.Warn("RabbitMQ connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}
