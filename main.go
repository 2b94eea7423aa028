package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/coedit/coedit/handlers"
	"github.com/coedit/coedit/internal/config"
	"github.com/coedit/coedit/internal/database"
	"github.com/coedit/coedit/internal/document/repository"
	docservice "github.com/coedit/coedit/internal/document/service"
	"github.com/coedit/coedit/internal/realtime"
	"github.com/coedit/coedit/internal/sessions"
	"github.com/coedit/coedit/internal/storage"
	"github.com/coedit/coedit/internal/tokens"
	"github.com/coedit/coedit/internal/users"
	"github.com/coedit/coedit/pkg/logger"
	"github.com/coedit/coedit/pkg/metrics"
	"github.com/coedit/coedit/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate limiter and token blacklist can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter. Installed before authentication, so every
	// request here is keyed by client IP; the per-subject key applies only
	// when the middleware runs after auth.
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Prefer Redis-backed refresh sessions when available
	var sessionsSvc *sessions.Service
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("using Redis for session storage")
	}

	// MongoDB-backed persistence
	ctx := context.Background()
	var userSvc *users.Service
	var docRepo repository.Repository
	var mongoUp bool
	if cfg.MongoDB.URI != "" {
		client, errConn := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
		if errConn != nil {
			logger.Warnf("continuing without MongoDB: %v", errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
			docRepo = repository.NewMongoRepo(db.Collection("documents"))
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}
			mongoUp = true
		}
	}

	// In-memory fallbacks keep the service usable without external stores
	// (single-instance dev/test only; state is lost on restart).
	if userSvc == nil {
		logger.Warnf("MongoDB unavailable; using in-memory user store")
		userSvc = users.NewService(users.NewMemoryUserRepository())
	}
	if docRepo == nil {
		logger.Warnf("MongoDB unavailable; using in-memory document store")
		docRepo = repository.NewMemoryRepo()
	}
	if sessionsSvc == nil {
		logger.Warnf("no Redis or MongoDB; refresh sessions are process-local")
		sessionsSvc = sessions.NewService(sessions.NewMemoryRepository())
	}
	if redisClient != nil {
		sessionsSvc.UseBlacklist(sessions.NewBlacklist(redisClient, ""))
	}

	docSvc := docservice.NewService(docRepo, userSvc)
	verifier := tokens.NewVerifier(cfg.JWT.Secret)

	// Optional snapshot export store
	var snapshots *storage.SnapshotStore
	if cfg.MinIO.Endpoint != "" {
		snapshots, err = storage.NewSnapshotStore(&cfg.MinIO)
		if err != nil {
			logger.Warnf("snapshot store unavailable: %v", err)
			snapshots = nil
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the configured dependencies are reachable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if cfg.MongoDB.URI != "" {
			deps["mongodb"] = mongoUp
			if !mongoUp {
				ready = false
			}
		} else {
			deps["mongodb"] = true
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}
		deps["storage"] = snapshots != nil || cfg.MinIO.Endpoint == ""

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// HTTP surface
	handlers.NewAuthHandler(cfg, userSvc, sessionsSvc).Register(r.Group("/"))
	api := r.Group("/api")
	handlers.NewDocumentHandler(docSvc, snapshots).Register(api, middleware.AuthMiddleware(verifier, sessionsSvc))
	handlers.RegisterSwagger(r)

	// realtime relay
	registry := realtime.NewRegistry()
	realtime.RegisterRoutes(r, registry, realtime.NewDispatcher(registry))

	// Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting coedit on %s (mongo=%v redis=%v snapshots=%v)", addr, mongoUp, redisClient != nil, snapshots != nil)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
