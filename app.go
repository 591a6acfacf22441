package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/handlers"
	"github.com/collegenews/collegenews/backend/go-services/internal/admins"
	"github.com/collegenews/collegenews/backend/go-services/internal/article/handler"
	"github.com/collegenews/collegenews/backend/go-services/internal/article/repository"
	"github.com/collegenews/collegenews/backend/go-services/internal/article/service"
	"github.com/collegenews/collegenews/backend/go-services/internal/config"
	"github.com/collegenews/collegenews/backend/go-services/internal/database"
	"github.com/collegenews/collegenews/backend/go-services/internal/storage"
	"github.com/collegenews/collegenews/backend/go-services/internal/tokens"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/collegenews/collegenews/backend/go-services/pkg/middleware"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

// backends are the stores selected by configuration.
type backends struct {
	articles repository.Repository
	admins   admins.Repository
	store    storage.Store
	redis    *redis.Client
	// checks feed /ready; each returns nil when the dependency is usable.
	checks  map[string]func(context.Context) error
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{checks: map[string]func(context.Context) error{}}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
		db, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := db.Migrate(ctx); err != nil {
			b.Close()
			return nil, err
		}
		b.articles = repository.NewSQLRepo(db)
		b.admins = admins.NewSQLRepository(db)
		b.checks["database"] = db.PingContext
		logger.Infof("using %s database", cfg.Database.Driver)
	case "mongo":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, func(attempt int, err error) {
			logger.Warnf("attempt %d/5: failed to connect to MongoDB: %v", attempt, err)
		})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		mdb := client.Database(cfg.MongoDB.Database)
		if b.articles, err = repository.NewMongoRepo(ctx, mdb); err != nil {
			b.Close()
			return nil, err
		}
		if b.admins, err = admins.NewMongoRepository(ctx, mdb); err != nil {
			b.Close()
			return nil, err
		}
		b.checks["database"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Infof("using MongoDB database %s", cfg.MongoDB.Database)
	case "memory":
		b.articles = repository.NewMemoryRepo()
		b.admins = admins.NewMemoryRepository()
		logger.Warnf("using in-memory storage; data is lost on restart")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.store = store
	if p, ok := store.(pinger); ok {
		b.checks["storage"] = p.Ping
	}

	if cfg.Redis.Host != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client := b.redis
		b.closers = append(b.closers, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return b, nil
}

// corsMiddleware allows browser clients on any origin; tokens travel in the
// Authorization header, not cookies.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func securityHeaders(cfg config.ServerConfig) gin.HandlerFunc {
	sc := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}
	// only when TLS terminates here, not behind a proxy
	if cfg.SSL {
		sc.SSLRedirect = true
		sc.STSSeconds = 31536000
		sc.STSIncludeSubdomains = true
	}
	return secure.New(sc)
}

func newRouter(cfg *config.Config, b *backends, adminSvc *admins.Service, iss *tokens.Issuer) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(securityHeaders(cfg.Server), corsMiddleware(), logger.Middleware(), gin.Recovery())

	// Optional global rate limiter (per-IP; per-user once authenticated)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && b.redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(b.redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter: redis (%v rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter: memory (%v rps, burst %d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when every configured dependency answers
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}
		for name, check := range b.checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Warnf("readiness: %s: %v", name, err)
			}
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	auth := middleware.AuthMiddleware(iss)
	handlers.NewAuthHandler(adminSvc, iss).Register(r.Group("/api"), auth)
	handler.RegisterArticleRoutes(r, service.New(b.articles, b.store), b.store, auth)
	return r
}
