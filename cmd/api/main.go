package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/app/migrate"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/cache"
	httpx "github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/http"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/repository/postgres"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/auth"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/chat"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/invitation"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/project"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/service/task"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/internal/ws"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/pkg/config"
	"github.com/MahmoudOsama9/Fullstack-TaskMaster/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)

	cacheClient := redis.NewClient(&redis.Options{
		Addr:     cfg.CacheRedisAddr,
		Password: cfg.CacheRedisPass,
		DB:       cfg.CacheRedisDB,
	})
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if err := cacheClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("project cache redis unreachable, reads fall through to postgres", "error", err)
	}
	cancelPing()

	projects := cache.New(repo, cacheClient, cfg.CacheTTL, cfg.CacheOpTimeout, log)
	hub := ws.NewHub(log)

	authSvc := auth.New(repo, log, cfg)
	projectSvc := project.New(projects, repo, hub, log)
	taskSvc := task.New(projects, repo, projects, hub, log)
	invitationSvc := invitation.New(projects, repo, repo, projects, projectSvc, hub, log)
	chatSvc := chat.New(projects, repo, hub, log)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, authSvc, projectSvc, taskSvc, invitationSvc, chatSvc, hub, limiter, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
