package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"afterschool/internal/academic"
	"afterschool/internal/announcement"
	"afterschool/internal/attendance"
	"afterschool/internal/auth"
	"afterschool/internal/config"
	"afterschool/internal/grades"
	"afterschool/internal/httpapi"
	"afterschool/internal/httpmiddleware"
	"afterschool/internal/logging"
	"afterschool/internal/member"
	"afterschool/internal/metrics"
	"afterschool/internal/roles"
	"afterschool/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("detail", w))
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

func run(cfg config.App, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	dsn := cfg.DatabaseURL
	if cfg.DatabaseDriver == store.DriverSQLite {
		dsn = store.SQLiteDSN(cfg.DatabaseURL)
	}
	db, err := store.NewDB(ctx, cfg.DatabaseDriver, dsn, m)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	rs := roles.NewService(db, logger, roles.WithBcryptCost(cfg.BcryptCost))
	created, err := rs.EnsureSuperAdmin(ctx, roles.Admin{
		Name:     cfg.AdminName,
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Warn("seeded default super admin, change its password", zap.String("username", cfg.AdminUsername))
	}

	var (
		redis   *store.Redis
		revoker auth.Revoker
	)
	switch cfg.RevocationBackend {
	case "memory":
		revoker = auth.NewMemoryRevoker()
	default:
		redis = store.NewRedis(cfg.RedisAddr)
		defer func() { _ = redis.Close() }()
		revoker = auth.NewRedisRevoker(redis.Client, "afterschool:revoked:")
	}

	authSvc := auth.NewService(rs, revoker, auth.Config{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		TTL:        cfg.TokenTTL,
	}, logger)

	srv := httpapi.New(httpapi.Deps{
		Members:       member.NewService(db, logger, roles.TeacherTable, roles.StudentTable),
		Roles:         rs,
		Academic:      academic.NewService(db, logger),
		Attendance:    attendance.NewService(db, logger),
		Grades:        grades.NewService(db, logger),
		Announcements: announcement.NewService(db, logger),
		Auth:          authSvc,
		DB:            db,
		Redis:         redis,
		Log:           logger,
		Metrics:       m,
		LoginLimiter:  httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin),
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.Production(),
	})

	router, err := srv.Router()
	if err != nil {
		return err
	}
	hs := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", hs.Addr), zap.String("driver", cfg.DatabaseDriver))
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		logger.Warn("forced shutdown", zap.Error(err))
	}
	return nil
}
