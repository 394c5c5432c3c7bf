package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-portal/internal/config"
	appHTTP "github.com/cmlabs-hris/leave-portal/internal/handler/http"
	"github.com/cmlabs-hris/leave-portal/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/backend"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/cron"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-portal/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-portal/internal/repository/httpapi"
	portalService "github.com/cmlabs-hris/leave-portal/internal/service/portal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		fmt.Println("Invalid LOG_LEVEL, using info:", cfg.App.LogLevel)
		level = slog.LevelInfo
	}
	logger := appHTTP.NewLogger(cfg, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Portal stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	backendClient := backend.NewClient(cfg.Backend)
	leaveRequestRepo := httpapi.NewLeaveRequestRepository(backendClient)

	hub := sse.NewHub()
	portalSvc := portalService.NewPortalService(leaveRequestRepo, hub, portalService.Config{
		IdleTimeout: cfg.Session.IdleTimeout,
	})

	JWTService := jwt.NewJWTService(cfg.Session.Secret, cfg.Session.TokenTTL, cfg.Session.CookieName, cfg.IsProduction())
	rateLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	scheduler := cron.NewScheduler()
	cron.RegisterSessionJobs(scheduler, portalSvc, cfg.Session.SweepInterval)
	scheduler.AddJob("rate_limiter_sweep", cfg.Session.SweepInterval, func(ctx context.Context) error {
		if removed := rateLimiter.Sweep(cfg.Session.IdleTimeout); removed > 0 {
			slog.Debug("Idle rate limiters swept", "removed", removed)
		}
		return nil
	})

	router := appHTTP.NewRouter(appHTTP.RouterDeps{
		Config:        cfg,
		Logger:        logger,
		JWTService:    JWTService,
		Sessions:      middleware.Session(portalSvc, JWTService),
		RateLimiter:   rateLimiter,
		PortalHandler: appHTTP.NewPortalHandler(portalSvc),
		APIHandler:    appHTTP.NewPortalAPIHandler(portalSvc),
	})

	// Event streams never go idle on their own, so shutdown cancels them.
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	srv.RegisterOnShutdown(cancelStreams)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", "http://localhost"+srv.Addr, "backend", backendClient.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down portal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
