package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campus-lostfound/api-go/config"
	"github.com/campus-lostfound/api-go/controllers"
	"github.com/campus-lostfound/api-go/middleware"
	"github.com/campus-lostfound/api-go/notify"
	"github.com/campus-lostfound/api-go/repository"
	"github.com/campus-lostfound/api-go/routes"
	"github.com/campus-lostfound/api-go/services"
	"github.com/campus-lostfound/api-go/similarity"
	"github.com/campus-lostfound/api-go/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Debug)
	if err != nil {
		os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := config.InitDB(cfg.Database, cfg.Debug, logger)
	if err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	reports := repository.NewReportRepository(db)
	matches := repository.NewMatchRepository(db)

	if cfg.SeedUsers {
		if err := services.SeedUsers(context.Background(), users, services.DefaultSeedUsers, logger); err != nil {
			return err
		}
	}

	var store storage.Store
	switch cfg.Upload.Driver {
	case "r2":
		store = storage.NewR2Store(storage.NewR2Client(cfg.R2), cfg.R2.BucketName, cfg.Upload.MaxSize, logger)
	default:
		store, err = storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxSize, logger)
		if err != nil {
			return err
		}
	}

	hub := notify.NewHub(logger)
	defer hub.Close()

	matching := services.NewMatchingService(reports, matches, similarity.NewImageComparer(store), services.MatchingConfig{
		Weights:      similarity.Weights{Image: cfg.Matching.ImageWeight, Text: cfg.Matching.TextWeight},
		Threshold:    cfg.Matching.Threshold,
		DiscardFloor: cfg.Matching.DiscardFloor,
		Workers:      cfg.Matching.Workers,
	}, logger)
	authService := services.NewAuthService(users, cfg.JWTSecret, time.Duration(cfg.AccessTokenExpireMinutes)*time.Minute, logger)
	reportService := services.NewReportService(reports, matches, store, matching, hub, logger)
	statusService := services.NewStatusService(reports, hub, logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.SecurityHeaders(cfg.Debug),
		middleware.CORS(cfg.Debug, cfg.AllowedOrigins()))
	if cfg.Upload.Driver == "local" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	routes.SetupRoutes(r, routes.Controllers{
		Auth:    controllers.NewAuthController(authService, logger),
		Reports: controllers.NewReportController(reportService, logger),
		Admin:   controllers.NewAdminController(reportService, statusService, logger),
		System:  controllers.NewSystemController(hub, logger),
	}, authService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
