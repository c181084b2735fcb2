package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"aiContentStudio/internal/auth"
	"aiContentStudio/internal/bootstrap"
	"aiContentStudio/internal/config"
	"aiContentStudio/internal/db"
	"aiContentStudio/internal/generator"
	grpcserver "aiContentStudio/internal/grpc"
	"aiContentStudio/internal/httpapi"
	"aiContentStudio/internal/logging"
	"aiContentStudio/internal/service"
	"aiContentStudio/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.InitLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.Info("configuration loaded", "config", cfg.String())

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Open DB
	store, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close db", "error", err)
		}
	}()

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = bootstrap.Run(startCtx, store)
	cancel()
	if err != nil {
		return err
	}

	gen, err := newGenerator(cfg.Generator)
	if err != nil {
		return err
	}
	logger.Info("generator ready", "provider", cfg.Generator.Provider, "model", cfg.Generator.Model)

	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := repository.NewUserRepository(store)
	authn := auth.NewAuthenticator(issuer, users)
	svcs := service.New(store, issuer, service.Options{
		Generator:        gen,
		GeneratorTimeout: cfg.Generator.Timeout,
		StartingCredits:  cfg.Credits.Starting,
	})

	gin.SetMode(gin.ReleaseMode)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           httpapi.NewRouter(svcs, authn, httpapi.Options{ClientURL: cfg.HTTP.ClientURL, Logger: logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	logger.Info("http server listening", "address", cfg.HTTP.Address)

	// Start gRPC
	stopGRPC := func(context.Context) error { return nil }
	if cfg.GRPC.Address != "" {
		if stopGRPC, err = grpcserver.StartGRPC(cfg.GRPC.Address, authn, users); err != nil {
			_ = httpSrv.Close()
			return err
		}
		logger.Info("grpc server listening", "address", cfg.GRPC.Address)
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info("shutting down", "signal", sig.String())
	case err = <-serveErr:
		logger.Error("http server failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := stopGRPC(ctx); err != nil {
		logger.Error("grpc shutdown", "error", err)
	}
	return err
}

func newGenerator(cfg config.GeneratorConfig) (generator.Generator, error) {
	switch cfg.Provider {
	case "openai":
		return generator.NewOpenAI(generator.OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
		})
	default:
		return generator.Echo{Delay: 200 * time.Millisecond}, nil
	}
}
