// Package main provides the kernel server entry point: the HTTP surface
// over the event-sourced periodicals domain.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/kernelapp/kernel/internal/config"
	"github.com/kernelapp/kernel/internal/gormstore"
	"github.com/kernelapp/kernel/internal/httpapi"
	"github.com/kernelapp/kernel/internal/service"
)

func main() {
	var listenAddr string
	flag.StringVar(&listenAddr, "listen", "", "Address to listen on (overrides KERNEL_APP_LISTEN_ADDR)")
	flag.Parse()

	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.FromEnv()
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if err := cfg.Validate(); err != nil {
		glog.Fatalf("invalid configuration: %v", err)
	}

	logger.Info("starting kernel server",
		"listen", cfg.ListenAddr,
		"dbType", cfg.DatabaseType,
		"maxRetries", cfg.MaxRetries,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	db, err := gormstore.Open(cfg.DatabaseType, cfg.DatabaseDSN)
	if err != nil {
		glog.Fatalf("failed to connect to database: %v", err)
	}

	session := gormstore.NewSession(db, cfg.RetryConfig())
	facade := service.NewFacade(session)

	opts := httpapi.Options{}
	if authMode := os.Getenv("KERNEL_APP_AUTH_MODE"); authMode == "jwt" {
		extractor, err := httpapi.NewJWTRoleExtractor(httpapi.JWTRoleExtractorConfig{
			RoleClaim:         envOrDefault("KERNEL_APP_JWT_ROLE_CLAIM", "role"),
			OperatorRoleValue: envOrDefault("KERNEL_APP_JWT_OPERATOR_VALUE", "operator"),
			PublicKeyPath:     os.Getenv("KERNEL_APP_JWT_PUBLIC_KEY_PATH"),
			Issuer:            os.Getenv("KERNEL_APP_JWT_ISSUER"),
			Audience:          os.Getenv("KERNEL_APP_JWT_AUDIENCE"),
			Logger:            logger,
		})
		if err != nil {
			glog.Fatalf("failed to build JWT role extractor: %v", err)
		}
		opts.RoleExtractor = extractor
		logger.Info("using JWT auth")
	} else {
		logger.Info("using default header-based auth (X-User-Role)")
	}

	router := httpapi.NewRouter(facade, opts)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("http server error: %v", err)
		}
	}()

	logger.Info("kernel server ready", "listen", cfg.ListenAddr)

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("kernel server stopped")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
