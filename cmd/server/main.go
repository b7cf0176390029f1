package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iudanet/securenotes/internal/server"
	"github.com/iudanet/securenotes/internal/server/auth"
	"github.com/iudanet/securenotes/internal/server/config"
	"github.com/iudanet/securenotes/internal/server/ratelimit"
	"github.com/iudanet/securenotes/internal/server/storage/sqlite"
	"github.com/iudanet/securenotes/internal/server/token"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// purgeInterval задает период фоновой чистки просроченных refresh tokens
const purgeInterval = time.Hour

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("SecureNotes server starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	codec, err := token.NewCodec([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}

	sessions := auth.NewService(logger, store, store, codec)

	loginLimiter := ratelimit.New(cfg.LoginRateLimit, cfg.LoginRateWindow)
	defer loginLimiter.Stop()
	apiLimiter := ratelimit.New(cfg.APIRateLimit, cfg.APIRateWindow)
	defer apiLimiter.Stop()

	srv := server.New(cfg.Addr, server.Deps{
		Logger:       logger,
		Sessions:     sessions,
		Notes:        store,
		Codec:        codec,
		Health:       store,
		LoginLimiter: loginLimiter,
		APILimiter:   apiLimiter,
		Version:      Version,
	})

	// Фоновая чистка просроченных записей ledger'а
	go runPurgeLoop(ctx, logger, sessions)

	errC := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// runPurgeLoop периодически удаляет просроченные refresh tokens
func runPurgeLoop(ctx context.Context, logger *slog.Logger, sessions *auth.Service) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Error("failed to purge expired tokens", slog.Any("error", err))
				continue
			}
			if count > 0 {
				logger.Info("purged expired refresh tokens", slog.Int("count", count))
			}
		}
	}
}

// newLogger создает slog.Logger с заданным уровнем и форматом
func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func printVersion() {
	fmt.Printf("SecureNotes Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
