package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secretboard/internal/config"
	"secretboard/internal/http/handlers/middlewares/ratelimit"
	"secretboard/internal/http/render"
	"secretboard/internal/http/server"
	"secretboard/internal/logger"
	"secretboard/internal/repository/filestore"
	"secretboard/internal/repository/inmemory"
	"secretboard/internal/repository/postgres"
	"secretboard/internal/repository/sqlite"
	"secretboard/internal/services/board"
	"secretboard/internal/services/onetimetoken"
	"secretboard/internal/services/tracking"
	"secretboard/internal/users"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

type storage interface {
	board.PostStorage
	Close() error
}

type tokenBackend interface {
	onetimetoken.Backend
	Close() error
}

func main() {
	cfg, err := config.NewConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dir, err := users.LoadFile(cfg.UsersFile)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	log.Info().Int("users", dir.Len()).Str("file", cfg.UsersFile).Msg("users loaded")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	renderer, err := render.NewRenderer(loc)
	if err != nil {
		return err
	}

	store, flush, err := newStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := flush(); err != nil {
			log.Error().Err(err).Msg("failed to persist posts")
		}
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	backend, err := newTokenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	signer := tracking.NewSigner(cfg.TrackingKey())
	trackingManager := tracking.NewManager(signer, tracking.CookieOptions{
		Secure:   cfg.CookieSecure,
		HttpOnly: cfg.CookieHTTPOnly,
		SameSite: cfg.SameSite(),
	})

	srv, err := server.NewServer(log, cfg.ServerAddress, server.Deps{
		Board:    board.NewBoard(store, log),
		Tokens:   onetimetoken.NewStore(backend),
		Tracking: trackingManager,
		Users:    dir,
		Renderer: renderer,
		Limiter:  ratelimit.NewLimiter(cfg.RateLimit, cfg.RateBurst),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return <-errCh
}

// newStorage выбирает хранилище: PostgreSQL, затем SQLite, иначе память (+ файл, если задан).
// flush сохраняет содержимое памяти в файл при остановке.
func newStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage, func() error, error) {
	noop := func() error { return nil }

	switch {
	case cfg.DatabaseDSN != "":
		s, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init postgres storage: %w", err)
		}
		log.Info().Msg("using postgres storage")
		return s, noop, nil

	case cfg.SQLitePath != "":
		s, err := sqlite.NewStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init sqlite storage: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite storage")
		return s, noop, nil
	}

	s := inmemory.NewStorage()
	if cfg.FileStoragePath == "" {
		log.Warn().Msg("using in-memory storage, posts are lost on restart")
		return s, noop, nil
	}

	n, err := filestore.Load(ctx, log, cfg.FileStoragePath, s)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load posts: %w", err)
	}
	log.Info().Int("posts", n).Str("path", cfg.FileStoragePath).Msg("using in-memory storage with file backup")

	flush := func() error {
		saveCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return filestore.Save(saveCtx, log, cfg.FileStoragePath, s)
	}
	return s, flush, nil
}

func newTokenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (tokenBackend, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("one-time tokens kept in memory")
		return memoryBackend{onetimetoken.NewMemoryBackend()}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	backend := onetimetoken.NewRedisBackend(client, cfg.OneTimeTokenTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := backend.Ping(pingCtx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("redis is unavailable: %w", err)
	}

	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.OneTimeTokenTTL).Msg("one-time tokens kept in redis")
	return backend, nil
}

type memoryBackend struct {
	*onetimetoken.MemoryBackend
}

func (memoryBackend) Close() error { return nil }
