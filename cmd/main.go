package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/golang-cz/devslog"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/auth"
	"github.com/siahsang/yatube/internal/cache"
	"github.com/siahsang/yatube/internal/config"
	"github.com/siahsang/yatube/internal/core"
	"github.com/siahsang/yatube/internal/database"
	"github.com/siahsang/yatube/internal/media"
	"github.com/siahsang/yatube/internal/render"
	"github.com/siahsang/yatube/internal/utils/databaseutils"
	"github.com/siahsang/yatube/models"
)

type application struct {
	config   config.Config
	logger   *slog.Logger
	store    store
	auth     *auth.Auth
	renderer renderer
	media    media.Storage
	cache    cache.Store
	wg       sync.WaitGroup
}

func main() {
	configPath := flag.String("config", os.Getenv("YATUBE_CONFIG"), "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Errors loading configuration", "error", err.Error())
		os.Exit(1)
	}

	logger := configLogger(cfg)

	command, args := "serve", flag.Args()
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	if err := run(context.Background(), cfg, logger, command, args); err != nil {
		logger.Error("Command failed", "command", command, "stack", xerrors.Sprint(err))
		os.Exit(1)
	}
}

func configLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.Log.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     level,
			},
			NewLineAfterLog: false,
		})

	return slog.New(handler)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, command string, args []string) error {
	if command == "clear-cache" {
		return clearCache(ctx, cfg, logger)
	}
	if _, ok := commands[command]; !ok && command != "serve" {
		return xerrors.Newf("unknown command %q, expected one of: serve, %s", command, strings.Join(commandNames(), ", "))
	}

	logger.Info("Starting application...", "command", command, "env", cfg.Env)
	db, err := database.Open(ctx, database.Options{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		PingTimeout:     cfg.Database.QueryTimeout,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Errors closing database connection", "error", err.Error())
		}
	}()
	logger.Info("Database connection established successfully")

	coreService := core.NewCore(db, logger, databaseutils.NewSQLTemplate(db, cfg.Database.QueryTimeout))

	if command != "serve" {
		return commands[command](ctx, coreService, logger, args)
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info("Database schema is up to date")
	}

	app, err := newApplication(ctx, cfg, logger, coreService)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.cache.Close(); err != nil {
			logger.Error("Errors closing cache", "error", err.Error())
		}
	}()

	return app.serve()
}

func newApplication(ctx context.Context, cfg config.Config, logger *slog.Logger, s store) (*application, error) {
	storage, err := newMediaStorage(cfg)
	if err != nil {
		return nil, err
	}

	cacheStore, err := newCacheStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	models.SetPreviewLength(cfg.Posts.PreviewLength)
	renderer, err := render.New(render.Options{
		PreviewLength: cfg.Posts.PreviewLength,
		MediaURL:      storage.URL,
	})
	if err != nil {
		return nil, err
	}

	return &application{
		config:   cfg,
		logger:   logger,
		store:    s,
		auth:     auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.SecureCookie),
		renderer: renderer,
		media:    storage,
		cache:    cacheStore,
	}, nil
}

func newMediaStorage(cfg config.Config) (media.Storage, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendS3:
		return media.NewS3Storage(cfg.Media.S3Bucket, cfg.Media.S3Region, cfg.Media.S3BaseURL)
	default:
		return media.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix)
	}
}

func newCacheStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		return cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:      cfg.Cache.RedisAddr,
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
	default:
		return cache.NewMemoryStore(), nil
	}
}
