package commands

import (
	"context"
	"io"
	"path/filepath"

	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/leeforge/picture/cache"
	"github.com/leeforge/picture/config"
	"github.com/leeforge/picture/logging"
	"github.com/leeforge/picture/media/processor"
	"github.com/leeforge/picture/media/storage"
	"github.com/leeforge/picture/metrics"
	"github.com/leeforge/picture/picture"
	"github.com/leeforge/picture/redis_client"
)

// app holds what the subcommands share.
type app struct {
	settings  *config.Settings
	rootDir   string
	logger    logging.Logger
	collector *metrics.Collector
	generator *picture.Generator
	closers   []io.Closer
}

func newApp(ctx context.Context, settings *config.Settings) (_ *app, err error) {
	a := &app{
		settings:  settings,
		logger:    logging.Init(settings.Logging),
		collector: metrics.NewCollector(),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.rootDir, err = filepath.Abs(settings.RootDir); err != nil {
		return nil, err
	}

	provider, err := storage.NewProviderFromConfig(settings.Storage)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	if settings.Cache.Type == "redis" || settings.Cache.Type == "layered" {
		rc, err := redis_client.NewRedis(ctx, settings.Redis, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rc)
		client = rc
	}

	adapter, err := cache.NewAdapterFromConfig(settings.Cache, client)
	if err != nil {
		return nil, err
	}
	if closer, ok := adapter.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	resizer := processor.NewNativeResizer(provider,
		processor.WithCache(adapter, settings.Cache.Prefix, settings.Cache.TTL),
		processor.WithLogger(logging.Named("resizer")),
		processor.WithMetrics(a.collector),
		processor.WithQuality(settings.Quality),
	)
	a.generator = picture.NewGenerator(resizer, picture.WithConcurrency(settings.Concurrency))

	a.logger.Debug("app ready",
		zap.String("storage", provider.Name()),
		zap.String("cache", settings.Cache.Type),
		zap.Int("pictures", len(settings.Pictures)),
	)
	return a, nil
}

// Close releases the redis client and the cache, then flushes the logger.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	_ = logging.Sync()
	logging.CloseAllWriters()
	return firstErr
}
