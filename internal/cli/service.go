package cli

import (
	"context"
	"fmt"

	"github.com/rshade/profdiff/internal/cache"
	"github.com/rshade/profdiff/internal/config"
	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/profiles"
	"github.com/rshade/profdiff/internal/remote"
)

// buildService creates the comparison service for the configured source.
// Remote responses go through the disk cache unless noCache is set or the
// TTL is zero. The returned close function releases the source and is never
// nil.
func buildService(ctx context.Context, cfg *config.Config, noCache bool) (engine.Service, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source.Kind {
	case config.SourceDir:
		src, err := profiles.NewDirSource(cfg.Source.ProfilesDir)
		if err != nil {
			return nil, noop, err
		}
		return engine.NewComparer(src), noop, nil

	case config.SourceSQLite:
		src, err := profiles.OpenSQLite(ctx, cfg.Source.Database)
		if err != nil {
			return nil, noop, err
		}
		return engine.NewComparer(src), src.Close, nil

	case config.SourceRemote:
		client, err := remote.NewClient(ctx, cfg.Source.Endpoint, remote.ClientOptions{
			Timeout:  cfg.Source.Timeout,
			RetryMax: cfg.Source.RetryMax,
		})
		if err != nil {
			return nil, noop, err
		}
		if noCache || cfg.Source.CacheTTL == 0 {
			return client, noop, nil
		}
		store, err := cache.NewFileStore(cfg.Source.CacheDir, cfg.Source.CacheTTL)
		if err != nil {
			return nil, noop, err
		}
		return cache.NewService(client, store), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown source %q", cfg.Source.Kind)
	}
}

// withService runs fn with the configured service and closes it afterwards.
func (a *app) withService(ctx context.Context, fn func(engine.Service) error) (err error) {
	svc, closeFn, err := buildService(ctx, a.cfg, a.opts.noCache)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(svc)
}
