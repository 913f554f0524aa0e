package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/gacha-arena/internal/account"
	"github.com/xtding233/gacha-arena/internal/api"
	"github.com/xtding233/gacha-arena/internal/config"
	"github.com/xtding233/gacha-arena/internal/gacha"
	"github.com/xtding233/gacha-arena/internal/session"
	"github.com/xtding233/gacha-arena/internal/storage"
	"github.com/xtding233/gacha-arena/internal/storage/memory"
	"github.com/xtding233/gacha-arena/internal/storage/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx); err != nil {
		log.Fatalf("[server] %v", err)
	}
}

func run(ctx context.Context) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	logger := log.Default()

	loader := config.NewLoader(settings.ConfigDir)
	_, params, err := loader.Resolve(settings.Profile, settings.Overrides())
	if err != nil {
		return err
	}
	logger.Printf("[server] balance version %s, %d templates, cost %d per card", params.Version, params.Catalog.Len(), params.CostPerCard)

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	defer store.Close()

	accounts := account.New(store, account.WithLogger(logger))
	if err := accounts.EnsureAdmin(ctx, settings.AdminUsername, settings.AdminPassword); err != nil {
		return err
	}

	opts := []session.Option{session.WithLogger(logger)}
	if settings.Seed != 0 {
		logger.Printf("[server] using seeded RNG (%d)", settings.Seed)
		opts = append(opts, session.WithRNG(gacha.NewSeededRNG(settings.Seed)))
	}
	svc, err := session.New(store, accounts, params, opts...)
	if err != nil {
		return err
	}

	var watcher *config.FileWatcher
	if settings.WatchConfig && settings.ConfigDir != "" {
		reloader := &config.Reloader{
			Loader:    loader,
			Profile:   settings.Profile,
			Overrides: settings.Overrides(),
			Apply: func(p config.Params) {
				if err := svc.ApplyParams(p); err != nil {
					logger.Printf("[server] apply reloaded config: %v", err)
				}
			},
			Logger: logger,
		}
		watcher, err = config.NewFileWatcher(loader.Paths().Files(settings.Profile), config.DefaultDebounce, reloader.OnChange)
		if err != nil {
			return err
		}
		watcher.SetLogger(logger)
		logger.Printf("[server] watching %s for changes", loader.Paths().Dir())
	}

	srv, err := api.Listen(settings.GRPCAddr, svc, api.WithRateLimit(settings.RateLimit, settings.RateBurst), api.WithServerLogger(logger))
	if err != nil {
		if watcher != nil {
			_ = watcher.Close()
		}
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ctx) })
	if watcher != nil {
		g.Go(func() error { return watcher.Run(ctx) })
	}
	return g.Wait()
}

func openStore(settings config.Settings) (storage.Store, error) {
	if settings.MemoryStore {
		log.Printf("[server] using in-memory store; nothing survives a restart")
		return memory.New(), nil
	}
	store, err := sqlite.Open(settings.DBPath)
	if err != nil {
		return nil, err
	}
	log.Printf("[server] opened %s", settings.DBPath)
	return store, nil
}
