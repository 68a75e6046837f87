package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jmgilman/go/fs/billy"

	"sortogram/internal/channel"
	"sortogram/internal/config"
	"sortogram/internal/mediaindex"
	"sortogram/internal/mover"
	"sortogram/internal/permission"
	"sortogram/internal/platform"
	"sortogram/internal/resolve"
	"sortogram/internal/store"
	"sortogram/internal/transfer"
)

func main() {
	cfg := config.FromFlags()

	level, _ := cfg.Level()
	// stdout carries the channel, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger); err != nil {
		logger.Error("sortogram exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Init(db); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	fsys := billy.NewLocal()
	catalog := store.NewCatalog(db)

	if cfg.IndexRoot != "" {
		n, err := mediaindex.DiscoverAndInsert(ctx, fsys, catalog, cfg.IndexRoot)
		if err != nil {
			return err
		}
		logger.Info("indexed media", "root", cfg.IndexRoot, "added", n)
	}

	version := cfg.Platform
	if version == "" {
		if version, err = platform.Version(); err != nil {
			return err
		}
	}

	grants := permission.NewGrants()
	gate := permission.NewGate(cfg.Capability(grants), logger)

	index := mediaindex.NewSynchronizer(catalog, store.NewScanner(catalog, fsys, logger), fsys, logger)
	index.Deferred = cfg.DeferredVisibility

	svc := mover.New(gate, transfer.New(fsys, logger), index, logger)
	handler := channel.NewHandler(svc, resolve.New(catalog, fsys, logger), gate, grants, version, logger)
	srv := channel.NewServer(handler, os.Stdout, logger)

	svc.AttachHost(srv)
	defer svc.DetachHost()

	logger.Info("sortogram starting",
		"db", cfg.DBPath, "access", cfg.Access, "granted", cfg.Granted, "platform", version,
	)
	if err := srv.Serve(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
