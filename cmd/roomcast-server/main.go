// Package main provides the roomcast server executable: a TCP/TLS room broker
// with an optional SQL audit archive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coregx/roomcast"
	"github.com/coregx/roomcast/adapters/relica"
	"github.com/coregx/roomcast/cmd/roomcast-server/internal/config"
	"github.com/coregx/roomcast/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "roomcast-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	zl, err := buildZap(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := NewZapLogger(zl)

	zl.Info("Configuration loaded",
		zap.String("listen_addr", cfg.Server.ListenAddr),
		zap.String("transport", cfg.Server.Transport),
		zap.String("framing", cfg.Server.Framing),
		zap.Int("intake_capacity", cfg.Server.IntakeCapacity),
		zap.Int("subscription_capacity", cfg.Server.SubscriptionCapacity),
		zap.Int("history_capacity", cfg.Server.HistoryCapacity),
		zap.Duration("idle_timeout", cfg.Server.IdleTimeout),
		zap.Bool("archive", cfg.Database.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registryOpts := []roomcast.Option{
		roomcast.WithLogger(logger),
		roomcast.WithIntakeCapacity(cfg.Server.IntakeCapacity),
		roomcast.WithSubscriptionCapacity(cfg.Server.SubscriptionCapacity),
		roomcast.WithHistoryCapacity(cfg.Server.HistoryCapacity),
	}
	if cfg.Server.EnableNotifications {
		registryOpts = append(registryOpts, roomcast.WithNotifications(roomcast.NewLoggingNotificationService(logger)))
	}

	// The archive outlives the server so that records produced while rooms
	// shut down are still written.
	archiveCtx, stopArchive := context.WithCancel(context.WithoutCancel(ctx))
	defer stopArchive()
	// nil unless the archive runs
	var archiveDone chan struct{}

	var repos *relica.Repositories
	if cfg.Database.Enabled() {
		db, err := openDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warnf("Failed to close database: %v", closeErr)
			}
		}()

		repos = relica.NewRepositoriesWithPrefix(db, cfg.Database.Driver, cfg.Database.Prefix)
		archiver, err := roomcast.NewArchiver(
			roomcast.WithArchiveRepositories(repos.Room, repos.Message),
			roomcast.WithArchiveLogger(logger),
			roomcast.WithArchiveQueueSize(cfg.Database.ArchiveQueueSize),
		)
		if err != nil {
			return fmt.Errorf("failed to create archiver: %w", err)
		}
		registryOpts = append(registryOpts, roomcast.WithArchive(archiver))

		archiveDone = make(chan struct{})
		go func() {
			defer close(archiveDone)
			archiver.Run(archiveCtx)
		}()
		defer func() {
			stats := archiver.Stats()
			logger.Infof("Archive totals: written=%d dropped=%d failed=%d",
				stats.Written, stats.Dropped, stats.Failed)
		}()
	}

	registry, err := roomcast.NewRegistry(registryOpts...)
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}

	serverOpts := []server.Option{
		server.WithLogger(logger),
		server.WithIdleTimeout(cfg.Server.IdleTimeout),
		server.WithReadBufferSize(cfg.Server.ReadBufferSize),
		server.WithFraming(server.Framing(cfg.Server.Framing)),
		server.WithMaxFrameSize(cfg.Server.MaxFrameSize),
	}
	if cfg.Server.Transport == "tls" {
		tlsConfig, err := server.LoadTLSConfig(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, server.WithTLSConfig(tlsConfig))
	}

	srv, err := server.New(registry, serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.ListenAddr)
	})
	if repos != nil && cfg.Database.ArchiveRetention > 0 {
		g.Go(func() error {
			return pruneArchive(gctx, repos.Message, cfg.Database.ArchiveRetention, logger)
		})
	}

	logger.Info("roomcast server is ready")
	serveErr := g.Wait()

	logger.Info("Shutting down...")
	if err := registry.Close(); err != nil {
		logger.Errorf("Failed to close registry: %v", err)
	}

	stopArchive()
	if !waitArchive(archiveDone, cfg.Server.ShutdownTimeout) {
		logger.Warnf("Archive did not drain within %s", cfg.Server.ShutdownTimeout)
	}

	if serveErr != nil {
		return serveErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}
