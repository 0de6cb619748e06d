package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	if err := BindFlags(fs); err != nil {
		log.Fatal("flags", "err", err)
	}
	fs.Parse(os.Args[1:])
	configFile, _ := fs.GetString("config")

	cfg, err := LoadConfig(configFile)
	if err != nil {
		log.Fatal("config", "err", err)
	}
	if err := SetupLogging(cfg.Log.Level); err != nil {
		log.Fatal("logging", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *Config) error {
	var db *DB
	if cfg.DB.Path != "" {
		var err error
		if db, err = OpenDB(cfg.DB.Path); err != nil {
			return err
		}
		defer db.Close()
		log.Info("match log open", "path", cfg.DB.Path)
	}

	var analytics *Analytics
	if db != nil {
		analytics = NewAnalytics(db)
		defer analytics.Stop()
	}

	if cfg.NATS.Embedded && cfg.NATS.URL == "" {
		ns, err := StartEmbeddedNATS(cfg.NATS.StoreDir)
		if err != nil {
			return err
		}
		defer ns.Shutdown()
		cfg.NATS.URL = ns.ClientURL()
		log.Info("embedded nats started", "url", cfg.NATS.URL, "store", cfg.NATS.StoreDir)
	}

	var store *SnapshotStore
	if cfg.NATS.URL != "" {
		var err error
		if store, err = OpenSnapshotStore(ctx, cfg.NATS.URL, cfg.NATS.Bucket); err != nil {
			return err
		}
		defer store.Close()
		log.Info("room mirror connected", "url", cfg.NATS.URL, "bucket", cfg.NATS.Bucket)
	}

	rooms := NewRoomManager(RoomOptions{
		LevelsDir: cfg.Server.LevelsDir,
		MaxRooms:  cfg.Game.MaxRooms,
		World:     cfg.Game.World(),
		DB:        db,
		Store:     store,
		Analytics: analytics,
	})
	hub := NewHub(rooms, db)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: SetupRoutes(hub, cfg.Server.ClientDir, cfg.Server.PublicURL),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error { return rooms.Run(ctx) })
	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Server.Addr, "client", cfg.Server.ClientDir, "levels", cfg.Server.LevelsDir)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
