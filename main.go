package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lab1702/arena-npc/config"
	"github.com/lab1702/arena-npc/nav"
	"github.com/lab1702/arena-npc/server"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func main() {
	port := flag.String("port", "8080", "Server port")
	configPath := flag.String("config", "", "Arena YAML file, reloaded on change")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Simulation random seed")
	flag.BoolVar(&server.DebugShots, "debug-shots", false, "Log every shooting decision")
	flag.BoolVar(&server.DebugMelee, "debug-melee", false, "Log every swarm bite")
	flag.BoolVar(&nav.DebugPaths, "debug-paths", false, "Log pathfinder searches")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "arena",
		ReportTimestamp: true,
	})
	log.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal("load config", "err", err)
		}
		cfg = loaded
	}

	level := cfg.Level()
	if *logLevel != "" {
		lvl, err := log.ParseLevel(*logLevel)
		if err != nil {
			log.Fatal("bad -log-level", "err", err)
		}
		level = lvl
	}
	log.SetLevel(level)

	if err := cfg.ApplyProfiles(); err != nil {
		log.Fatal("apply difficulty overrides", "err", err)
	}

	log.Info("starting arena server", "port", *port, "seed", *seed, "tickRate", cfg.TickRate)
	gameServer := server.NewServer(cfg, *seed)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      gameServer.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gameServer.Run(gctx)
	})

	g.Go(func() error {
		log.Info("server running", "url", "http://localhost:"+*port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if *configPath != "" {
		g.Go(func() error {
			return watchConfig(gctx, *configPath, gameServer)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// watchConfig applies difficulty changes from the config file until ctx ends.
// A file that fails to parse is logged and the running tables are kept.
func watchConfig(ctx context.Context, path string, s *server.Server) error {
	w, err := config.Watch(path)
	if err != nil {
		return err
	}
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-w.Updates:
			if !ok {
				return nil
			}
			if err := s.ApplyConfig(cfg); err != nil {
				log.Error("apply reloaded config", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error("config reload failed", "err", err)
		}
	}
}
