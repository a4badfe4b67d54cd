// Command bridged runs the editor bridge daemon for a single Unity project:
// it exposes RPC dispatch, log streaming, and health reporting over HTTP,
// and mediates the websocket connection an in-editor plugin attaches to.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/unityctl/bridge/core/config"
	"github.com/unityctl/bridge/core/logger"
	"github.com/unityctl/bridge/core/server"
	"github.com/unityctl/bridge/internal/bridge"
	"github.com/unityctl/bridge/internal/bridgefile"
	"github.com/unityctl/bridge/internal/bridgehttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

func run() int {
	projectFlag := flag.String("project", "", "path to the Unity project (defaults to UNITYCTL_PROJECT or the working directory)")
	portFlag := flag.Int("port", 0, "HTTP port to listen on (0 picks an ephemeral port)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var cfg bridge.Config
	if err := config.Load(&cfg); err != nil {
		log.Error("failed to load configuration", logger.Error(err))
		return 1
	}

	projectPath := *projectFlag
	if projectPath == "" {
		projectPath = cfg.ProjectPath
	}
	if projectPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Error("failed to resolve working directory", logger.Error(err))
			return 1
		}
		projectPath = wd
	}
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}

	absProject, err := filepath.Abs(projectPath)
	if err != nil {
		log.Error("invalid project path", logger.Error(err), logger.Key("path", projectPath))
		return 1
	}
	if info, statErr := os.Stat(absProject); statErr != nil || !info.IsDir() {
		log.Error("project path does not exist", logger.Key("path", absProject))
		return 1
	}
	cfg.ProjectPath = absProject

	if existing, err := bridgefile.Read(absProject); err == nil && bridgefile.Probe(existing) {
		log.Error("a bridge daemon is already running for this project",
			logger.Key("port", existing.Port), logger.ID("pid", existing.PID))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bridge.New(cfg, log)

	router := bridgehttp.NewRouter(b, log)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv, err := server.NewFromConfig(server.Config{Addr: addr}, server.WithLogger(log))
	if err != nil {
		log.Error("failed to build HTTP server", logger.Error(err))
		return 1
	}

	boundPort, err := srv.Listen()
	if err != nil {
		log.Error("failed to bind listener", logger.Error(err))
		return 1
	}
	cfg.Port = boundPort

	if err := bridgefile.Write(absProject, bridgefile.Info{
		ProjectID: b.ProjectID,
		Port:      cfg.Port,
		PID:       os.Getpid(),
	}); err != nil {
		log.Error("failed to write bridge marker file", logger.Error(err))
		return 1
	}
	defer func() { _ = bridgefile.Remove(absProject) }()

	log.Info("bridge daemon starting",
		logger.Component("bridged"),
		logger.Event("startup"),
		logger.Key("project_id", b.ProjectID),
		logger.Key("port", cfg.Port),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(b.Run(ctx))
	eg.Go(srv.Run(ctx, router))

	if err := eg.Wait(); err != nil {
		log.Error("bridge daemon stopped with error", logger.Error(err))
		return 1
	}

	log.Info("bridge daemon stopped", logger.Component("bridged"), logger.Event("shutdown"))
	return 0
}
