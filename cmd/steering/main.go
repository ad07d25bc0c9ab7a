package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/open-teleop/steering/pkg/config"
	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/open-teleop/steering/services"
)

func main() {
	configDir := flag.String("config", "config", "directory containing "+config.BootstrapFileName)
	flag.Parse()

	bootstrapCfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath, customlog.DefaultLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := bootstrapCfg.ValidateController(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	route, err := config.LoadRoute(bootstrapCfg.Route.File)
	if err != nil {
		logger.Fatalf("Failed to load route: %v", err)
	}
	logger.Infof("Loaded %d route instructions from %s", len(route.Instructions), bootstrapCfg.Route.File)

	sink, err := services.OpenSink(bootstrapCfg.Actuation, logger)
	if err != nil {
		logger.Fatalf("Failed to open actuation sink: %v", err)
	}
	defer sink.Close()

	session, err := services.NewSession(bootstrapCfg, route, sink, logger)
	if err != nil {
		logger.Fatalf("Failed to create session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("Steering session failed: %v", err)
		sink.Close()
		os.Exit(1)
	}
}
