package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/open-teleop/steering/pkg/config"
	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/open-teleop/steering/pkg/relay"
)

func main() {
	configDir := flag.String("config", "config", "directory containing "+config.BootstrapFileName)
	flag.Parse()

	bootstrapCfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	log, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath, "relay.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if err := bootstrapCfg.ValidateRelay(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := relay.NewHub(log)
	go hub.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "Steering Relay",
		ErrorHandler: customErrorHandler,
	})
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		peers, err := hub.Count()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		return c.JSON(fiber.Map{"status": "healthy", "peers": peers})
	})
	relay.NewHandler(hub, bootstrapCfg.Relay.HeartbeatInterval(), bootstrapCfg.Relay.ClientTimeout(), log).Register(app)

	go func() {
		log.Infof("Relay listening on %s", bootstrapCfg.Relay.BindAddress)
		if err := app.Listen(bootstrapCfg.Relay.BindAddress); err != nil {
			log.Fatalf("Failed to start relay: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("Shutting down relay...")

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Fatalf("Relay forced to shutdown: %v", err)
	}
	log.Infof("Relay exited properly")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
