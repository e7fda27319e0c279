// Command mockapi serves the career-guide REST API from memory for local
// development of the client.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"

	fiberadapter "github.com/lborres/careerguide/adapters/fiber"
	"github.com/lborres/careerguide/backend"
	"github.com/lborres/careerguide/config"
)

func logFormat() string {
	format := []string{
		// Timestamp
		"${time}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}:${port}",

		// Transfer size
		"${bytesReceived}|${bytesSent}",

		// Request details
		"${method}|${path}|${queryParams}",

		// errors
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $CAREERGUIDE_CONFIG or ~/.careerguide/config.toml)")
	listen := flag.String("listen", "", "Override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	b, err := backend.New(backend.Config{
		// WARN: an empty secret is replaced by a random one, so tokens do
		// not survive a restart
		Secret:   []byte(cfg.Server.Secret),
		TokenTTL: cfg.Server.TokenTTL,
	})
	if err != nil {
		log.Error("could not create backend", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Seed {
		if err := b.SeedDemoAccounts(); err != nil {
			log.Error("could not seed demo accounts", "error", err)
			os.Exit(1)
		}
		log.Info("demo accounts ready",
			"student", backend.DemoStudentEmail,
			"counselor", backend.DemoCounselorEmail,
			"password", backend.DemoPassword)
	}

	app := fiber.New(fiber.Config{AppName: "careerguide-mockapi"})

	// request log for debugging the client
	if cfg.IsDevelopment() {
		app.Use(logger.New(logger.Config{
			Format:     logFormat(),
			TimeFormat: "2006/01/02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	if err := fiberadapter.New(app, b).RegisterRoutes(cfg.Server.BasePath); err != nil {
		log.Error("could not register routes", "error", err)
		os.Exit(1)
	}

	log.Info("listening", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)
	if err := app.Listen(cfg.Server.Listen, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Error("app.Listen failed", "error", err)
		os.Exit(1)
	}
}
