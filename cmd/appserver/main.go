// Command appserver runs the task tracker HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/R3E-Network/tasktracker/internal/app/runtime"
	"github.com/R3E-Network/tasktracker/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (overrides "+config.EnvConfigPath+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := runtime.LoggerFromConfig(cfg.Logging)

	application, err := runtime.NewApplication(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("initialise application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := application.Run(ctx); err != nil {
		log.WithError(err).Error("server exited")
		exitCode = 1
	}

	log.Info("shutting down")
	if err := application.Shutdown(context.Background()); err != nil {
		log.WithError(err).Fatal("shutdown")
	}
	os.Exit(exitCode)
}
