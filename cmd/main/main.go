package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"market-assistant/src/app"
	"market-assistant/src/config"
	"market-assistant/src/dashboard"
	"market-assistant/src/logger"
	"market-assistant/src/server"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	initConfig := flag.Bool("init", false, "write the default config to -config and exit")
	flag.Parse()

	if *initConfig {
		if err := config.Default().Save(*configPath); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf, conf.Name)
	defer appLogger.Sync()

	// 4. Setup Components
	a, err := app.New(conf)
	if err != nil {
		appLogger.Critical("Failed to initialize: %v", err)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewAPIServer(conf.MConfig, server.Deps{
		Dashboard: a.Dashboard,
		Search:    a.Search,
		Renderer:  a.Renderer,
		Sessions:  a.Sessions,
		Chat:      a.Controller,
	}, logger.NewLogger(conf, "APIServer"))
	a.Dashboard.SetExchanger(srv)

	// 5. Restore credential + selection, first load
	if err := a.Restore(ctx); err != nil {
		appLogger.Warning("Restore completed with warnings: %v", err)
	}

	// 6. Periodic refresh
	refresher := setupRefresher(ctx, a, appLogger)

	// 7. Start Servers
	grpcServer := startServers(srv, a, conf, appLogger)

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	if refresher != nil {
		refresher.Stop()
	}
	grpcServer.GracefulStop()
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
	appLogger.Info("Shutdown complete.")
}

// -----------------------------------------------------------------------------

func setupRefresher(ctx context.Context, a *app.App, appLogger *logger.Logger) *dashboard.Refresher {
	ds := a.Config.DataSource
	scheduler := a.Scheduler
	if !ds.OnlyWhenMarketOpen {
		scheduler = nil
	}
	r := dashboard.NewRefresher(ctx, a.Dashboard, scheduler, logger.NewLogger(a.Config, "Refresher"))
	if err := r.Register(ds.UpdateIntervalSeconds); err != nil {
		appLogger.Error("Failed to schedule refresh: %v", err)
		return nil
	}
	r.Start()
	return r
}
