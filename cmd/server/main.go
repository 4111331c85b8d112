package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/yegors/flightboard/internal/adsb"
	"github.com/yegors/flightboard/internal/api"
	"github.com/yegors/flightboard/internal/board"
	"github.com/yegors/flightboard/internal/classify"
	"github.com/yegors/flightboard/internal/config"
	"github.com/yegors/flightboard/internal/routes"
	"github.com/yegors/flightboard/internal/schedule"
	"github.com/yegors/flightboard/internal/storage/sqlite"
	"github.com/yegors/flightboard/internal/websocket"
	"github.com/yegors/flightboard/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting flight board server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
		logger.String("airport", cfg.Station.AirportCode),
		logger.Strings("home_codes", cfg.Station.HomeCodes()),
	)

	// Telemetry
	adsbClient := adsb.NewClient(cfg.ADSB, cfg.Station.Latitude, cfg.Station.Longitude, log)
	aircraftDB, err := adsb.LoadAircraftDB(cfg.ADSB.AircraftDBPath, log)
	if err != nil {
		log.Error("Failed to load aircraft database", logger.Error(err))
		os.Exit(1)
	}

	// Schedule
	scheduleProvider, err := schedule.NewProvider(cfg.Schedule, log)
	if err != nil {
		log.Error("Failed to create schedule provider", logger.Error(err))
		os.Exit(1)
	}
	parser := schedule.NewParser(
		cfg.Station.ScheduleCode(),
		cfg.Station.Location(),
		cfg.Schedule.AdditionalAirlineNames,
		cfg.Schedule.AdditionalIATAToICAO,
		log,
	)

	routeCache := routes.NewCache(routes.Options{
		AdmissionWindow: time.Duration(cfg.Routes.AdmissionWindowMinutes) * time.Minute,
		ActualGrace:     time.Duration(cfg.Routes.ActualGraceMinutes) * time.Minute,
	}, log)

	engine := classify.NewEngine(cfg.Station, cfg.Classifier)

	// Create SQLite storage
	if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error("Failed to create database directory", logger.Error(err), logger.String("path", dir))
			os.Exit(1)
		}
	}
	routeStorage, err := sqlite.NewRouteStorage(cfg.Storage.SQLitePath, log)
	if err != nil {
		log.Error("Failed to create SQLite storage", logger.Error(err))
		os.Exit(1)
	}
	defer routeStorage.Close()
	log.Info("Using SQLite storage", logger.String("path", cfg.Storage.SQLitePath))

	observationStorage, err := sqlite.NewObservationStorage(routeStorage.GetDB(), log)
	if err != nil {
		log.Error("Failed to create observation storage", logger.Error(err))
		os.Exit(1)
	}

	deps := board.Deps{
		Telemetry: adsbClient,
		Schedule:  scheduleProvider,
		Parser:    parser,
		Cache:     routeCache,
		Engine:    engine,
		Types:     aircraftDB,
		History:   observationStorage,
	}
	if cfg.Storage.PersistRoutes {
		deps.Routes = routeStorage
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create WebSocket server
	var wsServer *websocket.Server
	var wsHandler api.ConnectionHandler
	if cfg.WebSocket.Enabled {
		wsServer = websocket.NewServer(
			cfg.WebSocket.SendBufferSize,
			time.Duration(cfg.WebSocket.PingIntervalSec)*time.Second,
			log,
		)
		go wsServer.Run(ctx)
		deps.Broadcaster = wsServer
		wsHandler = wsServer
	}

	boardService := board.NewService(deps, board.Options{
		Station:          cfg.Station,
		RefreshInterval:  time.Duration(cfg.Schedule.RefreshIntervalSecs) * time.Second,
		HistoryRetention: time.Duration(cfg.Storage.HistoryRetention) * time.Hour,
		Cadence:          board.NewCadence(cfg.Poll, cfg.Station.Location()),
	}, log)

	if wsServer != nil {
		wsServer.SetMessageHandler(boardService)
	}

	if err := boardService.Start(ctx); err != nil {
		log.Error("Failed to start board service", logger.Error(err))
		os.Exit(1)
	}

	// Create API router
	handler := api.NewHandler(boardService, routeCache, observationStorage, wsHandler, log)
	router := api.NewRouter(handler, cfg.Server, log)

	// --- Setup for multiple HTTP servers ---
	var servers []*http.Server
	allPorts := []int{cfg.Server.Port}
	if len(cfg.Server.AdditionalPorts) > 0 {
		allPorts = append(allPorts, cfg.Server.AdditionalPorts...)
	}

	log.Info("Configured listener ports", logger.Any("ports", allPorts))

	routesHandler := router.Routes()
	for _, port := range allPorts {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)
		server := &http.Server{
			Addr:         addr,
			Handler:      routesHandler,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
		}
		servers = append(servers, server)

		go func(s *http.Server) {
			log.Info("Starting HTTP server", logger.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("HTTP server error on startup", logger.String("addr", s.Addr), logger.Error(err))
			}
		}(server)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	log.Info("Stopping board service...")
	boardService.Stop()

	// Cancel the main context
	cancel()

	// Shutdown all HTTP servers
	log.Info("Shutting down HTTP servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown error", logger.String("addr", srv.Addr), logger.Error(err))
			} else {
				log.Info("HTTP server shutdown complete", logger.String("addr", srv.Addr))
			}
		}(s)
	}
	wg.Wait()

	log.Info("Server fully stopped")
}
