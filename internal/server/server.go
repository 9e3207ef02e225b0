// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/mirnanodes/broilink-backend/api"
	"github.com/mirnanodes/broilink-backend/internal/alerts"
	"github.com/mirnanodes/broilink-backend/internal/config"
	"github.com/mirnanodes/broilink-backend/internal/database"
	"github.com/mirnanodes/broilink-backend/internal/farmservice"
	"github.com/mirnanodes/broilink-backend/internal/ingest"
	"github.com/mirnanodes/broilink-backend/internal/models"
	"github.com/mirnanodes/broilink-backend/internal/repository/files"
	"github.com/mirnanodes/broilink-backend/internal/repository/postgres"
	"github.com/mirnanodes/broilink-backend/internal/repository/timescale"
	"github.com/mirnanodes/broilink-backend/internal/status"
	"github.com/mirnanodes/broilink-backend/internal/telegram"
)

// Server wires configuration, storage, the farm service and the
// background workers behind one HTTP listener.
type Server struct {
	config      *config.Config
	srv         *http.Server
	farmservice *farmservice.FarmService
	redis       *redis.Client
	notifier    *telegram.Notifier
	cancel      context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start brings up storage, workers and the listener, then blocks until
// shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.redis = initRedis(s.config.Redis)
	s.farmservice = initializeFarmService(s.config)
	s.setupCleanupHandlers()

	router := api.NewRouter(s.farmservice, s.config.Auth)
	s.srv.Handler = router

	s.startTelegram(ctx, router)
	s.startAlertMonitor(ctx)
	s.startMQTT(ctx)

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// startTelegram brings up the bot and alert notifier when a bot token
// is configured.
func (s *Server) startTelegram(ctx context.Context, router *api.Router) {
	if !s.config.Telegram.Enabled {
		nuts.L.Infof("[Server] Telegram integration disabled")
		return
	}

	client := telegram.NewClient(s.config.Telegram.BotToken)
	var tokens telegram.TokenStore
	if s.redis != nil {
		tokens = telegram.NewRedisTokenStore(s.redis)
	} else {
		tokens = telegram.NewMemoryTokenStore()
	}
	bot := telegram.NewBot(s.farmservice, client, client, tokens, s.redis, s.config.Telegram.PollInterval)
	router.Users().SetDeepLinker(bot, s.config.Telegram.BotUsername)

	go bot.Run(ctx)
	s.notifier = telegram.NewNotifier(s.farmservice, client)
	router.Users().SetBroadcaster(s.notifier)
}

// startAlertMonitor launches the periodic threshold sweep. Without
// Telegram the monitor still runs so suppression state stays warm, but
// alerts only land in the log.
func (s *Server) startAlertMonitor(ctx context.Context) {
	var dedup alerts.Deduplicator
	if s.redis != nil {
		dedup = alerts.NewRedisDeduplicator(s.redis)
	} else {
		dedup = alerts.NewMemoryDeduplicator(0)
	}

	var notifier alerts.Notifier = logNotifier{}
	if s.notifier != nil {
		notifier = s.notifier
	}

	monitor := alerts.NewMonitor(s.farmservice, dedup, notifier, s.config.Alerting.CheckInterval, s.config.Alerting.DedupTTL)
	go monitor.Run(ctx)
}

func (s *Server) startMQTT(ctx context.Context) {
	if !s.config.MQTT.Enabled {
		nuts.L.Infof("[Server] MQTT ingest disabled")
		return
	}

	bridge := ingest.NewMQTTBridge(s.config.MQTT, s.farmservice)
	go func() {
		if err := bridge.Start(ctx); err != nil {
			nuts.L.Errorf("[Server] MQTT bridge failed to start: %v", err)
		}
	}()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	if s.redis != nil {
		s.redis.Close()
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// logNotifier stands in for Telegram when no bot is configured.
type logNotifier struct{}

func (logNotifier) NotifyFarmAlert(_ context.Context, farm *models.Farm, st status.Status, reading *models.SensorReading) error {
	nuts.L.Warnf("[AlertMonitor] Farm %d (%s) is %s: suhu %.1f, kelembapan %.1f, amonia %.1f",
		farm.ID, farm.Name, st, reading.Temperature, reading.Humidity, reading.Ammonia)
	return nil
}

func (s *Server) setupCleanupHandlers() {
	s.farmservice.Cleanup.OnCleanup("farm.deleted", func(farmID int64) {
		nuts.L.Infof("[Cleanup] Farm %d and all associated data deleted", farmID)
	})

	s.farmservice.Cleanup.OnCleanup("config.deleted", func(farmID int64) {
		nuts.L.Infof("[Cleanup] Threshold config for farm %d deleted", farmID)
	})

	s.farmservice.Cleanup.OnCleanup("reports.deleted", func(farmID int64) {
		nuts.L.Infof("[Cleanup] Manual reports for farm %d deleted", farmID)
	})
}

// initializeFarmService creates and configures the farm service
func initializeFarmService(cfg *config.Config) *farmservice.FarmService {
	tsdb := initTimescaleDB(cfg.Database.TimescaleDB)
	appDB := initAppDB(cfg.Database.AppDB)

	farms := postgres.NewFarmRepository(appDB)
	configs := postgres.NewFarmConfigRepository(appDB)
	reports := postgres.NewManualReportRepository(appDB)
	users := postgres.NewUserRepository(appDB)
	telegramLinks := postgres.NewTelegramLinkRepository(appDB)
	requests := postgres.NewRequestLogRepository(appDB)

	sensorData, err := timescale.NewSensorDataRepository(tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize sensor data repository: %v", err)
	}

	fileStore, err := files.NewFileRepository(files.FileConfig{
		BasePath:    cfg.FileStore.BasePath,
		MaxFileSize: cfg.FileStore.MaxFileSize,
		AllowedMime: cfg.FileStore.AllowedMimeTypes,
	})
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize file repository: %v", err)
	}

	return farmservice.New(farms, configs, sensorData, reports, users, telegramLinks, requests, fileStore)
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		nuts.L.Warnf("[Server] Redis not configured, falling back to in-memory stores")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping Redis: %v", err)
	}
	return client
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}
	db := wrappedDB.GetDB()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}
	db := wrappedDB.GetDB()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return wrappedDB
}
