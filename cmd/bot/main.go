package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"objectivebot/internal/config"
	"objectivebot/internal/handler"
	"objectivebot/internal/httpserver"
	"objectivebot/internal/notify"
	"objectivebot/internal/repository"
	"objectivebot/internal/service/objective"
	"objectivebot/internal/service/reminder"
	"objectivebot/internal/util"
	"objectivebot/pkg/db"
	"objectivebot/pkg/logger"
	"objectivebot/pkg/mq"
	redisclient "objectivebot/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting objectivebot...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// Schema
	if err := db.Migrate(cfg.DB); err != nil {
		log.Fatal("Migrations failed", zap.Error(err))
	}

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis (per-key submission locks)
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// MQ Publisher (reminder dispatch)
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Repositories
	objectiveRepo := repository.NewObjectiveRepository(dbConn, log)

	// Services
	locks := util.NewKeyLock(rdb, 10*time.Second, log)
	objectiveService := objective.NewService(objectiveRepo, locks, log)

	// Reminder sweeper
	notifier := notify.NewMQNotifier(publisher, log)
	sweeper := reminder.NewSweeper(objectiveRepo, notifier, cfg.Sweep.Duration(), log)

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go sweeper.Start(sweepCtx)

	// Handlers + router
	interactionHandler := handler.NewInteractionHandler(objectiveService, log)
	adminHandler := handler.NewAdminHandler(objectiveRepo, log)
	router := httpserver.NewRouter(interactionHandler, adminHandler, dbConn, publisher, cfg.JWT.Secret)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("objectivebot is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down objectivebot gracefully...")

	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("objectivebot shutdown complete")
}
