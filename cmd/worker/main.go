package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"objectivebot/internal/chat"
	"objectivebot/internal/config"
	"objectivebot/internal/mqhandler"
	"objectivebot/internal/notify"
	"objectivebot/internal/util"
	"objectivebot/pkg/circuitbreaker"
	"objectivebot/pkg/logger"
	"objectivebot/pkg/mq"
	redisclient "objectivebot/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting reminder delivery worker...")

	// Redis (event dedupe)
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, 24*time.Hour, log)

	// Chat platform client, behind a breaker
	chatClient := chat.NewClient(cfg.Chat)
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())

	// Publisher for parking undecodable messages on the DLQ.
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()
	if err := publisher.DeclareDeadLetter(notify.RoutingKeyReminderDue); err != nil {
		log.Fatal("Failed to declare dead letter queue", zap.Error(err))
	}

	reminderHandler := mqhandler.NewReminderDueHandler(chatClient, deduper, breaker, publisher, log)

	log.Info("Initializing reminder consumer", zap.String("queue", "reminder.due.q"))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "reminder.due.q", notify.RoutingKeyReminderDue, log)
	if err != nil {
		log.Fatal("Failed to init reminder consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(reminderHandler.Handle)
	go func() {
		log.Info("Starting reminder consumer")
		if err := consumer.StartConsuming(); err != nil {
			log.Fatal("Reminder consumer failed", zap.Error(err))
		}
	}()

	log.Info("Worker is ready to deliver reminders")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Worker shutting down")
}
