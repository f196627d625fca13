// Command worker consumes reservation and contact events from RabbitMQ and
// appends one audit line per event to the booking log.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/i-reserve/room-reservation/internal/config"
	"github.com/i-reserve/room-reservation/internal/logging"
	"github.com/i-reserve/room-reservation/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logging.Init(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{"queue": queue.EventsQueue, "log": cfg.EventLogPath}).Info("event worker started")
	err = queue.NewConsumer(cfg.AMQPURL, cfg.EventLogPath).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("event worker stopped")
	}
	logrus.Info("event worker stopped")
}
