package main

import (
	"context"
	"errors"
	"os"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/notify"
	"spendwise/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting notify-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required by the notification worker")
		os.Exit(1)
	}
	if !cfg.MailEnabled() {
		logger.Error("MAIL_SERVER is required by the notification worker")
		os.Exit(1)
	}

	mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.MailServer,
		Port:     cfg.MailPort,
		UseTLS:   cfg.MailUseTLS,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailDefaultSender,
	})
	if err != nil {
		logger.Error("Failed to initialize SMTP mailer", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	notificationWorker := worker.NewNotificationWorker(mailer, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		logger.Info("Shutting down worker...")
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close failed", "error", err)
		}
	})

	logger.Info("Consuming notifications",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"mail_server", cfg.MailServer)
	if err := amqpClient.ConsumeNotifications(ctx, notificationWorker.HandleNotification); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		_ = amqpClient.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
