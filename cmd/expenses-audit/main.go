package main

import (
	"errors"
	"os"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/cli"
	applog "expenses/internal/log"
	"expenses/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(os.Stdout, "info", applog.ComponentAudit), "Configuration invalid", err)
	}
	logger := cli.SetupLogger(os.Stdout, cfg.LogLevel, applog.ComponentAudit)

	if !cfg.AMQPEnabled() {
		cli.Fatal(logger, "AMQP_URL is required", errors.New("change events disabled"))
	}

	logger.Info("Starting expenses-audit", "queue", cfg.AMQPQueue)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	auditor := services.NewAuditor(logger)
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	if err := client.ConsumeWithReconnect(ctx, auditor.Handle); err != nil {
		logger.Error("Consumer stopped", applog.FieldError, err)
		client.Close()
		os.Exit(1)
	}

	<-done
	seen, gaps := auditor.Stats()
	logger.Info("expenses-audit stopped", "events", seen, "gaps", gaps)
}
