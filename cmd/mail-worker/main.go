package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/healseek/appointment-service/internal/config"
	"github.com/healseek/appointment-service/internal/mail"
	redisclient "github.com/healseek/appointment-service/internal/redis"
)

// mail-worker drains the outbox queue and delivers each message over
// SMTP. Run one or more instances next to the api server.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load failed")
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "mail-worker").Logger()
	if cfg.Env == "dev" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("service", "mail-worker").Logger()
	}

	rdb, err := redisclient.Dial(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	worker := mail.NewWorker(rdb, sender, cfg.MailMaxAttempts, log)

	log.Info().Msg("mail worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker stopped with error")
	}
	log.Info().Msg("mail worker stopped")
}
