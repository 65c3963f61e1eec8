package main

import (
	"automarket/internal/config"
	"automarket/internal/infrastructure/notification"
	"automarket/internal/logger"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	mailer := notification.NewMailer(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, log)
	srv := notification.NewServer(notification.RedisClientOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.NotifierConcurrency, log)

	log.WithField("module", "notifier").Info("notifier started")
	// Run blocks until SIGTERM or SIGINT.
	if err := srv.Run(notification.NewServeMux(mailer, log)); err != nil {
		log.WithError(err).Fatal("notifier stopped")
	}
}
