package email

import (
	"time"

	"portal_backend/internal/config"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	// SSL selects implicit TLS (port 465). Otherwise STARTTLS is used when offered.
	SSL     bool
	Timeout time.Duration
}

func ConfigFrom(cfg config.EmailConfig) *SMTPConfig {
	return &SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
		SSL:       cfg.SMTPPort == 465,
		Timeout:   30 * time.Second,
	}
}
