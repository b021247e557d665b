package email

import (
	"portal_backend/internal/config"
	"portal_backend/internal/logger"
)

type Provider interface {
	Send(email *Email) error
	// SendTemplate renders templateName with data and sends it as HTML.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error
	Validate() error
	Close() error
}

type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}

// NewProvider returns an SMTP provider, or a mock that only logs when no SMTP
// host is configured.
func NewProvider(cfg config.EmailConfig) (Provider, error) {
	renderer, err := NewDefaultTemplateManager()
	if err != nil {
		return nil, err
	}
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP host not configured, emails will only be logged")
		return NewMockProvider(renderer), nil
	}

	p := NewSMTPProvider(ConfigFrom(cfg), renderer)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
