package email

import (
	"fmt"
	"sync"

	"portal_backend/internal/logger"
)

// MockProvider records messages instead of sending them.
type MockProvider struct {
	renderer TemplateRenderer

	mu   sync.Mutex
	sent []Email
}

func NewMockProvider(renderer TemplateRenderer) *MockProvider {
	return &MockProvider{renderer: renderer}
}

func (p *MockProvider) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}
	p.mu.Lock()
	p.sent = append(p.sent, *email)
	p.mu.Unlock()

	logger.Info("Email (not sent, SMTP disabled)", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *MockProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	body := ""
	if p.renderer != nil {
		rendered, err := p.renderer.Render(templateName, data)
		if err != nil {
			return err
		}
		body = rendered
	}
	return p.Send(&Email{To: to, Subject: subject, HTMLBody: body})
}

func (p *MockProvider) Validate() error { return nil }

func (p *MockProvider) Close() error { return nil }

// Sent returns a copy of every recorded message.
func (p *MockProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Email(nil), p.sent...)
}
