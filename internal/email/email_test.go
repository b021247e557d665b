package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/config"
)

func TestDefaultTemplatesRender(t *testing.T) {
	tm, err := NewDefaultTemplateManager()
	require.NoError(t, err)

	html, err := tm.Render(TemplateApplicationReceived, TemplateData{
		"CandidateName":    "Siti",
		"JobTitle":         "Backend <Engineer>",
		"OrganizationName": "Acme",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hi Siti")
	assert.Contains(t, html, "Backend &lt;Engineer&gt;", "html escaping")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestNewProvider_MockWithoutHost(t *testing.T) {
	p, err := NewProvider(config.EmailConfig{})
	require.NoError(t, err)

	mock, ok := p.(*MockProvider)
	require.True(t, ok)

	require.NoError(t, p.SendTemplate([]string{"a@b.co"}, "Status", TemplateStatusChanged, TemplateData{
		"CandidateName": "Budi", "JobTitle": "Marbot", "Status": "interview",
	}))
	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTMLBody, "interview")
	assert.Error(t, p.Send(&Email{}))
}

func TestSMTPProvider_Validate(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 0}, nil)
	assert.Error(t, p.Validate())

	p = NewSMTPProvider(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "no-reply@example.com"}, nil)
	assert.NoError(t, p.Validate())

	msg := p.buildMessage(&Email{To: []string{"x@example.com"}, Subject: "Hi", Body: "plain"})
	assert.Equal(t, []string{"x@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"no-reply@example.com"}, msg.GetHeader("From"))
}
