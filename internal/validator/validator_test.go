package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last+tag@sub.example.org", " padded@example.com "}
	invalid := []string{"", "plain", "a@b", "@example.com", "a@.com", "a b@example.com", "a@example.c"}

	for _, s := range valid {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), s)
	}
}

func TestIsPhone(t *testing.T) {
	valid := []string{"081234567890", "+6281234567890", "6281234567890", "0812-3456-7890", "+1 415 555 2671"}
	invalid := []string{"", "12345", "0712345678", "phone", "+0123456789", "08123"}

	for _, s := range valid {
		assert.True(t, IsPhone(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsPhone(s), s)
	}
}

func TestIsURL(t *testing.T) {
	valid := []string{"https://example.com", "http://localhost:3000/path?q=1", "https://linkedin.com/in/someone"}
	invalid := []string{"", "example.com", "ftp://example.com", "https://", "https://exa mple.com"}

	for _, s := range valid {
		assert.True(t, IsURL(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsURL(s), s)
	}
}

type sampleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"required,is-user-role"`
	Phone  string `json:"phone" validate:"omitempty,phone"`
	Status string `json:"status" validate:"omitempty,is-hewan-status"`
}

func TestValidate_CustomRulesAndJSONNames(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&sampleRequest{Email: "a@b.co", Role: "recruiter", Phone: "081234567890"}))

	err := v.Validate(&sampleRequest{Email: "nope", Role: "model", Phone: "123", Status: "eaten"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must be a valid user role", vErr.Errors["role"])
	assert.Equal(t, "Must be a valid phone number", vErr.Errors["phone"])
	assert.Contains(t, vErr.Errors["status"], "slaughtered")
}
