package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal_backend/internal/config"
)

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"1.250.000":    "1250000",
		"1.250.000,50": "1250000.5",
		"1,250,000.50": "1250000.5",
		"75000":        "75000",
		"12,5":         "12.5",
	}
	for in, want := range tests {
		got, ok := ParseAmount(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got.String(), in)
	}

	_, ok := ParseAmount("0")
	assert.False(t, ok)
}

func TestDetectAmount(t *testing.T) {
	lines := []string{
		"TOKO BERKAH",
		"Semen 2 x Rp 65.000",
		"Subtotal Rp 130.000",
		"TOTAL Rp 143.000",
		"Tunai Rp 150.000",
	}
	d, ok := DetectAmount(lines)
	require.True(t, ok)
	assert.Equal(t, "143000", d.String())

	d, ok = DetectAmount([]string{"Infaq", "Rp 50.000", "Rp 20.000"})
	require.True(t, ok)
	assert.Equal(t, "50000", d.String())

	_, ok = DetectAmount([]string{"no numbers here"})
	assert.False(t, ok)
}

func TestHTTPClient_Recognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "ind", r.FormValue("language"))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "img", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ParsedResults":[{"ParsedText":"Nota\r\nJumlah: Rp 1.500.000\r\n"}],"IsErroredOnProcessing":false}`)
	}))
	defer srv.Close()

	c := NewHTTPClient(config.OCRConfig{Endpoint: srv.URL, APIKey: "secret"})
	res, err := c.Recognize(context.Background(), strings.NewReader("img"), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"Nota", "Jumlah: Rp 1.500.000"}, res.Lines)
	require.NotNil(t, res.Amount)
	assert.Equal(t, "1500000", res.Amount.String())
}

func TestHTTPClient_Errors(t *testing.T) {
	_, err := NewHTTPClient(config.OCRConfig{}).Recognize(context.Background(), strings.NewReader("x"), "a.png")
	assert.ErrorIs(t, err, ErrNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"IsErroredOnProcessing":true,"ErrorMessage":["bad image"]}`)
	}))
	defer srv.Close()
	_, err = NewHTTPClient(config.OCRConfig{Endpoint: srv.URL}).Recognize(context.Background(), strings.NewReader("x"), "a.png")
	assert.Error(t, err)

	_, err = Parse("  ")
	assert.ErrorIs(t, err, ErrNoText)
}
