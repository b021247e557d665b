package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"portal_backend/internal/config"
)

var (
	ErrNotConfigured = errors.New("ocr endpoint is not configured")
	ErrNoText        = errors.New("no text recognized")
)

type Result struct {
	Text   string           `json:"text"`
	Lines  []string         `json:"lines"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

type Client interface {
	Recognize(ctx context.Context, image io.Reader, filename string) (*Result, error)
}

// HTTPClient talks to an OCR.space compatible endpoint.
type HTTPClient struct {
	endpoint   string
	apiKey     string
	language   string
	httpClient *http.Client
}

func NewHTTPClient(cfg config.OCRConfig) *HTTPClient {
	lang := cfg.Language
	if lang == "" {
		lang = "ind"
	}
	return &HTTPClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		language:   lang,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type ocrResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool        `json:"IsErroredOnProcessing"`
	ErrorMessage          interface{} `json:"ErrorMessage"`
	// plain {"text": "..."} services
	Text string `json:"text"`
}

func (c *HTTPClient) Recognize(ctx context.Context, image io.Reader, filename string) (*Result, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("language", c.language)
	_ = w.WriteField("isTable", "true")
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ocr endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return nil, fmt.Errorf("ocr processing failed: %v", parsed.ErrorMessage)
	}

	text := parsed.Text
	for _, r := range parsed.ParsedResults {
		text += r.ParsedText
	}
	return Parse(text)
}

// Parse splits text into trimmed lines and looks for a total amount.
func Parse(text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoText
	}

	res := &Result{Text: text}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			res.Lines = append(res.Lines, line)
		}
	}
	if amount, ok := DetectAmount(res.Lines); ok {
		res.Amount = &amount
	}
	return res, nil
}
