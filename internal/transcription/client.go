package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"classroom-api/config"
	"classroom-api/pkg/errors"
)

// Client posts audio clips to the external speech-to-text endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	language   string
	httpClient *http.Client
}

func NewClient(cfg config.TranscribeConfig) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

type transcribeResponse struct {
	Transcript *string `json:"transcript"`
}

// Transcribe uploads one clip and returns its transcript. A non-200 response
// or a response without a transcript field fails the whole pipeline run; no
// partial-success path exists.
func (c *Client) Transcribe(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open clip %s: %w", filePath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read clip %s: %w", filePath, err)
	}
	_ = w.WriteField("model", c.model)
	_ = w.WriteField("language", c.language)
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	url := c.baseURL + "/transcribe/speech-to-text"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrExternalService.Code, "Speech-to-text request failed", errors.ErrExternalService.Status)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", errors.WrapError(
			fmt.Errorf("status %d: %s", resp.StatusCode, raw),
			errors.ErrExternalService.Code,
			"Speech-to-text service returned non-200",
			errors.ErrExternalService.Status,
		)
	}

	var decoded transcribeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Transcript == nil {
		return "", errors.WrapError(
			fmt.Errorf("body: %s", raw),
			errors.ErrExternalService.Code,
			"Speech-to-text response missing transcript",
			errors.ErrExternalService.Status,
		)
	}

	return *decoded.Transcript, nil
}

// NewClientForTests points the client at a test server.
func NewClientForTests(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "scribe-mini",
		language:   "ur",
		httpClient: httpClient,
	}
}
