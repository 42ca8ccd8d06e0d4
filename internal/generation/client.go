package generation

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"classroom-api/config"
	"classroom-api/internal/models"
	"classroom-api/pkg/errors"
)

const mcqSystemPrompt = "You are a teaching assistant. Given a lecture transcript, " +
	"produce multiple-choice questions that test understanding of the material. " +
	"Respond with a JSON object {\"mcqs\": [{\"question\", \"answer\", \"options\"}]}."

const graderSystemPrompt = "You are a strict but fair grader. Grade the student's " +
	"answer against the rubric and the reference solution, and explain the awarded marks."

// Client calls the external LLM service for structured generation and
// grading. Only the chat-completions shape is used.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.GenerationConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type mcqPayload struct {
	Mcqs []models.GeneratedTask `json:"mcqs"`
}

// GenerateTasks asks the model for MCQs over the transcript. A missing or
// unparseable structured result is fatal for the pipeline run.
func (c *Client) GenerateTasks(ctx context.Context, transcript string) ([]models.GeneratedTask, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: mcqSystemPrompt},
			{Role: "user", Content: "Create MCQs for this lecture transcript:\n\n" + transcript},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var payload mcqPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil || len(payload.Mcqs) == 0 {
		return nil, errors.WrapError(
			fmt.Errorf("content: %s", content),
			errors.ErrExternalService.Code,
			"Generation service returned no parseable MCQs",
			errors.ErrExternalService.Status,
		)
	}

	return payload.Mcqs, nil
}

// GradeSolution sends the rubric, the reference answer and the student's
// uploaded solution image to the model and returns the written feedback.
func (c *Client) GradeSolution(ctx context.Context, rubric, answerSheet, solutionPath string) (string, error) {
	raw, err := os.ReadFile(solutionPath)
	if err != nil {
		return "", fmt.Errorf("read solution %s: %w", solutionPath, err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: graderSystemPrompt},
			{Role: "user", Content: []map[string]any{
				{"type": "text", "text": "Rubric for grading guidelines: " + rubric},
				{"type": "text", "text": "Correct solution for reference: " + answerSheet},
				{"type": "text", "text": "Student's answer to be graded:"},
				{"type": "image_url", "image_url": map[string]string{
					"url": "data:image/jpeg;base64," + encoded,
				}},
				{"type": "text", "text": "Grade the student's answer based on the rubric and correct solution."},
			}},
		},
	}

	feedback, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	if feedback == "" {
		return "", errors.WrapError(
			fmt.Errorf("empty completion"),
			errors.ErrExternalService.Code,
			"Generation service returned empty grading feedback",
			errors.ErrExternalService.Status,
		)
	}
	return feedback, nil
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrExternalService.Code, "Generation request failed", errors.ErrExternalService.Status)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", errors.WrapError(
			fmt.Errorf("status %d: %s", resp.StatusCode, raw),
			errors.ErrExternalService.Code,
			"Generation service returned non-200",
			errors.ErrExternalService.Status,
		)
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || len(decoded.Choices) == 0 {
		return "", errors.WrapError(
			fmt.Errorf("body: %s", raw),
			errors.ErrExternalService.Code,
			"Generation response missing choices",
			errors.ErrExternalService.Status,
		)
	}

	return decoded.Choices[0].Message.Content, nil
}

// NewClientForTests points the client at a test server.
func NewClientForTests(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "gpt-5-mini",
		httpClient: httpClient,
	}
}
