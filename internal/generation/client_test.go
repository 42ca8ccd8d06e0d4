package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func completionWith(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestGenerateTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if format, _ := req["response_format"].(map[string]any); format["type"] != "json_object" {
			t.Errorf("response_format = %v", req["response_format"])
		}

		mcqs := `{"mcqs": [{"question": "What is TCP?", "answer": "A transport protocol", ` +
			`"options": ["A transport protocol", "A routing table", "A cable", "A browser"]}]}`
		json.NewEncoder(w).Encode(completionWith(mcqs))
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	tasks, err := c.GenerateTasks(context.Background(), "today we cover TCP")
	if err != nil {
		t.Fatalf("GenerateTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Question != "What is TCP?" {
		t.Errorf("question = %q", tasks[0].Question)
	}
	if len(tasks[0].Options) != 4 {
		t.Errorf("got %d options, want 4", len(tasks[0].Options))
	}
}

func TestGenerateTasksEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionWith(`{"mcqs": []}`))
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	if _, err := c.GenerateTasks(context.Background(), "transcript"); err == nil {
		t.Fatal("expected error for empty MCQ list")
	}
}

func TestGenerateTasksUnparseableResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionWith("sorry, I cannot do that"))
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	if _, err := c.GenerateTasks(context.Background(), "transcript"); err == nil {
		t.Fatal("expected error for non-JSON completion")
	}
}

func TestGradeSolution(t *testing.T) {
	solution := filepath.Join(t.TempDir(), "solution.jpg")
	if err := os.WriteFile(solution, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write solution: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("got %d messages, want 2", len(req.Messages))
		}

		userContent := string(req.Messages[1].Content)
		if !strings.Contains(userContent, "data:image/jpeg;base64,") {
			t.Error("user message is missing the encoded solution image")
		}
		if !strings.Contains(userContent, "Rubric for grading guidelines") {
			t.Error("user message is missing the rubric")
		}

		json.NewEncoder(w).Encode(completionWith("7/10, partial credit on question 2"))
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	feedback, err := c.GradeSolution(context.Background(), "rubric text", "answer text", solution)
	if err != nil {
		t.Fatalf("GradeSolution: %v", err)
	}
	if feedback != "7/10, partial credit on question 2" {
		t.Fatalf("feedback = %q", feedback)
	}
}

func TestGradeSolutionEmptyFeedback(t *testing.T) {
	solution := filepath.Join(t.TempDir(), "solution.jpg")
	if err := os.WriteFile(solution, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatalf("write solution: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(completionWith(""))
	}))
	defer srv.Close()

	c := NewClientForTests(srv.URL, srv.Client())

	if _, err := c.GradeSolution(context.Background(), "rubric", "answer", solution); err == nil {
		t.Fatal("expected error for empty feedback")
	}
}
