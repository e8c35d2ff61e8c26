package foliochat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNew_NoBaseURL(t *testing.T) {
	_, err := New("")
	if err == nil {
		t.Fatal("expected error when no base URL provided")
	}
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Q string `json:"q"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Q != "Qui es-tu ?" {
			t.Errorf("q = %q", req.Q)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"answer":  "Je suis développeuse full-stack.",
			"sources": []string{"about", "contact"},
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	answer, err := client.Ask(context.Background(), "Qui es-tu ?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Answer != "Je suis développeuse full-stack." {
		t.Errorf("Answer = %q", answer.Answer)
	}
	if len(answer.Sources) != 2 || answer.Sources[0] != "about" {
		t.Errorf("Sources = %v", answer.Sources)
	}
}

func TestAsk_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "Server error",
			"details": "embed corpus: Embeddings API error: 503 - Service Unavailable",
		})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	_, err := client.Ask(context.Background(), "Bonjour")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Ask() error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", apiErr.Status)
	}
	if apiErr.Message != "Server error" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details == "" {
		t.Error("Details empty")
	}
}

func TestAsk_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte("POST /api/chat"))
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	_, err := client.Ask(context.Background(), "Bonjour")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Ask() error = %v, want *APIError", err)
	}
	if apiErr.Message != "POST /api/chat" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "cache_warm": true})
	}))
	defer srv.Close()

	client, _ := New(srv.URL)
	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}
