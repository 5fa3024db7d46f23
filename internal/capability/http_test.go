package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mnemos-dev/mnemos/internal/engine"
)

func TestHTTPEmbedderParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing or wrong Authorization header: %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "test-key", "text-embedding-3-small")
	v, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v) != 3 || v[0] != 0.1 {
		t.Errorf("unexpected embedding: %v", v)
	}
}

func TestHTTPEmbedderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL, "bad-key", "model")
	_, err := e.Embed(context.Background(), "hello")
	if err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestHTTPLlmClientParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		msgs, _ := body["messages"].([]any)
		if len(msgs) != 2 {
			t.Errorf("expected system + user message, got %d", len(msgs))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "DUPLICATE"}},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPLlmClient(srv.URL, "test-key", "gpt-4o-mini")
	got, err := c.Complete(context.Background(), []engine.Message{{Role: "user", Content: "compare these facts"}}, "you are a classifier")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "DUPLICATE" {
		t.Errorf("got %q, want %q", got, "DUPLICATE")
	}
}
