package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req["model"] != "test-model" {
			t.Fatalf("unexpected model %v", req["model"])
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerate(t *testing.T) {
	srv := completionServer(t, `{"clips":[]}`)
	defer srv.Close()

	a := New("key", srv.URL, "test-model")
	got, err := a.Generate(context.Background(), "pick clips")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"clips":[]}` {
		t.Fatalf("got %q", got)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a := New("key", srv.URL, "test-model")
	if _, err := a.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	a := New("key", srv.URL, "test-model")
	if _, err := a.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
