package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"concierge/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(url string) *Client {
	return NewClient(Config{APIBase: url, Model: "test-model", Logger: testLogger()})
}

func TestClient_TextCompletion(t *testing.T) {
	var got oaiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "hello"}}},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	resp, err := c.Complete(context.Background(), domain.CompletionRequest{
		System:   "be brief",
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Content != "hello" || resp.HasToolCalls() {
		t.Fatalf("unexpected completion: %+v", resp)
	}

	if got.Model != "test-model" {
		t.Errorf("model not sent: %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("system prompt should be prepended: %+v", got.Messages)
	}
}

func TestClient_ToolCallDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      "wifi_diagnostic",
						"arguments": `{"network_name":"HomeNet"}`,
					},
				}},
			}}},
		})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "check my wifi"}},
		Capabilities: []domain.CapabilityDefinition{{
			Name: "wifi_diagnostic",
			Arguments: []domain.ArgumentField{
				{Name: "network_name", Type: "string", Required: true},
			},
		}},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !resp.HasToolCalls() {
		t.Fatal("expected a tool call")
	}
	call := resp.ToolCalls[0]
	if call.Name != "wifi_diagnostic" || call.ID != "call_1" {
		t.Fatalf("unexpected call: %+v", call)
	}
	// Arguments arrive as a JSON string and must come back decoded.
	if call.Arguments["network_name"] != "HomeNet" {
		t.Fatalf("arguments not decoded: %v", call.Arguments)
	}
}

func TestClient_UnparseableArgumentsTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{
				"role": "assistant",
				"tool_calls": []map[string]any{{
					"id":       "call_1",
					"type":     "function",
					"function": map[string]any{"name": "x", "arguments": "not json"},
				}},
			}}},
		})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "go"}},
	})
	if err != nil {
		t.Fatalf("bad arguments should not fail the completion: %v", err)
	}
	if len(resp.ToolCalls) != 1 || len(resp.ToolCalls[0].Arguments) != 0 {
		t.Fatalf("expected the call with empty arguments, got %+v", resp.ToolCalls)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": "recovered"}}},
		})
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if resp.Content != "recovered" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if attempts != 2 {
		t.Fatalf("expected one retry, got %d attempts", attempts)
	}
}

func TestClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.Message{{Role: "user", Content: "hi"}},
	}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
