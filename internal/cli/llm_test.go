package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeModelServer is an OpenAI-compatible endpoint returning content as
// the assistant reply.
func fakeModelServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Errorf("encoding fake response: %v", err)
		}
	}))
}

func runLLMCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewLLMCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunLLMSingleURL(t *testing.T) {
	server := fakeModelServer(t, `[{"title": "Concierto de jazz", "date": "2025-05-20"}]`)
	defer server.Close()

	out, err := runLLMCommand(t,
		"--url", "https://example.com/agenda",
		"--llm-api", server.URL+"/v1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Found 1 events") || !strings.Contains(out, "Concierto de jazz") {
		t.Errorf("output = %q", out)
	}
}

func TestRunLLMSingleURLFailureExitsNonzero(t *testing.T) {
	server := fakeModelServer(t, "sorry, I cannot help with that")
	defer server.Close()

	out, err := runLLMCommand(t,
		"--url", "https://example.com/agenda",
		"--llm-api", server.URL+"/v1")
	if err == nil {
		t.Fatal("expected error when the only URL fails")
	}
	// The failure is still reported in the result listing.
	if !strings.Contains(out, "Error:") {
		t.Errorf("output = %q, want the failure in the listing", out)
	}
}

func TestRunLLMBatchFailureIsIsolated(t *testing.T) {
	server := fakeModelServer(t, "not json either")
	defer server.Close()

	out, err := runLLMCommand(t,
		"--url-list", "https://example.com/a,https://example.com/b",
		"--llm-api", server.URL+"/v1",
		"--format", "json")
	if err != nil {
		t.Fatalf("a failing batch URL should not fail the run: %v", err)
	}
	if !strings.Contains(out, "error") {
		t.Errorf("output = %q, want per-URL errors recorded", out)
	}
}

func TestRunLLMUnknownFormat(t *testing.T) {
	if _, err := runLLMCommand(t, "--url", "https://example.com", "--format", "yaml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
