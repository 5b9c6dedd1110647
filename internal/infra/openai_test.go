package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"flashquiz-service/internal/domain"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got responsesRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"output":[{"type":"message","content":[{"type":"output_text","text":"[{\"question\":\"Q\"}]"}]}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-openai", "gpt-4o-mini", srv.Client())
	text, err := c.Generate(context.Background(), "make cards")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `[{"question":"Q"}]` {
		t.Errorf("unexpected text %q", text)
	}
	if got.Model != "gpt-4o-mini" || got.Input != "make cards" {
		t.Errorf("unexpected request %+v", got)
	}
	if gotAuth != "Bearer sk-openai" {
		t.Errorf("want bearer api key, got %q", gotAuth)
	}
}

func TestOpenAIClient_Generate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "sk-openai", "gpt-4o-mini", srv.Client())
	if _, err := c.Generate(context.Background(), "make cards"); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Errorf("want ErrGenerationFailed, got %v", err)
	}
}

func TestOutputText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"top level", `{"output_text":"hello"}`, "hello"},
		{
			"concatenated parts",
			`{"output":[{"content":[{"type":"output_text","text":"a"},{"type":"refusal","text":"x"}]},{"content":[{"type":"output_text","text":"b"}]}]}`,
			"ab",
		},
		{"empty", `{"output":[]}`, ""},
		{"not json", `oops`, ""},
	}
	for _, tt := range tests {
		if got := outputText([]byte(tt.body)); got != tt.want {
			t.Errorf("%s: want %q, got %q", tt.name, tt.want, got)
		}
	}
}
