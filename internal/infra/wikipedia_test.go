package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"flashquiz-service/internal/domain"
)

func TestNormalizeTopic(t *testing.T) {
	tests := map[string]string{
		"rome":             "Rome",
		"dwayne johnson":   "Dwayne_Johnson",
		"  roman empire  ": "Roman_Empire",
		"ALAN TURING":      "Alan_Turing",
	}
	for in, want := range tests {
		if got := NormalizeTopic(in); got != want {
			t.Errorf("NormalizeTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWikipediaClient_FetchSummary(t *testing.T) {
	var gotPath, gotUA, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"description":"  Capital city of Italy  "}`))
	}))
	defer srv.Close()

	c := NewWikipediaClient(srv.URL, "wm-token", "flashquiz/1.0", srv.Client())
	summary, err := c.FetchSummary(context.Background(), "rome")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Capital city of Italy" {
		t.Errorf("want trimmed description, got %q", summary)
	}
	if gotPath != "/core/v1/wikipedia/en/page/Rome/description" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotUA != "flashquiz/1.0" {
		t.Errorf("want user agent flashquiz/1.0, got %s", gotUA)
	}
	if gotAuth != "Bearer wm-token" {
		t.Errorf("want bearer token, got %q", gotAuth)
	}
}

func TestWikipediaClient_FetchSummary_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"missing page", http.StatusNotFound, `{"httpCode":404}`},
		{"no description", http.StatusOK, `{"title":"Rome"}`},
		{"blank description", http.StatusOK, `{"description":"   "}`},
		{"upstream error", http.StatusInternalServerError, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewWikipediaClient(srv.URL, "", "flashquiz/1.0", srv.Client())
			_, err := c.FetchSummary(context.Background(), "nowhere land")
			if !errors.Is(err, domain.ErrSourceNotFound) {
				t.Errorf("want ErrSourceNotFound, got %v", err)
			}
		})
	}
}
