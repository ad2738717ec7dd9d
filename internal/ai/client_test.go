package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikbrunner/marks/internal/model"
)

func fakeAPI(t *testing.T, status int, answer string, seen *apiRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(apiResponse{
			Content: []contentBlock{{Type: "text", Text: answer}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestSuggest(t *testing.T) {
	var seen apiRequest
	srv := fakeAPI(t, http.StatusOK,
		`{"title":" Go Docs ","collection":"Dev","isNewCollection":false,"tags":["go"]}`, &seen)

	c, err := New(Options{APIKey: "test-key", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got, err := c.Suggest(context.Background(), "https://go.dev", "Available collections")
	if err != nil {
		t.Fatalf("Suggest() failed: %v", err)
	}
	if got.Title != "Go Docs" || got.Collection != "Dev" || len(got.Tags) != 1 {
		t.Errorf("unexpected suggestion: %+v", got)
	}
	if seen.Model != DefaultModel {
		t.Errorf("expected model %s, got %s", DefaultModel, seen.Model)
	}
	if seen.OutputFormat == nil || len(seen.OutputFormat.Schema.Required) != 4 {
		t.Errorf("expected the suggestion schema to be sent")
	}
	if !strings.Contains(seen.Messages[0].Content, "https://go.dev") {
		t.Errorf("prompt should contain the url")
	}
}

func TestOrganize(t *testing.T) {
	var seen apiRequest
	srv := fakeAPI(t, http.StatusOK,
		`{"collection":"Reading","isNewCollection":true,"tags":["essay"],"confidence":"medium"}`, &seen)
	c, _ := New(Options{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})

	b := model.Bookmark{Title: "On Writing", URL: "https://example.com/essay"}
	got, err := c.Organize(context.Background(), b, "", []string{"misc"}, "")
	if err != nil {
		t.Fatalf("Organize() failed: %v", err)
	}
	if !got.IsNewCollection || got.Confidence != "medium" {
		t.Errorf("unexpected suggestion: %+v", got)
	}
	if seen.Model != "test-model" {
		t.Errorf("expected model test-model, got %s", seen.Model)
	}
	prompt := seen.Messages[0].Content
	if !strings.Contains(prompt, "Current collection: (none)") || !strings.Contains(prompt, "Current tags: misc") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}

func TestSuggest_APIError(t *testing.T) {
	srv := fakeAPI(t, http.StatusTooManyRequests, "", nil)
	c, _ := New(Options{APIKey: "test-key", BaseURL: srv.URL})

	_, err := c.Suggest(context.Background(), "https://go.dev", "")
	if !errors.Is(err, ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest, got %v", err)
	}
}

func TestSuggest_InvalidAnswer(t *testing.T) {
	srv := fakeAPI(t, http.StatusOK, "not json", nil)
	c, _ := New(Options{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := c.Suggest(context.Background(), "https://go.dev", ""); err == nil {
		t.Error("expected an error for a non-JSON answer")
	}
}
