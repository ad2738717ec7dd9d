package culler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/gateway/gatewaytest"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/get-only", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	srv := testServer(t)
	bookmarks := []model.Bookmark{
		{ID: "ok", URL: srv.URL + "/ok"},
		{ID: "gone", URL: srv.URL + "/gone"},
		{ID: "missing", URL: srv.URL + "/missing"},
		{ID: "broken", URL: srv.URL + "/broken"},
		{ID: "get-only", URL: srv.URL + "/get-only"},
	}

	var calls atomic.Int32
	results := Check(context.Background(), bookmarks, Options{
		Concurrency: 2,
		Client:      srv.Client(),
		OnProgress: func(completed, total int) {
			calls.Add(1)
			if total != len(bookmarks) {
				t.Errorf("expected total %d, got %d", len(bookmarks), total)
			}
		},
	})

	if len(results) != len(bookmarks) {
		t.Fatalf("expected %d results, got %d", len(bookmarks), len(results))
	}
	want := []Status{Healthy, Dead, Dead, Unreachable, Healthy}
	for i, r := range results {
		if r.Bookmark.ID != bookmarks[i].ID {
			t.Errorf("result %d: expected %s, got %s", i, bookmarks[i].ID, r.Bookmark.ID)
		}
		if r.Status != want[i] {
			t.Errorf("%s: expected %v, got %v (%d %s)", r.Bookmark.ID, want[i], r.Status, r.StatusCode, r.Error)
		}
	}
	if results[3].Error != "Internal Server Error" {
		t.Errorf("expected status text, got %q", results[3].Error)
	}
	if int(calls.Load()) != len(bookmarks) {
		t.Errorf("expected %d progress calls, got %d", len(bookmarks), calls.Load())
	}
}

func TestCheck_ExcludedDomain(t *testing.T) {
	srv := testServer(t)
	results := Check(context.Background(), []model.Bookmark{{URL: srv.URL + "/missing"}}, Options{
		Client:         srv.Client(),
		ExcludeDomains: []string{"127.0.0.1"},
	})

	if results[0].Status != Unreachable || results[0].Error != "Possibly private (auth required)" {
		t.Errorf("expected possibly private, got %v %q", results[0].Status, results[0].Error)
	}
}

func TestCheck_SafeClientBlocksLoopback(t *testing.T) {
	srv := testServer(t)
	results := Check(context.Background(), []model.Bookmark{{URL: srv.URL + "/ok"}}, Options{Timeout: time.Second})

	if results[0].Status != Unreachable {
		t.Errorf("expected loopback to be unreachable, got %v", results[0].Status)
	}
}

func TestCheck_Empty(t *testing.T) {
	if results := Check(context.Background(), nil, Options{}); results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestIsExcludedDomain(t *testing.T) {
	exclude := map[string]bool{"github.com": true}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/private/repo", true},
		{"https://api.github.com/x", true},
		{"https://GitHub.com:443/x", true},
		{"https://notgithub.com", false},
		{"https://gitlab.com", false},
	}
	for _, tt := range tests {
		if got := isExcludedDomain(tt.url, exclude); got != tt.want {
			t.Errorf("isExcludedDomain(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dial tcp: lookup nope.invalid: no such host", "DNS failure"},
		{"Get \"x\": context deadline exceeded (Client.Timeout exceeded)", "Timeout"},
		{"dial tcp 10.0.0.1:80: connect: connection refused", "Connection refused"},
		{"x509: certificate signed by unknown authority", "TLS/certificate error"},
		{"something odd", "something odd"},
	}
	for _, tt := range tests {
		if got := normalizeError(tt.in); got != tt.want {
			t.Errorf("normalizeError(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrashDead(t *testing.T) {
	ctx := context.Background()
	w := store.NewWorkspace(gatewaytest.New().Gateway(), nil)
	if err := w.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	dead, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Dead", URL: "https://dead.example"})
	if err != nil {
		t.Fatalf("CreateBookmark() failed: %v", err)
	}
	alive, err := w.CreateBookmark(ctx, model.BookmarkDraft{Title: "Alive", URL: "https://alive.example"})
	if err != nil {
		t.Fatalf("CreateBookmark() failed: %v", err)
	}

	results := []Result{
		{Bookmark: dead, Status: Dead, StatusCode: 404},
		{Bookmark: alive, Status: Healthy, StatusCode: 200},
	}
	n, err := TrashDead(ctx, w, results)
	if err != nil {
		t.Fatalf("TrashDead() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 trashed, got %d", n)
	}
	if len(w.Bookmarks.Trashed()) != 1 || w.Bookmarks.Trashed()[0].ID != dead.ID {
		t.Errorf("expected the dead bookmark in trash")
	}
	if len(w.Bookmarks.Active()) != 1 {
		t.Errorf("expected 1 active bookmark, got %d", len(w.Bookmarks.Active()))
	}
}
