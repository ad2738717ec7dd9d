package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/model"
)

var ctx = context.Background()

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://marks.example.com/", "tok")

	if client.baseURL != "https://marks.example.com" {
		t.Errorf("expected baseURL without trailing slash, got '%s'", client.baseURL)
	}
	if client.token != "tok" {
		t.Errorf("expected token 'tok', got '%s'", client.token)
	}
}

func TestListBookmarks_QueryAndDecode(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookmarks" {
			t.Errorf("expected path '/bookmarks', got '%s'", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("expected bearer auth, got '%s'", auth)
		}
		q := r.URL.Query()
		if q.Get("collectionId") != "c1" {
			t.Errorf("expected collectionId 'c1', got '%s'", q.Get("collectionId"))
		}
		if q.Get("tags") != "t1,t2" {
			t.Errorf("expected tags 't1,t2', got '%s'", q.Get("tags"))
		}
		if q.Get("archived") != "true" {
			t.Errorf("expected archived 'true', got '%s'", q.Get("archived"))
		}
		if q.Has("trashed") {
			t.Errorf("did not expect trashed param")
		}

		_, _ = io.WriteString(w, `{"bookmarks":[{"id":"b1","title":"Go","url":"https://go.dev",
			"description":"","favicon":"","thumbnail":null,"duration":"4:20",
			"collection_id":"c1","tags":["t1"],"created_at":"2024-05-01T10:00:00Z",
			"is_favorite":true,"has_dark_icon":false,"archived_at":"2024-05-02T10:00:00Z","trashed_at":null}]}`)
	}))
	defer server.Close()

	gw := NewClient(server.URL, "tok").Gateway()
	got, err := gw.Bookmarks.List(ctx, gateway.BookmarkFilter{
		CollectionID: "c1",
		Tags:         []string{"t1", "t2"},
		Archived:     true,
	})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(got))
	}
	b := got[0]
	if b.Title != "Go" || !b.IsFavorite || b.Duration != "4:20" || b.Thumbnail != "" {
		t.Errorf("unexpected bookmark: %+v", b)
	}
	if !b.CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, b.CreatedAt)
	}
	if !model.IsArchived(b) {
		t.Errorf("expected archived bookmark")
	}
	if !b.InCollection("c1") {
		t.Errorf("expected collection c1, got %v", b.CollectionID)
	}
}

func TestListBookmarks_AllCollectionIsNotSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got '%s'", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"bookmarks":[]}`)
	}))
	defer server.Close()

	got, err := NewClient(server.URL, "tok").Gateway().Bookmarks.List(ctx, gateway.BookmarkFilter{CollectionID: model.AllCollectionID})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d", len(got))
	}
}

func TestCreateBookmark(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got '%s'", ct)
		}
		var body BookmarkCreate
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Title != "Go" || body.URL != "https://go.dev" {
			t.Errorf("unexpected body: %+v", body)
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(BookmarkResponse{
			Bookmark: Bookmark{ID: "b1", Title: body.Title, URL: body.URL, Tags: []string{}},
			Message:  "Bookmark created successfully",
		})
	}))
	defer server.Close()

	b, err := NewClient(server.URL, "tok").Gateway().Bookmarks.Create(ctx, model.BookmarkDraft{Title: "Go", URL: "https://go.dev"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if b.ID != "b1" {
		t.Errorf("expected id 'b1', got '%s'", b.ID)
	}
}

func TestUpdateBookmark_SendsExplicitNulls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/bookmarks/b1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if v, ok := body["trashed_at"]; !ok || v != nil {
			t.Errorf("expected trashed_at null, got %v (present=%v)", v, ok)
		}
		if _, ok := body["title"]; ok {
			t.Errorf("did not expect title in body")
		}
		_, _ = io.WriteString(w, `{"bookmark":{"id":"b1","title":"Go","url":"https://go.dev","tags":[]},"message":"Bookmark updated successfully"}`)
	}))
	defer server.Close()

	b, err := NewClient(server.URL, "tok").Gateway().Bookmarks.Update(ctx, "b1", model.UntrashPatch())
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !model.IsActive(b) {
		t.Errorf("expected active bookmark")
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{"validation", http.StatusBadRequest, `{"error":"Title and URL are required"}`, model.ErrValidation, "Title and URL are required"},
		{"auth", http.StatusUnauthorized, ``, model.ErrAuth, model.UnauthorizedMessage},
		{"not found", http.StatusNotFound, `{"error":"Bookmark not found"}`, model.ErrNotFound, "Bookmark not found"},
		{"server", http.StatusInternalServerError, `{"error":"Internal server error"}`, model.ErrServer, "Internal server error"},
		{"rate limited", http.StatusTooManyRequests, `{"error":"Too many requests"}`, model.ErrServer, "Too many requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			err := NewClient(server.URL, "tok").Gateway().Bookmarks.Delete(ctx, "b1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if msg := model.MessageOf(err); msg != tt.message {
				t.Errorf("expected message '%s', got '%s'", tt.message, msg)
			}
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url, "tok").Gateway().Tags.List(ctx)
	if !errors.Is(err, model.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestListCollections_StripsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"collections":[
			{"id":"all","name":"All Bookmarks","icon":"bookmark","color":"neutral","count":7},
			{"id":"c1","name":"Dev","icon":"code","color":"blue","count":3}]}`)
	}))
	defer server.Close()

	list, err := NewClient(server.URL, "tok").Gateway().Collections.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if list.ActiveTotal != 7 {
		t.Errorf("expected active total 7, got %d", list.ActiveTotal)
	}
	if len(list.Collections) != 1 || list.Collections[0].ID != "c1" {
		t.Errorf("unexpected collections: %+v", list.Collections)
	}
}

func TestTagRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body TagCreate
			_ = json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(TagResponse{Tag: Tag{ID: "t1", Name: body.Name, Color: "gray"}})
		case http.MethodPatch:
			var body TagUpdate
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Color != nil {
				t.Errorf("did not expect color in patch")
			}
			_ = json.NewEncoder(w).Encode(TagResponse{Tag: Tag{ID: "t1", Name: *body.Name, Color: "gray"}})
		}
	}))
	defer server.Close()

	tags := NewClient(server.URL, "tok").Gateway().Tags
	tag, err := tags.Create(ctx, model.TagDraft{Name: "go"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	name := "golang"
	tag, err = tags.Update(ctx, tag.ID, model.TagPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if tag.Name != "golang" {
		t.Errorf("expected name 'golang', got '%s'", tag.Name)
	}
}

func TestDecodeBookmarkPatch(t *testing.T) {
	p, err := DecodeBookmarkPatch([]byte(`{"collection_id":null,"thumbnail":null,"tags":null,"is_favorite":true}`))
	if err != nil {
		t.Fatalf("DecodeBookmarkPatch() failed: %v", err)
	}
	if !p.CollectionID.IsNull() {
		t.Errorf("expected collection_id cleared")
	}
	if p.Thumbnail == nil || *p.Thumbnail != "" {
		t.Errorf("expected thumbnail cleared to empty string")
	}
	if p.Tags == nil || len(p.Tags) != 0 {
		t.Errorf("expected tags replaced with empty set, got %v", p.Tags)
	}
	if p.IsFavorite == nil || !*p.IsFavorite {
		t.Errorf("expected is_favorite true")
	}
	if p.Title != nil || p.ArchivedAt.IsSet() {
		t.Errorf("expected absent fields to stay absent")
	}

	if _, err := DecodeBookmarkPatch([]byte(`{"title":null}`)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for null title, got %v", err)
	}
	if _, err := DecodeBookmarkPatch([]byte(`{"is_favorite":"yes"}`)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for bad type, got %v", err)
	}
	if _, err := DecodeBookmarkPatch([]byte(`[`)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for bad json, got %v", err)
	}
}

func TestDecodeBookmarkPatch_CamelCaseKeys(t *testing.T) {
	p, err := DecodeBookmarkPatch([]byte(`{"collectionId":"c1","isFavorite":true,"hasDarkIcon":true,"archivedAt":"2024-01-01T00:00:00Z","trashedAt":null}`))
	if err != nil {
		t.Fatalf("DecodeBookmarkPatch() failed: %v", err)
	}
	if id, ok := p.CollectionID.Get(); !ok || id != "c1" {
		t.Errorf("expected collectionId c1, got %v", p.CollectionID.Ptr())
	}
	if p.IsFavorite == nil || !*p.IsFavorite || p.HasDarkIcon == nil || !*p.HasDarkIcon {
		t.Errorf("expected isFavorite and hasDarkIcon true")
	}
	if at, ok := p.ArchivedAt.Get(); !ok || !at.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected archivedAt set, got %v", p.ArchivedAt.Ptr())
	}
	if !p.TrashedAt.IsNull() {
		t.Errorf("expected trashedAt cleared")
	}

	if _, err := DecodeBookmarkPatch([]byte(`{"collectionId":"c1","collection_id":"c2"}`)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error for both spellings, got %v", err)
	}
}

func TestBookmarkCreateAcceptsBothSpellings(t *testing.T) {
	var camel BookmarkCreate
	if err := json.Unmarshal([]byte(`{"title":"Go","url":"https://go.dev","collectionId":"c1","isFavorite":true,"hasDarkIcon":true}`), &camel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	d := camel.Draft()
	if d.CollectionID == nil || *d.CollectionID != "c1" || !d.IsFavorite || !d.HasDarkIcon {
		t.Errorf("camelCase fields lost: %+v", d)
	}

	var snake BookmarkCreate
	if err := json.Unmarshal([]byte(`{"title":"Go","url":"https://go.dev","collection_id":"c2","is_favorite":true}`), &snake); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snake.CollectionID == nil || *snake.CollectionID != "c2" || !snake.IsFavorite {
		t.Errorf("snake_case fields lost: %+v", snake)
	}

	data, err := json.Marshal(FromDraft(d))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"collectionId":"c1"`) || !strings.Contains(string(data), `"isFavorite":true`) {
		t.Errorf("expected camelCase body, got %s", data)
	}
}

func TestPatchEncodeDecode(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	data, err := EncodeBookmarkPatch(model.TrashPatch(now))
	if err != nil {
		t.Fatalf("EncodeBookmarkPatch() failed: %v", err)
	}
	p, err := DecodeBookmarkPatch(data)
	if err != nil {
		t.Fatalf("DecodeBookmarkPatch() failed: %v", err)
	}
	got, ok := p.TrashedAt.Get()
	if !ok || !got.Equal(now) {
		t.Errorf("expected trashed_at %v, got %v", now, got)
	}
}
