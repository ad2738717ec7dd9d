package search

import (
	"testing"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

func bookmarks() []model.Bookmark {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []model.Bookmark{
		{ID: "b1", Title: "GitHub", URL: "https://github.com", CreatedAt: now},
		{ID: "b2", Title: "GitLab", URL: "https://gitlab.com", CreatedAt: now},
		{ID: "b3", Title: "TanStack Router", URL: "https://tanstack.com/router", CreatedAt: now},
		{ID: "b4", Title: "Effective Go", URL: "https://go.dev/doc/effective_go", CreatedAt: now},
	}
}

func TestFuzzy_EmptyQuery(t *testing.T) {
	results := Fuzzy(bookmarks(), "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzy_ExactMatch(t *testing.T) {
	results := Fuzzy(bookmarks(), "GitHub")

	if len(results) == 0 {
		t.Fatal("expected at least 1 result")
	}
	if results[0].Bookmark.ID != "b1" {
		t.Errorf("expected GitHub first, got %s", results[0].Bookmark.Title)
	}
	if results[0].Field != FieldTitle {
		t.Errorf("expected a title match, got %v", results[0].Field)
	}
}

func TestFuzzy_FuzzyMatch(t *testing.T) {
	results := Fuzzy(bookmarks(), "tsr")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.Title != "TanStack Router" {
		t.Errorf("expected TanStack Router, got %s", results[0].Bookmark.Title)
	}
	if len(results[0].MatchedIndexes) != 3 {
		t.Errorf("expected 3 matched indexes, got %v", results[0].MatchedIndexes)
	}
}

func TestFuzzy_FallsBackToURL(t *testing.T) {
	results := Fuzzy(bookmarks(), "go.dev")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.ID != "b4" || results[0].Field != FieldURL {
		t.Errorf("expected url match on b4, got %s (%v)", results[0].Bookmark.ID, results[0].Field)
	}
}

func TestFuzzy_NoMatch(t *testing.T) {
	results := Fuzzy(bookmarks(), "zzzzqqq")

	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBookmarks(t *testing.T) {
	results := Fuzzy(bookmarks(), "Git")

	got := Bookmarks(results)
	if len(got) != len(results) {
		t.Fatalf("expected %d bookmarks, got %d", len(results), len(got))
	}
	for i := range got {
		if got[i].ID != results[i].Bookmark.ID {
			t.Errorf("order mismatch at %d", i)
		}
	}
}
