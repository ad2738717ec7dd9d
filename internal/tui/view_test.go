package tui_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/marks/internal/tui"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

func render(app tui.App) string {
	return layout.StripANSI(app.WithDimensions(140, 40).View())
}

func assertContains(t *testing.T, view string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(view, w) {
			t.Errorf("expected view to contain %q\n%s", w, view)
		}
	}
}

func TestView_MainLayout(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	view := render(app)

	assertContains(t, view,
		"marks",
		"1 All", "2 Favorites", "3 Archive", "4 Trash",
		"── Collections ──", "All Bookmarks", "Dev",
		"── Tags ──", "# go",
		"GitHub", "Go Docs", "Rust Book",
		"[sort:date-newest]",
	)
	// Preview of the bookmark under the cursor.
	assertContains(t, view, "https://github.com", "Uncategorized", "Created: 2024-01-03")
}

func TestView_ListMode(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	app, _ = press(app, "v")
	view := render(app)

	assertContains(t, view, "[view:list]", "GitHub", "Go Docs", "Rust Book")
}

func TestView_GridShowsHostsAndTags(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	view := render(app)

	assertContains(t, view, "[view:grid]", "go.dev", "#go")
}

func TestView_SidebarPreview(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	app, _ = press(app, "h", "j")
	view := render(app)

	assertContains(t, view, "Collection", "1 bookmark")
}

func TestView_EmptySections(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})

	app, _ = press(app, "3")
	assertContains(t, render(app), "(archive is empty)")

	app, _ = press(app, "4")
	assertContains(t, render(app), "(trash is empty)")
}

func TestView_FilterShowsQuery(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	app, _ = press(app, "/")
	app = typeText(app, "rust")
	app, _ = press(app, "enter")
	view := render(app)

	assertContains(t, view, "/rust", "Rust Book")
	if strings.Contains(view, "Go Docs") {
		t.Error("filtered view should not show Go Docs")
	}
}

func TestView_Modals(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"add bookmark", []string{"a"}, []string{"Add Bookmark", "Title:", "URL:", "Collection:"}},
		{"edit bookmark", []string{"e"}, []string{"Edit Bookmark"}},
		{"add collection", []string{"A"}, []string{"Add Collection", "Icon:", "Color:", "bookmark", "neutral"}},
		{"move", []string{"m"}, []string{"Move to Collection", "Uncategorized", "Dev"}},
		{"confirm", []string{"h", "j", "d"}, []string{"Delete collection?", "This action cannot be undone."}},
		{"quick add", []string{"i"}, []string{"Quick Add", "Saves to Read Later"}},
		{"help", []string{"?"}, []string{"nav", "edit", "lifecycle", "delete forever"}},
		{"search", []string{"s"}, []string{"Search", "Type to search titles and URLs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, tui.AppParams{QuickAddCollection: "Read Later"})
			app, _ = press(app, tt.keys...)
			assertContains(t, render(app), tt.want...)
		})
	}
}

func TestView_ErrorMessage(t *testing.T) {
	app, _ := newTestApp(t, tui.AppParams{})
	app, _ = press(app, "a", "enter")

	assertContains(t, render(app), "✗ Title and URL are required")
}
