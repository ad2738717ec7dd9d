package picker

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
)

func testResults() []search.Result {
	return []search.Result{
		{Bookmark: model.Bookmark{ID: "b1", Title: "GitHub", URL: "https://github.com"}},
		{Bookmark: model.Bookmark{ID: "b2", Title: "GitLab", URL: "https://gitlab.com"}},
	}
}

func press(p Picker, key string) (Picker, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	m, cmd := p.Update(msg)
	return m.(Picker), cmd
}

func TestPicker_InitialState(t *testing.T) {
	p := New(testResults(), "git")

	if p.cursor != 0 {
		t.Errorf("expected cursor at 0, got %d", p.cursor)
	}
	if len(p.results) != 2 {
		t.Errorf("expected 2 results, got %d", len(p.results))
	}
}

func TestPicker_Navigate(t *testing.T) {
	p := New(testResults(), "git")

	p, _ = press(p, "j")
	if p.cursor != 1 {
		t.Errorf("after j, expected cursor 1, got %d", p.cursor)
	}

	p, _ = press(p, "j")
	if p.cursor != 1 {
		t.Errorf("j at bottom should stay at 1, got %d", p.cursor)
	}

	p, _ = press(p, "k")
	p, _ = press(p, "k")
	if p.cursor != 0 {
		t.Errorf("k at top should stay at 0, got %d", p.cursor)
	}
}

func TestPicker_ArrowKeys(t *testing.T) {
	p := New(testResults(), "git")

	p, _ = press(p, "down")
	if p.cursor != 1 {
		t.Errorf("after down, expected cursor 1, got %d", p.cursor)
	}
	p, _ = press(p, "up")
	if p.cursor != 0 {
		t.Errorf("after up, expected cursor 0, got %d", p.cursor)
	}
	p, _ = press(p, "G")
	if p.cursor != 1 {
		t.Errorf("after G, expected cursor 1, got %d", p.cursor)
	}
}

func TestPicker_SelectItem(t *testing.T) {
	p := New(testResults(), "git")
	p, _ = press(p, "j")
	p, cmd := press(p, "enter")

	if cmd == nil {
		t.Fatal("expected quit command on enter")
	}
	b, ok := p.Selected()
	if !ok {
		t.Fatal("expected a selection")
	}
	if b.ID != "b2" {
		t.Errorf("expected b2, got %s", b.ID)
	}
}

func TestPicker_Cancel(t *testing.T) {
	p := New(testResults(), "git")
	p, cmd := press(p, "esc")

	if cmd == nil {
		t.Fatal("expected quit command on esc")
	}
	if !p.Cancelled() {
		t.Error("expected picker to be cancelled")
	}
	if _, ok := p.Selected(); ok {
		t.Error("cancelled picker should have no selection")
	}
}

func TestPicker_EnterWithoutResults(t *testing.T) {
	p := New(nil, "nothing")
	p, _ = press(p, "enter")

	if _, ok := p.Selected(); ok {
		t.Error("expected no selection")
	}
	if !p.Cancelled() {
		t.Error("expected picker to be cancelled")
	}
}

func TestPicker_ViewScrollsToCursor(t *testing.T) {
	var results []search.Result
	for _, title := range []string{"one", "two", "three", "four", "five", "six"} {
		results = append(results, search.Result{Bookmark: model.Bookmark{Title: title, URL: "https://" + title}})
	}
	p := New(results, "")
	m, _ := p.Update(tea.WindowSizeMsg{Width: 80, Height: 9})
	p = m.(Picker)

	for range 5 {
		p, _ = press(p, "j")
	}

	view := p.View()
	if !strings.Contains(view, "six") {
		t.Error("expected the cursor row to be visible")
	}
	if strings.Contains(view, "one") {
		t.Error("expected the first row to be scrolled out")
	}
}
