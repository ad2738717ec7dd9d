package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar.
func (a App) renderHints(hints HintSet) string {
	all := hints.All()
	if len(all) == 0 {
		return ""
	}

	parts := make([]string, len(all))
	for i, h := range all {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint
	Edit   []Hint
	Action []Hint
	System []Hint
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

var (
	hintCancel = Hint{Key: "Esc", Desc: "cancel"}
	hintSave   = Hint{Key: "Enter", Desc: "save"}
	hintHelp   = Hint{Key: "?", Desc: "help"}
	hintQuit   = Hint{Key: "q", Desc: "quit"}
)

// getContextualHints returns the appropriate hints for the current mode.
func (a App) getContextualHints() HintSet {
	switch a.mode {
	case ModeNormal:
		if a.focus == FocusSidebar {
			return a.getSidebarHints()
		}
		return a.getListHints()
	case ModeFilter:
		return HintSet{
			Nav:    []Hint{{Key: "type", Desc: "filter"}},
			Action: []Hint{{Key: "Enter", Desc: "apply"}},
			System: []Hint{{Key: "Esc", Desc: "clear"}},
		}
	case ModeSearch:
		return HintSet{
			Nav:    []Hint{{Key: "↑/↓", Desc: "move"}},
			Action: []Hint{{Key: "Enter", Desc: "open"}},
			System: []Hint{hintCancel},
		}
	case ModeAddBookmark, ModeEditBookmark:
		return HintSet{
			Nav:    []Hint{{Key: "Tab", Desc: "next"}},
			Action: []Hint{hintSave},
			System: []Hint{hintCancel},
		}
	case ModeAddCollection, ModeEditCollection:
		return HintSet{
			Nav:    []Hint{{Key: "Tab", Desc: "next"}, {Key: "←/→", Desc: "change"}},
			Action: []Hint{hintSave},
			System: []Hint{hintCancel},
		}
	case ModeMove:
		return HintSet{
			Nav:    []Hint{{Key: "↑/↓", Desc: "move"}, {Key: "type", Desc: "filter"}},
			Action: []Hint{{Key: "Enter", Desc: "move here"}},
			System: []Hint{hintCancel},
		}
	case ModeConfirm:
		return HintSet{
			Action: []Hint{{Key: "Enter/y", Desc: "confirm"}},
			System: []Hint{hintCancel},
		}
	case ModeQuickAdd:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "add"}},
			System: []Hint{hintCancel},
		}
	case ModeQuickAddLoading:
		return HintSet{System: []Hint{hintCancel}}
	case ModeQuickAddConfirm:
		return HintSet{
			Action: []Hint{{Key: "Enter", Desc: "accept"}},
			Edit:   []Hint{{Key: "e", Desc: "edit"}},
			System: []Hint{hintCancel},
		}
	case ModeHelp:
		return HintSet{System: []Hint{{Key: "?/q/Esc", Desc: "close"}}}
	default:
		return HintSet{}
	}
}

// getListHints returns hints for the focused bookmark list. Lifecycle keys
// depend on the section.
func (a App) getListHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "h", Desc: "sidebar"},
			{Key: "1-4", Desc: "section"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "open"},
			{Key: "s", Desc: "search"},
			{Key: "/", Desc: "filter"},
		},
		System: []Hint{hintHelp, hintQuit},
	}
	switch a.section {
	case SectionArchive:
		hints.Edit = []Hint{{Key: "r", Desc: "restore"}}
	case SectionTrash:
		hints.Edit = []Hint{{Key: "r", Desc: "restore"}, {Key: "D", Desc: "delete"}}
	default:
		hints.Edit = []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "*", Desc: "fav"},
			{Key: "x", Desc: "archive"},
			{Key: "d", Desc: "trash"},
		}
	}
	return hints
}

// getSidebarHints returns hints for the collections and tags sidebar.
func (a App) getSidebarHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
			{Key: "l", Desc: "list"},
		},
		Action: []Hint{
			{Key: "Space", Desc: "select"},
			{Key: "c", Desc: "clear tags"},
		},
		Edit: []Hint{
			{Key: "A", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
		},
		System: []Hint{hintHelp, hintQuit},
	}
}
