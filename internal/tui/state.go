package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// Mode is the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeSearch
	ModeAddBookmark
	ModeEditBookmark
	ModeAddCollection
	ModeEditCollection
	ModeMove
	ModeConfirm
	ModeQuickAdd
	ModeQuickAddLoading
	ModeQuickAddConfirm
	ModeHelp
)

// Section selects which partition the list shows.
type Section int

const (
	SectionAll Section = iota
	SectionFavorites
	SectionArchive
	SectionTrash
)

var sections = []Section{SectionAll, SectionFavorites, SectionArchive, SectionTrash}

func (s Section) Label() string {
	switch s {
	case SectionFavorites:
		return "Favorites"
	case SectionArchive:
		return "Archive"
	case SectionTrash:
		return "Trash"
	default:
		return "All"
	}
}

// Focus is the pane that receives navigation keys.
type Focus int

const (
	FocusList Focus = iota
	FocusSidebar
)

// MessageType determines the styling of the status message.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// Bookmark form fields, in tab order.
const (
	fieldTitle = iota
	fieldURL
	fieldDescription
	fieldTags
	fieldCollection
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "URL", "Description", "Tags (comma-separated)", "Collection"}

// FormState holds the add/edit bookmark form.
type FormState struct {
	Inputs [fieldCount]textinput.Model
	Focus  int
	EditID string // empty when adding
}

// NewFormState creates a FormState with initialized inputs.
func NewFormState(cfg layout.LayoutConfig) FormState {
	var f FormState
	limits := [fieldCount]int{
		cfg.Input.TitleCharLimit,
		cfg.Input.URLCharLimit,
		cfg.Input.DescriptionCharLimit,
		cfg.Input.TagsCharLimit,
		cfg.Input.TitleCharLimit,
	}
	placeholders := [fieldCount]string{"Title", "https://...", "Optional", "tag1, tag2", "Uncategorized"}
	for i := range f.Inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.Width = cfg.Input.StandardWidth
		f.Inputs[i] = in
	}
	return f
}

// Reset clears the form for a new session and focuses the title.
func (f *FormState) Reset() {
	for i := range f.Inputs {
		f.Inputs[i].Reset()
	}
	f.EditID = ""
	f.FocusField(fieldTitle)
}

// FocusField focuses input i and blurs the rest.
func (f *FormState) FocusField(i int) tea.Cmd {
	f.Focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.Inputs {
		if j == f.Focus {
			cmd = f.Inputs[j].Focus()
		} else {
			f.Inputs[j].Blur()
		}
	}
	return cmd
}

func (f *FormState) Value(i int) string {
	return strings.TrimSpace(f.Inputs[i].Value())
}

// TagNames splits the tags input on commas.
func (f *FormState) TagNames() []string {
	var names []string
	for _, n := range strings.Split(f.Inputs[fieldTags].Value(), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// Collection form rows.
const (
	collectionFieldName = iota
	collectionFieldIcon
	collectionFieldColor
	collectionFieldCount
)

// CollectionFormState holds the add/edit collection form. Icon and color
// cycle through the closed vocabularies.
type CollectionFormState struct {
	Name     textinput.Model
	IconIdx  int
	ColorIdx int
	Field    int
	EditID   string
}

func NewCollectionFormState(cfg layout.LayoutConfig) CollectionFormState {
	input := textinput.New()
	input.Placeholder = "Name"
	input.CharLimit = cfg.Input.TitleCharLimit
	input.Width = cfg.Input.StandardWidth
	return CollectionFormState{Name: input}
}

// Load fills the form from c, or resets it when c is nil.
func (c *CollectionFormState) Load(col *model.Collection) {
	c.Name.Reset()
	c.IconIdx, c.ColorIdx, c.Field, c.EditID = 0, 0, collectionFieldName, ""
	if col != nil {
		c.Name.SetValue(col.Name)
		c.IconIdx = max(indexOf(model.CollectionIcons, col.Icon), 0)
		c.ColorIdx = max(indexOf(model.CollectionColors, col.Color), 0)
		c.EditID = col.ID
	}
	c.Name.Focus()
}

func (c *CollectionFormState) Icon() string  { return model.CollectionIcons[c.IconIdx] }
func (c *CollectionFormState) Color() string { return model.CollectionColors[c.ColorIdx] }

// Cycle moves the icon or color selection by delta.
func (c *CollectionFormState) Cycle(delta int) {
	switch c.Field {
	case collectionFieldIcon:
		c.IconIdx = wrap(c.IconIdx+delta, len(model.CollectionIcons))
	case collectionFieldColor:
		c.ColorIdx = wrap(c.ColorIdx+delta, len(model.CollectionColors))
	}
}

// NextField moves focus; the name input only takes keys while focused.
func (c *CollectionFormState) NextField(delta int) {
	c.Field = wrap(c.Field+delta, collectionFieldCount)
	if c.Field == collectionFieldName {
		c.Name.Focus()
	} else {
		c.Name.Blur()
	}
}

// PickerState holds the move-to-collection picker.
type PickerState struct {
	FilterInput textinput.Model
	Options     []model.Collection // first entry is "Uncategorized" with empty ID
	Filtered    []model.Collection
	Cursor      int
	BookmarkID  string
}

func NewPickerState(cfg layout.LayoutConfig) PickerState {
	input := textinput.New()
	input.Placeholder = "Filter collections..."
	input.CharLimit = cfg.Input.TitleCharLimit
	input.Width = cfg.Input.StandardWidth
	return PickerState{FilterInput: input}
}

// Open prepares the picker for moving bookmarkID.
func (p *PickerState) Open(bookmarkID string, collections []model.Collection) {
	p.FilterInput.Reset()
	p.FilterInput.Focus()
	p.BookmarkID = bookmarkID
	p.Options = append([]model.Collection{{Name: "Uncategorized"}}, collections...)
	p.ApplyFilter()
}

// ApplyFilter narrows Options by the filter input, case-insensitively.
func (p *PickerState) ApplyFilter() {
	q := strings.ToLower(strings.TrimSpace(p.FilterInput.Value()))
	p.Filtered = p.Filtered[:0]
	for _, c := range p.Options {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			p.Filtered = append(p.Filtered, c)
		}
	}
	p.Cursor = 0
}

// Selected returns the highlighted collection.
func (p *PickerState) Selected() (model.Collection, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Filtered) {
		return model.Collection{}, false
	}
	return p.Filtered[p.Cursor], true
}

// ConfirmState holds a pending destructive action.
type ConfirmState struct {
	Title  string
	Detail string
	Action tea.Cmd
}

// QuickAddState holds state for the quick add flow.
type QuickAddState struct {
	Input      textinput.Model // URL input
	URL        string
	Suggestion *ai.Suggestion
	Err        error
}

func NewQuickAddState(cfg layout.LayoutConfig) QuickAddState {
	input := textinput.New()
	input.Placeholder = "https://..."
	input.CharLimit = cfg.Input.URLCharLimit
	input.Width = cfg.Input.QuickAddWidth
	return QuickAddState{Input: input}
}

// Reset clears the quick add state for a new session.
func (q *QuickAddState) Reset() {
	q.Input.Reset()
	q.Input.Focus()
	q.URL = ""
	q.Suggestion = nil
	q.Err = nil
}

// SearchState holds the fuzzy finder and the inline filter.
type SearchState struct {
	Input   textinput.Model
	Results []search.Result
	Cursor  int

	FilterInput textinput.Model
}

func NewSearchState(cfg layout.LayoutConfig) SearchState {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search all..."
	searchInput.CharLimit = cfg.Input.SearchCharLimit
	searchInput.Width = cfg.Input.StandardWidth

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter..."
	filterInput.CharLimit = cfg.Input.SearchCharLimit
	filterInput.Width = cfg.Input.FilterWidth

	return SearchState{
		Input:       searchInput,
		FilterInput: filterInput,
	}
}

// Reset clears the fuzzy finder.
func (s *SearchState) Reset() {
	s.Input.Reset()
	s.Input.Focus()
	s.Results = nil
	s.Cursor = 0
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
