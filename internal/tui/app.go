package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/marks/internal/ai"
	"github.com/nikbrunner/marks/internal/logger"
	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// App is the main bubbletea model for the bookmark manager.
type App struct {
	ws                 *store.Workspace
	keys               KeyMap
	styles             Styles
	layoutConfig       layout.LayoutConfig
	ctx                context.Context
	ai                 *ai.Client // nil disables AI suggestions
	quickAddCollection string
	openURL            func(string) error
	copyText           func(string) error
	log                logger.Logger

	mode          Mode
	section       Section
	focus         Focus
	cursor        int // index into visibleBookmarks
	sidebarCursor int // index into sidebarEntries
	lastKeyWasG   bool
	width         int
	height        int

	messageText string
	messageType MessageType

	form           FormState
	collectionForm CollectionFormState
	picker         PickerState
	confirm        ConfirmState
	quickAdd       QuickAddState
	search         SearchState
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Workspace    *store.Workspace
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Context      context.Context      // optional, uses context.Background
	AI           *ai.Client
	// QuickAddCollection receives quick adds made without AI. Empty leaves
	// them uncategorized.
	QuickAddCollection string
	OpenURL            func(string) error // optional, uses OpenURL
	CopyText           func(string) error // optional, uses the system clipboard
	Logger             logger.Logger
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	openURL := params.OpenURL
	if openURL == nil {
		openURL = OpenURL
	}
	copyText := params.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}

	return App{
		ws:                 params.Workspace,
		keys:               keys,
		styles:             styles,
		layoutConfig:       layoutCfg,
		ctx:                ctx,
		ai:                 params.AI,
		quickAddCollection: strings.TrimSpace(params.QuickAddCollection),
		openURL:            openURL,
		copyText:           copyText,
		log:                log,
		width:              80,
		height:             24,
		form:               NewFormState(layoutCfg),
		collectionForm:     NewCollectionFormState(layoutCfg),
		picker:             NewPickerState(layoutCfg),
		quickAdd:           NewQuickAddState(layoutCfg),
		search:             NewSearchState(layoutCfg),
	}
}

// Cursor returns the current list cursor position.
func (a App) Cursor() int { return a.cursor }

// Mode returns the current interaction mode.
func (a App) Mode() Mode { return a.mode }

// Section returns the partition the list shows.
func (a App) Section() Section { return a.section }

// Focus returns the focused pane.
func (a App) Focus() Focus { return a.focus }

// Message returns the status line text.
func (a App) Message() string { return a.messageText }

// WithDimensions returns a copy of a sized as if the terminal reported w×h.
func (a App) WithDimensions(w, h int) App {
	a.width, a.height = w, h
	return a
}

// visibleBookmarks returns the bookmarks of the current section.
func (a App) visibleBookmarks() []model.Bookmark {
	switch a.section {
	case SectionFavorites:
		return a.ws.Bookmarks.Favorites()
	case SectionArchive:
		return a.ws.Bookmarks.Archived()
	case SectionTrash:
		return a.ws.Bookmarks.Trashed()
	default:
		return a.ws.Bookmarks.Filtered()
	}
}

// selectedBookmark returns the bookmark under the list cursor.
func (a App) selectedBookmark() (model.Bookmark, bool) {
	bs := a.visibleBookmarks()
	if a.cursor < 0 || a.cursor >= len(bs) {
		return model.Bookmark{}, false
	}
	return bs[a.cursor], true
}

// selectedEntry returns the sidebar entry under the sidebar cursor.
func (a App) selectedEntry() (Entry, bool) {
	entries := a.sidebarEntries()
	if a.sidebarCursor < 0 || a.sidebarCursor >= len(entries) {
		return Entry{}, false
	}
	return entries[a.sidebarCursor], true
}

func (a App) activeSection() bool {
	return a.section == SectionAll || a.section == SectionFavorites
}

// clampCursors keeps both cursors inside their lists after the data changed.
func (a *App) clampCursors() {
	a.cursor = clamp(a.cursor, len(a.visibleBookmarks()))
	a.sidebarCursor = clamp(a.sidebarCursor, len(a.sidebarEntries()))
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
}

func (a *App) fail(err error) {
	a.log.Warn("tui operation failed", logger.Error(err))
	a.setMessage(MessageError, model.MessageOf(err))
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.loadCmd()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case loadedMsg:
		if msg.err != nil {
			a.fail(msg.err)
		}
		a.clampCursors()
		return a, nil

	case opMsg:
		if msg.err != nil {
			a.fail(msg.err)
		} else {
			a.setMessage(MessageSuccess, msg.text)
		}
		a.clampCursors()
		return a, nil

	case suggestMsg:
		return a.handleSuggestion(msg)

	case tea.KeyMsg:
		switch a.mode {
		case ModeNormal:
			return a.handleNormalMode(msg)
		case ModeFilter:
			return a.handleFilterMode(msg)
		case ModeSearch:
			return a.handleSearchMode(msg)
		case ModeAddBookmark, ModeEditBookmark:
			return a.handleBookmarkForm(msg)
		case ModeAddCollection, ModeEditCollection:
			return a.handleCollectionForm(msg)
		case ModeMove:
			return a.handleMoveMode(msg)
		case ModeConfirm:
			return a.handleConfirmMode(msg)
		case ModeQuickAdd:
			return a.handleQuickAddMode(msg)
		case ModeQuickAddLoading:
			if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
				a.mode = ModeNormal
				a.setMessage(MessageInfo, "Quick add cancelled")
			}
			return a, nil
		case ModeQuickAddConfirm:
			return a.handleQuickAddConfirmMode(msg)
		case ModeHelp:
			if msg.Type == tea.KeyEsc || key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Quit) {
				a.mode = ModeNormal
			}
			return a, nil
		}
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

// handleNormalMode handles keys while browsing.
func (a App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.lastKeyWasG = false
			a.moveCursorTo(0)
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false
	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Down):
		a.moveCursorBy(1)

	case key.Matches(msg, a.keys.Up):
		a.moveCursorBy(-1)

	case key.Matches(msg, a.keys.Bottom):
		a.moveCursorTo(-1)

	case key.Matches(msg, a.keys.FocusNext):
		if a.focus == FocusList {
			a.focus = FocusSidebar
		} else {
			a.focus = FocusList
		}

	case key.Matches(msg, a.keys.FocusLeft):
		a.focus = FocusSidebar

	case key.Matches(msg, a.keys.FocusRight):
		a.focus = FocusList

	case key.Matches(msg, a.keys.SectionAll):
		a.switchSection(SectionAll)
	case key.Matches(msg, a.keys.SectionFavorites):
		a.switchSection(SectionFavorites)
	case key.Matches(msg, a.keys.SectionArchive):
		a.switchSection(SectionArchive)
	case key.Matches(msg, a.keys.SectionTrash):
		a.switchSection(SectionTrash)

	case key.Matches(msg, a.keys.Select), key.Matches(msg, a.keys.Open):
		if a.focus == FocusSidebar {
			a.selectEntry()
			return a, nil
		}
		if key.Matches(msg, a.keys.Open) {
			a.openSelected()
		}

	case key.Matches(msg, a.keys.YankURL):
		if b, ok := a.selectedBookmark(); ok && a.focus == FocusList {
			if err := a.copyText(b.URL); err != nil {
				a.setMessage(MessageError, "Failed to copy URL")
			} else {
				a.setMessage(MessageSuccess, "Copied URL")
			}
		}

	case key.Matches(msg, a.keys.AddBookmark):
		return a.startAddBookmark()

	case key.Matches(msg, a.keys.AddCollection):
		a.collectionForm.Load(nil)
		a.mode = ModeAddCollection
		return a, nil

	case key.Matches(msg, a.keys.QuickAdd):
		a.quickAdd.Reset()
		a.mode = ModeQuickAdd
		return a, nil

	case key.Matches(msg, a.keys.Edit):
		return a.startEdit()

	case key.Matches(msg, a.keys.Move):
		if b, ok := a.selectedBookmark(); ok && a.focus == FocusList && a.activeSection() {
			a.picker.Open(b.ID, a.ws.Collections.Collections())
			a.mode = ModeMove
		}

	case key.Matches(msg, a.keys.Favorite):
		if b, ok := a.selectedBookmark(); ok && a.focus == FocusList && a.activeSection() {
			text := "Added to favorites"
			if b.IsFavorite {
				text = "Removed from favorites"
			}
			ws, id := a.ws, b.ID
			return a, a.run(text, func(ctx context.Context) error {
				_, err := ws.Bookmarks.ToggleFavorite(ctx, id)
				return err
			})
		}

	case key.Matches(msg, a.keys.Archive):
		if b, ok := a.selectedBookmark(); ok && a.focus == FocusList && a.activeSection() {
			ws, id := a.ws, b.ID
			return a, a.run("Bookmark archived", func(ctx context.Context) error {
				_, err := ws.Archive(ctx, id)
				return err
			})
		}

	case key.Matches(msg, a.keys.Trash):
		if a.focus == FocusSidebar {
			return a.confirmDeleteEntry()
		}
		if b, ok := a.selectedBookmark(); ok && a.activeSection() {
			ws, id := a.ws, b.ID
			return a, a.run("Moved to trash", func(ctx context.Context) error {
				_, err := ws.Trash(ctx, id)
				return err
			})
		}

	case key.Matches(msg, a.keys.Restore):
		return a, a.restoreSelected()

	case key.Matches(msg, a.keys.Delete):
		if a.focus == FocusSidebar {
			return a.confirmDeleteEntry()
		}
		if b, ok := a.selectedBookmark(); ok && a.section == SectionTrash {
			ws, id := a.ws, b.ID
			a.confirm = ConfirmState{
				Title:  "Delete bookmark forever?",
				Detail: b.Title,
				Action: a.run("Bookmark deleted", func(ctx context.Context) error {
					return ws.PermanentlyDelete(ctx, id)
				}),
			}
			a.mode = ModeConfirm
		}

	case key.Matches(msg, a.keys.Filter):
		a.search.FilterInput.SetValue(a.ws.Bookmarks.View().Search)
		a.search.FilterInput.CursorEnd()
		a.search.FilterInput.Focus()
		a.mode = ModeFilter
		a.focus = FocusList

	case key.Matches(msg, a.keys.Search):
		a.search.Reset()
		a.mode = ModeSearch

	case key.Matches(msg, a.keys.ClearTags):
		a.ws.Bookmarks.ClearTags()
		a.cursor = 0

	case key.Matches(msg, a.keys.Sort):
		next := a.ws.Bookmarks.View().Sort.Next()
		a.ws.Bookmarks.SetSortBy(next)
		a.setMessage(MessageInfo, "Sort: "+next.Label())

	case key.Matches(msg, a.keys.FilterType):
		next := a.ws.Bookmarks.View().Filter.Next()
		a.ws.Bookmarks.SetFilterType(next)
		a.cursor = 0
		a.setMessage(MessageInfo, "Filter: "+string(next))

	case key.Matches(msg, a.keys.ViewMode):
		a.ws.Bookmarks.SetViewMode(a.ws.Bookmarks.View().Mode.Next())

	case key.Matches(msg, a.keys.Reload):
		a.setMessage(MessageInfo, "Reloading...")
		return a, a.loadCmd()
	}

	return a, nil
}

// moveCursorBy moves the cursor of the focused pane.
func (a *App) moveCursorBy(delta int) {
	if a.focus == FocusSidebar {
		a.sidebarCursor = clamp(a.sidebarCursor+delta, len(a.sidebarEntries()))
		return
	}
	a.cursor = clamp(a.cursor+delta, len(a.visibleBookmarks()))
}

// moveCursorTo jumps the focused cursor; -1 selects the last entry.
func (a *App) moveCursorTo(i int) {
	if a.focus == FocusSidebar {
		n := len(a.sidebarEntries())
		if i < 0 {
			i = n - 1
		}
		a.sidebarCursor = clamp(i, n)
		return
	}
	n := len(a.visibleBookmarks())
	if i < 0 {
		i = n - 1
	}
	a.cursor = clamp(i, n)
}

func (a *App) switchSection(s Section) {
	a.section = s
	a.focus = FocusList
	a.cursor = 0
}

// selectEntry applies the sidebar entry under the cursor to the main view.
func (a *App) selectEntry() {
	e, ok := a.selectedEntry()
	if !ok {
		return
	}
	if e.IsTag() {
		a.ws.Bookmarks.ToggleTag(e.ID)
	} else {
		a.ws.Bookmarks.SetSelectedCollection(e.ID)
		a.section = SectionAll
		a.focus = FocusList
	}
	a.cursor = 0
}

func (a *App) openSelected() {
	b, ok := a.selectedBookmark()
	if !ok {
		return
	}
	if err := a.openURL(b.URL); err != nil {
		a.fail(err)
		return
	}
	a.setMessage(MessageInfo, "Opened "+b.URL)
}

func (a App) restoreSelected() tea.Cmd {
	b, ok := a.selectedBookmark()
	if !ok || a.focus != FocusList {
		return nil
	}
	ws, id := a.ws, b.ID
	switch a.section {
	case SectionArchive:
		return a.run("Bookmark restored", func(ctx context.Context) error {
			_, err := ws.RestoreFromArchive(ctx, id)
			return err
		})
	case SectionTrash:
		return a.run("Bookmark restored", func(ctx context.Context) error {
			_, err := ws.RestoreFromTrash(ctx, id)
			return err
		})
	}
	return nil
}

// confirmDeleteEntry asks before deleting the collection or tag under the
// sidebar cursor. "All Bookmarks" cannot be deleted.
func (a App) confirmDeleteEntry() (tea.Model, tea.Cmd) {
	e, ok := a.selectedEntry()
	if !ok || e.ID == model.AllCollectionID {
		return a, nil
	}
	ws, id := a.ws, e.ID
	if e.IsTag() {
		a.confirm = ConfirmState{
			Title:  "Delete tag?",
			Detail: e.Name + " will be removed from every bookmark.",
			Action: a.run("Tag deleted", func(ctx context.Context) error {
				return ws.DeleteTag(ctx, id)
			}),
		}
	} else {
		a.confirm = ConfirmState{
			Title:  "Delete collection?",
			Detail: e.Name + " will be deleted. Its bookmarks become uncategorized.",
			Action: a.run("Collection deleted", func(ctx context.Context) error {
				if ws.Bookmarks.View().Collection == id {
					ws.Bookmarks.SetSelectedCollection(model.AllCollectionID)
				}
				return ws.DeleteCollection(ctx, id)
			}),
		}
	}
	a.mode = ModeConfirm
	return a, nil
}

func (a App) startAddBookmark() (tea.Model, tea.Cmd) {
	a.form.Reset()
	if c, ok := a.collectionByID(a.ws.Bookmarks.View().Collection); ok {
		a.form.Inputs[fieldCollection].SetValue(c.Name)
	}
	a.mode = ModeAddBookmark
	return a, a.form.FocusField(fieldTitle)
}

// startEdit opens the form for the focused bookmark or collection.
func (a App) startEdit() (tea.Model, tea.Cmd) {
	if a.focus == FocusSidebar {
		e, ok := a.selectedEntry()
		if !ok || e.IsTag() {
			return a, nil
		}
		c, ok := a.collectionByID(e.ID)
		if !ok {
			return a, nil
		}
		a.collectionForm.Load(&c)
		a.mode = ModeEditCollection
		return a, nil
	}

	b, ok := a.selectedBookmark()
	if !ok || !a.activeSection() {
		return a, nil
	}
	a.form.Reset()
	a.form.EditID = b.ID
	a.form.Inputs[fieldTitle].SetValue(b.Title)
	a.form.Inputs[fieldURL].SetValue(b.URL)
	a.form.Inputs[fieldDescription].SetValue(b.Description)
	a.form.Inputs[fieldTags].SetValue(strings.Join(a.ws.Tags.Names(b.Tags), ", "))
	if b.CollectionID != nil {
		if c, ok := a.collectionByID(*b.CollectionID); ok {
			a.form.Inputs[fieldCollection].SetValue(c.Name)
		}
	}
	a.mode = ModeEditBookmark
	return a, a.form.FocusField(fieldTitle)
}

// handleFilterMode narrows the current section while typing.
func (a App) handleFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.search.FilterInput.Reset()
		a.search.FilterInput.Blur()
		a.ws.Bookmarks.SetSearchQuery("")
		a.mode = ModeNormal
		a.cursor = 0
		return a, nil
	case tea.KeyEnter:
		a.search.FilterInput.Blur()
		a.mode = ModeNormal
		return a, nil
	}

	var cmd tea.Cmd
	a.search.FilterInput, cmd = a.search.FilterInput.Update(msg)
	a.ws.Bookmarks.SetSearchQuery(strings.TrimSpace(a.search.FilterInput.Value()))
	a.cursor = 0
	return a, cmd
}

// handleSearchMode drives the fuzzy finder over every active bookmark.
func (a App) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		a.search.Input.Blur()
		a.mode = ModeNormal
		return a, nil
	case tea.KeyEnter:
		a.search.Input.Blur()
		a.mode = ModeNormal
		if a.search.Cursor < len(a.search.Results) {
			b := a.search.Results[a.search.Cursor].Bookmark
			if err := a.openURL(b.URL); err != nil {
				a.fail(err)
			} else {
				a.setMessage(MessageInfo, "Opened "+b.URL)
			}
		}
		return a, nil
	case tea.KeyDown, tea.KeyCtrlN, tea.KeyCtrlJ:
		if a.search.Cursor < len(a.search.Results)-1 {
			a.search.Cursor++
		}
		return a, nil
	case tea.KeyUp, tea.KeyCtrlP, tea.KeyCtrlK:
		if a.search.Cursor > 0 {
			a.search.Cursor--
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.search.Input, cmd = a.search.Input.Update(msg)
	a.search.Results = search.Fuzzy(a.ws.Bookmarks.Active(), strings.TrimSpace(a.search.Input.Value()))
	a.search.Cursor = 0
	return a, cmd
}

// handleBookmarkForm handles the add/edit bookmark form.
func (a App) handleBookmarkForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		a.mode = ModeNormal
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		return a, a.form.FocusField(a.form.Focus + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return a, a.form.FocusField(a.form.Focus - 1)
	case tea.KeyEnter:
		if a.form.Value(fieldTitle) == "" || a.form.Value(fieldURL) == "" {
			a.setMessage(MessageError, "Title and URL are required")
			return a, nil
		}
		a.mode = ModeNormal
		a.clearMessage()
		return a, a.saveBookmarkCmd(a.form)
	}

	var cmd tea.Cmd
	a.form.Inputs[a.form.Focus], cmd = a.form.Inputs[a.form.Focus].Update(msg)
	return a, cmd
}

// handleCollectionForm handles the add/edit collection form. Left and right
// cycle the icon and color rows.
func (a App) handleCollectionForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		a.mode = ModeNormal
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		a.collectionForm.NextField(1)
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		a.collectionForm.NextField(-1)
		return a, nil
	case tea.KeyEnter:
		if strings.TrimSpace(a.collectionForm.Name.Value()) == "" {
			a.setMessage(MessageError, "Name is required")
			return a, nil
		}
		a.mode = ModeNormal
		a.clearMessage()
		return a, a.saveCollectionCmd(a.collectionForm)
	}

	if a.collectionForm.Field != collectionFieldName {
		switch msg.String() {
		case "left", "h":
			a.collectionForm.Cycle(-1)
		case "right", "l", " ":
			a.collectionForm.Cycle(1)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.collectionForm.Name, cmd = a.collectionForm.Name.Update(msg)
	return a, cmd
}

// handleMoveMode handles the move-to-collection picker.
func (a App) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		a.mode = ModeNormal
		return a, nil
	case tea.KeyDown, tea.KeyCtrlN, tea.KeyCtrlJ:
		if a.picker.Cursor < len(a.picker.Filtered)-1 {
			a.picker.Cursor++
		}
		return a, nil
	case tea.KeyUp, tea.KeyCtrlP, tea.KeyCtrlK:
		if a.picker.Cursor > 0 {
			a.picker.Cursor--
		}
		return a, nil
	case tea.KeyEnter:
		target, ok := a.picker.Selected()
		if !ok {
			return a, nil
		}
		a.mode = ModeNormal
		patch := model.BookmarkPatch{CollectionID: model.Null[string]()}
		if target.ID != "" {
			patch.CollectionID = model.Some(target.ID)
		}
		ws, id := a.ws, a.picker.BookmarkID
		return a, a.run("Moved to "+target.Name, func(ctx context.Context) error {
			_, err := ws.UpdateBookmark(ctx, id, patch)
			return err
		})
	}

	var cmd tea.Cmd
	a.picker.FilterInput, cmd = a.picker.FilterInput.Update(msg)
	a.picker.ApplyFilter()
	return a, cmd
}

func (a App) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		action := a.confirm.Action
		a.confirm = ConfirmState{}
		a.mode = ModeNormal
		return a, action
	case "esc", "n", "q", "ctrl+c":
		a.confirm = ConfirmState{}
		a.mode = ModeNormal
	}
	return a, nil
}

// handleQuickAddMode reads a URL. With AI configured it asks for a
// suggestion, otherwise the bookmark goes straight to the quick add
// collection.
func (a App) handleQuickAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		a.mode = ModeNormal
		return a, nil
	case tea.KeyEnter:
		url := strings.TrimSpace(a.quickAdd.Input.Value())
		if url == "" {
			a.setMessage(MessageError, "URL is required")
			return a, nil
		}
		a.quickAdd.URL = url
		a.clearMessage()
		if a.ai == nil {
			a.mode = ModeNormal
			return a, a.quickAddCmd(url)
		}
		a.mode = ModeQuickAddLoading
		return a, a.suggestCmd(url)
	}

	var cmd tea.Cmd
	a.quickAdd.Input, cmd = a.quickAdd.Input.Update(msg)
	return a, cmd
}

func (a App) handleSuggestion(msg suggestMsg) (tea.Model, tea.Cmd) {
	// Ignore suggestions that arrive after the user cancelled.
	if a.mode != ModeQuickAddLoading || msg.url != a.quickAdd.URL {
		return a, nil
	}
	if msg.err != nil {
		a.quickAdd.Err = msg.err
		a.mode = ModeQuickAdd
		a.log.Warn("ai suggestion failed", logger.String("url", msg.url), logger.Error(msg.err))
		a.setMessage(MessageError, "AI suggestion failed: "+msg.err.Error())
		return a, nil
	}
	a.quickAdd.Suggestion = msg.suggestion
	a.mode = ModeQuickAddConfirm
	return a, nil
}

// handleQuickAddConfirmMode accepts the suggestion, or opens it in the
// bookmark form for changes.
func (a App) handleQuickAddConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.quickAdd.Suggestion
	if s == nil {
		a.mode = ModeNormal
		return a, nil
	}
	switch msg.String() {
	case "enter", "y":
		a.mode = ModeNormal
		return a, a.acceptSuggestionCmd(a.quickAdd.URL, *s)
	case "e", "tab":
		a.form.Reset()
		a.form.Inputs[fieldTitle].SetValue(s.Title)
		a.form.Inputs[fieldURL].SetValue(a.quickAdd.URL)
		a.form.Inputs[fieldCollection].SetValue(s.Collection)
		a.form.Inputs[fieldTags].SetValue(strings.Join(s.Tags, ", "))
		a.mode = ModeAddBookmark
		return a, a.form.FocusField(fieldTitle)
	case "esc", "n", "q", "ctrl+c":
		a.mode = ModeNormal
		a.setMessage(MessageInfo, "Quick add cancelled")
	}
	return a, nil
}
