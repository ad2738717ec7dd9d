package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/search"
	"github.com/nikbrunner/marks/internal/store"
	"github.com/nikbrunner/marks/internal/tui/layout"
)

// renderView creates the sidebar | bookmarks | preview view.
func (a App) renderView() string {
	// ModeFilter stays inline, everything else is a modal
	if a.mode != ModeNormal && a.mode != ModeFilter {
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	widths := layout.CalculatePaneWidths(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderSidebar(widths.Sidebar, paneHeight),
		a.renderListPane(widths.List, paneHeight),
		a.renderPreviewPane(widths.Preview, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the app name and the section tabs.
func (a App) renderHeader() string {
	parts := []string{a.styles.Title.Render("marks")}
	for i, s := range sections {
		label := strconv.Itoa(i+1) + " " + s.Label()
		if s == a.section {
			parts = append(parts, a.styles.SectionOn.Render(label))
		} else {
			parts = append(parts, a.styles.Section.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (a App) paneStyle(focused bool, width, height int) lipgloss.Style {
	style := a.styles.Pane
	if focused {
		style = a.styles.PaneActive
	}
	return style.Width(width).Height(height)
}

// renderSidebar renders collections and tags.
func (a App) renderSidebar(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.SidebarHeaderReduction)

	view := a.ws.Bookmarks.View()
	entries := a.sidebarEntries()
	focused := a.focus == FocusSidebar

	// Build rows first so the tag header scrolls with the entries.
	type row struct {
		entry  int // -1 for a header
		header string
	}
	rows := []row{{entry: -1, header: "Collections"}}
	for i, e := range entries {
		if e.IsTag() && (i == 0 || !entries[i-1].IsTag()) {
			rows = append(rows, row{entry: -1, header: "Tags"})
		}
		rows = append(rows, row{entry: i})
	}

	cursorRow := 0
	for i, r := range rows {
		if r.entry == a.sidebarCursor {
			cursorRow = i
		}
	}
	offset := layout.CalculateViewportOffset(cursorRow, len(rows), visibleHeight)

	for i, r := range rows {
		if i < offset {
			continue
		}
		if i >= offset+visibleHeight {
			break
		}
		if r.entry < 0 {
			content.WriteString(a.styles.Empty.Render("── "+r.header+" ──") + "\n")
			continue
		}
		e := entries[r.entry]
		active := (!e.IsTag() && e.ID == view.Collection) || (e.IsTag() && containsID(view.Tags, e.ID))
		content.WriteString(a.renderEntry(e, focused && r.entry == a.sidebarCursor, active, itemWidth) + "\n")
	}

	return a.paneStyle(focused, width, height).Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderEntry(e Entry, isCursor, isActive bool, maxWidth int) string {
	glyph := "#"
	if !e.IsTag() {
		glyph = IconFor(e.Icon)
	}
	count := " " + strconv.Itoa(e.Count)
	line, _ := layout.TruncateWithPrefixSuffix(e.Name, maxWidth, glyph+" ", count, a.layoutConfig.Text)

	switch {
	case isCursor:
		return a.styles.ItemSelected.Render(layout.FitWidth(line, maxWidth, a.layoutConfig.Text))
	case isActive:
		return a.styles.ItemActive.Render(line)
	}
	icon := lipgloss.NewStyle().Foreground(ColorFor(e.Color)).Render(glyph)
	return a.styles.Item.Render(icon + strings.TrimPrefix(line, glyph))
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// renderListPane renders the bookmarks of the current section as a list or
// a grid of cards.
func (a App) renderListPane(width, height int) string {
	var content strings.Builder
	view := a.ws.Bookmarks.View()

	headerLines := 1
	if a.mode == ModeFilter || view.Search != "" {
		headerLines++
	}
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	content.WriteString(a.renderListHeader(view, itemWidth) + "\n")
	if a.mode == ModeFilter {
		content.WriteString("/" + a.search.FilterInput.View() + "\n")
	} else if view.Search != "" {
		content.WriteString(a.styles.Tag.Render("/"+view.Search) + "\n")
	}

	bookmarks := a.visibleBookmarks()
	focused := a.focus == FocusList
	switch {
	case len(bookmarks) == 0:
		content.WriteString(a.styles.Empty.Render(a.emptyText(view)))
	case view.Mode == store.ViewGrid && a.activeSection():
		content.WriteString(a.renderGrid(bookmarks, focused, itemWidth, layout.CalculateVisibleHeight(height, headerLines)))
	default:
		visibleHeight := layout.CalculateVisibleHeight(height, headerLines)
		offset := layout.CalculateViewportOffset(a.cursor, len(bookmarks), visibleHeight)
		for i := offset; i < len(bookmarks) && i < offset+visibleHeight; i++ {
			content.WriteString(a.renderBookmarkLine(bookmarks[i], focused && i == a.cursor, itemWidth) + "\n")
		}
	}

	return a.paneStyle(focused, width, height).Render(strings.TrimRight(content.String(), "\n"))
}

// renderListHeader names what the list shows: the section, or the selected
// collection and tags of the main view.
func (a App) renderListHeader(view store.ViewState, width int) string {
	title := a.section.Label()
	if a.section == SectionAll {
		title = "All Bookmarks"
		if c, ok := a.collectionByID(view.Collection); ok {
			title = c.Name
		}
		for _, name := range a.ws.Tags.Names(view.Tags) {
			title += " #" + name
		}
	}
	count := " (" + strconv.Itoa(len(a.visibleBookmarks())) + ")"
	line, _ := layout.TruncateWithPrefixSuffix(title, width, "", count, a.layoutConfig.Text)
	return a.styles.Title.Render(line)
}

func (a App) emptyText(view store.ViewState) string {
	if view.Search != "" {
		return "(no matches)"
	}
	switch a.section {
	case SectionFavorites:
		return "(no favorites)"
	case SectionArchive:
		return "(archive is empty)"
	case SectionTrash:
		return "(trash is empty)"
	}
	return "(no bookmarks)"
}

func (a App) renderBookmarkLine(b model.Bookmark, isCursor bool, maxWidth int) string {
	prefix := "  "
	if b.IsFavorite {
		prefix = "* "
	}
	line, _ := layout.TruncateWithPrefixSuffix(b.Title, maxWidth, prefix, "", a.layoutConfig.Text)

	if isCursor {
		return a.styles.ItemSelected.Render(layout.FitWidth(line, maxWidth, a.layoutConfig.Text))
	}
	if b.IsFavorite {
		return a.styles.Item.Render(a.styles.Favorite.Render(prefix) + strings.TrimPrefix(line, prefix))
	}
	return a.styles.Item.Render(line)
}

// renderGrid lays bookmarks out as cards of title, host and tags.
func (a App) renderGrid(bookmarks []model.Bookmark, focused bool, width, height int) string {
	cfg := a.layoutConfig.Grid
	columns, cardWidth := layout.CalculateGridColumns(width, cfg)
	visibleRows := max(height/cfg.CardHeight, 1)
	cursorRow := a.cursor / columns
	firstRow := layout.CalculateViewportOffset(cursorRow, (len(bookmarks)+columns-1)/columns, visibleRows)

	gap := strings.Repeat(" ", cfg.Gap)
	var rows []string
	for r := firstRow; r < firstRow+visibleRows; r++ {
		start := r * columns
		if start >= len(bookmarks) {
			break
		}
		var cards []string
		for i := start; i < start+columns && i < len(bookmarks); i++ {
			if len(cards) > 0 {
				cards = append(cards, gap)
			}
			cards = append(cards, a.renderCard(bookmarks[i], focused && i == a.cursor, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderCard(b model.Bookmark, isCursor bool, width int) string {
	text := a.layoutConfig.Text
	title := b.Title
	if b.IsFavorite {
		title = "* " + title
	}
	tags := a.ws.Tags.Names(b.Tags)
	for i := range tags {
		tags[i] = "#" + tags[i]
	}

	lines := []string{
		layout.FitWidth(title, width, text),
		layout.FitWidth(hostOf(b.URL), width, text),
		layout.FitWidth(strings.Join(tags, " "), width, text),
	}
	if isCursor {
		for i := range lines {
			lines[i] = a.styles.ItemSelected.UnsetPaddingLeft().Render(lines[i])
		}
	} else {
		lines[0] = a.styles.Bookmark.Render(lines[0])
		lines[1] = a.styles.URL.Render(lines[1])
		lines[2] = a.styles.Tag.Render(lines[2])
	}
	return lipgloss.NewStyle().Height(a.layoutConfig.Grid.CardHeight).Render(strings.Join(lines, "\n"))
}

// hostOf strips the scheme and path from a URL for compact display.
func hostOf(url string) string {
	host := url
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}

// renderPreviewPane shows the details of the bookmark under the cursor, or
// of the sidebar entry when the sidebar is focused.
func (a App) renderPreviewPane(width, height int) string {
	var content strings.Builder
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if a.focus == FocusSidebar {
		if e, ok := a.selectedEntry(); ok {
			kind := "Collection"
			if e.IsTag() {
				kind = "Tag"
			}
			content.WriteString(a.styles.Title.Render(e.Name) + "\n\n")
			content.WriteString(a.styles.Empty.Render(kind) + "\n")
			content.WriteString(a.styles.Count.Render(pluralize(e.Count, "bookmark")) + "\n")
			if e.Color != "" {
				content.WriteString(lipgloss.NewStyle().Foreground(ColorFor(e.Color)).Render(e.Color) + "\n")
			}
		}
	} else if b, ok := a.selectedBookmark(); ok {
		content.WriteString(a.renderBookmarkDetail(b, itemWidth))
	}

	return a.paneStyle(false, width, height).Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) renderBookmarkDetail(b model.Bookmark, width int) string {
	var content strings.Builder
	title := lipgloss.NewStyle().Width(width).Render(b.Title)
	content.WriteString(a.styles.Title.Render(title) + "\n\n")

	url, _ := layout.TruncateText(b.URL, width, a.layoutConfig.Text)
	content.WriteString(a.styles.URL.Render(url) + "\n\n")

	if b.Description != "" {
		content.WriteString(lipgloss.NewStyle().Width(width).Render(b.Description) + "\n\n")
	}

	collection := "Uncategorized"
	if b.CollectionID != nil {
		if c, ok := a.collectionByID(*b.CollectionID); ok {
			collection = IconFor(c.Icon) + " " + c.Name
		}
	}
	content.WriteString(a.styles.Empty.Render(collection) + "\n")

	if names := a.ws.Tags.Names(b.Tags); len(names) > 0 {
		for i := range names {
			names[i] = "#" + names[i]
		}
		content.WriteString(a.styles.Tag.Render(strings.Join(names, " ")) + "\n")
	}
	if b.IsFavorite {
		content.WriteString(a.styles.Favorite.Render("* favorite") + "\n")
	}
	content.WriteString("\n")

	content.WriteString(a.styles.Date.Render("Created: "+b.CreatedAt.Format("2006-01-02")) + "\n")
	if b.ArchivedAt != nil {
		content.WriteString(a.styles.Date.Render("Archived "+formatTimeAgo(*b.ArchivedAt)) + "\n")
	}
	if b.TrashedAt != nil {
		content.WriteString(a.styles.Date.Render("Trashed "+formatTimeAgo(*b.TrashedAt)) + "\n")
	}
	return content.String()
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// formatTimeAgo renders t relative to now ("3d ago").
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// renderModal renders the current modal centered above the help bar.
func (a App) renderModal() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeSearch:
		return a.renderSearch()
	}

	var content strings.Builder
	size := layout.ModalNormal

	switch a.mode {
	case ModeAddBookmark, ModeEditBookmark:
		size = layout.ModalWide
		heading := "Add Bookmark"
		if a.mode == ModeEditBookmark {
			heading = "Edit Bookmark"
		}
		content.WriteString(a.styles.Title.Render(heading) + "\n\n")
		for i := range a.form.Inputs {
			label := fieldLabels[i] + ":"
			if i == a.form.Focus {
				label = a.styles.Tag.Render(label)
			}
			content.WriteString(label + "\n" + a.form.Inputs[i].View())
			if i < fieldCount-1 {
				content.WriteString("\n\n")
			}
		}

	case ModeAddCollection, ModeEditCollection:
		heading := "Add Collection"
		if a.mode == ModeEditCollection {
			heading = "Edit Collection"
		}
		f := a.collectionForm
		content.WriteString(a.styles.Title.Render(heading) + "\n\n")
		content.WriteString(a.formLabel("Name:", f.Field == collectionFieldName) + "\n" + f.Name.View() + "\n\n")
		content.WriteString(a.formLabel("Icon:", f.Field == collectionFieldIcon) + " ")
		content.WriteString("< " + IconFor(f.Icon()) + " " + f.Icon() + " >\n")
		content.WriteString(a.formLabel("Color:", f.Field == collectionFieldColor) + " ")
		content.WriteString("< " + lipgloss.NewStyle().Foreground(ColorFor(f.Color())).Render(f.Color()) + " >")

	case ModeMove:
		content.WriteString(a.styles.Title.Render("Move to Collection") + "\n\n")
		content.WriteString(a.picker.FilterInput.View() + "\n\n")
		if len(a.picker.Filtered) == 0 {
			content.WriteString(a.styles.Empty.Render("No matching collections"))
		}
		start, end := layout.VisibleRange(a.picker.Cursor, len(a.picker.Filtered), a.layoutConfig.Modal.PickerMaxVisible)
		for i := start; i < end; i++ {
			name := a.picker.Filtered[i].Name
			if i == a.picker.Cursor {
				content.WriteString(a.styles.ItemSelected.Render("> " + name))
			} else {
				content.WriteString("  " + name)
			}
			if i < end-1 {
				content.WriteString("\n")
			}
		}

	case ModeConfirm:
		content.WriteString(a.styles.Title.Render(a.confirm.Title) + "\n\n")
		if a.confirm.Detail != "" {
			content.WriteString(a.confirm.Detail + "\n\n")
		}
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeQuickAdd:
		content.WriteString(a.styles.Title.Render("Quick Add") + "\n\n")
		content.WriteString("URL:\n" + a.quickAdd.Input.View())
		if a.ai == nil {
			content.WriteString("\n\n" + a.styles.Empty.Render("Saves to "+quickAddTarget(a.quickAddCollection)))
		}
		if a.quickAdd.Err != nil {
			content.WriteString("\n\n" + a.styles.Error.Render(a.quickAdd.Err.Error()))
		}

	case ModeQuickAddLoading:
		content.WriteString(a.styles.Title.Render("Quick Add") + "\n\n")
		content.WriteString(a.styles.URL.Render(a.quickAdd.URL) + "\n\n")
		content.WriteString(a.styles.Info.Render("Asking for suggestions..."))

	case ModeQuickAddConfirm:
		size = layout.ModalWide
		content.WriteString(a.renderSuggestion())
	}

	modalWidth := layout.ModalWidth(a.width, size, a.layoutConfig.Modal)
	modal := lipgloss.Place(
		a.width,
		a.height-3,
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(modalWidth).Render(content.String()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

func (a App) formLabel(label string, focused bool) string {
	if focused {
		return a.styles.Tag.Render(label)
	}
	return label
}

// renderSuggestion renders the AI suggestion awaiting confirmation.
func (a App) renderSuggestion() string {
	s := a.quickAdd.Suggestion
	var content strings.Builder
	content.WriteString(a.styles.Title.Render("AI Quick Add - Confirm") + "\n\n")
	content.WriteString(a.styles.URL.Render(a.quickAdd.URL) + "\n\n")
	if s == nil {
		return content.String()
	}

	content.WriteString("Title:      " + s.Title + "\n")
	collection := quickAddTarget(s.Collection)
	if s.IsNewCollection {
		collection += a.styles.Info.Render(" (new)")
	}
	content.WriteString("Collection: " + collection + "\n")
	if len(s.Tags) > 0 {
		tags := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			tags[i] = "#" + t
		}
		content.WriteString("Tags:       " + a.styles.Tag.Render(strings.Join(tags, " ")) + "\n")
	}
	return content.String()
}

// renderSearch renders search as a full-screen view with a
// result list and a preview of the highlighted bookmark.
func (a App) renderSearch() string {
	fl := layout.CalculateSearchPanes(a.width, a.height, a.layoutConfig.Search)
	text := a.layoutConfig.Text

	var list strings.Builder
	list.WriteString(a.styles.Title.Render("Search") + " " + a.search.Input.View() + "\n\n")

	results := a.search.Results
	switch {
	case strings.TrimSpace(a.search.Input.Value()) == "":
		list.WriteString(a.styles.Empty.Render("Type to search titles and URLs"))
	case len(results) == 0:
		list.WriteString(a.styles.Empty.Render("(no matches)"))
	default:
		start, end := layout.VisibleRange(a.search.Cursor, len(results), fl.Rows)
		for i := start; i < end; i++ {
			list.WriteString(a.renderSearchResult(results[i], i == a.search.Cursor, fl.ListWidth, text) + "\n")
		}
	}

	body := lipgloss.NewStyle().Width(fl.ListWidth).Render(strings.TrimRight(list.String(), "\n"))
	if fl.PreviewWidth > 0 {
		var preview string
		if a.search.Cursor < len(results) {
			preview = a.renderBookmarkDetail(results[a.search.Cursor].Bookmark, max(fl.PreviewWidth-4, 1))
		}
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			body,
			a.styles.Pane.Width(fl.PreviewWidth).Render(strings.TrimRight(preview, "\n")),
		)
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(body))
}

func (a App) renderSearchResult(r search.Result, selected bool, width int, cfg layout.TextConfig) string {
	line := r.Bookmark.Title
	if r.Field == search.FieldURL {
		line = r.Bookmark.URL
	}
	line, _ = layout.TruncateText(line, width-2, cfg)
	if selected {
		return a.styles.ItemSelected.Render("> " + line)
	}
	return "  " + line
}

// renderHelpOverlay renders the key reference in two columns.
func (a App) renderHelpOverlay() string {
	section := func(b *strings.Builder, title string, rows ...[2]string) {
		b.WriteString(a.styles.Title.Render(title) + "\n")
		for _, r := range rows {
			fmt.Fprintf(b, "%-5s%s\n", r[0], r[1])
		}
		b.WriteString("\n")
	}

	var left strings.Builder
	section(&left, "nav",
		[2]string{"j/k", "move"},
		[2]string{"h/l", "sidebar/list"},
		[2]string{"gg", "top"},
		[2]string{"G", "bottom"},
		[2]string{"1-4", "sections"},
	)
	section(&left, "view",
		[2]string{"/", "filter"},
		[2]string{"s", "search"},
		[2]string{"o", "sort"},
		[2]string{"F", "filter type"},
		[2]string{"v", "grid/list"},
		[2]string{"c", "clear tags"},
		[2]string{"R", "reload"},
	)

	var right strings.Builder
	section(&right, "edit",
		[2]string{"a", "add bookmark"},
		[2]string{"A", "add collection"},
		[2]string{"i", "quick add"},
		[2]string{"e", "edit"},
		[2]string{"m", "move"},
		[2]string{"*", "favorite"},
	)
	section(&right, "lifecycle",
		[2]string{"x", "archive"},
		[2]string{"d", "trash"},
		[2]string{"r", "restore"},
		[2]string{"D", "delete forever"},
	)
	right.WriteString(a.styles.Help.Render("[?/esc] close  [q] quit"))

	colWidth := a.layoutConfig.Modal.HelpLeftColumnWidth
	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(colWidth).Render(left.String()),
		"  ",
		lipgloss.NewStyle().Width(colWidth+4).Render(right.String()),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top,
		lipgloss.NewStyle().Padding(1, 2).Render(cols))
}

// renderHelpBar renders the message line, the view state and the hints.
func (a App) renderHelpBar() string {
	var lines []string

	// Message replaces the gap line
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	if a.mode == ModeNormal || a.mode == ModeFilter {
		lines = append(lines, a.renderStatus())
	}

	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with a prefix by type.
func (a App) renderMessageLine() string {
	switch a.messageType {
	case MessageError:
		return a.styles.Error.Render("✗ " + a.messageText)
	case MessageWarning:
		return a.styles.Warning.Render("⚠ " + a.messageText)
	case MessageSuccess:
		return a.styles.Success.Render("✓ " + a.messageText)
	default:
		return a.styles.Info.Render(a.messageText)
	}
}

// renderStatus renders [sort:X] [filter:X] [view:X].
func (a App) renderStatus() string {
	view := a.ws.Bookmarks.View()
	status := fmt.Sprintf("[sort:%s] [filter:%s] [view:%s]", view.Sort, view.Filter, view.Mode)
	if a.ws.Bookmarks.Loading() {
		status += " loading..."
	}
	return a.styles.HintLabel.Render(status)
}
