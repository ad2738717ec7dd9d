package layout

// ModalSize selects one of the configured modal widths.
type ModalSize int

const (
	ModalNormal ModalSize = iota
	ModalWide             // bookmark forms and suggestion review
)

// ModalWidth returns the width of a modal: a share of the terminal width
// clamped to [MinWidth, MaxWidth], never wider than the terminal minus Margin.
func ModalWidth(terminalWidth int, size ModalSize, cfg ModalConfig) int {
	percent := cfg.DefaultWidthPercent
	if size == ModalWide {
		percent = cfg.LargeWidthPercent
	}
	width := min(max(terminalWidth*percent/100, cfg.MinWidth), cfg.MaxWidth)
	return max(min(width, terminalWidth-cfg.Margin), 1)
}

// SearchPanes holds the dimensions of the full-screen search view.
type SearchPanes struct {
	ListWidth    int
	PreviewWidth int
	Rows         int // result rows below the input
}

// CalculateSearchPanes splits the terminal between the result list and the
// preview of the highlighted bookmark. The preview gets whatever the list
// and the gap leave.
func CalculateSearchPanes(terminalWidth, terminalHeight int, cfg SearchConfig) SearchPanes {
	list := max(terminalWidth*cfg.ListWidthPercent/100, cfg.MinListWidth)
	return SearchPanes{
		ListWidth:    list,
		PreviewWidth: max(terminalWidth-list-cfg.Gap, 0),
		Rows:         max(terminalHeight-cfg.HeaderReduction, 1),
	}
}

// VisibleRange returns the bounds of the rows to draw so that selected
// stays in view.
func VisibleRange(selected, total, rows int) (start, end int) {
	start = CalculateViewportOffset(selected, total, rows)
	return start, min(start+rows, total)
}
