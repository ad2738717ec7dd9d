package layout

// PaneWidths holds the widths of the three main panes.
type PaneWidths struct {
	Sidebar int
	List    int
	Preview int
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculatePaneWidths splits the terminal width into sidebar | list |
// preview. Each pane is clamped to its minimum; the list absorbs rounding.
func CalculatePaneWidths(terminalWidth int, cfg PaneConfig) PaneWidths {
	usable := terminalWidth - cfg.WidthOffset

	sidebar := max(usable*cfg.SidebarPercent/100, cfg.MinSidebarWidth)
	preview := max(usable*cfg.PreviewPercent/100, cfg.MinPreviewWidth)
	list := max(usable-sidebar-preview, cfg.MinListWidth)

	return PaneWidths{
		Sidebar: sidebar,
		List:    list,
		Preview: preview,
	}
}

// CalculateGridColumns returns how many cards of at least MinCardWidth fit
// in width, and the width of each card.
func CalculateGridColumns(width int, cfg GridConfig) (columns, cardWidth int) {
	if width < cfg.MinCardWidth {
		return 1, max(width, 1)
	}
	columns = (width + cfg.Gap) / (cfg.MinCardWidth + cfg.Gap)
	cardWidth = (width - (columns-1)*cfg.Gap) / columns
	return columns, cardWidth
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	return paneWidth - cfg.ContentPadding
}

// CalculateVisibleHeight computes the visible item count in a pane.
func CalculateVisibleHeight(paneHeight, headerLines int) int {
	height := paneHeight - headerLines
	if height < 1 {
		return 1
	}
	return height
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
