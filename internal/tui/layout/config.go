package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Pane   PaneConfig
	Grid   GridConfig
	Modal  ModalConfig
	Input  InputConfig
	Text   TextConfig
	Search SearchConfig
}

// PaneConfig holds pane dimension configuration.
type PaneConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: app padding (1) + header (1) + pane borders (2) + help bar (3) = 7
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// WidthOffset is subtracted before splitting the width between the
	// sidebar, list and preview panes. Accounts for borders and padding.
	WidthOffset int

	// SidebarPercent and PreviewPercent are shares of the remaining width;
	// the list pane takes the rest.
	SidebarPercent int
	PreviewPercent int

	MinSidebarWidth int
	MinListWidth    int
	MinPreviewWidth int

	// ContentPadding is subtracted from pane width for item rendering.
	// Accounts for pane border/padding on each side.
	ContentPadding int

	// SidebarHeaderReduction accounts for header lines in the sidebar.
	SidebarHeaderReduction int
}

// GridConfig sizes the cards of the grid view.
type GridConfig struct {
	MinCardWidth int
	CardHeight   int // lines per card, spacing included
	Gap          int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// DefaultWidthPercent is the standard modal width as percentage of terminal width.
	DefaultWidthPercent int

	// LargeWidthPercent is used for modals needing more space (quick add confirm).
	LargeWidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// Margin is the minimum free space left beside a modal.
	Margin int

	// PickerMaxVisible: max collections shown in the move picker.
	PickerMaxVisible int

	// HelpLeftColumnWidth: width for help overlay left column.
	HelpLeftColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	// Character limits
	TitleCharLimit       int
	URLCharLimit         int
	DescriptionCharLimit int
	TagsCharLimit        int
	SearchCharLimit      int

	// Display widths
	StandardWidth int // Used for title, URL, tags, search, move filter
	FilterWidth   int // Used for filter input (narrower)
	QuickAddWidth int // Used for quick add URL input (wider)
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// SearchConfig sizes the full-screen search view.
type SearchConfig struct {
	ListWidthPercent int
	MinListWidth     int

	// Gap is the width between the list and the preview, padding and
	// preview border included.
	Gap int

	// HeaderReduction: lines for header, input, help, padding.
	HeaderReduction int
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Pane: PaneConfig{
			HeightReduction:        7, // app padding (1) + header (1) + pane borders (2) + help bar (3)
			MinHeight:              5,
			WidthOffset:            8,
			SidebarPercent:         22,
			PreviewPercent:         33,
			MinSidebarWidth:        18,
			MinListWidth:           24,
			MinPreviewWidth:        20,
			ContentPadding:         4,
			SidebarHeaderReduction: 2,
		},
		Grid: GridConfig{
			MinCardWidth: 24,
			CardHeight:   4,
			Gap:          2,
		},
		Modal: ModalConfig{
			DefaultWidthPercent: 40,
			LargeWidthPercent:   50,
			MinWidth:            50,
			MaxWidth:            80,
			Margin:              4,
			PickerMaxVisible:    8,
			HelpLeftColumnWidth: 18,
		},
		Input: InputConfig{
			TitleCharLimit:       200,
			URLCharLimit:         2000,
			DescriptionCharLimit: 500,
			TagsCharLimit:        200,
			SearchCharLimit:      100,
			StandardWidth:        40,
			FilterWidth:          30,
			QuickAddWidth:        50,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
		Search: SearchConfig{
			ListWidthPercent: 40,
			MinListWidth:     30,
			Gap:              8,
			HeaderReduction:  8,
		},
	}
}
