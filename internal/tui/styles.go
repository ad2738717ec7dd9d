package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App          lipgloss.Style
	Pane         lipgloss.Style
	PaneActive   lipgloss.Style
	Title        lipgloss.Style
	Item         lipgloss.Style
	ItemSelected lipgloss.Style
	ItemActive   lipgloss.Style // sidebar entry that is the current filter
	Section      lipgloss.Style
	SectionOn    lipgloss.Style
	Bookmark     lipgloss.Style
	Favorite     lipgloss.Style
	URL          lipgloss.Style
	Tag          lipgloss.Style
	Date         lipgloss.Style
	Count        lipgloss.Style
	Help         lipgloss.Style
	HintLabel    lipgloss.Style
	Empty        lipgloss.Style
	HintKey      lipgloss.Style // Key portion of hints (e.g., "Enter", "j/k")
	HintDesc     lipgloss.Style // Description portion of hints (e.g., "confirm", "move")
	Modal        lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Info         lipgloss.Style
}

// Industrial palette: grayscale with a single desaturated teal accent.
var (
	primary = lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"}
	subtle  = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}
	accent  = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	border  = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#505050"}
)

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(border).
			Padding(0, 1),

		PaneActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Item: lipgloss.NewStyle().
			Foreground(primary).
			PaddingLeft(1),

		ItemSelected: lipgloss.NewStyle().
			PaddingLeft(1).
			Background(accent).
			Foreground(lipgloss.Color("#1A1A1A")),

		ItemActive: lipgloss.NewStyle().
			PaddingLeft(1).
			Bold(true).
			Foreground(accent),

		Section: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1),

		SectionOn: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),

		Bookmark: lipgloss.NewStyle().
			Foreground(primary),

		Favorite: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B08800", Dark: "#D7AF00"}),

		URL: lipgloss.NewStyle().
			Foreground(subtle),

		Tag: lipgloss.NewStyle().
			Foreground(subtle),

		Date: lipgloss.NewStyle().
			Foreground(subtle),

		Count: lipgloss.NewStyle().
			Foreground(subtle),

		Help: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(1, 0),

		HintLabel: lipgloss.NewStyle().
			Foreground(accent),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(subtle),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(1, 2),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
	}
}

// collectionColors maps the collection color vocabulary to terminal colors.
var collectionColors = map[string]lipgloss.AdaptiveColor{
	"neutral": primary,
	"slate":   {Light: "#475569", Dark: "#94A3B8"},
	"violet":  {Light: "#6D28D9", Dark: "#A78BFA"},
	"blue":    {Light: "#1D4ED8", Dark: "#60A5FA"},
	"amber":   {Light: "#B45309", Dark: "#FBBF24"},
	"emerald": {Light: "#047857", Dark: "#34D399"},
	"pink":    {Light: "#BE185D", Dark: "#F472B6"},
	"cyan":    {Light: "#0E7490", Dark: "#22D3EE"},
	"rose":    {Light: "#BE123C", Dark: "#FB7185"},
	"indigo":  {Light: "#4338CA", Dark: "#818CF8"},
	"gray":    subtle,
}

// ColorFor returns the terminal color for a collection or tag color name.
// Unknown names fall back to the primary text color.
func ColorFor(name string) lipgloss.AdaptiveColor {
	if c, ok := collectionColors[name]; ok {
		return c
	}
	return primary
}

// collectionIcons maps the icon vocabulary to single-cell glyphs.
var collectionIcons = map[string]string{
	"bookmark":  "▪",
	"folder":    "▸",
	"palette":   "◆",
	"code":      "λ",
	"wrench":    "⚙",
	"book-open": "≡",
	"sparkles":  "✦",
}

// IconFor returns the glyph for a collection icon name.
func IconFor(name string) string {
	if g, ok := collectionIcons[name]; ok {
		return g
	}
	return "▪"
}
