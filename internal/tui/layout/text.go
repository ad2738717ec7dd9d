package layout

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// StripANSI removes escape sequences, leaving the printable text.
func StripANSI(s string) string {
	return ansi.Strip(s)
}

// TruncateText shortens text to at most maxWidth terminal cells, ending it
// with cfg.Ellipsis, and reports whether anything was cut. Widths are cell
// widths, so wide runes count twice and escape sequences count zero.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if ansi.StringWidth(text) <= maxWidth {
		return text, false
	}
	if maxWidth <= ansi.StringWidth(cfg.Ellipsis) {
		return ansi.Truncate(cfg.Ellipsis, maxWidth, ""), true
	}
	return ansi.Truncate(text, maxWidth, cfg.Ellipsis), true
}

// TruncateWithPrefixSuffix shortens text so that prefix+text+suffix fits in
// maxWidth, keeping prefix and suffix intact when they fit.
// Example: TruncateWithPrefixSuffix("kubernetes", 12, "# ", " 3", cfg) -> "# kuber... 3"
func TruncateWithPrefixSuffix(text string, maxWidth int, prefix, suffix string, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}

	combined := prefix + text + suffix
	if ansi.StringWidth(combined) <= maxWidth {
		return combined, false
	}

	fixed := ansi.StringWidth(prefix) + ansi.StringWidth(suffix)
	if fixed+ansi.StringWidth(cfg.Ellipsis) >= maxWidth {
		return TruncateText(combined, maxWidth, cfg)
	}

	return prefix + ansi.Truncate(text, maxWidth-fixed, cfg.Ellipsis) + suffix, true
}

// FitWidth truncates text to width and pads it with spaces so that it
// occupies exactly width cells. Used for highlighted rows and grid cards.
func FitWidth(text string, width int, cfg TextConfig) string {
	truncated, _ := TruncateText(text, width, cfg)
	if pad := width - ansi.StringWidth(truncated); pad > 0 {
		truncated += strings.Repeat(" ", pad)
	}
	return truncated
}
