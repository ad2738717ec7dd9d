package layout

import (
	"fmt"
	"testing"

	"gotest.tools/v3/assert"
)

func TestCalculatePaneHeight(t *testing.T) {
	cfg := DefaultConfig().Pane

	// HeightReduction is 7, MinHeight 5.
	for height, want := range map[int]int{40: 33, 24: 17, 12: 5, 7: 5, 0: 5} {
		t.Run(fmt.Sprint(height), func(t *testing.T) {
			assert.Equal(t, CalculatePaneHeight(height, cfg), want)
		})
	}
}

func TestCalculatePaneWidths(t *testing.T) {
	cfg := DefaultConfig().Pane

	tests := []struct {
		name          string
		terminalWidth int
		want          PaneWidths
	}{
		{"wide terminal", 120, PaneWidths{Sidebar: 24, List: 52, Preview: 36}},    // usable 112: 22% = 24, 33% = 36
		{"standard terminal", 80, PaneWidths{Sidebar: 18, List: 31, Preview: 23}}, // sidebar clamps to min 18
		{"narrow terminal", 40, PaneWidths{Sidebar: 18, List: 24, Preview: 20}},   // every pane at its minimum
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, CalculatePaneWidths(tt.terminalWidth, cfg), tt.want)
		})
	}
}

func TestCalculateGridColumns(t *testing.T) {
	cfg := DefaultConfig().Grid

	tests := []struct {
		name        string
		width       int
		wantColumns int
		wantCard    int
	}{
		{"two columns", 52, 2, 25},    // (52+2)/(24+2) = 2, (52-2)/2 = 25
		{"three columns", 100, 3, 32}, // (100+2)/26 = 3, (100-4)/3 = 32
		{"exactly one card", 24, 1, 24},
		{"narrower than a card", 20, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, card := CalculateGridColumns(tt.width, cfg)
			assert.Equal(t, columns, tt.wantColumns)
			assert.Equal(t, card, tt.wantCard)
		})
	}
}

func TestListSizing(t *testing.T) {
	cfg := DefaultConfig().Pane

	// A 36 wide list pane leaves 32 cells per row.
	assert.Equal(t, CalculateItemWidth(36, cfg), 32)

	// Headers eat rows, but at least one row stays visible.
	assert.Equal(t, CalculateVisibleHeight(17, 3), 14)
	assert.Equal(t, CalculateVisibleHeight(17, 0), 17)
	assert.Equal(t, CalculateVisibleHeight(3, 3), 1)
	assert.Equal(t, CalculateVisibleHeight(2, 6), 1)
}

func TestCalculateViewportOffset(t *testing.T) {
	tests := []struct {
		selected, total, height int
		want                    int
	}{
		{selected: 3, total: 6, height: 12, want: 0},   // everything fits
		{selected: 2, total: 30, height: 12, want: 0},  // near the top
		{selected: 15, total: 30, height: 12, want: 9}, // centered: 15 - 6
		{selected: 27, total: 30, height: 12, want: 18},
		{selected: 29, total: 30, height: 12, want: 18}, // clamped to total - height
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of %d", tt.selected, tt.total), func(t *testing.T) {
			assert.Equal(t, CalculateViewportOffset(tt.selected, tt.total, tt.height), tt.want)
		})
	}
}
