package layout

import "testing"

func TestModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name          string
		terminalWidth int
		size          ModalSize
		want          int
	}{
		{"normal clamps up to min", 120, ModalNormal, 50},   // 48
		{"wide within bounds", 140, ModalWide, 70},          // 70
		{"wide clamps to max", 200, ModalWide, 80},          // 100
		{"normal within bounds", 180, ModalNormal, 72},      // 72
		{"narrow terminal keeps margin", 40, ModalWide, 36}, // 40-4 wins over min
		{"tiny terminal", 3, ModalNormal, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModalWidth(tt.terminalWidth, tt.size, cfg); got != tt.want {
				t.Errorf("ModalWidth(%d, %d) = %d, want %d", tt.terminalWidth, tt.size, got, tt.want)
			}
		})
	}
}

func TestCalculateSearchPanes(t *testing.T) {
	cfg := DefaultConfig().Search

	tests := []struct {
		name          string
		width, height int
		want          SearchPanes
	}{
		{"standard terminal", 80, 24, SearchPanes{ListWidth: 32, PreviewWidth: 40, Rows: 16}},
		{"wide terminal", 140, 40, SearchPanes{ListWidth: 56, PreviewWidth: 76, Rows: 32}},
		{"narrow terminal keeps list", 50, 20, SearchPanes{ListWidth: 30, PreviewWidth: 12, Rows: 12}},
		{"too narrow for preview", 30, 20, SearchPanes{ListWidth: 30, PreviewWidth: 0, Rows: 12}},
		{"short terminal", 80, 5, SearchPanes{ListWidth: 32, PreviewWidth: 40, Rows: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateSearchPanes(tt.width, tt.height, cfg); got != tt.want {
				t.Errorf("CalculateSearchPanes(%d, %d) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		name                  string
		selected, total, rows int
		wantStart, wantEnd    int
	}{
		{"fewer than rows", 2, 3, 5, 0, 3},
		{"at start", 0, 10, 5, 0, 5},
		{"centered", 5, 10, 4, 3, 7},
		{"clamped at end", 9, 10, 5, 5, 10},
		{"empty", 0, 0, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := VisibleRange(tt.selected, tt.total, tt.rows)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("VisibleRange(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.selected, tt.total, tt.rows, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
