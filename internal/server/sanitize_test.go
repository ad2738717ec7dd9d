package server

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/marks/internal/model"
)

func TestSanitizerText(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		in, want string
	}{
		{"plain title", "plain title"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"<b>bold</b> move", "bold move"},
		{`<a href="javascript:alert(1)">click</a>`, "click"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		assert.Equal(t, s.Text(tt.in), tt.want, tt.in)
	}
}

func TestSanitizerPatchLeavesAbsentFields(t *testing.T) {
	s := NewSanitizer()
	title := "<i>Go</i>"
	p := s.Patch(model.BookmarkPatch{Title: &title})

	assert.Equal(t, *p.Title, "Go")
	assert.Assert(t, p.Description == nil)
	assert.Equal(t, title, "<i>Go</i>")
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, retryAfter(2), 1)
	assert.Equal(t, retryAfter(0.5), 2)
	assert.Equal(t, retryAfter(0), 60)
}
