package server

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nikbrunner/marks/internal/model"
)

// Sanitizer strips markup from user supplied free text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes every tag from s and undoes the entity escaping the policy
// applies, so plain text round-trips unchanged.
func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

func (s *Sanitizer) Draft(d model.BookmarkDraft) model.BookmarkDraft {
	d.Title = s.Text(d.Title)
	d.Description = s.Text(d.Description)
	return d
}

func (s *Sanitizer) Patch(p model.BookmarkPatch) model.BookmarkPatch {
	if p.Title != nil {
		v := s.Text(*p.Title)
		p.Title = &v
	}
	if p.Description != nil {
		v := s.Text(*p.Description)
		p.Description = &v
	}
	return p
}
