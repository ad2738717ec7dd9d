// Package exporter writes the library as a Netscape bookmark file.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/store"
)

// Options select what an export includes.
type Options struct {
	IncludeArchived bool
	// Collection limits the export to one collection id. Empty or "all"
	// exports every collection.
	Collection string
}

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders active bookmarks (and archived ones when asked) as
// Netscape bookmark HTML. Each collection becomes a folder; uncategorized
// bookmarks sit at the top level. Trashed bookmarks are never exported.
func ExportHTML(s store.Snapshot, opts Options) string {
	bookmarks := Selected(s, opts)
	only := onlyCollection(opts)

	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	prefix := "    "
	for _, c := range s.Collections {
		if only != "" && c.ID != only {
			continue
		}
		var members []model.Bookmark
		for _, bm := range bookmarks {
			if bm.InCollection(c.ID) {
				members = append(members, bm)
			}
		}
		if len(members) == 0 && only == "" {
			continue
		}

		fmt.Fprintf(&b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(c.Name))
		fmt.Fprintf(&b, "%s<DL><p>\n", prefix)
		for _, bm := range members {
			writeBookmark(&b, s, bm, prefix+"    ")
		}
		fmt.Fprintf(&b, "%s</DL><p>\n", prefix)
	}

	if only == "" {
		for _, bm := range bookmarks {
			if s.CollectionName(bm.CollectionID) == "" {
				writeBookmark(&b, s, bm, prefix)
			}
		}
	}

	b.WriteString("</DL><p>\n")

	return b.String()
}

func writeBookmark(b *strings.Builder, s store.Snapshot, bm model.Bookmark, prefix string) {
	attrs := fmt.Sprintf(" HREF=\"%s\" ADD_DATE=\"%d\"", html.EscapeString(bm.URL), bm.CreatedAt.Unix())
	if tags := s.TagNames(bm.Tags); len(tags) > 0 {
		attrs += fmt.Sprintf(" TAGS=\"%s\"", html.EscapeString(strings.Join(tags, ",")))
	}
	fmt.Fprintf(b, "%s<DT><A%s>%s</A>\n", prefix, attrs, html.EscapeString(bm.Title))
	if bm.Description != "" {
		fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(bm.Description))
	}
}

// Selected returns the bookmarks an export with opts writes.
func Selected(s store.Snapshot, opts Options) []model.Bookmark {
	bookmarks := slices.Clone(s.Bookmarks)
	if opts.IncludeArchived {
		bookmarks = append(bookmarks, s.Archived...)
	}
	if only := onlyCollection(opts); only != "" {
		bookmarks = slices.DeleteFunc(bookmarks, func(b model.Bookmark) bool {
			return !b.InCollection(only)
		})
	}
	return bookmarks
}

func onlyCollection(opts Options) string {
	if opts.Collection == model.AllCollectionID {
		return ""
	}
	return opts.Collection
}
