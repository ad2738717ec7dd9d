// Package importer reads Netscape bookmark files (the HTML format every
// browser exports) into the library.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// CollectionSeparator joins nested folder names into one collection name.
const CollectionSeparator = " / "

// Entry is one bookmark read from an export file.
type Entry struct {
	Title       string
	URL         string
	Description string
	// Collection is the enclosing folder path, "" for top-level links.
	Collection string
	Tags       []string
	AddedAt    time.Time // zero when the file carries no ADD_DATE
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. Folders are flattened
// into collection names; nested folders are joined with CollectionSeparator.
func ParseHTMLBookmarks(r io.Reader) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL
	last := -1               // entry a following DD describes

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pendingFolder = getTextContent(n)
				last = -1
				return

			case "a":
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					last = -1
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				e := Entry{
					Title:      title,
					URL:        href,
					Collection: strings.Join(folderStack, CollectionSeparator),
					Tags:       splitTags(getAttr(n, "tags")),
				}
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						e.AddedAt = time.Unix(ts, 0).UTC()
					}
				}
				entries = append(entries, e)
				last = len(entries) - 1
				return

			case "dd":
				// A DD may swallow the folder's DL that follows it.
				if last >= 0 {
					entries[last].Description = ownText(n)
				}
				last = -1
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode {
						parse(c)
					}
				}
				return

			case "dl":
				pushed := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushed = true
				}
				last = -1

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				last = -1
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return entries, nil
}

func splitTags(v string) []string {
	var tags []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// ownText returns the text of n's direct text children.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(text.String()), " ")
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
