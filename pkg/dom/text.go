package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Norm collapses whitespace runs to one space, trims and lowercases.
func Norm(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func normAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := Norm(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(text string, phrases []string) bool {
	return MatchPhrase(text, phrases) != ""
}

// MatchPhrase returns the first phrase contained in the normalized text, or "".
// Phrases are normalized before comparison.
func MatchPhrase(text string, phrases []string) string {
	text = Norm(text)
	for _, p := range phrases {
		if n := Norm(p); n != "" && strings.Contains(text, n) {
			return p
		}
	}
	return ""
}

// blockTags separate their text from neighbours the way rendered text does.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"br": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "section": true, "table": true, "td": true,
	"th": true, "tr": true, "ul": true, "mat-dialog-container": true,
}

// Text returns the element's rendered text: text of descendants that are
// displayed, with block boundaries kept as whitespace.
func (e *Element) Text() string {
	return e.text("")
}

// CleanText returns the normalized rendered text with descendants matching
// strip (icon glyphs) removed first. An empty strip removes nothing.
func (e *Element) CleanText(strip string) string {
	return Norm(e.text(strip))
}

func (e *Element) text(strip string) string {
	var m func(*html.Node) bool
	if strip != "" {
		if sel := compile(strip); sel != nil {
			m = sel
		}
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n != e.n {
				child := &Element{n: n, doc: e.doc}
				if child.hiddenFromText() {
					return
				}
				if m != nil && m(n) {
					return
				}
			}
			if blockTags[n.Data] {
				b.WriteByte(' ')
				defer b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.n)
	return b.String()
}
