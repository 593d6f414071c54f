package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Element is a node of a parsed snapshot.
type Element struct {
	n   *html.Node
	doc *Document
}

// Ref returns the snapshot ref used to target actions, or -1 when the
// element was not stamped.
func (e *Element) Ref() int {
	v, ok := attr(e.n, AttrRef)
	if !ok {
		return -1
	}
	ref, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return ref
}

// Tag returns the lowercase tag name.
func (e *Element) Tag() string { return e.n.Data }

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(key string) string {
	v, _ := attr(e.n, key)
	return v
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := attr(e.n, key)
	return ok
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.Attr("id") }

// Value returns the live value of a form control.
func (e *Element) Value() string {
	if v, ok := attr(e.n, AttrValue); ok {
		return v
	}
	return e.Attr("value")
}

// Disabled reports the element's disabled property.
func (e *Element) Disabled() bool {
	return e.HasAttr(AttrDisabled) || e.HasAttr("disabled")
}

// style is the parsed data-nlm-style annotation.
type style struct {
	display    string
	visibility string
	opacity    string
}

func (e *Element) style() style {
	s := style{display: "block", visibility: "visible", opacity: "1"}
	v, ok := attr(e.n, AttrStyle)
	if !ok {
		return s
	}
	parts := strings.Split(v, ";")
	if len(parts) > 0 && parts[0] != "" {
		s.display = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		s.visibility = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		s.opacity = strings.TrimSpace(parts[2])
	}
	return s
}

// box returns the rendered size; ok is false when the element carries no box.
func (e *Element) box() (w, h float64, ok bool) {
	v, present := attr(e.n, AttrBox)
	if !present {
		return 0, 0, false
	}
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, true
	}
	w, _ = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, _ = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	return w, h, true
}

// Visible reports whether the element is rendered: non-zero box, opacity
// not zero, display not none and visibility not hidden.
func (e *Element) Visible() bool {
	s := e.style()
	if s.display == "none" || s.visibility == "hidden" {
		return false
	}
	if op, err := strconv.ParseFloat(s.opacity, 64); err == nil && op == 0 {
		return false
	}
	if w, h, ok := e.box(); ok {
		return w > 0 && h > 0
	}
	return true
}

// hiddenFromText reports whether the element's text is excluded from its
// ancestors' rendered text.
func (e *Element) hiddenFromText() bool {
	switch e.n.Data {
	case "script", "style", "template", "noscript", "head":
		return true
	}
	s := e.style()
	return s.display == "none" || s.visibility == "hidden"
}

// Closest returns the nearest ancestor-or-self matching sel, or nil.
func (e *Element) Closest(sel string) *Element {
	m := compile(sel)
	if m == nil {
		return nil
	}
	for n := e.n; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && m.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.n; n != nil; n = n.Parent {
		if n == e.n {
			return true
		}
	}
	return false
}

// Matches reports whether the element itself matches sel.
func (e *Element) Matches(sel string) bool {
	m := compile(sel)
	return m != nil && m.Match(e.n)
}

// String describes the element for logs: tag#id.class "text".
func (e *Element) String() string {
	var b strings.Builder
	b.WriteString(e.n.Data)
	if id := e.ID(); id != "" {
		b.WriteString("#" + id)
	}
	if cls := strings.Fields(e.Attr("class")); len(cls) > 0 {
		b.WriteString("." + cls[0])
	}
	if label := e.Attr("aria-label"); label != "" {
		fmt.Fprintf(&b, "[aria-label=%q]", label)
	}
	text := Norm(e.Text())
	if r := []rune(text); len(r) > 40 {
		text = string(r[:40]) + "…"
	}
	if text != "" {
		fmt.Fprintf(&b, " %q", text)
	}
	return b.String()
}
