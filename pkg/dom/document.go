// Package dom parses annotated page snapshots and locates the elements the
// add-source flow interacts with.
//
// A snapshot is the page's outerHTML after the browser package has stamped
// every element with its measurements:
//
//	data-nlm-ref      stable id for this snapshot, used to target actions
//	data-nlm-box      "width,height" of the bounding client rect
//	data-nlm-style    "display;visibility;opacity" from the computed style
//	data-nlm-value    live value of form controls
//	data-nlm-disabled present when the element's disabled property is true
//
// Elements without measurements are treated as rendered, which keeps
// hand-written fixtures short.
package dom

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Snapshot attribute names.
const (
	AttrRef      = "data-nlm-ref"
	AttrBox      = "data-nlm-box"
	AttrStyle    = "data-nlm-style"
	AttrValue    = "data-nlm-value"
	AttrDisabled = "data-nlm-disabled"
)

var selectorCache sync.Map // string -> cascadia.Selector (nil for invalid)

// compile returns the compiled selector, or nil when sel does not parse.
func compile(sel string) cascadia.Selector {
	if cached, ok := selectorCache.Load(sel); ok {
		return cached.(cascadia.Selector)
	}
	compiled, err := cascadia.Compile(sel)
	if err != nil {
		compiled = nil
	}
	selectorCache.Store(sel, compiled)
	return compiled
}

// ValidSelector reports whether sel is a CSS selector the locator can use.
func ValidSelector(sel string) error {
	if _, err := cascadia.Compile(sel); err != nil {
		return fmt.Errorf("invalid selector %q: %w", sel, err)
	}
	return nil
}

// Document is one parsed snapshot. It is immutable; take a new snapshot
// after anything on the page may have changed.
type Document struct {
	root *html.Node
	refs map[int]*html.Node
}

// Parse parses an annotated snapshot.
func Parse(snapshot string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(snapshot))
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	d := &Document{root: root, refs: make(map[int]*html.Node)}
	var index func(n *html.Node)
	index = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if v, ok := attr(n, AttrRef); ok {
				if ref, err := strconv.Atoi(v); err == nil {
					d.refs[ref] = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			index(c)
		}
	}
	index(root)
	return d, nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{n: n, doc: d}
}

// ByRef returns the element stamped with ref, or nil.
func (d *Document) ByRef(ref int) *Element {
	return d.wrap(d.refs[ref])
}

// Body returns the body element. html.Parse always synthesizes one.
func (d *Document) Body() *Element {
	return d.Query(nil, "body")
}

// QueryAll returns all descendants of scope matching sel in document order.
// A nil scope searches the whole document. An invalid selector matches nothing.
func (d *Document) QueryAll(scope *Element, sel string) []*Element {
	m := compile(sel)
	if m == nil {
		return nil
	}
	root := d.root
	if scope != nil {
		root = scope.n
	}
	nodes := cascadia.QueryAll(root, m)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// Query returns the first descendant of scope matching sel, or nil.
func (d *Document) Query(scope *Element, sel string) *Element {
	m := compile(sel)
	if m == nil {
		return nil
	}
	root := d.root
	if scope != nil {
		root = scope.n
	}
	return d.wrap(cascadia.Query(root, m))
}

// Query describes how to find one element: where to look, what tag or
// attribute shape it has, and optionally which phrases its text may contain.
type Query struct {
	// Scope limits the search to descendants; nil means the whole document
	Scope *Element

	// Selector is a CSS selector group used as tag filter and attribute predicate
	Selector string

	// Texts lists accepted phrases; the element matches if its cleaned text
	// contains any of them. Empty means no text constraint.
	Texts []string

	// StripSelector removes matching descendants (icons) before text comparison
	StripSelector string

	// AnyVisibility includes elements that are not rendered
	AnyVisibility bool
}

// FindAll returns every element matching q in document order.
func (d *Document) FindAll(q Query) []*Element {
	var out []*Element
	phrases := normAll(q.Texts)
	for _, el := range d.QueryAll(q.Scope, q.Selector) {
		if !q.AnyVisibility && !el.Visible() {
			continue
		}
		if len(phrases) > 0 && !containsAny(el.CleanText(q.StripSelector), phrases) {
			continue
		}
		out = append(out, el)
	}
	return out
}

// Find returns the first element matching q, or nil.
func (d *Document) Find(q Query) *Element {
	phrases := normAll(q.Texts)
	for _, el := range d.QueryAll(q.Scope, q.Selector) {
		if !q.AnyVisibility && !el.Visible() {
			continue
		}
		if len(phrases) > 0 && !containsAny(el.CleanText(q.StripSelector), phrases) {
			continue
		}
		return el
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
