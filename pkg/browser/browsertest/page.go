// Package browsertest provides a scripted in-memory browser.Tab for tests.
//
// A Page holds a live HTML tree. Snapshot stamps refs in document order the
// way the real snapshot script does, and actions are recorded so tests can
// assert on the exact interaction sequence. Page transitions are scripted
// with OnClick, OnEscape and OnSnapshot reactions that usually call Load
// with the next fixture.
package browsertest

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"golang.org/x/net/html"
)

// Reaction mutates the page in response to an action.
type Reaction func(p *Page)

// Page is a fake browser.Tab.
type Page struct {
	mu        sync.Mutex
	id        string
	url       string
	root      *html.Node
	refs      map[int]*html.Node
	focused   *html.Node
	calls     []string
	snapshots int

	onClick    map[string]Reaction
	onEscape   Reaction
	onSnapshot func(p *Page, n int)

	// ExecCommandUnsupported makes every ExecCommand report false, like
	// pages where the input is not editable through execCommand.
	ExecCommandUnsupported bool

	// SnapshotErr, when set, is returned by Snapshot.
	SnapshotErr error
}

var _ browser.Tab = (*Page)(nil)

// New creates a page with the given id, URL and initial HTML.
func New(id, url, fixture string) *Page {
	p := &Page{
		id:      id,
		url:     url,
		onClick: make(map[string]Reaction),
	}
	p.Load(fixture)
	return p
}

// Load replaces the page content. Refs from earlier snapshots become stale.
func (p *Page) Load(fixture string) {
	root, err := html.Parse(strings.NewReader(fixture))
	if err != nil {
		panic(fmt.Sprintf("browsertest: bad fixture: %v", err))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = root
	p.refs = nil
	p.focused = nil
}

// SetURL changes the page URL without recording a navigation.
func (p *Page) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// OnClick registers a reaction for native clicks on the element with id.
func (p *Page) OnClick(id string, r Reaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick[id] = r
}

// OnEscape registers a reaction for an Escape keydown dispatched on any element.
func (p *Page) OnEscape(r Reaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEscape = r
}

// OnSnapshot registers a hook run before every snapshot with its 1-based count.
func (p *Page) OnSnapshot(fn func(p *Page, n int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSnapshot = fn
}

// Calls returns the recorded interaction log.
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many recorded calls equal call.
func (p *Page) CallCount(call string) int {
	n := 0
	for _, c := range p.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Snapshots returns how many snapshots were taken.
func (p *Page) Snapshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots
}

// ValueOf returns the live value of the element with id.
func (p *Page) ValueOf(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := findByID(p.root, id)
	if n == nil {
		return ""
	}
	return liveValue(n)
}

func (p *Page) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *Page) ID() string { return p.id }

func (p *Page) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("navigate:%s", url)
	p.url = url
	return nil
}

func (p *Page) Snapshot(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	p.snapshots++
	n := p.snapshots
	hook := p.onSnapshot
	p.mu.Unlock()

	if hook != nil {
		hook(p, n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SnapshotErr != nil {
		return "", p.SnapshotErr
	}

	p.refs = make(map[int]*html.Node)
	next := 0
	var stamp func(n *html.Node)
	stamp = func(n *html.Node) {
		if n.Type == html.ElementNode {
			setAttr(n, dom.AttrRef, strconv.Itoa(next))
			p.refs[next] = n
			next++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stamp(c)
		}
	}
	stamp(p.root)

	var buf bytes.Buffer
	if err := html.Render(&buf, p.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// lookup resolves a ref from the latest snapshot. Caller holds p.mu.
func (p *Page) lookup(op string, ref int) (*html.Node, error) {
	n, ok := p.refs[ref]
	if !ok {
		return nil, fmt.Errorf("%s ref %d: %w", op, ref, browser.ErrStaleRef)
	}
	return n, nil
}

func (p *Page) ScrollIntoView(ctx context.Context, ref int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.lookup("scroll", ref)
	if err != nil {
		return err
	}
	p.record("scroll:%s", describe(n))
	return nil
}

func (p *Page) Dispatch(ctx context.Context, ref int, ev browser.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	n, err := p.lookup("dispatch", ref)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if ev.Key != "" {
		p.record("%s[%s]:%s", ev.Type, ev.Key, describe(n))
	} else {
		p.record("%s:%s", ev.Type, describe(n))
	}
	reaction := p.onEscape
	p.mu.Unlock()

	if ev.Type == "keydown" && ev.Key == "Escape" && reaction != nil {
		reaction(p)
	}
	return nil
}

func (p *Page) Click(ctx context.Context, ref int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	n, err := p.lookup("click", ref)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.record("click:%s", describe(n))
	id, _ := getAttr(n, "id")
	reaction := p.onClick[id]
	p.mu.Unlock()

	if id != "" && reaction != nil {
		reaction(p)
	}
	return nil
}

func (p *Page) Focus(ctx context.Context, ref int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.lookup("focus", ref)
	if err != nil {
		return err
	}
	p.record("focus:%s", describe(n))
	p.focused = n
	return nil
}

func (p *Page) ExecCommand(ctx context.Context, command, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("exec:%s", command)

	if p.ExecCommandUnsupported || p.focused == nil {
		return false, nil
	}
	switch command {
	case "selectAll":
	case "delete":
		setAttr(p.focused, dom.AttrValue, "")
	case "insertText":
		setAttr(p.focused, dom.AttrValue, liveValue(p.focused)+value)
	default:
		return false, nil
	}
	return true, nil
}

func (p *Page) SetValue(ctx context.Context, ref int, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.lookup("set", ref)
	if err != nil {
		return err
	}
	p.record("set:%s=%s", describe(n), value)
	setAttr(n, dom.AttrValue, value)
	return nil
}

func (p *Page) Value(ctx context.Context, ref int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.lookup("value", ref)
	if err != nil {
		return "", err
	}
	return liveValue(n), nil
}

// liveValue returns the current value, falling back to the value attribute
// the fixture was written with.
func liveValue(n *html.Node) string {
	if v, ok := getAttr(n, dom.AttrValue); ok {
		return v
	}
	v, _ := getAttr(n, "value")
	return v
}

// describe names a node in the call log: "#id" when it has one, else its tag.
func describe(n *html.Node) string {
	if id, ok := getAttr(n, "id"); ok && id != "" {
		return "#" + id
	}
	return n.Data
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		if v, ok := getAttr(n, "id"); ok && v == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}
