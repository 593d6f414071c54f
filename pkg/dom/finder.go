package dom

import (
	"strings"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
)

// Finder locates the NotebookLM controls in a snapshot. Every method
// returns the single best element or nil; none of them guess beyond the
// configured selectors and phrases.
type Finder struct {
	sel   config.Selectors
	texts config.Texts
}

// NewFinder creates a Finder for the given selectors and phrase lists.
func NewFinder(sel config.Selectors, texts config.Texts) *Finder {
	return &Finder{sel: sel, texts: texts}
}

// Selectors returns the selectors the finder was built with.
func (f *Finder) Selectors() config.Selectors { return f.sel }

// Texts returns the phrase lists the finder was built with.
func (f *Finder) Texts() config.Texts { return f.texts }

// FindByText returns the first visible element under scope matching
// selector whose icon-stripped text contains fragment.
func (f *Finder) FindByText(doc *Document, scope *Element, selector, fragment string) *Element {
	return doc.Find(Query{
		Scope:         scope,
		Selector:      selector,
		Texts:         []string{fragment},
		StripSelector: f.sel.Icons,
	})
}

// FindInput returns the URL input under scope: the dedicated form control
// if present, otherwise the first visible non-hidden input whose
// placeholder or aria-label mentions an input keyword.
func (f *Finder) FindInput(doc *Document, scope *Element) *Element {
	if el := doc.Query(scope, f.sel.Input); el != nil {
		return el
	}
	keywords := normAll(f.texts.InputKeywords)
	for _, el := range doc.FindAll(Query{Scope: scope, Selector: f.sel.InputCandidates}) {
		combined := Norm(el.Attr("placeholder")) + " " + Norm(el.Attr("aria-label"))
		if containsAny(combined, keywords) {
			return el
		}
	}
	return nil
}

// LastVisibleDialog returns the topmost open dialog: the last visible
// dialog in document order inside the overlay container, or inside the
// whole document when there is no overlay container.
func (f *Finder) LastVisibleDialog(doc *Document) *Element {
	var scope *Element
	if f.sel.OverlayContainer != "" {
		scope = doc.Query(nil, f.sel.OverlayContainer)
	}
	visible := doc.FindAll(Query{Scope: scope, Selector: f.sel.Dialog})
	if len(visible) == 0 {
		return nil
	}
	return visible[len(visible)-1]
}

// AddSourceButton returns the control that opens the add-source dialog,
// first by its aria-label selectors and then by localized button text.
func (f *Finder) AddSourceButton(doc *Document) *Element {
	if len(f.sel.AddSourceButtons) > 0 {
		if el := doc.Query(nil, strings.Join(f.sel.AddSourceButtons, ", ")); el != nil {
			return el
		}
	}
	for _, text := range f.texts.AddSourceButtons {
		if el := f.FindByText(doc, nil, f.sel.Buttons, text); el != nil {
			return el
		}
	}
	return nil
}

// LimitCounter returns the source counter ("12 / 50") inside dialog.
func (f *Finder) LimitCounter(doc *Document, dialog *Element) *Element {
	for _, el := range doc.QueryAll(dialog, f.sel.LimitCounter) {
		if strings.Contains(el.Text(), "/") {
			return el
		}
	}
	return nil
}

// SubmitButton returns the first visible, enabled button inside dialog
// whose text, icons stripped, contains an affirmative phrase. A nil dialog
// matches nothing.
func (f *Finder) SubmitButton(doc *Document, dialog *Element) *Element {
	if dialog == nil {
		return nil
	}
	phrases := normAll(f.texts.SubmitButtons)
	for _, el := range doc.FindAll(Query{Scope: dialog, Selector: f.sel.Buttons}) {
		if containsAny(el.CleanText(f.sel.Icons), phrases) && !el.Disabled() {
			return el
		}
	}
	return nil
}

// CloseButton returns the dialog's close control, or nil.
func (f *Finder) CloseButton(doc *Document, dialog *Element) *Element {
	return doc.Query(dialog, f.sel.CloseButtons)
}

// Backdrop returns the overlay backdrop, or nil.
func (f *Finder) Backdrop(doc *Document) *Element {
	return doc.Query(nil, f.sel.Backdrop)
}

// CreateButton returns the first visible create-notebook control, trying
// each selector's first match in order.
func (f *Finder) CreateButton(doc *Document) *Element {
	for _, sel := range f.sel.CreateButtons {
		if el := doc.Query(nil, sel); el != nil && el.Visible() {
			return el
		}
	}
	return nil
}

// PlaylistLinks returns every video anchor on a listing page in document order.
func (f *Finder) PlaylistLinks(doc *Document) []*Element {
	if len(f.sel.PlaylistLinks) == 0 {
		return nil
	}
	return doc.QueryAll(nil, strings.Join(f.sel.PlaylistLinks, ", "))
}
