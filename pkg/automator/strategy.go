package automator

import (
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
)

// Kind says what a strategy matched.
type Kind string

const (
	// KindInput is the URL input itself; no selection click is needed
	KindInput Kind = "input"
	// KindControl is a source-type control that must be clicked
	KindControl Kind = "control"
)

// Match is the element a Strategy resolved.
type Match struct {
	Element  *dom.Element
	Kind     Kind
	Strategy string
}

// Strategy is one heuristic for choosing the YouTube source type inside
// the add-source dialog. Match is evaluated against the current snapshot
// and must not act on the page.
type Strategy interface {
	Name() string
	Match(f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool)
}

// DefaultStrategies returns the strategies in priority order. The existing
// input comes first: when the dialog already shows the URL field nothing
// may be clicked.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ExistingInput{},
		CardButton{},
		Chip{},
		ChipLabel{},
	}
}

// matchFirst evaluates strategies in order and returns the first match.
func matchFirst(strategies []Strategy, f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool) {
	for _, s := range strategies {
		if m, ok := s.Match(f, doc, dialog); ok {
			m.Strategy = s.Name()
			return m, true
		}
	}
	return Match{}, false
}

// ExistingInput matches a URL input that is already in the dialog.
type ExistingInput struct{}

func (ExistingInput) Name() string { return "existing input" }

func (ExistingInput) Match(f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool) {
	if el := f.FindInput(doc, dialog); el != nil {
		return Match{Element: el, Kind: KindInput}, true
	}
	return Match{}, false
}

// CardButton matches the card-style picker: a visible button whose text
// names one of the card kinds ("YouTube", "Website").
type CardButton struct{}

func (CardButton) Name() string { return "card button" }

func (CardButton) Match(f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool) {
	el := doc.Find(dom.Query{
		Scope:         dialog,
		Selector:      f.Selectors().CardButtons,
		Texts:         f.Texts().CardKinds,
		StripSelector: f.Selectors().Icons,
	})
	if el == nil {
		return Match{}, false
	}
	return Match{Element: el, Kind: KindControl}, true
}

// Chip matches a source chip labelled with a chip phrase.
type Chip struct{}

func (Chip) Name() string { return "chip" }

func (Chip) Match(f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool) {
	for _, text := range f.Texts().Chips {
		if el := f.FindByText(doc, dialog, f.Selectors().Chip, text); el != nil {
			return Match{Element: el, Kind: KindControl}, true
		}
	}
	return Match{}, false
}

// ChipLabel matches a chip through its inner label and clicks the chip
// that contains it, or the label when it has no chip ancestor.
type ChipLabel struct{}

func (ChipLabel) Name() string { return "chip label" }

func (ChipLabel) Match(f *dom.Finder, doc *dom.Document, dialog *dom.Element) (Match, bool) {
	for _, text := range f.Texts().Chips {
		label := f.FindByText(doc, dialog, f.Selectors().ChipLabel, text)
		if label == nil {
			continue
		}
		target := label
		if chip := label.Closest(f.Selectors().Chip); chip != nil {
			target = chip
		}
		return Match{Element: target, Kind: KindControl}, true
	}
	return Match{}, false
}
