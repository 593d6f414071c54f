package urls

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
)

// PlaylistURLs returns the canonical watch URLs linked from a listing page
// (playlist, channel grid or feed), in page order without duplicates.
// Relative links are resolved against pageURL; links without a v
// parameter are skipped.
func PlaylistURLs(f *dom.Finder, doc *dom.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = &url.URL{}
	}

	seen := make(map[string]bool)
	var out []string
	for _, a := range f.PlaylistLinks(doc) {
		ref, err := url.Parse(a.Attr("href"))
		if err != nil {
			continue
		}
		id := base.ResolveReference(ref).Query().Get("v")
		if id == "" {
			continue
		}
		watch := Watch(id)
		if seen[watch] {
			continue
		}
		seen[watch] = true
		out = append(out, watch)
	}
	return out
}

// ExtractPlaylist snapshots the source tab and returns its video URLs.
func ExtractPlaylist(ctx context.Context, tab browser.Tab, f *dom.Finder) ([]string, error) {
	pageURL, err := tab.URL(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read source url: %w", err)
	}
	html, err := tab.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot source tab: %w", err)
	}
	doc, err := dom.Parse(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source tab: %w", err)
	}
	return PlaylistURLs(f, doc, pageURL), nil
}
