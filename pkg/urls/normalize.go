// Package urls canonicalizes submitted URLs and extracts video links from
// YouTube listing pages.
package urls

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultVideoHosts are the host patterns of the YouTube family.
var DefaultVideoHosts = []string{"youtube.com", "*.youtube.com", "youtu.be"}

// Normalizer rewrites video links to the canonical watch form.
type Normalizer struct {
	hosts []glob.Glob
}

// NewNormalizer compiles the video host patterns.
func NewNormalizer(hostPatterns []string) (*Normalizer, error) {
	n := &Normalizer{}
	for _, pattern := range hostPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid host pattern '%s': %w", pattern, err)
		}
		n.hosts = append(n.hosts, g)
	}
	return n, nil
}

var defaultNormalizer, _ = NewNormalizer(DefaultVideoHosts)

// Normalize canonicalizes raw with the default video hosts.
func Normalize(raw string) (string, bool) {
	return defaultNormalizer.Normalize(raw)
}

// IsVideoHost reports whether host belongs to the video family.
func (n *Normalizer) IsVideoHost(host string) bool {
	host = strings.ToLower(host)
	for _, g := range n.hosts {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// Normalize returns the canonical form of raw:
//   - a video-family URL with a v parameter becomes https://www.youtube.com/watch?v=<id>
//   - any other http(s) URL is returned as parsed
//   - anything else yields false
func (n *Normalizer) Normalize(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	if n.IsVideoHost(u.Hostname()) {
		if id := u.Query().Get("v"); id != "" {
			return Watch(id), true
		}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true
	}
	return "", false
}

// Watch returns the canonical watch URL of a video id.
func Watch(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}
