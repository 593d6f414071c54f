package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"mobile host with extra params", "https://m.youtube.com/watch?v=ABC&x=1", "https://www.youtube.com/watch?v=ABC", true},
		{"www host with playlist", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL1&index=2", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"bare host", "http://youtube.com/watch?v=xyz", "https://www.youtube.com/watch?v=xyz", true},
		{"music subdomain", "https://music.youtube.com/watch?v=m1", "https://www.youtube.com/watch?v=m1", true},
		{"short host with v", "https://youtu.be/ignored?v=abc", "https://www.youtube.com/watch?v=abc", true},
		{"surrounding whitespace", "  https://m.youtube.com/watch?v=ABC \n", "https://www.youtube.com/watch?v=ABC", true},
		{"video host without id passes through", "https://www.youtube.com/playlist?list=PL1", "https://www.youtube.com/playlist?list=PL1", true},
		{"short link without v passes through", "https://youtu.be/abc", "https://youtu.be/abc", true},
		{"other site round-trips", "https://example.com/articles/42?ref=home#top", "https://example.com/articles/42?ref=home#top", true},
		{"lookalike host is not video", "https://notyoutube.com/watch?v=abc", "https://notyoutube.com/watch?v=abc", true},
		{"malformed", "not a url", "", false},
		{"empty", "", "", false},
		{"bad escape", "https://exa mple.com/%zz", "", false},
		{"non-http scheme", "ftp://example.com/file", "", false},
		{"javascript", "javascript:alert(1)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizer_CustomHosts(t *testing.T) {
	n, err := NewNormalizer([]string{"*.example-video.com"})
	require.NoError(t, err)

	got, ok := n.Normalize("https://m.example-video.com/watch?v=ABC&x=1")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=ABC", got)

	assert.True(t, n.IsVideoHost("M.Example-Video.com"))
	assert.False(t, n.IsVideoHost("youtube.com"))
}
