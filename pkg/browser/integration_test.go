package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationPage = `<!DOCTYPE html>
<html><body>
<button id="btn" style="width:120px;height:30px">Insert</button>
<div id="hidden" style="display:none">secret</div>
<input id="url" style="width:200px">
<div id="log"></div>
<script>
  const log = document.getElementById('log');
  const btn = document.getElementById('btn');
  btn.addEventListener('pointerdown', () => { log.textContent += 'pointerdown;'; });
  btn.addEventListener('click', () => { log.textContent += 'click;'; });
  document.addEventListener('keydown', (e) => {
    if (e.key === 'Escape') log.textContent += 'escape;';
  });
</script>
</body></html>`

func TestIntegration_Engines(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, integrationPage)
	}))
	defer srv.Close()

	engines := map[string]func() Manager{
		"playwright": func() Manager { return NewPlaywrightManager(Options{Headless: true}) },
		"rod":        func() Manager { return NewRodManager(Options{Headless: true}) },
	}

	for name, newManager := range engines {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			m := newManager()
			require.NoError(t, m.Start(ctx))
			defer m.Shutdown()

			tab, err := m.OpenTab(ctx, srv.URL)
			require.NoError(t, err)
			defer m.CloseTab(tab.ID())

			exerciseTab(ctx, t, tab)
		})
	}
}

func snapshotDoc(ctx context.Context, t *testing.T, tab Tab) *dom.Document {
	t.Helper()
	html, err := tab.Snapshot(ctx)
	require.NoError(t, err)
	doc, err := dom.Parse(html)
	require.NoError(t, err)
	return doc
}

func exerciseTab(ctx context.Context, t *testing.T, tab Tab) {
	doc := snapshotDoc(ctx, t, tab)

	btn := doc.Query(nil, "#btn")
	require.NotNil(t, btn)
	assert.GreaterOrEqual(t, btn.Ref(), 0)
	assert.True(t, strings.HasPrefix(btn.Attr(dom.AttrBox), "120,"), btn.Attr(dom.AttrBox))
	assert.True(t, strings.HasPrefix(btn.Attr(dom.AttrStyle), "inline-block;visible;"), btn.Attr(dom.AttrStyle))
	assert.True(t, btn.Visible())

	hidden := doc.Query(nil, "#hidden")
	require.NotNil(t, hidden)
	assert.True(t, strings.HasPrefix(hidden.Attr(dom.AttrStyle), "none;"))
	assert.False(t, hidden.Visible())

	t.Run("dispatch and click", func(t *testing.T) {
		require.NoError(t, tab.ScrollIntoView(ctx, btn.Ref()))
		require.NoError(t, tab.Dispatch(ctx, btn.Ref(), Event{Type: "pointerdown"}))
		require.NoError(t, tab.Click(ctx, btn.Ref()))
		require.NoError(t, tab.Dispatch(ctx, btn.Ref(), Event{Type: "keydown", Key: "Escape"}))

		log := snapshotDoc(ctx, t, tab).Query(nil, "#log")
		require.NotNil(t, log)
		assert.Equal(t, "pointerdown;click;escape;", dom.Norm(log.Text()))
	})

	t.Run("insert text", func(t *testing.T) {
		input := snapshotDoc(ctx, t, tab).Query(nil, "#url")
		require.NotNil(t, input)

		require.NoError(t, tab.Focus(ctx, input.Ref()))
		ok, err := tab.ExecCommand(ctx, "insertText", "https://youtu.be/abc")
		require.NoError(t, err)
		assert.True(t, ok)

		v, err := tab.Value(ctx, input.Ref())
		require.NoError(t, err)
		assert.Equal(t, "https://youtu.be/abc", v)

		again := snapshotDoc(ctx, t, tab).Query(nil, "#url")
		require.NotNil(t, again)
		assert.Equal(t, "https://youtu.be/abc", again.Value())
	})

	t.Run("stale ref", func(t *testing.T) {
		err := tab.Click(ctx, 1_000_000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStaleRef))
	})
}
