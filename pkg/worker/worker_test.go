package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/automator"
	"github.com/shiromatz/yt-to-notebooklm/pkg/badge"
	"github.com/shiromatz/yt-to-notebooklm/pkg/batch"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser"
	"github.com/shiromatz/yt-to-notebooklm/pkg/browser/browsertest"
	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
	"github.com/shiromatz/yt-to-notebooklm/pkg/dom"
	"github.com/shiromatz/yt-to-notebooklm/pkg/logging"
	"github.com/shiromatz/yt-to-notebooklm/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	notebookURL  = "https://notebooklm.google.com/notebook/abc"
	dashboardURL = "https://notebooklm.google.com/"
	playlistURL  = "https://www.youtube.com/playlist?list=PL1"
)

type tabMap map[string]browser.Tab

func (m tabMap) Tab(id string) (browser.Tab, error) {
	if t, ok := m[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrTabNotFound, id)
}

// fakeAutomation answers TryAutoAdd with a fixed outcome.
type fakeAutomation struct {
	mu       sync.Mutex
	outcome  automator.Outcome
	create   automator.Outcome
	urls     []string
	closed   int
	finder   *dom.Finder
	redirect string
}

func newFakeAutomation(out automator.Outcome) *fakeAutomation {
	return &fakeAutomation{
		outcome: out,
		create:  automator.Succeeded(),
		finder:  dom.NewFinder(config.DefaultSelectors(), config.DefaultTexts()),
	}
}

func (f *fakeAutomation) TryAutoAdd(ctx context.Context, tab browser.Tab, url string) automator.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return f.outcome
}

func (f *fakeAutomation) CloseDialog(ctx context.Context, tab browser.Tab) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeAutomation) CreateNotebook(ctx context.Context, tab browser.Tab) automator.Outcome {
	if f.create.OK && f.redirect != "" {
		tab.(*browsertest.Page).SetURL(f.redirect)
	}
	return f.create
}

func (f *fakeAutomation) Finder() *dom.Finder { return f.finder }

func (f *fakeAutomation) added() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Timeouts = config.Timeouts{
		AutoAddMax:   time.Second,
		PollMed:      5 * time.Millisecond,
		RedirectWait: 100 * time.Millisecond,
	}
	return cfg
}

type fixture struct {
	coord  *Coordinator
	router *messaging.Router
	auto   *fakeAutomation
	badges *badge.Memory
	target *browsertest.Page
	tabs   tabMap
}

func newFixture(t *testing.T, cfg *config.Config, out automator.Outcome, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		router: messaging.NewRouter(),
		auto:   newFakeAutomation(out),
		badges: badge.NewMemory(),
		target: browsertest.New("nb", notebookURL, "<html><body></body></html>"),
	}
	f.tabs = tabMap{"nb": f.target}
	coord, err := New(cfg, f.router, f.tabs, f.auto, f.badges, opts...)
	require.NoError(t, err)
	f.coord = coord
	return f
}

func sendURL(url string) messaging.Message {
	return messaging.Message{Type: messaging.TypeSendURL, URL: url, TargetID: "nb", SourceID: "yt"}
}

func TestSendURL_Added(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtube.com/watch?v=abc&list=PL1&t=30"))

	assert.True(t, resp.OK)
	assert.Equal(t, string(automator.ModeAuto), resp.Mode)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, f.auto.added())
	assert.True(t, f.router.Registered("nb"), "content handler should be attached")
	assert.Equal(t, []string{badge.TextOK}, f.badges.History("yt"))
}

func TestSendURL_BadURL(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())

	resp := f.coord.SendURL(context.Background(), sendURL("javascript:alert(1)"))

	assert.False(t, resp.OK)
	assert.Equal(t, messaging.ModeBadURL, resp.Mode)
	assert.Empty(t, f.auto.added())
	assert.Equal(t, []string{badge.TextError}, f.badges.History("yt"))
}

func TestSendURL_CreatesNotebookFromDashboard(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())
	f.target.SetURL(dashboardURL)
	f.auto.redirect = notebookURL

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.True(t, resp.OK)
	assert.Equal(t, []string{"https://youtu.be/abc"}, f.auto.added())
}

func TestSendURL_CreateFailed(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())
	f.target.SetURL(dashboardURL)
	f.auto.create = automator.Failed(automator.StepCreateNotebook, automator.DetailNoCreateButton)

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.False(t, resp.OK)
	assert.Equal(t, messaging.ModeCreateFailed, resp.Mode)
	assert.Contains(t, resp.Detail, automator.DetailNoCreateButton)
	assert.Empty(t, f.auto.added())
	assert.Equal(t, []string{badge.TextError}, f.badges.History("yt"))
}

func TestSendURL_UnknownTarget(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())

	msg := sendURL("https://youtu.be/abc")
	msg.TargetID = "missing"
	resp := f.coord.SendURL(context.Background(), msg)

	assert.False(t, resp.OK)
	assert.Equal(t, messaging.ModeException, resp.Mode)
	assert.Contains(t, resp.Detail, "tab not found")
}

func TestSendURL_FailureWithoutFallback(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Failed(automator.StepSubmit, automator.DetailNoSubmit))

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.False(t, resp.OK)
	assert.Equal(t, string(automator.ModeFailed), resp.Mode)
	assert.Equal(t, automator.DetailNoSubmit, resp.Detail)
	assert.Equal(t, []string{badge.TextError}, f.badges.History("yt"))
}

func TestSendURL_ClipboardFallback(t *testing.T) {
	cfg := testConfig()
	cfg.ClipboardFallback = true
	var copied []string
	f := newFixture(t, cfg, automator.Failed(automator.StepSubmit, automator.DetailNoSubmit),
		WithClipboard(func(text string) error {
			copied = append(copied, text)
			return nil
		}))

	resp := f.coord.SendURL(context.Background(), sendURL("https://www.youtube.com/watch?v=abc"))

	assert.True(t, resp.OK)
	assert.Equal(t, messaging.ModeClipboard, resp.Mode)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=abc"}, copied)
	assert.Equal(t, []string{badge.TextError}, f.badges.History("yt"))
}

func TestSendURL_ClipboardErrorKeepsFailure(t *testing.T) {
	cfg := testConfig()
	cfg.ClipboardFallback = true
	f := newFixture(t, cfg, automator.Failed(automator.StepSubmit, automator.DetailNoSubmit),
		WithClipboard(func(string) error { return errors.New("no display") }))

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.False(t, resp.OK)
	assert.Equal(t, string(automator.ModeFailed), resp.Mode)
}

func TestSendURL_LimitSkipsClipboard(t *testing.T) {
	cfg := testConfig()
	cfg.ClipboardFallback = true
	copied := false
	f := newFixture(t, cfg, automator.LimitReached(50, 50),
		WithClipboard(func(string) error { copied = true; return nil }))

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.True(t, resp.LimitReached())
	assert.False(t, copied)
}

func TestSendURL_UsesExistingReceiver(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())
	var seen []messaging.Type
	f.router.Register("nb", messaging.ReceiverFunc(func(ctx context.Context, msg messaging.Message) (messaging.Response, error) {
		seen = append(seen, msg.Type)
		return messaging.FromOutcome(automator.Succeeded()), nil
	}))

	resp := f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.True(t, resp.OK)
	assert.Equal(t, []messaging.Type{messaging.TypePing, messaging.TypeAddSource}, seen)
	assert.Empty(t, f.auto.added())
}

func TestEnsureContent_ConcurrentCallsAttachOneHandler(t *testing.T) {
	rec := logging.NewRecorder()
	f := newFixture(t, testConfig(), automator.Succeeded(), WithLogger(rec))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.coord.ensureContent(context.Background(), "nb"))
		}()
	}
	wg.Wait()

	assert.True(t, f.router.Registered("nb"))
	assert.Equal(t, 1, rec.Count("content handler attached"))
}

func TestSendURL_BadgeClears(t *testing.T) {
	cfg := testConfig()
	cfg.Timeouts.BadgeDisplay = 10 * time.Millisecond
	f := newFixture(t, cfg, automator.Succeeded())

	f.coord.SendURL(context.Background(), sendURL("https://youtu.be/abc"))

	assert.Eventually(t, func() bool {
		_, ok := f.badges.Get("yt")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

const playlistPage = `<html><body>
<a id="video-title" href="/watch?v=aaa&list=PL1&index=1">One</a>
<a id="video-title" href="/watch?v=bbb&list=PL1&index=2">Two</a>
<a id="video-title" href="/watch?v=aaa&list=PL1&index=3">One again</a>
<a href="/channel/xyz">Channel</a>
</body></html>`

func TestStartPlaylist(t *testing.T) {
	var summary *batch.Summary
	f := newFixture(t, testConfig(), automator.Succeeded(),
		OnBatchDone(func(s *batch.Summary) { summary = s }))
	f.tabs["yt"] = browsertest.New("yt", playlistURL, playlistPage)

	resp := f.coord.StartPlaylist(context.Background(), messaging.Message{
		Type: messaging.TypeProcessPlaylist, TargetID: "nb", SourceID: "yt",
	})
	require.True(t, resp.OK)
	assert.Equal(t, messaging.ModePlaylistStarted, resp.Mode)
	assert.Equal(t, 2, resp.Count)

	f.coord.Wait()

	require.NotNil(t, summary)
	assert.Equal(t, batch.StatusDone, summary.Status)
	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=aaa",
		"https://www.youtube.com/watch?v=bbb",
	}, f.auto.added())
	assert.Equal(t, 1, f.auto.closed)
	assert.Equal(t, []string{"1/2", "2/2", badge.TextDone}, f.badges.History("yt"))
}

func TestStartPlaylist_NoVideos(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())
	f.tabs["yt"] = browsertest.New("yt", playlistURL, "<html><body><p>empty</p></body></html>")

	resp := f.coord.StartPlaylist(context.Background(), messaging.Message{
		Type: messaging.TypeProcessPlaylist, TargetID: "nb", SourceID: "yt",
	})

	assert.False(t, resp.OK)
	assert.Equal(t, DetailNoVideos, resp.Detail)
	f.coord.Wait()
	assert.Empty(t, f.auto.added())
}

func TestStartPlaylist_DestinationNotReady(t *testing.T) {
	var summary *batch.Summary
	f := newFixture(t, testConfig(), automator.Succeeded(),
		OnBatchDone(func(s *batch.Summary) { summary = s }))
	f.tabs["yt"] = browsertest.New("yt", playlistURL, playlistPage)
	f.target.SetURL(dashboardURL)
	f.auto.create = automator.Failed(automator.StepCreateNotebook, automator.DetailNoCreateButton)

	resp := f.coord.StartPlaylist(context.Background(), messaging.Message{
		Type: messaging.TypeProcessPlaylist, TargetID: "nb", SourceID: "yt",
	})
	require.True(t, resp.OK)
	f.coord.Wait()

	assert.Empty(t, f.auto.added())
	assert.Equal(t, []string{badge.TextError}, f.badges.History("yt"))
	require.NotNil(t, summary)
	assert.Equal(t, batch.StatusError, summary.Status)
	assert.Equal(t, 2, summary.Metrics.Skipped)
}

func TestHandle_ForwardsTabMessages(t *testing.T) {
	f := newFixture(t, testConfig(), automator.Succeeded())

	resp, err := f.coord.Handle(context.Background(), messaging.Message{Type: messaging.TypeCloseDialog, TargetID: "nb"})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 1, f.auto.closed)

	_, err = f.coord.Handle(context.Background(), messaging.Message{Type: messaging.TypePing, TargetID: "missing"})
	assert.True(t, errors.Is(err, browser.ErrTabNotFound))
}
