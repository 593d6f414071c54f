package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// RodManager runs Chromium through go-rod and tracks its tabs.
type RodManager struct {
	*registry

	mu       sync.Mutex
	opts     Options
	launcher *launcher.Launcher
	rod      *rod.Browser
}

// NewRodManager creates a new manager. Start must be called before opening tabs.
func NewRodManager(opts Options) *RodManager {
	opts.setDefaults()
	return &RodManager{
		registry: newRegistry(opts),
		opts:     opts,
	}
}

// Start launches Chromium and connects to it over CDP.
func (m *RodManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rod != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l := launcher.New().
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", fmt.Sprintf("%d,%d", m.opts.Viewport.Width, m.opts.Viewport.Height)).
		Headless(m.opts.Headless)

	if m.opts.ProfileDir != "" {
		l = l.UserDataDir(m.opts.ProfileDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	m.launcher = l
	m.rod = b
	return nil
}

// OpenTab opens a new page at url ("about:blank" when empty).
func (m *RodManager) OpenTab(ctx context.Context, url string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rod == nil {
		return nil, fmt.Errorf("browser manager not started")
	}
	if err := m.reserve(); err != nil {
		return nil, err
	}

	if url == "" {
		url = "about:blank"
	}
	page, err := m.rod.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.opts.Viewport.Width,
		Height:            m.opts.Viewport.Height,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	rp := &rodPage{page: page, timeout: time.Duration(m.opts.Timeout) * time.Millisecond}
	if err := rp.waitLoad(ctx); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("page load failed: %w", err)
	}

	tab := newScriptTab(uuid.New().String()[:8], rp)
	m.add(tab)
	return tab, nil
}

// Shutdown closes every tab and the browser.
func (m *RodManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.closeAll()

	if m.rod == nil {
		return nil
	}
	err := m.rod.Close()
	m.rod = nil

	// Remove the temporary profile; a configured profile is kept
	if m.launcher != nil && m.opts.ProfileDir == "" {
		m.launcher.Cleanup()
	}
	m.launcher = nil

	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// rodPage adapts a rod.Page to pageEngine.
type rodPage struct {
	page    *rod.Page
	timeout time.Duration
}

// bind scopes the page to ctx and the default operation timeout.
func (p *rodPage) bind(ctx context.Context) *rod.Page {
	return p.page.Context(ctx).Timeout(p.timeout)
}

func (p *rodPage) evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error) {
	var (
		res *proto.RuntimeRemoteObject
		err error
	)
	if arg == nil {
		res, err = p.bind(ctx).Eval(script)
	} else {
		res, err = p.bind(ctx).Eval(script, arg)
	}
	if err != nil {
		return nil, err
	}
	return res.Value.Val(), nil
}

func (p *rodPage) url(ctx context.Context) (string, error) {
	info, err := p.bind(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) navigate(ctx context.Context, url string) error {
	if err := p.bind(ctx).Navigate(url); err != nil {
		return err
	}
	return p.waitLoad(ctx)
}

func (p *rodPage) waitLoad(ctx context.Context) error {
	return p.bind(ctx).WaitLoad()
}

func (p *rodPage) close() error {
	return p.page.Close()
}
