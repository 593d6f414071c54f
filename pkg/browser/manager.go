package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// PlaywrightManager runs Chromium through playwright-go and tracks its tabs.
type PlaywrightManager struct {
	*registry

	mu          sync.Mutex
	opts        Options
	playwright  *playwright.Playwright
	browser     playwright.Browser // nil when running on a persistent profile
	context     playwright.BrowserContext
	initialized bool
}

// NewPlaywrightManager creates a new manager. Start must be called before
// opening tabs.
func NewPlaywrightManager(opts Options) *PlaywrightManager {
	opts.setDefaults()
	return &PlaywrightManager{
		registry: newRegistry(opts),
		opts:     opts,
	}
}

// Start installs the Playwright driver if needed, starts it and launches Chromium.
// A configured profile directory is opened as a persistent context so the
// NotebookLM session cookie is reused.
func (m *PlaywrightManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Driver output would interleave with the console reporter
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	viewport := &playwright.Size{
		Width:  m.opts.Viewport.Width,
		Height: m.opts.Viewport.Height,
	}

	if m.opts.ProfileDir != "" {
		bctx, err := pw.Chromium.LaunchPersistentContext(m.opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(m.opts.Headless),
			Viewport: viewport,
		})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch persistent context: %w", err)
		}
		m.context = bctx
	} else {
		browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(m.opts.Headless),
		})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
			Viewport: viewport,
		})
		if err != nil {
			browser.Close()
			_ = pw.Stop()
			return fmt.Errorf("failed to create context: %w", err)
		}
		m.browser = browser
		m.context = bctx
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// OpenTab opens a new page and navigates it to url unless url is empty.
func (m *PlaywrightManager) OpenTab(ctx context.Context, url string) (Tab, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not started")
	}
	if err := m.reserve(); err != nil {
		return nil, err
	}

	page, err := m.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(m.opts.Timeout)

	tab := newScriptTab(uuid.New().String()[:8], &playwrightPage{page: page})
	if url != "" {
		if err := tab.Navigate(ctx, url); err != nil {
			_ = page.Close()
			return nil, err
		}
	}

	m.add(tab)
	return tab, nil
}

// Shutdown closes all tabs and cleans up Playwright.
func (m *PlaywrightManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.closeAll()

	if !m.initialized {
		return nil
	}
	if m.context != nil {
		m.context.Close()
	}
	if m.browser != nil {
		m.browser.Close()
	}
	m.initialized = false

	if err := m.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// playwrightPage adapts a playwright.Page to pageEngine.
type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) evaluate(ctx context.Context, script string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if arg == nil {
		return p.page.Evaluate(script)
	}
	return p.page.Evaluate(script, arg)
}

func (p *playwrightPage) url(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *playwrightPage) navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitUntil := playwright.WaitUntilState("domcontentloaded")
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
	})
	return err
}

func (p *playwrightPage) close() error {
	return p.page.Close()
}
