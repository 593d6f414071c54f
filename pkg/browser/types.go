package browser

import (
	"fmt"
	"time"

	"github.com/shiromatz/yt-to-notebooklm/pkg/config"
)

// Options configures a browser launch.
type Options struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// ProfileDir is a persistent user data directory. Empty means a
	// throwaway profile, which will not be signed in to NotebookLM.
	ProfileDir string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for engine operations (in milliseconds)
	Timeout float64

	// MaxTabs limits concurrently open tabs
	MaxTabs int

	// IdleTimeout closes tabs unused for this long on CleanupIdleTabs
	IdleTimeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for browser launches.
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultMaxTabs        = 5
	DefaultIdleTimeout    = 5 * time.Minute
)

// OptionsFromConfig converts the browser section of the configuration.
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	opts := Options{
		Headless:    cfg.Headless,
		ProfileDir:  cfg.ProfileDir,
		MaxTabs:     cfg.MaxTabs,
		IdleTimeout: cfg.IdleTimeout,
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts.Viewport = &Viewport{Width: cfg.Width, Height: cfg.Height}
	}
	return opts
}

func (o *Options) setDefaults() {
	if o.Viewport == nil {
		o.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
}

// NewManager returns the Manager for the configured engine. The browser
// is not launched until Start is called.
func NewManager(cfg config.BrowserConfig) (Manager, error) {
	opts := OptionsFromConfig(cfg)
	switch cfg.Engine {
	case config.EnginePlaywright, "":
		return NewPlaywrightManager(opts), nil
	case config.EngineRod:
		return NewRodManager(opts), nil
	default:
		return nil, fmt.Errorf("unsupported browser engine: %s", cfg.Engine)
	}
}
