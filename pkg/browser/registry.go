package browser

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// registry tracks the open tabs of one browser with a tab limit and an
// idle timeout. Both engines embed it.
type registry struct {
	mu          sync.RWMutex
	tabs        map[string]*scriptTab
	maxTabs     int
	idleTimeout time.Duration
}

func newRegistry(opts Options) *registry {
	maxTabs := opts.MaxTabs
	if maxTabs == 0 {
		maxTabs = DefaultMaxTabs
	}
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = DefaultIdleTimeout
	}
	return &registry{
		tabs:        make(map[string]*scriptTab),
		maxTabs:     maxTabs,
		idleTimeout: idle,
	}
}

// reserve checks the tab limit before a new page is created.
func (r *registry) reserve() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.tabs) >= r.maxTabs {
		return fmt.Errorf("maximum number of tabs (%d) reached", r.maxTabs)
	}
	return nil
}

func (r *registry) add(tab *scriptTab) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs[tab.id] = tab
}

// Tab returns an open tab by id.
func (r *registry) Tab(id string) (Tab, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tab, exists := r.tabs[id]
	if !exists {
		return nil, fmt.Errorf("tab %q: %w", id, ErrTabNotFound)
	}
	return tab, nil
}

// ListTabs returns information about all open tabs.
func (r *registry) ListTabs() []TabInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TabInfo, 0, len(r.tabs))
	for _, tab := range r.tabs {
		infos = append(infos, tab.info(context.Background()))
	}
	return infos
}

// CloseTab closes and removes a tab.
func (r *registry) CloseTab(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tab, exists := r.tabs[id]
	if !exists {
		return fmt.Errorf("tab %q: %w", id, ErrTabNotFound)
	}

	_ = tab.page.close() // Ignore errors, continue cleanup
	delete(r.tabs, id)
	return nil
}

// CleanupIdleTabs closes tabs that have been idle for longer than the timeout.
func (r *registry) CleanupIdleTabs() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var errs []error
	for id, tab := range r.tabs {
		if now.Sub(tab.lastUsed()) <= r.idleTimeout {
			continue
		}
		if err := tab.page.close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.tabs, id)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during cleanup: %v", errs)
	}
	return nil
}

// closeAll closes every tab.
func (r *registry) closeAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, tab := range r.tabs {
		if err := tab.page.close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.tabs, id)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing tabs: %v", errs)
	}
	return nil
}

// SetMaxTabs sets the maximum number of concurrent tabs.
func (r *registry) SetMaxTabs(max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxTabs = max
}

// SetIdleTimeout sets the idle timeout duration.
func (r *registry) SetIdleTimeout(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idleTimeout = timeout
}
