// Package browser drives a Chromium tab that is signed in to NotebookLM.
//
// The package hides the CDP engine behind two interfaces so the automation
// code never touches playwright-go or go-rod directly.
//
// # Architecture
//
// The package is built around three core concepts:
//
//  1. Tab: one page, addressed through element refs from its latest snapshot
//  2. Manager: launches the browser and tracks open tabs by a short id
//  3. Scripts: one snapshot script and one action script shared by both engines
//
// # Snapshots and refs
//
// Snapshot stamps every element with data-nlm-ref plus its measured box,
// computed style, live value and disabled state, then returns the page's
// outerHTML. Callers parse it with package dom and act on the refs they
// found. Refs are reassigned on every snapshot; an action on a ref that
// has since left the page fails with ErrStaleRef.
//
// # Engines
//
//   - playwright (default): playwright-go, persistent context when a profile
//     directory is configured
//   - rod: go-rod launcher over a local Chromium
//
// # Tab Lifecycle
//
//  1. Open: Manager.OpenTab creates a page and registers it
//  2. Use: snapshots and actions refresh the tab's idle timer
//  3. Close: Manager.CloseTab or Shutdown closes the page
//  4. Timeout: CleanupIdleTabs closes tabs idle past the configured timeout
//
// # Example Usage
//
//	mgr, err := browser.NewManager(cfg.Browser)
//	if err := mgr.Start(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Shutdown()
//
//	tab, err := mgr.OpenTab(ctx, cfg.Browser.NotebookURL)
//	html, err := tab.Snapshot(ctx)
//	doc, err := dom.Parse(html)
package browser
