package ports

import (
	"context"
	"time"
)

// Element is an opaque handle to a DOM element owned by a Page.
type Element interface {
	// Describe returns a short human-readable description used in logs.
	Describe() string
}

// Page is the narrow set of page capabilities the scrape pipeline needs.
// Implementations bound every call by the context deadline.
type Page interface {
	// Navigate loads url and waits for DOMContentLoaded.
	Navigate(ctx context.Context, url string) error
	// HideOverlays suppresses the elements matching selectors via inline style.
	HideOverlays(ctx context.Context, selectors []string) error
	// FindVisible returns the first visible element matching the first selector
	// that has one, or nil when none is visible right now.
	FindVisible(ctx context.Context, selectors []string) (Element, error)
	// SelectAll focuses el and selects its current content.
	SelectAll(ctx context.Context, el Element) error
	// TypeInto types text into el one character at a time, pausing delay between keys.
	TypeInto(ctx context.Context, el Element, text string, delay time.Duration) error
	// FindButtonByText returns a clickable element whose visible text equals one of
	// texts (case-insensitive), or nil if there is none.
	FindButtonByText(ctx context.Context, texts []string) (Element, error)
	// Click clicks el once.
	Click(ctx context.Context, el Element) error
	// SubmitForm submits the form enclosing el. It reports false when el has no form.
	SubmitForm(ctx context.Context, el Element) (bool, error)
	// PressEnter sends an Enter key press to the focused element.
	PressEnter(ctx context.Context) error
	// EvaluateText returns the visible text of the document body.
	EvaluateText(ctx context.Context) (string, error)
}

// Browser is one launched browser process.
type Browser interface {
	// NewPage opens a page configured for scraping (headers, blocking, timeouts).
	NewPage(ctx context.Context) (Page, error)
	// Close tears down the browser process and any helpers started for it.
	Close() error
}

// BrowserLauncher starts a fresh browser from an executable path.
type BrowserLauncher interface {
	Launch(ctx context.Context, executable string) (Browser, error)
}

// ExecutableResolver supplies a launchable browser binary path.
type ExecutableResolver interface {
	Resolve(ctx context.Context) (string, error)
}
