// Package executor runs test cases against a live browser session.
package executor

import (
	"context"
	"errors"
)

// ErrSession is returned when the browser session cannot be opened or the
// login sequence fails. Every case of the batch is then marked failed.
var ErrSession = errors.New("browser session failed")

// ErrPageFault wraps a panic raised by the page while a case or the login
// sequence was running.
var ErrPageFault = errors.New("page fault")

// Page is one browser tab. Implementations must tolerate Close being the
// last call after any error.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	// ClickText clicks the first element matching tag whose visible text
	// contains text.
	ClickText(ctx context.Context, tag, text string) error
	// WaitReady blocks until the page has settled after an interaction.
	WaitReady(ctx context.Context) error
	// BodyText returns the rendered text of the document body.
	BodyText(ctx context.Context) (string, error)
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Driver opens browser pages.
type Driver interface {
	Open(ctx context.Context) (Page, error)
}
