package book2pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Session is a remote browser shared by one run. Pages are used strictly one
// after another.
type Session interface {
	// NewPage opens a blank page whose remote operations are bound to ctx.
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one browser tab.
type Page interface {
	Navigate(address string) error
	WaitLoad() error
	HTML() (string, error)
	// Eval runs a JavaScript function expression, awaiting a returned
	// promise, and returns its JSON-encoded result.
	Eval(js string) (json.RawMessage, error)
	SetContent(html string) error
	PDF(opts PrintOptions) ([]byte, error)
	Close() error
}

// SessionFactory opens a Session.
type SessionFactory func(ctx context.Context) (Session, error)

// evalJSON evaluates js and decodes its result into v.
func evalJSON(page Page, js string, v any) error {
	raw, err := page.Eval(js)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEvaluate, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeResult, err)
	}
	return nil
}

// settle waits d or until ctx is done.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withTimeout bounds ctx by d when d is positive; zero means unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// openPage creates a page, navigates to address and waits for the load event.
// The caller closes the returned page.
func openPage(ctx context.Context, sess Session, address string) (Page, error) {
	page, err := sess.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageCreate, err)
	}
	if err := page.Navigate(address); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrNavigate, address, err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrPageLoad, address, err)
	}
	return page, nil
}
