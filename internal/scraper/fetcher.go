package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/goldyhq/goldy/internal/browser"
)

// PlaywrightFetcher renders dealer pages in an isolated browser context per
// fetch. The context is closed on every exit path: success, selector
// timeout, or navigation failure.
type PlaywrightFetcher struct {
	browser         *browser.Browser
	navTimeout      time.Duration
	selectorTimeout time.Duration
	logger          *slog.Logger
}

func NewPlaywrightFetcher(b *browser.Browser, navTimeout, selectorTimeout time.Duration, logger *slog.Logger) *PlaywrightFetcher {
	if navTimeout == 0 {
		navTimeout = 30 * time.Second
	}
	if selectorTimeout == 0 {
		selectorTimeout = 10 * time.Second
	}

	return &PlaywrightFetcher{
		browser:         b,
		navTimeout:      navTimeout,
		selectorTimeout: selectorTimeout,
		logger:          logger.With("component", "fetcher"),
	}
}

// Fetch navigates to url with a network-idle wait condition and returns the
// fully rendered markup. When waitForSelector is non-empty the fetch also
// waits, bounded, for that element to appear before capturing content.
// Playwright drives its own timeouts, so ctx is only consulted up front.
func (f *PlaywrightFetcher) Fetch(ctx context.Context, url, waitForSelector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bctx, err := f.browser.NewContext()
	if err != nil {
		f.logger.Error("failed to open browser context", "url", url, "error", err)
		return "", fmt.Errorf("failed to open browser context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		f.logger.Error("failed to create page", "url", url, "error", err)
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(f.navTimeout.Milliseconds())),
	})
	if err != nil {
		f.logger.Warn("navigation failed", "url", url, "error", err)
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if waitForSelector != "" {
		err = page.Locator(waitForSelector).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(float64(f.selectorTimeout.Milliseconds())),
		})
		if err != nil {
			f.logger.Warn("selector did not appear",
				"url", url,
				"selector", waitForSelector,
				"error", err)
			return "", fmt.Errorf("selector %q did not appear: %w", waitForSelector, err)
		}
	}

	content, err := page.Content()
	if err != nil {
		f.logger.Warn("failed to capture page content", "url", url, "error", err)
		return "", fmt.Errorf("failed to capture page content: %w", err)
	}

	return content, nil
}
