package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the minimum extracted text length to consider an HTTP fetch
// successful. Shorter pages are likely JavaScript-rendered.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a headless render.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser returns true if the extracted text is too short to be a real posting.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Renderer returns fully rendered HTML for a URL.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Browser renders pages in headless Chrome. Chrome or Chromium must be installed.
type Browser struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Render navigates to url, waits for the page to settle and returns its HTML.
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	log.Debug("starting headless browser", zap.String("url", url))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Cookie banners hide the posting on some boards; a missing button is fine.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}
