// Package fetch retrieves job posting pages and reduces them to their visible text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; CareerCoach/1.0)"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 5 << 20

// baseNoiseSelectors are removed from every page before text extraction.
var baseNoiseSelectors = []string{
	"script", "style", "noscript", "header", "footer", "nav",
	".ad", ".advertisement", ".ads", ".sidebar", ".cookie-banner", ".popup",
}

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
// StatusCode is set when the server answered with a non-200 status.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the fetch failed because the deadline passed.
func (e *Error) Timeout() bool {
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Cause, &netErr) && netErr.Timeout()
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL, following redirects.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:        urlStr,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	return result, nil
}

// ExtractMainText parses HTML and returns the visible text of the main content.
// Noise elements are removed first; if no content selector matches, the body is used.
func ExtractMainText(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	main, err := mainSelection(html, contentSelectors, noiseSelectors)
	if err != nil {
		return "", err
	}
	return cleanWhitespace(main.Text()), nil
}

// MainHTML is like ExtractMainText but returns the inner HTML of the main content.
func MainHTML(html string, contentSelectors []string, noiseSelectors ...string) (string, error) {
	main, err := mainSelection(html, contentSelectors, noiseSelectors)
	if err != nil {
		return "", err
	}
	inner, err := main.Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return inner, nil
}

func mainSelection(html string, contentSelectors, noiseSelectors []string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(strings.Join(baseNoiseSelectors, ", ")).Remove()
	if len(noiseSelectors) > 0 {
		doc.Find(strings.Join(noiseSelectors, ", ")).Remove()
	}

	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			return selection.First(), nil
		}
	}
	return doc.Find("body"), nil
}

// JobPostingSelectors returns selectors optimized for job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		".job-content",
		"#job-description",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

// cleanWhitespace trims every line, splits runs of two or more spaces into
// separate lines, and drops empty lines.
func cleanWhitespace(text string) string {
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			if chunk = strings.TrimSpace(chunk); chunk != "" {
				cleaned = append(cleaned, chunk)
			}
		}
	}
	return strings.Join(cleaned, "\n")
}
