package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"go.uber.org/zap"

	"github.com/victorzhu443/firstplay-backend/internal/fetch"
)

// ErrNoJobText is returned when a fetched page yields no visible text.
var ErrNoJobText = errors.New("could not extract any text from the job posting page")

// JobPage is a fetched job posting reduced to text.
type JobPage struct {
	URL      string
	HTML     string
	Text     string
	Platform fetch.Platform
	Rendered bool
}

// ExtractJobText returns the visible text of a job posting. The main content is
// converted to Markdown so headings and bullet lists keep their shape; plain
// text extraction is the fallback when conversion yields nothing.
func ExtractJobText(html string, platform fetch.Platform) (string, error) {
	content := fetch.PlatformContentSelectors(platform)
	noise := fetch.PlatformNoiseSelectors(platform)

	mainHTML, err := fetch.MainHTML(html, content, noise...)
	if err != nil {
		return "", err
	}
	if md, err := htmltomarkdown.ConvertString(mainHTML); err == nil {
		if text := CleanText(md); text != "" {
			return text, nil
		}
	}

	text, err := fetch.ExtractMainText(html, content, noise...)
	if err != nil {
		return "", err
	}
	return CleanText(text), nil
}

// JobFetcher downloads job postings and extracts their text.
type JobFetcher struct {
	Options *fetch.Options
	// Renderer is used when the plain fetch yields too little text. Nil disables the fallback.
	Renderer fetch.Renderer
	Logger   *zap.Logger
}

// Fetch retrieves urlStr and returns its extracted text. ErrNoJobText is returned
// when the page has no visible text.
func (f *JobFetcher) Fetch(ctx context.Context, urlStr string) (*JobPage, error) {
	log := f.Logger
	if log == nil {
		log = zap.NewNop()
	}

	platform := fetch.DetectPlatform(urlStr)
	log = log.With(zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, f.Options)
	if err != nil {
		return nil, err
	}
	log.Debug("fetched job page", zap.Int("bytes", len(result.HTML)))

	page := &JobPage{URL: urlStr, HTML: result.HTML, Platform: platform}
	page.Text, err = ExtractJobText(result.HTML, platform)
	if err != nil {
		return nil, fmt.Errorf("content extraction failed: %w", err)
	}

	if f.Renderer != nil && fetch.ShouldUseBrowser(page.Text) {
		log.Info("content too short, rendering in browser", zap.Int("chars", len(page.Text)))
		if rendered, rerr := f.Renderer.Render(ctx, urlStr); rerr != nil {
			log.Warn("browser rendering failed, keeping HTTP content", zap.Error(rerr))
		} else if text, xerr := ExtractJobText(rendered, platform); xerr == nil && len(text) > len(page.Text) {
			page.HTML, page.Text, page.Rendered = rendered, text, true
		}
	}

	if strings.TrimSpace(page.Text) == "" {
		return nil, ErrNoJobText
	}
	return page, nil
}
