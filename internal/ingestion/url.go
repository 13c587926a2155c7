package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-screener/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page could not be fetched
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text could be extracted
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	Fetcher fetch.Fetcher  // defaults to a plain HTTP fetcher
	Render  fetch.Renderer // optional browser fallback for script-rendered pages
	Logger  *slog.Logger
}

// IngestFromURL fetches a job posting and returns its cleaned description
// text. Known job boards get platform-specific selectors. When a Renderer is
// configured and the plain fetch yields too little text, the page is rendered
// in a browser and extracted again.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.HTTPFetcher{}
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("fetching job description", slog.String("url", urlStr), slog.String("platform", string(platform)))

	result, err := fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	logger.Debug("extracted text", slog.Int("chars", len(text)))

	if opts.Render != nil && fetch.ShouldUseBrowser(text) {
		logger.Info("page text too short, rendering in browser",
			slog.Int("chars", len(text)), slog.Int("min", fetch.MinContentLength))
		rendered, renderErr := opts.Render(ctx, urlStr)
		switch {
		case renderErr != nil:
			logger.Warn("browser rendering failed, using fetched content", slog.Any("error", renderErr))
		default:
			if browserText, err := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); err == nil {
				text = browserText
			}
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}

	meta := NewMetadata(cleaned)
	meta.URL = urlStr
	meta.Format = "html"
	meta.Platform = string(platform)
	return cleaned, meta, nil
}
