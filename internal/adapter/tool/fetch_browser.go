package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"webscout/internal/domain"
	"webscout/internal/infra/config"
)

// BrowserFetcher retrieves pages through the shared headless browser so
// JavaScript-built content is present before extraction. Each fetch
// runs in its own tab which is always closed, success or not.
type BrowserFetcher struct {
	browser          pageOpener
	maxContentLength int
	renderTimeout    time.Duration
	retry            retrier
	logger           *slog.Logger
}

// NewBrowserFetcher creates the rendered-fetch strategy on top of a
// shared browser handle.
func NewBrowserFetcher(browser pageOpener, cfg *config.Config, logger *slog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		browser:          browser,
		maxContentLength: cfg.MaxContentLength,
		renderTimeout:    cfg.BrowserTimeout,
		retry:            newRetrier(cfg.MaxRetries, cfg.RetryDelay, browserRetryable),
		logger:           logger,
	}
}

// browserRetryable retries any render failure except a missing browser
// engine, which no amount of retrying will install.
func browserRetryable(err error) bool {
	return !errors.Is(err, domain.ErrMissingDependency)
}

func (f *BrowserFetcher) Method() string { return MethodRendered }

func (f *BrowserFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) domain.ScrapeOutcome {
	var out domain.ScrapeOutcome
	err := f.retry.do(ctx, func() error {
		o, err := f.fetchOnce(ctx, url, opts.WaitTime)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		f.logger.Debug("rendered fetch failed", "url", url, "error", err)
		return domain.ScrapeError(MethodRendered, err.Error())
	}

	f.logger.Debug("rendered fetch completed", "url", url, "length", out.Length, "truncated", out.Truncated)
	return out
}

func (f *BrowserFetcher) fetchOnce(ctx context.Context, url string, wait time.Duration) (domain.ScrapeOutcome, error) {
	page, err := f.browser.OpenPage(ctx)
	if err != nil {
		return domain.ScrapeOutcome{}, err
	}
	defer page.Close()

	rendered, title, err := page.Render(ctx, url, wait)
	if err != nil {
		return domain.ScrapeOutcome{}, f.classifyRenderErr(err, url)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return domain.ScrapeOutcome{}, fmt.Errorf("%w: parse rendered HTML: %v", domain.ErrInvalidResponse, err)
	}

	out := buildScrapeOutcome(MethodRendered, doc, f.maxContentLength)
	// The browser reports the live document title, which JavaScript may
	// have rewritten after load.
	if t := strings.TrimSpace(title); t != "" {
		out.Title = t
	}
	return out, nil
}

func (f *BrowserFetcher) classifyRenderErr(err error, url string) error {
	if isTimeoutErr(err) {
		return fmt.Errorf("%w after %s rendering %s", domain.ErrTimeout, f.renderTimeout, url)
	}
	return domain.WrapOp("render page", err)
}
