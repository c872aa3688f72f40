package tool

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"webscout/internal/domain"
	"webscout/internal/infra/config"
)

// StaticFetcher retrieves pages with a plain HTTP GET. Redirects are
// followed; the response is decoded with charset detection, falling
// back to UTF-8.
type StaticFetcher struct {
	client           *http.Client
	maxContentLength int
	retry            retrier
	logger           *slog.Logger
}

// NewStaticFetcher creates the static-fetch strategy.
func NewStaticFetcher(cfg *config.Config, logger *slog.Logger) *StaticFetcher {
	return &StaticFetcher{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		maxContentLength: cfg.MaxContentLength,
		retry:            newRetrier(cfg.MaxRetries, cfg.RetryDelay, classifyToolError),
		logger:           logger,
	}
}

func (f *StaticFetcher) Method() string { return MethodStatic }

func (f *StaticFetcher) Fetch(ctx context.Context, url string, _ FetchOptions) domain.ScrapeOutcome {
	var out domain.ScrapeOutcome
	err := f.retry.do(ctx, func() error {
		o, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		f.logger.Debug("static fetch failed", "url", url, "error", err)
		return domain.ScrapeError(MethodStatic, err.Error())
	}

	f.logger.Debug("static fetch completed", "url", url, "length", out.Length, "truncated", out.Truncated)
	return out
}

func (f *StaticFetcher) fetchOnce(ctx context.Context, url string) (domain.ScrapeOutcome, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ScrapeOutcome{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ScrapeOutcome{}, classifyTransportErr(err, url, f.client.Timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return domain.ScrapeOutcome{}, fmt.Errorf("%w: %d", domain.ErrHTTPStatus, resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.ScrapeOutcome{}, fmt.Errorf("%w: detect encoding: %v", domain.ErrInvalidResponse, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return domain.ScrapeOutcome{}, fmt.Errorf("%w: parse HTML: %v", domain.ErrInvalidResponse, err)
	}

	return buildScrapeOutcome(MethodStatic, doc, f.maxContentLength), nil
}

// buildScrapeOutcome extracts title and normalized content from a
// parsed document and applies the content length limit.
func buildScrapeOutcome(method string, doc *goquery.Document, maxContentLength int) domain.ScrapeOutcome {
	title := strings.TrimSpace(doc.Find("title").First().Text())

	content, originalLength, truncated := truncateContent(cleanDocument(doc), maxContentLength)

	return domain.ScrapeOutcome{
		Status:         domain.StatusSuccess,
		Method:         method,
		Title:          title,
		Content:        content,
		Length:         utf8.RuneCountInString(content),
		OriginalLength: originalLength,
		Truncated:      truncated,
	}
}
