package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"webscout/internal/domain"
	"webscout/internal/infra/config"
)

func newSearxngBackend(t *testing.T, transport roundTripFunc) *SearxngBackend {
	t.Helper()
	b := NewSearxngBackend(config.Default(), newTestLogger())
	b.client = &http.Client{Transport: transport}
	b.retry.sleep = func(context.Context, time.Duration) error { return nil }
	return b
}

// searxngJSON builds a response body with n generated results.
func searxngJSON(n int) string {
	var sb strings.Builder
	sb.WriteString(`{"results":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"title":"r%d","url":"https://example.com/%d","content":"snippet %d"}`, i, i, i)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestSearxngBackendTrailingSlashTrimmed(t *testing.T) {
	cfg := config.Default()
	cfg.SearxngURL = "http://localhost:8080/"
	b := NewSearxngBackend(cfg, newTestLogger())
	if b.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", b.baseURL)
	}
}

func TestSearxngBackendRequestShape(t *testing.T) {
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Path; got != "/search" {
			t.Errorf("path = %q, want /search", got)
		}
		if got := req.URL.Query().Get("q"); got != "golang testing" {
			t.Errorf("q = %q, want %q", got, "golang testing")
		}
		if got := req.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if got := req.Header.Get("X-Forwarded-For"); got != "127.0.0.1" {
			t.Errorf("X-Forwarded-For = %q, want 127.0.0.1", got)
		}
		if got := req.Header.Get("X-Real-IP"); got != "127.0.0.1" {
			t.Errorf("X-Real-IP = %q, want 127.0.0.1", got)
		}
		if got := req.Header.Get("User-Agent"); !strings.Contains(got, "Chrome/120") {
			t.Errorf("User-Agent = %q, want fixed browser identity", got)
		}
		return jsonResponse(200, searxngJSON(1)), nil
	})

	items, err := b.Search(context.Background(), "golang testing", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Title != "r0" || items[0].URL != "https://example.com/0" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
}

func TestSearxngBackendClampsNumResults(t *testing.T) {
	tests := []struct {
		name       string
		numResults int
		available  int
		wantLen    int
	}{
		{"zero clamps to one", 0, 20, 1},
		{"negative clamps to one", -5, 20, 1},
		{"above ceiling clamps to ceiling", 1000, 60, config.Default().MaxNumResults},
		{"seven of twenty", 7, 20, 7},
		{"fewer hits than requested", 7, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(200, searxngJSON(tt.available)), nil
			})

			items, err := b.Search(context.Background(), "q", tt.numResults)
			if err != nil {
				t.Fatal(err)
			}
			if len(items) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(items), tt.wantLen)
			}
		})
	}
}

func TestSearxngBackendPreservesRanking(t *testing.T) {
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, searxngJSON(5)), nil
	})

	items, err := b.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	for i, it := range items {
		if want := fmt.Sprintf("r%d", i); it.Title != want {
			t.Errorf("items[%d].Title = %q, want %q", i, it.Title, want)
		}
	}
}

func TestSearxngBackendStatusErrorNotRetried(t *testing.T) {
	requests := 0
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		requests++
		return jsonResponse(429, `{"error":"rate limited"}`), nil
	})

	_, err := b.Search(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrHTTPStatus) {
		t.Fatalf("err = %v, want ErrHTTPStatus", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want status code included", err)
	}
}

func TestSearxngBackendMalformedJSONNotRetried(t *testing.T) {
	requests := 0
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		requests++
		return jsonResponse(200, `<html>not json</html>`), nil
	})

	_, err := b.Search(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestSearxngBackendRetriesTimeouts(t *testing.T) {
	requests := 0
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		requests++
		return nil, timeoutErr{}
	})

	_, err := b.Search(context.Background(), "q", 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if requests != config.Default().MaxRetries {
		t.Errorf("requests = %d, want %d", requests, config.Default().MaxRetries)
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("err = %v, want retries-exceeded message", err)
	}
}

func TestSearxngBackendMissingFieldsDefaultEmpty(t *testing.T) {
	b := newSearxngBackend(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"results":[{"url":"https://example.com"}]}`), nil
	})

	items, err := b.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].Title != "" || items[0].Content != "" {
		t.Errorf("missing fields should be empty strings, got %+v", items[0])
	}
}
