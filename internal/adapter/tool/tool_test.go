package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"webscout/internal/domain"
)

func newTestLogger() *slog.Logger { return slog.Default() }

// roundTripFunc lets a test stand in for an HTTP transport.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

// timeoutErr satisfies net.Error with Timeout() == true.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

// --- Registry tests ---

type mockTool struct {
	name string
}

func (m *mockTool) Name() string        { return m.name }
func (m *mockTool) Description() string { return "mock" }
func (m *mockTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: m.name, Parameters: json.RawMessage(`{"type":"object"}`)}
}
func (m *mockTool) Execute(context.Context, json.RawMessage) (*domain.ToolResult, error) {
	return &domain.ToolResult{Content: "ok"}, nil
}

func TestRegistryBasic(t *testing.T) {
	reg := NewRegistry(nil)
	if err := reg.Register(&mockTool{name: "test"}); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Get("test")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "test" {
		t.Errorf("Name = %q, want %q", got.Name(), "test")
	}

	if n := len(reg.List()); n != 1 {
		t.Errorf("List len = %d, want 1", n)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry(nil)
	if err := reg.Register(&mockTool{name: "dup"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&mockTool{name: "dup"}); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewRegistry(nil)
	if _, err := reg.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestRegistryWrapsWithSchemaValidation(t *testing.T) {
	reg := NewRegistry(newTestLogger())
	if err := reg.Register(&mockTool{name: "wrapped"}); err != nil {
		t.Fatal(err)
	}

	got, err := reg.Get("wrapped")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*SchemaValidatingTool); !ok {
		t.Errorf("expected tool wrapped with schema validation, got %T", got)
	}
}

// --- Execute middleware tests ---

func TestExecuteInvalidParams(t *testing.T) {
	res, err := Execute(context.Background(), "test_tool", newTestLogger(), json.RawMessage(`{not json`),
		func(ctx context.Context, span trace.Span, p struct{}) (any, error) {
			t.Error("handler should not run on bad params")
			return nil, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected error result")
	}
	if !strings.Contains(res.Content, "invalid params") {
		t.Errorf("Content = %q, want invalid params message", res.Content)
	}
}

func TestExecuteHandlerError(t *testing.T) {
	res, err := Execute(context.Background(), "test_tool", newTestLogger(), json.RawMessage(`{}`),
		func(ctx context.Context, span trace.Span, p struct{}) (any, error) {
			return nil, fmt.Errorf("%w after 10s", domain.ErrTimeout)
		})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected error result")
	}
	if !res.IsRetryable {
		t.Error("timeout should be marked retryable")
	}
}

func TestExecuteMarshalsValue(t *testing.T) {
	type payload struct {
		Answer int `json:"answer"`
	}
	res, err := Execute(context.Background(), "test_tool", newTestLogger(), json.RawMessage(`{}`),
		func(ctx context.Context, span trace.Span, p struct{}) (any, error) {
			return payload{Answer: 42}, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Content)
	}
	if !strings.Contains(res.Content, `"answer": 42`) {
		t.Errorf("Content = %q, want indented JSON", res.Content)
	}
}

func TestExecutePassesStringThrough(t *testing.T) {
	res, err := Execute(context.Background(), "test_tool", newTestLogger(), json.RawMessage(`{}`),
		func(ctx context.Context, span trace.Span, p struct{}) (any, error) {
			return "plain text", nil
		})
	if err != nil {
		t.Fatal(err)
	}
	if res.Content != "plain text" {
		t.Errorf("Content = %q, want %q", res.Content, "plain text")
	}
}

func TestExecuteIndentsBatchOutcomes(t *testing.T) {
	res, err := Execute(context.Background(), "test_tool", newTestLogger(), json.RawMessage(`{}`),
		func(ctx context.Context, span trace.Span, p struct{}) (any, error) {
			batch := domain.NewBatchOutcomes()
			batch.Set("first", domain.SearchError("boom"))
			return batch, nil
		})
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(res.Content), &decoded); err != nil {
		t.Fatalf("content is not valid JSON: %v\n%s", err, res.Content)
	}
	if _, ok := decoded["first"]; !ok {
		t.Errorf("missing batch key in output: %s", res.Content)
	}
}

// --- Validation helpers ---

func TestRequireField(t *testing.T) {
	if err := RequireField("url", ""); err == nil {
		t.Error("expected error for empty value")
	}
	if err := RequireField("url", "https://example.com"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateEnum(t *testing.T) {
	if err := ValidateEnum("method", "static", "static", "rendered"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEnum("method", "", "static", "rendered"); err != nil {
		t.Errorf("empty value should be allowed: %v", err)
	}
	err := ValidateEnum("method", "carrier-pigeon", "static", "rendered")
	if err == nil {
		t.Fatal("expected error for unknown value")
	}
	if !strings.Contains(err.Error(), "static, rendered") {
		t.Errorf("error = %q, want allowed values listed", err)
	}
}

// --- Error classification sanity check shared by other test files ---

func TestClassifyToolErrorNil(t *testing.T) {
	if classifyToolError(nil) {
		t.Error("nil must not be retryable")
	}
	if classifyToolError(errors.New("some other failure")) {
		t.Error("unknown errors must not be retryable")
	}
}
