package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"webscout/internal/domain"
	"webscout/internal/infra/config"
)

// pageSession is one ephemeral browser tab. Render navigates, waits for
// late dynamic content, and reads back the rendered document. Close
// releases the tab and must be called on every exit path.
type pageSession interface {
	Render(ctx context.Context, url string, wait time.Duration) (html string, title string, err error)
	Close()
}

// pageOpener hands out page sessions from a shared browser handle.
type pageOpener interface {
	OpenPage(ctx context.Context) (pageSession, error)
}

// BrowserManager owns the single shared headless-browser handle. The
// browser is launched lazily on the first OpenPage, revalidated on
// every acquisition, and relaunched transparently if it has died.
// All state transitions are mutex-serialized so concurrent tool calls
// cannot race start/acquire/close.
type BrowserManager struct {
	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	logger        *slog.Logger
}

// NewBrowserManager creates the manager without starting a browser.
func NewBrowserManager(cfg *config.Config, logger *slog.Logger) *BrowserManager {
	return &BrowserManager{
		timeout: cfg.BrowserTimeout,
		logger:  logger,
	}
}

// OpenPage returns a fresh tab on the shared browser, starting or
// restarting the browser first if needed.
func (m *BrowserManager) OpenPage(ctx context.Context) (pageSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureStartedLocked(); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx)
	return &chromedpPage{ctx: tabCtx, cancel: tabCancel, timeout: m.timeout}, nil
}

// ensureStartedLocked launches the browser if it is not running or its
// handle has disconnected. Caller must hold mu.
func (m *BrowserManager) ensureStartedLocked() error {
	if m.browserCtx != nil && m.browserCtx.Err() == nil {
		return nil
	}

	// Discard a dead handle before relaunching.
	m.closeLocked()

	opts := make([]chromedp.ExecAllocatorOption, len(chromedp.DefaultExecAllocatorOptions))
	copy(opts, chromedp.DefaultExecAllocatorOptions[:])
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(config.UserAgent),
	)

	var allocCtx context.Context
	allocCtx, m.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	m.browserCtx, m.browserCancel = chromedp.NewContext(allocCtx)

	// Verify the browser actually comes up. The empty Run binds the CDP
	// session to browserCtx itself; wrapping it in a timeout-derived
	// context would kill the session as soon as that context is
	// cancelled, so the deadline is enforced from outside instead.
	startDone := make(chan error, 1)
	go func() { startDone <- chromedp.Run(m.browserCtx) }()
	select {
	case err := <-startDone:
		if err != nil {
			m.closeLocked()
			return classifyLaunchErr(err)
		}
	case <-time.After(m.timeout):
		m.closeLocked()
		return fmt.Errorf("%w: browser start after %s", domain.ErrTimeout, m.timeout)
	}

	m.logger.Info("headless browser started")
	return nil
}

// Close releases the browser instance and its allocator. Idempotent,
// best-effort: safe to call when nothing was ever started, and never
// surfaces teardown faults.
func (m *BrowserManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *BrowserManager) closeLocked() {
	if m.browserCancel != nil {
		m.browserCancel()
		m.browserCancel = nil
		m.logger.Info("headless browser closed")
	}
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
	}
	m.browserCtx = nil
}

// classifyLaunchErr distinguishes a missing rendering engine (fatal,
// never retried) from transient launch failures.
func classifyLaunchErr(err error) error {
	if errors.Is(err, exec.ErrNotFound) ||
		strings.Contains(err.Error(), "executable file not found") {
		return fmt.Errorf("%w: install Chrome or Chromium to use the rendered method (%v)",
			domain.ErrMissingDependency, err)
	}
	return domain.WrapOp("start browser", err)
}

// chromedpPage is a pageSession backed by a chromedp tab context.
type chromedpPage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func (p *chromedpPage) Render(ctx context.Context, url string, wait time.Duration) (string, string, error) {
	// One Run binds the tab's CDP session and performs the whole fetch,
	// so the session never outlives a cancelled sub-context. The wait
	// for late dynamic content happens inside the run, so it is added
	// to the navigation budget.
	tctx, cancel := renderContext(ctx, p.ctx, p.timeout+wait)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if wait > 0 {
		actions = append(actions, chromedp.Sleep(wait))
	}

	var title, html string
	actions = append(actions,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(tctx, actions...); err != nil {
		return "", "", err
	}
	return html, title, nil
}

func (p *chromedpPage) Close() { p.cancel() }

// renderContext bounds one render by budget. The returned context
// descends from the tab context (chromedp needs the tab's CDP session
// in the value chain) but is also cancelled when the caller's context
// is, so an MCP-level cancellation interrupts an in-flight render.
func renderContext(caller, tab context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(tab, budget)
	stop := context.AfterFunc(caller, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}
