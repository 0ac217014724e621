package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/dmitrymomot/mailsig/pkg/logger"
)

var (
	ErrClosed    = errors.New("browser: closed")
	ErrNoBaseURL = errors.New("browser: document base URL must be absolute")
)

const DefaultOpenTimeout = 30 * time.Second

// Browser is a running Chrome instance. It is safe for concurrent use.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *slog.Logger
	openTimeout   time.Duration

	mu     sync.RWMutex
	closed bool
}

type config struct {
	execPath    string
	noSandbox   bool
	headful     bool
	openTimeout time.Duration
	logger      *slog.Logger
}

type Option func(*config)

// WithExecPath selects the Chrome binary instead of PATH lookup.
func WithExecPath(path string) Option {
	return func(c *config) { c.execPath = path }
}

// WithNoSandbox is required when running as root in containers.
func WithNoSandbox() Option {
	return func(c *config) { c.noSandbox = true }
}

// WithHeadful shows the window. A visible browser shares the OS clipboard,
// which the clipboard writers need.
func WithHeadful() Option {
	return func(c *config) { c.headful = true }
}

// WithOpenTimeout bounds how long a new tab may take to load its document.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.openTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// New starts Chrome. The process lives until Close; ctx only scopes logging.
func New(ctx context.Context, opts ...Option) (*Browser, error) {
	cfg := config{openTimeout: DefaultOpenTimeout, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&cfg)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("hide-scrollbars", true),
	)
	if cfg.headful {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if cfg.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run allocates the process and binds it to the context it is
	// given, so it must be the long-lived browser context.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	cfg.logger.InfoContext(ctx, "browser started", slog.Bool("headful", cfg.headful))
	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        cfg.logger,
		openTimeout:   cfg.openTimeout,
	}, nil
}

// Close shuts Chrome down. It is idempotent.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.browserCancel()
	b.allocCancel()
	return nil
}

// Healthcheck evaluates a trivial expression in a throwaway tab.
func (b *Browser) Healthcheck(ctx context.Context) error {
	tab, err := b.Open(ctx, Document("http://localhost/", ""))
	if err != nil {
		return err
	}
	defer tab.Close()

	var ok bool
	if err := tab.run(ctx, chromedp.Evaluate(`true`, &ok)); err != nil {
		return err
	}
	if !ok {
		return errors.New("browser: healthcheck evaluation failed")
	}
	return nil
}

// Open loads doc into a new tab. The tab must be closed by the caller.
func (b *Browser) Open(ctx context.Context, doc Doc) (*Tab, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	base, err := url.Parse(doc.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, ErrNoBaseURL
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	t := &Tab{
		ctx:    tabCtx,
		cancel: cancel,
		origin: base.Scheme + "://" + base.Host,
		logger: b.logger,
	}

	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: open tab: %w", err)
	}

	openCtx, stop := context.WithTimeout(ctx, b.openTimeout)
	defer stop()
	err = t.run(openCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, doc.HTML).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("browser: load document: %w", err)
	}
	return t, nil
}

// mergeCancel returns a child of cdpCtx that is also cancelled when ctx is.
// chromedp only runs actions on contexts derived from a tab context.
func mergeCancel(cdpCtx, ctx context.Context) (context.Context, context.CancelFunc) {
	child, cancel := context.WithCancel(cdpCtx)
	if d, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		child, cancelDeadline = context.WithDeadline(child, d)
		prev := cancel
		cancel = func() { cancelDeadline(); prev() }
	}
	stop := context.AfterFunc(ctx, cancel)
	return child, func() {
		stop()
		cancel()
	}
}
