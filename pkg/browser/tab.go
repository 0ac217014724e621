package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

var (
	ErrNoElement     = errors.New("browser: element not found")
	ErrCopyRejected  = errors.New("browser: copy command rejected")
	ErrClipboardDeny = errors.New("browser: clipboard write denied")
)

// Tab is one loaded document. Close releases the underlying target.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	origin string
	logger *slog.Logger
}

func (t *Tab) Close() { t.cancel() }

// Origin is the scheme and host of the document base URL.
func (t *Tab) Origin() string { return t.origin }

func (t *Tab) run(ctx context.Context, actions ...chromedp.Action) error {
	rctx, stop := mergeCancel(t.ctx, ctx)
	defer stop()

	err := chromedp.Run(rctx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// js quotes v as a JavaScript literal.
func js(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func (t *Tab) Attached(ctx context.Context, selector string) (bool, error) {
	var ok bool
	expr := fmt.Sprintf(`(() => { const el = document.querySelector(%s); return !!el && el.isConnected; })()`, js(selector))
	if err := t.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

func (t *Tab) Images(ctx context.Context, selector string) ([]string, error) {
	var srcs []string
	expr := fmt.Sprintf(`(() => {
		const root = document.querySelector(%s);
		if (!root) return [];
		return Array.from(root.querySelectorAll("img")).map(img => img.src || "");
	})()`, js(selector))
	if err := t.run(ctx, chromedp.Evaluate(expr, &srcs)); err != nil {
		return nil, err
	}
	return srcs, nil
}

func (t *Tab) ReplaceImage(ctx context.Context, selector string, index int, src string) error {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const root = document.querySelector(%s);
		const img = root && root.querySelectorAll("img")[%d];
		if (!img) return false;
		img.src = %s;
		return true;
	})()`, js(selector), index, js(src))
	if err := t.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return ErrNoElement
	}
	return nil
}

// WaitImages resolves once every image under selector has loaded or failed.
func (t *Tab) WaitImages(ctx context.Context, selector string) error {
	var done bool
	expr := fmt.Sprintf(`(() => {
		const root = document.querySelector(%s);
		const imgs = root ? Array.from(root.querySelectorAll("img")) : [];
		return Promise.all(imgs.map(img => img.complete ? null : new Promise(resolve => {
			img.addEventListener("load", resolve, { once: true });
			img.addEventListener("error", resolve, { once: true });
		}))).then(() => true);
	})()`, js(selector))
	return t.run(ctx, chromedp.Evaluate(expr, &done, awaitPromise))
}

// Capture screenshots the element at pixelRatio over an opaque bg.
func (t *Tab) Capture(ctx context.Context, selector string, pixelRatio float64, bg color.Color) ([]byte, error) {
	r, g, b, a := bg.RGBA()
	rgba := &cdp.RGBA{R: int64(r >> 8), G: int64(g >> 8), B: int64(b >> 8), A: float64(a>>8) / 255}

	var buf []byte
	err := t.run(ctx,
		emulation.SetDefaultBackgroundColorOverride().WithColor(rgba),
		chromedp.ScreenshotScale(selector, pixelRatio, &buf, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteRich puts html and its plain-text alternative on the clipboard
// through the async Clipboard API.
func (t *Tab) WriteRich(ctx context.Context, html, text string) error {
	var ok bool
	expr := fmt.Sprintf(`(async () => {
		if (!navigator.clipboard || typeof ClipboardItem === "undefined") return false;
		await navigator.clipboard.write([new ClipboardItem({
			"text/html": new Blob([%s], { type: "text/html" }),
			"text/plain": new Blob([%s], { type: "text/plain" }),
		})]);
		return true;
	})()`, js(html), js(text))

	perms := []browser.PermissionType{
		browser.PermissionTypeClipboardReadWrite,
		browser.PermissionTypeClipboardSanitizedWrite,
	}
	grant := chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		if err := browser.GrantPermissions(perms).Do(cdp.WithExecutor(ctx, c.Browser)); err != nil {
			t.logger.DebugContext(ctx, "clipboard permission not granted", slog.String("error", err.Error()))
		}
		return nil
	})
	err := t.run(ctx, grant, chromedp.Evaluate(expr, &ok, awaitPromise))
	if err != nil {
		return err
	}
	if !ok {
		return ErrClipboardDeny
	}
	return nil
}

// CopySelection copies html as a rendered selection through
// execCommand("copy"). The temporary container and the selection are removed
// whether or not the copy succeeds.
func (t *Tab) CopySelection(ctx context.Context, html string) error {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const holder = document.createElement("div");
		holder.contentEditable = "true";
		holder.style.position = "fixed";
		holder.style.left = "-9999px";
		holder.style.top = "0";
		holder.innerHTML = %s;
		document.body.appendChild(holder);
		const sel = window.getSelection();
		try {
			const range = document.createRange();
			range.selectNodeContents(holder);
			sel.removeAllRanges();
			sel.addRange(range);
			return document.execCommand("copy");
		} finally {
			sel.removeAllRanges();
			holder.remove();
		}
	})()`, js(html))
	if err := t.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return ErrCopyRejected
	}
	t.logger.DebugContext(ctx, "copied selection", slog.Int("bytes", len(html)))
	return nil
}
