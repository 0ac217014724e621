package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
	"github.com/dmitrymomot/mailsig/pkg/logger"
)

// RichWriter stores HTML with a plain-text alternative.
type RichWriter interface {
	WriteRich(ctx context.Context, html, text string) error
}

// LegacyWriter copies HTML through a temporary rendered selection and must
// remove that selection on every path.
type LegacyWriter interface {
	CopySelection(ctx context.Context, html string) error
}

// TextWriter stores plain text.
type TextWriter interface {
	WriteText(ctx context.Context, text string) error
}

// State is a position in the fallback chain.
type State int

const (
	Rich State = iota
	Legacy
	PlainText
	Failed
)

func (s State) String() string {
	switch s {
	case Rich:
		return "rich"
	case Legacy:
		return "legacy"
	case PlainText:
		return "plain_text"
	default:
		return "failed"
	}
}

// Exporter prepares and copies signature HTML.
type Exporter struct {
	resolver *imageproxy.Resolver
	rich     RichWriter
	legacy   LegacyWriter
	text     TextWriter
	logger   *slog.Logger
}

type Option func(*Exporter)

func WithRich(w RichWriter) Option     { return func(e *Exporter) { e.rich = w } }
func WithLegacy(w LegacyWriter) Option { return func(e *Exporter) { e.legacy = w } }
func WithText(w TextWriter) Option     { return func(e *Exporter) { e.text = w } }

func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(resolver *imageproxy.Resolver, opts ...Option) *Exporter {
	e := &Exporter{resolver: resolver, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process returns markup with remote images inlined. Relative and embedded
// references are left alone, as are images that fail to resolve.
func (e *Exporter) Process(ctx context.Context, markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("clipboard: parse html: %w", err)
	}

	var attrs []*html.Attribute
	var srcs []string
	for _, n := range nodes {
		collectImages(n, &attrs, &srcs)
	}

	if len(srcs) > 0 {
		resolved := e.resolver.ResolveAll(ctx, srcs)
		for i, a := range attrs {
			a.Val = resolved[i]
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("clipboard: render html: %w", err)
		}
	}
	return buf.String(), nil
}

func collectImages(n *html.Node, attrs *[]*html.Attribute, srcs *[]string) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i := range n.Attr {
			a := &n.Attr[i]
			if a.Namespace == "" && a.Key == "src" && imageproxy.IsAbsolute(a.Val) {
				*attrs = append(*attrs, a)
				*srcs = append(*srcs, a.Val)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectImages(c, attrs, srcs)
	}
}

// Copy processes markup and writes it through the first tier that succeeds.
// It reports false only when every tier failed.
func (e *Exporter) Copy(ctx context.Context, markup string) bool {
	_, ok := e.CopyState(ctx, markup)
	return ok
}

// CopyState is Copy that also reports which tier succeeded.
func (e *Exporter) CopyState(ctx context.Context, markup string) (State, bool) {
	processed, err := e.Process(ctx, markup)
	if err != nil {
		e.logger.WarnContext(ctx, "clipboard processing failed, copying original markup", logger.Error(err))
		processed = markup
	}
	// The plain-text alternative is the HTML source itself.
	text := processed

	for state := Rich; state < Failed; state++ {
		err := e.attempt(ctx, state, processed, text)
		if err == nil {
			e.logger.DebugContext(ctx, "signature copied", slog.String("tier", state.String()))
			return state, true
		}
		e.logger.WarnContext(ctx, "clipboard tier failed",
			slog.String("tier", state.String()),
			logger.Error(err),
		)
	}
	return Failed, false
}

func (e *Exporter) attempt(ctx context.Context, s State, markup, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard: %s writer panicked: %v", s, r)
		}
	}()

	switch s {
	case Rich:
		if e.rich == nil {
			return ErrUnavailable
		}
		return e.rich.WriteRich(ctx, markup, text)
	case Legacy:
		if e.legacy == nil {
			return ErrUnavailable
		}
		return e.legacy.CopySelection(ctx, markup)
	case PlainText:
		if e.text == nil {
			return ErrUnavailable
		}
		return e.text.WriteText(ctx, text)
	}
	return ErrUnavailable
}
