package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailsig/pkg/signature"
)

var (
	ErrEmptyID     = errors.New("templates: template id is empty")
	ErrDuplicateID = errors.New("templates: duplicate template id")
)

// Metadata describes a template in pickers and the JSON listing.
type Metadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Template renders one signature layout.
type Template interface {
	Metadata() Metadata
	// Render returns interactive markup for the live preview.
	Render(d signature.Data) templ.Component
	// HTML returns the email-safe fragment.
	HTML(d signature.Data) string
}

// Registry is an ordered, read-only set of templates.
type Registry struct {
	byID  map[string]Template
	order []Template
}

// NewRegistry keeps insertion order as display order.
func NewRegistry(ts ...Template) (*Registry, error) {
	r := &Registry{
		byID:  make(map[string]Template, len(ts)),
		order: make([]Template, 0, len(ts)),
	}
	for _, t := range ts {
		id := t.Metadata().ID
		if id == "" {
			return nil, ErrEmptyID
		}
		if _, ok := r.byID[id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		r.byID[id] = t
		r.order = append(r.order, t)
	}
	return r, nil
}

// Builtin returns the registry with every shipped template, default first.
func Builtin() *Registry {
	r, err := NewRegistry(Default{}, Banner{})
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) List() []Template {
	out := make([]Template, len(r.order))
	copy(out, r.order)
	return out
}

// Metadata returns the metadata of every template in display order.
func (r *Registry) Metadata() []Metadata {
	out := make([]Metadata, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, t.Metadata())
	}
	return out
}

// Get is an exact lookup. A miss is not an error.
func (r *Registry) Get(id string) (Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Default returns the first registered template, or the built-in default
// when the registry is empty.
func (r *Registry) Default() Template {
	if len(r.order) == 0 {
		return Default{}
	}
	return r.order[0]
}

// Lookup never returns nil: unknown ids fall back to Default.
func (r *Registry) Lookup(id string) Template {
	if t, ok := r.Get(id); ok {
		return t
	}
	return r.Default()
}

// ExportHTML renders the email-safe fragment with the template named id.
func (r *Registry) ExportHTML(id string, d signature.Data) string {
	return r.Lookup(id).HTML(d)
}

// RenderString renders a component into a string.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// component adapts a named html/template execution to templ.Component.
func component(name string, v view) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return interactive.ExecuteTemplate(w, name, v)
	})
}

// staticHTML executes a named email template. Execution fails only on a
// template bug; the error then lands in an HTML comment.
func staticHTML(name string, v view) string {
	var sb strings.Builder
	if err := email.ExecuteTemplate(&sb, name, v); err != nil {
		return "<!-- " + templ.EscapeString(err.Error()) + " -->"
	}
	return strings.TrimSpace(sb.String())
}
