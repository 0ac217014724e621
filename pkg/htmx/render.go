package htmx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Renderable is the interface for OOB components.
// Compatible with templ.Component.
type Renderable interface {
	Render(ctx context.Context, w io.Writer) error
}

// Trigger is a client-side event fired from a response header.
// A nil Detail sends the bare event name.
type Trigger struct {
	Detail any
	Name   string
}

// Config holds HTMX render configuration.
type Config struct {
	OOBComponents []Renderable
	Triggers      []Trigger
	Retarget      string
	Reswap        SwapStrategy
}

// RenderOption configures HTMX render behavior.
type RenderOption func(*Config)

// NewConfig creates a Config from options.
func NewConfig(opts ...RenderOption) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ApplyHeaders sets HTMX headers on the response. It must run before WriteHeader.
func (c *Config) ApplyHeaders(w http.ResponseWriter) {
	if c == nil {
		return
	}

	h := w.Header()

	if c.Retarget != "" {
		h.Set(HeaderHXRetarget, c.Retarget)
	}
	if c.Reswap != "" {
		h.Set(HeaderHXReswap, string(c.Reswap))
	}
	if v := encodeTriggers(c.Triggers); v != "" {
		h.Set(HeaderHXTrigger, v)
	}
}

// encodeTriggers comma-joins bare names, or switches to the JSON object form
// as soon as one trigger carries a detail.
func encodeTriggers(triggers []Trigger) string {
	if len(triggers) == 0 {
		return ""
	}

	withDetail := false
	names := make([]string, 0, len(triggers))
	for _, t := range triggers {
		names = append(names, t.Name)
		if t.Detail != nil {
			withDetail = true
		}
	}
	if !withDetail {
		return strings.Join(names, ", ")
	}

	obj := make(map[string]any, len(triggers))
	for _, t := range triggers {
		obj[t.Name] = t.Detail
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return strings.Join(names, ", ")
	}
	return string(b)
}

// WithOOB appends out-of-band components to render after the main component.
// Components must include id and hx-swap-oob attributes.
func WithOOB(components ...Renderable) RenderOption {
	return func(c *Config) {
		c.OOBComponents = append(c.OOBComponents, components...)
	}
}

// WithRetarget sets the HX-Retarget header to change the target element.
func WithRetarget(selector string) RenderOption {
	return func(c *Config) {
		c.Retarget = selector
	}
}

// WithReswap sets the HX-Reswap header to change the swap strategy.
func WithReswap(strategy SwapStrategy) RenderOption {
	return func(c *Config) {
		c.Reswap = strategy
	}
}

// WithTrigger fires client-side events by name.
func WithTrigger(events ...string) RenderOption {
	return func(c *Config) {
		for _, e := range events {
			c.Triggers = append(c.Triggers, Trigger{Name: e})
		}
	}
}

// WithTriggerDetail fires an event carrying a JSON detail, e.g. the export
// filename for the current signature.
func WithTriggerDetail(event string, detail any) RenderOption {
	return func(c *Config) {
		c.Triggers = append(c.Triggers, Trigger{Name: event, Detail: detail})
	}
}
