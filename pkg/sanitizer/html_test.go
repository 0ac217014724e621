package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailsig/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name", input: "Jane Doe", want: "Jane Doe"},
		{name: "empty", input: "", want: ""},
		{name: "script dropped with its body", input: `Jane<script>alert('xss')</script>`, want: "Jane"},
		{name: "formatting tags", input: `<b>Head</b> of <i>Growth</i>`, want: "Head of Growth"},
		{name: "event handler element", input: `<img src=x onerror="alert(1)">CTO`, want: "CTO"},
		{name: "javascript link keeps text", input: `<a href="javascript:alert(1)">VP Sales</a>`, want: "VP Sales"},
		{name: "style element dropped", input: `<style>body{display:none}</style>Jane`, want: "Jane"},
		{name: "entities unescaped", input: "Tom &amp; Jerry", want: "Tom & Jerry"},
		{name: "ampersand survives", input: "R&D Lead", want: "R&D Lead"},
		{name: "angle bracket text", input: "5 < 6", want: "5 < 6"},
		{name: "surrounding space trimmed", input: "  <p> +1 555 0100 </p> ", want: "+1 555 0100"},
		{name: "unicode", input: "<span>Zoë Ångström</span>", want: "Zoë Ångström"},
		{name: "nested", input: `<div><p>nested <span>content</span></p></div>`, want: "nested content"},
		{name: "escaped tag", input: "a &lt;b&gt; c", want: "a  c"},
		{name: "double escaped tag", input: "Jane &amp;lt;script&amp;gt;x&amp;lt;/script&amp;gt;", want: "Jane"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sanitizer.StripHTML(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, sanitizer.StripHTML(got), "stripping is idempotent")
		})
	}
}

func TestStripHTML_Concurrent(t *testing.T) {
	t.Parallel()

	done := make(chan string, 8)
	for range 8 {
		go func() { done <- sanitizer.StripHTML("<b>Jane</b>") }()
	}
	for range 8 {
		assert.Equal(t, "Jane", <-done)
	}
}
