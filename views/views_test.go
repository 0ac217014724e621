package views_test

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/views"
)

func TestStatic_ClipboardFallbackChain(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(views.Static(), "static/clipboard.js")
	require.NoError(t, err)
	src := string(data)

	for _, want := range []string{
		"navigator.clipboard.write(",
		`holder.contentEditable = "true"`,
		`document.execCommand("copy")`,
		"sel.removeAllRanges();\n      holder.remove();",
		"navigator.clipboard.writeText(",
		`return "failed"`,
	} {
		assert.Contains(t, src, want)
	}

	rich := strings.Index(src, `["rich", rich]`)
	legacy := strings.Index(src, `["legacy", legacy]`)
	plain := strings.Index(src, `["plain-text", plainText]`)
	require.True(t, rich >= 0 && legacy >= 0 && plain >= 0, "every tier is registered")
	assert.Less(t, rich, legacy)
	assert.Less(t, legacy, plain)

	app, err := fs.ReadFile(views.Static(), "static/app.js")
	require.NoError(t, err)
	assert.Contains(t, string(app), "window.mailsigClipboard.copy(")
	assert.NotContains(t, string(app), "navigator.clipboard")
}
