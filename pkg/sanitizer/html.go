// Package sanitizer removes markup from user-supplied text before it reaches
// a renderer.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict     *bluemonday.Policy
	strictOnce sync.Once
)

// StripHTML removes every tag and returns unescaped plain text.
// The result is meant to be escaped again by whatever renders it, so
// "Tom &amp; Jerry" comes back as "Tom & Jerry".
//
// Unescaping can surface new markup ("&lt;b&gt;" becomes "<b>"), so passes
// repeat until the text is stable. StripHTML(StripHTML(s)) == StripHTML(s).
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	strictOnce.Do(func() { strict = bluemonday.StrictPolicy() })

	// Every pass that changes the text shortens it, so len(s) bounds the loop.
	for range len(s) {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
		if next == s {
			break
		}
		s = next
	}
	return s
}
