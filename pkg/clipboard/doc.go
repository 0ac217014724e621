// Package clipboard copies a signature as self-contained HTML.
//
// Copy first rewrites every absolute, non-embedded <img src> into a data URI
// so the pasted signature does not depend on remote hosts, then walks a
// fallback chain of writers:
//
//	Rich      HTML and plain text together (RichWriter)
//	Legacy    rendered selection copy (LegacyWriter)
//	PlainText the HTML source as text (TextWriter)
//	Failed    every tier unavailable or failed
//
// A nil writer counts as unavailable. Copy never panics.
package clipboard
