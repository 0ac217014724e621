package rasterexport

import (
	"errors"
	"strings"
)

var (
	ErrTargetMissing = errors.New("signature element not found")
	ErrEmptyImage    = errors.New("generated image is empty")
	ErrDownload      = errors.New("failed to save image")
	ErrCapture       = errors.New("failed to capture image")
	ErrEncode        = errors.New("failed to encode image")
	ErrBusy          = errors.New("an export is already in progress")
)

// Error is the single user-facing failure type of Export.
type Error struct {
	Kind   error
	Format Format
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("export ")
	b.WriteString(strings.ToUpper(string(e.Format)))
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fail(kind error, f Format, err error) *Error {
	return &Error{Kind: kind, Format: f, Err: err}
}
