package rasterexport

import (
	"image/color"
	"time"
)

// Format is the output raster format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat accepts "png", "jpeg" and "jpg".
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "png", "":
		return PNG, true
	case "jpeg", "jpg":
		return JPEG, true
	}
	return "", false
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

const (
	DefaultPixelRatio   = 2
	MaxPixelRatio       = 4
	DefaultFilename     = "email-signature"
	DefaultImageTimeout = 10 * time.Second
	JPEGQuality         = 95
)

// Options tune a single export. Zero values take the defaults.
type Options struct {
	Format       Format
	PixelRatio   float64
	Filename     string
	ImageTimeout time.Duration
	Background   color.Color
	// Key identifies the export for in-flight suppression. Exports sharing a
	// non-empty Key while one is running get ErrBusy.
	Key string
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = PNG
	}
	if o.PixelRatio <= 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	o.PixelRatio = min(o.PixelRatio, MaxPixelRatio)
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.ImageTimeout <= 0 {
		o.ImageTimeout = DefaultImageTimeout
	}
	if o.Background == nil {
		o.Background = color.White
	}
	return o
}
