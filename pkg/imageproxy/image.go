package imageproxy

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// DefaultContentType is assumed when an Image carries no media type.
const DefaultContentType = "image/png"

// Image is fetched image bytes plus their media type.
type Image struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// DataURI encodes the image as data:<type>;base64,<payload>.
func (i Image) DataURI() string {
	ct := i.ContentType
	if ct == "" {
		ct = DefaultContentType
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURI decodes a data URI. Both base64 and percent-encoded payloads
// are accepted.
func ParseDataURI(s string) (Image, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidDataURI
	}

	isBase64 := strings.HasSuffix(meta, ";base64")
	ct := strings.TrimSuffix(meta, ";base64")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if ct == "" {
		ct = "text/plain"
	}

	var data []byte
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Image{}, ErrInvalidDataURI
		}
		data = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return Image{}, ErrInvalidDataURI
		}
		data = []byte(s)
	}
	return Image{ContentType: ct, Data: data}, nil
}

// IsEmbedded reports whether src already carries its bytes (data: or blob:).
func IsEmbedded(src string) bool {
	return strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "blob:")
}

// IsAbsolute reports whether src is an absolute http(s) reference.
func IsAbsolute(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// NeedsResolve reports whether src must be inlined before capture: it is an
// absolute http(s) reference outside origin. An empty origin treats every
// absolute reference as foreign.
func NeedsResolve(src, origin string) bool {
	if IsEmbedded(src) || !IsAbsolute(src) {
		return false
	}
	return origin == "" || !strings.HasPrefix(src, origin)
}
