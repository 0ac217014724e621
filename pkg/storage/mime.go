package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	MIMEOctetStream = "application/octet-stream"
	sniffLen        = 512
)

// imageExtensions lists the image types accepted as signature photos.
var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/bmp":     ".bmp",
	"image/avif":    ".avif",
}

// DetectMIME sniffs the content type of an uploaded file.
func DetectMIME(fh *multipart.FileHeader) string {
	if fh == nil {
		return MIMEOctetStream
	}
	f, err := fh.Open()
	if err != nil {
		return MIMEOctetStream
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, buf)
	if n == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(buf[:n])
}

// ExtFromMIME returns the key extension for an image type, or "".
func ExtFromMIME(mimeType string) string {
	return imageExtensions[normalizeMIME(mimeType)]
}

// IsImage reports whether the upload sniffs as an image.
func IsImage(fh *multipart.FileHeader) bool {
	return strings.HasPrefix(normalizeMIME(DetectMIME(fh)), "image/")
}

// SniffImage reports the image type of data from its magic bytes. SVG has
// no signature, so it is accepted only when declared and the markup opens an
// svg element. ok is false for anything else.
func SniffImage(data []byte, declared string) (mimeType string, ok bool) {
	if len(data) == 0 {
		return MIMEOctetStream, false
	}
	sniffed := normalizeMIME(http.DetectContentType(data))
	switch {
	case strings.HasPrefix(sniffed, "image/"):
		return sniffed, true
	case isAVIF(data):
		return "image/avif", true
	case normalizeMIME(declared) == "image/svg+xml" && isSVG(data):
		return "image/svg+xml", true
	}
	return sniffed, false
}

func isAVIF(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "avif" || brand == "avis"
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), sniffLen*2)]
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// seekable returns r as a ReadSeeker plus its sniffed content type. The AWS
// SDK needs a seeker to hash the payload.
func seekable(r io.Reader) (string, io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		buf := make([]byte, sniffLen)
		n, _ := io.ReadFull(rs, buf)
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return "", nil, err
		}
		if n == 0 {
			return MIMEOctetStream, rs, nil
		}
		return http.DetectContentType(buf[:n]), rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return MIMEOctetStream, bytes.NewReader(nil), nil
	}
	return http.DetectContentType(data), bytes.NewReader(data), nil
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME supports exact types and "type/*" wildcards.
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)
	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if mimeType == pattern {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
