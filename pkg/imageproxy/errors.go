package imageproxy

import "errors"

var (
	ErrInvalidURL     = errors.New("imageproxy: url must be absolute http or https")
	ErrUpstreamStatus = errors.New("imageproxy: upstream returned non-success status")
	ErrTooLarge       = errors.New("imageproxy: image exceeds size limit")
	ErrEmptyImage     = errors.New("imageproxy: upstream returned empty body")
	ErrNotImage       = errors.New("imageproxy: upstream body is not an image")
	ErrInvalidDataURI = errors.New("imageproxy: malformed data uri")
)
