package clipboard

import "errors"

var (
	ErrUnavailable = errors.New("clipboard: writer unavailable")
	ErrUnsupported = errors.New("clipboard: no system clipboard utility available")
)
