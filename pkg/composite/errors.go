package composite

import "errors"

var (
	ErrBackground        = errors.New("composite: background unavailable")
	ErrPhoto             = errors.New("composite: photo unavailable")
	ErrDecode            = errors.New("composite: image decode failed")
	ErrUnsupportedSource = errors.New("composite: unsupported photo source")
)
