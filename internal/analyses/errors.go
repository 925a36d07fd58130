package analyses

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedType = errors.New("unsupported file type")
)
