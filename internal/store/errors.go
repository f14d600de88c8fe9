package store

import "errors"

// ErrStorageUnavailable signals that the canonical table could not be
// locked, read or replaced. It is transient: callers may retry the whole
// operation after a short delay. Business-rule rejections never wrap it.
var ErrStorageUnavailable = errors.New("storage unavailable")

// IsUnavailable reports whether err is a transient storage failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
