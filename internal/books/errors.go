package books

import "errors"

var (
	// ErrNotFound is returned when a book id does not name a file inside the
	// books directory.
	ErrNotFound = errors.New("book not found")

	// ErrDecode is returned when a chapter is not valid UTF-8.
	ErrDecode = errors.New("chapter is not valid UTF-8")

	// ErrUnknownFormat is returned for an unsupported chapter format.
	ErrUnknownFormat = errors.New("unknown chapter format")
)
