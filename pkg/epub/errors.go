package epub

import "errors"

var (
	// ErrInvalidEPub is returned when the file is not a zip container holding
	// a readable package document.
	ErrInvalidEPub = errors.New("epub: invalid ePub file")

	// ErrFileNotFound is returned when an item refers to a path that is not
	// present in the archive.
	ErrFileNotFound = errors.New("epub: file not found in archive")

	// ErrEntryTooLarge is returned for archive entries that decompress to
	// more than the per-entry limit.
	ErrEntryTooLarge = errors.New("epub: archive entry too large")
)
