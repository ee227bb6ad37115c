package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxEntrySize caps the decompressed size of a single archive entry.
const maxEntrySize int64 = 256 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// insideArchive reports whether the slash separated name stays below the
// archive root once cleaned.
func insideArchive(name string) bool {
	name = path.Clean(name)
	return !path.IsAbs(name) && name != ".." && !strings.HasPrefix(name, "../")
}

// resolvePath joins href onto dir and returns the archive path it points to,
// or "" when href is absolute or escapes the archive root. Fragments are
// dropped.
func resolvePath(dir, href string) string {
	href, _, _ = strings.Cut(strings.TrimSpace(href), "#")
	if href == "" || path.IsAbs(href) {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if p := path.Join(dir, href); insideArchive(p) {
		return p
	}
	return ""
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// readEntry decompresses f, refusing entries outside the archive root and
// entries larger than limit. The declared size is checked up front and the
// copy stops one byte past limit in case the header lied.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	switch {
	case !insideArchive(f.Name):
		return nil, fmt.Errorf("epub: entry %s escapes the archive root: %w", f.Name, ErrInvalidEPub)
	case f.UncompressedSize64 > uint64(limit):
		return nil, fmt.Errorf("epub: %s declares %d bytes: %w", f.Name, f.UncompressedSize64, ErrEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", f.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	buf.Grow(int(f.UncompressedSize64))
	n, err := io.CopyN(&buf, rc, limit+1)
	switch {
	case n > limit:
		return nil, fmt.Errorf("epub: %s exceeds %d bytes: %w", f.Name, limit, ErrEntryTooLarge)
	case err != nil && err != io.EOF:
		return nil, fmt.Errorf("epub: read %s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}
