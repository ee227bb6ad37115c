package books

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	"epubshelf/pkg/models"
)

// Extension is the suffix a file needs to be listed as a book.
const Extension = ".epub"

// Store maps book ids onto files of a single directory.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// List returns every non-directory entry whose name ends with Extension, in
// natural order.
func (s *Store) List() ([]models.Book, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read books dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(natural.StringSlice(names))

	out := make([]models.Book, 0, len(names))
	for _, n := range names {
		out = append(out, models.Book{ID: n, Name: n})
	}
	return out, nil
}

// Resolve returns the path of the book with the given id. Any id that is not
// a plain name inside the directory, or that does not name an existing entry,
// yields ErrNotFound. Neither the extension nor the entry type is checked
// here; the parser rejects what it cannot open.
func (s *Store) Resolve(id string) (string, error) {
	if id == "." || !filepath.IsLocal(id) || strings.ContainsAny(id, `/\`) {
		return "", ErrNotFound
	}

	root, err := filepath.Abs(s.Dir)
	if err != nil {
		return "", fmt.Errorf("resolve books dir: %w", err)
	}
	p := filepath.Join(root, id)
	if rel, err := filepath.Rel(root, p); err != nil || rel != id {
		return "", ErrNotFound
	}
	if _, err := os.Stat(p); err != nil {
		return "", ErrNotFound
	}
	return p, nil
}
