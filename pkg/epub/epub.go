package epub

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
)

// DocumentMediaType is the media type of the content documents returned by
// Book.Documents.
const DocumentMediaType = "application/xhtml+xml"

// Book is an opened ePub container. It is not safe for concurrent use.
type Book struct {
	zip     *zip.ReadCloser
	files   map[string]*zip.File
	lower   map[string]*zip.File
	opfPath string
	opfDir  string
	pkg     *packageDoc
	items   []Item
	toc     []NavNode
}

// Item is one manifest entry of the book.
type Item struct {
	ID        string
	Name      string // href relative to the package document
	MediaType string

	path string // archive path
	book *Book
}

// Open opens and parses the ePub file at name. The caller must Close the
// returned Book.
func Open(name string) (*Book, error) {
	kind, err := filetype.MatchFile(name)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w", name, err)
	}
	if kind.Extension != "epub" && kind.Extension != "zip" {
		return nil, fmt.Errorf("epub: %s is not a zip container: %w", name, ErrInvalidEPub)
	}

	zrc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("epub: open %s: %w: %w", name, ErrInvalidEPub, err)
	}

	b := &Book{zip: zrc}
	if err := b.init(); err != nil {
		return nil, multierr.Append(err, zrc.Close())
	}
	return b, nil
}

func (b *Book) init() error {
	b.index()

	opfPath, err := b.findPackagePath()
	if err != nil {
		return err
	}
	b.opfPath = opfPath
	b.opfDir = path.Dir(opfPath)

	data, err := b.readFile(opfPath)
	if err != nil {
		return fmt.Errorf("epub: read package document %s: %w: %w", opfPath, ErrInvalidEPub, err)
	}
	if b.pkg, err = parsePackage(data); err != nil {
		return err
	}

	b.items = make([]Item, 0, len(b.pkg.manifest))
	for _, mi := range b.pkg.manifest {
		b.items = append(b.items, Item{
			ID:        mi.ID,
			Name:      itemName(mi.Href),
			MediaType: mi.MediaType,
			path:      resolvePath(b.opfDir, mi.Href),
			book:      b,
		})
	}

	b.toc = b.loadTOC()
	return nil
}

func (b *Book) index() {
	b.files = make(map[string]*zip.File, len(b.zip.File))
	b.lower = make(map[string]*zip.File, len(b.zip.File))
	for _, f := range b.zip.File {
		if _, ok := b.files[f.Name]; !ok {
			b.files[f.Name] = f
		}
		lower := strings.ToLower(f.Name)
		if _, ok := b.lower[lower]; !ok {
			b.lower[lower] = f
		}
	}
}

// findFile looks up an archive entry, falling back to a case-insensitive
// match.
func (b *Book) findFile(name string) *zip.File {
	if f, ok := b.files[name]; ok {
		return f
	}
	return b.lower[strings.ToLower(name)]
}

func (b *Book) readFile(name string) ([]byte, error) {
	f := b.findFile(name)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrFileNotFound)
	}
	return readEntry(f, maxEntrySize)
}

// Close releases the underlying file. It is safe to call more than once.
func (b *Book) Close() error {
	if b.zip == nil {
		return nil
	}
	err := b.zip.Close()
	b.zip = nil
	return err
}

// Metadata returns the package metadata.
func (b *Book) Metadata() Metadata {
	md := b.pkg.metadata
	md.Creators = append([]string(nil), md.Creators...)
	return md
}

// TOC returns the navigation tree. It is empty when the book declares
// neither an NCX nor a navigation document.
func (b *Book) TOC() []NavNode {
	toc := make([]NavNode, len(b.toc))
	copy(toc, b.toc)
	return toc
}

// Documents returns the content documents in manifest order.
func (b *Book) Documents() []Item {
	var docs []Item
	for _, it := range b.items {
		if it.MediaType == DocumentMediaType {
			docs = append(docs, it)
		}
	}
	return docs
}

// Content reads the raw bytes of the item from the archive.
func (it Item) Content() ([]byte, error) {
	if it.book == nil || it.book.zip == nil || it.path == "" {
		return nil, fmt.Errorf("%s: %w", it.Name, ErrFileNotFound)
	}
	return it.book.readFile(it.path)
}
