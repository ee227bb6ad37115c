package books

import "epubshelf/pkg/epub"

// Book is the view of a parsed ePub the handlers need.
type Book interface {
	TOC() []epub.NavNode
	Documents() []epub.Item
	Metadata() epub.Metadata
	Close() error
}

// Parser opens the book stored at path.
type Parser interface {
	Open(path string) (Book, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string) (Book, error)

func (f ParserFunc) Open(path string) (Book, error) { return f(path) }

// OpenEPUB parses path with pkg/epub.
func OpenEPUB(path string) (Book, error) {
	b, err := epub.Open(path)
	if err != nil {
		return nil, err
	}
	return b, nil
}
