// Package epub reads the parts of an ePub container needed to serve a book
// to a reading client: the navigation tree and the ordered list of content
// documents.
//
// A Book is opened from a file path and must be closed by the caller:
//
//	book, err := epub.Open("books/moby-dick.epub")
//	if err != nil {
//		return err
//	}
//	defer book.Close()
//
//	for _, node := range book.TOC() {
//		switch n := node.(type) {
//		case epub.NavLeaf:
//			fmt.Println(n.Title, n.Href)
//		case epub.NavSection:
//			fmt.Println(n.Link.Title, len(n.Children))
//		}
//	}
//
// The navigation tree comes from the NCX file referenced by the spine when
// one is declared, and from the ePub 3 navigation document otherwise.
// Documents are the manifest items of type application/xhtml+xml, in
// manifest order.
package epub
