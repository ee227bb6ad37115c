// Package epubtest builds small ePub archives for tests.
package epubtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`

// Chapter is one content document of a generated book.
type Chapter struct {
	Name  string // manifest href, relative to the package document
	Title string
	Body  string // inner body markup; written verbatim, may hold invalid UTF-8
	Raw   bool   // write Body as the whole document
}

// NavPoint is a navigation entry of a generated book.
type NavPoint struct {
	Title    string
	Href     string
	Children []NavPoint
}

// Book describes an ePub 2 book with an NCX table of contents. The package
// document lives at OEBPS/content.opf.
type Book struct {
	Title    string
	Creators []string
	Language string
	Chapters []Chapter
	TOC      []NavPoint
}

// Files renders the book into archive entries.
func (b Book) Files() map[string]string {
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": containerXML,
	}

	var manifest, spine, meta strings.Builder
	fmt.Fprintf(&meta, "<dc:title>%s</dc:title>", html.EscapeString(b.Title))
	for _, c := range b.Creators {
		fmt.Fprintf(&meta, "<dc:creator>%s</dc:creator>", html.EscapeString(c))
	}
	if b.Language != "" {
		fmt.Fprintf(&meta, "<dc:language>%s</dc:language>", html.EscapeString(b.Language))
	}
	manifest.WriteString(`<item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>`)
	for i, c := range b.Chapters {
		id := fmt.Sprintf("doc%d", i)
		fmt.Fprintf(&manifest, `<item id="%s" href="%s" media-type="application/xhtml+xml"/>`, id, html.EscapeString(c.Name))
		fmt.Fprintf(&spine, `<itemref idref="%s"/>`, id)

		body := c.Body
		if !c.Raw {
			body = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>` + html.EscapeString(c.Title) + `</title></head><body>` + c.Body + `</body></html>`
		}
		files["OEBPS/"+c.Name] = body
	}

	files["OEBPS/content.opf"] = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">` + meta.String() + `<dc:identifier id="bookid">urn:test:` + html.EscapeString(b.Title) + `</dc:identifier></metadata>
  <manifest>` + manifest.String() + `</manifest>
  <spine toc="ncx">` + spine.String() + `</spine>
</package>`

	var nav strings.Builder
	writeNavPoints(&nav, b.TOC, new(int))
	files["OEBPS/toc.ncx"] = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1"><navMap>` + nav.String() + `</navMap></ncx>`

	return files
}

func writeNavPoints(sb *strings.Builder, points []NavPoint, order *int) {
	for _, p := range points {
		*order++
		fmt.Fprintf(sb, `<navPoint id="np%d" playOrder="%d"><navLabel><text>%s</text></navLabel><content src="%s"/>`,
			*order, *order, html.EscapeString(p.Title), html.EscapeString(p.Href))
		writeNavPoints(sb, p.Children, order)
		sb.WriteString("</navPoint>")
	}
}

// Archive zips files. The mimetype entry, when present, is stored
// uncompressed as the first entry; the rest follow in name order.
func Archive(t testing.TB, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	names := make([]string, 0, len(files))
	for name := range files {
		if name != "mimetype" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := files["mimetype"]; ok {
		names = append([]string{"mimetype"}, names...)
	}

	for _, name := range names {
		method := zip.Deflate
		if name == "mimetype" {
			method = zip.Store
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		if err != nil {
			t.Fatalf("epubtest: create %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, files[name]); err != nil {
			t.Fatalf("epubtest: write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("epubtest: close writer: %v", err)
	}
	return buf.Bytes()
}

// Write stores the archive of files as dir/name and returns the path.
func Write(t testing.TB, dir, name string, files map[string]string) string {
	t.Helper()
	fp := filepath.Join(dir, name)
	if err := os.WriteFile(fp, Archive(t, files), 0o644); err != nil {
		t.Fatalf("epubtest: write %s: %v", fp, err)
	}
	return fp
}
