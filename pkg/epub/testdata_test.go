package epub

import (
	"testing"

	"epubshelf/pkg/epub/epubtest"
)

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOPF2 = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="bookid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:opf="http://www.idpf.org/2007/opf">
    <dc:title>Test Book</dc:title>
    <dc:creator opf:role="aut">Jane Doe</dc:creator>
    <dc:creator opf:role="aut">John Roe</dc:creator>
    <dc:language>en</dc:language>
    <dc:identifier id="other">urn:other:1</dc:identifier>
    <dc:identifier id="bookid">urn:uuid:1234</dc:identifier>
  </metadata>
  <manifest>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="css" href="style.css" media-type="text/css"/>
    <item id="intro" href="intro.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch1" href="text/chapter%201.xhtml" media-type="application/xhtml+xml"/>
    <item id="ch2" href="text/chapter2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="intro"/>
    <itemref idref="ch1"/>
    <itemref idref="ch2"/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="np1" playOrder="1">
      <navLabel><text> Introduction </text></navLabel>
      <content src="intro.xhtml"/>
    </navPoint>
    <navPoint id="np2" playOrder="2">
      <navLabel><text>Part One &mdash; Beginnings</text></navLabel>
      <content src="text/chapter%201.xhtml"/>
      <navPoint id="np3" playOrder="3">
        <navLabel><text>Chapter 1</text></navLabel>
        <content src="text/chapter%201.xhtml#c1"/>
      </navPoint>
      <navPoint id="np4" playOrder="4">
        <navLabel><text>Chapter 2</text></navLabel>
        <content src="text/chapter2.xhtml"/>
      </navPoint>
    </navPoint>
  </navMap>
</ncx>`

const testOPF3 = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Nav Book</dc:title>
    <dc:identifier id="uid">isbn:978</dc:identifier>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="c1" href="c1.xhtml" media-type="application/xhtml+xml"/>
    <item id="c2" href="c2.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="c1"/>
    <itemref idref="c2"/>
  </spine>
</package>`

const testNav = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<body>
  <nav epub:type="landmarks"><ol><li><a href="c1.xhtml">Start</a></li></ol></nav>
  <nav epub:type="toc">
    <ol>
      <li><a href="c1.xhtml">One</a></li>
      <li><span>Group</span>
        <ol>
          <li><a href="c2.xhtml#a">Two A</a></li>
          <li><a href="c2.xhtml#b">Two <em>B</em></a></li>
        </ol>
      </li>
    </ol>
  </nav>
</body>
</html>`

func xhtml(title, body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>` + title + `</title></head><body>` + body + `</body></html>`
}

// epub2Files is a small ePub 2 book with a nested NCX.
func epub2Files() map[string]string {
	return map[string]string{
		"mimetype":                   "application/epub+zip",
		"META-INF/container.xml":     testContainer,
		"OEBPS/content.opf":          testOPF2,
		"OEBPS/toc.ncx":              testNCX,
		"OEBPS/style.css":            "body{}",
		"OEBPS/intro.xhtml":          xhtml("Intro", "<p>Hello</p>"),
		"OEBPS/text/chapter 1.xhtml": xhtml("One", "<p>First</p>"),
		"OEBPS/text/chapter2.xhtml":  xhtml("Two", "<p>Second</p>"),
	}
}

// epub3Files is an ePub 3 book with a navigation document and no NCX.
func epub3Files() map[string]string {
	return map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": `<container><rootfiles><rootfile full-path="content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`,
		"content.opf":            testOPF3,
		"nav.xhtml":              testNav,
		"c1.xhtml":               xhtml("C1", "<p>one</p>"),
		"c2.xhtml":               xhtml("C2", "<p>two</p>"),
	}
}

func openTestBook(t *testing.T, files map[string]string) *Book {
	t.Helper()
	b, err := Open(epubtest.Write(t, t.TempDir(), "test.epub", files))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}
