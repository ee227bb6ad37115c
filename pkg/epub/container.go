package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

const (
	containerPath    = "META-INF/container.xml"
	packageMediaType = "application/oebps-package+xml"
)

// readXML parses an XML part of the container. Parsing is permissive and
// understands HTML named entities and non UTF-8 encoding declarations, both
// of which show up in real world books.
func readXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		Permissive:    true,
		CharsetReader: charset.NewReaderLabel,
		Entity:        xml.HTMLEntity,
	}
	if err := doc.ReadFromBytes(stripBOM(data)); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return doc, nil
}

// findPackagePath returns the archive path of the package document. It reads
// META-INF/container.xml and falls back to the first *.opf entry when the
// container file is missing.
func (b *Book) findPackagePath() (string, error) {
	f := b.findFile(containerPath)
	if f == nil {
		return b.scanPackagePath()
	}

	data, err := readEntry(f, maxEntrySize)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}
	doc, err := readXML(data)
	if err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w: %w", ErrInvalidEPub, err)
	}

	var fallback string
	for _, rf := range doc.FindElements("//rootfile") {
		fullPath := strings.TrimSpace(rf.SelectAttrValue("full-path", ""))
		if fullPath == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.SelectAttrValue("media-type", "")), packageMediaType) {
			return fullPath, nil
		}
		if fallback == "" {
			fallback = fullPath
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("epub: container.xml has no usable rootfile: %w", ErrInvalidEPub)
	}
	return fallback, nil
}

// scanPackagePath serves archives without a container document: the first
// .opf entry is taken as the package document.
func (b *Book) scanPackagePath() (string, error) {
	i := slices.IndexFunc(b.zip.File, func(f *zip.File) bool {
		return strings.EqualFold(path.Ext(f.Name), ".opf")
	})
	if i < 0 {
		return "", fmt.Errorf("epub: no package document in archive: %w", ErrInvalidEPub)
	}
	return b.zip.File[i].Name, nil
}
