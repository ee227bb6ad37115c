package epub

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// Metadata holds the Dublin Core fields a reading client displays.
type Metadata struct {
	Version    string
	Title      string
	Creators   []string
	Language   string
	Identifier string
}

// packageDoc is the parsed subset of the OPF package document.
type packageDoc struct {
	metadata Metadata
	manifest []manifestItem
	spineTOC string // manifest id of the NCX, from <spine toc="...">
}

type manifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

func (m manifestItem) hasProperty(name string) bool {
	for _, p := range m.Properties {
		if p == name {
			return true
		}
	}
	return false
}

func parsePackage(data []byte) (*packageDoc, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w: %w", ErrInvalidEPub, err)
	}
	root := doc.Root()
	if root.Tag != "package" {
		return nil, fmt.Errorf("epub: unexpected OPF root element %q: %w", root.Tag, ErrInvalidEPub)
	}

	pkg := &packageDoc{}
	pkg.metadata.Version = root.SelectAttrValue("version", "2.0")

	if md := root.SelectElement("metadata"); md != nil {
		pkg.metadata = parseMetadata(md, root.SelectAttrValue("unique-identifier", ""), pkg.metadata.Version)
	}
	if mf := root.SelectElement("manifest"); mf != nil {
		for _, el := range mf.SelectElements("item") {
			pkg.manifest = append(pkg.manifest, manifestItem{
				ID:         el.SelectAttrValue("id", ""),
				Href:       strings.TrimSpace(el.SelectAttrValue("href", "")),
				MediaType:  strings.ToLower(strings.TrimSpace(el.SelectAttrValue("media-type", ""))),
				Properties: strings.Fields(el.SelectAttrValue("properties", "")),
			})
		}
	}
	if sp := root.SelectElement("spine"); sp != nil {
		pkg.spineTOC = sp.SelectAttrValue("toc", "")
	}
	return pkg, nil
}

func parseMetadata(md *etree.Element, uniqueID, version string) Metadata {
	m := Metadata{Version: version}
	for _, el := range md.ChildElements() {
		text := strings.TrimSpace(el.Text())
		if text == "" {
			continue
		}
		switch el.Tag {
		case "title":
			if m.Title == "" {
				m.Title = text
			}
		case "creator":
			m.Creators = append(m.Creators, text)
		case "language":
			if m.Language == "" {
				m.Language = text
			}
		case "identifier":
			// Prefer the identifier the package points at.
			if m.Identifier == "" || (uniqueID != "" && el.SelectAttrValue("id", "") == uniqueID) {
				m.Identifier = text
			}
		}
	}
	return m
}

func (p *packageDoc) itemByID(id string) (manifestItem, bool) {
	for _, it := range p.manifest {
		if it.ID == id {
			return it, true
		}
	}
	return manifestItem{}, false
}

// itemName is the name a document is known by: its manifest href, unescaped.
func itemName(href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		return decoded
	}
	return href
}
