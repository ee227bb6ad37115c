package epub

import (
	"bytes"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
)

// NavNode is an entry of the navigation tree. It is either a NavLeaf or a
// NavSection.
type NavNode interface {
	navNode()
}

// NavLeaf is a navigation entry without children.
type NavLeaf struct {
	Title string
	Href  string
}

// NavSection is a navigation entry that groups further entries.
type NavSection struct {
	Link     NavLeaf
	Children []NavNode
}

func (NavLeaf) navNode()    {}
func (NavSection) navNode() {}

func newNavNode(link NavLeaf, children []NavNode) NavNode {
	if len(children) == 0 {
		return link
	}
	return NavSection{Link: link, Children: children}
}

// loadTOC prefers the NCX declared by the spine and falls back to the ePub 3
// navigation document. Navigation is best effort: a broken or missing source
// leaves the tree empty instead of failing the whole book.
func (b *Book) loadTOC() []NavNode {
	if item, ok := b.pkg.itemByID(b.pkg.spineTOC); ok {
		if data, err := b.readFile(resolvePath(b.opfDir, item.Href)); err == nil {
			if nodes, err := parseNCX(data); err == nil && len(nodes) > 0 {
				return nodes
			}
		}
	}
	for _, item := range b.pkg.manifest {
		if !item.hasProperty("nav") {
			continue
		}
		if data, err := b.readFile(resolvePath(b.opfDir, item.Href)); err == nil {
			if nodes, err := parseNavDocument(data); err == nil {
				return nodes
			}
		}
		break
	}
	return []NavNode{}
}

// --- NCX (ePub 2) ---

func parseNCX(data []byte) ([]NavNode, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}
	navMap := doc.Root().SelectElement("navMap")
	if navMap == nil {
		return nil, nil
	}
	return convertNavPoints(navMap.SelectElements("navPoint")), nil
}

func convertNavPoints(points []*etree.Element) []NavNode {
	nodes := make([]NavNode, 0, len(points))
	for _, np := range points {
		link := NavLeaf{}
		if label := np.FindElement("navLabel/text"); label != nil {
			link.Title = strings.TrimSpace(label.Text())
		}
		if content := np.SelectElement("content"); content != nil {
			link.Href = strings.TrimSpace(content.SelectAttrValue("src", ""))
		}
		nodes = append(nodes, newNavNode(link, convertNavPoints(np.SelectElements("navPoint"))))
	}
	return nodes
}

// --- navigation document (ePub 3) ---

// parseNavDocument reads the ordered list of the toc nav. Documents that do
// not mark their nav with epub:type="toc" use the first nav element.
func parseNavDocument(data []byte) ([]NavNode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(stripBOM(data)))
	if err != nil {
		return nil, err
	}

	navs := doc.Find("nav")
	toc := navs.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return slices.Contains(strings.Fields(s.AttrOr("epub:type", "")), "toc")
	}).First()
	if toc.Length() == 0 {
		toc = navs.First()
	}

	list := toc.Find("ol").First()
	if list.Length() == 0 {
		return []NavNode{}, nil
	}
	return navList(list), nil
}

func navList(ol *goquery.Selection) []NavNode {
	items := ol.ChildrenFiltered("li")
	nodes := make([]NavNode, 0, items.Length())
	items.Each(func(_ int, li *goquery.Selection) {
		nodes = append(nodes, navItem(li))
	})
	return nodes
}

// navItem takes the title from the first link, or from a span heading when
// the entry has no link of its own.
func navItem(li *goquery.Selection) NavNode {
	var link NavLeaf
	if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
		link.Title = strings.TrimSpace(a.Text())
		link.Href = strings.TrimSpace(a.AttrOr("href", ""))
	} else {
		link.Title = strings.TrimSpace(li.ChildrenFiltered("span").First().Text())
	}

	var children []NavNode
	if sub := li.ChildrenFiltered("ol").First(); sub.Length() > 0 {
		children = navList(sub)
	}
	return newNavNode(link, children)
}
