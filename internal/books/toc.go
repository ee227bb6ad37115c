package books

import (
	"epubshelf/pkg/epub"
	"epubshelf/pkg/models"
)

// FlattenTOC walks the navigation forest in pre-order and returns one entry
// per node. Children carry the title of their enclosing node as Parent. IDs
// are assigned 0..N-1 in emission order once the walk is complete.
func FlattenTOC(nodes []epub.NavNode) []models.TOCEntry {
	out := make([]models.TOCEntry, 0, len(nodes))
	out = flattenNav(out, nodes, nil)
	for i := range out {
		out[i].ID = i
	}
	return out
}

func flattenNav(out []models.TOCEntry, nodes []epub.NavNode, parent *string) []models.TOCEntry {
	for _, node := range nodes {
		switch n := node.(type) {
		case epub.NavLeaf:
			out = append(out, models.TOCEntry{Title: n.Title, Href: n.Href, Parent: parent})
		case epub.NavSection:
			out = append(out, models.TOCEntry{Title: n.Link.Title, Href: n.Link.Href, Parent: parent})
			title := n.Link.Title
			out = flattenNav(out, n.Children, &title)
		}
	}
	return out
}
