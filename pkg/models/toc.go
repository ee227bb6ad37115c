package models

// TOCEntry is one row of a flattened table of contents.
//
// ID is the position in the flattened list, not a stable identifier: the
// same chapter can get a different ID when the navigation tree changes shape.
// Parent holds the title of the enclosing entry and is nil at the top level.
type TOCEntry struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Href   string  `json:"href"`
	Parent *string `json:"parent"`
}
