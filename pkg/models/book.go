package models

// Book is a file in the books directory. ID and Name are both the filename.
type Book struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookMeta struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Language   string   `json:"language,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	Version    string   `json:"version,omitempty"`
}
