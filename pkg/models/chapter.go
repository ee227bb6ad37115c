package models

type Chapter struct {
	Title   string `json:"title"`   // document name inside the book
	Content string `json:"content"` // decoded document
}
